package infrastructure

import (
	"fmt"

	"go.opentelemetry.io/otel/attribute"
)

const (
	httpMethodKey     = "http.method"
	httpPathKey       = "http.path"
	httpStatusCodeKey = "http.status_code"
	statusKey         = "status"
	commandKey        = "command"
	eventTypeKey      = "event.type"
	topicKey          = "topic"
	outcomeKey        = "outcome"
)

func HTTPMethodAttr(method string) attribute.KeyValue {
	return attribute.String(httpMethodKey, method)
}

func HTTPPathAttr(path string) attribute.KeyValue {
	return attribute.String(httpPathKey, path)
}

func HTTPStatusCodeAttr(code int) attribute.KeyValue {
	return attribute.String(httpStatusCodeKey, fmt.Sprintf("%d", code))
}

func StatusAttr(status string) attribute.KeyValue {
	return attribute.String(statusKey, status)
}

func CommandAttr(command string) attribute.KeyValue {
	return attribute.String(commandKey, command)
}

func EventTypeAttr(eventType string) attribute.KeyValue {
	return attribute.String(eventTypeKey, eventType)
}

func TopicAttr(topic string) attribute.KeyValue {
	return attribute.String(topicKey, topic)
}

func OutcomeAttr(outcome string) attribute.KeyValue {
	return attribute.String(outcomeKey, outcome)
}
