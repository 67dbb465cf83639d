package middleware

import (
	"net/http"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// Tracer opens a server span per request and picks up propagated trace
// contexts from incoming headers.
func Tracer() func(next http.Handler) http.Handler {
	return otelhttp.NewMiddleware("http.server")
}
