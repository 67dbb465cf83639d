package repos

import "github.com/google/uuid"

var (
	// OutboxNamespace is the UUID V5 namespace for outbox events
	// Generated via: uuid_generate_v5('6ba7b811-9dad-11d1-80b4-00c04fd430c8', 'svc-commerce-events:outbox')
	OutboxNamespace = uuid.MustParse("b9c6f6d1-8e4a-5f2b-c9d5-9fadab2c4d5f")
)
