package resource

import "context"

// Archive persists captured resources beyond the lifetime of a session.
type Archive interface {
	// SaveBatch stores a batch of resources under a session identifier.
	SaveBatch(ctx context.Context, sessionID string, resources []*Resource) error

	// FindBySession retrieves all archived resources for a session.
	FindBySession(ctx context.Context, sessionID string) ([]*Resource, error)

	// DeleteBySession removes all archived resources for a session.
	DeleteBySession(ctx context.Context, sessionID string) error
}
