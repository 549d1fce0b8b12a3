package db

import (
	"context"
	"net/url"

	"github.com/tarnsocial/tarn/internal/domain"
)

// Actors is the store behind the actor registry and the key store.
type Actors interface {
	// FindOrCreateActor inserts the actor unless a row with the same
	// (type, username) already exists, and returns the surviving row.
	// Concurrent callers racing on the same identity converge on one row
	// through the unique constraint, not locking.
	FindOrCreateActor(ctx context.Context, actor domain.Actor) (domain.Actor, error)

	FindActorByUsername(ctx context.Context, username string, t domain.ActorType) (domain.Actor, error)
	FindActorByUri(ctx context.Context, uri *url.URL) (domain.Actor, error)

	// CreateKeyPair stores the pair unless the actor already has one; the
	// existing pair always wins a race.
	CreateKeyPair(ctx context.Context, kp domain.KeyPair) error
	GetKeyPair(ctx context.Context, actorID int64) (domain.KeyPair, error)
}
