package db

import (
	"context"

	"github.com/tarnsocial/tarn/internal/domain"
)

// Content is the narrow slice of the platform's content repository the
// federation engine consumes: resolving inbound object URIs to posts,
// creating federated replies and maintaining engagement counters.
type Content interface {
	GetPostByID(ctx context.Context, id int64) (domain.Post, error)
	GetPostBySlug(ctx context.Context, slug string) (domain.Post, error)

	CreateReply(ctx context.Context, r domain.Reply) (domain.Reply, error)

	IncrementCounter(ctx context.Context, postID int64, counter string) error
	// DecrementCounter floors at zero.
	DecrementCounter(ctx context.Context, postID int64, counter string) error

	// AddEngagement records (post, remote actor, verb) uniquely; it reports
	// false when the row already existed, letting handlers skip the counter
	// bump on duplicate deliveries.
	AddEngagement(ctx context.Context, postID int64, actorUri, verb string) (bool, error)
	RemoveEngagement(ctx context.Context, postID int64, actorUri, verb string) (bool, error)
}

// Activities journals verified inbound activities for auditing and
// idempotency.
type Activities interface {
	// RecordInboundActivity reports false when an activity with the same
	// URI was already journaled.
	RecordInboundActivity(ctx context.Context, a domain.InboundActivity) (bool, error)

	// RemoveInboundActivity releases a journal entry whose handling failed,
	// so the remote's retry of the same activity id gets another attempt.
	RemoveInboundActivity(ctx context.Context, uri string) error
}
