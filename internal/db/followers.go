package db

import (
	"context"
	"net/url"

	"github.com/tarnsocial/tarn/internal/domain"
)

type Followers interface {
	// AddFollower is a no-op when the (actor, follower URI) pair already
	// exists, so duplicate Follow deliveries are harmless.
	AddFollower(ctx context.Context, f domain.Follower) error
	RemoveFollower(ctx context.Context, actorID int64, followerUri *url.URL) error
	GetFollowers(ctx context.Context, actorID int64) ([]domain.Follower, error)
}

type Blocklist interface {
	IsInstanceBlocked(ctx context.Context, domain string) (bool, error)
	BlockInstance(ctx context.Context, domain, reason string) error
	UnblockInstance(ctx context.Context, domain string) error
}

type RemoteUsers interface {
	// FindOrCreateRemoteUser keys on the actor URI; racing creators
	// converge on one row.
	FindOrCreateRemoteUser(ctx context.Context, u domain.RemoteUser) (domain.RemoteUser, error)
}
