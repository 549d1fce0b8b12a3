// Package registry creates and resolves the engine's federated identities:
// the single instance actor, per-user actors and per-community group actors.
// Creation is lazy and race-safe; an actor is never observable without its
// key pair.
package registry

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/tarnsocial/tarn/internal/config"
	"github.com/tarnsocial/tarn/internal/db"
	"github.com/tarnsocial/tarn/internal/domain"
	"github.com/tarnsocial/tarn/internal/federation"
	"github.com/tarnsocial/tarn/internal/utils"
)

type Registry struct {
	db  db.Actors
	cfg config.Configuration
}

func New(cfg config.Configuration, d db.Actors) *Registry {
	return &Registry{db: d, cfg: cfg}
}

// InstanceActor returns the process-wide instance actor, creating it on
// first use from the configured profile.
func (r *Registry) InstanceActor(ctx context.Context) (domain.Actor, error) {
	return r.findOrCreate(ctx, domain.ActorInstance, r.cfg.ActorUsername, r.cfg.ActorName, r.cfg.ActorSummary, r.cfg.ActorIcon)
}

// ForUser returns the federated actor for a local user, creating it on
// first need.
func (r *Registry) ForUser(ctx context.Context, username string) (domain.Actor, error) {
	return r.findOrCreate(ctx, domain.ActorUser, username, username, "", "")
}

// ForGroup returns the Group actor federating a community.
func (r *Registry) ForGroup(ctx context.Context, name, summary string) (domain.Actor, error) {
	return r.findOrCreate(ctx, domain.ActorGroup, name, name, summary, "")
}

// FindByUsername looks an actor up without creating it. Used by webfinger
// and inbound Follow object resolution.
func (r *Registry) FindByUsername(ctx context.Context, username string, t domain.ActorType) (domain.Actor, error) {
	return r.db.FindActorByUsername(ctx, username, t)
}

func (r *Registry) findOrCreate(ctx context.Context, t domain.ActorType, username, name, summary, icon string) (domain.Actor, error) {
	uri := domain.ActorUri(r.cfg.Url, t, username)
	actor, err := r.db.FindOrCreateActor(ctx, domain.Actor{
		Type:      t,
		Username:  username,
		Uri:       uri,
		Inbox:     uri.JoinPath("inbox"),
		Outbox:    uri.JoinPath("outbox"),
		Followers: uri.JoinPath("followers"),
		Name:      name,
		Summary:   summary,
		IconUrl:   icon,
	})
	if err != nil {
		return actor, fmt.Errorf("registry: %w", err)
	}

	if err = r.EnsureKeyPair(ctx, actor); err != nil {
		return actor, err
	}
	return actor, nil
}

// EnsureKeyPair generates the actor's RSA pair if absent. Losing a creation
// race is fine: the stored pair wins and this call succeeds.
func (r *Registry) EnsureKeyPair(ctx context.Context, actor domain.Actor) error {
	_, err := r.db.GetKeyPair(ctx, actor.ID)
	if err == nil {
		return nil
	}
	if !errors.Is(err, db.ErrNotFound) {
		return err
	}

	pub, priv, err := utils.GenerateKeysPem(r.cfg.RsaKeySize)
	if err != nil {
		return fmt.Errorf("registry: key generation: %w", err)
	}

	log.Info().Str("actor", actor.Uri.String()).Msg("generated key pair")
	return r.db.CreateKeyPair(ctx, domain.KeyPair{
		ActorID:       actor.ID,
		KeyId:         actor.KeyId().String(),
		PublicKeyPem:  pub,
		PrivateKeyPem: priv,
	})
}

// KeyPair returns the actor's key material. A missing pair is a caller bug,
// reported as federation.ErrMissingKeys.
func (r *Registry) KeyPair(ctx context.Context, actor domain.Actor) (domain.KeyPair, error) {
	kp, err := r.db.GetKeyPair(ctx, actor.ID)
	if errors.Is(err, db.ErrNotFound) {
		return kp, fmt.Errorf("%w: actor %s", federation.ErrMissingKeys, actor.Uri)
	}
	return kp, err
}
