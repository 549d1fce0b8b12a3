package impl

import (
	"context"
	"fmt"
	"net/url"

	"github.com/tarnsocial/tarn/internal/domain"
)

const actorColumns = `id, type, username, uri, inbox, outbox, followers, name, summary, icon_url, created_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanActor(row rowScanner) (domain.Actor, error) {
	var a domain.Actor
	var uri, inbox, outbox, followers string
	err := row.Scan(&a.ID, &a.Type, &a.Username, &uri, &inbox, &outbox, &followers, &a.Name, &a.Summary, &a.IconUrl, &a.Created)
	if err != nil {
		return a, err
	}

	for dst, src := range map[**url.URL]string{
		&a.Uri: uri, &a.Inbox: inbox, &a.Outbox: outbox, &a.Followers: followers,
	} {
		*dst, err = url.Parse(src)
		if err != nil {
			return a, fmt.Errorf("corrupt actor uri %q: %w", src, err)
		}
	}
	return a, nil
}

func (d *dbImpl) FindOrCreateActor(ctx context.Context, actor domain.Actor) (domain.Actor, error) {
	// The unique (type, username) constraint resolves creation races; the
	// follow-up read observes whichever insert won.
	_, err := d.db.ExecContext(ctx, `
		INSERT INTO actors (type, username, uri, inbox, outbox, followers, name, summary, icon_url)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (type, username) DO NOTHING`,
		actor.Type, actor.Username,
		actor.Uri.String(), actor.Inbox.String(), actor.Outbox.String(), actor.Followers.String(),
		actor.Name, actor.Summary, actor.IconUrl,
	)
	if err != nil {
		return domain.Actor{}, d.HandleError(err)
	}

	return d.FindActorByUsername(ctx, actor.Username, actor.Type)
}

func (d *dbImpl) FindActorByUsername(ctx context.Context, username string, t domain.ActorType) (domain.Actor, error) {
	row := d.db.QueryRowContext(ctx,
		`SELECT `+actorColumns+` FROM actors WHERE type = ? AND username = ?`, t, username)
	a, err := scanActor(row)
	if err != nil {
		return a, fmt.Errorf("%w: %s actor %q", d.HandleError(err), t, username)
	}
	return a, nil
}

func (d *dbImpl) FindActorByUri(ctx context.Context, uri *url.URL) (domain.Actor, error) {
	row := d.db.QueryRowContext(ctx,
		`SELECT `+actorColumns+` FROM actors WHERE uri = ?`, uri.String())
	a, err := scanActor(row)
	if err != nil {
		return a, fmt.Errorf("%w: actor %s", d.HandleError(err), uri)
	}
	return a, nil
}

func (d *dbImpl) CreateKeyPair(ctx context.Context, kp domain.KeyPair) error {
	// An existing pair always wins: keys are generated once and never
	// rotated in place.
	_, err := d.db.ExecContext(ctx, `
		INSERT INTO key_pairs (actor_id, key_id, public_key, private_key)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (actor_id) DO NOTHING`,
		kp.ActorID, kp.KeyId, kp.PublicKeyPem, kp.PrivateKeyPem,
	)
	if err != nil {
		return d.HandleError(err)
	}
	return nil
}

func (d *dbImpl) GetKeyPair(ctx context.Context, actorID int64) (domain.KeyPair, error) {
	var kp domain.KeyPair
	row := d.db.QueryRowContext(ctx,
		`SELECT actor_id, key_id, public_key, private_key FROM key_pairs WHERE actor_id = ?`, actorID)
	err := row.Scan(&kp.ActorID, &kp.KeyId, &kp.PublicKeyPem, &kp.PrivateKeyPem)
	if err != nil {
		return kp, fmt.Errorf("%w: key pair for actor %d", d.HandleError(err), actorID)
	}
	return kp, nil
}
