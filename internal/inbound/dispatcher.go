// Package inbound verifies, journals and dispatches activities arriving at
// the inbox endpoints. Every handler is idempotent: replaying a delivery
// never double-counts an engagement or duplicates a follower.
package inbound

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"code.superseriousbusiness.org/activity/streams"
	"code.superseriousbusiness.org/activity/streams/vocab"
	"github.com/rs/zerolog/log"
	"github.com/tarnsocial/tarn/internal/activitypub"
	"github.com/tarnsocial/tarn/internal/config"
	"github.com/tarnsocial/tarn/internal/db"
	"github.com/tarnsocial/tarn/internal/domain"
	"github.com/tarnsocial/tarn/internal/federation"
)

var (
	// ErrUnverifiable is returned when signature enforcement is on and the
	// request's signature did not check out.
	ErrUnverifiable = errors.New("activity could not be verified")
	// ErrActorMismatch is returned when the signing key and the claimed
	// actor live on different hosts.
	ErrActorMismatch = errors.New("signing key and actor belong to different hosts")
)

// Verifier checks an inbound request's HTTP signature and returns the
// verified keyId. Implemented by signature.Engine.
type Verifier interface {
	Verify(ctx context.Context, r *http.Request, body []byte) (string, error)
}

// Fetcher dereferences remote actor documents. Implemented by client.Client.
type Fetcher interface {
	Get(ctx context.Context, iri *url.URL) (map[string]any, error)
}

// Sender enqueues an outbound activity from a local actor to one inbox.
// Implemented by the delivery queue.
type Sender interface {
	Send(ctx context.Context, actorID int64, inbox *url.URL, activity vocab.Type) error
}

// Dispatcher routes verified activities to their handlers.
type Dispatcher struct {
	cfg      config.Configuration
	db       db.DB
	builder  *activitypub.Builder
	verifier Verifier
	fetcher  Fetcher
	sender   Sender
	resolver *streams.JSONResolver
	now      func() time.Time
}

func New(cfg config.Configuration, database db.DB, builder *activitypub.Builder, verifier Verifier, fetcher Fetcher, sender Sender) (*Dispatcher, error) {
	d := &Dispatcher{
		cfg:      cfg,
		db:       database,
		builder:  builder,
		verifier: verifier,
		fetcher:  fetcher,
		sender:   sender,
		now:      time.Now,
	}

	resolver, err := streams.NewJSONResolver(
		d.handleFollow,
		d.handleUndo,
		d.handleLike,
		d.handleAnnounce,
		d.handleCreate,
	)
	if err != nil {
		return nil, err
	}
	d.resolver = resolver
	return d, nil
}

// Dispatch verifies and processes one inbox delivery. A nil return means the
// activity was either handled or deliberately ignored; both deserve a 2xx.
func (d *Dispatcher) Dispatch(ctx context.Context, r *http.Request, body []byte) error {
	keyId, err := d.verifier.Verify(ctx, r, body)
	if err != nil {
		if d.cfg.RequireSignatures {
			return fmt.Errorf("%w: %v", ErrUnverifiable, err)
		}
		if d.cfg.LogSignatureFailures {
			log.Warn().Err(err).Msg("accepting unverified activity, signature enforcement is off")
		}
		keyId = ""
	}

	var raw map[string]any
	if err := json.Unmarshal(body, &raw); err != nil {
		return fmt.Errorf("%w: %v", federation.ErrUnprocessablePropValue, err)
	}

	id, _ := raw["id"].(string)
	if id == "" {
		return fmt.Errorf("%w: activity id", federation.ErrMissingProperty)
	}
	actorUri := referencedUri(raw["actor"])

	// A valid signature proves control of a key, not of the claimed actor.
	// Requiring both on the same host closes the impersonation gap.
	if keyId != "" && actorUri != "" {
		if err := sameHost(keyId, actorUri); err != nil {
			return err
		}
	}

	typ, _ := raw["type"].(string)
	fresh, err := d.db.RecordInboundActivity(ctx, domain.InboundActivity{
		Uri:       id,
		Type:      typ,
		ActorUri:  actorUri,
		ObjectUri: referencedUri(raw["object"]),
		Raw:       body,
		Received:  d.now(),
	})
	if err != nil {
		return err
	}
	if !fresh {
		log.Debug().Str("id", id).Msg("duplicate activity, already journaled")
		return nil
	}

	err = d.resolver.Resolve(ctx, raw)
	switch {
	case err == nil:
		return nil
	case streams.IsUnmatchedErr(err):
		log.Debug().Err(fmt.Errorf("%w: %s", federation.ErrUnsupported, typ)).Str("id", id).Msg("ignoring activity")
		return nil
	default:
		// Release the journal entry so the remote's retry of the same id is
		// not dropped as a duplicate.
		if dropErr := d.db.RemoveInboundActivity(ctx, id); dropErr != nil {
			log.Error().Err(dropErr).Str("id", id).Msg("could not release failed activity")
		}
		return err
	}
}

func (d *Dispatcher) handleFollow(ctx context.Context, follow vocab.ActivityStreamsFollow) error {
	target := objectIri(follow.GetActivityStreamsObject())
	if target == nil {
		return fmt.Errorf("%w: follow object", federation.ErrMissingProperty)
	}

	local, err := d.db.FindActorByUri(ctx, target)
	if errors.Is(err, db.ErrNotFound) {
		log.Info().Str("target", target.String()).Msg("follow for an unknown local actor")
		return nil
	} else if err != nil {
		return err
	}

	remote := actorIri(follow.GetActivityStreamsActor())
	if remote == nil {
		return fmt.Errorf("%w: follow actor", federation.ErrMissingProperty)
	}

	profile, err := d.fetchProfile(ctx, remote)
	if err != nil {
		return fmt.Errorf("fetching follower %s: %w", remote, err)
	}

	err = d.db.AddFollower(ctx, domain.Follower{
		ActorID:     local.ID,
		Uri:         remote,
		Inbox:       profile.inbox,
		SharedInbox: profile.sharedInbox,
		Username:    profile.username,
		Domain:      remote.Hostname(),
		FollowedAt:  d.now(),
	})
	if err != nil {
		return err
	}
	log.Info().Str("follower", remote.String()).Str("local", local.Username).Msg("new follower")

	if !d.cfg.AutoAcceptFollows {
		return nil
	}
	return d.sender.Send(ctx, local.ID, profile.inbox, d.builder.Accept(local, follow))
}

func (d *Dispatcher) handleUndo(ctx context.Context, undo vocab.ActivityStreamsUndo) error {
	remote := actorIri(undo.GetActivityStreamsActor())
	if remote == nil {
		return fmt.Errorf("%w: undo actor", federation.ErrMissingProperty)
	}

	obj := undo.GetActivityStreamsObject()
	if obj == nil {
		return nil
	}

	for iter := obj.Begin(); iter != obj.End(); iter = iter.Next() {
		switch {
		case iter.IsActivityStreamsFollow():
			follow := iter.GetActivityStreamsFollow()
			target := objectIri(follow.GetActivityStreamsObject())
			if target == nil {
				continue
			}
			local, err := d.db.FindActorByUri(ctx, target)
			if errors.Is(err, db.ErrNotFound) {
				continue
			} else if err != nil {
				return err
			}
			if err := d.db.RemoveFollower(ctx, local.ID, remote); err != nil {
				return err
			}
			log.Info().Str("follower", remote.String()).Str("local", local.Username).Msg("follower left")

		case iter.IsActivityStreamsLike():
			like := iter.GetActivityStreamsLike()
			if err := d.retractEngagement(ctx, remote, objectIri(like.GetActivityStreamsObject()), domain.VerbLike, domain.CounterLikes); err != nil {
				return err
			}

		case iter.IsActivityStreamsAnnounce():
			announce := iter.GetActivityStreamsAnnounce()
			if err := d.retractEngagement(ctx, remote, objectIri(announce.GetActivityStreamsObject()), domain.VerbAnnounce, domain.CounterShares); err != nil {
				return err
			}

		default:
			log.Debug().Msg("ignoring undo of an unhandled activity")
		}
	}
	return nil
}

func (d *Dispatcher) handleLike(ctx context.Context, like vocab.ActivityStreamsLike) error {
	return d.recordEngagement(ctx,
		actorIri(like.GetActivityStreamsActor()),
		objectIri(like.GetActivityStreamsObject()),
		domain.VerbLike, domain.CounterLikes)
}

func (d *Dispatcher) handleAnnounce(ctx context.Context, announce vocab.ActivityStreamsAnnounce) error {
	return d.recordEngagement(ctx,
		actorIri(announce.GetActivityStreamsActor()),
		objectIri(announce.GetActivityStreamsObject()),
		domain.VerbAnnounce, domain.CounterShares)
}

// recordEngagement bumps a post counter exactly once per (post, actor, verb),
// regardless of how many times the activity is delivered.
func (d *Dispatcher) recordEngagement(ctx context.Context, remote, object *url.URL, verb, counter string) error {
	if remote == nil || object == nil {
		return fmt.Errorf("%w: actor or object", federation.ErrMissingProperty)
	}

	post, err := d.resolvePost(ctx, object)
	if errors.Is(err, db.ErrNotFound) {
		log.Debug().Str("object", object.String()).Msg("engagement with unknown content")
		return nil
	} else if err != nil {
		return err
	}

	fresh, err := d.db.AddEngagement(ctx, post.ID, remote.String(), verb)
	if err != nil {
		return err
	}
	if !fresh {
		return nil
	}
	return d.db.IncrementCounter(ctx, post.ID, counter)
}

func (d *Dispatcher) retractEngagement(ctx context.Context, remote, object *url.URL, verb, counter string) error {
	if remote == nil || object == nil {
		return nil
	}

	post, err := d.resolvePost(ctx, object)
	if errors.Is(err, db.ErrNotFound) {
		return nil
	} else if err != nil {
		return err
	}

	removed, err := d.db.RemoveEngagement(ctx, post.ID, remote.String(), verb)
	if err != nil || !removed {
		return err
	}
	return d.db.DecrementCounter(ctx, post.ID, counter)
}

// handleCreate ingests a remote reply: a Note whose inReplyTo resolves to
// local content. Anything else a remote server creates is none of our
// business and is dropped.
func (d *Dispatcher) handleCreate(ctx context.Context, create vocab.ActivityStreamsCreate) error {
	note := firstNote(create.GetActivityStreamsObject())
	if note == nil {
		return nil
	}

	parent := inReplyToIri(note.GetActivityStreamsInReplyTo())
	if parent == nil {
		return nil
	}
	post, err := d.resolvePost(ctx, parent)
	if errors.Is(err, db.ErrNotFound) {
		return nil
	} else if err != nil {
		return err
	}

	author := attributedToIri(note.GetActivityStreamsAttributedTo())
	if author == nil {
		author = actorIri(create.GetActivityStreamsActor())
	}
	if author == nil {
		return fmt.Errorf("%w: note author", federation.ErrMissingProperty)
	}

	noteId := note.GetJSONLDId()
	if noteId == nil || noteId.Get() == nil {
		return fmt.Errorf("%w: note id", federation.ErrMissingProperty)
	}

	profile, err := d.fetchProfile(ctx, author)
	if err != nil {
		return fmt.Errorf("fetching reply author %s: %w", author, err)
	}
	remoteUser, err := d.db.FindOrCreateRemoteUser(ctx, domain.RemoteUser{
		Uri:         author,
		Username:    profile.username,
		Domain:      author.Hostname(),
		DisplayName: profile.displayName,
		IconUrl:     profile.iconUrl,
		Software:    profile.software,
		LastFetched: d.now(),
	})
	if err != nil {
		return err
	}

	created := d.now()
	if p := note.GetActivityStreamsPublished(); p != nil && p.IsXMLSchemaDateTime() {
		created = p.Get()
	}

	_, err = d.db.CreateReply(ctx, domain.Reply{
		PostID:       post.ID,
		RemoteUserID: remoteUser.ID,
		Uri:          noteId.Get(),
		Body:         contentString(note.GetActivityStreamsContent()),
		Software:     remoteUser.Software,
		Created:      created,
	})
	if errors.Is(err, db.ErrConflict) {
		log.Debug().Str("uri", noteId.Get().String()).Msg("reply already ingested")
		return nil
	} else if err != nil {
		return err
	}

	return d.db.IncrementCounter(ctx, post.ID, domain.CounterReplies)
}

// resolvePost maps an object URI back to a local post. Both the canonical
// federated note URI and the public post URL are accepted, since remote
// software is inconsistent about which it echoes back.
func (d *Dispatcher) resolvePost(ctx context.Context, object *url.URL) (domain.Post, error) {
	if object.Host != d.cfg.Url.Host && object.Host != d.cfg.PublicUrl.Host {
		return domain.Post{}, db.ErrNotFound
	}

	path := object.EscapedPath()
	if rest, ok := strings.CutPrefix(path, "/activitypub/notes/"); ok {
		id, err := strconv.ParseInt(rest, 10, 64)
		if err != nil {
			return domain.Post{}, db.ErrNotFound
		}
		return d.db.GetPostByID(ctx, id)
	}
	if slug, ok := strings.CutPrefix(path, "/posts/"); ok && slug != "" && !strings.Contains(slug, "/") {
		return d.db.GetPostBySlug(ctx, slug)
	}
	return domain.Post{}, db.ErrNotFound
}

func sameHost(keyId, actorUri string) error {
	key, err := url.Parse(keyId)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrActorMismatch, err)
	}
	actor, err := url.Parse(actorUri)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrActorMismatch, err)
	}
	if key.Host != actor.Host {
		return fmt.Errorf("%w: key %s, actor %s", ErrActorMismatch, key.Host, actor.Host)
	}
	return nil
}

// referencedUri reads an id out of a property that may hold a bare IRI
// string or an embedded object.
func referencedUri(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case map[string]any:
		id, _ := x["id"].(string)
		return id
	case []any:
		for _, e := range x {
			if s := referencedUri(e); s != "" {
				return s
			}
		}
	}
	return ""
}
