package domain

import (
	"net/url"
	"time"
)

// ActorType discriminates the three kinds of federated identity the platform
// exposes. All three share the same record layout; behaviour differences are
// handled through small helpers rather than subtyping.
type ActorType string

const (
	ActorInstance ActorType = "instance"
	ActorUser     ActorType = "user"
	ActorGroup    ActorType = "group"
)

// ActivityPubType maps the local actor kind to its ActivityStreams type name.
func (t ActorType) ActivityPubType() string {
	switch t {
	case ActorInstance:
		return "Application"
	case ActorGroup:
		return "Group"
	default:
		return "Person"
	}
}

// Actor is a federated identity: the instance itself, a user, or a community
// group. The URIs are deterministic functions of (domain, type, username) and
// immutable once the row exists.
type Actor struct {
	ID        int64
	Type      ActorType
	Username  string
	Uri       *url.URL
	Inbox     *url.URL
	Outbox    *url.URL
	Followers *url.URL
	Name      string
	Summary   string
	IconUrl   string
	Created   time.Time
}

func (a Actor) IsGroup() bool {
	return a.Type == ActorGroup
}

// KeyId is the fragment URI under which the actor's public key is published.
func (a Actor) KeyId() *url.URL {
	return a.Uri.ResolveReference(mainKey)
}

var mainKey, _ = url.Parse("#main-key")

// ActorUri derives the canonical URI for an actor of the given type. The
// instance actor lives at a fixed path and ignores the username.
func ActorUri(base *url.URL, t ActorType, username string) *url.URL {
	switch t {
	case ActorInstance:
		return base.JoinPath("activitypub", "instance")
	case ActorGroup:
		return base.JoinPath("activitypub", "groups", username)
	default:
		return base.JoinPath("activitypub", "users", username)
	}
}

// ProfileUrl is the human-facing page for an actor, used in webfinger
// responses and actor documents.
func ProfileUrl(base *url.URL, a Actor) *url.URL {
	switch a.Type {
	case ActorInstance:
		return base
	case ActorGroup:
		return base.JoinPath("c", a.Username)
	default:
		return base.JoinPath("u", a.Username)
	}
}

// KeyPair is the RSA key material owned by exactly one actor. The private
// half never leaves the key store and must never appear in logs or outbound
// documents.
type KeyPair struct {
	ActorID       int64
	KeyId         string
	PublicKeyPem  string
	PrivateKeyPem string
}
