package domain

import (
	"net/url"
	"time"
)

// RemoteUser is the cached minimal profile of a remote actor, created the
// first time one of their replies is ingested. Owned independently of local
// users.
type RemoteUser struct {
	ID          int64
	Uri         *url.URL
	Username    string
	Domain      string
	DisplayName string
	IconUrl     string
	// Software is the federated service detected from the actor document or
	// its URI shape ("mastodon", "lemmy", ...). Best effort, may be empty.
	Software    string
	LastFetched time.Time
}

// InboundActivity is the journal record kept for every verified inbound
// activity before it is dispatched. The activity URI doubles as a
// deduplication anchor.
type InboundActivity struct {
	Uri       string
	Type      string
	ActorUri  string
	ObjectUri string
	Raw       []byte
	Received  time.Time
}
