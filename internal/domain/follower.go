package domain

import (
	"net/url"
	"time"
)

// Follower is a remote actor following a local one. Unique on
// (ActorID, Uri); created when an inbound Follow is accepted and removed on
// Undo(Follow).
type Follower struct {
	ID          int64
	ActorID     int64
	Uri         *url.URL
	Inbox       *url.URL
	SharedInbox *url.URL
	Username    string
	Domain      string
	FollowedAt  time.Time
}

// DeliveryInbox prefers the shared inbox when the remote instance publishes
// one, reducing fan-out to busy instances.
func (f Follower) DeliveryInbox() *url.URL {
	if f.SharedInbox != nil {
		return f.SharedInbox
	}
	return f.Inbox
}

// BlockedInstance is an administrative block on a remote domain. Consulted
// before every outbound delivery attempt.
type BlockedInstance struct {
	Domain  string
	Reason  string
	Created time.Time
}
