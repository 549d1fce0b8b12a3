package domain

import (
	"net/url"
	"time"
)

// Public is the ActivityStreams Public collection, used to address
// activities to the world at large.
var Public, _ = url.Parse("https://www.w3.org/ns/activitystreams#Public")

// Post is the slice of a platform post the federation engine needs: enough
// to build Create/Update/Delete activities and to resolve inbound object
// URIs back to local content.
type Post struct {
	ID           int64
	Slug         string
	Title        string
	Body         string
	ThumbnailUrl string
	// GroupUsername names the community the post belongs to, empty when the
	// post is not part of one. Used for FEP-1b12 group addressing.
	GroupUsername  string
	AuthorUsername string
	Published      time.Time
	Edited         time.Time
}

// Reply is a comment created from an inbound federated Create(Note)
// activity, attributed to a RemoteUser.
type Reply struct {
	ID           int64
	PostID       int64
	RemoteUserID int64
	Uri          *url.URL
	Body         string
	Software     string
	Created      time.Time
}

// Counter names understood by the content repository.
const (
	CounterLikes   = "federation_likes"
	CounterShares  = "federation_shares"
	CounterReplies = "federation_replies"
)

// Engagement verbs recorded per (post, remote actor) for deduplication.
const (
	VerbLike     = "like"
	VerbAnnounce = "announce"
)
