package activitypub

import (
	"fmt"
	"net/url"
	"time"
)

// Activity verbs used in deterministic activity ids.
const (
	VerbCreate   = "create"
	VerbUpdate   = "update"
	VerbDelete   = "delete"
	VerbAnnounce = "announce"
	VerbAccept   = "accept"
)

// NoteUri is the canonical federated id of a post. It is derived from the
// numeric post id, never from the client-facing slug, so renames on our side
// cannot break cross-instance references.
func NoteUri(base *url.URL, postID int64) *url.URL {
	return base.JoinPath("activitypub", "notes", fmt.Sprintf("%d", postID))
}

// ActivityUri builds the deterministic id of an activity about a post.
func ActivityUri(base *url.URL, verb string, postID int64) *url.URL {
	return base.JoinPath("activitypub", "activities", verb, fmt.Sprintf("%d", postID))
}

// TimestampedActivityUri is used where each emission needs a distinct id,
// such as one Update per edit.
func TimestampedActivityUri(base *url.URL, verb string, postID int64, at time.Time) *url.URL {
	return base.JoinPath("activitypub", "activities", verb, fmt.Sprintf("%d-%d", postID, at.Unix()))
}
