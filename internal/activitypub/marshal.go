package activitypub

import (
	"encoding/json"

	"code.superseriousbusiness.org/activity/streams"
	"code.superseriousbusiness.org/activity/streams/vocab"
)

// Marshal serializes an activity to the JSON bytes placed on the wire,
// @context included.
func Marshal(t vocab.Type) ([]byte, error) {
	m, err := streams.Serialize(t)
	if err != nil {
		return nil, err
	}
	return json.Marshal(m)
}
