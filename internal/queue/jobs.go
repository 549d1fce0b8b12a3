package queue

import (
	"time"

	"github.com/mikestefanello/backlite"
)

const DeliverQueue = "Deliver"

// DeliverJob posts one serialized activity to one inbox, signed as the
// actor's key. The body is stored with the task, so what was queued is what
// goes on the wire even if the post changes meanwhile.
type DeliverJob struct {
	ActorID int64
	Inbox   string
	Body    []byte
}

func (j DeliverJob) Config() backlite.QueueConfig {
	return backlite.QueueConfig{
		Name:        DeliverQueue,
		MaxAttempts: 5,
		Backoff:     time.Minute,
		Timeout:     time.Minute,
		Retention: &backlite.Retention{
			Duration:   12 * time.Hour,
			OnlyFailed: false,
			Data: &backlite.RetainData{
				OnlyFailed: true,
			},
		},
	}
}
