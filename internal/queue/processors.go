package queue

import (
	"context"
	"fmt"
	"net/url"

	"github.com/mikestefanello/backlite"
	"github.com/rs/zerolog/log"
	"github.com/tarnsocial/tarn/internal/delivery"
)

func (q *Queue) register() {
	q.tasks.Register(backlite.NewQueue[DeliverJob](q.deliver()))
}

func (q *Queue) deliver() func(context.Context, DeliverJob) error {
	return func(ctx context.Context, job DeliverJob) error {
		inbox, err := url.Parse(job.Inbox)
		if err != nil {
			return err
		}

		kp, err := q.db.GetKeyPair(ctx, job.ActorID)
		if err != nil {
			return err
		}

		res := q.deliverer.Deliver(ctx, kp, inbox, job.Body)
		switch res.Outcome {
		case delivery.Skipped:
			// Policy decisions are final; retrying would reach the same one.
			log.Info().Str("inbox", job.Inbox).Str("reason", res.Reason).Msg("delivery skipped")
			return nil
		case delivery.Failed:
			return fmt.Errorf("delivery to %s failed after %d attempts: %s", job.Inbox, res.Attempts, res.Reason)
		}

		log.Debug().Str("inbox", job.Inbox).Int("attempts", res.Attempts).Msg("delivered activity")
		return nil
	}
}
