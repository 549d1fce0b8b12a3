// Package queue runs outbound federation through a persistent SQLite-backed
// task queue. Deliveries survive restarts and are retried with backoff on
// top of the deliverer's own short retry loop.
package queue

import (
	"context"
	"fmt"
	"net/url"

	"code.superseriousbusiness.org/activity/streams/vocab"
	"github.com/mikestefanello/backlite"
	"github.com/rs/zerolog/log"
	"github.com/tarnsocial/tarn/internal/activitypub"
	"github.com/tarnsocial/tarn/internal/config"
	"github.com/tarnsocial/tarn/internal/db"
	"github.com/tarnsocial/tarn/internal/delivery"
	"github.com/tarnsocial/tarn/internal/federation"
	"github.com/tarnsocial/tarn/internal/registry"
)

type Queue struct {
	cfg       config.Configuration
	db        db.DB
	registry  *registry.Registry
	builder   *activitypub.Builder
	deliverer *delivery.Deliverer
	tasks     *backlite.Client
}

func New(ctx context.Context, cfg config.Configuration, database db.DB, reg *registry.Registry, builder *activitypub.Builder, deliverer *delivery.Deliverer, tasks *backlite.Client) *Queue {
	q := &Queue{
		cfg:       cfg,
		db:        database,
		registry:  reg,
		builder:   builder,
		deliverer: deliverer,
		tasks:     tasks,
	}
	q.register()
	q.tasks.Start(ctx)
	log.Info().Msg("started task queue")
	return q
}

// Send enqueues one activity from a local actor to one inbox. Used for
// targeted deliveries like the Accept answering a Follow.
func (q *Queue) Send(ctx context.Context, actorID int64, inbox *url.URL, activity vocab.Type) error {
	if inbox == nil {
		return fmt.Errorf("%w: delivery inbox", federation.ErrMissingProperty)
	}

	body, err := activitypub.Marshal(activity)
	if err != nil {
		return err
	}

	_, err = q.tasks.Add(DeliverJob{
		ActorID: actorID,
		Inbox:   inbox.String(),
		Body:    body,
	}).Ctx(ctx).Save()
	return err
}
