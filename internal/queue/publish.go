package queue

import (
	"context"

	"code.superseriousbusiness.org/activity/streams/vocab"
	"github.com/rs/zerolog/log"
	"github.com/tarnsocial/tarn/internal/activitypub"
	"github.com/tarnsocial/tarn/internal/domain"
)

// PublishPost federates a newly published post: a Create fanned out to the
// author's followers and, when the post belongs to a community, an Announce
// wrapping that Create fanned out to the group's followers. Lemmy-style
// servers subscribe to the group and surface the post through the Announce.
func (q *Queue) PublishPost(ctx context.Context, post domain.Post) error {
	author, err := q.registry.ForUser(ctx, post.AuthorUsername)
	if err != nil {
		return err
	}
	if err = q.fanOut(ctx, author, q.builder.Create(author, post)); err != nil {
		return err
	}

	if post.GroupUsername == "" {
		return nil
	}
	group, err := q.registry.ForGroup(ctx, post.GroupUsername, "")
	if err != nil {
		return err
	}
	return q.fanOut(ctx, group, q.builder.Announce(group, author, post))
}

// PublishUpdate federates an edit. Group followers receive the same Update
// the author's followers do, delivered under the group's signature.
func (q *Queue) PublishUpdate(ctx context.Context, post domain.Post) error {
	author, err := q.registry.ForUser(ctx, post.AuthorUsername)
	if err != nil {
		return err
	}
	update := q.builder.Update(author, post)
	if err = q.fanOut(ctx, author, update); err != nil {
		return err
	}

	if post.GroupUsername == "" {
		return nil
	}
	group, err := q.registry.ForGroup(ctx, post.GroupUsername, "")
	if err != nil {
		return err
	}
	return q.fanOut(ctx, group, update)
}

// PublishDelete federates a removal as Delete with a Tombstone object.
func (q *Queue) PublishDelete(ctx context.Context, post domain.Post) error {
	author, err := q.registry.ForUser(ctx, post.AuthorUsername)
	if err != nil {
		return err
	}
	del := q.builder.Delete(author, post.ID)
	if err = q.fanOut(ctx, author, del); err != nil {
		return err
	}

	if post.GroupUsername == "" {
		return nil
	}
	group, err := q.registry.ForGroup(ctx, post.GroupUsername, "")
	if err != nil {
		return err
	}
	return q.fanOut(ctx, group, del)
}

// fanOut enqueues one delivery per distinct follower inbox. Followers on the
// same instance collapse onto its shared inbox, so a thousand followers on
// one server cost a single delivery.
func (q *Queue) fanOut(ctx context.Context, actor domain.Actor, activity vocab.Type) error {
	body, err := activitypub.Marshal(activity)
	if err != nil {
		return err
	}

	followers, err := q.db.GetFollowers(ctx, actor.ID)
	if err != nil {
		return err
	}

	seen := make(map[string]bool, len(followers))
	enqueued := 0
	for _, f := range followers {
		inbox := f.DeliveryInbox()
		if inbox == nil || seen[inbox.String()] {
			continue
		}
		seen[inbox.String()] = true

		if _, err := q.tasks.Add(DeliverJob{ActorID: actor.ID, Inbox: inbox.String(), Body: body}).Ctx(ctx).Save(); err != nil {
			log.Error().Err(err).Str("inbox", inbox.String()).Msg("failed to enqueue delivery job")
			continue
		}
		enqueued++
	}

	log.Debug().Int("deliveries", enqueued).Int("followers", len(followers)).Str("actor", actor.Username).Msg("fanned out activity")
	return nil
}
