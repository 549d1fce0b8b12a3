package impl

import (
	"context"
	"fmt"

	"github.com/tarnsocial/tarn/internal/domain"
)

const postColumns = `id, slug, title, body, thumbnail_url, group_username, author_username, published_at, edited_at`

func scanPost(row rowScanner) (domain.Post, error) {
	var p domain.Post
	err := row.Scan(&p.ID, &p.Slug, &p.Title, &p.Body, &p.ThumbnailUrl, &p.GroupUsername, &p.AuthorUsername, &p.Published, &p.Edited)
	return p, err
}

func (d *dbImpl) GetPostByID(ctx context.Context, id int64) (domain.Post, error) {
	p, err := scanPost(d.db.QueryRowContext(ctx,
		`SELECT `+postColumns+` FROM posts WHERE id = ?`, id))
	if err != nil {
		return p, fmt.Errorf("%w: post %d", d.HandleError(err), id)
	}
	return p, nil
}

func (d *dbImpl) GetPostBySlug(ctx context.Context, slug string) (domain.Post, error) {
	p, err := scanPost(d.db.QueryRowContext(ctx,
		`SELECT `+postColumns+` FROM posts WHERE slug = ?`, slug))
	if err != nil {
		return p, fmt.Errorf("%w: post %q", d.HandleError(err), slug)
	}
	return p, nil
}

func (d *dbImpl) CreateReply(ctx context.Context, r domain.Reply) (domain.Reply, error) {
	res, err := d.db.ExecContext(ctx, `
		INSERT INTO replies (post_id, remote_user_id, uri, body, software)
		VALUES (?, ?, ?, ?, ?)`,
		r.PostID, r.RemoteUserID, r.Uri.String(), r.Body, r.Software)
	if err != nil {
		return r, d.HandleError(err)
	}
	r.ID, err = res.LastInsertId()
	return r, err
}

func (d *dbImpl) IncrementCounter(ctx context.Context, postID int64, counter string) error {
	_, err := d.db.ExecContext(ctx, `
		INSERT INTO post_counters (post_id, counter, value) VALUES (?, ?, 1)
		ON CONFLICT (post_id, counter) DO UPDATE SET value = value + 1`,
		postID, counter)
	if err != nil {
		return d.HandleError(err)
	}
	return nil
}

func (d *dbImpl) DecrementCounter(ctx context.Context, postID int64, counter string) error {
	_, err := d.db.ExecContext(ctx, `
		UPDATE post_counters SET value = MAX(value - 1, 0)
		WHERE post_id = ? AND counter = ?`,
		postID, counter)
	if err != nil {
		return d.HandleError(err)
	}
	return nil
}

func (d *dbImpl) AddEngagement(ctx context.Context, postID int64, actorUri, verb string) (bool, error) {
	res, err := d.db.ExecContext(ctx, `
		INSERT INTO engagements (post_id, actor_uri, verb) VALUES (?, ?, ?)
		ON CONFLICT (post_id, actor_uri, verb) DO NOTHING`,
		postID, actorUri, verb)
	if err != nil {
		return false, d.HandleError(err)
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

func (d *dbImpl) RemoveEngagement(ctx context.Context, postID int64, actorUri, verb string) (bool, error) {
	res, err := d.db.ExecContext(ctx,
		`DELETE FROM engagements WHERE post_id = ? AND actor_uri = ? AND verb = ?`,
		postID, actorUri, verb)
	if err != nil {
		return false, d.HandleError(err)
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

func (d *dbImpl) RemoveInboundActivity(ctx context.Context, uri string) error {
	_, err := d.db.ExecContext(ctx, `DELETE FROM inbound_activities WHERE uri = ?`, uri)
	if err != nil {
		return d.HandleError(err)
	}
	return nil
}

func (d *dbImpl) RecordInboundActivity(ctx context.Context, a domain.InboundActivity) (bool, error) {
	res, err := d.db.ExecContext(ctx, `
		INSERT INTO inbound_activities (uri, type, actor_uri, object_uri, raw)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (uri) DO NOTHING`,
		a.Uri, a.Type, a.ActorUri, a.ObjectUri, a.Raw)
	if err != nil {
		return false, d.HandleError(err)
	}
	n, err := res.RowsAffected()
	return n > 0, err
}
