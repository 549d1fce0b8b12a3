package impl

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"

	"github.com/tarnsocial/tarn/internal/domain"
)

func (d *dbImpl) AddFollower(ctx context.Context, f domain.Follower) error {
	var shared sql.NullString
	if f.SharedInbox != nil {
		shared = sql.NullString{Valid: true, String: f.SharedInbox.String()}
	}

	_, err := d.db.ExecContext(ctx, `
		INSERT INTO followers (actor_id, uri, inbox, shared_inbox, username, domain)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT (actor_id, uri) DO NOTHING`,
		f.ActorID, f.Uri.String(), f.Inbox.String(), shared, f.Username, f.Domain,
	)
	if err != nil {
		return d.HandleError(err)
	}
	return nil
}

func (d *dbImpl) RemoveFollower(ctx context.Context, actorID int64, followerUri *url.URL) error {
	_, err := d.db.ExecContext(ctx,
		`DELETE FROM followers WHERE actor_id = ? AND uri = ?`, actorID, followerUri.String())
	if err != nil {
		return d.HandleError(err)
	}
	return nil
}

func (d *dbImpl) GetFollowers(ctx context.Context, actorID int64) ([]domain.Follower, error) {
	rows, err := d.db.QueryContext(ctx, `
		SELECT id, actor_id, uri, inbox, shared_inbox, username, domain, followed_at
		FROM followers WHERE actor_id = ?`, actorID)
	if err != nil {
		return nil, d.HandleError(err)
	}
	defer rows.Close()

	var followers []domain.Follower
	for rows.Next() {
		var f domain.Follower
		var uri, inbox string
		var shared sql.NullString
		err = rows.Scan(&f.ID, &f.ActorID, &uri, &inbox, &shared, &f.Username, &f.Domain, &f.FollowedAt)
		if err != nil {
			return nil, d.HandleError(err)
		}

		if f.Uri, err = url.Parse(uri); err != nil {
			return nil, fmt.Errorf("corrupt follower uri %q: %w", uri, err)
		}
		if f.Inbox, err = url.Parse(inbox); err != nil {
			return nil, fmt.Errorf("corrupt follower inbox %q: %w", inbox, err)
		}
		if shared.Valid {
			if f.SharedInbox, err = url.Parse(shared.String); err != nil {
				return nil, fmt.Errorf("corrupt shared inbox %q: %w", shared.String, err)
			}
		}
		followers = append(followers, f)
	}
	return followers, rows.Err()
}

func (d *dbImpl) IsInstanceBlocked(ctx context.Context, domain string) (bool, error) {
	var blocked bool
	row := d.db.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT TRUE FROM blocked_instances WHERE domain = ?)`, domain)
	if err := row.Scan(&blocked); err != nil {
		return false, d.HandleError(err)
	}
	return blocked, nil
}

func (d *dbImpl) BlockInstance(ctx context.Context, domain, reason string) error {
	_, err := d.db.ExecContext(ctx, `
		INSERT INTO blocked_instances (domain, reason) VALUES (?, ?)
		ON CONFLICT (domain) DO UPDATE SET reason = excluded.reason`,
		domain, reason)
	if err != nil {
		return d.HandleError(err)
	}
	return nil
}

func (d *dbImpl) UnblockInstance(ctx context.Context, domain string) error {
	_, err := d.db.ExecContext(ctx, `DELETE FROM blocked_instances WHERE domain = ?`, domain)
	if err != nil {
		return d.HandleError(err)
	}
	return nil
}

func (d *dbImpl) FindOrCreateRemoteUser(ctx context.Context, u domain.RemoteUser) (domain.RemoteUser, error) {
	_, err := d.db.ExecContext(ctx, `
		INSERT INTO remote_users (uri, username, domain, display_name, icon_url, software)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT (uri) DO UPDATE SET
			display_name = excluded.display_name,
			icon_url = excluded.icon_url,
			software = excluded.software,
			last_fetched_at = CURRENT_TIMESTAMP`,
		u.Uri.String(), u.Username, u.Domain, u.DisplayName, u.IconUrl, u.Software,
	)
	if err != nil {
		return domain.RemoteUser{}, d.HandleError(err)
	}

	var out domain.RemoteUser
	var uri string
	row := d.db.QueryRowContext(ctx, `
		SELECT id, uri, username, domain, display_name, icon_url, software, last_fetched_at
		FROM remote_users WHERE uri = ?`, u.Uri.String())
	err = row.Scan(&out.ID, &uri, &out.Username, &out.Domain, &out.DisplayName, &out.IconUrl, &out.Software, &out.LastFetched)
	if err != nil {
		return out, d.HandleError(err)
	}
	out.Uri, err = url.Parse(uri)
	return out, err
}
