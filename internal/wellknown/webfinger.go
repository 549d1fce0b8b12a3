// Package wellknown serves webfinger, the discovery endpoint that turns
// acct:name@host handles into actor URIs. Group handles carry a leading "!",
// the Lemmy convention for communities.
package wellknown

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
	"github.com/tarnsocial/tarn/internal/config"
	"github.com/tarnsocial/tarn/internal/db"
	"github.com/tarnsocial/tarn/internal/domain"
	"github.com/tarnsocial/tarn/internal/state"
)

var ErrBadResource = errors.New("unparseable webfinger resource")

type WebfingerLink struct {
	Rel  string `json:"rel"`
	Type string `json:"type,omitempty"`
	Href string `json:"href"`
}

type WebfingerResponse struct {
	Subject string          `json:"subject"`
	Aliases []string        `json:"aliases,omitempty"`
	Links   []WebfingerLink `json:"links"`
}

func Mount(s *state.State, r chi.Router) {
	r.Route("/.well-known", func(r chi.Router) {
		r.Get("/webfinger", WebfingerEndpoint(s))
	})
}

func WebfingerEndpoint(s *state.State) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resource := r.URL.Query().Get("resource")

		actor, err := Resolve(r.Context(), s, resource)
		if err != nil {
			http.Error(w, "", handleErr(err))
			return
		}

		w.Header().Set("Content-Type", "application/jrd+json")
		if err = json.NewEncoder(w).Encode(ResponseFor(s.Config, actor)); err != nil {
			log.Error().Err(err).Msg("unable to marshal webfinger response")
			http.Error(w, "", http.StatusInternalServerError)
		}
	}
}

// Resolve maps a webfinger resource to a local actor. The instance actor's
// username shadows any user of the same name, so the instance identity stays
// discoverable no matter what users register.
func Resolve(ctx context.Context, s *state.State, resource string) (domain.Actor, error) {
	username, host, group, err := parseResource(resource)
	if err != nil {
		return domain.Actor{}, err
	}

	if host != s.Config.Domain && host != s.Config.PublicDomain {
		return domain.Actor{}, fmt.Errorf("%w: host %s is not local", db.ErrNotFound, host)
	}

	if group {
		return s.Registry.FindByUsername(ctx, username, domain.ActorGroup)
	}
	if username == s.Config.ActorUsername {
		return s.Registry.FindByUsername(ctx, username, domain.ActorInstance)
	}
	return s.Registry.FindByUsername(ctx, username, domain.ActorUser)
}

// ResponseFor builds the JRD document for a local actor.
func ResponseFor(cfg config.Configuration, actor domain.Actor) WebfingerResponse {
	profile := domain.ProfileUrl(cfg.PublicUrl, actor)

	name := actor.Username
	if actor.IsGroup() {
		name = "!" + name
	}

	return WebfingerResponse{
		Subject: fmt.Sprintf("acct:%s@%s", name, cfg.PublicDomain),
		Aliases: []string{actor.Uri.String(), profile.String()},
		Links: []WebfingerLink{
			{Rel: "self", Type: "application/activity+json", Href: actor.Uri.String()},
			{Rel: "http://webfinger.net/rel/profile-page", Type: "text/html", Href: profile.String()},
		},
	}
}

func parseResource(resource string) (username, host string, group bool, err error) {
	acct, ok := strings.CutPrefix(resource, "acct:")
	if !ok {
		return "", "", false, fmt.Errorf("%w: %q", ErrBadResource, resource)
	}

	username, host, ok = strings.Cut(acct, "@")
	if !ok || username == "" || host == "" {
		return "", "", false, fmt.Errorf("%w: %q", ErrBadResource, resource)
	}

	if bare, isGroup := strings.CutPrefix(username, "!"); isGroup {
		if bare == "" {
			return "", "", false, fmt.Errorf("%w: %q", ErrBadResource, resource)
		}
		return bare, strings.ToLower(host), true, nil
	}
	return username, strings.ToLower(host), false, nil
}

func handleErr(err error) int {
	switch {
	case errors.Is(err, ErrBadResource):
		return http.StatusBadRequest
	case errors.Is(err, db.ErrNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}
