package web

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
	"github.com/tarnsocial/tarn/internal/activitypub"
	"github.com/tarnsocial/tarn/internal/db"
	"github.com/tarnsocial/tarn/internal/domain"
	"github.com/tarnsocial/tarn/internal/state"
)

const activityJson = "application/activity+json"

// ActorEndpoint serves an actor document with the public key attached. Users
// and groups must already exist; the instance actor is created on first
// request since nothing else guarantees it was dereferenced before.
func ActorEndpoint(s *state.State, t domain.ActorType) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var actor domain.Actor
		var err error
		if t == domain.ActorInstance {
			actor, err = s.Registry.InstanceActor(r.Context())
		} else {
			actor, err = s.Registry.FindByUsername(r.Context(), chi.URLParam(r, "name"), t)
		}
		if err != nil {
			http.Error(w, "", handleErr(err))
			return
		}

		kp, err := s.Registry.KeyPair(r.Context(), actor)
		if err != nil {
			log.Error().Err(err).Str("actor", actor.Uri.String()).Msg("actor has no key pair")
			http.Error(w, "", http.StatusInternalServerError)
			return
		}

		body, err := activitypub.Marshal(s.Builder.ActorDocument(actor, kp.PublicKeyPem))
		if err != nil {
			log.Error().Err(err).Msg("unable to serialize actor document")
			http.Error(w, "", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", activityJson)
		w.Write(body)
	}
}

func handleErr(err error) int {
	switch {
	case errors.Is(err, db.ErrNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}
