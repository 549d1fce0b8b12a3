// Package web exposes the federation surface over HTTP: actor documents,
// per-actor inboxes and the shared inbox. The human-facing site lives in a
// separate service; only ActivityPub traffic terminates here.
package web

import (
	"github.com/go-chi/chi/v5"
	"github.com/tarnsocial/tarn/internal/domain"
	"github.com/tarnsocial/tarn/internal/state"
)

func Mount(s *state.State, r chi.Router) {
	r.Route("/activitypub", func(r chi.Router) {
		r.Get("/instance", ActorEndpoint(s, domain.ActorInstance))
		r.Post("/instance/inbox", InboxEndpoint(s))

		r.Get("/users/{name}", ActorEndpoint(s, domain.ActorUser))
		r.Post("/users/{name}/inbox", InboxEndpoint(s))

		r.Get("/groups/{name}", ActorEndpoint(s, domain.ActorGroup))
		r.Post("/groups/{name}/inbox", InboxEndpoint(s))

		// Shared inbox, advertised through every actor's endpoints map.
		r.Post("/inbox", InboxEndpoint(s))
	})
}
