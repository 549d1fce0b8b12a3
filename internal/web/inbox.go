package web

import (
	"errors"
	"io"
	"net/http"

	"github.com/rs/zerolog/log"
	"github.com/tarnsocial/tarn/internal/federation"
	"github.com/tarnsocial/tarn/internal/inbound"
	"github.com/tarnsocial/tarn/internal/state"
)

// maxActivitySize bounds inbox request bodies. Real activities are a few KB;
// anything near the limit is abuse.
const maxActivitySize = 1 << 20

// InboxEndpoint accepts one activity per POST. Activities the engine chooses
// to ignore still get a 202, so remote servers do not requeue them forever.
func InboxEndpoint(s *state.State) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(io.LimitReader(r.Body, maxActivitySize+1))
		if err != nil {
			http.Error(w, "", http.StatusBadRequest)
			return
		}
		if len(body) > maxActivitySize {
			http.Error(w, "", http.StatusRequestEntityTooLarge)
			return
		}

		err = s.Dispatcher.Dispatch(r.Context(), r, body)
		switch {
		case err == nil:
			w.WriteHeader(http.StatusAccepted)
		case errors.Is(err, inbound.ErrUnverifiable), errors.Is(err, inbound.ErrActorMismatch):
			log.Warn().Err(err).Msg("rejected inbox delivery")
			http.Error(w, "", http.StatusUnauthorized)
		case errors.Is(err, federation.ErrMissingProperty), errors.Is(err, federation.ErrUnprocessablePropValue):
			http.Error(w, "", http.StatusBadRequest)
		default:
			log.Error().Err(err).Msg("inbox dispatch failed")
			http.Error(w, "", http.StatusInternalServerError)
		}
	}
}
