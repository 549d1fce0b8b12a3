package state

import (
	"github.com/tarnsocial/tarn/internal/activitypub"
	"github.com/tarnsocial/tarn/internal/config"
	"github.com/tarnsocial/tarn/internal/db"
	"github.com/tarnsocial/tarn/internal/inbound"
	"github.com/tarnsocial/tarn/internal/registry"
)

// State bundles the dependencies the HTTP layer needs.
type State struct {
	DB         db.DB
	Config     config.Configuration
	Registry   *registry.Registry
	Builder    *activitypub.Builder
	Dispatcher *inbound.Dispatcher
}
