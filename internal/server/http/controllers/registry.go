package controllers

import (
	"net/http"

	"github.com/rzbill/vesta/internal/runtime"
	streamsvc "github.com/rzbill/vesta/internal/services/streams"
)

// ControllerRegistry manages all HTTP controllers.
//
// It provides a centralized way to register all controller routes
// and manages the lifecycle of individual controllers.
type ControllerRegistry struct {
	general *GeneralController
	streams *StreamsController
	ledger  *LedgerController
}

// NewControllerRegistry creates a new controller registry.
//
// It initializes all controllers with the provided runtime and service.
func NewControllerRegistry(rt *runtime.Runtime, svc *streamsvc.Service) *ControllerRegistry {
	return &ControllerRegistry{
		general: NewGeneralController(rt),
		streams: NewStreamsController(rt, svc),
		ledger:  NewLedgerController(rt, svc),
	}
}

// RegisterAllRoutes registers all controller routes with the given mux.
//
// This method sets up all HTTP endpoints for the Vesta service: general
// endpoints (health), stream lifecycle endpoints, and ledger administration
// plus the emitted-record feed.
func (r *ControllerRegistry) RegisterAllRoutes(mux *http.ServeMux) {
	r.general.RegisterRoutes(mux)
	r.streams.RegisterRoutes(mux)
	r.ledger.RegisterRoutes(mux)
}
