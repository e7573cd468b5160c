package rest

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/rediwo/refdata/logger"
	"github.com/rediwo/refdata/rest/handlers"
	"github.com/rediwo/refdata/rest/middleware"
	"github.com/rediwo/refdata/service"
)

// Router handles REST API routing
type Router struct {
	mux    *mux.Router
	assets *handlers.AssetHandler
	logger logger.Logger
}

// NewRouter creates the router for the asset endpoints
func NewRouter(svc *service.Service, defaultPageSize int, l logger.Logger) *Router {
	l = logger.OrGlobal(l)

	router := &Router{
		mux:    mux.NewRouter(),
		assets: handlers.NewAssetHandler(svc, defaultPageSize, l),
		logger: l,
	}

	router.setupRoutes()
	return router
}

// setupRoutes configures all API routes. Pair routes come first so that
// "pairs" is never taken for an asset id.
func (r *Router) setupRoutes() {
	r.handle("/assets/pairs/", r.assets.CreateAssetPair, http.MethodPost)
	r.handle("/assets/pairs/", r.assets.ListAssetPairs, http.MethodGet)
	r.handle("/assets/pairs/{assetPairId}", r.assets.GetAssetPair, http.MethodGet)
	r.handle("/assets/pairs/{assetPairId}", r.assets.DeleteAssetPair, http.MethodDelete)

	r.handle("/assets/", r.assets.CreateAsset, http.MethodPost)
	r.handle("/assets/", r.assets.ListAssets, http.MethodGet)
	r.handle("/assets/{assetId}", r.assets.GetAsset, http.MethodGet)
	r.handle("/assets/{assetId}", r.assets.DeleteAsset, http.MethodDelete)

	r.mux.HandleFunc("/health", r.withMiddleware(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`{"status":"ok"}`))
	})).Methods(http.MethodGet)
}

func (r *Router) handle(path string, handler http.HandlerFunc, method string) {
	r.mux.HandleFunc(path, r.withMiddleware(handler)).Methods(method, http.MethodOptions)
}

// Mount serves handler under path without the JSON middleware, e.g. the
// GraphQL endpoint
func (r *Router) Mount(path string, handler http.Handler) {
	r.mux.Handle(path, middleware.Chain(handler.ServeHTTP,
		middleware.Recover(r.logger),
		middleware.CORS(),
		middleware.Logging(r.logger),
	))
}

// withMiddleware wraps a handler with middleware
func (r *Router) withMiddleware(handler http.HandlerFunc) http.HandlerFunc {
	return middleware.Chain(
		handler,
		middleware.Recover(r.logger),
		middleware.CORS(),
		middleware.JSON(),
		middleware.Logging(r.logger),
	)
}

// ServeHTTP implements http.Handler
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.mux.ServeHTTP(w, req)
}
