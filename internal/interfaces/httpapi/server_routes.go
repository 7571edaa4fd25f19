package httpapi

import "net/http"

func registerSystemRoutes(mux *http.ServeMux, handler *Handler, cfg RouterConfig) {
	mux.HandleFunc("GET /healthz", handler.Healthz)
	if cfg.Metrics != nil {
		mux.Handle("GET /metrics", cfg.Metrics)
	}
	if !cfg.SwaggerEnabled {
		return
	}

	mux.HandleFunc("GET "+openAPIPath, handler.OpenAPI)
	mux.HandleFunc("GET /docs", handler.SwaggerUI)
	mux.HandleFunc("GET /docs/", handler.SwaggerUI)
}

func registerPublicRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("GET /v1/managers/resolve", handler.ResolveManager)
	mux.HandleFunc("GET /v1/managers/{managerID}/squad", handler.GetSquad)
	mux.HandleFunc("GET /v1/managers/{managerID}/comparison", handler.GetComparison)
	mux.HandleFunc("GET /v1/references", handler.ListReferences)
	mux.HandleFunc("GET /v1/ingestion/progress", handler.GetIngestionProgress)
}

func registerInternalJobRoutes(mux *http.ServeMux, handler *Handler, internalJobToken string) {
	mux.Handle("POST /v1/internal/jobs/refresh-references", RequireInternalJobToken(internalJobToken, http.HandlerFunc(handler.RefreshReferences)))
	mux.Handle("POST /v1/internal/jobs/ingest", RequireInternalJobToken(internalJobToken, http.HandlerFunc(handler.RunIngestion)))
}
