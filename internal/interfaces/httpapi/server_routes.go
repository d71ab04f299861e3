package httpapi

import "net/http"

func registerSystemRoutes(mux *http.ServeMux, handler *Handler, swaggerEnabled bool) {
	mux.HandleFunc("GET /healthz", handler.Healthz)
	if !swaggerEnabled {
		return
	}

	mux.HandleFunc("GET /openapi.yaml", handler.OpenAPI)
	mux.HandleFunc("GET /docs", handler.SwaggerUI)
	mux.HandleFunc("GET /docs/", handler.SwaggerUI)
}

func registerPublicDomainRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("GET /v1/leaderboards", handler.GetLatestLeaderboards)
	mux.HandleFunc("GET /v1/leaderboards/{date}", handler.GetLeaderboardsByDate)
	mux.HandleFunc("GET /v1/dates", handler.ListDates)
}

func registerInternalJobRoutes(mux *http.ServeMux, handler *Handler, internalJobToken string) {
	mux.Handle("POST /v1/internal/jobs/daily-capture", RequireInternalJobToken(internalJobToken, http.HandlerFunc(handler.RunDailyCapture)))
}
