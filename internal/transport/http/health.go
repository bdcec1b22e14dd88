package http

import (
	stdhttp "net/http"
)

// StorageStateReporter exposes the persistence circuit state.
type StorageStateReporter interface {
	StorageState() string
}

const storageStateOpen = "open"

type healthResponse struct {
	Status  string `json:"status"`
	Storage string `json:"storage"`
}

// HealthHandler reports liveness. It answers 503 while the persistence breaker is open so a load
// balancer can drain the instance.
func HealthHandler(storage StorageStateReporter) stdhttp.Handler {
	return stdhttp.HandlerFunc(func(w stdhttp.ResponseWriter, _ *stdhttp.Request) {
		resp := healthResponse{Status: "ok", Storage: "memory"}
		if storage != nil {
			resp.Storage = storage.StorageState()
		}
		if resp.Storage == storageStateOpen {
			resp.Status = "degraded"
			writeJSON(w, stdhttp.StatusServiceUnavailable, resp)
			return
		}
		writeJSON(w, stdhttp.StatusOK, resp)
	})
}
