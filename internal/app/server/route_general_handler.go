package server

import (
	"net/http"

	"github.com/soheilgoodarzi/domain-manager-assessment/internal/metrics"
)

func getHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func metricsHandler() http.Handler {
	return metrics.Handler()
}
