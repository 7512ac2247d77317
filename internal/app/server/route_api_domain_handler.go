package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/rs/cors"

	"github.com/soheilgoodarzi/domain-manager-assessment/internal/api/dto"
	"github.com/soheilgoodarzi/domain-manager-assessment/internal/database"
	"github.com/soheilgoodarzi/domain-manager-assessment/internal/domain"
	"github.com/soheilgoodarzi/domain-manager-assessment/internal/metrics"
)

const maxBodyBytes = 1 << 20

// APIRoutes serves the domain REST resource the UI consumes, backed by the
// database package.
func APIRoutes() http.Handler {
	router := http.NewServeMux()
	for _, base := range []string{"/api/Domain/{$}", "/api/Domain"} {
		router.HandleFunc("GET "+base, listDomains)
		router.HandleFunc("POST "+base, createDomain)
	}
	for _, item := range []string{"/api/Domain/{id}/{$}", "/api/Domain/{id}"} {
		router.HandleFunc("GET "+item, getDomain)
		router.HandleFunc("PUT "+item, updateDomain)
		router.HandleFunc("PATCH "+item, patchDomain)
		router.HandleFunc("DELETE "+item, deleteDomain)
	}
	router.HandleFunc("GET /healthz", getHealth)
	router.HandleFunc("GET /version", getVersion)
	router.Handle("GET /metrics", metricsHandler())

	c := cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{
			http.MethodGet,
			http.MethodPost,
			http.MethodPut,
			http.MethodPatch,
			http.MethodDelete,
			http.MethodOptions,
		},
		AllowedHeaders: []string{"Content-Type", "Authorization"},
	})

	return observeRequests(c.Handler(router))
}

func listDomains(w http.ResponseWriter, r *http.Request) {
	records, err := database.ListDomains(r.Context())
	if err != nil {
		log.Error("list domains", "error", err)
		writeError(w, "Failed to list domains", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, dto.DomainPage{Count: len(records), Results: records})
}

func getDomain(w http.ResponseWriter, r *http.Request) {
	record, err := database.GetDomain(r.Context(), r.PathValue("id"))
	if err != nil {
		writeDomainError(w, "get", err)
		return
	}
	writeJSON(w, http.StatusOK, record)
}

func createDomain(w http.ResponseWriter, r *http.Request) {
	var input domain.Input
	if !decodeBody(w, r, &input) {
		return
	}

	record, err := database.CreateDomain(r.Context(), input)
	if err != nil {
		writeDomainError(w, "create", err)
		return
	}
	writeJSON(w, http.StatusCreated, record)
}

func updateDomain(w http.ResponseWriter, r *http.Request) {
	var input domain.Input
	if !decodeBody(w, r, &input) {
		return
	}

	record, err := database.UpdateDomain(r.Context(), r.PathValue("id"), input)
	if err != nil {
		writeDomainError(w, "update", err)
		return
	}
	writeJSON(w, http.StatusOK, record)
}

func patchDomain(w http.ResponseWriter, r *http.Request) {
	var patch dto.DomainPatch
	if !decodeBody(w, r, &patch) {
		return
	}

	record, err := database.PatchDomain(r.Context(), r.PathValue("id"), patch)
	if err != nil {
		writeDomainError(w, "patch", err)
		return
	}
	writeJSON(w, http.StatusOK, record)
}

func deleteDomain(w http.ResponseWriter, r *http.Request) {
	if err := database.DeleteDomain(r.Context(), r.PathValue("id")); err != nil {
		writeDomainError(w, "delete", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeError(w, "Invalid request body", http.StatusBadRequest)
		return false
	}
	return true
}

func writeDomainError(w http.ResponseWriter, action string, err error) {
	switch {
	case errors.Is(err, database.ErrDomainNotFound):
		writeError(w, "Domain not found", http.StatusNotFound)
	case errors.Is(err, domain.ErrDomainEmpty):
		writeError(w, "Domain is required", http.StatusBadRequest)
	case errors.Is(err, domain.ErrDomainFormat):
		writeError(w, "Invalid domain format", http.StatusBadRequest)
	case errors.Is(err, domain.ErrInvalidStatus):
		writeError(w, "Invalid status", http.StatusBadRequest)
	default:
		log.Error("domain "+action+" failed", "error", err)
		writeError(w, "Failed to "+action+" domain", http.StatusInternalServerError)
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func observeRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		metrics.ObserveBackendRequest(r.Method, rec.status)
		log.Debug("api request", "method", r.Method, "path", r.URL.Path, "status", rec.status)
	})
}
