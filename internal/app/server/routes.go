package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/charmbracelet/log"

	"github.com/soheilgoodarzi/domain-manager-assessment/internal/api/dto"
	"github.com/soheilgoodarzi/domain-manager-assessment/internal/domain"
	"github.com/soheilgoodarzi/domain-manager-assessment/internal/page"
	"github.com/soheilgoodarzi/domain-manager-assessment/internal/query"
)

// ListStore is the shared domain list every session reads from.
type ListStore interface {
	page.ListCache
	Load(ctx context.Context) (query.Snapshot[[]domain.Domain], error)
}

type Options struct {
	API        page.DomainAPI
	Store      ListStore
	SessionTTL time.Duration
	RenderWait time.Duration
	PrettyHTML bool
}

// Server is the server-rendered admin UI.
type Server struct {
	store      ListStore
	sessions   *sessionStore
	renderer   renderer
	renderWait time.Duration
}

func New(opts Options) *Server {
	return &Server{
		store: opts.Store,
		sessions: newSessionStore(opts.SessionTTL, func() *page.Controller {
			return page.New(opts.API, opts.Store)
		}),
		renderer:   renderer{pretty: opts.PrettyHTML},
		renderWait: opts.RenderWait,
	}
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, msg string, status int) {
	writeJSON(w, status, dto.ErrorResponse{Error: msg})
}

func (s *Server) Routes() http.Handler {
	router := http.NewServeMux()
	router.HandleFunc("GET /{$}", s.getIndex)
	router.HandleFunc("POST /domains/new", s.openCreate)
	router.HandleFunc("POST /domains/{id}/edit", s.openEdit)
	router.HandleFunc("POST /domains/{id}/delete", s.openDelete)
	router.HandleFunc("POST /modal/close", s.closeModal)
	router.HandleFunc("POST /domains", s.submitDomain)
	router.HandleFunc("POST /domains/delete", s.confirmDelete)
	router.HandleFunc("POST /refresh", s.refreshList)
	router.HandleFunc("GET /api/domains", s.getDomains)

	router.HandleFunc("GET /healthz", getHealth)
	router.HandleFunc("GET /version", getVersion)
	router.Handle("GET /metrics", metricsHandler())

	log.Debug("Routes opened")
	return router
}

// Close ends every session.
func (s *Server) Close() {
	s.sessions.close()
}

// ListenAndServe runs handler on port until ctx is cancelled, then shuts down
// gracefully.
func ListenAndServe(ctx context.Context, name string, port int, handler http.Handler) error {
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Infof("Starting %s on port :%d", name, port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("%s failed: %w", name, err)
			return
		}
		errCh <- nil
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	log.Info("Shutting down", "server", name)
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("%s shutdown: %w", name, err)
	}
	return <-errCh
}
