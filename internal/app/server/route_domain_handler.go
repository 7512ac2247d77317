package server

import (
	"context"
	"errors"
	"net/http"

	"github.com/charmbracelet/log"

	"github.com/soheilgoodarzi/domain-manager-assessment/internal/api/dto"
	"github.com/soheilgoodarzi/domain-manager-assessment/internal/domain"
	"github.com/soheilgoodarzi/domain-manager-assessment/internal/filter"
	"github.com/soheilgoodarzi/domain-manager-assessment/internal/form"
	"github.com/soheilgoodarzi/domain-manager-assessment/internal/page"
	"github.com/soheilgoodarzi/domain-manager-assessment/internal/query"
)

func (s *Server) getIndex(w http.ResponseWriter, r *http.Request) {
	ctrl := s.session(w, r)
	ctrl.Mount()

	snap := s.waitForList(r.Context())
	view := ctrl.View()
	s.renderer.render(w, http.StatusOK, newPageData(view, snap.HasData))
}

func (s *Server) openCreate(w http.ResponseWriter, r *http.Request) {
	ctrl := s.session(w, r)
	s.report(ctrl, ctrl.Add())
	s.redirect(w, r, ctrl)
}

func (s *Server) openEdit(w http.ResponseWriter, r *http.Request) {
	ctrl := s.session(w, r)
	s.report(ctrl, ctrl.Edit(r.PathValue("id")))
	s.redirect(w, r, ctrl)
}

func (s *Server) openDelete(w http.ResponseWriter, r *http.Request) {
	ctrl := s.session(w, r)
	s.report(ctrl, ctrl.RequestDelete(r.PathValue("id")))
	s.redirect(w, r, ctrl)
}

func (s *Server) closeModal(w http.ResponseWriter, r *http.Request) {
	ctrl := s.session(w, r)
	ctrl.Close()
	s.redirect(w, r, ctrl)
}

func (s *Server) submitDomain(w http.ResponseWriter, r *http.Request) {
	ctrl := s.session(w, r)
	if err := r.ParseForm(); err != nil {
		log.Debug("unreadable domain form", "error", err)
		ctrl.Notify(page.LevelError, "The form could not be read.")
		s.redirect(w, r, ctrl)
		return
	}

	err := ctrl.Submit(r.Context(), form.FromRequest(r.PostForm))

	var invalid form.Errors
	if errors.As(err, &invalid) {
		log.Debug("domain form rejected", "errors", invalid)
	} else {
		s.report(ctrl, err)
	}
	s.redirect(w, r, ctrl)
}

func (s *Server) confirmDelete(w http.ResponseWriter, r *http.Request) {
	ctrl := s.session(w, r)
	s.report(ctrl, ctrl.ConfirmDelete(r.Context()))
	s.redirect(w, r, ctrl)
}

func (s *Server) refreshList(w http.ResponseWriter, r *http.Request) {
	ctrl := s.session(w, r)
	ctrl.Retry()
	s.redirect(w, r, ctrl)
}

func (s *Server) getDomains(w http.ResponseWriter, r *http.Request) {
	snap := s.waitForList(r.Context())
	switch {
	case snap.Err != nil:
		writeError(w, "Error loading data: "+snap.Err.Error(), http.StatusBadGateway)
		return
	case !snap.HasData:
		writeError(w, "Loading domains", http.StatusServiceUnavailable)
		return
	}

	rows := filter.Apply(snap.Data, filter.Parse(r.URL.Query()))
	writeJSON(w, http.StatusOK, dto.DomainPage{Count: len(rows), Results: rows})
}

// session resolves the page of the request and applies filter parameters
// carried in its query string.
func (s *Server) session(w http.ResponseWriter, r *http.Request) *page.Controller {
	ctrl := s.sessions.controller(w, r)
	if q := r.URL.Query(); filter.HasParams(q) {
		ctrl.SetFilter(filter.Parse(q))
	}
	return ctrl
}

func (s *Server) redirect(w http.ResponseWriter, r *http.Request, ctrl *page.Controller) {
	target := "/"
	if encoded := ctrl.Filter().Values().Encode(); encoded != "" {
		target += "?" + encoded
	}
	http.Redirect(w, r, target, http.StatusSeeOther)
}

// report turns refused transitions into notices. Remote failures are already
// noticed by the controller itself.
func (s *Server) report(ctrl *page.Controller, err error) {
	switch {
	case err == nil:
	case errors.Is(err, page.ErrMutationPending):
		ctrl.Notify(page.LevelError, "Another change is still being saved.")
	case errors.Is(err, page.ErrRecordNotFound):
		ctrl.Notify(page.LevelError, "Domain not found.")
	case errors.Is(err, page.ErrNoModal):
		ctrl.Notify(page.LevelError, "The dialog is no longer open.")
	}
}

// waitForList gives the first fetch up to the render wait before the page is
// drawn in its loading state.
func (s *Server) waitForList(ctx context.Context) query.Snapshot[[]domain.Domain] {
	if s.renderWait <= 0 {
		return s.store.Snapshot()
	}
	ctx, cancel := context.WithTimeout(ctx, s.renderWait)
	defer cancel()
	snap, _ := s.store.Load(ctx)
	return snap
}
