// Package page holds the state machine behind the domains page: which modal
// is open, the filter, the pending mutation and the notifications.
package page

import (
	"context"
	"errors"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/soheilgoodarzi/domain-manager-assessment/internal/domain"
	"github.com/soheilgoodarzi/domain-manager-assessment/internal/filter"
	"github.com/soheilgoodarzi/domain-manager-assessment/internal/form"
	"github.com/soheilgoodarzi/domain-manager-assessment/internal/query"
)

var (
	ErrMutationPending = errors.New("a change is already being saved")
	ErrNoModal         = errors.New("no matching dialog is open")
	ErrRecordNotFound  = errors.New("domain not found")
)

// DomainAPI is the mutating half of the remote API. Reads go through the
// cache.
type DomainAPI interface {
	Create(ctx context.Context, input domain.Input) (*domain.Domain, error)
	Update(ctx context.Context, id string, input domain.Input) (*domain.Domain, error)
	Delete(ctx context.Context, id string) error
}

// ListCache is the cached domain list.
type ListCache interface {
	Subscribe() func()
	Snapshot() query.Snapshot[[]domain.Domain]
	Invalidate()
	Refetch()
}

// Controller is the state of one page session. It is safe for concurrent use;
// remote calls run without holding the lock so the pending state can be
// rendered meanwhile.
type Controller struct {
	api   DomainAPI
	cache ListCache

	mu          sync.Mutex
	unsubscribe func()
	modal       Modal
	pending     bool
	filter      filter.Predicate
	notices     []Notice
}

func New(api DomainAPI, cache ListCache) *Controller {
	return &Controller{
		api:   api,
		cache: cache,
		modal: Closed{},
	}
}

// Mount subscribes to the list; the first subscription starts the fetch.
func (c *Controller) Mount() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.unsubscribe != nil {
		return
	}
	c.unsubscribe = c.cache.Subscribe()
}

func (c *Controller) Unmount() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.unsubscribe != nil {
		c.unsubscribe()
		c.unsubscribe = nil
	}
}

// Retry refetches the list after a failed load.
func (c *Controller) Retry() {
	c.cache.Refetch()
}

func (c *Controller) SetFilter(p filter.Predicate) {
	c.mu.Lock()
	c.filter = p
	c.mu.Unlock()
}

func (c *Controller) Filter() filter.Predicate {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.filter
}

// Add opens the create dialog with default values.
func (c *Controller) Add() error {
	return c.open(CreateModal{Values: form.Defaults()})
}

// Edit opens the edit dialog for a record of the cached list.
func (c *Controller) Edit(id string) error {
	record, ok := c.lookup(id)
	if !ok {
		return ErrRecordNotFound
	}
	return c.open(EditModal{Record: record, Values: form.FromDomain(record)})
}

// RequestDelete opens the delete confirmation for id.
func (c *Controller) RequestDelete(id string) error {
	if id == "" {
		return ErrRecordNotFound
	}
	return c.open(DeleteModal{ID: id})
}

func (c *Controller) open(m Modal) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.pending {
		return ErrMutationPending
	}
	c.modal = m
	return nil
}

// Close dismisses whatever dialog is open. Cancelling a delete this way
// issues no call.
func (c *Controller) Close() {
	c.mu.Lock()
	c.modal = Closed{}
	c.mu.Unlock()
}

func (c *Controller) lookup(id string) (domain.Domain, bool) {
	snap := c.cache.Snapshot()
	for _, record := range snap.Data {
		if record.ID == id {
			return record, true
		}
	}
	return domain.Domain{}, false
}

// Submit validates the open create/edit dialog and saves it. Validation
// failures come back as form.Errors and issue no call. On success the list is
// invalidated and the dialog closed; on failure the dialog keeps the entered
// values and an error notice is queued.
func (c *Controller) Submit(ctx context.Context, values form.Values) error {
	c.mu.Lock()
	if c.pending {
		c.mu.Unlock()
		return ErrMutationPending
	}

	var editID string
	switch m := c.modal.(type) {
	case CreateModal:
	case EditModal:
		editID = m.Record.ID
	default:
		c.mu.Unlock()
		return ErrNoModal
	}

	input, errs := values.Validate()
	c.setFormLocked(values, errs)
	if len(errs) > 0 {
		c.mu.Unlock()
		return errs
	}
	c.pending = true
	c.mu.Unlock()

	ctx = context.WithoutCancel(ctx)
	action := "create"
	var err error
	if editID == "" {
		_, err = c.api.Create(ctx, input)
	} else {
		action = "update"
		_, err = c.api.Update(ctx, editID, input)
	}

	if err == nil {
		c.cache.Invalidate()
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.pending = false

	if err != nil {
		log.Warn("domain "+action+" failed", "domain", input.Domain, "id", editID, "error", err)
		c.noticeLocked(LevelError, "Failed to "+action+" domain: "+err.Error())
		return err
	}

	log.Info("domain "+action+"d", "domain", input.Domain, "id", editID)
	c.noticeLocked(LevelSuccess, "Domain "+action+"d successfully!")
	c.modal = Closed{}
	return nil
}

// setFormLocked keeps the submitted values on the open dialog.
func (c *Controller) setFormLocked(values form.Values, errs form.Errors) {
	if len(errs) == 0 {
		errs = nil
	}
	switch m := c.modal.(type) {
	case CreateModal:
		c.modal = CreateModal{Values: values, Errors: errs}
	case EditModal:
		c.modal = EditModal{Record: m.Record, Values: values, Errors: errs}
	}
}

// ConfirmDelete deletes the record of the open confirmation dialog.
func (c *Controller) ConfirmDelete(ctx context.Context) error {
	c.mu.Lock()
	if c.pending {
		c.mu.Unlock()
		return ErrMutationPending
	}
	m, ok := c.modal.(DeleteModal)
	if !ok {
		c.mu.Unlock()
		return ErrNoModal
	}
	c.pending = true
	c.mu.Unlock()

	err := c.api.Delete(context.WithoutCancel(ctx), m.ID)
	if err == nil {
		c.cache.Invalidate()
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.pending = false

	if err != nil {
		log.Warn("domain delete failed", "id", m.ID, "error", err)
		c.noticeLocked(LevelError, "Failed to delete domain: "+err.Error())
		return err
	}

	log.Info("domain deleted", "id", m.ID)
	c.noticeLocked(LevelSuccess, "Domain deleted successfully!")
	c.modal = Closed{}
	return nil
}

func (c *Controller) noticeLocked(level Level, msg string) {
	c.notices = append(c.notices, Notice{Level: level, Message: msg})
}

// Notify queues a notice from outside the controller's own transitions.
func (c *Controller) Notify(level Level, msg string) {
	c.mu.Lock()
	c.noticeLocked(level, msg)
	c.mu.Unlock()
}

// Modal returns the dialog currently held.
func (c *Controller) Modal() Modal {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.modal
}

// View snapshots the page and drains the queued notices.
func (c *Controller) View() View {
	snap := c.cache.Snapshot()

	c.mu.Lock()
	defer c.mu.Unlock()

	v := View{
		Modal:   c.modal,
		Filter:  c.filter,
		Loading: snap.Loading,
		ListErr: snap.Err,
		Pending: c.pending,
		Notices: c.notices,
	}
	c.notices = nil

	if snap.HasData {
		v.Total = len(snap.Data)
		v.Rows = filter.Apply(snap.Data, c.filter)
	}

	v.Phase = c.phaseLocked(snap)
	return v
}

func (c *Controller) phaseLocked(snap query.Snapshot[[]domain.Domain]) Phase {
	if c.pending {
		return PhaseMutationPending
	}
	switch c.modal.(type) {
	case CreateModal:
		return PhaseCreateOpen
	case EditModal:
		return PhaseEditOpen
	case DeleteModal:
		return PhaseDeleteConfirm
	}
	switch {
	case c.unsubscribe == nil:
		return PhaseIdle
	case snap.Err != nil:
		return PhaseListError
	case !snap.HasData:
		return PhaseListLoading
	default:
		return PhaseListLoaded
	}
}
