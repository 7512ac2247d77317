package page

import (
	"github.com/soheilgoodarzi/domain-manager-assessment/internal/domain"
	"github.com/soheilgoodarzi/domain-manager-assessment/internal/filter"
	"github.com/soheilgoodarzi/domain-manager-assessment/internal/form"
)

// Phase is the externally visible state of the page.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseListLoading
	PhaseListLoaded
	PhaseListError
	PhaseCreateOpen
	PhaseEditOpen
	PhaseDeleteConfirm
	PhaseMutationPending
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseListLoading:
		return "list-loading"
	case PhaseListLoaded:
		return "list-loaded"
	case PhaseListError:
		return "list-error"
	case PhaseCreateOpen:
		return "modal-create-open"
	case PhaseEditOpen:
		return "modal-edit-open"
	case PhaseDeleteConfirm:
		return "delete-confirm-open"
	case PhaseMutationPending:
		return "mutation-pending"
	default:
		return "unknown"
	}
}

// Modal is the single dialog slot of the page. Exactly one variant is held at
// a time.
type Modal interface {
	modal()
}

type Closed struct{}

type CreateModal struct {
	Values form.Values
	Errors form.Errors
}

type EditModal struct {
	Record domain.Domain
	Values form.Values
	Errors form.Errors
}

type DeleteModal struct {
	ID string
}

func (Closed) modal()      {}
func (CreateModal) modal() {}
func (EditModal) modal()   {}
func (DeleteModal) modal() {}

type Level string

const (
	LevelSuccess Level = "success"
	LevelError   Level = "error"
)

// Notice is a transient notification shown once.
type Notice struct {
	Level   Level
	Message string
}

// View is everything the page renders.
type View struct {
	Phase   Phase
	Modal   Modal
	Filter  filter.Predicate
	Rows    []domain.Domain
	Total   int
	Loading bool
	ListErr error
	Pending bool
	Notices []Notice
}
