// Package lifecycle holds the soft-delete rules shared by every repository:
// which scope an operation looks its record up in, and which state
// transitions a record may take.
package lifecycle

import (
	"errors"
	"fmt"

	"gorm.io/gorm"
)

// Scope selects which records a lookup may see
type Scope int

const (
	// ScopeActive sees records whose deleted_at is null
	ScopeActive Scope = iota
	// ScopeTrashed sees only soft-deleted records
	ScopeTrashed
	// ScopeAny sees every record regardless of deleted_at
	ScopeAny
)

func (s Scope) String() string {
	switch s {
	case ScopeActive:
		return "active"
	case ScopeTrashed:
		return "trashed"
	case ScopeAny:
		return "any"
	default:
		return fmt.Sprintf("scope(%d)", int(s))
	}
}

// Apply narrows q to the scope. The active scope relies on the gorm.DeletedAt
// default clause, the others lift it with Unscoped.
func (s Scope) Apply(q *gorm.DB) *gorm.DB {
	switch s {
	case ScopeTrashed:
		return q.Unscoped().Where("deleted_at IS NOT NULL")
	case ScopeAny:
		return q.Unscoped()
	default:
		return q
	}
}

// Op names a repository operation
type Op string

const (
	OpList        Op = "list"
	OpFind        Op = "find"
	OpFindTrashed Op = "find_trashed"
	OpCreate      Op = "create"
	OpUpdate      Op = "update"
	OpDestroy     Op = "destroy"
	OpRestore     Op = "restore"
)

// ScopeFor returns the lookup scope op must use
func ScopeFor(op Op) Scope {
	switch op {
	case OpRestore, OpFindTrashed:
		return ScopeTrashed
	case OpDestroy:
		return ScopeAny
	default:
		return ScopeActive
	}
}

// State is the soft-delete state of a record
type State int

const (
	Active State = iota
	SoftDeleted
)

func (s State) String() string {
	if s == SoftDeleted {
		return "soft_deleted"
	}
	return "active"
}

// StateOf derives the state from the soft-delete marker
func StateOf(deletedAt gorm.DeletedAt) State {
	if deletedAt.Valid {
		return SoftDeleted
	}
	return Active
}

// ErrTransition is returned by Next for a transition the state machine refuses
var ErrTransition = errors.New("illegal lifecycle transition")

// Next returns the state a record reaches when op is applied in state from.
// Destroying an already soft-deleted record re-marks it.
func Next(from State, op Op) (State, error) {
	switch op {
	case OpUpdate:
		if from == Active {
			return Active, nil
		}
	case OpDestroy:
		return SoftDeleted, nil
	case OpRestore:
		if from == SoftDeleted {
			return Active, nil
		}
	}
	return from, fmt.Errorf("%w: %s on %s record", ErrTransition, op, from)
}
