package domain

import "time"

// LifecycleState replaces per-entity deleted flags.
type LifecycleState string

const (
	LifecycleActive  LifecycleState = "active"
	LifecycleDeleted LifecycleState = "deleted"
)

// Lifecycle is embedded by every soft-deletable entity.
type Lifecycle struct {
	State     LifecycleState `json:"-" gorm:"size:16;not null;default:'active';index"`
	DeletedAt *time.Time     `json:"-"`
}

// Deleted reports whether the row has been soft deleted.
func (l Lifecycle) Deleted() bool {
	return l.State == LifecycleDeleted
}

// MarkDeleted moves the row to the deleted state.
func (l *Lifecycle) MarkDeleted(at time.Time) {
	l.State = LifecycleDeleted
	l.DeletedAt = &at
}
