// Package repository implements the transactional, soft-delete aware
// persistence of every entity kind on top of gorm.
package repository

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"pastelaria-service/internal/imagestore"
	"pastelaria-service/internal/lifecycle"
	"pastelaria-service/pkg/logger"
	"pastelaria-service/prometheus"
)

// Entity is satisfied by pointers to the persisted models
type Entity[T any] interface {
	*T
	SoftDeletedAt() gorm.DeletedAt
}

// Kind holds the per-kind behaviour of a repository
type Kind[T any, In any] struct {
	Name string

	// Merge copies the supplied fields of in onto dst
	Merge func(dst *T, in In)

	// Prepare runs inside the transaction before a create or update write.
	// current is nil on create. It may rewrite in and register compensations
	// for side effects made outside the database.
	Prepare func(ctx context.Context, tx *gorm.DB, in *In, current *T, comp *Compensation) error
}

// Compensation collects actions undoing side effects made outside the
// database. They run only when the transaction rolls back.
type Compensation struct {
	fns []func(ctx context.Context)
}

// Add registers fn to run on rollback
func (c *Compensation) Add(fn func(ctx context.Context)) {
	c.fns = append(c.fns, fn)
}

func (c *Compensation) run(ctx context.Context) {
	for i := len(c.fns) - 1; i >= 0; i-- {
		c.fns[i](ctx)
	}
}

// Filter narrows a list query
type Filter func(q *gorm.DB) *gorm.DB

// Option configures a repository
type Option func(*options)

type options struct {
	metrics *prometheus.Metrics
	now     func() time.Time
}

// WithMetrics records operation counters and durations on m
func WithMetrics(m *prometheus.Metrics) Option {
	return func(o *options) { o.metrics = m }
}

// WithClock overrides the clock used for soft-delete timestamps
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

func newOptions(opts []Option) options {
	o := options{now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// Repository is the generic soft-delete repository. Every operation runs in
// one transaction of the injected session.
type Repository[T any, PT Entity[T], In any] struct {
	session Session
	kind    Kind[T, In]
	opts    options
}

// New creates a repository for kind
func New[T any, PT Entity[T], In any](session Session, kind Kind[T, In], opts ...Option) *Repository[T, PT, In] {
	return &Repository[T, PT, In]{
		session: session,
		kind:    kind,
		opts:    newOptions(opts),
	}
}

// Kind returns the kind name
func (r *Repository[T, PT, In]) Kind() string { return r.kind.Name }

// List returns the active records ordered by name
func (r *Repository[T, PT, In]) List(ctx context.Context, filters ...Filter) ([]T, error) {
	out := []T{}
	err := r.run(ctx, lifecycle.OpList, 0, func(tx *gorm.DB, _ *Compensation) error {
		q := lifecycle.ScopeFor(lifecycle.OpList).Apply(tx.Model(new(T)))
		for _, f := range filters {
			q = f(q)
		}
		return q.Order("name ASC").Order("id ASC").Find(&out).Error
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Find returns the active record with id
func (r *Repository[T, PT, In]) Find(ctx context.Context, id uint) (*T, error) {
	return r.findIn(ctx, lifecycle.OpFind, id)
}

// FindOnlyTrashed returns the soft-deleted record with id
func (r *Repository[T, PT, In]) FindOnlyTrashed(ctx context.Context, id uint) (*T, error) {
	return r.findIn(ctx, lifecycle.OpFindTrashed, id)
}

func (r *Repository[T, PT, In]) findIn(ctx context.Context, op lifecycle.Op, id uint) (*T, error) {
	var found *T
	err := r.run(ctx, op, id, func(tx *gorm.DB, _ *Compensation) error {
		var err error
		found, err = r.lookup(tx, id, lifecycle.ScopeFor(op))
		return err
	})
	if err != nil {
		return nil, err
	}
	return found, nil
}

// Create persists a new active record built from in
func (r *Repository[T, PT, In]) Create(ctx context.Context, in In) (*T, error) {
	created := new(T)
	err := r.run(ctx, lifecycle.OpCreate, 0, func(tx *gorm.DB, comp *Compensation) error {
		if r.kind.Prepare != nil {
			if err := r.kind.Prepare(ctx, tx, &in, nil, comp); err != nil {
				return err
			}
		}
		r.kind.Merge(created, in)
		return tx.Create(created).Error
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// Update merges in onto the active record with id. Soft-deleted records are
// not updatable.
func (r *Repository[T, PT, In]) Update(ctx context.Context, id uint, in In) (*T, error) {
	var updated *T
	err := r.run(ctx, lifecycle.OpUpdate, id, func(tx *gorm.DB, comp *Compensation) error {
		current, err := r.lookup(tx, id, lifecycle.ScopeFor(lifecycle.OpUpdate))
		if err != nil {
			return err
		}
		if _, err := lifecycle.Next(lifecycle.StateOf(PT(current).SoftDeletedAt()), lifecycle.OpUpdate); err != nil {
			return err
		}
		if r.kind.Prepare != nil {
			if err := r.kind.Prepare(ctx, tx, &in, current, comp); err != nil {
				return err
			}
		}
		r.kind.Merge(current, in)
		if err := tx.Save(current).Error; err != nil {
			return err
		}
		updated = current
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// Destroy soft-deletes the record with id, whatever its current state.
// updated_at is left untouched.
func (r *Repository[T, PT, In]) Destroy(ctx context.Context, id uint) error {
	return r.run(ctx, lifecycle.OpDestroy, id, func(tx *gorm.DB, _ *Compensation) error {
		current, err := r.lookup(tx, id, lifecycle.ScopeFor(lifecycle.OpDestroy))
		if err != nil {
			return err
		}
		if _, err := lifecycle.Next(lifecycle.StateOf(PT(current).SoftDeletedAt()), lifecycle.OpDestroy); err != nil {
			return err
		}
		return lifecycle.ScopeAny.Apply(tx).Model(current).UpdateColumn("deleted_at", r.opts.now()).Error
	})
}

// Restore clears the soft-delete marker of the trashed record with id. An
// active id is not restorable and fails with ErrNotFound.
func (r *Repository[T, PT, In]) Restore(ctx context.Context, id uint) (*T, error) {
	var restored *T
	err := r.run(ctx, lifecycle.OpRestore, id, func(tx *gorm.DB, _ *Compensation) error {
		current, err := r.lookup(tx, id, lifecycle.ScopeFor(lifecycle.OpRestore))
		if err != nil {
			return err
		}
		if _, err := lifecycle.Next(lifecycle.StateOf(PT(current).SoftDeletedAt()), lifecycle.OpRestore); err != nil {
			return err
		}
		if err := lifecycle.ScopeAny.Apply(tx).Model(current).UpdateColumn("deleted_at", nil).Error; err != nil {
			return err
		}
		// reload so the caller sees exactly what is stored
		restored, err = r.lookup(tx, id, lifecycle.ScopeActive)
		return err
	})
	if err != nil {
		return nil, err
	}
	return restored, nil
}

func (r *Repository[T, PT, In]) lookup(tx *gorm.DB, id uint, scope lifecycle.Scope) (*T, error) {
	if id == 0 {
		return nil, &NotFoundError{Kind: r.kind.Name, ID: id, Scope: scope}
	}
	found := new(T)
	err := scope.Apply(tx).First(found, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, &NotFoundError{Kind: r.kind.Name, ID: id, Scope: scope}
	}
	if err != nil {
		return nil, err
	}
	return found, nil
}

func (r *Repository[T, PT, In]) run(ctx context.Context, op lifecycle.Op, id uint, fn func(tx *gorm.DB, comp *Compensation) error) error {
	defer r.opts.metrics.TrackDBOperation(r.kind.Name + "." + string(op))(time.Now())

	log := logger.FromCtx(ctx).With(
		zap.String("kind", r.kind.Name),
		zap.String("operation", string(op)),
	)
	if id != 0 {
		log = log.With(zap.Uint("id", id))
	}

	comp := &Compensation{}
	err := r.session.InTx(ctx, func(tx *gorm.DB) error {
		return fn(tx, comp)
	})
	if err == nil {
		r.opts.metrics.RecordEntityOperation(r.kind.Name, string(op), "ok")
		log.Debug("Repository operation committed")
		return nil
	}

	comp.run(ctx)

	switch {
	case errors.Is(err, ErrNotFound):
		r.opts.metrics.RecordEntityOperation(r.kind.Name, string(op), "not_found")
		log.Info("Repository lookup failed", zap.Error(err))
	case errors.Is(err, imagestore.ErrInvalidBinaryContent):
		r.opts.metrics.RecordEntityOperation(r.kind.Name, string(op), "invalid_content")
		log.Warn("Repository operation rejected image payload", zap.Error(err))
	case errors.Is(err, context.Canceled):
		r.opts.metrics.RecordEntityOperation(r.kind.Name, string(op), "canceled")
		log.Warn("Repository operation canceled", zap.Error(err))
	default:
		r.opts.metrics.RecordEntityOperation(r.kind.Name, string(op), "error")
		log.Error("Repository operation rolled back", zap.Error(err))
	}
	return err
}
