package repository

import (
	"context"

	"gorm.io/gorm"
)

// Session runs a function inside one database transaction. The transaction
// commits when fn returns nil and rolls back when it returns an error or
// panics; the error is returned unchanged.
type Session interface {
	InTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type gormSession struct {
	db *gorm.DB
}

// NewSession wraps db as a transactional session
func NewSession(db *gorm.DB) Session {
	return &gormSession{db: db}
}

func (s *gormSession) InTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return s.db.WithContext(ctx).Transaction(fn)
}
