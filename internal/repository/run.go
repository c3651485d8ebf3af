// Package repository holds persistence contracts. Implementations live in
// subpackages (postgres).
package repository

import (
	"context"

	"productapprovals/internal/model"
)

// RunRepository stores ledger records of pipeline runs. Persistence only.
type RunRepository interface {
	// Create inserts a finished run and returns the stored record.
	Create(ctx context.Context, run *model.Run) (*model.Run, error)

	// FindByID returns a run by ID, or sql.ErrNoRows.
	FindByID(ctx context.Context, id string) (*model.Run, error)

	// List returns a page of runs, newest first, and the total row count.
	List(ctx context.Context, pq PageQuery) (*PageResult[model.Run], error)
}

// PageQuery holds limit/offset pagination parameters.
type PageQuery struct {
	Limit  int
	Offset int
}

// PageResult is a generic pagination result wrapper.
type PageResult[T any] struct {
	Items []T
	Total int
}
