package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"productapprovals/internal/model"
	"productapprovals/internal/repository"
)

type MockRunRepository struct {
	mock.Mock
}

func (m *MockRunRepository) Create(ctx context.Context, run *model.Run) (*model.Run, error) {
	args := m.Called(ctx, run)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Run), args.Error(1)
}

func (m *MockRunRepository) FindByID(ctx context.Context, id string) (*model.Run, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Run), args.Error(1)
}

func (m *MockRunRepository) List(ctx context.Context, pq repository.PageQuery) (*repository.PageResult[model.Run], error) {
	args := m.Called(ctx, pq)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*repository.PageResult[model.Run]), args.Error(1)
}
