package mocks

import (
	"context"
	"io"

	"github.com/stretchr/testify/mock"

	"productapprovals/internal/model"
	"productapprovals/internal/pipeline"
	"productapprovals/internal/service"
	"productapprovals/internal/storage"
)

type MockRunService struct {
	mock.Mock
}

func (m *MockRunService) Record(ctx context.Context, run *model.Run, in pipeline.Input) (*model.Run, error) {
	args := m.Called(ctx, run, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Run), args.Error(1)
}

func (m *MockRunService) List(ctx context.Context, limit, offset int) (*service.RunListResult, error) {
	args := m.Called(ctx, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.RunListResult), args.Error(1)
}

func (m *MockRunService) Get(ctx context.Context, id string) (*service.RunDetail, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.RunDetail), args.Error(1)
}

func (m *MockRunService) OpenDocument(ctx context.Context, id, kind string) (io.ReadCloser, storage.ObjectInfo, error) {
	args := m.Called(ctx, id, kind)
	if args.Get(0) == nil {
		return nil, args.Get(1).(storage.ObjectInfo), args.Error(2)
	}
	return args.Get(0).(io.ReadCloser), args.Get(1).(storage.ObjectInfo), args.Error(2)
}
