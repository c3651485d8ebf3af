package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"productapprovals/internal/model"
	"productapprovals/internal/pipeline"
	"productapprovals/internal/repository"
	repoMocks "productapprovals/internal/repository/mocks"
	"productapprovals/internal/storage"
	storeMocks "productapprovals/internal/storage/mocks"
)

var testInput = pipeline.Input{
	Product: &model.UploadedDocument{Filename: "Products.CSV", ContentType: "text/csv", Data: []byte("a,b\n")},
	License: &model.UploadedDocument{Filename: "license.pdf", Data: []byte("%PDF-1.7")},
}

const (
	productKey = "runs/run-1/product.csv"
	licenseKey = "runs/run-1/license.pdf"
)

func putInfo(key string) storage.ObjectInfo {
	return storage.ObjectInfo{Key: key}
}

func TestRunService_Record(t *testing.T) {
	ctx := context.Background()

	t.Run("archives then saves", func(t *testing.T) {
		mStore := new(storeMocks.MockStorage)
		mRepo := new(repoMocks.MockRunRepository)
		run := &model.Run{ID: "run-1"}

		mStore.On("Put", ctx, productKey, mock.Anything, storage.PutObjectOptions{
			Size:        4,
			ContentType: "text/csv",
			Metadata:    map[string]string{"original-filename": "Products.CSV"},
		}).Return(putInfo(productKey), nil)
		mStore.On("Put", ctx, licenseKey, mock.Anything, storage.PutObjectOptions{
			Size:        8,
			ContentType: "application/octet-stream",
			Metadata:    map[string]string{"original-filename": "license.pdf"},
		}).Return(putInfo(licenseKey), nil)
		mRepo.On("Create", ctx, mock.MatchedBy(func(r *model.Run) bool {
			return r.ProductKey == productKey && r.LicenseKey == licenseKey
		})).Return(run, nil)

		got, err := NewRunService(mStore, mRepo).Record(ctx, run, testInput)

		require.NoError(t, err)
		assert.Equal(t, productKey, got.ProductKey)
		mStore.AssertExpectations(t)
		mRepo.AssertExpectations(t)
	})

	t.Run("db failure deletes archived objects", func(t *testing.T) {
		mStore := new(storeMocks.MockStorage)
		mRepo := new(repoMocks.MockRunRepository)

		mStore.On("Put", ctx, productKey, mock.Anything, mock.Anything).Return(putInfo(productKey), nil)
		mStore.On("Put", ctx, licenseKey, mock.Anything, mock.Anything).Return(putInfo(licenseKey), nil)
		mRepo.On("Create", ctx, mock.Anything).Return(nil, errors.New("db down"))
		mStore.On("Delete", ctx, productKey).Return(nil)
		mStore.On("Delete", ctx, licenseKey).Return(nil)

		got, err := NewRunService(mStore, mRepo).Record(ctx, &model.Run{ID: "run-1"}, testInput)

		assert.Nil(t, got)
		assert.EqualError(t, err, "db save failed: db down")
		mStore.AssertExpectations(t)
	})

	t.Run("rollback failure is reported", func(t *testing.T) {
		mStore := new(storeMocks.MockStorage)
		mRepo := new(repoMocks.MockRunRepository)

		mStore.On("Put", ctx, productKey, mock.Anything, mock.Anything).Return(putInfo(productKey), nil)
		mStore.On("Put", ctx, licenseKey, mock.Anything, mock.Anything).Return(storage.ObjectInfo{}, errors.New("bucket full"))
		mStore.On("Delete", ctx, productKey).Return(errors.New("gone"))

		_, err := NewRunService(mStore, mRepo).Record(ctx, &model.Run{ID: "run-1"}, testInput)

		require.Error(t, err)
		assert.Contains(t, err.Error(), "upload to storage: bucket full")
		assert.Contains(t, err.Error(), "rollback delete failed: gone")
		mRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("without storage only saves", func(t *testing.T) {
		mRepo := new(repoMocks.MockRunRepository)
		run := &model.Run{ID: "run-1"}
		mRepo.On("Create", ctx, run).Return(run, nil)

		got, err := NewRunService(nil, mRepo).Record(ctx, run, testInput)

		require.NoError(t, err)
		assert.Empty(t, got.ProductKey)
		assert.Empty(t, got.LicenseKey)
	})

	t.Run("id required", func(t *testing.T) {
		_, err := NewRunService(nil, new(repoMocks.MockRunRepository)).Record(ctx, &model.Run{}, testInput)
		assert.ErrorIs(t, err, ErrIDRequired)
	})
}

func TestRunService_List(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name          string
		limit, offset int
		want          repository.PageQuery
	}{
		{"defaults", 0, -5, repository.PageQuery{Limit: 10, Offset: 0}},
		{"clamped", 500, 20, repository.PageQuery{Limit: 100, Offset: 20}},
		{"as given", 25, 50, repository.PageQuery{Limit: 25, Offset: 50}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mRepo := new(repoMocks.MockRunRepository)
			mRepo.On("List", ctx, tt.want).Return(&repository.PageResult[model.Run]{
				Items: []model.Run{{ID: "run-1"}},
				Total: 1,
			}, nil)

			res, err := NewRunService(nil, mRepo).List(ctx, tt.limit, tt.offset)

			require.NoError(t, err)
			assert.Equal(t, 1, res.Total)
			mRepo.AssertExpectations(t)
		})
	}
}

func TestRunService_Get(t *testing.T) {
	ctx := context.Background()
	stored := &model.Run{ID: "run-1", ProductKey: productKey, LicenseKey: licenseKey}

	t.Run("with presigned links", func(t *testing.T) {
		mStore := new(storeMocks.MockStorage)
		mRepo := new(repoMocks.MockRunRepository)
		mRepo.On("FindByID", ctx, "run-1").Return(stored, nil)
		mStore.On("PresignGet", ctx, productKey, PresignExpiry).Return("https://s3/product", nil)
		mStore.On("PresignGet", ctx, licenseKey, PresignExpiry).Return("https://s3/license", nil)

		got, err := NewRunService(mStore, mRepo).Get(ctx, "run-1")

		require.NoError(t, err)
		assert.Equal(t, "run-1", got.ID)
		assert.Equal(t, "https://s3/product", got.ProductURL)
		assert.Equal(t, "https://s3/license", got.LicenseURL)
	})

	t.Run("not found", func(t *testing.T) {
		mRepo := new(repoMocks.MockRunRepository)
		mRepo.On("FindByID", ctx, "missing").Return(nil, sql.ErrNoRows)

		_, err := NewRunService(nil, mRepo).Get(ctx, "missing")
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("presign failure", func(t *testing.T) {
		mStore := new(storeMocks.MockStorage)
		mRepo := new(repoMocks.MockRunRepository)
		mRepo.On("FindByID", ctx, "run-1").Return(stored, nil)
		mStore.On("PresignGet", ctx, productKey, PresignExpiry).Return("", errors.New("no creds"))

		_, err := NewRunService(mStore, mRepo).Get(ctx, "run-1")
		assert.EqualError(t, err, "presign product: no creds")
	})
}

func TestRunService_OpenDocument(t *testing.T) {
	ctx := context.Background()

	t.Run("streams license", func(t *testing.T) {
		mStore := new(storeMocks.MockStorage)
		mRepo := new(repoMocks.MockRunRepository)
		mRepo.On("FindByID", ctx, "run-1").Return(&model.Run{ID: "run-1", LicenseKey: licenseKey}, nil)
		body := io.NopCloser(strings.NewReader("%PDF"))
		mStore.On("Get", ctx, licenseKey).Return(body, storage.ObjectInfo{Key: licenseKey, ContentType: "application/pdf"}, nil)

		rc, info, err := NewRunService(mStore, mRepo).OpenDocument(ctx, "run-1", DocumentLicense)

		require.NoError(t, err)
		defer rc.Close()
		assert.Equal(t, "application/pdf", info.ContentType)
	})

	t.Run("unknown kind", func(t *testing.T) {
		_, _, err := NewRunService(nil, new(repoMocks.MockRunRepository)).OpenDocument(ctx, "run-1", "invoice")
		assert.ErrorIs(t, err, ErrUnknownDocument)
	})

	t.Run("not archived", func(t *testing.T) {
		mRepo := new(repoMocks.MockRunRepository)
		mRepo.On("FindByID", ctx, "run-1").Return(&model.Run{ID: "run-1"}, nil)

		_, _, err := NewRunService(nil, mRepo).OpenDocument(ctx, "run-1", DocumentProduct)
		assert.ErrorIs(t, err, ErrNotArchived)
	})

	t.Run("archived object deleted", func(t *testing.T) {
		mStore := new(storeMocks.MockStorage)
		mRepo := new(repoMocks.MockRunRepository)
		mRepo.On("FindByID", ctx, "run-1").Return(&model.Run{ID: "run-1", LicenseKey: licenseKey}, nil)
		mStore.On("Get", ctx, licenseKey).Return(nil, storage.ObjectInfo{}, fmt.Errorf("%w: %s", storage.ErrNotFound, licenseKey))

		rc, _, err := NewRunService(mStore, mRepo).OpenDocument(ctx, "run-1", DocumentLicense)

		assert.Nil(t, rc)
		assert.ErrorIs(t, err, ErrNotArchived)
	})

	t.Run("store failure passes through", func(t *testing.T) {
		mStore := new(storeMocks.MockStorage)
		mRepo := new(repoMocks.MockRunRepository)
		mRepo.On("FindByID", ctx, "run-1").Return(&model.Run{ID: "run-1", ProductKey: productKey}, nil)
		mStore.On("Get", ctx, productKey).Return(nil, storage.ObjectInfo{}, errors.New("connection refused"))

		_, _, err := NewRunService(mStore, mRepo).OpenDocument(ctx, "run-1", DocumentProduct)

		assert.EqualError(t, err, "connection refused")
	})
}
