package service

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"time"

	"productapprovals/internal/model"
	"productapprovals/internal/pipeline"
	"productapprovals/internal/repository"
	"productapprovals/internal/storage"
)

var (
	ErrIDRequired      = errors.New("id is required")
	ErrNotFound        = errors.New("run not found")
	ErrUnknownDocument = errors.New("unknown document kind")
	ErrNotArchived     = errors.New("document not archived")
)

// Archived document kinds.
const (
	DocumentProduct = "product"
	DocumentLicense = "license"
)

// PresignExpiry is the lifetime of the download links in RunDetail.
const PresignExpiry = 15 * time.Minute

// RunListResult is a page of runs.
type RunListResult struct {
	Items []model.Run `json:"data"`
	Total int         `json:"total"`
}

// RunDetail is a run plus temporary links to its archived documents.
type RunDetail struct {
	model.Run
	ProductURL string `json:"product_url,omitempty"`
	LicenseURL string `json:"license_url,omitempty"`
}

// RunService is the run ledger.
type RunService interface {
	// Record archives the run's documents when storage is configured, then
	// saves the run. Archived objects are deleted again if the save fails.
	Record(ctx context.Context, run *model.Run, in pipeline.Input) (*model.Run, error)

	// List returns runs newest first using limit/offset and a total count.
	List(ctx context.Context, limit, offset int) (*RunListResult, error)

	// Get returns a run with presigned links to its archived documents.
	Get(ctx context.Context, id string) (*RunDetail, error)

	// OpenDocument streams one archived document of a run.
	OpenDocument(ctx context.Context, id, kind string) (io.ReadCloser, storage.ObjectInfo, error)
}

type runService struct {
	store storage.Storage
	repo  repository.RunRepository
}

// NewRunService constructs a RunService. store may be nil, which disables
// the document archive.
func NewRunService(store storage.Storage, repo repository.RunRepository) RunService {
	return &runService{store: store, repo: repo}
}

func (s *runService) Record(ctx context.Context, run *model.Run, in pipeline.Input) (*model.Run, error) {
	if run.ID == "" {
		return nil, ErrIDRequired
	}

	var archived []string
	if s.store != nil {
		for _, d := range []struct {
			kind string
			doc  *model.UploadedDocument
			dst  *string
		}{
			{DocumentProduct, in.Product, &run.ProductKey},
			{DocumentLicense, in.License, &run.LicenseKey},
		} {
			if d.doc == nil {
				continue
			}
			key, err := s.archive(ctx, run.ID, d.kind, d.doc)
			if err != nil {
				return nil, s.rollback(ctx, archived, fmt.Errorf("upload to storage: %w", err))
			}
			archived = append(archived, key)
			*d.dst = key
		}
	}

	stored, err := s.repo.Create(ctx, run)
	if err != nil {
		return nil, s.rollback(ctx, archived, fmt.Errorf("db save failed: %w", err))
	}
	return stored, nil
}

func (s *runService) archive(ctx context.Context, runID, kind string, doc *model.UploadedDocument) (string, error) {
	ct := doc.ContentType
	if ct == "" {
		ct = "application/octet-stream"
	}
	info, err := s.store.Put(ctx, storage.RunKey(runID, kind, doc.Ext()), bytes.NewReader(doc.Data), storage.PutObjectOptions{
		Size:        doc.Size(),
		ContentType: ct,
		Metadata: map[string]string{
			"original-filename": doc.Filename,
		},
	})
	if err != nil {
		return "", err
	}
	return info.Key, nil
}

// rollback deletes already archived objects and returns cause, annotated with
// any delete failure.
func (s *runService) rollback(ctx context.Context, keys []string, cause error) error {
	var delErrs []error
	for _, k := range keys {
		if err := s.store.Delete(ctx, k); err != nil {
			delErrs = append(delErrs, err)
		}
	}
	if len(delErrs) > 0 {
		return fmt.Errorf("%w; rollback delete failed: %v", cause, errors.Join(delErrs...))
	}
	return cause
}

func (s *runService) List(ctx context.Context, limit, offset int) (*RunListResult, error) {
	if limit <= 0 {
		limit = 10
	}
	if limit > 100 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}

	res, err := s.repo.List(ctx, repository.PageQuery{Limit: limit, Offset: offset})
	if err != nil {
		return nil, err
	}
	return &RunListResult{Items: res.Items, Total: res.Total}, nil
}

func (s *runService) Get(ctx context.Context, id string) (*RunDetail, error) {
	run, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}

	detail := &RunDetail{Run: *run}
	if s.store == nil {
		return detail, nil
	}
	if run.ProductKey != "" {
		if detail.ProductURL, err = s.store.PresignGet(ctx, run.ProductKey, PresignExpiry); err != nil {
			return nil, fmt.Errorf("presign product: %w", err)
		}
	}
	if run.LicenseKey != "" {
		if detail.LicenseURL, err = s.store.PresignGet(ctx, run.LicenseKey, PresignExpiry); err != nil {
			return nil, fmt.Errorf("presign license: %w", err)
		}
	}
	return detail, nil
}

func (s *runService) OpenDocument(ctx context.Context, id, kind string) (io.ReadCloser, storage.ObjectInfo, error) {
	if kind != DocumentProduct && kind != DocumentLicense {
		return nil, storage.ObjectInfo{}, ErrUnknownDocument
	}
	run, err := s.find(ctx, id)
	if err != nil {
		return nil, storage.ObjectInfo{}, err
	}

	key := run.ProductKey
	if kind == DocumentLicense {
		key = run.LicenseKey
	}
	if key == "" || s.store == nil {
		return nil, storage.ObjectInfo{}, ErrNotArchived
	}
	rc, info, err := s.store.Get(ctx, key)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, storage.ObjectInfo{}, ErrNotArchived
	}
	return rc, info, err
}

func (s *runService) find(ctx context.Context, id string) (*model.Run, error) {
	if id == "" {
		return nil, ErrIDRequired
	}
	run, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return run, nil
}
