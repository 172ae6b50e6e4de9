package documents

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/haulage-erp/haulage-erp/internal/platform/cache"
	"github.com/haulage-erp/haulage-erp/internal/shared"
)

// MutationSave covers document create and renewal.
const MutationSave = "documents.save"

// Cache is the slice of the cache service the documents domain needs.
type Cache interface {
	Declare(mutation string, buckets ...string)
	InvalidateFor(ctx context.Context, mutation string) error
	FetchJSON(ctx context.Context, bucket string, parts []string, dest interface{}, loader func(context.Context) (interface{}, error)) error
}

// Service provides document business logic.
type Service struct {
	repo   Repository
	cache  Cache
	logger *slog.Logger
	now    func() time.Time
}

// NewService constructs the document service and declares its cache dependencies.
func NewService(repo Repository, c Cache, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	c.Declare(MutationSave, cache.BucketDocuments)
	return &Service{repo: repo, cache: c, logger: logger, now: time.Now}
}

// List returns all documents graded by expiry, served through the cache.
func (s *Service) List(ctx context.Context) (ListDocumentsResponse, error) {
	var resp ListDocumentsResponse
	err := s.cache.FetchJSON(ctx, cache.BucketDocuments, []string{"list"}, &resp, func(ctx context.Context) (interface{}, error) {
		docs, err := s.repo.List(ctx)
		if err != nil {
			return nil, err
		}
		return ListDocumentsResponse{Documents: s.grade(docs)}, nil
	})
	return resp, err
}

// ListExpiring returns documents inside the warning window, served through the cache.
func (s *Service) ListExpiring(ctx context.Context) (ListDocumentsResponse, error) {
	var resp ListDocumentsResponse
	err := s.cache.FetchJSON(ctx, cache.BucketDocuments, []string{"expiring"}, &resp, func(ctx context.Context) (interface{}, error) {
		docs, err := s.repo.ListExpiring(ctx, warningWindow)
		if err != nil {
			return nil, err
		}
		return ListDocumentsResponse{Documents: s.grade(docs)}, nil
	})
	return resp, err
}

// Create records a compliance document for a truck or driver.
func (s *Service) Create(ctx context.Context, req CreateDocumentRequest) (*WithStatus, error) {
	if !req.Type.IsValid() {
		return nil, fmt.Errorf("%w: unknown document type %s", shared.ErrValidation, req.Type)
	}
	if (req.TruckID == nil) == (req.DriverID == nil) {
		return nil, fmt.Errorf("%w: exactly one of truck_id or driver_id must be set", shared.ErrValidation)
	}

	id, err := s.repo.Create(ctx, Document{
		Type:      req.Type,
		TruckID:   req.TruckID,
		DriverID:  req.DriverID,
		Reference: req.Reference,
		IssuedAt:  req.IssuedAt,
		ExpiresAt: req.ExpiresAt,
	})
	if err != nil {
		return nil, fmt.Errorf("create document: %w", err)
	}
	s.invalidate(ctx)

	d, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return &WithStatus{Document: *d, Status: Classify(d.ExpiresAt, s.now())}, nil
}

// Renew replaces a document's validity window after renewal.
func (s *Service) Renew(ctx context.Context, id uuid.UUID, req RenewDocumentRequest) (*WithStatus, error) {
	if err := s.repo.Renew(ctx, id, req.Reference, req.IssuedAt, req.ExpiresAt); err != nil {
		return nil, fmt.Errorf("renew document: %w", err)
	}
	s.invalidate(ctx)

	d, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return &WithStatus{Document: *d, Status: Classify(d.ExpiresAt, s.now())}, nil
}

// ScanExpiring is the cron entrypoint. It logs every expired or critical
// document so operators see upcoming lapses without opening the dashboard.
func (s *Service) ScanExpiring(ctx context.Context) (int, error) {
	docs, err := s.repo.ListExpiring(ctx, warningWindow)
	if err != nil {
		return 0, fmt.Errorf("scan expiring documents: %w", err)
	}

	flagged := 0
	now := s.now()
	for _, d := range docs {
		status := Classify(d.ExpiresAt, now)
		if status != StatusExpired && status != StatusCritical {
			continue
		}
		flagged++
		s.logger.Warn("document nearing expiry",
			slog.String("document_id", d.ID.String()),
			slog.String("type", string(d.Type)),
			slog.String("status", string(status)),
			slog.Time("expires_at", d.ExpiresAt),
		)
	}
	return flagged, nil
}

func (s *Service) grade(docs []Document) []WithStatus {
	now := s.now()
	out := make([]WithStatus, 0, len(docs))
	for _, d := range docs {
		out = append(out, WithStatus{Document: d, Status: Classify(d.ExpiresAt, now)})
	}
	return out
}

func (s *Service) invalidate(ctx context.Context) {
	if err := s.cache.InvalidateFor(ctx, MutationSave); err != nil {
		s.logger.Warn("cache invalidation failed", slog.String("mutation", MutationSave), slog.Any("error", err))
	}
}
