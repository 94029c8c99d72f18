package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"

	"bond-registry/internal/domain"
	"bond-registry/internal/repository"
	"bond-registry/internal/storage"
)

const exportURLExpiry = 15 * time.Minute

// Export describes an uploaded snapshot of an owner's bonds.
type Export struct {
	Location string
	URL      string
	Count    int
}

// ExportService snapshots an owner's bonds to object storage.
type ExportService interface {
	Export(ctx context.Context, owner *domain.User) (*Export, error)
}

type exportService struct {
	bonds     repository.BondRepository
	storage   storage.Service
	bucket    string
	keyPrefix string
	now       func() time.Time
}

// NewExportService returns a service that reports ErrExportDisabled when
// store is nil or bucket is empty.
func NewExportService(bonds repository.BondRepository, store storage.Service, bucket, keyPrefix string) ExportService {
	return &exportService{
		bonds:     bonds,
		storage:   store,
		bucket:    bucket,
		keyPrefix: strings.Trim(keyPrefix, "/"),
		now:       time.Now,
	}
}

func (s *exportService) Export(ctx context.Context, owner *domain.User) (*Export, error) {
	if s.storage == nil || s.bucket == "" {
		return nil, ErrExportDisabled
	}
	if owner == nil {
		return nil, errors.New("owner is required")
	}

	bonds, err := s.bonds.Query(ctx, domain.BondFilter{}, owner.ID)
	if err != nil {
		return nil, fmt.Errorf("load bonds for export: %w", err)
	}

	body, err := json.Marshal(NewBondViews(bonds))
	if err != nil {
		return nil, fmt.Errorf("encode export: %w", err)
	}

	name := fmt.Sprintf("%s-%s.json", s.now().UTC().Format("20060102T150405Z"), uuid.NewString())
	key := path.Join(s.keyPrefix, owner.Username, name)

	location, err := s.storage.Upload(ctx, storage.Object{
		Bucket:      s.bucket,
		Key:         key,
		Body:        bytes.NewReader(body),
		ContentType: "application/json",
	})
	if err != nil {
		return nil, fmt.Errorf("upload export: %w", err)
	}

	url, err := s.storage.GetObjectURL(ctx, s.bucket, key, exportURLExpiry)
	if err != nil {
		return nil, fmt.Errorf("presign export: %w", err)
	}

	return &Export{
		Location: location,
		URL:      url,
		Count:    len(bonds),
	}, nil
}
