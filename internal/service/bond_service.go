package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"bond-registry/internal/domain"
	"bond-registry/internal/lei"
	"bond-registry/internal/metrics"
	"bond-registry/internal/repository"
)

// BondService coordinates bond listing and creation for an authenticated owner.
type BondService interface {
	List(ctx context.Context, owner *domain.User, params map[string]string) ([]domain.Bond, error)
	Create(ctx context.Context, owner *domain.User, payload map[string]json.RawMessage) (*domain.Bond, error)
}

type bondService struct {
	bonds    repository.BondRepository
	resolver lei.Resolver
	logger   *logrus.Logger
	metrics  *metrics.Metrics
}

func NewBondService(bonds repository.BondRepository, resolver lei.Resolver, logger *logrus.Logger, m *metrics.Metrics) BondService {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &bondService{
		bonds:    bonds,
		resolver: resolver,
		logger:   logger,
		metrics:  m,
	}
}

func (s *bondService) List(ctx context.Context, owner *domain.User, params map[string]string) ([]domain.Bond, error) {
	if owner == nil {
		return nil, errors.New("owner is required")
	}

	filter, err := ParseBondFilter(params)
	if err != nil {
		return nil, err
	}

	bonds, err := s.bonds.Query(ctx, filter, owner.ID)
	if err != nil {
		return nil, fmt.Errorf("list bonds: %w", err)
	}
	return bonds, nil
}

// Create resolves the payload's LEI, validates the completed record and
// persists it. Nothing is written unless every step succeeds.
func (s *bondService) Create(ctx context.Context, owner *domain.User, payload map[string]json.RawMessage) (*domain.Bond, error) {
	if owner == nil {
		return nil, errors.New("owner is required")
	}

	identifier, err := payloadLEI(payload)
	if err != nil {
		return nil, err
	}

	legalName, err := s.resolver.Resolve(ctx, identifier)
	if err != nil {
		s.logger.WithError(err).WithFields(logrus.Fields{
			"lei":   identifier,
			"owner": owner.Username,
		}).Warn("lei resolution failed")
		return nil, fmt.Errorf("resolve lei: %w", err)
	}

	// legal_name and owner are server-derived; whatever the caller sent is discarded
	completed := make(map[string]json.RawMessage, len(payload)+1)
	for k, v := range payload {
		completed[k] = v
	}
	delete(completed, "owner")
	encodedName, err := json.Marshal(legalName)
	if err != nil {
		return nil, fmt.Errorf("encode legal name: %w", err)
	}
	completed["legal_name"] = encodedName

	bond, err := DecodeBondPayload(completed)
	if err != nil {
		return nil, err
	}
	bond.OwnerID = owner.ID
	bond.OwnerUsername = owner.Username

	if _, err := s.bonds.Create(ctx, &bond); err != nil {
		return nil, fmt.Errorf("create bond: %w", err)
	}
	s.metrics.IncrementBondsCreated()
	s.logger.WithFields(logrus.Fields{
		"bond_id": bond.ID,
		"isin":    bond.ISIN,
		"owner":   owner.Username,
	}).Info("bond created")

	return &bond, nil
}

func payloadLEI(payload map[string]json.RawMessage) (string, error) {
	raw, ok := payload["lei"]
	if !ok {
		return "", ErrMissingLEI
	}
	var identifier string
	// null decodes to "" and is treated as absent
	if err := json.Unmarshal(raw, &identifier); err != nil {
		return "", &ValidationError{Fields: map[string]string{"lei": "Not a valid string."}}
	}
	identifier = strings.TrimSpace(identifier)
	if identifier == "" {
		return "", ErrMissingLEI
	}
	return identifier, nil
}
