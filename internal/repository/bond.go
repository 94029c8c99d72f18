package repository

//go:generate mockgen -source=bond.go -destination=mocks/mocks.go -package=mocks BondRepository

import (
	"context"

	"bond-registry/internal/domain"
)

// BondRepository persists bonds. Every query is scoped to a single owner.
type BondRepository interface {
	Init(ctx context.Context) error
	Create(ctx context.Context, bond *domain.Bond) (int64, error)
	Query(ctx context.Context, filter domain.BondFilter, ownerID int64) ([]domain.Bond, error)
}
