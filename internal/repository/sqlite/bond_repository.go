package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"bond-registry/internal/domain"
	"bond-registry/internal/repository"
)

const createBondsTable = `
CREATE TABLE IF NOT EXISTS bonds (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	isin TEXT NOT NULL,
	size INTEGER NOT NULL CHECK (size >= 0),
	currency TEXT NOT NULL,
	maturity TEXT NOT NULL,
	lei TEXT NOT NULL,
	legal_name TEXT NOT NULL,
	owner_id INTEGER NOT NULL REFERENCES users(id) ON DELETE CASCADE,
	created_at DATETIME NOT NULL
);
`

const createBondsOwnerIndex = `CREATE INDEX IF NOT EXISTS idx_bonds_owner ON bonds(owner_id)`

const selectBonds = `
SELECT b.id, b.isin, b.size, b.currency, b.maturity, b.lei, b.legal_name, b.owner_id, u.username, b.created_at
FROM bonds b
JOIN users u ON u.id = b.owner_id`

type BondRepository struct {
	db *sql.DB
}

func NewBondRepository(db *sql.DB) repository.BondRepository {
	return &BondRepository{db: db}
}

func (r *BondRepository) Init(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, createBondsTable); err != nil {
		return fmt.Errorf("create bonds table: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, createBondsOwnerIndex); err != nil {
		return fmt.Errorf("create bonds owner index: %w", err)
	}
	return nil
}

func (r *BondRepository) Create(ctx context.Context, bond *domain.Bond) (int64, error) {
	bond.CreatedAt = time.Now().UTC()

	res, err := r.db.ExecContext(ctx, `
INSERT INTO bonds (isin, size, currency, maturity, lei, legal_name, owner_id, created_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		bond.ISIN,
		bond.Size,
		bond.Currency,
		bond.Maturity.Format(domain.DateLayout),
		bond.LEI,
		bond.LegalName,
		bond.OwnerID,
		bond.CreatedAt,
	)
	switch {
	case isForeignKeyViolation(err):
		return 0, fmt.Errorf("bond owner %d: %w", bond.OwnerID, repository.ErrNotFound)
	case err != nil:
		return 0, fmt.Errorf("insert bond: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("bond last insert id: %w", err)
	}
	bond.ID = id
	return id, nil
}

func (r *BondRepository) Query(ctx context.Context, filter domain.BondFilter, ownerID int64) ([]domain.Bond, error) {
	conds := []string{"b.owner_id = ?"}
	args := []any{ownerID}

	addString := func(column string, v *string) {
		if v == nil {
			return
		}
		conds = append(conds, "b."+column+" = ?")
		args = append(args, *v)
	}

	addString("isin", filter.ISIN)
	if filter.Size != nil {
		conds = append(conds, "b.size = ?")
		args = append(args, *filter.Size)
	}
	addString("currency", filter.Currency)
	if filter.Maturity != nil {
		conds = append(conds, "b.maturity = ?")
		args = append(args, filter.Maturity.Format(domain.DateLayout))
	}
	addString("lei", filter.LEI)
	addString("legal_name", filter.LegalName)

	query := selectBonds + "\nWHERE " + strings.Join(conds, " AND ") + "\nORDER BY b.id ASC"
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query bonds: %w", err)
	}
	defer rows.Close()

	bonds := make([]domain.Bond, 0)
	for rows.Next() {
		bond, err := scanBond(rows)
		if err != nil {
			return nil, err
		}
		bonds = append(bonds, *bond)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate bonds: %w", err)
	}
	return bonds, nil
}

func scanBond(row interface {
	Scan(dest ...any) error
}) (*domain.Bond, error) {
	var (
		bond     domain.Bond
		maturity string
	)
	if err := row.Scan(
		&bond.ID,
		&bond.ISIN,
		&bond.Size,
		&bond.Currency,
		&maturity,
		&bond.LEI,
		&bond.LegalName,
		&bond.OwnerID,
		&bond.OwnerUsername,
		&bond.CreatedAt,
	); err != nil {
		return nil, fmt.Errorf("scan bond: %w", err)
	}

	parsed, err := time.Parse(domain.DateLayout, maturity)
	if err != nil {
		return nil, fmt.Errorf("parse stored maturity %q: %w", maturity, err)
	}
	bond.Maturity = parsed
	return &bond, nil
}
