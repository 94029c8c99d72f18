package domain

import "time"

// DateLayout is the wire and storage format of bond maturity dates.
const DateLayout = "2006-01-02"

// Bond represents a single bond registered by a user.
type Bond struct {
	ID            int64
	ISIN          string
	Size          int64
	Currency      string
	Maturity      time.Time
	LEI           string
	LegalName     string
	OwnerID       int64
	OwnerUsername string
	CreatedAt     time.Time
}

// BondField names a bond attribute that can be used as a query filter.
type BondField string

const (
	BondFieldISIN      BondField = "isin"
	BondFieldSize      BondField = "size"
	BondFieldCurrency  BondField = "currency"
	BondFieldMaturity  BondField = "maturity"
	BondFieldLEI       BondField = "lei"
	BondFieldLegalName BondField = "legal_name"
)

// BondFilterFields lists every field accepted as a listing filter.
var BondFilterFields = []BondField{
	BondFieldISIN,
	BondFieldSize,
	BondFieldCurrency,
	BondFieldMaturity,
	BondFieldLEI,
	BondFieldLegalName,
}

// BondFilter holds exact-match constraints. Nil fields are unconstrained.
type BondFilter struct {
	ISIN      *string
	Size      *int64
	Currency  *string
	Maturity  *time.Time
	LEI       *string
	LegalName *string
}
