package service

import (
	"strconv"
	"strings"
	"time"

	"bond-registry/internal/domain"
)

// ParseBondFilter coerces raw query values into a typed filter. Keys outside
// domain.BondFilterFields are ignored.
func ParseBondFilter(params map[string]string) (domain.BondFilter, error) {
	var filter domain.BondFilter

	for _, field := range domain.BondFilterFields {
		raw, ok := params[string(field)]
		if !ok {
			continue
		}

		switch field {
		case domain.BondFieldISIN:
			filter.ISIN = stringPtr(raw)
		case domain.BondFieldCurrency:
			filter.Currency = stringPtr(raw)
		case domain.BondFieldLEI:
			filter.LEI = stringPtr(raw)
		case domain.BondFieldLegalName:
			filter.LegalName = stringPtr(raw)
		case domain.BondFieldSize:
			n, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
			if err != nil {
				return domain.BondFilter{}, &FilterError{Field: string(field), Value: raw, Reason: "expected an integer"}
			}
			filter.Size = &n
		case domain.BondFieldMaturity:
			t, err := time.Parse(domain.DateLayout, strings.TrimSpace(raw))
			if err != nil {
				return domain.BondFilter{}, &FilterError{Field: string(field), Value: raw, Reason: "expected a date in YYYY-MM-DD format"}
			}
			filter.Maturity = &t
		}
	}

	return filter, nil
}

func stringPtr(s string) *string {
	return &s
}
