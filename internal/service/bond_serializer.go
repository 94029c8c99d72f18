package service

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"bond-registry/internal/domain"
)

const maxBondSize = 2147483647

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name, _, _ := strings.Cut(field.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// bondInput is the typed form of a bond payload, checked against its tags
// once every field has the right JSON type.
type bondInput struct {
	ISIN      string `json:"isin" validate:"required,max=12"`
	Size      int64  `json:"size" validate:"min=0,max=2147483647"`
	Currency  string `json:"currency" validate:"required,max=10"`
	Maturity  string `json:"maturity" validate:"required,datetime=2006-01-02"`
	LEI       string `json:"lei" validate:"required,max=20"`
	LegalName string `json:"legal_name" validate:"required,max=100"`
}

// BondView is the wire representation of a stored bond.
type BondView struct {
	ISIN      string `json:"isin"`
	Size      int64  `json:"size"`
	Currency  string `json:"currency"`
	Maturity  string `json:"maturity"`
	LEI       string `json:"lei"`
	LegalName string `json:"legal_name"`
	Owner     string `json:"owner"`
}

// NewBondView renders a bond for output. Owner is the owner's username.
func NewBondView(bond domain.Bond) BondView {
	return BondView{
		ISIN:      bond.ISIN,
		Size:      bond.Size,
		Currency:  bond.Currency,
		Maturity:  bond.Maturity.Format(domain.DateLayout),
		LEI:       bond.LEI,
		LegalName: bond.LegalName,
		Owner:     bond.OwnerUsername,
	}
}

func NewBondViews(bonds []domain.Bond) []BondView {
	views := make([]BondView, len(bonds))
	for i := range bonds {
		views[i] = NewBondView(bonds[i])
	}
	return views
}

// DecodeBondPayload validates a raw bond payload and converts it into a
// domain bond. Owner fields are left for the caller to fill in. Unknown keys
// are ignored; invalid fields are reported, never coerced.
func DecodeBondPayload(payload map[string]json.RawMessage) (domain.Bond, error) {
	verr := &ValidationError{}
	var in bondInput

	in.ISIN = decodeString(payload, "isin", verr)
	in.Size = decodeInteger(payload, "size", verr)
	in.Currency = decodeString(payload, "currency", verr)
	in.Maturity = decodeString(payload, "maturity", verr)
	in.LEI = decodeString(payload, "lei", verr)
	in.LegalName = decodeString(payload, "legal_name", verr)

	if err := validate.Struct(in); err != nil {
		var fieldErrs validator.ValidationErrors
		if !errors.As(err, &fieldErrs) {
			return domain.Bond{}, fmt.Errorf("validate bond: %w", err)
		}
		for _, fe := range fieldErrs {
			verr.add(fe.Field(), describeFieldError(fe))
		}
	}
	if !verr.empty() {
		return domain.Bond{}, verr
	}

	maturity, err := time.Parse(domain.DateLayout, in.Maturity)
	if err != nil {
		return domain.Bond{}, &ValidationError{Fields: map[string]string{"maturity": "Date has wrong format. Use YYYY-MM-DD."}}
	}

	return domain.Bond{
		ISIN:      in.ISIN,
		Size:      in.Size,
		Currency:  in.Currency,
		Maturity:  maturity,
		LEI:       in.LEI,
		LegalName: in.LegalName,
	}, nil
}

func lookup(payload map[string]json.RawMessage, field string, verr *ValidationError) (json.RawMessage, bool) {
	raw, ok := payload[field]
	if !ok {
		verr.add(field, "This field is required.")
		return nil, false
	}
	if bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
		verr.add(field, "This field may not be null.")
		return nil, false
	}
	return raw, true
}

func decodeString(payload map[string]json.RawMessage, field string, verr *ValidationError) string {
	raw, ok := lookup(payload, field, verr)
	if !ok {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		verr.add(field, "Not a valid string.")
		return ""
	}
	return strings.TrimSpace(s)
}

var zeroFraction = regexp.MustCompile(`\.0*$`)

// decodeInteger accepts a JSON integer or a string holding one. A zero
// fraction such as 100.0 is accepted as the integer it denotes.
func decodeInteger(payload map[string]json.RawMessage, field string, verr *ValidationError) int64 {
	raw, ok := lookup(payload, field, verr)
	if !ok {
		return 0
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		verr.add(field, "A valid integer is required.")
		return 0
	}

	var text string
	switch t := v.(type) {
	case json.Number:
		text = t.String()
	case string:
		text = strings.TrimSpace(t)
	default:
		verr.add(field, "A valid integer is required.")
		return 0
	}
	text = zeroFraction.ReplaceAllString(text, "")

	n, err := strconv.ParseInt(text, 10, 64)
	if err != nil {
		var numErr *strconv.NumError
		if errors.As(err, &numErr) && errors.Is(numErr.Err, strconv.ErrRange) {
			verr.add(field, fmt.Sprintf("Ensure this value is less than or equal to %d.", maxBondSize))
			return 0
		}
		verr.add(field, "A valid integer is required.")
		return 0
	}
	return n
}

func describeFieldError(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "This field may not be blank."
	case "max":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("Ensure this field has no more than %s characters.", fe.Param())
		}
		return fmt.Sprintf("Ensure this value is less than or equal to %s.", fe.Param())
	case "min":
		return fmt.Sprintf("Ensure this value is greater than or equal to %s.", fe.Param())
	case "datetime":
		return "Date has wrong format. Use YYYY-MM-DD."
	default:
		return fmt.Sprintf("Failed %s validation.", fe.Tag())
	}
}
