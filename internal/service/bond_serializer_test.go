package service

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bond-registry/internal/domain"
)

func validPayload() map[string]json.RawMessage {
	return map[string]json.RawMessage{
		"isin":       json.RawMessage(`"FR0000131104"`),
		"size":       json.RawMessage(`100000000`),
		"currency":   json.RawMessage(`"EUR"`),
		"maturity":   json.RawMessage(`"2025-02-28"`),
		"lei":        json.RawMessage(`"R0MUWSFPU8MPRO8K5P83"`),
		"legal_name": json.RawMessage(`"BNPPARIBAS"`),
	}
}

func TestDecodeBondPayloadValid(t *testing.T) {
	bond, err := DecodeBondPayload(validPayload())
	require.NoError(t, err)

	assert.Equal(t, "FR0000131104", bond.ISIN)
	assert.Equal(t, int64(100000000), bond.Size)
	assert.Equal(t, "EUR", bond.Currency)
	assert.Equal(t, "2025-02-28", bond.Maturity.Format(domain.DateLayout))
	assert.Equal(t, "R0MUWSFPU8MPRO8K5P83", bond.LEI)
	assert.Equal(t, "BNPPARIBAS", bond.LegalName)
}

func TestDecodeBondPayloadAcceptsNumericStringSize(t *testing.T) {
	payload := validPayload()
	payload["size"] = json.RawMessage(`"250"`)

	bond, err := DecodeBondPayload(payload)
	require.NoError(t, err)
	assert.Equal(t, int64(250), bond.Size)
}

func TestDecodeBondPayloadAcceptsZeroFractionSize(t *testing.T) {
	for _, raw := range []string{`100000000.0`, `100000000.000`, `"100000000.0"`} {
		t.Run(raw, func(t *testing.T) {
			payload := validPayload()
			payload["size"] = json.RawMessage(raw)

			bond, err := DecodeBondPayload(payload)
			require.NoError(t, err)
			assert.Equal(t, int64(100000000), bond.Size)
		})
	}
}

func TestDecodeBondPayloadIgnoresUnknownFields(t *testing.T) {
	payload := validPayload()
	payload["coupon"] = json.RawMessage(`4.5`)

	_, err := DecodeBondPayload(payload)
	require.NoError(t, err)
}

func TestDecodeBondPayloadFieldErrors(t *testing.T) {
	tests := []struct {
		name  string
		field string
		value json.RawMessage
	}{
		{name: "isin too long", field: "isin", value: json.RawMessage(`"FR00001311040000"`)},
		{name: "isin blank", field: "isin", value: json.RawMessage(`""`)},
		{name: "isin wrong type", field: "isin", value: json.RawMessage(`12`)},
		{name: "size negative", field: "size", value: json.RawMessage(`-1`)},
		{name: "size fractional", field: "size", value: json.RawMessage(`1.5`)},
		{name: "size text", field: "size", value: json.RawMessage(`"lots"`)},
		{name: "size too large", field: "size", value: json.RawMessage(`2147483648`)},
		{name: "size overflows int64", field: "size", value: json.RawMessage(`99999999999999999999`)},
		{name: "size null", field: "size", value: json.RawMessage(`null`)},
		{name: "currency too long", field: "currency", value: json.RawMessage(`"EURODOLLARS"`)},
		{name: "maturity not a date", field: "maturity", value: json.RawMessage(`"soon"`)},
		{name: "maturity impossible date", field: "maturity", value: json.RawMessage(`"2025-02-30"`)},
		{name: "maturity wrong layout", field: "maturity", value: json.RawMessage(`"28/02/2025"`)},
		{name: "lei too long", field: "lei", value: json.RawMessage(`"R0MUWSFPU8MPRO8K5P83XX"`)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			payload := validPayload()
			payload[tt.field] = tt.value

			_, err := DecodeBondPayload(payload)
			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Contains(t, verr.Fields, tt.field)
			assert.Len(t, verr.Fields, 1)
		})
	}
}

func TestDecodeBondPayloadReportsEveryMissingField(t *testing.T) {
	_, err := DecodeBondPayload(map[string]json.RawMessage{})

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	for _, field := range []string{"isin", "size", "currency", "maturity", "lei", "legal_name"} {
		assert.Equal(t, "This field is required.", verr.Fields[field], field)
	}
}

func TestNewBondView(t *testing.T) {
	bond, err := DecodeBondPayload(validPayload())
	require.NoError(t, err)
	bond.OwnerUsername = "alice"

	encoded, err := json.Marshal(NewBondView(bond))
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"isin": "FR0000131104",
		"size": 100000000,
		"currency": "EUR",
		"maturity": "2025-02-28",
		"lei": "R0MUWSFPU8MPRO8K5P83",
		"legal_name": "BNPPARIBAS",
		"owner": "alice"
	}`, string(encoded))
}
