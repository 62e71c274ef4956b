package validator

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/juancollazo-ch/monoparts-service/internal/apperr"
)

func fieldErrors(t *testing.T, err error) map[string][]string {
	t.Helper()
	var verr *apperr.PayloadValidationError
	require.True(t, errors.As(err, &verr), "expected validation error, got %v", err)
	return verr.Fields
}

func TestValidate_OrderIDBoundary(t *testing.T) {
	rules := Rules{F("order_id").Require().Str().Between(1, 100).Match(UUID)}

	out, err := Validate(map[string]any{"order_id": "123e4567-e89b-12d3-a456-426614174000"}, rules)
	require.NoError(t, err)
	assert.Equal(t, "123e4567-e89b-12d3-a456-426614174000", out["order_id"])

	_, err = Validate(map[string]any{"order_id": "not-a-uuid"}, rules)
	fields := fieldErrors(t, err)
	assert.Contains(t, fields, "order_id")
	assert.Len(t, fields, 1)
}

func TestValidate_Wildcards(t *testing.T) {
	rules := Rules{
		F("products").Require().Array().AtLeast(1),
		F("products.*.name").Require().Str().Between(1, 500),
		F("products.*.count").Require().Int().AtLeast(1),
		F("products.*.sum").Require().Num().AtLeast(0.01).Match(Money),
	}

	payload := map[string]any{
		"products": []any{
			map[string]any{"name": "ok", "count": 1, "sum": json.Number("10.5")},
			map[string]any{"name": "", "count": 0, "sum": 10.123},
		},
	}

	fields := fieldErrors(t, func() error { _, err := Validate(payload, rules); return err }())
	assert.Equal(t, []string{"The products.1.name field is required."}, fields["products.1.name"])
	assert.Equal(t, []string{"The products.1.count field must be at least 1."}, fields["products.1.count"])
	assert.Equal(t, []string{"The products.1.sum field format is invalid."}, fields["products.1.sum"])
	assert.NotContains(t, fields, "products.0.sum")
}

func TestValidate_MissingParentAndWildcardParent(t *testing.T) {
	rules := Rules{
		F("invoice.date").Require().DateYMD(),
		F("products").Require().Array(),
		F("products.*.count").Require().Int(),
	}

	fields := fieldErrors(t, func() error { _, err := Validate(map[string]any{}, rules); return err }())
	assert.Contains(t, fields, "invoice.date")
	assert.Contains(t, fields, "products")
	assert.Len(t, fields, 2)
}

func TestValidate_Kinds(t *testing.T) {
	tests := []struct {
		name  string
		field Field
		value any
		ok    bool
	}{
		{"string ok", F("v").Str(), "x", true},
		{"string wrong", F("v").Str(), 1, false},
		{"numeric string", F("v").Num(), "12.5", true},
		{"numeric decimal", F("v").Num(), decimal.RequireFromString("1.01"), true},
		{"numeric wrong", F("v").Num(), "abc", false},
		{"integer float", F("v").Int(), float64(3), true},
		{"integer fraction", F("v").Int(), 3.5, false},
		{"bool ok", F("v").Bool(), true, true},
		{"bool int", F("v").Bool(), 1, true},
		{"bool wrong", F("v").Bool(), "yes", false},
		{"list ok", F("v").Array(), []int{1, 2}, true},
		{"list wrong", F("v").Array(), "1,2", false},
		{"object ok", F("v").Obj(), map[string]any{"a": 1}, true},
		{"date ok", F("v").DateYMD(), "2024-02-29", true},
		{"date wrong", F("v").DateYMD(), "2023-02-29", false},
		{"url ok", F("v").Link(), "https://shop.example/cb", true},
		{"url wrong", F("v").Link(), "not a url", false},
		{"in ok", F("v").Str().In("STORE", "INTERNET"), "STORE", true},
		{"in wrong", F("v").Str().In("STORE", "INTERNET"), "PHONE", false},
		{"max chars", F("v").Str().AtMost(3), "abcd", false},
		{"max chars multibyte", F("v").Str().AtMost(4), "кава", true},
		{"max items", F("v").Array().AtMost(1), []any{1, 2}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Validate(map[string]any{"v": tt.value}, Rules{tt.field})
			if tt.ok {
				assert.NoError(t, err)
			} else {
				assert.Contains(t, fieldErrors(t, err), "v")
			}
		})
	}
}

func TestValidate_NullHandling(t *testing.T) {
	_, err := Validate(map[string]any{"phone": nil}, Rules{F("phone").Null().Str().Match(Phone)})
	assert.NoError(t, err)

	_, err = Validate(map[string]any{"phone": nil}, Rules{F("phone").Str()})
	assert.Contains(t, fieldErrors(t, err), "phone")

	_, err = Validate(map[string]any{}, Rules{F("phone").Str()})
	assert.NoError(t, err)
}

func TestValidate_KeepsOnlyRuledRootsAndCopies(t *testing.T) {
	nested := map[string]any{"nds": 20, "extra": "kept"}
	payload := map[string]any{
		"order_id":          "123e4567-e89b-12d3-a456-426614174000",
		"additional_params": nested,
		"unexpected":        true,
	}
	rules := Rules{
		F("order_id").Require().Match(UUID),
		F("additional_params.nds").Num(),
	}

	out, err := Validate(payload, rules)
	require.NoError(t, err)

	assert.NotContains(t, out, "unexpected")
	assert.Equal(t, nested, out["additional_params"])

	out["additional_params"].(map[string]any)["nds"] = 0
	assert.Equal(t, 20, nested["nds"])
}

func TestValidateRoutePath(t *testing.T) {
	assert.NoError(t, ValidateRoutePath("/monoparts/callback"))
	assert.Error(t, ValidateRoutePath(""))
	assert.Error(t, ValidateRoutePath("monoparts"))
	assert.Error(t, ValidateRoutePath("/../etc"))
	assert.Error(t, ValidateRoutePath("/cb?x=<script>"))
}

func TestIsValidDate(t *testing.T) {
	assert.True(t, IsValidDate("2025-01-31"))
	assert.False(t, IsValidDate("2025-1-31"))
	assert.False(t, IsValidDate("31.01.2025"))
}
