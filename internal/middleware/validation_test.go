package middleware

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"

	"catalog-api/internal/dto"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeProduct(t *testing.T, body string) (dto.ProductDTO, error) {
	t.Helper()
	req := httptest.NewRequest("POST", "/product", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	var p dto.ProductDTO
	err := DecodeAndValidate(req, &p)
	return p, err
}

// Property: a product body passes only when name and categoryId are present
func TestProperty_RequiredFieldValidationWorks(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("missing required fields are rejected", prop.ForAll(
		func(includeName, includeCategory bool) bool {
			body := map[string]interface{}{"price": 9.99, "stockQuantity": 5}
			if includeName {
				body["name"] = "Widget"
			}
			if includeCategory {
				body["categoryId"] = 1
			}
			raw, _ := json.Marshal(body)

			req := httptest.NewRequest("POST", "/product", bytes.NewReader(raw))
			var p dto.ProductDTO
			err := DecodeAndValidate(req, &p)

			if includeName && includeCategory {
				return err == nil
			}
			return err != nil && len(FormatValidationErrors(err)) > 0
		},
		gen.Bool(),
		gen.Bool(),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

// Property: negative prices and quantities never validate
func TestProperty_NegativeAmountsAreRejected(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("negative price is rejected", prop.ForAll(
		func(cents int) bool {
			body := `{"name":"Widget","categoryId":1,"price":-` + decimalCents(cents) + `}`
			_, err := decodeProduct(t, body)
			errs := FormatValidationErrors(err)
			return len(errs) == 1 && errs[0].Field == "price"
		},
		gen.IntRange(1, 1000000),
	))

	properties.Property("negative stock is rejected", prop.ForAll(
		func(stock int) bool {
			raw, _ := json.Marshal(map[string]interface{}{"name": "Widget", "categoryId": 1, "stockQuantity": -stock})
			req := httptest.NewRequest("POST", "/product", bytes.NewReader(raw))
			var p dto.ProductDTO
			errs := FormatValidationErrors(DecodeAndValidate(req, &p))
			return len(errs) == 1 && errs[0].Field == "stockQuantity"
		},
		gen.IntRange(1, 1000000),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

func decimalCents(cents int) string {
	raw, _ := json.Marshal(float64(cents) / 100)
	return string(raw)
}

func TestDecodeAndValidate_ValidProduct(t *testing.T) {
	p, err := decodeProduct(t, `{"name":"Widget","description":"","price":9.99,"stockQuantity":5,"categoryId":1}`)
	require.NoError(t, err)
	assert.Equal(t, "Widget", p.Name)
	assert.Equal(t, "9.99", p.Price.String())
	assert.Equal(t, 5, p.StockQuantity)
}

func TestDecodeAndValidate_EmptyAndMalformedBodies(t *testing.T) {
	_, err := decodeProduct(t, "")
	assert.ErrorIs(t, err, ErrEmptyBody)
	assert.Empty(t, FormatValidationErrors(err))

	_, err = decodeProduct(t, `{"name":`)
	require.Error(t, err)
	assert.Empty(t, FormatValidationErrors(err))

	// a JSON null decodes to the zero value and then fails validation
	_, err = decodeProduct(t, `null`)
	assert.NotEmpty(t, FormatValidationErrors(err))
}

func TestFormatValidationErrors_UsesJSONNames(t *testing.T) {
	_, err := decodeProduct(t, `{"name":"","categoryId":0}`)
	errs := FormatValidationErrors(err)

	fields := make(map[string]string)
	for _, e := range errs {
		fields[e.Field] = e.Message
	}
	assert.Equal(t, "This field is required", fields["name"])
	assert.Equal(t, "Value must be greater than 0", fields["categoryId"])
}

func TestCategoryValidation(t *testing.T) {
	var c dto.CategoryDTO
	req := httptest.NewRequest("POST", "/category", strings.NewReader(`{"name":"`+strings.Repeat("x", 101)+`"}`))
	errs := FormatValidationErrors(DecodeAndValidate(req, &c))
	require.Len(t, errs, 1)
	assert.Equal(t, "name", errs[0].Field)
	assert.Equal(t, "Value is too long", errs[0].Message)
}

func TestDecodeAndValidate_ProductFitsColumns(t *testing.T) {
	rejected := map[string]string{
		`{"name":"Widget","categoryId":1,"price":9.999}`:                  "price",
		`{"name":"Widget","categoryId":1,"price":1e20}`:                   "price",
		`{"name":"Widget","categoryId":1,"stockQuantity":3000000000}`:     "stockQuantity",
		`{"name":"Widget","categoryId":2147483648}`:                       "categoryId",
		`{"id":2147483648,"name":"Widget","categoryId":1,"price":"1.00"}`: "id",
	}
	for body, field := range rejected {
		_, err := decodeProduct(t, body)
		errs := FormatValidationErrors(err)
		require.Len(t, errs, 1, body)
		assert.Equal(t, field, errs[0].Field, body)
	}

	p, err := decodeProduct(t, `{"name":"Widget","categoryId":1,"price":9999999999999999.99}`)
	require.NoError(t, err)
	assert.Equal(t, "9999999999999999.99", p.Price.String())

	_, err = decodeProduct(t, `{"name":"Widget","categoryId":1,"price":1.50}`)
	assert.NoError(t, err)
}
