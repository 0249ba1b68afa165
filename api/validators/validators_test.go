package validators

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
)

type addItemBody struct {
	ProductID uint `json:"productId" validate:"required"`
	Quantity  int  `json:"quantity" validate:"min=1"`
}

func TestDecodeJSONBodyRejectsUnknownFields(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"productId":1,"quantity":1,"extra":true}`))
	var body addItemBody
	err := DecodeJSONBody(req, &body)
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeValidation, pkgerrors.As(err).Code())
}

func TestDecodeJSONBodyRunsValidation(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"productId":1,"quantity":0}`))
	var body addItemBody
	err := DecodeJSONBody(req, &body)
	require.Error(t, err)
	details, ok := pkgerrors.As(err).Details().(map[string]string)
	require.True(t, ok)
	assert.Contains(t, details, "quantity")
}

func TestDecodeJSONBodyEmpty(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(""))
	var body addItemBody
	err := DecodeJSONBody(req, &body)
	require.Error(t, err)
	assert.Equal(t, "request body is required", pkgerrors.As(err).Message())
}

func TestParseIDParam(t *testing.T) {
	cases := map[string]bool{"7": true, "0": false, "-3": false, "abc": false, "": false}
	for raw, ok := range cases {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		rctx := chi.NewRouteContext()
		rctx.URLParams.Add("id", raw)
		req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))

		id, err := ParseIDParam(req, "id")
		if ok {
			require.NoError(t, err, raw)
			assert.Equal(t, uint(7), id)
		} else {
			assert.Error(t, err, raw)
		}
	}
}

func TestSanitizeString(t *testing.T) {
	assert.Equal(t, "Lamp", SanitizeString("  Lamp  ", 0))
	assert.Equal(t, "Lam", SanitizeString("Lamp", 3))
	assert.Equal(t, "Café", SanitizeString("Café au lait", 4))
	assert.Equal(t, "Desk lamp", SanitizeString("Desk\x00 lamp\n", 0))
}
