package validators

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	pkgerrors "github.com/angelmondragon/shopfront-backend/pkg/errors"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

type addItemBody struct {
	ProductID string `json:"productId" validate:"required,uuid"`
	Quantity  int    `json:"quantity" validate:"required,min=1"`
}

func TestDecodeJSONBody(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantErr bool
		field   string
	}{
		{name: "valid", body: `{"productId":"` + uuid.NewString() + `","quantity":2}`},
		{name: "unknownField", body: `{"productId":"x","quantity":1,"extra":true}`, wantErr: true},
		{name: "missingQuantity", body: `{"productId":"` + uuid.NewString() + `"}`, wantErr: true, field: "quantity"},
		{name: "badUUID", body: `{"productId":"nope","quantity":1}`, wantErr: true, field: "productId"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tc.body))
			var dest addItemBody
			err := DecodeJSONBody(req, &dest)
			if !tc.wantErr {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			typed := pkgerrors.As(err)
			if typed == nil || typed.Code() != pkgerrors.CodeValidation {
				t.Fatalf("expected validation error, got %v", err)
			}
			if tc.field != "" {
				details, ok := typed.Details().(map[string]string)
				if !ok || details[tc.field] == "" {
					t.Fatalf("expected detail for %s, got %v", tc.field, typed.Details())
				}
			}
		})
	}
}

func TestParseQueryDecimal(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/?minPrice=12.50&maxPrice=-1&bad=abc", nil)

	value, err := ParseQueryDecimal(req, "minPrice")
	if err != nil || value == nil || value.StringFixed(2) != "12.50" {
		t.Fatalf("unexpected minPrice %v %v", value, err)
	}
	if _, err := ParseQueryDecimal(req, "maxPrice"); !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error for negative value, got %v", err)
	}
	if _, err := ParseQueryDecimal(req, "bad"); !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error for malformed value, got %v", err)
	}
	if value, err := ParseQueryDecimal(req, "absent"); err != nil || value != nil {
		t.Fatalf("expected nil for absent key, got %v %v", value, err)
	}
}

func TestParseQueryInt(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/?page=3&limit=500", nil)
	if page, err := ParseQueryInt(req, "page", 1, 1, 1000); err != nil || page != 3 {
		t.Fatalf("unexpected page %d %v", page, err)
	}
	if _, err := ParseQueryInt(req, "limit", 10, 1, 100); err == nil {
		t.Fatal("expected out of range error")
	}
	if limit, err := ParseQueryInt(req, "missing", 10, 1, 100); err != nil || limit != 10 {
		t.Fatalf("expected default, got %d %v", limit, err)
	}
}

func TestParseUUIDParam(t *testing.T) {
	id := uuid.New()
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("productId", id.String())
	req := httptest.NewRequest(http.MethodGet, "/", nil).WithContext(context.WithValue(context.Background(), chi.RouteCtxKey, rctx))

	got, err := ParseUUIDParam(req, "productId")
	if err != nil || got != id {
		t.Fatalf("unexpected id %v %v", got, err)
	}
	if _, err := ParseUUIDParam(req, "other"); !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestExtractAccessToken(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer abc")
	req.AddCookie(&http.Cookie{Name: TokenCookieName, Value: "cookie"})
	if got := ExtractAccessToken(req); got != "abc" {
		t.Fatalf("expected bearer token, got %q", got)
	}

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: TokenCookieName, Value: "cookie"})
	if got := ExtractAccessToken(req); got != "cookie" {
		t.Fatalf("expected cookie token, got %q", got)
	}

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Basic zzz")
	if got := ExtractAccessToken(req); got != "" {
		t.Fatalf("expected no token, got %q", got)
	}
}

func TestQueryString(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/?search=%20%20caf%C3%A9%20mug%20%20&empty=", nil)
	if got := QueryString(req, "search", 0); got != "café mug" {
		t.Fatalf("unexpected trimmed value %q", got)
	}
	if got := QueryString(req, "search", 4); got != "café" {
		t.Fatalf("expected rune-safe cap, got %q", got)
	}
	if got := QueryString(req, "empty", 10); got != "" {
		t.Fatalf("expected empty value, got %q", got)
	}
}

func TestDecodeJSONBodyRejectsTrailingData(t *testing.T) {
	body := `{"productId":"` + uuid.NewString() + `","quantity":1}{"quantity":2}`
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	var dest addItemBody
	if err := DecodeJSONBody(req, &dest); !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestDecodeJSONBodyRejectsOversizedBody(t *testing.T) {
	body := `{"productId":"` + strings.Repeat("a", maxBodyBytes) + `","quantity":1}`
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	var dest addItemBody
	if err := DecodeJSONBody(req, &dest); !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}
