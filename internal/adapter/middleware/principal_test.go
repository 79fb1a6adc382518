package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
)

var testSecret = []byte("test-secret")

func principalEcho() *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	g := e.Group("", Authenticate(testSecret))
	g.GET("/me", func(c echo.Context) error {
		p, _ := PrincipalFrom(c)
		return c.JSON(http.StatusOK, map[string]string{"kind": string(p.Kind), "id": p.ID})
	})
	g.POST("/admin", func(c echo.Context) error { return c.NoContent(http.StatusNoContent) }, RequireAdmin())
	return e
}

func bearer(t *testing.T, p Principal, ttl time.Duration) string {
	t.Helper()
	tok, err := IssueToken(testSecret, p, ttl)
	if err != nil {
		t.Fatalf("IssueToken: %v", err)
	}
	return "Bearer " + tok
}

func call(e *echo.Echo, method, path, auth string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	if auth != "" {
		req.Header.Set(echo.HeaderAuthorization, auth)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestAuthenticate(t *testing.T) {
	e := principalEcho()
	donor := Principal{Kind: KindDonor, ID: "0123456789abcdef0123456789abcdef"}

	forged, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, &Claims{
		Kind:             KindAdmin,
		RegisteredClaims: jwt.RegisteredClaims{Subject: "x"},
	}).SignedString([]byte("other-secret"))
	noKind, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, &Claims{
		RegisteredClaims: jwt.RegisteredClaims{Subject: "x"},
	}).SignedString(testSecret)

	tests := []struct {
		name string
		auth string
		want int
	}{
		{"missing header", "", http.StatusUnauthorized},
		{"not bearer", "Basic abc", http.StatusUnauthorized},
		{"garbage", "Bearer abc.def.ghi", http.StatusUnauthorized},
		{"wrong secret", "Bearer " + forged, http.StatusUnauthorized},
		{"no kind", "Bearer " + noKind, http.StatusUnauthorized},
		{"expired", bearer(t, donor, -time.Minute), http.StatusUnauthorized},
		{"valid", bearer(t, donor, time.Hour), http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := call(e, http.MethodGet, "/me", tt.auth)
			if rec.Code != tt.want {
				t.Fatalf("want %d, got %d: %s", tt.want, rec.Code, rec.Body.String())
			}
		})
	}
}

func TestRequireAdmin(t *testing.T) {
	e := principalEcho()

	if rec := call(e, http.MethodPost, "/admin", bearer(t, Principal{Kind: KindPatient, ID: "p"}, time.Hour)); rec.Code != http.StatusForbidden {
		t.Fatalf("patient => want 403, got %d", rec.Code)
	}
	if rec := call(e, http.MethodPost, "/admin", bearer(t, Principal{Kind: KindAdmin, ID: "staff-1"}, time.Hour)); rec.Code != http.StatusNoContent {
		t.Fatalf("admin => want 204, got %d", rec.Code)
	}
}

func TestAuthorize_WithoutPrincipal(t *testing.T) {
	e := echo.New()
	e.GET("/x", func(c echo.Context) error { return c.NoContent(http.StatusOK) }, Authorize(KindDonor))
	if rec := call(e, http.MethodGet, "/x", ""); rec.Code != http.StatusUnauthorized {
		t.Fatalf("want 401, got %d", rec.Code)
	}
}

func TestIssueToken_RequiresPrincipal(t *testing.T) {
	if _, err := IssueToken(testSecret, Principal{Kind: "root", ID: "x"}, time.Hour); err == nil {
		t.Fatal("unknown kind should be refused")
	}
	if _, err := IssueToken(testSecret, Principal{Kind: KindAdmin}, time.Hour); err == nil {
		t.Fatal("empty id should be refused")
	}
}
