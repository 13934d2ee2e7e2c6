package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
)

func TestIssueValidateRoundTrip(t *testing.T) {
	a := NewAuthenticator("secret", time.Hour)
	tok, exp, err := a.Issue("u1")
	if err != nil {
		t.Fatal(err)
	}
	if time.Until(exp) <= 0 {
		t.Fatalf("expiry in the past: %v", exp)
	}
	claims, err := a.Validate(tok)
	if err != nil {
		t.Fatal(err)
	}
	if claims.UserID != "u1" || claims.ID == "" {
		t.Fatalf("claims %+v", claims)
	}

	other := NewAuthenticator("other", time.Hour)
	if _, err := other.Validate(tok); err == nil {
		t.Fatal("token accepted with wrong secret")
	}
}

func TestExpiredTokenRejected(t *testing.T) {
	a := NewAuthenticator("secret", time.Nanosecond)
	tok, _, err := a.Issue("u1")
	if err != nil {
		t.Fatal(err)
	}
	time.Sleep(1100 * time.Millisecond)
	if _, err := a.Validate(tok); err == nil {
		t.Fatal("expired token accepted")
	}
}

func TestMiddlewareSources(t *testing.T) {
	gin.SetMode(gin.TestMode)
	a := NewAuthenticator("secret", time.Hour)
	tok, _, _ := a.Issue("u1")

	r := gin.New()
	r.Use(sessions.Sessions("test", cookie.NewStore([]byte("k"))))
	r.GET("/me", a.Middleware(), func(c *gin.Context) {
		uid, _ := GetUserID(c)
		c.String(http.StatusOK, string(uid))
	})

	tests := []struct {
		name   string
		header string
		query  string
		status int
		body   string
	}{
		{"bearer", "Bearer " + tok, "", http.StatusOK, "u1"},
		{"query", "", "?token=" + tok, http.StatusOK, "u1"},
		{"bad scheme", "Basic abc", "", http.StatusUnauthorized, ""},
		{"bad token", "Bearer nope", "", http.StatusUnauthorized, ""},
		{"anonymous", "", "", http.StatusUnauthorized, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/me"+tt.query, nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)
			if w.Code != tt.status {
				t.Fatalf("status %d, want %d", w.Code, tt.status)
			}
			if tt.body != "" && w.Body.String() != tt.body {
				t.Fatalf("body %q", w.Body.String())
			}
		})
	}
}
