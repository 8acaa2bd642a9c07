package routes

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"todo-bills/internal/auth"
	"todo-bills/internal/controller"
	"todo-bills/internal/validation"
)

func TestRouterGate(t *testing.T) {
	tokens := auth.NewTokens("secret", time.Hour)
	r := Router(&controller.Handlers{Validator: validation.New(), Tokens: tokens}, tokens)

	cases := []struct {
		method, path string
		status       int
	}{
		{http.MethodGet, "/health", http.StatusOK},
		{http.MethodGet, "/ready", http.StatusOK},
		{http.MethodGet, "/api/todos", http.StatusUnauthorized},
		{http.MethodPost, "/api/bills", http.StatusUnauthorized},
		{http.MethodGet, "/api/overview", http.StatusUnauthorized},
		{http.MethodGet, "/", http.StatusFound},
		{http.MethodPost, "/api/auth/login", http.StatusBadRequest},
	}
	for _, tc := range cases {
		t.Run(tc.method+" "+tc.path, func(t *testing.T) {
			req := httptest.NewRequest(tc.method, tc.path, strings.NewReader(`{}`))
			req.Header.Set("Content-Type", "application/json")
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)
			assert.Equal(t, tc.status, w.Code)
		})
	}
}
