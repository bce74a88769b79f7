package middleware

import (
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/bigkaa/panelhub/internal/domain/model"
	"github.com/bigkaa/panelhub/internal/token"
)

var testSecret = []byte("0123456789abcdef0123456789abcdef")

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

// protectedHandler возвращает handler, проверяющий личность в контексте.
func protectedHandler(t *testing.T, gotIdentity **model.Identity) http.Handler {
	t.Helper()
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*gotIdentity = IdentityFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	})
}

func issueTestToken(t *testing.T, ttl time.Duration) string {
	t.Helper()
	signed, err := token.Issue(testSecret, ttl, &model.User{
		ID:          "user-1",
		Username:    "alice",
		Role:        model.RoleUser,
		AccountType: model.AccountTypePremium,
	})
	if err != nil {
		t.Fatalf("Ошибка выпуска токена: %v", err)
	}
	return signed
}

// TestJWTAuth_ValidToken проверяет пропуск запроса и личность в контексте.
func TestJWTAuth_ValidToken(t *testing.T) {
	auth := NewJWTAuth(testSecret, 30*time.Second, testLogger())

	var got *model.Identity
	handler := auth.Middleware()(protectedHandler(t, &got))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/panels", nil)
	req.Header.Set("Authorization", "Bearer "+issueTestToken(t, time.Hour))
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("ожидался статус 200, получен %d", rec.Code)
	}
	if got == nil {
		t.Fatal("личность не помещена в контекст")
	}
	if got.ID != "user-1" || got.Username != "alice" || got.Role != model.RoleUser || got.AccountType != model.AccountTypePremium {
		t.Errorf("личность восстановлена неверно: %+v", got)
	}
}

// TestJWTAuth_Rejections проверяет 401 для всех вариантов плохих токенов.
func TestJWTAuth_Rejections(t *testing.T) {
	auth := NewJWTAuth(testSecret, 0, testLogger())

	foreign, err := token.Issue([]byte("another-secret-another-secret-32"), time.Hour, &model.User{
		ID: "user-1", Username: "alice", Role: model.RoleUser, AccountType: model.AccountTypeReguler,
	})
	if err != nil {
		t.Fatalf("Ошибка выпуска токена: %v", err)
	}

	tests := []struct {
		name   string
		header string
	}{
		{"без заголовка", ""},
		{"не Bearer", "Basic dXNlcjpwYXNz"},
		{"пустой токен", "Bearer "},
		{"мусор вместо токена", "Bearer not-a-jwt"},
		{"чужая подпись", "Bearer " + foreign},
		{"просроченный", "Bearer " + issueTestToken(t, -time.Hour)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got *model.Identity
			handler := auth.Middleware()(protectedHandler(t, &got))

			req := httptest.NewRequest(http.MethodGet, "/api/v1/panels", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()

			handler.ServeHTTP(rec, req)

			if rec.Code != http.StatusUnauthorized {
				t.Errorf("ожидался статус 401, получен %d", rec.Code)
			}
			if got != nil {
				t.Error("личность не должна попадать в контекст")
			}
		})
	}
}

// TestIdentityFromContext_Missing проверяет nil без middleware.
func TestIdentityFromContext_Missing(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if id := IdentityFromContext(req.Context()); id != nil {
		t.Errorf("ожидался nil, получено: %+v", id)
	}
}
