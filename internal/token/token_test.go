package token

import (
	"testing"
	"time"

	"github.com/bigkaa/panelhub/internal/domain/model"
)

var testSecret = []byte("0123456789abcdef0123456789abcdef")

func testUser() *model.User {
	return &model.User{
		ID:          "6f1c8a5e-0000-0000-0000-000000000001",
		Username:    "alice",
		Role:        model.RoleUser,
		AccountType: model.AccountTypePremium,
	}
}

// TestIssueVerify проверяет цикл выпуск → проверка.
func TestIssueVerify(t *testing.T) {
	signed, err := Issue(testSecret, time.Hour, testUser())
	if err != nil {
		t.Fatalf("Ошибка Issue: %v", err)
	}

	claims, err := Verify(testSecret, 30*time.Second, signed)
	if err != nil {
		t.Fatalf("Ошибка Verify: %v", err)
	}

	id := claims.Identity()
	if id.ID != testUser().ID {
		t.Errorf("ожидался sub=%s, получен %s", testUser().ID, id.ID)
	}
	if id.Username != "alice" || id.Role != model.RoleUser || id.AccountType != model.AccountTypePremium {
		t.Errorf("личность восстановлена неверно: %+v", id)
	}
}

// TestVerify_WrongSecret проверяет отклонение токена с чужой подписью.
func TestVerify_WrongSecret(t *testing.T) {
	signed, err := Issue([]byte("another-secret-another-secret-32"), time.Hour, testUser())
	if err != nil {
		t.Fatalf("Ошибка Issue: %v", err)
	}

	if _, err := Verify(testSecret, 0, signed); err == nil {
		t.Error("токен с чужой подписью должен быть отклонён")
	}
}

// TestVerify_Expired проверяет отклонение просроченного токена.
func TestVerify_Expired(t *testing.T) {
	signed, err := Issue(testSecret, -time.Hour, testUser())
	if err != nil {
		t.Fatalf("Ошибка Issue: %v", err)
	}

	if _, err := Verify(testSecret, 0, signed); err == nil {
		t.Error("просроченный токен должен быть отклонён")
	}
}

// TestVerify_ExpiredWithinLeeway проверяет допуск в пределах leeway.
func TestVerify_ExpiredWithinLeeway(t *testing.T) {
	signed, err := Issue(testSecret, -5*time.Second, testUser())
	if err != nil {
		t.Fatalf("Ошибка Issue: %v", err)
	}

	if _, err := Verify(testSecret, time.Minute, signed); err != nil {
		t.Errorf("токен в пределах leeway должен приниматься: %v", err)
	}
}

// TestVerify_Garbage проверяет отклонение мусора вместо токена.
func TestVerify_Garbage(t *testing.T) {
	if _, err := Verify(testSecret, 0, "not-a-jwt"); err == nil {
		t.Error("мусорная строка должна быть отклонена")
	}
}
