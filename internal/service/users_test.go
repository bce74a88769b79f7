package service

import (
	"context"
	"errors"
	"testing"

	"golang.org/x/crypto/bcrypt"

	"github.com/bigkaa/panelhub/internal/domain/model"
)

func strPtr(s string) *string { return &s }

// TestUserService_Update проверяет частичное обновление и ротацию пароля.
func TestUserService_Update(t *testing.T) {
	repo := newFakeUserRepo()
	svc := NewUserService(repo, testLogger())
	ctx := context.Background()

	u, err := svc.Create(ctx, UserParams{
		Username:    "alice",
		Password:    "correct-horse",
		Role:        model.RoleUser,
		AccountType: model.AccountTypeReguler,
	})
	if err != nil {
		t.Fatalf("Ошибка Create: %v", err)
	}

	// Меняем только тариф — остальное не трогаем.
	updated, err := svc.Update(ctx, u.ID, UpdateUserParams{
		AccountType: strPtr(model.AccountTypePremium),
	})
	if err != nil {
		t.Fatalf("Ошибка Update: %v", err)
	}
	if updated.AccountType != model.AccountTypePremium {
		t.Errorf("тариф не обновился: %s", updated.AccountType)
	}
	if updated.Username != "alice" {
		t.Errorf("username не должен был измениться: %s", updated.Username)
	}

	// Ротация пароля.
	updated, err = svc.Update(ctx, u.ID, UpdateUserParams{
		Password: strPtr("new-password-1"),
	})
	if err != nil {
		t.Fatalf("Ошибка ротации пароля: %v", err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(updated.PasswordHash), []byte("new-password-1")); err != nil {
		t.Errorf("новый пароль не соответствует хэшу: %v", err)
	}
}

// TestUserService_Update_BrokenPairing проверяет сохранение инварианта
// role=admin ⇔ accountType=admin при частичном обновлении.
func TestUserService_Update_BrokenPairing(t *testing.T) {
	repo := newFakeUserRepo()
	svc := NewUserService(repo, testLogger())
	ctx := context.Background()

	u, err := svc.Create(ctx, UserParams{
		Username:    "alice",
		Password:    "correct-horse",
		Role:        model.RoleUser,
		AccountType: model.AccountTypeReguler,
	})
	if err != nil {
		t.Fatalf("Ошибка Create: %v", err)
	}

	// Смена роли на admin без смены тарифа нарушает инвариант.
	if _, err := svc.Update(ctx, u.ID, UpdateUserParams{
		Role: strPtr(model.RoleAdmin),
	}); !errors.Is(err, ErrValidation) {
		t.Errorf("ожидался ErrValidation, получено: %v", err)
	}

	// Согласованная смена роли и тарифа проходит.
	if _, err := svc.Update(ctx, u.ID, UpdateUserParams{
		Role:        strPtr(model.RoleAdmin),
		AccountType: strPtr(model.AccountTypeAdmin),
	}); err != nil {
		t.Errorf("согласованное обновление должно проходить: %v", err)
	}
}

// TestUserService_Update_Conflict проверяет конфликт имени при переименовании.
func TestUserService_Update_Conflict(t *testing.T) {
	repo := newFakeUserRepo()
	svc := NewUserService(repo, testLogger())
	ctx := context.Background()

	if _, err := svc.Create(ctx, UserParams{
		Username: "alice", Password: "correct-horse",
		Role: model.RoleUser, AccountType: model.AccountTypeReguler,
	}); err != nil {
		t.Fatalf("Ошибка Create: %v", err)
	}
	bob, err := svc.Create(ctx, UserParams{
		Username: "bob", Password: "correct-horse",
		Role: model.RoleUser, AccountType: model.AccountTypeReguler,
	})
	if err != nil {
		t.Fatalf("Ошибка Create: %v", err)
	}

	if _, err := svc.Update(ctx, bob.ID, UpdateUserParams{
		Username: strPtr("alice"),
	}); !errors.Is(err, ErrConflict) {
		t.Errorf("ожидался ErrConflict, получено: %v", err)
	}
}

// TestUserService_NotFound проверяет ошибки для несуществующего пользователя.
func TestUserService_NotFound(t *testing.T) {
	svc := NewUserService(newFakeUserRepo(), testLogger())
	ctx := context.Background()

	if _, err := svc.Get(ctx, "no-such-id"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get: ожидался ErrNotFound, получено: %v", err)
	}
	if _, err := svc.Update(ctx, "no-such-id", UpdateUserParams{}); !errors.Is(err, ErrNotFound) {
		t.Errorf("Update: ожидался ErrNotFound, получено: %v", err)
	}
	if err := svc.Delete(ctx, "no-such-id"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Delete: ожидался ErrNotFound, получено: %v", err)
	}
}
