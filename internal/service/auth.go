package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/bigkaa/panelhub/internal/domain/model"
	"github.com/bigkaa/panelhub/internal/repository"
	"github.com/bigkaa/panelhub/internal/token"
)

// bcryptCost — стоимость хэширования паролей.
const bcryptCost = 10

// minPasswordLen — минимальная длина пароля.
const minPasswordLen = 8

// AuthService — регистрация и вход.
type AuthService struct {
	users  repository.UserRepository
	secret []byte
	ttl    time.Duration
	logger *slog.Logger
}

// NewAuthService создаёт сервис аутентификации.
func NewAuthService(users repository.UserRepository, secret []byte, ttl time.Duration, logger *slog.Logger) *AuthService {
	return &AuthService{
		users:  users,
		secret: secret,
		ttl:    ttl,
		logger: logger.With(slog.String("component", "auth_service")),
	}
}

// UserParams — параметры создания учётной записи
// (самостоятельная регистрация и административное создание).
type UserParams struct {
	Username    string
	Password    string
	Role        string
	AccountType string
}

// validateUserParams проверяет параметры новой учётной записи.
func validateUserParams(p UserParams) error {
	if p.Username == "" {
		return fmt.Errorf("%w: username обязателен", ErrValidation)
	}
	if len(p.Password) < minPasswordLen {
		return fmt.Errorf("%w: пароль короче %d символов", ErrValidation, minPasswordLen)
	}
	if !model.IsValidRole(p.Role) {
		return fmt.Errorf("%w: недопустимая роль %q", ErrValidation, p.Role)
	}
	if !model.IsValidAccountType(p.AccountType) {
		return fmt.Errorf("%w: недопустимый тип аккаунта %q", ErrValidation, p.AccountType)
	}
	if !model.ValidRolePairing(p.Role, p.AccountType) {
		return fmt.Errorf("%w: роль %q несовместима с типом аккаунта %q", ErrValidation, p.Role, p.AccountType)
	}
	return nil
}

// Register создаёт новую учётную запись.
// Инвариант role=admin ⇔ accountType=admin проверяется до записи.
func (s *AuthService) Register(ctx context.Context, p UserParams) (*model.User, error) {
	if err := validateUserParams(p); err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(p.Password), bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("хэширование пароля: %w", err)
	}

	u := &model.User{
		ID:           uuid.NewString(),
		Username:     p.Username,
		PasswordHash: string(hash),
		Role:         p.Role,
		AccountType:  p.AccountType,
	}

	if err := s.users.Create(ctx, u); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return nil, fmt.Errorf("%w: имя пользователя занято", ErrConflict)
		}
		return nil, err
	}

	s.logger.Info("Создана учётная запись",
		slog.String("user_id", u.ID),
		slog.String("username", u.Username),
		slog.String("role", u.Role),
		slog.String("account_type", u.AccountType),
	)

	return u, nil
}

// LoginResult — результат успешного входа.
type LoginResult struct {
	// Token — подписанный HS256 JWT.
	Token string
	// User — учётная запись (хэш пароля не отдаётся наружу HTTP-слоем).
	User *model.User
}

// Login проверяет пароль и выпускает токен.
// Несуществующий пользователь и неверный пароль дают одинаковую ошибку.
func (s *AuthService) Login(ctx context.Context, username, password string) (*LoginResult, error) {
	if username == "" || password == "" {
		return nil, fmt.Errorf("%w: username и password обязательны", ErrValidation)
	}

	u, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	signed, err := token.Issue(s.secret, s.ttl, u)
	if err != nil {
		return nil, err
	}

	// last_login — best effort: отказ записи не ломает вход.
	now := time.Now().UTC()
	if err := s.users.UpdateLastLogin(ctx, u.ID, now); err != nil {
		s.logger.Warn("Не удалось обновить last_login",
			slog.String("user_id", u.ID),
			slog.String("error", err.Error()),
		)
	} else {
		u.LastLogin = &now
	}

	s.logger.Info("Вход выполнен",
		slog.String("user_id", u.ID),
		slog.String("username", u.Username),
	)

	return &LoginResult{Token: signed, User: u}, nil
}
