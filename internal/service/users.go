package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/bigkaa/panelhub/internal/domain/model"
	"github.com/bigkaa/panelhub/internal/repository"
)

// UserService — административное управление учётными записями.
// Проверка роли admin выполняется HTTP-слоем через policy до вызова сервиса.
type UserService struct {
	users  repository.UserRepository
	logger *slog.Logger
}

// NewUserService создаёт сервис управления пользователями.
func NewUserService(users repository.UserRepository, logger *slog.Logger) *UserService {
	return &UserService{
		users:  users,
		logger: logger.With(slog.String("component", "user_service")),
	}
}

// Create создаёт учётную запись от имени администратора.
// Валидация та же, что при самостоятельной регистрации.
func (s *UserService) Create(ctx context.Context, p UserParams) (*model.User, error) {
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

	s.logger.Info("Администратор создал учётную запись",
		slog.String("user_id", u.ID),
		slog.String("username", u.Username),
		slog.String("role", u.Role),
	)

	return u, nil
}

// Get возвращает учётную запись по UUID.
func (s *UserService) Get(ctx context.Context, id string) (*model.User, error) {
	u, err := s.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%w: пользователь %s", ErrNotFound, id)
		}
		return nil, err
	}
	return u, nil
}

// List возвращает все учётные записи.
func (s *UserService) List(ctx context.Context) ([]*model.User, error) {
	return s.users.List(ctx)
}

// UpdateUserParams — частичное обновление учётной записи.
// nil-поле означает «не менять».
type UpdateUserParams struct {
	Username    *string
	Password    *string
	Role        *string
	AccountType *string
}

// Update применяет частичное обновление.
// Итоговая пара роль/тип аккаунта обязана сохранять инвариант
// role=admin ⇔ accountType=admin.
func (s *UserService) Update(ctx context.Context, id string, p UpdateUserParams) (*model.User, error) {
	u, err := s.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%w: пользователь %s", ErrNotFound, id)
		}
		return nil, err
	}

	if p.Username != nil {
		if *p.Username == "" {
			return nil, fmt.Errorf("%w: username не может быть пустым", ErrValidation)
		}
		u.Username = *p.Username
	}
	if p.Password != nil {
		if len(*p.Password) < minPasswordLen {
			return nil, fmt.Errorf("%w: пароль короче %d символов", ErrValidation, minPasswordLen)
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(*p.Password), bcryptCost)
		if err != nil {
			return nil, fmt.Errorf("хэширование пароля: %w", err)
		}
		u.PasswordHash = string(hash)
	}
	if p.Role != nil {
		if !model.IsValidRole(*p.Role) {
			return nil, fmt.Errorf("%w: недопустимая роль %q", ErrValidation, *p.Role)
		}
		u.Role = *p.Role
	}
	if p.AccountType != nil {
		if !model.IsValidAccountType(*p.AccountType) {
			return nil, fmt.Errorf("%w: недопустимый тип аккаунта %q", ErrValidation, *p.AccountType)
		}
		u.AccountType = *p.AccountType
	}

	if !model.ValidRolePairing(u.Role, u.AccountType) {
		return nil, fmt.Errorf("%w: роль %q несовместима с типом аккаунта %q", ErrValidation, u.Role, u.AccountType)
	}

	if err := s.users.Update(ctx, u); err != nil {
		switch {
		case errors.Is(err, repository.ErrConflict):
			return nil, fmt.Errorf("%w: имя пользователя занято", ErrConflict)
		case errors.Is(err, repository.ErrNotFound):
			return nil, fmt.Errorf("%w: пользователь %s", ErrNotFound, id)
		}
		return nil, err
	}

	s.logger.Info("Учётная запись обновлена", slog.String("user_id", u.ID))
	return u, nil
}

// Delete удаляет учётную запись.
// Записи о панелях пользователя удаляются каскадно на уровне БД.
func (s *UserService) Delete(ctx context.Context, id string) error {
	if err := s.users.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return fmt.Errorf("%w: пользователь %s", ErrNotFound, id)
		}
		return err
	}
	s.logger.Info("Учётная запись удалена", slog.String("user_id", id))
	return nil
}
