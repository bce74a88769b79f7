package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/bigkaa/panelhub/internal/domain/model"
	"github.com/bigkaa/panelhub/internal/repository"
)

// ConfigService — управление конфигурациями провижининга.
// Не более одной конфигурации на тип панели (первичный ключ type).
type ConfigService struct {
	configs repository.PanelConfigRepository
	logger  *slog.Logger
}

// NewConfigService создаёт сервис конфигураций панелей.
func NewConfigService(configs repository.PanelConfigRepository, logger *slog.Logger) *ConfigService {
	return &ConfigService{
		configs: configs,
		logger:  logger.With(slog.String("component", "config_service")),
	}
}

// validateConfig проверяет полноту конфигурации.
// Все поля обязательны: без любого из них вызов внешнего API не соберётся.
func validateConfig(c *model.PanelConfig) error {
	switch {
	case c.Type == "":
		return fmt.Errorf("%w: type обязателен", ErrValidation)
	case c.Domain == "":
		return fmt.Errorf("%w: domain обязателен", ErrValidation)
	case c.PTLA == "":
		return fmt.Errorf("%w: ptla обязателен", ErrValidation)
	case c.PTLC == "":
		return fmt.Errorf("%w: ptlc обязателен", ErrValidation)
	case c.EggID == "":
		return fmt.Errorf("%w: eggId обязателен", ErrValidation)
	case c.NestID == "":
		return fmt.Errorf("%w: nestId обязателен", ErrValidation)
	case c.Loc == "":
		return fmt.Errorf("%w: loc обязателен", ErrValidation)
	}
	return nil
}

// Create сохраняет новую конфигурацию.
func (s *ConfigService) Create(ctx context.Context, c *model.PanelConfig) error {
	if err := validateConfig(c); err != nil {
		return err
	}

	if err := s.configs.Create(ctx, c); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return fmt.Errorf("%w: конфигурация типа %q уже существует", ErrConflict, c.Type)
		}
		return err
	}

	s.logger.Info("Конфигурация панели создана", slog.String("type", c.Type))
	return nil
}

// Get возвращает конфигурацию по типу панели.
func (s *ConfigService) Get(ctx context.Context, panelType string) (*model.PanelConfig, error) {
	c, err := s.configs.GetByType(ctx, panelType)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%w: конфигурация типа %q", ErrNotFound, panelType)
		}
		return nil, err
	}
	return c, nil
}

// List возвращает все конфигурации.
func (s *ConfigService) List(ctx context.Context) ([]*model.PanelConfig, error) {
	return s.configs.List(ctx)
}

// Update обновляет существующую конфигурацию.
func (s *ConfigService) Update(ctx context.Context, c *model.PanelConfig) error {
	if err := validateConfig(c); err != nil {
		return err
	}

	if err := s.configs.Update(ctx, c); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return fmt.Errorf("%w: конфигурация типа %q", ErrNotFound, c.Type)
		}
		return err
	}

	s.logger.Info("Конфигурация панели обновлена", slog.String("type", c.Type))
	return nil
}

// Delete удаляет конфигурацию.
// Существующие панели этого типа не трогаются, но их удаление станет
// невозможным до восстановления конфигурации.
func (s *ConfigService) Delete(ctx context.Context, panelType string) error {
	if err := s.configs.Delete(ctx, panelType); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return fmt.Errorf("%w: конфигурация типа %q", ErrNotFound, panelType)
		}
		return err
	}
	s.logger.Info("Конфигурация панели удалена", slog.String("type", panelType))
	return nil
}
