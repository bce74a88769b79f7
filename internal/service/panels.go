package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/bigkaa/panelhub/internal/domain/model"
	"github.com/bigkaa/panelhub/internal/domain/policy"
	"github.com/bigkaa/panelhub/internal/notify"
	"github.com/bigkaa/panelhub/internal/ptero"
	"github.com/bigkaa/panelhub/internal/repository"
)

// PteroClient — операции внешнего API провижининга, нужные workflow.
// Реализуется ptero.Client; в тестах подменяется фейком.
type PteroClient interface {
	Create(ctx context.Context, p ptero.CreateParams) (*ptero.CreateResult, error)
	CreateAdmin(ctx context.Context, username string, cfg *model.PanelConfig) (json.RawMessage, error)
	Delete(ctx context.Context, idServer string, cfg *model.PanelConfig) error
}

// PanelService — workflow провижининга и депровижининга панелей.
//
// Последовательность создания без отката: локальная запись появляется
// только после успеха внешнего API; сбой записи после успеха внешней
// стороны — ErrPartialFailure, требующий вмешательства оператора.
type PanelService struct {
	panels   repository.UserPanelRepository
	configs  repository.PanelConfigRepository
	ptero    PteroClient
	notifier notify.Notifier
	logger   *slog.Logger
}

// NewPanelService создаёт сервис панелей.
func NewPanelService(
	panels repository.UserPanelRepository,
	configs repository.PanelConfigRepository,
	pteroClient PteroClient,
	notifier notify.Notifier,
	logger *slog.Logger,
) *PanelService {
	return &PanelService{
		panels:   panels,
		configs:  configs,
		ptero:    pteroClient,
		notifier: notifier,
		logger:   logger.With(slog.String("component", "panel_service")),
	}
}

// CreatePanelParams — параметры создания панели.
type CreatePanelParams struct {
	// Username — имя пользователя на создаваемой панели.
	Username string
	// RAM, Disk, CPU — размеры ресурсов.
	RAM  string
	Disk string
	CPU  string
	// HostingPackage — название пакета (для уведомления).
	HostingPackage string
	// PanelType — тип панели (public, private).
	PanelType string
}

// Create выполняет полный workflow создания панели:
// валидация → политика → конфигурация → внешний API → локальная запись →
// уведомление. Успешный ответ внешнего API возвращается как есть.
func (s *PanelService) Create(ctx context.Context, id *model.Identity, p CreatePanelParams) (*ptero.CreateResult, error) {
	if p.Username == "" || p.RAM == "" || p.Disk == "" || p.CPU == "" ||
		p.HostingPackage == "" || p.PanelType == "" {
		return nil, fmt.Errorf("%w: обязательны username, ram, disk, cpu, hostingPackage, panelType", ErrValidation)
	}

	if err := policy.CanCreatePanel(id, p.PanelType); err != nil {
		return nil, err
	}

	cfg, err := s.configs.GetByType(ctx, p.PanelType)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%w: конфигурация типа %q не настроена", ErrNotFound, p.PanelType)
		}
		return nil, err
	}

	result, err := s.ptero.Create(ctx, ptero.CreateParams{
		Username: p.Username,
		RAM:      p.RAM,
		Disk:     p.Disk,
		CPU:      p.CPU,
		Config:   cfg,
	})
	if err != nil {
		// Отказ внешней стороны (*ptero.RemoteError) уходит наверх как есть —
		// HTTP-слой вернёт клиенту статус и тело удалённого API без изменений.
		return nil, err
	}

	rec := &model.UserPanel{
		ID:        uuid.NewString(),
		OwnerID:   id.ID,
		IDServer:  result.Result.IDServer.String(),
		IDUser:    result.Result.IDUser.String(),
		Username:  result.Result.Username,
		Domain:    result.Result.Domain,
		PanelType: p.PanelType,
	}
	if err := s.panels.Create(ctx, rec); err != nil {
		// Панель уже существует на внешней стороне — потерять её нельзя.
		s.logger.Error("Панель создана на внешней стороне, но локальная запись не сохранена",
			slog.String("id_server", rec.IDServer),
			slog.String("owner_id", rec.OwnerID),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("%w: панель %s создана, запись не сохранена", ErrPartialFailure, rec.IDServer)
	}

	s.notifier.Notify(notify.PanelCreatedMessage(
		id.Username,
		p.HostingPackage,
		p.PanelType,
		result.Result.Username,
		result.Result.Password,
		result.Result.Domain,
		result.Result.IDUser.String(),
		result.Result.IDServer.String(),
	))

	s.logger.Info("Панель создана",
		slog.String("id_server", rec.IDServer),
		slog.String("owner_id", rec.OwnerID),
		slog.String("panel_type", rec.PanelType),
	)

	return result, nil
}

// CreateAdmin создаёт административную панель через внешний API.
// Только role=admin; используется конфигурация типа public.
// Локальная запись не создаётся: admin-панели не принадлежат пользователям.
func (s *PanelService) CreateAdmin(ctx context.Context, id *model.Identity, username string) (json.RawMessage, error) {
	if err := policy.RequireAdmin(id); err != nil {
		return nil, err
	}
	if username == "" {
		return nil, fmt.Errorf("%w: username обязателен", ErrValidation)
	}

	cfg, err := s.configs.GetByType(ctx, model.PanelTypePublic)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%w: конфигурация типа %q не настроена", ErrNotFound, model.PanelTypePublic)
		}
		return nil, err
	}

	raw, err := s.ptero.CreateAdmin(ctx, username, cfg)
	if err != nil {
		return nil, err
	}

	s.logger.Info("Админская панель создана",
		slog.String("username", username),
		slog.String("created_by", id.Username),
	)

	return raw, nil
}

// List возвращает панели владельца; администратор видит все.
func (s *PanelService) List(ctx context.Context, id *model.Identity) ([]*model.UserPanel, error) {
	if id == nil {
		return nil, policy.ErrDenied
	}

	ownerID := id.ID
	if id.IsAdmin() {
		ownerID = ""
	}
	return s.panels.ListByOwner(ctx, ownerID)
}

// Delete выполняет workflow удаления панели:
// выборка с учётом владельца → конфигурация → внешний API → локальная запись.
// Чужая панель для не-владельца — ErrNotFound, существование не раскрывается.
func (s *PanelService) Delete(ctx context.Context, id *model.Identity, idServer string) error {
	if id == nil {
		return policy.ErrDenied
	}
	if idServer == "" {
		return fmt.Errorf("%w: idServer обязателен", ErrValidation)
	}

	ownerID := id.ID
	if id.IsAdmin() {
		ownerID = ""
	}

	rec, err := s.panels.GetByIDServer(ctx, idServer, ownerID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return fmt.Errorf("%w: панель %s", ErrNotFound, idServer)
		}
		return err
	}

	cfg, err := s.configs.GetByType(ctx, rec.PanelType)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return fmt.Errorf("%w: конфигурация типа %q не настроена", ErrNotFound, rec.PanelType)
		}
		return err
	}

	// Отказ внешней стороны — локальная запись остаётся нетронутой.
	if err := s.ptero.Delete(ctx, idServer, cfg); err != nil {
		return err
	}

	n, err := s.panels.Delete(ctx, rec.ID)
	if err != nil {
		s.logger.Error("Панель удалена на внешней стороне, но локальная запись не удалена",
			slog.String("id_server", idServer),
			slog.String("error", err.Error()),
		)
		return fmt.Errorf("%w: панель %s удалена, запись осталась", ErrPartialFailure, idServer)
	}
	if n == 0 {
		// Гонка двух удалений: запись уже исчезла после нашей выборки.
		// Внешнее удаление прошло, локально удалять нечего — расхождение
		// отдаётся оператору, а не маскируется под успех.
		s.logger.Error("Панель удалена на внешней стороне, локальная запись уже отсутствовала",
			slog.String("id_server", idServer),
		)
		return fmt.Errorf("%w: запись панели %s уже отсутствовала", ErrPartialFailure, idServer)
	}

	s.logger.Info("Панель удалена",
		slog.String("id_server", idServer),
		slog.String("owner_id", rec.OwnerID),
	)

	return nil
}
