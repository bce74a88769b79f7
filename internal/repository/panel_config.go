package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/bigkaa/panelhub/internal/domain/model"
)

// PanelConfigRepository — интерфейс CRUD для таблицы panel_configs.
type PanelConfigRepository interface {
	// Create создаёт конфигурацию. Дублирующийся type → ErrConflict.
	Create(ctx context.Context, c *model.PanelConfig) error
	// GetByType возвращает конфигурацию по типу панели.
	GetByType(ctx context.Context, panelType string) (*model.PanelConfig, error)
	// List возвращает все конфигурации.
	List(ctx context.Context) ([]*model.PanelConfig, error)
	// Update обновляет конфигурацию. Отсутствующий type → ErrNotFound.
	Update(ctx context.Context, c *model.PanelConfig) error
	// Delete удаляет конфигурацию. Отсутствующий type → ErrNotFound.
	Delete(ctx context.Context, panelType string) error
}

// panelConfigRepo — реализация PanelConfigRepository.
type panelConfigRepo struct {
	db DBTX
}

// NewPanelConfigRepository создаёт репозиторий конфигураций панелей.
func NewPanelConfigRepository(db DBTX) PanelConfigRepository {
	return &panelConfigRepo{db: db}
}

const panelConfigColumns = `type, domain, ptla, ptlc, egg_id, nest_id, loc, created_at, updated_at`

// scanPanelConfig сканирует строку результата в модель PanelConfig.
func scanPanelConfig(row pgx.Row) (*model.PanelConfig, error) {
	c := &model.PanelConfig{}
	err := row.Scan(
		&c.Type, &c.Domain, &c.PTLA, &c.PTLC,
		&c.EggID, &c.NestID, &c.Loc, &c.CreatedAt, &c.UpdatedAt,
	)
	return c, err
}

func (r *panelConfigRepo) Create(ctx context.Context, c *model.PanelConfig) error {
	query := `
		INSERT INTO panel_configs (type, domain, ptla, ptlc, egg_id, nest_id, loc)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at, updated_at`

	err := r.db.QueryRow(ctx, query,
		c.Type, c.Domain, c.PTLA, c.PTLC, c.EggID, c.NestID, c.Loc,
	).Scan(&c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: конфигурация типа %q уже существует", ErrConflict, c.Type)
		}
		return fmt.Errorf("ошибка создания конфигурации: %w", err)
	}
	return nil
}

func (r *panelConfigRepo) GetByType(ctx context.Context, panelType string) (*model.PanelConfig, error) {
	query := fmt.Sprintf(`SELECT %s FROM panel_configs WHERE type = $1`, panelConfigColumns)
	c, err := scanPanelConfig(r.db.QueryRow(ctx, query, panelType))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("ошибка получения конфигурации: %w", err)
	}
	return c, nil
}

func (r *panelConfigRepo) List(ctx context.Context) ([]*model.PanelConfig, error) {
	query := fmt.Sprintf(`SELECT %s FROM panel_configs ORDER BY type`, panelConfigColumns)

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("ошибка получения списка конфигураций: %w", err)
	}
	defer rows.Close()

	var result []*model.PanelConfig
	for rows.Next() {
		c := &model.PanelConfig{}
		if err := rows.Scan(
			&c.Type, &c.Domain, &c.PTLA, &c.PTLC,
			&c.EggID, &c.NestID, &c.Loc, &c.CreatedAt, &c.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("ошибка сканирования конфигурации: %w", err)
		}
		result = append(result, c)
	}
	return result, rows.Err()
}

func (r *panelConfigRepo) Update(ctx context.Context, c *model.PanelConfig) error {
	query := `
		UPDATE panel_configs
		SET domain = $2, ptla = $3, ptlc = $4, egg_id = $5, nest_id = $6, loc = $7,
			updated_at = now()
		WHERE type = $1
		RETURNING updated_at`

	err := r.db.QueryRow(ctx, query,
		c.Type, c.Domain, c.PTLA, c.PTLC, c.EggID, c.NestID, c.Loc,
	).Scan(&c.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrNotFound
		}
		return fmt.Errorf("ошибка обновления конфигурации: %w", err)
	}
	return nil
}

func (r *panelConfigRepo) Delete(ctx context.Context, panelType string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM panel_configs WHERE type = $1`, panelType)
	if err != nil {
		return fmt.Errorf("ошибка удаления конфигурации: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
