package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/bigkaa/panelhub/internal/domain/model"
)

// UserPanelRepository — интерфейс для таблицы user_panels.
// Выборки по id_server принимают ownerID: пустая строка — без ограничения
// владельца (административный доступ), иначе предикат включает владельца.
// Чужая запись для не-владельца выглядит как отсутствующая —
// существование панелей не раскрывается.
type UserPanelRepository interface {
	// Create сохраняет запись о созданной панели.
	Create(ctx context.Context, p *model.UserPanel) error
	// GetByIDServer возвращает запись по id_server с учётом владельца.
	GetByIDServer(ctx context.Context, idServer, ownerID string) (*model.UserPanel, error)
	// ListByOwner возвращает панели владельца; ownerID="" — все панели.
	ListByOwner(ctx context.Context, ownerID string) ([]*model.UserPanel, error)
	// Delete удаляет запись по её UUID.
	// Возвращает количество удалённых строк (0 или 1) — по нему workflow
	// различает успех и расхождение локального состояния.
	Delete(ctx context.Context, id string) (int64, error)
}

// userPanelRepo — реализация UserPanelRepository.
type userPanelRepo struct {
	db DBTX
}

// NewUserPanelRepository создаёт репозиторий записей о панелях.
func NewUserPanelRepository(db DBTX) UserPanelRepository {
	return &userPanelRepo{db: db}
}

const userPanelColumns = `id, owner_id, id_server, id_user, username, domain, panel_type, created_at`

func (r *userPanelRepo) Create(ctx context.Context, p *model.UserPanel) error {
	query := `
		INSERT INTO user_panels (id, owner_id, id_server, id_user, username, domain, panel_type)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at`

	err := r.db.QueryRow(ctx, query,
		p.ID, p.OwnerID, p.IDServer, p.IDUser, p.Username, p.Domain, p.PanelType,
	).Scan(&p.CreatedAt)
	if err != nil {
		return fmt.Errorf("ошибка сохранения записи о панели: %w", err)
	}
	return nil
}

func (r *userPanelRepo) GetByIDServer(ctx context.Context, idServer, ownerID string) (*model.UserPanel, error) {
	query := fmt.Sprintf(`SELECT %s FROM user_panels WHERE id_server = $1`, userPanelColumns)
	args := []any{idServer}

	// Ограничение владельца — часть предиката выборки, а не отдельная
	// проверка: чужая панель неотличима от несуществующей.
	if ownerID != "" {
		query += ` AND owner_id = $2`
		args = append(args, ownerID)
	}

	p := &model.UserPanel{}
	err := r.db.QueryRow(ctx, query, args...).Scan(
		&p.ID, &p.OwnerID, &p.IDServer, &p.IDUser,
		&p.Username, &p.Domain, &p.PanelType, &p.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("ошибка получения записи о панели: %w", err)
	}
	return p, nil
}

func (r *userPanelRepo) ListByOwner(ctx context.Context, ownerID string) ([]*model.UserPanel, error) {
	query := fmt.Sprintf(`SELECT %s FROM user_panels`, userPanelColumns)
	var args []any

	if ownerID != "" {
		query += ` WHERE owner_id = $1`
		args = append(args, ownerID)
	}
	query += ` ORDER BY created_at DESC`

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("ошибка получения списка панелей: %w", err)
	}
	defer rows.Close()

	var result []*model.UserPanel
	for rows.Next() {
		p := &model.UserPanel{}
		if err := rows.Scan(
			&p.ID, &p.OwnerID, &p.IDServer, &p.IDUser,
			&p.Username, &p.Domain, &p.PanelType, &p.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("ошибка сканирования записи о панели: %w", err)
		}
		result = append(result, p)
	}
	return result, rows.Err()
}

func (r *userPanelRepo) Delete(ctx context.Context, id string) (int64, error) {
	tag, err := r.db.Exec(ctx, `DELETE FROM user_panels WHERE id = $1`, id)
	if err != nil {
		return 0, fmt.Errorf("ошибка удаления записи о панели: %w", err)
	}
	return tag.RowsAffected(), nil
}
