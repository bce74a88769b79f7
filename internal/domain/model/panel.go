// panel.go — доменные модели панелей и конфигураций провижининга.
package model

import "time"

// Типы панелей.
const (
	// PanelTypePublic — публичная панель (доступна всем тарифам).
	PanelTypePublic = "public"
	// PanelTypePrivate — приватная панель (premium и eksklusif).
	PanelTypePrivate = "private"
)

// PanelConfig — конфигурация провижининга для типа панели (таблица panel_configs).
// Хранит учётные данные и параметры размещения для вызова внешнего API.
// Инвариант: не более одной конфигурации на тип.
type PanelConfig struct {
	// Type — тип панели, уникальный ключ (public, private, ...).
	Type string
	// Domain — домен панели Pterodactyl.
	Domain string
	// PTLA — Application API key внешнего API.
	PTLA string
	// PTLC — Client API key внешнего API.
	PTLC string
	// EggID — идентификатор egg в Pterodactyl.
	EggID string
	// NestID — идентификатор nest в Pterodactyl.
	NestID string
	// Loc — идентификатор location в Pterodactyl.
	Loc string
	// CreatedAt — время создания.
	CreatedAt time.Time
	// UpdatedAt — время последнего обновления.
	UpdatedAt time.Time
}

// UserPanel — запись о созданной панели (таблица user_panels).
// Создаётся только после успешного вызова внешнего API провижининга,
// удаляется только после успешного депровижининга.
type UserPanel struct {
	// ID — UUID локальной записи.
	ID string
	// OwnerID — UUID владельца (users.id).
	OwnerID string
	// IDServer — идентификатор сервера, присвоенный внешним API.
	IDServer string
	// IDUser — идентификатор пользователя на внешней панели.
	IDUser string
	// Username — имя пользователя на внешней панели.
	Username string
	// Domain — домен панели.
	Domain string
	// PanelType — тип панели (public, private, ...).
	PanelType string
	// CreatedAt — время создания записи.
	CreatedAt time.Time
}
