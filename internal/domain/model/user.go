// user.go — доменные модели учётных записей PanelHub.
package model

import "time"

// Роли учётных записей.
const (
	// RoleUser — обычный пользователь (создаёт панели по своему тарифу).
	RoleUser = "user"
	// RoleAdmin — администратор (управление конфигами, пользователями, admin-панелями).
	RoleAdmin = "admin"
)

// Типы аккаунтов (тарифы). Определяют, какие типы панелей доступны для создания.
const (
	AccountTypeReguler   = "reguler"
	AccountTypePremium   = "premium"
	AccountTypeEksklusif = "eksklusif"
	AccountTypeAdmin     = "admin"
)

// User — учётная запись PanelHub (таблица users).
type User struct {
	// ID — UUID учётной записи (помещается в sub JWT).
	ID string
	// Username — уникальное имя пользователя.
	Username string
	// PasswordHash — bcrypt-хэш пароля. Никогда не отдаётся наружу.
	PasswordHash string
	// Role — роль (user или admin).
	Role string
	// AccountType — тариф (reguler, premium, eksklusif, admin).
	AccountType string
	// CreatedAt — время создания.
	CreatedAt time.Time
	// LastLogin — время последнего входа (nil — не входил).
	LastLogin *time.Time
}

// IsValidRole проверяет допустимость роли.
func IsValidRole(role string) bool {
	return role == RoleUser || role == RoleAdmin
}

// IsValidAccountType проверяет допустимость типа аккаунта.
func IsValidAccountType(accountType string) bool {
	switch accountType {
	case AccountTypeReguler, AccountTypePremium, AccountTypeEksklusif, AccountTypeAdmin:
		return true
	}
	return false
}

// ValidRolePairing проверяет инвариант role=admin ⇔ accountType=admin.
// Admin-роль обязана иметь admin-тариф; пользовательская роль — не может.
func ValidRolePairing(role, accountType string) bool {
	if role == RoleAdmin {
		return accountType == AccountTypeAdmin
	}
	return accountType != AccountTypeAdmin
}
