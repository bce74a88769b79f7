// identity.go — доверенная личность запроса, извлечённая из проверенного JWT.
package model

// Identity — результат работы JWT middleware.
// Помещается в контекст запроса; все проверки прав работают с ней,
// а не с сырыми claims.
type Identity struct {
	// ID — UUID учётной записи (sub из JWT).
	ID string
	// Username — имя пользователя.
	Username string
	// Role — роль (user или admin).
	Role string
	// AccountType — тариф (reguler, premium, eksklusif, admin).
	AccountType string
}

// IsAdmin — true для администраторов.
func (i *Identity) IsAdmin() bool {
	return i.Role == RoleAdmin
}
