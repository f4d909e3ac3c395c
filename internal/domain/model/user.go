package model

import "time"

// Роли администраторов.
const (
	RoleAdmin  = "admin"
	RoleEditor = "editor"
)

// AdminUser — учётная запись администратора или редактора.
// Хранится в таблице admin_users.
type AdminUser struct {
	// ID — UUID записи
	ID string
	// Email — адрес, уникален, используется для входа
	Email string
	// PasswordHash — bcrypt-хеш пароля
	PasswordHash string
	// Role — роль (admin, editor)
	Role string
	// CreatedAt — время создания записи
	CreatedAt time.Time
}
