package entity

import "time"

// Roles válidos para User.
const (
	RoleAdmin    = "admin"
	RoleSeller   = "seller"
	RoleCustomer = "customer"
)

// User representa un usuario del sistema.
type User struct {
	ID           string
	Username     string
	Email        string
	Phone        string
	PasswordHash string // bcrypt hash, nunca plano en dominio después de persistir
	Role         string // customer, seller, admin
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// IsValidRole valida el rol.
func IsValidRole(role string) bool {
	switch role {
	case RoleAdmin, RoleSeller, RoleCustomer:
		return true
	}
	return false
}

// CanManageStock indica si el rol puede registrar documentos de inventario.
func (u *User) CanManageStock() bool {
	return u.Role == RoleAdmin || u.Role == RoleSeller
}
