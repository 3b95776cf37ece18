package domain

// RoleName is the opaque identifier authorization checks compare against.
type RoleName string

const (
	RoleAdmin  RoleName = "ADMIN"
	RoleNormal RoleName = "NORMAL"
)

// Role is a persisted role row.
type Role struct {
	ID   string
	Name RoleName
}
