package domain

import "time"

// Gender is free-form profile data supplied at registration.
type Gender string

// User is the domain model for store customers and administrators.
type User struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	About        string
	Gender       Gender
	ImageName    string
	Enabled      bool
	Roles        []Role
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// HasRole reports whether the user was granted the named role.
func (u *User) HasRole(name RoleName) bool {
	for _, r := range u.Roles {
		if r.Name == name {
			return true
		}
	}
	return false
}

// RoleNames flattens the granted roles into their identifiers.
func (u *User) RoleNames() []RoleName {
	names := make([]RoleName, 0, len(u.Roles))
	for _, r := range u.Roles {
		names = append(names, r.Name)
	}
	return names
}

// IdentityRecord projects the user onto the fields authentication reads.
func (u *User) IdentityRecord() *IdentityRecord {
	return &IdentityRecord{
		Identity:     u.Email,
		PasswordHash: u.PasswordHash,
		Enabled:      u.Enabled,
		Roles:        u.RoleNames(),
	}
}
