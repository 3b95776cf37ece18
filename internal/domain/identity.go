package domain

// IdentityRecord is the authoritative view of a user for authentication.
// Identity is the unique login string (the email address).
type IdentityRecord struct {
	Identity     string
	PasswordHash string
	Enabled      bool
	Roles        []RoleName
}
