package model

// Roles carried in the JWT role claim.
const (
	RoleCustomer = "CUSTOMER"
	RoleAdmin    = "ADMIN"
)

// User represents an account allowed to log in.  Only the bcrypt hash of
// the password is kept.
//
// Fields:
//  ID           – stable identifier used as the JWT subject.
//  Email        – unique, lower-cased login.
//  Name         – display name.
//  PasswordHash – bcrypt hash.
//  Role         – CUSTOMER or ADMIN.
type User struct {
	ID           string // users.id
	Email        string // users.email
	Name         string // users.name
	PasswordHash string // users.password_hash
	Role         string // users.role
}
