package model

import "time"

// Roles is the fixed set of role flags a user can hold.  It is deliberately
// a closed struct rather than an open map so that every valid combination is
// enumerable and testable.  The super admin flag does not imply the admin
// flag at the data level; predicates that treat super admins as admins live
// on this type.
//
// Fields:
//  IsBuyer      – user may place bids.
//  IsSeller     – user may create and edit auctions.
//  IsAdmin      – user may block accounts and read reports.
//  IsSuperAdmin – user may create admins and delete accounts.
type Roles struct {
	IsBuyer      bool `json:"is_buyer"`
	IsSeller     bool `json:"is_seller"`
	IsAdmin      bool `json:"is_admin"`
	IsSuperAdmin bool `json:"is_super_admin"`
}

// DefaultRoles returns the role set assigned on self-service registration:
// a regular marketplace participant who can both buy and sell.
func DefaultRoles() Roles {
	return Roles{IsBuyer: true, IsSeller: true}
}

// Admin reports whether the user holds admin privileges.  Super admins
// always qualify.
func (r Roles) Admin() bool { return r.IsAdmin || r.IsSuperAdmin }

// SuperAdmin reports whether the user holds super admin privileges.
func (r Roles) SuperAdmin() bool { return r.IsSuperAdmin }

// User mirrors the `users` table.  ID is the numeric primary key used in
// foreign keys; PublicID is the externally visible identifier embedded in
// tokens and URLs.
//
// TokenVersion is a monotonic counter: every bump invalidates all access
// tokens issued before it.  It only ever increases.
type User struct {
	ID           uint64    // users.id
	PublicID     string    // users.public_id (UUID)
	Username     string    // users.username (unique)
	Email        string    // users.email (unique)
	PasswordHash string    // users.password_hash (bcrypt)
	Roles        Roles     // users.is_buyer / is_seller / is_admin / is_super_admin
	IsBlocked    bool      // users.is_blocked
	TokenVersion int64     // users.token_version
	CreatedAt    time.Time // users.created_at
	UpdatedAt    time.Time // users.updated_at
}
