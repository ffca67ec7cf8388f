package domain

import "time"

// Role enumerates marketplace account roles.
type Role string

const (
	RoleBuyer  Role = "buyer"
	RoleSeller Role = "seller"
	RoleAgent  Role = "agent"
	RoleAdmin  Role = "admin"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	switch r {
	case RoleBuyer, RoleSeller, RoleAgent, RoleAdmin:
		return true
	}
	return false
}

// UserStatus is the moderation state derived from a User.
type UserStatus string

const (
	UserStatusActive    UserStatus = "active"
	UserStatusInactive  UserStatus = "inactive"
	UserStatusSuspended UserStatus = "suspended"
	UserStatusDeleted   UserStatus = "deleted"
)

// Suspension records who suspended an account and why.
type Suspension struct {
	At     time.Time
	By     string
	Reason string
}

// Deletion records a soft delete.
type Deletion struct {
	At time.Time
	By string
}

// TermsAcceptance is captured when a user accepts the marketplace terms.
type TermsAcceptance struct {
	AcceptedAt time.Time
	Version    string
	IPAddress  string
}

// User is a marketplace account. A non-nil Suspension always comes with
// Active=false; a nil Deletion means the account is live.
type User struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	Role         Role
	Active       bool
	Suspension   *Suspension
	Deletion     *Deletion
	Terms        *TermsAcceptance
	Version      int64
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Status collapses the moderation fields into a single state.
func (u *User) Status() UserStatus {
	switch {
	case u.Deletion != nil:
		return UserStatusDeleted
	case u.Suspension != nil:
		return UserStatusSuspended
	case u.Active:
		return UserStatusActive
	default:
		return UserStatusInactive
	}
}

// IsDeleted reports whether the account was soft-deleted.
func (u *User) IsDeleted() bool { return u.Deletion != nil }

// IsSuspended reports whether the account is formally suspended.
func (u *User) IsSuspended() bool { return u.Suspension != nil }

// Clone returns a deep copy.
func (u *User) Clone() *User {
	if u == nil {
		return nil
	}
	c := *u
	if u.Suspension != nil {
		s := *u.Suspension
		c.Suspension = &s
	}
	if u.Deletion != nil {
		d := *u.Deletion
		c.Deletion = &d
	}
	if u.Terms != nil {
		t := *u.Terms
		c.Terms = &t
	}
	return &c
}
