package domain

import "time"

// ApprovalStatus tracks admin review of a listing.
type ApprovalStatus string

const (
	ApprovalPending  ApprovalStatus = "pending"
	ApprovalApproved ApprovalStatus = "approved"
	ApprovalRejected ApprovalStatus = "rejected"
)

// Valid reports whether s is a known approval status.
func (s ApprovalStatus) Valid() bool {
	switch s {
	case ApprovalPending, ApprovalApproved, ApprovalRejected:
		return true
	}
	return false
}

// ListingType distinguishes sale and rental listings.
type ListingType string

const (
	ListingSale ListingType = "sale"
	ListingRent ListingType = "rent"
)

// Review is the outcome of an admin approve/reject.
type Review struct {
	At     time.Time
	By     string
	Reason string
}

// Assignment links a property to the agent responsible for it.
type Assignment struct {
	AgentID    string
	AssignedAt time.Time
	AssignedBy string
}

// Property is a seller listing.
type Property struct {
	ID          string
	SellerID    string
	Title       string
	Description string
	Price       float64
	City        string
	Address     string
	ListingType ListingType
	Approval    ApprovalStatus
	Review      *Review
	Assignment  *Assignment
	Deletion    *Deletion
	Version     int64
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// IsDeleted reports whether the listing was soft-deleted.
func (p *Property) IsDeleted() bool { return p.Deletion != nil }

// AssignedAgentID returns the assigned agent id or "".
func (p *Property) AssignedAgentID() string {
	if p.Assignment == nil {
		return ""
	}
	return p.Assignment.AgentID
}

// Clone returns a deep copy.
func (p *Property) Clone() *Property {
	if p == nil {
		return nil
	}
	c := *p
	if p.Review != nil {
		r := *p.Review
		c.Review = &r
	}
	if p.Assignment != nil {
		a := *p.Assignment
		c.Assignment = &a
	}
	if p.Deletion != nil {
		d := *p.Deletion
		c.Deletion = &d
	}
	return &c
}
