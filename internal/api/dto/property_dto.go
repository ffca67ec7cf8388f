package dto

import (
	"time"

	"github.com/estatehub/property-moderation/internal/domain"
	"github.com/estatehub/property-moderation/internal/service"
)

// SubmitPropertyRequest is a seller's new listing.
type SubmitPropertyRequest struct {
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
	City        string  `json:"city"`
	Address     string  `json:"address"`
	ListingType string  `json:"listingType"`
}

// RejectPropertyRequest carries an optional rejection reason.
type RejectPropertyRequest struct {
	Reason string `json:"reason"`
}

// AssignAgentRequest names the agent to assign.
type AssignAgentRequest struct {
	AgentID string `json:"agentId"`
}

// PropertyResponse is the public listing shape.
type PropertyResponse struct {
	ID              string                `json:"id"`
	SellerID        string                `json:"sellerId"`
	Title           string                `json:"title"`
	Description     string                `json:"description,omitempty"`
	Price           float64               `json:"price"`
	City            string                `json:"city,omitempty"`
	Address         string                `json:"address,omitempty"`
	ListingType     domain.ListingType    `json:"listingType"`
	Status          domain.ApprovalStatus `json:"status"`
	ReviewedAt      *time.Time            `json:"reviewedAt,omitempty"`
	ReviewedBy      string                `json:"reviewedBy,omitempty"`
	RejectionReason string                `json:"rejectionReason,omitempty"`
	AssignedAgentID string                `json:"assignedAgentId,omitempty"`
	AssignedAt      *time.Time            `json:"assignedAt,omitempty"`
	IsDeleted       bool                  `json:"isDeleted"`
	DeletedAt       *time.Time            `json:"deletedAt,omitempty"`
	CreatedAt       time.Time             `json:"createdAt"`
	UpdatedAt       time.Time             `json:"updatedAt"`
}

// NewPropertyResponse renders a listing.
func NewPropertyResponse(p *domain.Property) PropertyResponse {
	resp := PropertyResponse{
		ID:          p.ID,
		SellerID:    p.SellerID,
		Title:       p.Title,
		Description: p.Description,
		Price:       p.Price,
		City:        p.City,
		Address:     p.Address,
		ListingType: p.ListingType,
		Status:      p.Approval,
		IsDeleted:   p.IsDeleted(),
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
	if r := p.Review; r != nil {
		at := r.At
		resp.ReviewedAt = &at
		resp.ReviewedBy = r.By
		resp.RejectionReason = r.Reason
	}
	if a := p.Assignment; a != nil {
		at := a.AssignedAt
		resp.AssignedAgentID = a.AgentID
		resp.AssignedAt = &at
	}
	if d := p.Deletion; d != nil {
		at := d.At
		resp.DeletedAt = &at
	}
	return resp
}

// NewPropertyResponses renders a page of listings.
func NewPropertyResponses(properties []domain.Property) []PropertyResponse {
	out := make([]PropertyResponse, 0, len(properties))
	for i := range properties {
		out = append(out, NewPropertyResponse(&properties[i]))
	}
	return out
}

// AssignedAgent is the agent card on a seller listing.
type AssignedAgent struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Email      string    `json:"email"`
	AssignedAt time.Time `json:"assignedAt"`
}

// SellerPropertyResponse is a seller's listing with its agent.
type SellerPropertyResponse struct {
	PropertyResponse
	AssignedAgent *AssignedAgent `json:"assignedAgent"`
}

// NewSellerPropertyResponses renders a seller's listings.
func NewSellerPropertyResponses(listings []service.SellerListing) []SellerPropertyResponse {
	out := make([]SellerPropertyResponse, 0, len(listings))
	for i := range listings {
		item := SellerPropertyResponse{PropertyResponse: NewPropertyResponse(&listings[i].Property)}
		if a := listings[i].Agent; a != nil {
			item.AssignedAgent = &AssignedAgent{ID: a.ID, Name: a.Name, Email: a.Email, AssignedAt: a.AssignedAt}
		}
		out = append(out, item)
	}
	return out
}
