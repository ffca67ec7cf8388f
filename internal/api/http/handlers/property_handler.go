package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/estatehub/property-moderation/internal/api/dto"
	"github.com/estatehub/property-moderation/internal/service"
)

// PropertyHandler exposes listing review and seller endpoints.
type PropertyHandler struct {
	moderation  *service.ModerationService
	directory   *service.DirectoryService
	assignments *service.AssignmentService
}

// NewPropertyHandler constructs handler.
func NewPropertyHandler(moderation *service.ModerationService, directory *service.DirectoryService, assignments *service.AssignmentService) *PropertyHandler {
	return &PropertyHandler{moderation: moderation, directory: directory, assignments: assignments}
}

// Approve handles PATCH /properties/:id/approve.
func (h *PropertyHandler) Approve(c *fiber.Ctx) error {
	actor, err := principal(c)
	if err != nil {
		return err
	}
	property, err := h.moderation.ApproveProperty(c.UserContext(), actor.ID(), c.Params("id"))
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, "Property approved successfully", dto.NewPropertyResponse(property))
}

// Reject handles PATCH /properties/:id/reject.
func (h *PropertyHandler) Reject(c *fiber.Ctx) error {
	actor, err := principal(c)
	if err != nil {
		return err
	}
	var req dto.RejectPropertyRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	property, err := h.moderation.RejectProperty(c.UserContext(), actor.ID(), c.Params("id"), req.Reason)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, "Property rejected successfully", dto.NewPropertyResponse(property))
}

// Submit handles POST /properties.
func (h *PropertyHandler) Submit(c *fiber.Ctx) error {
	seller, err := principal(c)
	if err != nil {
		return err
	}
	var req dto.SubmitPropertyRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	property, err := h.directory.SubmitProperty(c.UserContext(), seller.User, service.PropertyInput{
		Title:       req.Title,
		Description: req.Description,
		Price:       req.Price,
		City:        req.City,
		Address:     req.Address,
		ListingType: req.ListingType,
	})
	if err != nil {
		return err
	}
	return respond(c, http.StatusCreated, "Property submitted for review", dto.NewPropertyResponse(property))
}

// SellerProperties handles GET /seller/properties.
func (h *PropertyHandler) SellerProperties(c *fiber.Ctx) error {
	seller, err := principal(c)
	if err != nil {
		return err
	}
	listings, meta, err := h.assignments.SellerProperties(c.UserContext(), seller.ID(), c.QueryInt("page", 1), c.QueryInt("limit", 0))
	if err != nil {
		return err
	}
	return respondPage(c, "Properties fetched successfully", dto.NewSellerPropertyResponses(listings), meta)
}
