package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/estatehub/property-moderation/internal/api/dto"
	"github.com/estatehub/property-moderation/internal/domain"
	"github.com/estatehub/property-moderation/internal/moderation"
	"github.com/estatehub/property-moderation/internal/service"
)

// AdminHandler exposes the admin dashboard endpoints.
type AdminHandler struct {
	moderation  *service.ModerationService
	assignments *service.AssignmentService
	stats       *service.StatsService
	directory   *service.DirectoryService
	auth        *service.AuthService
}

// AdminDependencies bundles the services behind the admin routes.
type AdminDependencies struct {
	Moderation  *service.ModerationService
	Assignments *service.AssignmentService
	Stats       *service.StatsService
	Directory   *service.DirectoryService
	Auth        *service.AuthService
}

// NewAdminHandler constructs handler.
func NewAdminHandler(deps AdminDependencies) *AdminHandler {
	return &AdminHandler{
		moderation:  deps.Moderation,
		assignments: deps.Assignments,
		stats:       deps.Stats,
		directory:   deps.Directory,
		auth:        deps.Auth,
	}
}

// DashboardStats handles GET /admin/dashboard/stats.
func (h *AdminHandler) DashboardStats(c *fiber.Ctx) error {
	stats, err := h.stats.DashboardStats(c.UserContext())
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, "Dashboard stats fetched successfully", stats)
}

// UserStats handles GET /admin/users/stats.
func (h *AdminHandler) UserStats(c *fiber.Ctx) error {
	stats, err := h.stats.UserStats(c.UserContext())
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, "User stats fetched successfully", stats)
}

// PropertyStats handles GET /admin/properties/stats.
func (h *AdminHandler) PropertyStats(c *fiber.Ctx) error {
	stats, err := h.stats.PropertyStats(c.UserContext())
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, "Property stats fetched successfully", stats)
}

func userQuery(c *fiber.Ctx) service.UserQuery {
	return service.UserQuery{
		Role:           c.Query("role"),
		Search:         c.Query("search"),
		IncludeDeleted: c.QueryBool("includeDeleted", false),
		Page:           c.QueryInt("page", 1),
		Limit:          c.QueryInt("limit", 0),
	}
}

// ListUsers handles GET /admin/users.
func (h *AdminHandler) ListUsers(c *fiber.Ctx) error {
	users, meta, err := h.directory.ListUsers(c.UserContext(), userQuery(c))
	if err != nil {
		return err
	}
	return respondPage(c, "Users fetched successfully", dto.NewUserResponses(users), meta)
}

// ListAgents handles GET /admin/agents.
func (h *AdminHandler) ListAgents(c *fiber.Ctx) error {
	agents, meta, err := h.directory.ListAgents(c.UserContext(), userQuery(c))
	if err != nil {
		return err
	}
	return respondPage(c, "Agents fetched successfully", dto.NewUserResponses(agents), meta)
}

// UpdateUserStatus handles PATCH /admin/users/:id/status.
func (h *AdminHandler) UpdateUserStatus(c *fiber.Ctx) error {
	actor, err := principal(c)
	if err != nil {
		return err
	}
	var req dto.UserStatusRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}

	user, err := h.moderation.UpdateUserStatus(c.UserContext(), actor.ID(), c.Params("id"), moderation.UserTarget{
		Status: domain.UserStatus(req.Status),
		Reason: req.Reason,
	})
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, "User status updated successfully", statusResponse(user))
}

// ToggleSuspension handles PATCH /admin/users/:id/suspend.
func (h *AdminHandler) ToggleSuspension(c *fiber.Ctx) error {
	actor, err := principal(c)
	if err != nil {
		return err
	}
	user, err := h.moderation.ToggleSuspension(c.UserContext(), actor.ID(), c.Params("id"))
	if err != nil {
		return err
	}
	message := "User unsuspended successfully"
	if user.IsSuspended() {
		message = "User suspended successfully"
	}
	return respond(c, http.StatusOK, message, statusResponse(user))
}

// Unsuspend handles PATCH /admin/users/:id/unsuspend.
func (h *AdminHandler) Unsuspend(c *fiber.Ctx) error {
	actor, err := principal(c)
	if err != nil {
		return err
	}
	user, err := h.moderation.Unsuspend(c.UserContext(), actor.ID(), c.Params("id"))
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, "User unsuspended successfully", statusResponse(user))
}

func statusResponse(u *domain.User) dto.UserStatusResponse {
	return dto.UserStatusResponse{User: dto.UserStatusSummary{ID: u.ID, Status: u.Status()}}
}

// DeleteUser handles DELETE /admin/users/:id.
func (h *AdminHandler) DeleteUser(c *fiber.Ctx) error {
	actor, err := principal(c)
	if err != nil {
		return err
	}
	if err := h.moderation.DeleteUser(c.UserContext(), actor.ID(), c.Params("id")); err != nil {
		return err
	}
	const msg = "User deleted successfully"
	return respond(c, http.StatusOK, msg, dto.MessageResponse{Message: msg})
}

// TermsLogs handles GET /admin/terms-logs.
func (h *AdminHandler) TermsLogs(c *fiber.Ctx) error {
	users, meta, err := h.directory.TermsLogs(c.UserContext(), c.QueryInt("page", 1), c.QueryInt("limit", 0))
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, "Terms logs fetched successfully", fiber.Map{
		"logs":       dto.NewTermsLog(users),
		"pagination": meta,
	})
}

// ListProperties handles GET /admin/properties.
func (h *AdminHandler) ListProperties(c *fiber.Ctx) error {
	properties, meta, err := h.directory.ListProperties(c.UserContext(), service.PropertyQuery{
		Approval: c.Query("status"),
		SellerID: c.Query("sellerId"),
		AgentID:  c.Query("agentId"),
		Search:   c.Query("search"),
		Page:     c.QueryInt("page", 1),
		Limit:    c.QueryInt("limit", 0),
	})
	if err != nil {
		return err
	}
	return respondPage(c, "Properties fetched successfully", dto.NewPropertyResponses(properties), meta)
}

// DeleteProperty handles DELETE /admin/properties/:id.
func (h *AdminHandler) DeleteProperty(c *fiber.Ctx) error {
	actor, err := principal(c)
	if err != nil {
		return err
	}
	if err := h.moderation.DeleteProperty(c.UserContext(), actor.ID(), c.Params("id")); err != nil {
		return err
	}
	return respond(c, http.StatusOK, "Property deleted successfully", fiber.Map{})
}

// AssignAgent handles PATCH /admin/properties/:id/assign-agent.
func (h *AdminHandler) AssignAgent(c *fiber.Ctx) error {
	actor, err := principal(c)
	if err != nil {
		return err
	}
	var req dto.AssignAgentRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	property, err := h.assignments.AssignAgent(c.UserContext(), actor.ID(), c.Params("id"), req.AgentID)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, "Agent assigned successfully", dto.NewPropertyResponse(property))
}

// UnassignAgent handles DELETE /admin/properties/:id/assign-agent.
func (h *AdminHandler) UnassignAgent(c *fiber.Ctx) error {
	actor, err := principal(c)
	if err != nil {
		return err
	}
	property, err := h.assignments.UnassignAgent(c.UserContext(), actor.ID(), c.Params("id"))
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, "Agent unassigned successfully", dto.NewPropertyResponse(property))
}

// ResetAssignments handles POST /admin/assignments/reset.
func (h *AdminHandler) ResetAssignments(c *fiber.Ctx) error {
	actor, err := principal(c)
	if err != nil {
		return err
	}
	modified, err := h.assignments.ResetAssignments(c.UserContext(), actor.ID())
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, "Assignments reset successfully", dto.ResetAssignmentsResponse{ModifiedCount: modified})
}

// ChangePassword handles POST /admin/change-password.
func (h *AdminHandler) ChangePassword(c *fiber.Ctx) error {
	actor, err := principal(c)
	if err != nil {
		return err
	}
	var req dto.ChangePasswordRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	if err := h.auth.ChangeAdminPassword(c.UserContext(), actor.ID(), req.CurrentPassword, req.NewPassword); err != nil {
		return err
	}
	const msg = "Password changed successfully"
	return respond(c, http.StatusOK, msg, dto.MessageResponse{Message: msg})
}
