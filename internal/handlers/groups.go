package handlers

import (
	"strings"

	"github.com/Mayur-HT/Snapshot/internal/middleware"
	"github.com/Mayur-HT/Snapshot/internal/models"
	"github.com/Mayur-HT/Snapshot/internal/services"
	"github.com/Mayur-HT/Snapshot/pkg/logger"
	"github.com/Mayur-HT/Snapshot/pkg/utils"
	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	"github.com/gofiber/fiber/v2"
)

type GroupsHandler struct {
	Memberships *services.MembershipService
	Audit       *services.AuditService
}

func NewGroupsHandler(memberships *services.MembershipService, audit *services.AuditService) *GroupsHandler {
	return &GroupsHandler{Memberships: memberships, Audit: audit}
}

type createGroupRequest struct {
	Name string `json:"name"`
}

func (r createGroupRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Name, validation.Required, validation.Length(1, 150)),
	)
}

type addMemberRequest struct {
	Email string `json:"email"`
}

func (r addMemberRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email, validation.Required, is.Email),
	)
}

func (h *GroupsHandler) Create(c *fiber.Ctx) error {
	currentUser := middleware.GetCurrentUser(c)
	if currentUser == nil {
		return utils.Error(c, fiber.StatusUnauthorized, "unauthorized")
	}

	var req createGroupRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "invalid request body")
	}
	req.Name = strings.TrimSpace(req.Name)
	if err := req.Validate(); err != nil {
		return utils.ValidationError(c, err)
	}

	group, err := h.Memberships.CreateGroup(c.UserContext(), currentUser.ID, req.Name)
	if err != nil {
		return serviceError(c, err, "group_create_failed", "failed creating group")
	}

	logger.InfoWithUser(currentUser.ID.String(), "group_created", map[string]interface{}{
		"group_id":   group.ID.String(),
		"group_name": group.Name,
	})
	h.Audit.LogAsync(services.AuditEntry{
		UserID:       &currentUser.ID,
		Action:       "group.create",
		ResourceType: "group",
		ResourceID:   &group.ID,
		Details:      map[string]interface{}{"name": group.Name},
		IPAddress:    c.IP(),
		RequestID:    getRequestID(c),
	})

	return utils.Success(c, fiber.StatusCreated, group)
}

func (h *GroupsHandler) List(c *fiber.Ctx) error {
	currentUser := middleware.GetCurrentUser(c)
	if currentUser == nil {
		return utils.Error(c, fiber.StatusUnauthorized, "unauthorized")
	}

	groups, err := h.Memberships.ListGroups(c.UserContext(), currentUser.ID)
	if err != nil {
		return serviceError(c, err, "group_list_failed", "failed listing groups")
	}

	return utils.Success(c, fiber.StatusOK, fiber.Map{"groups": groups})
}

func (h *GroupsHandler) Get(c *fiber.Ctx) error {
	currentUser := middleware.GetCurrentUser(c)
	if currentUser == nil {
		return utils.Error(c, fiber.StatusUnauthorized, "unauthorized")
	}

	groupID, err := parseUUID(c.Params("id"))
	if err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "invalid group id")
	}

	group, err := h.Memberships.GetGroup(c.UserContext(), groupID, currentUser.ID)
	if err != nil {
		return serviceError(c, err, "group_load_failed", "failed loading group")
	}

	return utils.Success(c, fiber.StatusOK, group)
}

func (h *GroupsHandler) AddMember(c *fiber.Ctx) error {
	currentUser := middleware.GetCurrentUser(c)
	if currentUser == nil {
		return utils.Error(c, fiber.StatusUnauthorized, "unauthorized")
	}

	groupID, err := parseUUID(c.Params("id"))
	if err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "invalid group id")
	}

	var req addMemberRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "invalid request body")
	}
	req.Email = models.NormalizeEmail(req.Email)
	if err := req.Validate(); err != nil {
		return utils.ValidationError(c, err)
	}

	membership, err := h.Memberships.AddMember(c.UserContext(), groupID, currentUser.ID, req.Email)
	if err != nil {
		return serviceError(c, err, "group_member_add_failed", "failed adding member")
	}

	logger.InfoWithUser(currentUser.ID.String(), "group_member_added", map[string]interface{}{
		"group_id":       groupID.String(),
		"member_user_id": membership.UserID.String(),
	})
	h.Audit.LogAsync(services.AuditEntry{
		UserID:       &currentUser.ID,
		Action:       "group.member_add",
		ResourceType: "group",
		ResourceID:   &groupID,
		Details:      map[string]interface{}{"member_user_id": membership.UserID.String()},
		IPAddress:    c.IP(),
		RequestID:    getRequestID(c),
	})

	return utils.Success(c, fiber.StatusCreated, fiber.Map{"message": "Member added successfully"})
}

func (h *GroupsHandler) RemoveMember(c *fiber.Ctx) error {
	currentUser := middleware.GetCurrentUser(c)
	if currentUser == nil {
		return utils.Error(c, fiber.StatusUnauthorized, "unauthorized")
	}

	groupID, err := parseUUID(c.Params("id"))
	if err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "invalid group id")
	}
	targetID, err := parseUUID(c.Params("userId"))
	if err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "invalid user id")
	}

	if err := h.Memberships.RemoveMember(c.UserContext(), groupID, currentUser.ID, targetID); err != nil {
		return serviceError(c, err, "group_member_remove_failed", "failed removing member")
	}

	logger.InfoWithUser(currentUser.ID.String(), "group_member_removed", map[string]interface{}{
		"group_id":       groupID.String(),
		"member_user_id": targetID.String(),
	})
	h.Audit.LogAsync(services.AuditEntry{
		UserID:       &currentUser.ID,
		Action:       "group.member_remove",
		ResourceType: "group",
		ResourceID:   &groupID,
		Details:      map[string]interface{}{"member_user_id": targetID.String()},
		IPAddress:    c.IP(),
		RequestID:    getRequestID(c),
	})

	return utils.Success(c, fiber.StatusOK, fiber.Map{"message": "Member removed successfully"})
}

func (h *GroupsHandler) Delete(c *fiber.Ctx) error {
	currentUser := middleware.GetCurrentUser(c)
	if currentUser == nil {
		return utils.Error(c, fiber.StatusUnauthorized, "unauthorized")
	}

	groupID, err := parseUUID(c.Params("id"))
	if err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "invalid group id")
	}

	group, err := h.Memberships.DeleteGroup(c.UserContext(), groupID, currentUser.ID)
	if err != nil {
		return serviceError(c, err, "group_delete_failed", "failed deleting group")
	}

	logger.InfoWithUser(currentUser.ID.String(), "group_deleted", map[string]interface{}{
		"group_id":   group.ID.String(),
		"group_name": group.Name,
	})
	h.Audit.LogAsync(services.AuditEntry{
		UserID:       &currentUser.ID,
		Action:       "group.delete",
		ResourceType: "group",
		ResourceID:   &group.ID,
		Details:      map[string]interface{}{"name": group.Name},
		IPAddress:    c.IP(),
		RequestID:    getRequestID(c),
	})

	return utils.Success(c, fiber.StatusOK, fiber.Map{"message": "Group deleted successfully"})
}
