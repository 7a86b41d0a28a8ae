// internal/handlers/user.go
package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/sapmusicgroup/sap-backend/internal/services"
	"github.com/sapmusicgroup/sap-backend/internal/utils"
)

type UserHandler struct {
	userService     *services.UserService
	settingsService *services.SettingsService
}

func NewUserHandler(userService *services.UserService, settingsService *services.SettingsService) *UserHandler {
	return &UserHandler{
		userService:     userService,
		settingsService: settingsService,
	}
}

// PUT /users/profile
func (h *UserHandler) UpsertProfile(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}

	var req services.UpsertProfileRequest
	if !bind(c, &req) {
		return
	}

	user, err := h.userService.UpsertProfile(a, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, user)
}

// PATCH /admin/users/:id
func (h *UserHandler) UpdateAccess(c *gin.Context) {
	id, ok := pathID(c, "user")
	if !ok {
		return
	}

	var req services.UpdateAccessRequest
	if !bind(c, &req) {
		return
	}

	user, err := h.userService.UpdateAccess(id, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, user)
}

// GET /roles
func (h *UserHandler) Roles(c *gin.Context) {
	utils.SuccessResponse(c, h.userService.Roles())
}

// PUT /settings/agreement-template
func (h *UserHandler) UpdateAgreementTemplate(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}

	var req services.UpdateSettingRequest
	if !bind(c, &req) {
		return
	}

	setting, err := h.settingsService.UpdateAgreementTemplate(c.Request.Context(), a, req.Value)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, setting)
}
