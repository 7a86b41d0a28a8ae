// internal/handlers/functions.go
package handlers

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/sapmusicgroup/sap-backend/internal/i18n"
	"github.com/sapmusicgroup/sap-backend/internal/services"
	"github.com/sapmusicgroup/sap-backend/internal/utils"
)

// FunctionHandler serves the named server functions under /functions.
type FunctionHandler struct {
	authService         *services.AuthService
	userService         *services.UserService
	settingsService     *services.SettingsService
	notificationService *services.NotificationService
}

func NewFunctionHandler(
	authService *services.AuthService,
	userService *services.UserService,
	settingsService *services.SettingsService,
	notificationService *services.NotificationService,
) *FunctionHandler {
	return &FunctionHandler{
		authService:         authService,
		userService:         userService,
		settingsService:     settingsService,
		notificationService: notificationService,
	}
}

// GET /functions/get-user-profile
func (h *FunctionHandler) GetUserProfile(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}

	user, err := h.userService.Profile(a)
	if err != nil {
		respondError(c, err)
		return
	}

	// A missing profile is not an error; the client fills in a placeholder.
	utils.SuccessResponse(c, gin.H{"user": user})
}

// GET /functions/get-all-users
func (h *FunctionHandler) GetAllUsers(c *gin.Context) {
	users, err := h.userService.AllUsers()
	if err != nil {
		respondError(c, err)
		return
	}
	if users == nil {
		users = []services.RosterEntry{}
	}

	utils.SuccessResponse(c, gin.H{"users": users})
}

// POST /functions/create-user-by-admin
func (h *FunctionHandler) CreateUserByAdmin(c *gin.Context) {
	var req services.CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Name == "" || req.Email == "" || req.Password == "" {
		lang := utils.GetLangFromContext(c)
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyEmailMissingFields), nil)
		return
	}
	if validationErrors := utils.GetValidationErrors(utils.ValidateStruct(&req)); len(validationErrors) > 0 {
		utils.ValidationErrorResponse(c, validationErrors)
		return
	}

	user, err := h.authService.CreateUserByAdmin(&req)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{"user": user})
}

// GET /functions/get-agreement-template
func (h *FunctionHandler) GetAgreementTemplate(c *gin.Context) {
	template, ok, err := h.settingsService.AgreementTemplate(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	var value interface{}
	if ok {
		value = template
	}
	utils.SuccessResponse(c, gin.H{"template": value})
}

// POST /functions/send-email
func (h *FunctionHandler) SendEmail(c *gin.Context) {
	lang := utils.GetLangFromContext(c)

	var req services.EmailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyEmailMissingFields), nil)
		return
	}

	result, err := h.notificationService.SendStatusEmail(&req)
	if err != nil {
		if errors.Is(err, services.ErrMissingFields) {
			utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyEmailMissingFields), nil)
			return
		}
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"message": i18n.T(lang, i18n.KeyEmailSent),
		"data":    result,
	})
}
