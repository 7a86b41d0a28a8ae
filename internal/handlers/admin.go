// internal/handlers/admin.go
package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/sapmusicgroup/sap-backend/internal/services"
	"github.com/sapmusicgroup/sap-backend/internal/utils"
)

type AdminHandler struct {
	auditService *services.AuditService
	userService  *services.UserService
}

func NewAdminHandler(auditService *services.AuditService, userService *services.UserService) *AdminHandler {
	return &AdminHandler{
		auditService: auditService,
		userService:  userService,
	}
}

// GET /admin/audit-logs
func (h *AdminHandler) GetAuditLogs(c *gin.Context) {
	params := utils.GetPaginationParams(c)

	filter := services.AuditFilter{ResourceType: c.Query("resource_type")}
	if userIDStr := c.Query("user_id"); userIDStr != "" {
		userID, err := uuid.Parse(userIDStr)
		if err != nil {
			utils.BadRequestResponse(c, "Invalid user ID", nil)
			return
		}
		filter.UserID = &userID
	}

	logs, total, err := h.auditService.List(filter, params)
	if err != nil {
		respondError(c, err)
		return
	}

	result := utils.CreatePaginationResult(logs, total, params)
	utils.PaginatedResponse(c, result)
}

// GET /admin/contacts
func (h *AdminHandler) GetAdminContacts(c *gin.Context) {
	admins, err := h.userService.AdminContacts()
	if err != nil {
		respondError(c, err)
		return
	}

	contacts := make([]gin.H, 0, len(admins))
	for _, a := range admins {
		contacts = append(contacts, gin.H{"id": a.ID, "name": a.Name, "email": a.Email})
	}
	utils.SuccessResponse(c, contacts)
}
