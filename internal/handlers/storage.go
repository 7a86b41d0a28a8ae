// internal/handlers/storage.go
package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/sapmusicgroup/sap-backend/internal/i18n"
	"github.com/sapmusicgroup/sap-backend/internal/services"
	"github.com/sapmusicgroup/sap-backend/internal/utils"
)

// multipart overhead allowed on top of the largest category limit
const formSlack = 1 << 20

type StorageHandler struct {
	storageService *services.StorageService
}

func NewStorageHandler(storageService *services.StorageService) *StorageHandler {
	return &StorageHandler{storageService: storageService}
}

// POST /storage/upload
func (h *StorageHandler) Upload(c *gin.Context) {
	lang := utils.GetLangFromContext(c)
	a, ok := actor(c)
	if !ok {
		return
	}

	category := c.PostForm("category")
	opts, known := services.UploadOptionsFor(category)
	if !known {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationInvalid, "category"), nil)
		return
	}
	if c.Request.ContentLength > opts.MaxSize+formSlack {
		respondError(c, services.ErrFileTooLarge)
		return
	}

	header, err := c.FormFile("file")
	if err != nil {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationRequired, "file"), nil)
		return
	}

	result, err := h.storageService.Upload(c.Request.Context(), a, category, header)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.CreatedResponse(c, result)
}
