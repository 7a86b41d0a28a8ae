// internal/handlers/common.go
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/sapmusicgroup/sap-backend/internal/earnings"
	"github.com/sapmusicgroup/sap-backend/internal/i18n"
	"github.com/sapmusicgroup/sap-backend/internal/middleware"
	"github.com/sapmusicgroup/sap-backend/internal/services"
	"github.com/sapmusicgroup/sap-backend/internal/utils"
)

// bind decodes the JSON body into req and validates it. It writes the
// error response and returns false when either step fails.
func bind(c *gin.Context, req interface{}) bool {
	lang := utils.GetLangFromContext(c)
	if err := c.ShouldBindJSON(req); err != nil {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationInvalid, "input"), err.Error())
		return false
	}
	if validationErrors := utils.GetValidationErrors(utils.ValidateStruct(req)); len(validationErrors) > 0 {
		utils.ValidationErrorResponse(c, validationErrors)
		return false
	}
	return true
}

func pathID(c *gin.Context, label string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid "+label+" ID", nil)
		return uuid.Nil, false
	}
	return id, true
}

func actor(c *gin.Context) (services.Actor, bool) {
	a, ok := middleware.GetActor(c)
	if !ok {
		utils.UnauthorizedResponse(c, "")
	}
	return a, ok
}

// respondError maps a service error to its response.
func respondError(c *gin.Context, err error) {
	if utils.DBErrorResponse(c, err) {
		return
	}
	lang := utils.GetLangFromContext(c)

	var transition *services.TransitionError
	var belowMinimum *earnings.BelowMinimumError
	switch {
	case errors.Is(err, services.ErrInvalidCredentials):
		utils.UnauthorizedResponse(c, i18n.T(lang, i18n.KeyAuthInvalidCredentials))
	case errors.Is(err, services.ErrTokenRevoked), errors.Is(err, services.ErrInvalidToken):
		utils.UnauthorizedResponse(c, i18n.T(lang, i18n.KeyAuthInvalidToken))
	case errors.Is(err, services.ErrAccountDeactivated):
		utils.ErrorResponse(c, http.StatusForbidden, "FORBIDDEN", i18n.T(lang, i18n.KeyAuthDeactivated), nil)
	case errors.Is(err, services.ErrEmailTaken):
		utils.ConflictResponse(c, i18n.T(lang, i18n.KeyAuthUserExists))
	case errors.Is(err, services.ErrForbidden):
		utils.ForbiddenResponse(c, "")

	case errors.Is(err, services.ErrUserNotFound):
		utils.NotFoundResponse(c, "user")
	case errors.Is(err, services.ErrSongNotFound):
		utils.NotFoundResponse(c, "song")
	case errors.Is(err, services.ErrWriterNotFound):
		utils.NotFoundResponse(c, "managed_writer")
	case errors.Is(err, services.ErrPayoutNotFound):
		utils.NotFoundResponse(c, "payout")
	case errors.Is(err, services.ErrDealNotFound):
		utils.NotFoundResponse(c, "sync_deal")
	case errors.Is(err, services.ErrSessionNotFound):
		utils.NotFoundResponse(c, "chat_session")

	case errors.As(err, &transition):
		utils.UnprocessableResponse(c, i18n.T(lang, i18n.KeyPayoutInvalidTransition, transition.From, transition.To))
	case errors.Is(err, services.ErrInvalidStatus):
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeySongInvalidStatus), nil)
	case errors.As(err, &belowMinimum):
		utils.UnprocessableResponse(c, belowMinimum.Error())
	case errors.Is(err, earnings.ErrInvalidAmount), errors.Is(err, earnings.ErrExceedsAvailable):
		utils.UnprocessableResponse(c, err.Error())

	case errors.Is(err, services.ErrMissingFields):
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyEmailMissingFields), nil)
	case errors.Is(err, services.ErrFileTooLarge):
		utils.ErrorResponse(c, http.StatusRequestEntityTooLarge, "FILE_TOO_LARGE", i18n.T(lang, i18n.KeyFileTooLarge), nil)
	case errors.Is(err, services.ErrFileType):
		utils.ErrorResponse(c, http.StatusUnsupportedMediaType, "INVALID_FILE_TYPE", i18n.T(lang, i18n.KeyFileInvalidType), nil)
	case errors.Is(err, services.ErrUpstream):
		utils.ErrorResponse(c, http.StatusBadGateway, "UPSTREAM_ERROR", err.Error(), nil)
	default:
		utils.InternalErrorResponse(c, err.Error())
	}
}
