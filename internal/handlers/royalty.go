// internal/handlers/royalty.go
package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/sapmusicgroup/sap-backend/internal/models"
	"github.com/sapmusicgroup/sap-backend/internal/services"
	"github.com/sapmusicgroup/sap-backend/internal/utils"
)

// RoyaltyHandler serves earnings, payout requests and sync deals.
type RoyaltyHandler struct {
	earningService  *services.EarningService
	payoutService   *services.PayoutService
	syncDealService *services.SyncDealService
}

func NewRoyaltyHandler(
	earningService *services.EarningService,
	payoutService *services.PayoutService,
	syncDealService *services.SyncDealService,
) *RoyaltyHandler {
	return &RoyaltyHandler{
		earningService:  earningService,
		payoutService:   payoutService,
		syncDealService: syncDealService,
	}
}

// GET /earnings
func (h *RoyaltyHandler) ListEarnings(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}

	rows, err := h.earningService.List(a)
	if err != nil {
		respondError(c, err)
		return
	}
	if rows == nil {
		rows = []models.Earning{}
	}

	utils.SuccessResponse(c, rows)
}

// POST /earnings
func (h *RoyaltyHandler) CreateEarning(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}

	var req services.CreateEarningRequest
	if !bind(c, &req) {
		return
	}

	earning, err := h.earningService.Create(c.Request.Context(), a, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.CreatedResponse(c, earning)
}

// GET /payouts
func (h *RoyaltyHandler) ListPayouts(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}

	rows, err := h.payoutService.List(a)
	if err != nil {
		respondError(c, err)
		return
	}
	if rows == nil {
		rows = []models.PayoutRequest{}
	}

	utils.SuccessResponse(c, rows)
}

// GET /payouts/balance
func (h *RoyaltyHandler) Balance(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}

	balance, err := h.payoutService.Balance(a)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, balance)
}

// POST /payouts
func (h *RoyaltyHandler) RequestPayout(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}

	var req services.CreatePayoutRequest
	if !bind(c, &req) {
		return
	}

	payout, err := h.payoutService.Request(a, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.CreatedResponse(c, payout)
}

// PATCH /payouts/:id/status
func (h *RoyaltyHandler) UpdatePayoutStatus(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "payout")
	if !ok {
		return
	}

	var req services.UpdatePayoutStatusRequest
	if !bind(c, &req) {
		return
	}

	payout, err := h.payoutService.UpdateStatus(c.Request.Context(), a, id, req.Status)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, payout)
}

// GET /sync-deals
func (h *RoyaltyHandler) ListSyncDeals(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}

	rows, err := h.syncDealService.List(a)
	if err != nil {
		respondError(c, err)
		return
	}
	if rows == nil {
		rows = []models.SyncDeal{}
	}

	utils.SuccessResponse(c, rows)
}

// POST /sync-deals
func (h *RoyaltyHandler) CreateSyncDeal(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}

	var req services.CreateSyncDealRequest
	if !bind(c, &req) {
		return
	}

	deal, err := h.syncDealService.Create(a, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.CreatedResponse(c, deal)
}

// PATCH /sync-deals/:id/status
func (h *RoyaltyHandler) UpdateSyncDealStatus(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "sync deal")
	if !ok {
		return
	}

	var req services.UpdateSyncDealStatusRequest
	if !bind(c, &req) {
		return
	}

	deal, err := h.syncDealService.UpdateStatus(a, id, req.Status)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, deal)
}
