package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"hoteldesk-backend/services"
	"hoteldesk-backend/utils"
)

type PaymentController struct {
	Svc *services.PaymentService
	Log *zap.SugaredLogger
}

func NewPaymentController(svc *services.PaymentService, log *zap.SugaredLogger) *PaymentController {
	return &PaymentController{Svc: svc, Log: log}
}

// List returns payments, optionally filtered by ?bookingId=.
func (ctrl *PaymentController) List(c *gin.Context) {
	var bookingID uint
	if raw := c.Query("bookingId"); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			utils.JSONError(c, http.StatusBadRequest, "invalid bookingId")
			return
		}
		bookingID = uint(id)
	}
	payments, err := ctrl.Svc.GetPayments(bookingID)
	if err != nil {
		respondError(c, ctrl.Log, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, payments)
}

type updatePaymentPayload struct {
	Amount decimal.Decimal `json:"amount"`
	Method string          `json:"method"`
	Reason string          `json:"reason"`
}

func (ctrl *PaymentController) Update(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	var payload updatePaymentPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	payment, err := ctrl.Svc.UpdatePayment(id, payload.Amount, payload.Method, payload.Reason, sessionUserName(c))
	if err != nil {
		respondError(c, ctrl.Log, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, payment)
}

func (ctrl *PaymentController) Delete(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	reason := c.Query("reason")
	if reason == "" {
		reason = "payment deleted"
	}
	if err := ctrl.Svc.DeletePayment(id, reason, sessionUserName(c)); err != nil {
		respondError(c, ctrl.Log, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, gin.H{"message": "payment deleted"})
}
