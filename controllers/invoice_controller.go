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

type InvoiceController struct {
	Svc *services.InvoiceService
	Log *zap.SugaredLogger
}

func NewInvoiceController(svc *services.InvoiceService, log *zap.SugaredLogger) *InvoiceController {
	return &InvoiceController{Svc: svc, Log: log}
}

type createInvoicePayload struct {
	BookingID      uint                        `json:"bookingId"`
	BaseAmount     decimal.Decimal             `json:"baseAmount"`
	DiscountAmount decimal.Decimal             `json:"discountAmount"`
	Items          []services.ExtraChargeInput `json:"items"`
	Status         string                      `json:"status"`
	DueDate        *string                     `json:"dueDate"`
	PaymentInfo    *services.PaymentInfoInput  `json:"paymentInfo"`
}

// List returns invoices, optionally filtered by ?bookingId=.
func (ctrl *InvoiceController) List(c *gin.Context) {
	var bookingID uint
	if raw := c.Query("bookingId"); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			utils.JSONError(c, http.StatusBadRequest, "invalid bookingId")
			return
		}
		bookingID = uint(id)
	}
	invoices, err := ctrl.Svc.ListInvoices(bookingID)
	if err != nil {
		respondError(c, ctrl.Log, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, invoices)
}

func (ctrl *InvoiceController) Create(c *gin.Context) {
	var payload createInvoicePayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	in := services.CreateInvoiceInput{
		BookingID:      payload.BookingID,
		BaseAmount:     payload.BaseAmount,
		DiscountAmount: payload.DiscountAmount,
		Items:          payload.Items,
		Status:         payload.Status,
		PaymentInfo:    payload.PaymentInfo,
	}
	if payload.DueDate != nil && *payload.DueDate != "" {
		t, err := parseDate(*payload.DueDate)
		if err != nil {
			utils.JSONError(c, http.StatusBadRequest, "dueDate must be YYYY-MM-DD")
			return
		}
		in.DueDate = &t
	}

	invoice, err := ctrl.Svc.CreateInvoice(in)
	if err != nil {
		respondError(c, ctrl.Log, err)
		return
	}
	utils.JSONSuccess(c, http.StatusCreated, invoice)
}

func (ctrl *InvoiceController) Get(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	invoice, err := ctrl.Svc.GetInvoice(id)
	if err != nil {
		respondError(c, ctrl.Log, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, invoice)
}

func (ctrl *InvoiceController) Delete(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	reason := c.Query("reason")
	if reason == "" {
		reason = "invoice deleted"
	}
	if err := ctrl.Svc.DeleteInvoice(id, reason, sessionUserName(c)); err != nil {
		respondError(c, ctrl.Log, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, gin.H{"message": "invoice deleted"})
}
