package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"hoteldesk-backend/services"
	"hoteldesk-backend/utils"
)

type BookingController struct {
	Svc *services.BookingService
	Log *zap.SugaredLogger
}

func NewBookingController(svc *services.BookingService, log *zap.SugaredLogger) *BookingController {
	return &BookingController{Svc: svc, Log: log}
}

type createBookingPayload struct {
	RoomTypeID     uint            `json:"roomTypeId"`
	CheckIn        string          `json:"checkIn"`
	CheckOut       string          `json:"checkOut"`
	Nights         int             `json:"nights"`
	Adults         int             `json:"adults"`
	Children       int             `json:"children"`
	DiscountAmount decimal.Decimal `json:"discountAmount"`
	PromoCodeID    *uint           `json:"promoCodeId"`
	GuestName      string          `json:"guestName"`
	GuestEmail     string          `json:"guestEmail"`
	GuestPhone     string          `json:"guestPhone"`
	PaymentMethod  string          `json:"paymentMethod"`
}

// List returns bookings, optionally filtered by ?status= and with
// ?include=invoices nesting invoices and payments.
func (ctrl *BookingController) List(c *gin.Context) {
	withInvoices := c.Query("include") == "invoices"
	bookings, err := ctrl.Svc.ListBookings(c.Query("status"), withInvoices)
	if err != nil {
		respondError(c, ctrl.Log, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, bookings)
}

func (ctrl *BookingController) Create(c *gin.Context) {
	var payload createBookingPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	checkIn, err := parseDate(payload.CheckIn)
	if err != nil {
		utils.JSONError(c, http.StatusBadRequest, "checkIn must be YYYY-MM-DD")
		return
	}
	checkOut, err := parseDate(payload.CheckOut)
	if err != nil {
		utils.JSONError(c, http.StatusBadRequest, "checkOut must be YYYY-MM-DD")
		return
	}

	booking, err := ctrl.Svc.CreateBooking(services.CreateBookingInput{
		RoomTypeID:     payload.RoomTypeID,
		CheckIn:        checkIn,
		CheckOut:       checkOut,
		Nights:         payload.Nights,
		Adults:         payload.Adults,
		Children:       payload.Children,
		DiscountAmount: payload.DiscountAmount,
		PromoCodeID:    payload.PromoCodeID,
		GuestName:      payload.GuestName,
		GuestEmail:     payload.GuestEmail,
		GuestPhone:     payload.GuestPhone,
		PaymentMethod:  payload.PaymentMethod,
	})
	if err != nil {
		respondError(c, ctrl.Log, err)
		return
	}
	utils.JSONSuccess(c, http.StatusCreated, booking)
}

func (ctrl *BookingController) Get(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	booking, err := ctrl.Svc.GetBooking(id)
	if err != nil {
		respondError(c, ctrl.Log, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, booking)
}

type updateBookingPayload struct {
	Status     *string `json:"status"`
	CheckIn    *string `json:"checkIn"`
	CheckOut   *string `json:"checkOut"`
	Nights     *int    `json:"nights"`
	RoomTypeID *uint   `json:"roomTypeId"`
}

func (ctrl *BookingController) Update(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	var payload updateBookingPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	in := services.UpdateBookingInput{
		Status:     payload.Status,
		Nights:     payload.Nights,
		RoomTypeID: payload.RoomTypeID,
	}
	var err error
	if payload.CheckIn != nil {
		var t time.Time
		if t, err = parseDate(*payload.CheckIn); err != nil {
			utils.JSONError(c, http.StatusBadRequest, "checkIn must be YYYY-MM-DD")
			return
		}
		in.CheckIn = &t
	}
	if payload.CheckOut != nil {
		var t time.Time
		if t, err = parseDate(*payload.CheckOut); err != nil {
			utils.JSONError(c, http.StatusBadRequest, "checkOut must be YYYY-MM-DD")
			return
		}
		in.CheckOut = &t
	}

	booking, err := ctrl.Svc.UpdateBooking(id, in)
	if err != nil {
		respondError(c, ctrl.Log, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, booking)
}

func (ctrl *BookingController) Delete(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	if err := ctrl.Svc.DeleteBooking(id, sessionUserName(c)); err != nil {
		respondError(c, ctrl.Log, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, gin.H{"message": "booking deleted"})
}
