package services

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"hoteldesk-backend/apperrors"
	"hoteldesk-backend/models"
)

// BookingService allocates rooms, prices bookings, and drives the cascading
// cleanup when bookings are cancelled or deleted.
type BookingService struct {
	DB       *gorm.DB
	Taxes    *TaxService
	Accounts *AccountService
	Notifier *NotificationService
	Log      *zap.SugaredLogger
}

func NewBookingService(db *gorm.DB, taxes *TaxService, accounts *AccountService, notifier *NotificationService, log *zap.SugaredLogger) *BookingService {
	return &BookingService{DB: db, Taxes: taxes, Accounts: accounts, Notifier: notifier, Log: log}
}

// CreateBookingInput carries everything needed to create a booking.
type CreateBookingInput struct {
	RoomTypeID     uint            `json:"roomTypeId"`
	CheckIn        time.Time       `json:"checkIn"`
	CheckOut       time.Time       `json:"checkOut"`
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

func (in *CreateBookingInput) validate() error {
	var missing []string
	if strings.TrimSpace(in.GuestName) == "" {
		missing = append(missing, "guestName")
	}
	if strings.TrimSpace(in.GuestEmail) == "" {
		missing = append(missing, "guestEmail")
	}
	if strings.TrimSpace(in.GuestPhone) == "" {
		missing = append(missing, "guestPhone")
	}
	if in.RoomTypeID == 0 {
		missing = append(missing, "roomTypeId")
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing fields %s: %w", strings.Join(missing, ", "), apperrors.ErrValidation)
	}
	if in.DiscountAmount.IsNegative() {
		return fmt.Errorf("discountAmount must not be negative: %w", apperrors.ErrValidation)
	}
	return nil
}

func nightsBetween(checkIn, checkOut time.Time, declared int) int {
	if declared > 0 {
		return declared
	}
	n := int(checkOut.Sub(checkIn).Hours() / 24)
	if n <= 0 {
		n = 1
	}
	return n
}

// priceBooking computes both the undiscounted reference totals and the actual
// charge after the discount.
func (s *BookingService) priceBooking(price decimal.Decimal, nights int, discount decimal.Decimal, cfg TaxConfig) (original TaxBreakdown, charged TaxBreakdown, err error) {
	base := price.Mul(decimal.NewFromInt(int64(nights)))
	if discount.GreaterThan(base) {
		return original, charged, fmt.Errorf("discount %s exceeds base amount %s: %w", discount, base, apperrors.ErrValidation)
	}

	original, err = CalculateTaxes(base, cfg)
	if err != nil {
		return
	}
	charged, err = CalculateTaxes(base.Sub(discount), cfg)
	return
}

// allocateRoom picks the lowest-numbered available room of the type and flips
// it to reserved with a conditional update, so a concurrent transaction racing
// for the same room loses the RowsAffected check and moves to the next candidate.
func (s *BookingService) allocateRoom(tx *gorm.DB, roomTypeID uint) (*models.Room, error) {
	var candidates []models.Room
	err := tx.Where("room_type_id = ? AND status = ? AND available_for_booking = ?",
		roomTypeID, models.RoomStatusAvailable, true).
		Order("room_number ASC").
		Find(&candidates).Error
	if err != nil {
		return nil, fmt.Errorf("failed to query available rooms: %w", err)
	}

	for i := range candidates {
		res := tx.Model(&models.Room{}).
			Where("id = ? AND status = ?", candidates[i].ID, models.RoomStatusAvailable).
			Updates(map[string]interface{}{
				"status":                models.RoomStatusReserved,
				"available_for_booking": false,
			})
		if res.Error != nil {
			return nil, fmt.Errorf("failed to reserve room %d: %w", candidates[i].ID, res.Error)
		}
		if res.RowsAffected == 1 {
			candidates[i].Status = models.RoomStatusReserved
			candidates[i].AvailableForBooking = false
			return &candidates[i], nil
		}
	}
	return nil, fmt.Errorf("room type %d: %w", roomTypeID, apperrors.ErrNoAvailability)
}

func freeRoom(tx *gorm.DB, roomID uint) error {
	err := tx.Model(&models.Room{}).Where("id = ?", roomID).
		Updates(map[string]interface{}{
			"status":                models.RoomStatusAvailable,
			"available_for_booking": true,
		}).Error
	if err != nil {
		return fmt.Errorf("failed to free room %d: %w", roomID, err)
	}
	return nil
}

// CreateBooking validates input, prices the stay, and atomically creates the
// booking while reserving a room of the requested type.
func (s *BookingService) CreateBooking(in CreateBookingInput) (*models.Booking, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	var roomType models.RoomType
	if err := s.DB.First(&roomType, in.RoomTypeID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("room type %d: %w", in.RoomTypeID, apperrors.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to load room type: %w", err)
	}

	cfg, err := s.Taxes.GetConfig()
	if err != nil {
		return nil, err
	}

	nights := nightsBetween(in.CheckIn, in.CheckOut, in.Nights)
	original, charged, err := s.priceBooking(roomType.PricePerNight, nights, in.DiscountAmount, cfg)
	if err != nil {
		return nil, err
	}

	adults := in.Adults
	if adults <= 0 {
		adults = 1
	}
	children := in.Children
	if children < 0 {
		children = 0
	}
	method := in.PaymentMethod
	if method == "" {
		method = "pay_at_hotel"
	}

	var booking models.Booking
	txErr := s.DB.Transaction(func(tx *gorm.DB) error {
		room, err := s.allocateRoom(tx, in.RoomTypeID)
		if err != nil {
			return err
		}

		roomID := room.ID
		booking = models.Booking{
			RoomTypeID:       in.RoomTypeID,
			RoomID:           &roomID,
			GuestName:        strings.TrimSpace(in.GuestName),
			GuestEmail:       strings.TrimSpace(in.GuestEmail),
			GuestPhone:       strings.TrimSpace(in.GuestPhone),
			CheckIn:          in.CheckIn,
			CheckOut:         in.CheckOut,
			Nights:           nights,
			Adults:           adults,
			Children:         children,
			OriginalAmount:   original.TotalAmount,
			DiscountAmount:   in.DiscountAmount,
			BaseAmount:       charged.BaseAmount,
			GSTAmount:        charged.GSTAmount,
			ServiceTaxAmount: charged.ServiceTaxAmount,
			OtherTaxAmount:   charged.OtherTaxAmount,
			TotalTaxAmount:   charged.TotalTaxAmount,
			TotalAmount:      charged.TotalAmount,
			PromoCodeID:      in.PromoCodeID,
			Status:           models.BookingStatusConfirmed,
			PaymentStatus:    models.PaymentStatusPending,
			PaymentMethod:    method,
		}
		if err := tx.Create(&booking).Error; err != nil {
			return fmt.Errorf("failed to create booking: %w", err)
		}
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}

	// Notification is best-effort; a failure never rolls the booking back.
	if err := s.Notifier.SendBookingConfirmation(&booking); err != nil {
		s.Log.Warnw("booking confirmation notification failed", "booking_id", booking.ID, "error", err)
	}

	if err := s.DB.Preload("Room").Preload("RoomType").First(&booking, booking.ID).Error; err != nil {
		return nil, fmt.Errorf("failed to reload booking: %w", err)
	}
	return &booking, nil
}

// UpdateBookingInput carries the mutable booking fields; nil means unchanged.
type UpdateBookingInput struct {
	Status     *string    `json:"status"`
	CheckIn    *time.Time `json:"checkIn"`
	CheckOut   *time.Time `json:"checkOut"`
	Nights     *int       `json:"nights"`
	RoomTypeID *uint      `json:"roomTypeId"`
}

// UpdateBooking changes status, dates, or room type. Nights or room-type
// changes recompute pricing with the existing discount preserved; cancellation
// frees the room inside the same transaction.
func (s *BookingService) UpdateBooking(id uint, in UpdateBookingInput) (*models.Booking, error) {
	cfg, err := s.Taxes.GetConfig()
	if err != nil {
		return nil, err
	}

	var booking models.Booking
	txErr := s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&booking, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("booking %d: %w", id, apperrors.ErrNotFound)
			}
			return fmt.Errorf("failed to load booking %d: %w", id, err)
		}

		updates := map[string]interface{}{}

		if in.CheckIn != nil {
			booking.CheckIn = *in.CheckIn
			updates["check_in"] = *in.CheckIn
		}
		if in.CheckOut != nil {
			booking.CheckOut = *in.CheckOut
			updates["check_out"] = *in.CheckOut
		}

		nights := booking.Nights
		if in.Nights != nil && *in.Nights > 0 {
			nights = *in.Nights
		} else if in.CheckIn != nil || in.CheckOut != nil {
			nights = nightsBetween(booking.CheckIn, booking.CheckOut, 0)
		}
		nightsChanged := nights != booking.Nights

		roomTypeChanged := in.RoomTypeID != nil && *in.RoomTypeID != booking.RoomTypeID
		if roomTypeChanged {
			var newType models.RoomType
			if err := tx.First(&newType, *in.RoomTypeID).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return fmt.Errorf("room type %d: %w", *in.RoomTypeID, apperrors.ErrNotFound)
				}
				return fmt.Errorf("failed to load room type: %w", err)
			}

			if booking.RoomID != nil {
				if err := freeRoom(tx, *booking.RoomID); err != nil {
					return err
				}
			}
			room, err := s.allocateRoom(tx, newType.ID)
			if err != nil {
				return err
			}
			roomID := room.ID
			booking.RoomTypeID = newType.ID
			booking.RoomID = &roomID
			updates["room_type_id"] = newType.ID
			updates["room_id"] = roomID
		}

		if nightsChanged || roomTypeChanged {
			var roomType models.RoomType
			if err := tx.First(&roomType, booking.RoomTypeID).Error; err != nil {
				return fmt.Errorf("failed to load room type for repricing: %w", err)
			}
			original, charged, err := s.priceBooking(roomType.PricePerNight, nights, booking.DiscountAmount, cfg)
			if err != nil {
				return err
			}
			updates["nights"] = nights
			updates["original_amount"] = original.TotalAmount
			updates["base_amount"] = charged.BaseAmount
			updates["gst_amount"] = charged.GSTAmount
			updates["service_tax_amount"] = charged.ServiceTaxAmount
			updates["other_tax_amount"] = charged.OtherTaxAmount
			updates["total_tax_amount"] = charged.TotalTaxAmount
			updates["total_amount"] = charged.TotalAmount
		}

		if in.Status != nil {
			status := strings.ToLower(strings.TrimSpace(*in.Status))
			if status == "canceled" {
				status = models.BookingStatusCancelled
			}
			updates["status"] = status

			if status == models.BookingStatusCancelled && booking.RoomID != nil {
				if err := freeRoom(tx, *booking.RoomID); err != nil {
					return err
				}
			}
			if status == models.BookingStatusCheckedIn && booking.RoomID != nil {
				if err := tx.Model(&models.Room{}).Where("id = ?", *booking.RoomID).
					Update("status", models.RoomStatusOccupied).Error; err != nil {
					return fmt.Errorf("failed to mark room occupied: %w", err)
				}
			}
			if status == models.BookingStatusCheckedOut && booking.RoomID != nil {
				if err := tx.Model(&models.Room{}).Where("id = ?", *booking.RoomID).
					Updates(map[string]interface{}{
						"status":                models.RoomStatusCleaning,
						"available_for_booking": true,
					}).Error; err != nil {
					return fmt.Errorf("failed to mark room for cleaning: %w", err)
				}
			}
		}

		if len(updates) == 0 {
			return nil
		}
		if err := tx.Model(&booking).Updates(updates).Error; err != nil {
			return fmt.Errorf("failed to update booking: %w", err)
		}

		if nightsChanged || roomTypeChanged {
			return recomputeBookingPaymentStatus(tx, booking.ID)
		}
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}

	if err := s.DB.Preload("Room").Preload("RoomType").First(&booking, id).Error; err != nil {
		return nil, fmt.Errorf("failed to reload booking: %w", err)
	}
	return &booking, nil
}

// DeleteBooking frees the room, deletes every ledger entry referencing the
// booking and its invoices/payments, and removes the booking with its
// dependents in one transaction. Revenue reversal for collected payments runs
// after the commit and is best-effort: a failure is dead-lettered, not
// propagated.
func (s *BookingService) DeleteBooking(id uint, processedBy string) error {
	var paymentsTotal decimal.Decimal

	txErr := s.DB.Transaction(func(tx *gorm.DB) error {
		var booking models.Booking
		if err := tx.Preload("Invoices").Preload("Payments").First(&booking, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("booking %d: %w", id, apperrors.ErrNotFound)
			}
			return fmt.Errorf("failed to load booking %d: %w", id, err)
		}

		if booking.RoomID != nil {
			if err := freeRoom(tx, *booking.RoomID); err != nil {
				return err
			}
		}

		invoiceIDs := make([]uint, 0, len(booking.Invoices))
		for _, inv := range booking.Invoices {
			invoiceIDs = append(invoiceIDs, inv.ID)
		}
		paymentIDs := make([]uint, 0, len(booking.Payments))
		paymentsTotal = decimal.Zero
		for _, p := range booking.Payments {
			paymentIDs = append(paymentIDs, p.ID)
			paymentsTotal = paymentsTotal.Add(p.Amount)
		}

		if err := s.Accounts.DeleteRevenueForBooking(tx, booking.ID, invoiceIDs, paymentIDs); err != nil {
			return err
		}

		if len(invoiceIDs) > 0 {
			if err := tx.Where("invoice_id IN ?", invoiceIDs).Delete(&models.InvoiceItem{}).Error; err != nil {
				return fmt.Errorf("failed to delete invoice items: %w", err)
			}
		}
		if err := tx.Where("booking_id = ?", booking.ID).Delete(&models.Payment{}).Error; err != nil {
			return fmt.Errorf("failed to delete payments: %w", err)
		}
		if err := tx.Where("booking_id = ?", booking.ID).Delete(&models.Invoice{}).Error; err != nil {
			return fmt.Errorf("failed to delete invoices: %w", err)
		}
		if err := tx.Delete(&booking).Error; err != nil {
			return fmt.Errorf("failed to delete booking: %w", err)
		}
		return nil
	})
	if txErr != nil {
		return txErr
	}

	if paymentsTotal.GreaterThan(decimal.Zero) {
		err := s.Accounts.OnPaymentReversed(id, paymentsTotal, "booking deleted", processedBy)
		if err != nil {
			writeDeadLetter(s.DB, s.Log, models.DeadLetterLedgerPosting, models.RefTypeBooking, id,
				map[string]interface{}{"amount": paymentsTotal}, err)
		}
	}
	return nil
}

// GetBooking loads one booking with its room, invoices, and payments.
func (s *BookingService) GetBooking(id uint) (*models.Booking, error) {
	var booking models.Booking
	err := s.DB.Preload("Room").Preload("RoomType").
		Preload("Invoices.Items").Preload("Payments").
		First(&booking, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("booking %d: %w", id, apperrors.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to load booking %d: %w", id, err)
	}
	return &booking, nil
}

// ListBookings returns bookings newest first, optionally filtered by status and
// with invoices nested.
func (s *BookingService) ListBookings(status string, withInvoices bool) ([]models.Booking, error) {
	q := s.DB.Preload("Room").Preload("RoomType").Order("created_at DESC")
	if status != "" {
		q = q.Where("status = ?", status)
	}
	if withInvoices {
		q = q.Preload("Invoices.Items").Preload("Payments")
	}

	var bookings []models.Booking
	if err := q.Find(&bookings).Error; err != nil {
		return nil, fmt.Errorf("failed to list bookings: %w", err)
	}
	return bookings, nil
}
