package services

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"hoteldesk-backend/apperrors"
	"hoteldesk-backend/models"
)

// paymentEpsilon is the tolerance under which a payment amount change is
// treated as a no-op for ledger purposes.
var paymentEpsilon = decimal.NewFromFloat(0.01)

// PaymentService amends and reverses recorded payments, keeping the booking's
// aggregate payment status and the account ledger consistent with what was
// actually collected.
type PaymentService struct {
	DB       *gorm.DB
	Accounts *AccountService
	Log      *zap.SugaredLogger
}

func NewPaymentService(db *gorm.DB, accounts *AccountService, log *zap.SugaredLogger) *PaymentService {
	return &PaymentService{DB: db, Accounts: accounts, Log: log}
}

// derivePaymentStatus maps collected-vs-total to the booking payment status.
// A zero-total booking counts as paid; it has nothing left to collect.
func derivePaymentStatus(total, paid decimal.Decimal) string {
	switch {
	case paid.GreaterThanOrEqual(total):
		return models.PaymentStatusPaid
	case paid.GreaterThan(decimal.Zero):
		return models.PaymentStatusPartiallyPaid
	default:
		return models.PaymentStatusPending
	}
}

// recomputeBookingPaymentStatus re-derives paymentStatus from the booking's
// remaining payments on the given tx.
func recomputeBookingPaymentStatus(tx *gorm.DB, bookingID uint) error {
	var booking models.Booking
	if err := tx.First(&booking, bookingID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("booking %d: %w", bookingID, apperrors.ErrNotFound)
		}
		return fmt.Errorf("failed to load booking %d: %w", bookingID, err)
	}

	paid, err := sumPayments(tx, bookingID)
	if err != nil {
		return err
	}

	status := derivePaymentStatus(booking.TotalAmount, paid)
	if status == booking.PaymentStatus {
		return nil
	}
	if err := tx.Model(&booking).Update("payment_status", status).Error; err != nil {
		return fmt.Errorf("failed to update payment status: %w", err)
	}
	return nil
}

func sumPayments(tx *gorm.DB, bookingID uint) (decimal.Decimal, error) {
	type row struct{ Total decimal.Decimal }
	var r row
	err := tx.Model(&models.Payment{}).
		Select("COALESCE(SUM(amount), 0) AS total").
		Where("booking_id = ?", bookingID).
		Scan(&r).Error
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to sum payments: %w", err)
	}
	return r.Total, nil
}

// GetPayments lists payments for a booking (or all when bookingID is zero).
func (s *PaymentService) GetPayments(bookingID uint) ([]models.Payment, error) {
	q := s.DB.Order("created_at DESC")
	if bookingID != 0 {
		q = q.Where("booking_id = ?", bookingID)
	}
	var payments []models.Payment
	if err := q.Find(&payments).Error; err != nil {
		return nil, fmt.Errorf("failed to list payments: %w", err)
	}
	return payments, nil
}

// UpdatePayment amends a payment's amount or method. When the amount moves by
// more than the epsilon, the difference is posted to the ledger and an audit
// entry records the original amount and reason.
func (s *PaymentService) UpdatePayment(id uint, newAmount decimal.Decimal, method, reason, processedBy string) (*models.Payment, error) {
	if newAmount.IsNegative() {
		return nil, fmt.Errorf("payment amount %s: %w", newAmount, apperrors.ErrInvalidAmount)
	}

	var payment models.Payment
	var delta decimal.Decimal

	err := s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&payment, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("payment %d: %w", id, apperrors.ErrNotFound)
			}
			return fmt.Errorf("failed to load payment %d: %w", id, err)
		}

		original := payment.Amount
		delta = newAmount.Sub(original)

		updates := map[string]interface{}{"amount": newAmount}
		if method != "" {
			updates["method"] = method
		}
		if err := tx.Model(&payment).Updates(updates).Error; err != nil {
			return fmt.Errorf("failed to update payment: %w", err)
		}

		if err := recomputeBookingPaymentStatus(tx, payment.BookingID); err != nil {
			return err
		}

		if delta.Abs().GreaterThan(paymentEpsilon) {
			account, err := s.Accounts.mainAccount(tx, true)
			if err != nil {
				return err
			}
			if err := s.Accounts.RecordAudit(tx, account.ID, models.TxCategoryAccommodation,
				newAmount, &original, reason, models.RefTypePayment, payment.ID, processedBy); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	// Ledger posting happens after the primary commit; a failure here is
	// dead-lettered rather than un-doing the amendment.
	if delta.Abs().GreaterThan(paymentEpsilon) {
		var postErr error
		if delta.GreaterThan(decimal.Zero) {
			postErr = s.Accounts.OnPaymentCompleted(payment.BookingID, delta, processedBy)
		} else {
			postErr = s.Accounts.OnPaymentReversed(payment.BookingID, delta.Abs(), reason, processedBy)
		}
		if postErr != nil {
			writeDeadLetter(s.DB, s.Log, models.DeadLetterLedgerPosting, models.RefTypePayment, payment.ID,
				map[string]interface{}{"bookingId": payment.BookingID, "delta": delta}, postErr)
		}
	}

	return &payment, nil
}

// DeletePayment removes a payment, reverses its full amount in the ledger, and
// re-derives the booking payment status.
func (s *PaymentService) DeletePayment(id uint, reason, processedBy string) error {
	var payment models.Payment

	err := s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&payment, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("payment %d: %w", id, apperrors.ErrNotFound)
			}
			return fmt.Errorf("failed to load payment %d: %w", id, err)
		}

		if err := tx.Delete(&payment).Error; err != nil {
			return fmt.Errorf("failed to delete payment: %w", err)
		}
		if err := recomputeBookingPaymentStatus(tx, payment.BookingID); err != nil {
			return err
		}

		account, err := s.Accounts.mainAccount(tx, true)
		if err != nil {
			return err
		}
		original := payment.Amount
		return s.Accounts.RecordAudit(tx, account.ID, models.TxCategoryRefunds,
			payment.Amount, &original, reason, models.RefTypePayment, payment.ID, processedBy)
	})
	if err != nil {
		return err
	}

	if payment.Amount.GreaterThan(decimal.Zero) {
		if postErr := s.Accounts.OnPaymentReversed(payment.BookingID, payment.Amount, reason, processedBy); postErr != nil {
			writeDeadLetter(s.DB, s.Log, models.DeadLetterLedgerPosting, models.RefTypePayment, payment.ID,
				map[string]interface{}{"bookingId": payment.BookingID, "amount": payment.Amount}, postErr)
		}
	}
	return nil
}
