package services

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	qrcode "github.com/skip2/go-qrcode"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"hoteldesk-backend/apperrors"
	"hoteldesk-backend/models"
	"hoteldesk-backend/utils"
)

const (
	// roomStayGSTRate is the fixed GST convention for the room-stay invoice line.
	roomStayGSTRate = 18

	invoiceNumberAttempts = 5

	// invoiceTxTimeout bounds the multi-write invoice transaction.
	invoiceTxTimeout = 15 * time.Second

	// duplicatePaymentWindow is how far back the field-matched duplicate check looks.
	duplicatePaymentWindow = 5 * time.Minute
)

// InvoiceService generates invoices with itemized breakdowns and optional
// already-paid payments, and reverses their revenue on delete.
type InvoiceService struct {
	DB       *gorm.DB
	Accounts *AccountService
	Notifier *NotificationService
	Log      *zap.SugaredLogger
}

func NewInvoiceService(db *gorm.DB, accounts *AccountService, notifier *NotificationService, log *zap.SugaredLogger) *InvoiceService {
	return &InvoiceService{DB: db, Accounts: accounts, Notifier: notifier, Log: log}
}

// ExtraChargeInput is one extra-charge line supplied by the caller.
type ExtraChargeInput struct {
	Description string          `json:"description"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unitPrice"`
	Discount    decimal.Decimal `json:"discount"`
	TaxRate     decimal.Decimal `json:"taxRate"`
}

// PaymentInfoInput describes the payment to record when the invoice is created
// already paid.
type PaymentInfoInput struct {
	Amount         decimal.Decimal `json:"amount"`
	Method         string          `json:"method"`
	Reference      string          `json:"reference"`
	ReceivedBy     string          `json:"receivedBy"`
	IdempotencyKey *string         `json:"idempotencyKey"`
}

// CreateInvoiceInput carries everything needed to create an invoice.
type CreateInvoiceInput struct {
	BookingID      uint               `json:"bookingId"`
	BaseAmount     decimal.Decimal    `json:"baseAmount"`
	DiscountAmount decimal.Decimal    `json:"discountAmount"`
	Items          []ExtraChargeInput `json:"items"`
	Status         string             `json:"status"`
	DueDate        *time.Time         `json:"dueDate"`
	PaymentInfo    *PaymentInfoInput  `json:"paymentInfo"`
}

func newInvoiceNumber() (string, error) {
	digits, err := utils.RandomDigits(6)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("INV-%s-%s", time.Now().Format("200601"), digits), nil
}

// qrPayload renders the invoice number as a base64 PNG data URI.
func qrPayload(invoiceNumber string) (string, error) {
	png, err := qrcode.Encode(invoiceNumber, qrcode.Medium, 256)
	if err != nil {
		return "", fmt.Errorf("failed to encode qr: %w", err)
	}
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(png), nil
}

// isDuplicateKeyError detects unique-key violations. MySQL reports error 1062;
// other drivers fall through to the message check.
func isDuplicateKeyError(err error) bool {
	if err == nil {
		return false
	}
	var merr *mysql.MySQLError
	if errors.As(err, &merr) {
		return merr.Number == 1062
	}
	lc := strings.ToLower(err.Error())
	return strings.Contains(lc, "duplicate") || strings.Contains(lc, "unique") || strings.Contains(lc, "constraint")
}

func percentOf(base, rate decimal.Decimal) decimal.Decimal {
	return base.Mul(rate).Div(hundred).Round(2)
}

// CreateInvoice builds the invoice, its room-stay line, and one line per extra
// charge in a single transaction. When the invoice is created paid with payment
// info, the payment is recorded unless an identical one already exists. Revenue
// posting and notification run after the commit and are best-effort.
func (s *InvoiceService) CreateInvoice(in CreateInvoiceInput) (*models.Invoice, error) {
	if in.BaseAmount.IsNegative() || in.DiscountAmount.IsNegative() {
		return nil, fmt.Errorf("amounts must not be negative: %w", apperrors.ErrInvalidAmount)
	}

	var booking models.Booking
	if err := s.DB.First(&booking, in.BookingID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("booking %d: %w", in.BookingID, apperrors.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to load booking %d: %w", in.BookingID, err)
	}

	nights := booking.Nights
	if nights <= 0 {
		nights = 1
	}
	status := in.Status
	if status == "" {
		status = models.InvoiceStatusPending
	}

	var invoice models.Invoice
	var paymentRecorded bool
	var createErr error

	// The invoice transaction performs several sequential writes; give it a
	// longer deadline than ordinary requests.
	ctx, cancel := context.WithTimeout(context.Background(), invoiceTxTimeout)
	defer cancel()

	for attempt := 0; attempt < invoiceNumberAttempts; attempt++ {
		number, err := newInvoiceNumber()
		if err != nil {
			return nil, fmt.Errorf("failed to generate invoice number: %w", err)
		}
		qr, err := qrPayload(number)
		if err != nil {
			return nil, err
		}

		createErr = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			rate := decimal.NewFromInt(roomStayGSTRate)
			roomBase := in.BaseAmount.Sub(in.DiscountAmount)
			if roomBase.IsNegative() {
				return fmt.Errorf("discount exceeds base amount: %w", apperrors.ErrValidation)
			}
			roomTax := percentOf(roomBase, rate)

			items := []models.InvoiceItem{{
				ItemType:    models.InvoiceItemRoomStay,
				Description: fmt.Sprintf("Room stay, %d night(s)", nights),
				Quantity:    nights,
				UnitPrice:   in.BaseAmount.Div(decimal.NewFromInt(int64(nights))).Round(2),
				Discount:    in.DiscountAmount,
				TaxRate:     rate,
				TaxAmount:   roomTax,
				FinalAmount: roomBase.Add(roomTax),
			}}

			for _, extra := range in.Items {
				qty := extra.Quantity
				if qty <= 0 {
					qty = 1
				}
				lineBase := extra.UnitPrice.Mul(decimal.NewFromInt(int64(qty))).Sub(extra.Discount)
				if lineBase.IsNegative() {
					return fmt.Errorf("extra charge %q discount exceeds line total: %w", extra.Description, apperrors.ErrValidation)
				}
				lineTax := percentOf(lineBase, extra.TaxRate)
				items = append(items, models.InvoiceItem{
					ItemType:    models.InvoiceItemExtraCharge,
					Description: extra.Description,
					Quantity:    qty,
					UnitPrice:   extra.UnitPrice,
					Discount:    extra.Discount,
					TaxRate:     extra.TaxRate,
					TaxAmount:   lineTax,
					FinalAmount: lineBase.Add(lineTax),
				})
			}

			taxTotal := decimal.Zero
			grandTotal := decimal.Zero
			for _, it := range items {
				taxTotal = taxTotal.Add(it.TaxAmount)
				grandTotal = grandTotal.Add(it.FinalAmount)
			}

			invoice = models.Invoice{
				BookingID:      booking.ID,
				InvoiceNumber:  number,
				QRCode:         qr,
				Status:         status,
				DueDate:        in.DueDate,
				BaseAmount:     in.BaseAmount,
				DiscountAmount: in.DiscountAmount,
				TaxAmount:      taxTotal,
				TotalAmount:    grandTotal,
				Items:          items,
			}
			if err := tx.Create(&invoice).Error; err != nil {
				return fmt.Errorf("failed to create invoice: %w", err)
			}

			if status == models.InvoiceStatusPaid && in.PaymentInfo != nil {
				recorded, err := s.recordPaidPayment(tx, &booking, &invoice, in.PaymentInfo)
				if err != nil {
					return err
				}
				paymentRecorded = recorded
				if err := recomputeBookingPaymentStatus(tx, booking.ID); err != nil {
					return err
				}
			}
			return nil
		})

		if createErr == nil {
			break
		}
		if isDuplicateKeyError(createErr) {
			s.Log.Infow("invoice number collision, retrying", "attempt", attempt+1)
			continue
		}
		return nil, createErr
	}
	if createErr != nil {
		return nil, fmt.Errorf("failed to create invoice after retries: %w", createErr)
	}

	// Post-commit side effects favor invoice durability over ledger
	// consistency: a posting failure is dead-lettered, never propagated.
	// A skipped duplicate payment posts no revenue.
	if paymentRecorded {
		breakdown := RevenueBreakdown{
			Accommodation: in.BaseAmount.Sub(in.DiscountAmount),
			ExtraCharges:  invoice.TotalAmount.Sub(invoice.TaxAmount).Sub(in.BaseAmount.Sub(in.DiscountAmount)),
			Taxes:         invoice.TaxAmount,
		}
		err := s.Accounts.AddRevenueToMainAccount(booking.ID, in.PaymentInfo.Amount, breakdown,
			in.PaymentInfo.Method, in.PaymentInfo.ReceivedBy,
			fmt.Sprintf("invoice %s paid", invoice.InvoiceNumber))
		if err != nil {
			writeDeadLetter(s.DB, s.Log, models.DeadLetterLedgerPosting, models.RefTypeInvoice, invoice.ID,
				map[string]interface{}{"bookingId": booking.ID, "amount": in.PaymentInfo.Amount}, err)
		}
	}
	if err := s.Notifier.SendInvoiceIssued(&invoice, booking.GuestEmail); err != nil {
		s.Log.Warnw("invoice notification failed", "invoice_id", invoice.ID, "error", err)
	}

	return &invoice, nil
}

// recordPaidPayment creates the payment unless an identical one already exists,
// reporting whether a new payment was written. An explicit idempotency key wins
// over the time-windowed field match.
func (s *InvoiceService) recordPaidPayment(tx *gorm.DB, booking *models.Booking, invoice *models.Invoice, info *PaymentInfoInput) (bool, error) {
	var existing models.Payment
	var err error

	if info.IdempotencyKey != nil && *info.IdempotencyKey != "" {
		err = tx.Where("idempotency_key = ?", *info.IdempotencyKey).First(&existing).Error
	} else {
		since := time.Now().Add(-duplicatePaymentWindow)
		err = tx.Where("booking_id = ? AND amount = ? AND method = ? AND created_at >= ?",
			booking.ID, info.Amount, info.Method, since).First(&existing).Error
	}
	if err == nil {
		s.Log.Infow("skipping duplicate payment", "booking_id", booking.ID, "payment_id", existing.ID)
		return false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return false, fmt.Errorf("failed to check for duplicate payment: %w", err)
	}

	reference := info.Reference
	if reference == "" {
		reference = uuid.NewString()
	}

	invoiceID := invoice.ID
	payment := models.Payment{
		BookingID:      booking.ID,
		InvoiceID:      &invoiceID,
		Amount:         info.Amount,
		Method:         info.Method,
		Reference:      reference,
		ReceivedBy:     info.ReceivedBy,
		Status:         "completed",
		IdempotencyKey: info.IdempotencyKey,
	}
	if err := tx.Create(&payment).Error; err != nil {
		return false, fmt.Errorf("failed to create payment: %w", err)
	}
	return true, nil
}

// GetInvoice loads one invoice with its items and payments.
func (s *InvoiceService) GetInvoice(id uint) (*models.Invoice, error) {
	var invoice models.Invoice
	err := s.DB.Preload("Items").Preload("Payments").First(&invoice, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("invoice %d: %w", id, apperrors.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to load invoice %d: %w", id, err)
	}
	return &invoice, nil
}

// ListInvoices returns invoices newest first, optionally for one booking.
func (s *InvoiceService) ListInvoices(bookingID uint) ([]models.Invoice, error) {
	q := s.DB.Preload("Items").Order("created_at DESC")
	if bookingID != 0 {
		q = q.Where("booking_id = ?", bookingID)
	}
	var invoices []models.Invoice
	if err := q.Find(&invoices).Error; err != nil {
		return nil, fmt.Errorf("failed to list invoices: %w", err)
	}
	return invoices, nil
}

// DeleteInvoice removes the invoice with its items and payments, deletes the
// parent booking's revenue transactions, re-derives the booking payment status,
// and writes a refunds audit entry. The ledger reversal for collected payments
// runs post-commit, best-effort.
func (s *InvoiceService) DeleteInvoice(id uint, reason, processedBy string) error {
	var invoice models.Invoice
	var paymentsTotal decimal.Decimal

	txErr := s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Preload("Payments").First(&invoice, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("invoice %d: %w", id, apperrors.ErrNotFound)
			}
			return fmt.Errorf("failed to load invoice %d: %w", id, err)
		}

		paymentIDs := make([]uint, 0, len(invoice.Payments))
		paymentsTotal = decimal.Zero
		for _, p := range invoice.Payments {
			paymentIDs = append(paymentIDs, p.ID)
			paymentsTotal = paymentsTotal.Add(p.Amount)
		}

		if err := s.Accounts.DeleteRevenueForBooking(tx, invoice.BookingID, []uint{invoice.ID}, paymentIDs); err != nil {
			return err
		}

		if err := tx.Where("invoice_id = ?", invoice.ID).Delete(&models.InvoiceItem{}).Error; err != nil {
			return fmt.Errorf("failed to delete invoice items: %w", err)
		}
		if err := tx.Where("invoice_id = ?", invoice.ID).Delete(&models.Payment{}).Error; err != nil {
			return fmt.Errorf("failed to delete payments: %w", err)
		}
		if err := tx.Delete(&invoice).Error; err != nil {
			return fmt.Errorf("failed to delete invoice: %w", err)
		}

		if err := recomputeBookingPaymentStatus(tx, invoice.BookingID); err != nil {
			return err
		}

		if paymentsTotal.GreaterThan(decimal.Zero) {
			account, err := s.Accounts.mainAccount(tx, true)
			if err != nil {
				return err
			}
			original := paymentsTotal
			if err := s.Accounts.RecordAudit(tx, account.ID, models.TxCategoryRefunds,
				paymentsTotal, &original, reason, models.RefTypeInvoice, invoice.ID, processedBy); err != nil {
				return err
			}
		}
		return nil
	})
	if txErr != nil {
		return txErr
	}

	if paymentsTotal.GreaterThan(decimal.Zero) {
		err := s.Accounts.OnPaymentReversed(invoice.BookingID, paymentsTotal, reason, processedBy)
		if err != nil {
			writeDeadLetter(s.DB, s.Log, models.DeadLetterLedgerPosting, models.RefTypeInvoice, invoice.ID,
				map[string]interface{}{"bookingId": invoice.BookingID, "amount": paymentsTotal}, err)
		}
	}
	return nil
}
