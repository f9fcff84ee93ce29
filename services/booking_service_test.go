package services

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"hoteldesk-backend/apperrors"
	"hoteldesk-backend/models"
)

func newBookingService(t *testing.T, db *gorm.DB) *BookingService {
	t.Helper()
	log := testLogger()
	accounts := NewAccountService(db, log)
	notifier := NewNotificationService(db, log)
	return NewBookingService(db, NewTaxService(db), accounts, notifier, log)
}

func validBookingInput(roomTypeID uint) CreateBookingInput {
	return CreateBookingInput{
		RoomTypeID: roomTypeID,
		CheckIn:    time.Date(2026, 9, 1, 14, 0, 0, 0, time.UTC),
		CheckOut:   time.Date(2026, 9, 3, 11, 0, 0, 0, time.UTC),
		Nights:     2,
		Adults:     2,
		GuestName:  "Asha Verma",
		GuestEmail: "asha@example.com",
		GuestPhone: "+91-9000000001",
	}
}

func TestCreateBookingPricing(t *testing.T) {
	db := newTestDB(t)
	seedGSTOnly(t, db, 18)
	roomType := seedRoomType(t, db, "Standard", 1000, "101", "102")
	svc := newBookingService(t, db)

	booking, err := svc.CreateBooking(validBookingInput(roomType.ID))
	require.NoError(t, err)

	// 1000/night x 2 nights at 18% GST.
	decEq(t, "2000", booking.BaseAmount)
	decEq(t, "360", booking.GSTAmount)
	decEq(t, "2360", booking.TotalAmount)
	require.Equal(t, models.BookingStatusConfirmed, booking.Status)
	require.Equal(t, models.PaymentStatusPending, booking.PaymentStatus)
	require.Equal(t, 2, booking.Nights)
}

func TestCreateBookingAllocatesLowestRoomFirst(t *testing.T) {
	db := newTestDB(t)
	seedGSTOnly(t, db, 18)
	roomType := seedRoomType(t, db, "Standard", 1000, "102", "101", "103")
	svc := newBookingService(t, db)

	first, err := svc.CreateBooking(validBookingInput(roomType.ID))
	require.NoError(t, err)
	require.Equal(t, "101", first.Room.RoomNumber)

	second, err := svc.CreateBooking(validBookingInput(roomType.ID))
	require.NoError(t, err)
	require.Equal(t, "102", second.Room.RoomNumber)
	require.NotEqual(t, *first.RoomID, *second.RoomID)
}

func TestCreateBookingNoAvailability(t *testing.T) {
	db := newTestDB(t)
	seedGSTOnly(t, db, 18)
	roomType := seedRoomType(t, db, "Suite", 5000, "301")
	svc := newBookingService(t, db)

	_, err := svc.CreateBooking(validBookingInput(roomType.ID))
	require.NoError(t, err)

	_, err = svc.CreateBooking(validBookingInput(roomType.ID))
	require.ErrorIs(t, err, apperrors.ErrNoAvailability)

	// The failed attempt must not leave any booking behind.
	var count int64
	require.NoError(t, db.Model(&models.Booking{}).Count(&count).Error)
	require.EqualValues(t, 1, count)
}

func TestCreateBookingConcurrentSingleRoom(t *testing.T) {
	db := newConcurrentTestDB(t)
	seedGSTOnly(t, db, 18)
	roomType := seedRoomType(t, db, "Suite", 5000, "301")
	svc := newBookingService(t, db)

	const attempts = 8
	results := make([]error, attempts)

	var wg sync.WaitGroup
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, results[i] = svc.CreateBooking(validBookingInput(roomType.ID))
		}(i)
	}
	wg.Wait()

	// Exactly one attempt wins the room; the rest fail cleanly.
	var successes int
	for _, err := range results {
		if err == nil {
			successes++
			continue
		}
		require.True(t, errors.Is(err, apperrors.ErrNoAvailability), "unexpected error: %v", err)
	}
	require.Equal(t, 1, successes)

	var bookingCount int64
	require.NoError(t, db.Model(&models.Booking{}).Count(&bookingCount).Error)
	require.EqualValues(t, 1, bookingCount)
}

func TestCreateBookingValidation(t *testing.T) {
	db := newTestDB(t)
	seedGSTOnly(t, db, 18)
	roomType := seedRoomType(t, db, "Standard", 1000, "101")
	svc := newBookingService(t, db)

	in := validBookingInput(roomType.ID)
	in.GuestName = ""
	in.GuestPhone = ""
	_, err := svc.CreateBooking(in)
	require.ErrorIs(t, err, apperrors.ErrValidation)
	require.Contains(t, err.Error(), "guestName")
	require.Contains(t, err.Error(), "guestPhone")
}

func TestCreateBookingDiscountExceedsBase(t *testing.T) {
	db := newTestDB(t)
	seedGSTOnly(t, db, 18)
	roomType := seedRoomType(t, db, "Standard", 1000, "101")
	svc := newBookingService(t, db)

	in := validBookingInput(roomType.ID)
	in.DiscountAmount = decimal.NewFromInt(5000)
	_, err := svc.CreateBooking(in)
	require.ErrorIs(t, err, apperrors.ErrValidation)
}

func TestCancelBookingFreesRoom(t *testing.T) {
	db := newTestDB(t)
	seedGSTOnly(t, db, 18)
	roomType := seedRoomType(t, db, "Suite", 5000, "301")
	svc := newBookingService(t, db)

	booking, err := svc.CreateBooking(validBookingInput(roomType.ID))
	require.NoError(t, err)

	status := "canceled" // the US spelling is normalized too
	_, err = svc.UpdateBooking(booking.ID, UpdateBookingInput{Status: &status})
	require.NoError(t, err)

	var room models.Room
	require.NoError(t, db.First(&room, *booking.RoomID).Error)
	require.Equal(t, models.RoomStatusAvailable, room.Status)
	require.True(t, room.AvailableForBooking)

	// The freed room can be booked again.
	_, err = svc.CreateBooking(validBookingInput(roomType.ID))
	require.NoError(t, err)
}

func TestUpdateBookingNightsReprices(t *testing.T) {
	db := newTestDB(t)
	seedGSTOnly(t, db, 18)
	roomType := seedRoomType(t, db, "Standard", 1000, "101")
	svc := newBookingService(t, db)

	booking, err := svc.CreateBooking(validBookingInput(roomType.ID))
	require.NoError(t, err)

	nights := 3
	updated, err := svc.UpdateBooking(booking.ID, UpdateBookingInput{Nights: &nights})
	require.NoError(t, err)
	decEq(t, "3000", updated.BaseAmount)
	decEq(t, "3540", updated.TotalAmount)
}

func TestCheckInAndCheckOutRoomStatus(t *testing.T) {
	db := newTestDB(t)
	seedGSTOnly(t, db, 18)
	roomType := seedRoomType(t, db, "Standard", 1000, "101")
	svc := newBookingService(t, db)

	booking, err := svc.CreateBooking(validBookingInput(roomType.ID))
	require.NoError(t, err)

	checkedIn := models.BookingStatusCheckedIn
	_, err = svc.UpdateBooking(booking.ID, UpdateBookingInput{Status: &checkedIn})
	require.NoError(t, err)

	var room models.Room
	require.NoError(t, db.First(&room, *booking.RoomID).Error)
	require.Equal(t, models.RoomStatusOccupied, room.Status)

	checkedOut := models.BookingStatusCheckedOut
	_, err = svc.UpdateBooking(booking.ID, UpdateBookingInput{Status: &checkedOut})
	require.NoError(t, err)

	require.NoError(t, db.First(&room, *booking.RoomID).Error)
	require.Equal(t, models.RoomStatusCleaning, room.Status)
	require.True(t, room.AvailableForBooking)
}

func TestDeleteBookingCascades(t *testing.T) {
	db := newTestDB(t)
	seedGSTOnly(t, db, 18)
	roomType := seedRoomType(t, db, "Standard", 1000, "101")
	svc := newBookingService(t, db)

	booking, err := svc.CreateBooking(validBookingInput(roomType.ID))
	require.NoError(t, err)

	payment := models.Payment{
		BookingID: booking.ID,
		Amount:    decimal.NewFromInt(2360),
		Method:    models.PaymentMethodCash,
		Status:    "completed",
	}
	require.NoError(t, db.Create(&payment).Error)

	require.NoError(t, svc.DeleteBooking(booking.ID, "tester"))

	var bookingCount, paymentCount int64
	require.NoError(t, db.Model(&models.Booking{}).Count(&bookingCount).Error)
	require.NoError(t, db.Model(&models.Payment{}).Count(&paymentCount).Error)
	require.Zero(t, bookingCount)
	require.Zero(t, paymentCount)

	var room models.Room
	require.NoError(t, db.First(&room, *booking.RoomID).Error)
	require.Equal(t, models.RoomStatusAvailable, room.Status)

	// Collected money is reversed in the ledger after deletion.
	var reversal models.Transaction
	require.NoError(t, db.Where("type = ? AND category = ?",
		models.TxDebit, models.TxCategoryRefunds).First(&reversal).Error)
	decEq(t, "2360", reversal.Amount)
}

func TestDeleteBookingReversesCollectedRevenueOnce(t *testing.T) {
	db := newTestDB(t)
	seedGSTOnly(t, db, 18)
	roomType := seedRoomType(t, db, "Standard", 1000, "101")

	log := testLogger()
	accounts := NewAccountService(db, log)
	svc := NewBookingService(db, NewTaxService(db), accounts, NewNotificationService(db, log), log)

	booking, err := svc.CreateBooking(validBookingInput(roomType.ID))
	require.NoError(t, err)

	require.NoError(t, db.Create(&models.Payment{
		BookingID: booking.ID,
		Amount:    decimal.NewFromInt(2360),
		Method:    models.PaymentMethodCash,
		Status:    "completed",
	}).Error)
	require.NoError(t, accounts.OnPaymentCompleted(booking.ID, decimal.NewFromInt(2360), "front desk"))

	account, err := accounts.GetMainAccount()
	require.NoError(t, err)
	decEq(t, "2360", account.Balance)

	require.NoError(t, svc.DeleteBooking(booking.ID, "tester"))

	// The balance drops by exactly the collected total: the revenue rows are
	// deleted without touching the balance, then one reversal debits 2360.
	require.NoError(t, db.First(account, account.ID).Error)
	decEq(t, "0", account.Balance)

	var debits []models.Transaction
	require.NoError(t, db.Where("type = ? AND is_modification = ?",
		models.TxDebit, false).Find(&debits).Error)
	require.Len(t, debits, 1)
	decEq(t, "2360", debits[0].Amount)
}

func TestDeleteBookingNotFound(t *testing.T) {
	db := newTestDB(t)
	seedGSTOnly(t, db, 18)
	svc := newBookingService(t, db)

	err := svc.DeleteBooking(9999, "tester")
	require.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestListBookingsFilterAndNesting(t *testing.T) {
	db := newTestDB(t)
	seedGSTOnly(t, db, 18)
	roomType := seedRoomType(t, db, "Standard", 1000, "101", "102")
	svc := newBookingService(t, db)

	first, err := svc.CreateBooking(validBookingInput(roomType.ID))
	require.NoError(t, err)
	_, err = svc.CreateBooking(validBookingInput(roomType.ID))
	require.NoError(t, err)

	cancelled := models.BookingStatusCancelled
	_, err = svc.UpdateBooking(first.ID, UpdateBookingInput{Status: &cancelled})
	require.NoError(t, err)

	confirmed, err := svc.ListBookings(models.BookingStatusConfirmed, false)
	require.NoError(t, err)
	require.Len(t, confirmed, 1)

	all, err := svc.ListBookings("", true)
	require.NoError(t, err)
	require.Len(t, all, 2)
}
