package services

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"hoteldesk-backend/apperrors"
	"hoteldesk-backend/models"
)

func TestMainAccountBootstrap(t *testing.T) {
	db := newTestDB(t)
	svc := NewAccountService(db, testLogger())

	_, err := svc.GetMainAccount()
	require.ErrorIs(t, err, apperrors.ErrNotFound)

	account, err := svc.GetOrCreateMainAccount()
	require.NoError(t, err)
	require.True(t, account.IsMainAccount)
	require.True(t, account.Balance.IsZero())

	again, err := svc.GetOrCreateMainAccount()
	require.NoError(t, err)
	require.Equal(t, account.ID, again.ID)
}

func TestMainAccountRejectsMultiple(t *testing.T) {
	db := newTestDB(t)
	svc := NewAccountService(db, testLogger())

	for i := 0; i < 2; i++ {
		require.NoError(t, db.Create(&models.BankAccount{
			AccountName:   "dup",
			IsMainAccount: true,
			IsActive:      true,
		}).Error)
	}

	_, err := svc.GetMainAccount()
	require.ErrorIs(t, err, apperrors.ErrMultipleMainAccounts)
}

func TestAddRevenuePicksDominantCategory(t *testing.T) {
	db := newTestDB(t)
	svc := NewAccountService(db, testLogger())

	err := svc.AddRevenueToMainAccount(1, decimal.NewFromInt(2360), RevenueBreakdown{
		Accommodation: decimal.NewFromInt(2000),
		ExtraCharges:  decimal.Zero,
		Taxes:         decimal.NewFromInt(360),
	}, models.PaymentMethodCash, "front desk", "invoice paid")
	require.NoError(t, err)

	var entry models.Transaction
	require.NoError(t, db.First(&entry).Error)
	require.Equal(t, models.TxCredit, entry.Type)
	require.Equal(t, models.TxCategoryAccommodation, entry.Category)
	decEq(t, "2360", entry.Amount)

	account, err := svc.GetMainAccount()
	require.NoError(t, err)
	decEq(t, "2360", account.Balance)
}

func TestAddRevenueRejectsNegative(t *testing.T) {
	db := newTestDB(t)
	svc := NewAccountService(db, testLogger())

	err := svc.AddRevenueToMainAccount(1, decimal.NewFromInt(-10), RevenueBreakdown{},
		models.PaymentMethodCash, "x", "bad")
	require.ErrorIs(t, err, apperrors.ErrInvalidAmount)
}

func TestDeductExpenseMovesBothBalances(t *testing.T) {
	db := newTestDB(t)
	svc := NewAccountService(db, testLogger())

	user := models.User{FullName: "Ravi Staff", Email: "ravi@example.com", Role: models.RoleStaff, IsActive: true}
	require.NoError(t, db.Create(&user).Error)

	main, err := svc.GetOrCreateMainAccount()
	require.NoError(t, err)
	require.NoError(t, svc.postTransaction(db, &models.Transaction{
		AccountID: main.ID, Type: models.TxCredit,
		Category: models.TxCategoryAccommodation, Amount: decimal.NewFromInt(5000),
	}))

	userAccount, err := svc.GetOrCreateUserAccount(db, user)
	require.NoError(t, err)
	require.NoError(t, svc.postTransaction(db, &models.Transaction{
		AccountID: userAccount.ID, Type: models.TxCredit,
		Category: models.TxCategoryAccommodation, Amount: decimal.NewFromInt(1000),
	}))

	expense := models.Expense{UserID: user.ID, Amount: decimal.NewFromInt(400), Status: models.ExpenseStatusApproved}
	require.NoError(t, db.Create(&expense).Error)
	require.NoError(t, svc.DeductExpense(db, &expense, user))

	require.NoError(t, db.First(userAccount, userAccount.ID).Error)
	decEq(t, "600", userAccount.Balance)

	require.NoError(t, db.First(main, main.ID).Error)
	decEq(t, "4600", main.Balance)

	drifted, err := svc.Reconcile()
	require.NoError(t, err)
	require.Empty(t, drifted)
}

func TestDeductExpenseInsufficientBalance(t *testing.T) {
	db := newTestDB(t)
	svc := NewAccountService(db, testLogger())

	user := models.User{FullName: "Ravi Staff", Email: "ravi@example.com", Role: models.RoleStaff, IsActive: true}
	require.NoError(t, db.Create(&user).Error)
	_, err := svc.GetOrCreateMainAccount()
	require.NoError(t, err)

	expense := models.Expense{UserID: user.ID, Amount: decimal.NewFromInt(400)}
	require.NoError(t, db.Create(&expense).Error)

	err = svc.DeductExpense(db, &expense, user)
	require.ErrorIs(t, err, apperrors.ErrInsufficientBalance)
}

func TestSummaryAndBreakdown(t *testing.T) {
	db := newTestDB(t)
	svc := NewAccountService(db, testLogger())

	require.NoError(t, svc.AddRevenueToMainAccount(1, decimal.NewFromInt(1000), RevenueBreakdown{
		Accommodation: decimal.NewFromInt(1000),
	}, models.PaymentMethodCash, "x", "revenue"))
	require.NoError(t, svc.OnPaymentReversed(1, decimal.NewFromInt(250), "refund", "x"))

	summary, err := svc.Summary()
	require.NoError(t, err)
	decEq(t, "750", summary.TotalBalance)
	decEq(t, "1000", summary.TotalCredits)
	decEq(t, "250", summary.TotalDebits)

	rows, err := svc.Breakdown()
	require.NoError(t, err)
	require.Len(t, rows, 2)
}

func TestReconcileDetectsDrift(t *testing.T) {
	db := newTestDB(t)
	svc := NewAccountService(db, testLogger())

	require.NoError(t, svc.AddRevenueToMainAccount(1, decimal.NewFromInt(1000), RevenueBreakdown{
		Accommodation: decimal.NewFromInt(1000),
	}, models.PaymentMethodCash, "x", "revenue"))

	drifted, err := svc.Reconcile()
	require.NoError(t, err)
	require.Empty(t, drifted)

	// Corrupt the running balance behind the ledger's back.
	require.NoError(t, db.Model(&models.BankAccount{}).
		Where("is_main_account = ?", true).
		Update("balance", decimal.NewFromInt(900)).Error)

	drifted, err = svc.Reconcile()
	require.NoError(t, err)
	require.Len(t, drifted, 1)
	decEq(t, "-100", drifted[0].Drift)
	decEq(t, "1000", drifted[0].Expected)
}

func TestReconcileIgnoresAuditEntries(t *testing.T) {
	db := newTestDB(t)
	svc := NewAccountService(db, testLogger())

	require.NoError(t, svc.AddRevenueToMainAccount(1, decimal.NewFromInt(1000), RevenueBreakdown{
		Accommodation: decimal.NewFromInt(1000),
	}, models.PaymentMethodCash, "x", "revenue"))

	account, err := svc.GetMainAccount()
	require.NoError(t, err)
	original := decimal.NewFromInt(1000)
	require.NoError(t, svc.RecordAudit(db, account.ID, models.TxCategoryRefunds,
		decimal.NewFromInt(500), &original, "amended", models.RefTypePayment, 1, "tester"))

	// The audit entry neither moves the balance nor counts toward the
	// reconciliation expectation.
	require.NoError(t, db.First(account, account.ID).Error)
	decEq(t, "1000", account.Balance)

	drifted, err := svc.Reconcile()
	require.NoError(t, err)
	require.Empty(t, drifted)
}

func TestCashflowGroupsByDay(t *testing.T) {
	db := newTestDB(t)
	svc := NewAccountService(db, testLogger())

	require.NoError(t, svc.AddRevenueToMainAccount(1, decimal.NewFromInt(700), RevenueBreakdown{
		Accommodation: decimal.NewFromInt(700),
	}, models.PaymentMethodCash, "x", "revenue"))
	require.NoError(t, svc.OnPaymentReversed(1, decimal.NewFromInt(200), "refund", "x"))

	entries, err := svc.Cashflow(7)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	decEq(t, "700", entries[0].Credits)
	decEq(t, "200", entries[0].Debits)
}
