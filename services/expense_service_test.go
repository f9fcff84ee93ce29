package services

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"hoteldesk-backend/apperrors"
	"hoteldesk-backend/models"
)

func expenseFixture(t *testing.T, db *gorm.DB, role string, userBalance int64) (*ExpenseService, models.User, *models.ExpenseType) {
	t.Helper()
	log := testLogger()
	accounts := NewAccountService(db, log)
	svc := NewExpenseService(db, accounts, log)

	user := models.User{FullName: "Test User", Email: "user@example.com", Role: role, IsActive: true}
	require.NoError(t, db.Create(&user).Error)

	main, err := accounts.GetOrCreateMainAccount()
	require.NoError(t, err)
	require.NoError(t, accounts.postTransaction(db, &models.Transaction{
		AccountID: main.ID, Type: models.TxCredit,
		Category: models.TxCategoryAccommodation, Amount: decimal.NewFromInt(10000),
	}))

	if userBalance > 0 {
		userAccount, err := accounts.GetOrCreateUserAccount(db, user)
		require.NoError(t, err)
		require.NoError(t, accounts.postTransaction(db, &models.Transaction{
			AccountID: userAccount.ID, Type: models.TxCredit,
			Category: models.TxCategoryAccommodation, Amount: decimal.NewFromInt(userBalance),
		}))
	}

	et, err := svc.CreateExpenseType("Supplies", "cleaning supplies")
	require.NoError(t, err)
	return svc, user, et
}

func TestCreateExpenseTypeRejectsDuplicate(t *testing.T) {
	db := newTestDB(t)
	svc := NewExpenseService(db, NewAccountService(db, testLogger()), testLogger())

	_, err := svc.CreateExpenseType("Supplies", "")
	require.NoError(t, err)
	_, err = svc.CreateExpenseType("Supplies", "")
	require.ErrorIs(t, err, apperrors.ErrDuplicate)
}

func TestCreateExpenseAdminAutoApproves(t *testing.T) {
	db := newTestDB(t)
	svc, admin, et := expenseFixture(t, db, models.RoleAdmin, 2000)

	expense, err := svc.CreateExpense(admin, CreateExpenseInput{
		ExpenseTypeID: et.ID,
		Amount:        decimal.NewFromInt(500),
		Description:   "mops and buckets",
	})
	require.NoError(t, err)
	require.Equal(t, models.ExpenseStatusApproved, expense.Status)

	var userAccount models.BankAccount
	require.NoError(t, db.Where("user_id = ?", admin.ID).First(&userAccount).Error)
	decEq(t, "1500", userAccount.Balance)

	var main models.BankAccount
	require.NoError(t, db.Where("is_main_account = ?", true).First(&main).Error)
	decEq(t, "9500", main.Balance)
}

func TestCreateExpenseStaffStaysPending(t *testing.T) {
	db := newTestDB(t)
	svc, staff, et := expenseFixture(t, db, models.RoleStaff, 2000)

	expense, err := svc.CreateExpense(staff, CreateExpenseInput{
		ExpenseTypeID: et.ID,
		Amount:        decimal.NewFromInt(500),
	})
	require.NoError(t, err)
	require.Equal(t, models.ExpenseStatusPending, expense.Status)

	// No deduction until approval.
	var userAccount models.BankAccount
	require.NoError(t, db.Where("user_id = ?", staff.ID).First(&userAccount).Error)
	decEq(t, "2000", userAccount.Balance)

	approver := models.User{FullName: "Boss", Email: "boss@example.com", Role: models.RoleOwner, IsActive: true}
	require.NoError(t, db.Create(&approver).Error)

	approved, err := svc.ApproveExpense(expense.ID, approver)
	require.NoError(t, err)
	require.Equal(t, models.ExpenseStatusApproved, approved.Status)

	require.NoError(t, db.Where("user_id = ?", staff.ID).First(&userAccount).Error)
	decEq(t, "1500", userAccount.Balance)
}

func TestCreateExpenseInsufficientBalanceRollsBack(t *testing.T) {
	db := newTestDB(t)
	svc, admin, et := expenseFixture(t, db, models.RoleAdmin, 100)

	_, err := svc.CreateExpense(admin, CreateExpenseInput{
		ExpenseTypeID: et.ID,
		Amount:        decimal.NewFromInt(500),
	})
	require.ErrorIs(t, err, apperrors.ErrInsufficientBalance)

	// The transaction rolled back; no expense row survives.
	var count int64
	require.NoError(t, db.Model(&models.Expense{}).Count(&count).Error)
	require.Zero(t, count)
}

func TestApproveExpenseRejectsNonPending(t *testing.T) {
	db := newTestDB(t)
	svc, admin, et := expenseFixture(t, db, models.RoleAdmin, 2000)

	expense, err := svc.CreateExpense(admin, CreateExpenseInput{
		ExpenseTypeID: et.ID,
		Amount:        decimal.NewFromInt(100),
	})
	require.NoError(t, err)

	_, err = svc.ApproveExpense(expense.ID, admin)
	require.ErrorIs(t, err, apperrors.ErrValidation)
}

func TestCreateExpenseRejectsBadInput(t *testing.T) {
	db := newTestDB(t)
	svc, admin, et := expenseFixture(t, db, models.RoleAdmin, 2000)

	_, err := svc.CreateExpense(admin, CreateExpenseInput{ExpenseTypeID: et.ID, Amount: decimal.Zero})
	require.ErrorIs(t, err, apperrors.ErrInvalidAmount)

	_, err = svc.CreateExpense(admin, CreateExpenseInput{ExpenseTypeID: 999, Amount: decimal.NewFromInt(10)})
	require.ErrorIs(t, err, apperrors.ErrNotFound)
}
