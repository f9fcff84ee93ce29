package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"hoteldesk-backend/apperrors"
	"hoteldesk-backend/models"
)

const mainAccountName = "Hotel Main Account"

// RevenueBreakdown splits a posted revenue amount by origin; the largest
// component picks the transaction category.
type RevenueBreakdown struct {
	Accommodation decimal.Decimal `json:"accommodation"`
	ExtraCharges  decimal.Decimal `json:"extraCharges"`
	Taxes         decimal.Decimal `json:"taxes"`
}

// AccountService maintains bank accounts and their immutable transaction log.
// Balances are adjusted with atomic increments only; the transaction log stays
// the source of truth and Reconcile reports any drift.
type AccountService struct {
	DB  *gorm.DB
	Log *zap.SugaredLogger
}

func NewAccountService(db *gorm.DB, log *zap.SugaredLogger) *AccountService {
	return &AccountService{DB: db, Log: log}
}

// GetMainAccount returns the unique active main account.
func (s *AccountService) GetMainAccount() (*models.BankAccount, error) {
	return s.mainAccount(s.DB, false)
}

// GetOrCreateMainAccount returns the main account, bootstrapping it with a zero
// balance on first run.
func (s *AccountService) GetOrCreateMainAccount() (*models.BankAccount, error) {
	return s.mainAccount(s.DB, true)
}

func (s *AccountService) mainAccount(tx *gorm.DB, create bool) (*models.BankAccount, error) {
	var accounts []models.BankAccount
	if err := tx.Where("is_main_account = ? AND is_active = ?", true, true).
		Order("id ASC").Find(&accounts).Error; err != nil {
		return nil, fmt.Errorf("failed to look up main account: %w", err)
	}

	switch len(accounts) {
	case 1:
		return &accounts[0], nil
	case 0:
		if !create {
			return nil, fmt.Errorf("main account: %w", apperrors.ErrNotFound)
		}
		account := models.BankAccount{
			AccountName:   mainAccountName,
			AccountType:   "main",
			Balance:       decimal.Zero,
			IsMainAccount: true,
			IsActive:      true,
		}
		if err := tx.Create(&account).Error; err != nil {
			return nil, fmt.Errorf("failed to bootstrap main account: %w", err)
		}
		return &account, nil
	default:
		return nil, fmt.Errorf("%d active main accounts: %w", len(accounts), apperrors.ErrMultipleMainAccounts)
	}
}

// GetOrCreateUserAccount returns the per-user account, creating it lazily with
// a zero balance on first use.
func (s *AccountService) GetOrCreateUserAccount(tx *gorm.DB, user models.User) (*models.BankAccount, error) {
	var account models.BankAccount
	err := tx.Where("user_id = ? AND is_active = ?", user.ID, true).First(&account).Error
	if err == nil {
		return &account, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to look up user account: %w", err)
	}

	userID := user.ID
	account = models.BankAccount{
		AccountName: fmt.Sprintf("%s (staff)", user.FullName),
		AccountType: "user",
		Balance:     decimal.Zero,
		IsActive:    true,
		UserID:      &userID,
	}
	if err := tx.Create(&account).Error; err != nil {
		return nil, fmt.Errorf("failed to create user account: %w", err)
	}
	return &account, nil
}

// postTransaction writes one ledger entry and applies the same amount to the
// account balance. Credit adds, debit subtracts. Both writes ride the given tx.
func (s *AccountService) postTransaction(tx *gorm.DB, entry *models.Transaction) error {
	if entry.Amount.IsNegative() {
		return fmt.Errorf("transaction amount %s: %w", entry.Amount, apperrors.ErrInvalidAmount)
	}
	if err := tx.Create(entry).Error; err != nil {
		return fmt.Errorf("failed to create transaction: %w", err)
	}

	delta := entry.Amount
	if entry.Type == models.TxDebit {
		delta = delta.Neg()
	}
	res := tx.Model(&models.BankAccount{}).Where("id = ?", entry.AccountID).
		Update("balance", gorm.Expr("balance + ?", delta))
	if res.Error != nil {
		return fmt.Errorf("failed to apply balance change: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("account %d: %w", entry.AccountID, apperrors.ErrNotFound)
	}
	return nil
}

// RecordAudit writes a modification-trail entry. Audit entries carry amounts
// for reporting but never move a balance, and are excluded from reconciliation.
func (s *AccountService) RecordAudit(tx *gorm.DB, accountID uint, category string, amount decimal.Decimal, original *decimal.Decimal, reason, refType string, refID uint, processedBy string) error {
	entry := models.Transaction{
		AccountID:          accountID,
		Type:               models.TxDebit,
		Category:           category,
		Amount:             amount,
		ReferenceID:        refID,
		ReferenceType:      refType,
		Description:        reason,
		ProcessedBy:        processedBy,
		IsModification:     true,
		OriginalAmount:     original,
		ModificationReason: reason,
	}
	if err := tx.Create(&entry).Error; err != nil {
		return fmt.Errorf("failed to create audit transaction: %w", err)
	}
	return nil
}

func dominantCategory(b RevenueBreakdown) string {
	category := models.TxCategoryAccommodation
	max := b.Accommodation
	if b.ExtraCharges.GreaterThan(max) {
		category = models.TxCategoryExtraCharges
		max = b.ExtraCharges
	}
	if b.Taxes.GreaterThan(max) {
		category = models.TxCategoryTaxes
	}
	return category
}

// AddRevenueToMainAccount credits collected revenue to the main account in a
// single atomic write, categorized by the dominant breakdown component.
func (s *AccountService) AddRevenueToMainAccount(bookingID uint, amount decimal.Decimal, breakdown RevenueBreakdown, method, collectedBy, description string) error {
	if amount.IsNegative() {
		return fmt.Errorf("revenue amount %s: %w", amount, apperrors.ErrInvalidAmount)
	}

	return s.DB.Transaction(func(tx *gorm.DB) error {
		account, err := s.mainAccount(tx, true)
		if err != nil {
			return err
		}
		entry := models.Transaction{
			AccountID:     account.ID,
			Type:          models.TxCredit,
			Category:      dominantCategory(breakdown),
			Amount:        amount,
			ReferenceID:   bookingID,
			ReferenceType: models.RefTypeBooking,
			Description:   fmt.Sprintf("%s (via %s)", description, method),
			ProcessedBy:   collectedBy,
		}
		return s.postTransaction(tx, &entry)
	})
}

// OnPaymentCompleted credits the main account for newly collected payment money.
func (s *AccountService) OnPaymentCompleted(bookingID uint, amount decimal.Decimal, processedBy string) error {
	return s.DB.Transaction(func(tx *gorm.DB) error {
		account, err := s.mainAccount(tx, true)
		if err != nil {
			return err
		}
		entry := models.Transaction{
			AccountID:     account.ID,
			Type:          models.TxCredit,
			Category:      models.TxCategoryAccommodation,
			Amount:        amount,
			ReferenceID:   bookingID,
			ReferenceType: models.RefTypeBooking,
			Description:   fmt.Sprintf("payment collected for booking %d", bookingID),
			ProcessedBy:   processedBy,
		}
		return s.postTransaction(tx, &entry)
	})
}

// OnPaymentReversed debits the main account for refunded or corrected payment money.
func (s *AccountService) OnPaymentReversed(bookingID uint, amount decimal.Decimal, reason, processedBy string) error {
	return s.DB.Transaction(func(tx *gorm.DB) error {
		account, err := s.mainAccount(tx, true)
		if err != nil {
			return err
		}
		description := fmt.Sprintf("payment reversed for booking %d", bookingID)
		if reason != "" {
			description = fmt.Sprintf("%s: %s", description, reason)
		}
		entry := models.Transaction{
			AccountID:     account.ID,
			Type:          models.TxDebit,
			Category:      models.TxCategoryRefunds,
			Amount:        amount,
			ReferenceID:   bookingID,
			ReferenceType: models.RefTypeBooking,
			Description:   description,
			ProcessedBy:   processedBy,
		}
		return s.postTransaction(tx, &entry)
	})
}

// DeleteRevenueForBooking removes every ledger entry referencing the booking or
// any of its invoices and payments. Audit entries are kept. Balances are not
// touched here: the caller issues a single post-commit reversal for the
// collected total, and the interim gap between balance and surviving log is
// what the reconcile report exists to surface. Runs on the given tx so booking
// deletion stays all-or-nothing.
func (s *AccountService) DeleteRevenueForBooking(tx *gorm.DB, bookingID uint, invoiceIDs, paymentIDs []uint) error {
	del := func(refType string, ids []uint) error {
		if len(ids) == 0 {
			return nil
		}
		if err := tx.Where("reference_type = ? AND reference_id IN ? AND is_modification = ?",
			refType, ids, false).Delete(&models.Transaction{}).Error; err != nil {
			return fmt.Errorf("failed to delete %s transactions: %w", refType, err)
		}
		return nil
	}

	if err := del(models.RefTypeBooking, []uint{bookingID}); err != nil {
		return err
	}
	if err := del(models.RefTypeInvoice, invoiceIDs); err != nil {
		return err
	}
	return del(models.RefTypePayment, paymentIDs)
}

// DeductExpense moves an approved expense out of both the user account and the
// main account, writing one debit per ledger. Runs on the caller's tx.
func (s *AccountService) DeductExpense(tx *gorm.DB, expense *models.Expense, user models.User) error {
	userAccount, err := s.GetOrCreateUserAccount(tx, user)
	if err != nil {
		return err
	}
	if userAccount.Balance.LessThan(expense.Amount) {
		return fmt.Errorf("account balance %s below expense %s: %w",
			userAccount.Balance, expense.Amount, apperrors.ErrInsufficientBalance)
	}

	mainAccount, err := s.mainAccount(tx, false)
	if err != nil {
		return err
	}

	description := expense.Description
	if description == "" {
		description = fmt.Sprintf("expense %d", expense.ID)
	}
	for _, accountID := range []uint{userAccount.ID, mainAccount.ID} {
		entry := models.Transaction{
			AccountID:     accountID,
			Type:          models.TxDebit,
			Category:      models.TxCategoryOtherExpense,
			Amount:        expense.Amount,
			ReferenceID:   expense.ID,
			ReferenceType: models.RefTypeExpense,
			Description:   description,
			ProcessedBy:   user.FullName,
		}
		if err := s.postTransaction(tx, &entry); err != nil {
			return err
		}
	}
	return nil
}

// --- reporting ---

// AccountBalances lists all active accounts with their running balances.
func (s *AccountService) AccountBalances() ([]models.BankAccount, error) {
	var accounts []models.BankAccount
	if err := s.DB.Where("is_active = ?", true).Order("is_main_account DESC, id ASC").Find(&accounts).Error; err != nil {
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}
	return accounts, nil
}

// SummaryReport aggregates total position, lifetime credits and debits.
type SummaryReport struct {
	TotalBalance decimal.Decimal `json:"totalBalance"`
	TotalCredits decimal.Decimal `json:"totalCredits"`
	TotalDebits  decimal.Decimal `json:"totalDebits"`
	AccountCount int             `json:"accountCount"`
}

func (s *AccountService) Summary() (*SummaryReport, error) {
	accounts, err := s.AccountBalances()
	if err != nil {
		return nil, err
	}

	report := SummaryReport{
		TotalBalance: decimal.Zero,
		TotalCredits: decimal.Zero,
		TotalDebits:  decimal.Zero,
		AccountCount: len(accounts),
	}
	for _, a := range accounts {
		report.TotalBalance = report.TotalBalance.Add(a.Balance)
	}

	sums, err := s.sumByType(s.DB)
	if err != nil {
		return nil, err
	}
	report.TotalCredits = sums[models.TxCredit]
	report.TotalDebits = sums[models.TxDebit]
	return &report, nil
}

func (s *AccountService) sumByType(tx *gorm.DB) (map[string]decimal.Decimal, error) {
	type row struct {
		Type  string
		Total decimal.Decimal
	}
	var rows []row
	err := tx.Model(&models.Transaction{}).
		Select("type, COALESCE(SUM(amount), 0) AS total").
		Where("is_modification = ?", false).
		Group("type").Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to sum transactions: %w", err)
	}

	out := map[string]decimal.Decimal{
		models.TxCredit: decimal.Zero,
		models.TxDebit:  decimal.Zero,
	}
	for _, r := range rows {
		out[r.Type] = r.Total
	}
	return out, nil
}

// CategoryBreakdown sums ledger entries per category.
type CategoryBreakdown struct {
	Category string          `json:"category"`
	Type     string          `json:"type"`
	Total    decimal.Decimal `json:"total"`
}

func (s *AccountService) Breakdown() ([]CategoryBreakdown, error) {
	var rows []CategoryBreakdown
	err := s.DB.Model(&models.Transaction{}).
		Select("category, type, COALESCE(SUM(amount), 0) AS total").
		Where("is_modification = ?", false).
		Group("category, type").
		Order("category ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to build category breakdown: %w", err)
	}
	return rows, nil
}

// AccountTransactions lists ledger entries for one account, newest first.
func (s *AccountService) AccountTransactions(accountID uint, limit int) ([]models.Transaction, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	var txns []models.Transaction
	if err := s.DB.Where("account_id = ?", accountID).
		Order("created_at DESC, id DESC").Limit(limit).Find(&txns).Error; err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}
	return txns, nil
}

// CashflowEntry is one day's credit/debit totals.
type CashflowEntry struct {
	Day     string          `json:"day"`
	Credits decimal.Decimal `json:"credits"`
	Debits  decimal.Decimal `json:"debits"`
}

// Cashflow returns daily totals for the trailing window.
func (s *AccountService) Cashflow(days int) ([]CashflowEntry, error) {
	if days <= 0 || days > 366 {
		days = 30
	}
	since := time.Now().AddDate(0, 0, -days)

	type row struct {
		Day   string
		Type  string
		Total decimal.Decimal
	}
	var rows []row
	err := s.DB.Model(&models.Transaction{}).
		Select("DATE(created_at) AS day, type, COALESCE(SUM(amount), 0) AS total").
		Where("is_modification = ? AND created_at >= ?", false, since).
		Group("DATE(created_at), type").
		Order("day ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to build cashflow: %w", err)
	}

	byDay := map[string]*CashflowEntry{}
	order := []string{}
	for _, r := range rows {
		e, ok := byDay[r.Day]
		if !ok {
			e = &CashflowEntry{Day: r.Day, Credits: decimal.Zero, Debits: decimal.Zero}
			byDay[r.Day] = e
			order = append(order, r.Day)
		}
		if r.Type == models.TxCredit {
			e.Credits = r.Total
		} else {
			e.Debits = r.Total
		}
	}

	out := make([]CashflowEntry, 0, len(order))
	for _, day := range order {
		out = append(out, *byDay[day])
	}
	return out, nil
}

// DriftEntry reports one account whose running balance disagrees with the
// transaction log.
type DriftEntry struct {
	AccountID   uint            `json:"accountId"`
	AccountName string          `json:"accountName"`
	Balance     decimal.Decimal `json:"balance"`
	Expected    decimal.Decimal `json:"expected"`
	Drift       decimal.Decimal `json:"drift"`
}

// Reconcile recomputes every active account's balance from the transaction log
// (audit entries excluded) and returns the accounts that drifted.
func (s *AccountService) Reconcile() ([]DriftEntry, error) {
	accounts, err := s.AccountBalances()
	if err != nil {
		return nil, err
	}

	type row struct {
		AccountID uint
		Type      string
		Total     decimal.Decimal
	}
	var rows []row
	err = s.DB.Model(&models.Transaction{}).
		Select("account_id, type, COALESCE(SUM(amount), 0) AS total").
		Where("is_modification = ?", false).
		Group("account_id, type").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to sum per-account transactions: %w", err)
	}

	expected := map[uint]decimal.Decimal{}
	for _, r := range rows {
		cur := expected[r.AccountID]
		if r.Type == models.TxCredit {
			cur = cur.Add(r.Total)
		} else {
			cur = cur.Sub(r.Total)
		}
		expected[r.AccountID] = cur
	}

	var drifted []DriftEntry
	for _, a := range accounts {
		want := expected[a.ID]
		if a.Balance.Equal(want) {
			continue
		}
		drifted = append(drifted, DriftEntry{
			AccountID:   a.ID,
			AccountName: a.AccountName,
			Balance:     a.Balance,
			Expected:    want,
			Drift:       a.Balance.Sub(want),
		})
	}
	if len(drifted) > 0 {
		s.Log.Warnw("balance drift detected", "accounts", len(drifted))
	}
	return drifted, nil
}
