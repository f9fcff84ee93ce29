package services

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"hoteldesk-backend/apperrors"
	"hoteldesk-backend/models"
)

// ExpenseService records expenses against per-user accounts. Admin and owner
// expenses are auto-approved and deducted immediately; everything else waits
// for approval.
type ExpenseService struct {
	DB       *gorm.DB
	Accounts *AccountService
	Log      *zap.SugaredLogger
}

func NewExpenseService(db *gorm.DB, accounts *AccountService, log *zap.SugaredLogger) *ExpenseService {
	return &ExpenseService{DB: db, Accounts: accounts, Log: log}
}

// --- expense types (reference data) ---

func (s *ExpenseService) ListExpenseTypes() ([]models.ExpenseType, error) {
	var types []models.ExpenseType
	if err := s.DB.Where("is_active = ?", true).Order("name ASC").Find(&types).Error; err != nil {
		return nil, fmt.Errorf("failed to list expense types: %w", err)
	}
	return types, nil
}

func (s *ExpenseService) CreateExpenseType(name, description string) (*models.ExpenseType, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("name is required: %w", apperrors.ErrValidation)
	}

	et := models.ExpenseType{Name: name, Description: description, IsActive: true}
	if err := s.DB.Create(&et).Error; err != nil {
		if isDuplicateKeyError(err) {
			return nil, fmt.Errorf("expense type %q: %w", name, apperrors.ErrDuplicate)
		}
		return nil, fmt.Errorf("failed to create expense type: %w", err)
	}
	return &et, nil
}

func (s *ExpenseService) UpdateExpenseType(id uint, name, description string) (*models.ExpenseType, error) {
	var et models.ExpenseType
	if err := s.DB.First(&et, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("expense type %d: %w", id, apperrors.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to load expense type: %w", err)
	}

	updates := map[string]interface{}{}
	if name = strings.TrimSpace(name); name != "" {
		updates["name"] = name
	}
	if description != "" {
		updates["description"] = description
	}
	if len(updates) > 0 {
		if err := s.DB.Model(&et).Updates(updates).Error; err != nil {
			if isDuplicateKeyError(err) {
				return nil, fmt.Errorf("expense type %q: %w", name, apperrors.ErrDuplicate)
			}
			return nil, fmt.Errorf("failed to update expense type: %w", err)
		}
	}
	return &et, nil
}

func (s *ExpenseService) DeleteExpenseType(id uint) error {
	res := s.DB.Delete(&models.ExpenseType{}, id)
	if res.Error != nil {
		return fmt.Errorf("failed to delete expense type: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("expense type %d: %w", id, apperrors.ErrNotFound)
	}
	return nil
}

// --- expenses ---

// CreateExpenseInput carries a new expense.
type CreateExpenseInput struct {
	ExpenseTypeID uint            `json:"expenseTypeId"`
	Amount        decimal.Decimal `json:"amount"`
	Description   string          `json:"description"`
	ExpenseDate   *time.Time      `json:"expenseDate"`
}

// CreateExpense records the expense for the given user. For admin and owner
// roles the expense is approved and deducted from both ledgers in the same
// transaction; the deduction fails with ErrInsufficientBalance when the user
// account cannot cover it.
func (s *ExpenseService) CreateExpense(user models.User, in CreateExpenseInput) (*models.Expense, error) {
	if !in.Amount.GreaterThan(decimal.Zero) {
		return nil, fmt.Errorf("expense amount must be positive: %w", apperrors.ErrInvalidAmount)
	}

	var expenseType models.ExpenseType
	if err := s.DB.First(&expenseType, in.ExpenseTypeID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("expense type %d: %w", in.ExpenseTypeID, apperrors.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to load expense type: %w", err)
	}

	expenseDate := time.Now()
	if in.ExpenseDate != nil {
		expenseDate = *in.ExpenseDate
	}
	autoApprove := user.Role == models.RoleAdmin || user.Role == models.RoleOwner

	var expense models.Expense
	txErr := s.DB.Transaction(func(tx *gorm.DB) error {
		expense = models.Expense{
			ExpenseTypeID: in.ExpenseTypeID,
			UserID:        user.ID,
			Amount:        in.Amount,
			Description:   in.Description,
			Status:        models.ExpenseStatusPending,
			ExpenseDate:   expenseDate,
		}
		if autoApprove {
			expense.Status = models.ExpenseStatusApproved
		}
		if err := tx.Create(&expense).Error; err != nil {
			return fmt.Errorf("failed to create expense: %w", err)
		}

		if autoApprove {
			return s.Accounts.DeductExpense(tx, &expense, user)
		}
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}
	return &expense, nil
}

// ApproveExpense approves a pending expense and runs the deduction.
func (s *ExpenseService) ApproveExpense(id uint, approver models.User) (*models.Expense, error) {
	var expense models.Expense
	txErr := s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Preload("User").First(&expense, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("expense %d: %w", id, apperrors.ErrNotFound)
			}
			return fmt.Errorf("failed to load expense: %w", err)
		}
		if expense.Status != models.ExpenseStatusPending {
			return fmt.Errorf("expense %d is not pending: %w", id, apperrors.ErrValidation)
		}

		if err := tx.Model(&expense).Update("status", models.ExpenseStatusApproved).Error; err != nil {
			return fmt.Errorf("failed to approve expense: %w", err)
		}
		return s.Accounts.DeductExpense(tx, &expense, expense.User)
	})
	if txErr != nil {
		return nil, txErr
	}
	s.Log.Infow("expense approved", "expense_id", expense.ID, "approved_by", approver.FullName)
	return &expense, nil
}

// ListExpenses returns expenses newest first, optionally filtered by status.
func (s *ExpenseService) ListExpenses(status string) ([]models.Expense, error) {
	q := s.DB.Preload("ExpenseType").Order("expense_date DESC")
	if status != "" {
		q = q.Where("status = ?", status)
	}
	var expenses []models.Expense
	if err := q.Find(&expenses).Error; err != nil {
		return nil, fmt.Errorf("failed to list expenses: %w", err)
	}
	return expenses, nil
}
