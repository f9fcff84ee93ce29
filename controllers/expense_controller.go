package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"hoteldesk-backend/models"
	"hoteldesk-backend/services"
	"hoteldesk-backend/utils"
)

type ExpenseController struct {
	DB  *gorm.DB
	Svc *services.ExpenseService
	Log *zap.SugaredLogger
}

func NewExpenseController(db *gorm.DB, svc *services.ExpenseService, log *zap.SugaredLogger) *ExpenseController {
	return &ExpenseController{DB: db, Svc: svc, Log: log}
}

// currentUser loads the authenticated user from the session claims.
func (ctrl *ExpenseController) currentUser(c *gin.Context) (models.User, bool) {
	id := sessionUserID(c)
	if id == 0 {
		utils.JSONError(c, http.StatusUnauthorized, "Unauthorized")
		return models.User{}, false
	}
	var user models.User
	if err := ctrl.DB.First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.JSONError(c, http.StatusUnauthorized, "Unauthorized")
			return models.User{}, false
		}
		respondError(c, ctrl.Log, err)
		return models.User{}, false
	}
	return user, true
}

// --- expense types ---

func (ctrl *ExpenseController) ListTypes(c *gin.Context) {
	types, err := ctrl.Svc.ListExpenseTypes()
	if err != nil {
		respondError(c, ctrl.Log, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, types)
}

type expenseTypePayload struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

func (ctrl *ExpenseController) CreateType(c *gin.Context) {
	var payload expenseTypePayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	et, err := ctrl.Svc.CreateExpenseType(payload.Name, payload.Description)
	if err != nil {
		respondError(c, ctrl.Log, err)
		return
	}
	utils.JSONSuccess(c, http.StatusCreated, et)
}

func (ctrl *ExpenseController) UpdateType(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	var payload expenseTypePayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	et, err := ctrl.Svc.UpdateExpenseType(id, payload.Name, payload.Description)
	if err != nil {
		respondError(c, ctrl.Log, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, et)
}

func (ctrl *ExpenseController) DeleteType(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	if err := ctrl.Svc.DeleteExpenseType(id); err != nil {
		respondError(c, ctrl.Log, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, gin.H{"message": "expense type deleted"})
}

// --- expenses ---

func (ctrl *ExpenseController) List(c *gin.Context) {
	expenses, err := ctrl.Svc.ListExpenses(c.Query("status"))
	if err != nil {
		respondError(c, ctrl.Log, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, expenses)
}

type createExpensePayload struct {
	ExpenseTypeID uint            `json:"expenseTypeId"`
	Amount        decimal.Decimal `json:"amount"`
	Description   string          `json:"description"`
	ExpenseDate   *string         `json:"expenseDate"`
}

func (ctrl *ExpenseController) Create(c *gin.Context) {
	user, ok := ctrl.currentUser(c)
	if !ok {
		return
	}

	var payload createExpensePayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	in := services.CreateExpenseInput{
		ExpenseTypeID: payload.ExpenseTypeID,
		Amount:        payload.Amount,
		Description:   payload.Description,
	}
	if payload.ExpenseDate != nil && *payload.ExpenseDate != "" {
		t, err := parseDate(*payload.ExpenseDate)
		if err != nil {
			utils.JSONError(c, http.StatusBadRequest, "expenseDate must be YYYY-MM-DD")
			return
		}
		in.ExpenseDate = &t
	}

	expense, err := ctrl.Svc.CreateExpense(user, in)
	if err != nil {
		respondError(c, ctrl.Log, err)
		return
	}
	utils.JSONSuccess(c, http.StatusCreated, expense)
}

func (ctrl *ExpenseController) Approve(c *gin.Context) {
	user, ok := ctrl.currentUser(c)
	if !ok {
		return
	}
	if user.Role != models.RoleAdmin && user.Role != models.RoleOwner {
		utils.JSONError(c, http.StatusForbidden, "only admin or owner can approve expenses")
		return
	}

	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	expense, err := ctrl.Svc.ApproveExpense(id, user)
	if err != nil {
		respondError(c, ctrl.Log, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, expense)
}
