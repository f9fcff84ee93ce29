package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"hoteldesk-backend/services"
	"hoteldesk-backend/utils"
)

type AccountController struct {
	DB  *gorm.DB
	Svc *services.AccountService
	Log *zap.SugaredLogger
}

func NewAccountController(db *gorm.DB, svc *services.AccountService, log *zap.SugaredLogger) *AccountController {
	return &AccountController{DB: db, Svc: svc, Log: log}
}

// Get dispatches on ?action=: balances (default), summary, breakdown,
// transactions, cashflow, reconcile.
func (ctrl *AccountController) Get(c *gin.Context) {
	switch c.DefaultQuery("action", "balances") {
	case "balances":
		accounts, err := ctrl.Svc.AccountBalances()
		if err != nil {
			respondError(c, ctrl.Log, err)
			return
		}
		utils.JSONSuccess(c, http.StatusOK, accounts)

	case "summary":
		report, err := ctrl.Svc.Summary()
		if err != nil {
			respondError(c, ctrl.Log, err)
			return
		}
		utils.JSONSuccess(c, http.StatusOK, report)

	case "breakdown":
		rows, err := ctrl.Svc.Breakdown()
		if err != nil {
			respondError(c, ctrl.Log, err)
			return
		}
		utils.JSONSuccess(c, http.StatusOK, rows)

	case "transactions":
		accountID, err := strconv.ParseUint(c.Query("accountId"), 10, 64)
		if err != nil || accountID == 0 {
			utils.JSONError(c, http.StatusBadRequest, "accountId is required")
			return
		}
		limit, _ := strconv.Atoi(c.Query("limit"))
		txns, err := ctrl.Svc.AccountTransactions(uint(accountID), limit)
		if err != nil {
			respondError(c, ctrl.Log, err)
			return
		}
		utils.JSONSuccess(c, http.StatusOK, txns)

	case "cashflow":
		days, _ := strconv.Atoi(c.Query("days"))
		entries, err := ctrl.Svc.Cashflow(days)
		if err != nil {
			respondError(c, ctrl.Log, err)
			return
		}
		utils.JSONSuccess(c, http.StatusOK, entries)

	case "reconcile":
		drifted, err := ctrl.Svc.Reconcile()
		if err != nil {
			respondError(c, ctrl.Log, err)
			return
		}
		utils.JSONSuccess(c, http.StatusOK, gin.H{
			"consistent": len(drifted) == 0,
			"drifted":    drifted,
		})

	default:
		utils.JSONError(c, http.StatusBadRequest, "unknown action")
	}
}

// ListDeadLetters exposes unresolved post-commit failures for manual replay.
func (ctrl *AccountController) ListDeadLetters(c *gin.Context) {
	limit, _ := strconv.Atoi(c.Query("limit"))
	letters, err := services.ListDeadLetters(ctrl.DB, limit)
	if err != nil {
		respondError(c, ctrl.Log, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, letters)
}
