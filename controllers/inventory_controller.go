package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"hoteldesk-backend/services"
	"hoteldesk-backend/utils"
)

type InventoryController struct {
	Svc *services.InventoryService
	Log *zap.SugaredLogger
}

func NewInventoryController(svc *services.InventoryService, log *zap.SugaredLogger) *InventoryController {
	return &InventoryController{Svc: svc, Log: log}
}

// --- categories ---

func (ctrl *InventoryController) ListCategories(c *gin.Context) {
	categories, err := ctrl.Svc.ListCategories()
	if err != nil {
		respondError(c, ctrl.Log, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, categories)
}

type categoryPayload struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

func (ctrl *InventoryController) CreateCategory(c *gin.Context) {
	var payload categoryPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	category, err := ctrl.Svc.CreateCategory(payload.Name, payload.Description)
	if err != nil {
		respondError(c, ctrl.Log, err)
		return
	}
	utils.JSONSuccess(c, http.StatusCreated, category)
}

func (ctrl *InventoryController) UpdateCategory(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	var payload categoryPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	category, err := ctrl.Svc.UpdateCategory(id, payload.Name, payload.Description)
	if err != nil {
		respondError(c, ctrl.Log, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, category)
}

func (ctrl *InventoryController) DeleteCategory(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	if err := ctrl.Svc.DeleteCategory(id); err != nil {
		respondError(c, ctrl.Log, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, gin.H{"message": "category deleted"})
}

// --- items ---

func (ctrl *InventoryController) ListItems(c *gin.Context) {
	var categoryID uint
	if raw := c.Query("categoryId"); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			utils.JSONError(c, http.StatusBadRequest, "invalid categoryId")
			return
		}
		categoryID = uint(id)
	}
	items, err := ctrl.Svc.ListItems(categoryID)
	if err != nil {
		respondError(c, ctrl.Log, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, items)
}

func (ctrl *InventoryController) CreateItem(c *gin.Context) {
	var in services.ItemInput
	if err := c.ShouldBindJSON(&in); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	item, err := ctrl.Svc.CreateItem(in)
	if err != nil {
		respondError(c, ctrl.Log, err)
		return
	}
	utils.JSONSuccess(c, http.StatusCreated, item)
}

func (ctrl *InventoryController) UpdateItem(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	var in services.ItemInput
	if err := c.ShouldBindJSON(&in); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	item, err := ctrl.Svc.UpdateItem(id, in)
	if err != nil {
		respondError(c, ctrl.Log, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, item)
}

func (ctrl *InventoryController) DeleteItem(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	if err := ctrl.Svc.DeleteItem(id); err != nil {
		respondError(c, ctrl.Log, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, gin.H{"message": "item deleted"})
}

// --- transactions and alerts ---

func (ctrl *InventoryController) ListTransactions(c *gin.Context) {
	var itemID uint
	if raw := c.Query("itemId"); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			utils.JSONError(c, http.StatusBadRequest, "invalid itemId")
			return
		}
		itemID = uint(id)
	}
	txns, err := ctrl.Svc.ListTransactions(itemID)
	if err != nil {
		respondError(c, ctrl.Log, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, txns)
}

func (ctrl *InventoryController) CreateTransaction(c *gin.Context) {
	var in services.StockTransactionInput
	if err := c.ShouldBindJSON(&in); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if in.ProcessedBy == "" {
		in.ProcessedBy = sessionUserName(c)
	}
	record, err := ctrl.Svc.RecordTransaction(in)
	if err != nil {
		respondError(c, ctrl.Log, err)
		return
	}
	utils.JSONSuccess(c, http.StatusCreated, record)
}

func (ctrl *InventoryController) ListAlerts(c *gin.Context) {
	alerts, err := ctrl.Svc.ListAlerts()
	if err != nil {
		respondError(c, ctrl.Log, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, alerts)
}
