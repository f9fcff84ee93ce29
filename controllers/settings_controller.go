package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"hoteldesk-backend/services"
	"hoteldesk-backend/utils"
)

type SettingsController struct {
	Svc *services.TaxService
	Log *zap.SugaredLogger
}

func NewSettingsController(svc *services.TaxService, log *zap.SugaredLogger) *SettingsController {
	return &SettingsController{Svc: svc, Log: log}
}

func (ctrl *SettingsController) GetTaxes(c *gin.Context) {
	setting, err := ctrl.Svc.GetSettings()
	if err != nil {
		respondError(c, ctrl.Log, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, setting)
}

func (ctrl *SettingsController) UpdateTaxes(c *gin.Context) {
	var cfg services.TaxConfig
	if err := c.ShouldBindJSON(&cfg); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	setting, err := ctrl.Svc.UpdateSettings(cfg)
	if err != nil {
		respondError(c, ctrl.Log, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, setting)
}
