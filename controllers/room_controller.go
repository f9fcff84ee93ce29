package controllers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"hoteldesk-backend/models"
	"hoteldesk-backend/utils"
)

// RoomController manages room types and physical rooms directly against the
// database; there is no pricing or allocation logic here.
type RoomController struct {
	DB  *gorm.DB
	Log *zap.SugaredLogger
}

func NewRoomController(db *gorm.DB, log *zap.SugaredLogger) *RoomController {
	return &RoomController{DB: db, Log: log}
}

// --- room types ---

func (ctrl *RoomController) ListRoomTypes(c *gin.Context) {
	var types []models.RoomType
	if err := ctrl.DB.Preload("Rooms").Order("name ASC").Find(&types).Error; err != nil {
		respondError(c, ctrl.Log, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, types)
}

type roomTypePayload struct {
	Name          string           `json:"name"`
	Description   string           `json:"description"`
	PricePerNight *decimal.Decimal `json:"pricePerNight"`
	Currency      string           `json:"currency"`
	MaxGuests     *int             `json:"maxGuests"`
	Amenities     datatypes.JSON   `json:"amenities"`
}

func (ctrl *RoomController) CreateRoomType(c *gin.Context) {
	var payload roomTypePayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if strings.TrimSpace(payload.Name) == "" || payload.PricePerNight == nil {
		utils.JSONError(c, http.StatusBadRequest, "name and pricePerNight are required")
		return
	}
	if payload.PricePerNight.IsNegative() {
		utils.JSONError(c, http.StatusBadRequest, "pricePerNight must not be negative")
		return
	}

	roomType := models.RoomType{
		Name:          strings.TrimSpace(payload.Name),
		Description:   payload.Description,
		PricePerNight: *payload.PricePerNight,
		Currency:      payload.Currency,
		Amenities:     payload.Amenities,
	}
	if payload.MaxGuests != nil {
		roomType.MaxGuests = *payload.MaxGuests
	}
	if err := ctrl.DB.Create(&roomType).Error; err != nil {
		respondError(c, ctrl.Log, err)
		return
	}
	utils.JSONSuccess(c, http.StatusCreated, roomType)
}

func (ctrl *RoomController) UpdateRoomType(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	var roomType models.RoomType
	if err := ctrl.DB.First(&roomType, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.JSONError(c, http.StatusNotFound, "room type not found")
			return
		}
		respondError(c, ctrl.Log, err)
		return
	}

	var payload roomTypePayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	updates := map[string]interface{}{}
	if strings.TrimSpace(payload.Name) != "" {
		updates["name"] = strings.TrimSpace(payload.Name)
	}
	if payload.Description != "" {
		updates["description"] = payload.Description
	}
	if payload.PricePerNight != nil {
		if payload.PricePerNight.IsNegative() {
			utils.JSONError(c, http.StatusBadRequest, "pricePerNight must not be negative")
			return
		}
		updates["price_per_night"] = *payload.PricePerNight
	}
	if payload.Currency != "" {
		updates["currency"] = payload.Currency
	}
	if payload.MaxGuests != nil {
		updates["max_guests"] = *payload.MaxGuests
	}
	if len(payload.Amenities) > 0 {
		updates["amenities"] = payload.Amenities
	}

	if len(updates) > 0 {
		if err := ctrl.DB.Model(&roomType).Updates(updates).Error; err != nil {
			respondError(c, ctrl.Log, err)
			return
		}
	}
	utils.JSONSuccess(c, http.StatusOK, roomType)
}

func (ctrl *RoomController) DeleteRoomType(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	var count int64
	if err := ctrl.DB.Model(&models.Room{}).Where("room_type_id = ?", id).Count(&count).Error; err != nil {
		respondError(c, ctrl.Log, err)
		return
	}
	if count > 0 {
		utils.JSONError(c, http.StatusBadRequest, "room type still has rooms")
		return
	}

	res := ctrl.DB.Delete(&models.RoomType{}, id)
	if res.Error != nil {
		respondError(c, ctrl.Log, res.Error)
		return
	}
	if res.RowsAffected == 0 {
		utils.JSONError(c, http.StatusNotFound, "room type not found")
		return
	}
	utils.JSONSuccess(c, http.StatusOK, gin.H{"message": "room type deleted"})
}

// --- rooms ---

func (ctrl *RoomController) ListRooms(c *gin.Context) {
	q := ctrl.DB.Preload("RoomType").Order("room_number ASC")
	if status := c.Query("status"); status != "" {
		q = q.Where("status = ?", status)
	}
	var rooms []models.Room
	if err := q.Find(&rooms).Error; err != nil {
		respondError(c, ctrl.Log, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, rooms)
}

type roomPayload struct {
	RoomTypeID uint   `json:"roomTypeId"`
	RoomNumber string `json:"roomNumber"`
	Floor      string `json:"floor"`
	Status     string `json:"status"`
}

func (ctrl *RoomController) CreateRoom(c *gin.Context) {
	var payload roomPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if payload.RoomTypeID == 0 || strings.TrimSpace(payload.RoomNumber) == "" {
		utils.JSONError(c, http.StatusBadRequest, "roomTypeId and roomNumber are required")
		return
	}

	room := models.Room{
		RoomTypeID:          payload.RoomTypeID,
		RoomNumber:          strings.TrimSpace(payload.RoomNumber),
		Floor:               payload.Floor,
		Status:              models.RoomStatusAvailable,
		AvailableForBooking: true,
	}
	if payload.Status != "" {
		room.Status = payload.Status
		room.AvailableForBooking = payload.Status == models.RoomStatusAvailable
	}

	err := ctrl.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&room).Error; err != nil {
			return err
		}
		return tx.Model(&models.RoomType{}).Where("id = ?", payload.RoomTypeID).
			Update("total_rooms", gorm.Expr("total_rooms + 1")).Error
	})
	if err != nil {
		respondError(c, ctrl.Log, err)
		return
	}
	utils.JSONSuccess(c, http.StatusCreated, room)
}

func (ctrl *RoomController) UpdateRoom(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	var room models.Room
	if err := ctrl.DB.First(&room, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.JSONError(c, http.StatusNotFound, "room not found")
			return
		}
		respondError(c, ctrl.Log, err)
		return
	}

	var payload roomPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	updates := map[string]interface{}{}
	if strings.TrimSpace(payload.RoomNumber) != "" {
		updates["room_number"] = strings.TrimSpace(payload.RoomNumber)
	}
	if payload.Floor != "" {
		updates["floor"] = payload.Floor
	}
	if payload.Status != "" {
		updates["status"] = payload.Status
		updates["available_for_booking"] = payload.Status == models.RoomStatusAvailable
	}

	if len(updates) > 0 {
		if err := ctrl.DB.Model(&room).Updates(updates).Error; err != nil {
			respondError(c, ctrl.Log, err)
			return
		}
	}
	utils.JSONSuccess(c, http.StatusOK, room)
}

func (ctrl *RoomController) DeleteRoom(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	var room models.Room
	if err := ctrl.DB.First(&room, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.JSONError(c, http.StatusNotFound, "room not found")
			return
		}
		respondError(c, ctrl.Log, err)
		return
	}

	err := ctrl.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&room).Error; err != nil {
			return err
		}
		return tx.Model(&models.RoomType{}).
			Where("id = ? AND total_rooms > 0", room.RoomTypeID).
			Update("total_rooms", gorm.Expr("total_rooms - 1")).Error
	})
	if err != nil {
		respondError(c, ctrl.Log, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, gin.H{"message": "room deleted"})
}
