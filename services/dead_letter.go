package services

import (
	"encoding/json"

	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"hoteldesk-backend/models"
)

// writeDeadLetter records a failed post-commit side effect in its own write so
// the record survives the failure it describes. It never returns an error; a
// dead-letter write that itself fails is only logged.
func writeDeadLetter(db *gorm.DB, log *zap.SugaredLogger, kind, refType string, refID uint, payload interface{}, cause error) {
	var raw datatypes.JSON
	if payload != nil {
		if b, err := json.Marshal(payload); err == nil {
			raw = datatypes.JSON(b)
		}
	}

	dl := models.DeadLetter{
		Kind:          kind,
		ReferenceType: refType,
		ReferenceID:   refID,
		Payload:       raw,
		Error:         cause.Error(),
	}
	if err := db.Create(&dl).Error; err != nil {
		log.Errorw("failed to write dead letter",
			"kind", kind, "reference_type", refType, "reference_id", refID,
			"original_error", cause, "error", err)
		return
	}
	log.Warnw("side effect dead-lettered",
		"kind", kind, "reference_type", refType, "reference_id", refID, "error", cause)
}

// ListDeadLetters returns unresolved dead letters, newest first.
func ListDeadLetters(db *gorm.DB, limit int) ([]models.DeadLetter, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	var out []models.DeadLetter
	if err := db.Where("resolved_at IS NULL").Order("created_at DESC").Limit(limit).Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}
