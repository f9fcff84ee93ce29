package models

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	DeadLetterLedgerPosting = "ledger_posting"
	DeadLetterNotification  = "notification"
)

// DeadLetter records a failed best-effort side effect (post-commit ledger
// posting or notification) so it can be found and replayed by hand. Written in
// its own transaction so it survives the failure it describes.
type DeadLetter struct {
	gorm.Model

	Kind          string         `json:"kind" gorm:"type:varchar(32);index"`
	ReferenceType string         `json:"referenceType" gorm:"column:reference_type;type:varchar(32)"`
	ReferenceID   uint           `json:"referenceId" gorm:"column:reference_id;index"`
	Payload       datatypes.JSON `json:"payload,omitempty"`
	Error         string         `json:"error" gorm:"type:varchar(512)"`
	ResolvedAt    *time.Time     `json:"resolvedAt,omitempty" gorm:"column:resolved_at"`
}
