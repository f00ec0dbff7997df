package generation

import (
	"time"

	"gorm.io/datatypes"
)

const (
	StatusSucceeded = "succeeded"
	StatusFailed    = "failed"
)

// GenerationRecord is the write-once result of one stage of one call.
// A failed record carries Error and an empty Output.
type GenerationRecord struct {
	ID         string         `gorm:"column:id;primaryKey;size:191" json:"id"`
	CallID     string         `gorm:"column:call_id;not null;index" json:"call_id"`
	SessionID  *string        `gorm:"column:session_id;index" json:"session_id,omitempty"`
	Stage      string         `gorm:"column:stage;not null;index" json:"stage"`
	Status     string         `gorm:"column:status;not null;index" json:"status"`
	Error      string         `gorm:"column:error;type:text" json:"error,omitempty"`
	Input      string         `gorm:"column:input;type:text" json:"input"`
	Output     string         `gorm:"column:output;type:text" json:"output"`
	Model      string         `gorm:"column:model" json:"model,omitempty"`
	DurationMS int64          `gorm:"column:duration_ms;not null;default:0" json:"duration_ms"`
	Meta       datatypes.JSON `gorm:"column:meta" json:"meta,omitempty"`
	CreatedAt  time.Time      `gorm:"not null;index" json:"created_at"`
}

func (GenerationRecord) TableName() string { return "generation_record" }

func (r *GenerationRecord) Failed() bool {
	return r != nil && r.Status == StatusFailed
}

func (r *GenerationRecord) StageName() Stage {
	if r == nil {
		return ""
	}
	return Stage(r.Stage)
}
