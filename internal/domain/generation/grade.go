package generation

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

type Grade string

const (
	GradeLeft  Grade = "left"
	GradeRight Grade = "right"
	GradeTie   Grade = "tie"
)

// ParseGrade accepts left/right/tie and the button values of the page
// (output-1, output-2).
func ParseGrade(raw string) (Grade, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "left", "output-1", "output_1":
		return GradeLeft, nil
	case "right", "output-2", "output_2":
		return GradeRight, nil
	case "tie":
		return GradeTie, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidSelection, raw)
	}
}

// GradeRecord is the audit entry produced by the grading action.
type GradeRecord struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	CallID    string    `gorm:"column:call_id;not null;index" json:"call_id"`
	SessionID string    `gorm:"column:session_id;index" json:"session_id,omitempty"`
	Grade     Grade     `gorm:"column:grade;not null" json:"grade"`
	Output1   string    `gorm:"column:output_1;type:text" json:"output_1"`
	Output2   string    `gorm:"column:output_2;type:text" json:"output_2"`
	CreatedAt time.Time `gorm:"column:created_at;not null;index" json:"timestamp"`
}

func (GradeRecord) TableName() string { return "grade_record" }
