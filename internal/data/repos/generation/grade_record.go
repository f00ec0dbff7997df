package generation

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/prompt-battle/internal/domain"
	"github.com/yungbote/prompt-battle/internal/platform/dbctx"
	"github.com/yungbote/prompt-battle/internal/platform/logger"
)

// GradeRecordRepo is an append-only audit log of grading decisions.
type GradeRecordRepo interface {
	Create(dbc dbctx.Context, rec *types.GradeRecord) error
	ListBySession(dbc dbctx.Context, sessionID string) ([]*types.GradeRecord, error)
}

type gradeRecordRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewGradeRecordRepo(db *gorm.DB, baseLog *logger.Logger) GradeRecordRepo {
	return &gradeRecordRepo{
		db:  db,
		log: baseLog.With("repo", "GradeRecordRepo"),
	}
}

func (r *gradeRecordRepo) Create(dbc dbctx.Context, rec *types.GradeRecord) error {
	if rec == nil {
		return fmt.Errorf("grade record required")
	}
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if rec.ID == uuid.Nil {
		rec.ID = uuid.New()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}
	return transaction.WithContext(dbc.Ctx).Create(rec).Error
}

func (r *gradeRecordRepo) ListBySession(dbc dbctx.Context, sessionID string) ([]*types.GradeRecord, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var out []*types.GradeRecord
	if sessionID == "" {
		return out, nil
	}
	err := transaction.WithContext(dbc.Ctx).
		Where("session_id = ?", sessionID).
		Order("created_at ASC").
		Find(&out).Error
	if err != nil {
		return nil, err
	}
	return out, nil
}
