package generation

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/yungbote/prompt-battle/internal/domain"
	"github.com/yungbote/prompt-battle/internal/platform/dbctx"
	"github.com/yungbote/prompt-battle/internal/platform/logger"
)

// GenerationRecordRepo is the write-once table of stage results. Writing an
// existing key is rejected with ErrDuplicateKey, never treated as a no-op.
type GenerationRecordRepo interface {
	Create(dbc dbctx.Context, rec *types.GenerationRecord) error
	GetByID(dbc dbctx.Context, id string) (*types.GenerationRecord, error)
	GetByIDs(dbc dbctx.Context, ids []string) ([]*types.GenerationRecord, error)
	ListByCallID(dbc dbctx.Context, callID string) ([]*types.GenerationRecord, error)
	DeleteOlderThan(dbc dbctx.Context, cutoff time.Time) (int64, error)
}

type generationRecordRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewGenerationRecordRepo(db *gorm.DB, baseLog *logger.Logger) GenerationRecordRepo {
	return &generationRecordRepo{
		db:  db,
		log: baseLog.With("repo", "GenerationRecordRepo"),
	}
}

func (r *generationRecordRepo) tx(dbc dbctx.Context) *gorm.DB {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.WithContext(dbc.Ctx)
}

func (r *generationRecordRepo) Create(dbc dbctx.Context, rec *types.GenerationRecord) error {
	if rec == nil || strings.TrimSpace(rec.ID) == "" {
		return fmt.Errorf("generation record id required")
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}
	// ON CONFLICT DO NOTHING keeps duplicate detection identical across
	// sqlite and postgres without relying on driver error translation.
	res := r.tx(dbc).Clauses(clause.OnConflict{DoNothing: true}).Create(rec)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%w: %s", types.ErrDuplicateKey, rec.ID)
	}
	return nil
}

func (r *generationRecordRepo) GetByID(dbc dbctx.Context, id string) (*types.GenerationRecord, error) {
	var rec types.GenerationRecord
	err := r.tx(dbc).Where("id = ?", id).Take(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: %s", types.ErrNotFound, id)
	}
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

func (r *generationRecordRepo) GetByIDs(dbc dbctx.Context, ids []string) ([]*types.GenerationRecord, error) {
	var out []*types.GenerationRecord
	if len(ids) == 0 {
		return out, nil
	}
	if err := r.tx(dbc).Where("id IN ?", ids).Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *generationRecordRepo) ListByCallID(dbc dbctx.Context, callID string) ([]*types.GenerationRecord, error) {
	var out []*types.GenerationRecord
	if strings.TrimSpace(callID) == "" {
		return out, nil
	}
	err := r.tx(dbc).
		Where("call_id = ?", callID).
		Order("created_at ASC").
		Find(&out).Error
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *generationRecordRepo) DeleteOlderThan(dbc dbctx.Context, cutoff time.Time) (int64, error) {
	res := r.tx(dbc).Where("created_at < ?", cutoff).Delete(&types.GenerationRecord{})
	if res.Error != nil {
		return 0, res.Error
	}
	if res.RowsAffected > 0 {
		r.log.Info("Deleted expired generation records", "count", res.RowsAffected, "cutoff", cutoff)
	}
	return res.RowsAffected, nil
}
