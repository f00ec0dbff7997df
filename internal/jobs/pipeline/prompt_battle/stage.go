package prompt_battle

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"gorm.io/datatypes"

	"github.com/yungbote/prompt-battle/internal/clients/llm"
	types "github.com/yungbote/prompt-battle/internal/domain"
	"github.com/yungbote/prompt-battle/internal/platform/dbctx"
	"github.com/yungbote/prompt-battle/internal/prompts"
	"github.com/yungbote/prompt-battle/internal/realtime"
)

const persistTimeout = 10 * time.Second

var errNotStored = errors.New("stage record not stored")

type stageCall struct {
	callID    string
	sessionID string
}

type stageMeta struct {
	PromptName        string `json:"prompt_name,omitempty"`
	PromptFingerprint string `json:"prompt_fingerprint,omitempty"`
	Timeout           bool   `json:"timeout,omitempty"`
}

// runStage generates one stage and persists its record, failed or not. The
// error is non-nil when the stage did not produce a stored success.
func (p *Pipeline) runStage(ctx context.Context, call stageCall, st types.Stage, in prompts.Input, input string) (*types.GenerationRecord, error) {
	ctx, span := otel.Tracer("prompt-battle/pipeline").Start(ctx, "stage."+string(st))
	defer span.End()
	span.SetAttributes(
		attribute.String("call_id", call.callID),
		attribute.String("stage", string(st)),
	)

	prompt, err := p.catalog.Build(st, in, p.models)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return p.settle(p.persist(ctx, p.failedRecord(call, st, input, err.Error(), nil)))
	}
	meta := &stageMeta{PromptName: prompt.Name, PromptFingerprint: prompt.Fingerprint()}

	start := time.Now()
	out, err := p.generate(ctx, prompt)
	elapsed := time.Since(start)
	if err != nil {
		msg := err.Error()
		if errors.Is(err, context.DeadlineExceeded) {
			msg = "timeout"
			meta.Timeout = true
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, msg)
		p.log.Warn("stage generation failed", "call_id", call.callID, "stage", st, "model", prompt.Model, "error", err)
		rec := p.failedRecord(call, st, input, msg, meta)
		rec.Model = prompt.Model
		rec.DurationMS = elapsed.Milliseconds()
		return p.settle(p.persist(ctx, rec))
	}

	rec := p.baseRecord(call, st, input, meta)
	rec.Status = types.StatusSucceeded
	rec.Output = out
	rec.Model = prompt.Model
	rec.DurationMS = elapsed.Milliseconds()
	p.log.Debug("stage generated", "call_id", call.callID, "stage", st, "model", prompt.Model, "duration_ms", rec.DurationMS)
	return p.settle(p.persist(ctx, rec))
}

// settle folds a stored failure into the error return.
func (p *Pipeline) settle(rec *types.GenerationRecord, err error) (*types.GenerationRecord, error) {
	if err == nil && rec.Failed() {
		err = fmt.Errorf("%s: %s", rec.Stage, rec.Error)
	}
	return rec, err
}

// generate calls the model under the per-stage deadline. A panic in the
// client is turned into an error.
func (p *Pipeline) generate(ctx context.Context, prompt prompts.Prompt) (out string, err error) {
	if p.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	out, err = p.llm.Generate(ctx, llm.Request{System: prompt.System, User: prompt.User, Model: prompt.Model})
	if ctxErr := ctx.Err(); ctxErr != nil {
		err = ctxErr
	}
	return out, err
}

func (p *Pipeline) baseRecord(call stageCall, st types.Stage, input string, meta *stageMeta) *types.GenerationRecord {
	rec := &types.GenerationRecord{
		ID:     types.RecordKey(call.callID, st),
		CallID: call.callID,
		Stage:  string(st),
		Input:  input,
	}
	if call.sessionID != "" {
		sid := call.sessionID
		rec.SessionID = &sid
	}
	if meta != nil {
		if raw, err := json.Marshal(meta); err == nil {
			rec.Meta = datatypes.JSON(raw)
		}
	}
	return rec
}

func (p *Pipeline) failedRecord(call stageCall, st types.Stage, input, msg string, meta *stageMeta) *types.GenerationRecord {
	rec := p.baseRecord(call, st, input, meta)
	rec.Status = types.StatusFailed
	rec.Error = msg
	return rec
}

// persist writes rec, then mirrors it into the session slot and the SSE
// channel. On a duplicate key the stored record wins. When the write fails
// for any other reason, one failed marker is written in its place and
// errNotStored is returned; the slot is rejected either way.
func (p *Pipeline) persist(ctx context.Context, rec *types.GenerationRecord) (*types.GenerationRecord, error) {
	wctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), persistTimeout)
	defer cancel()
	dbc := dbctx.New(wctx)

	stored, err := p.store(dbc, rec)
	if err == nil {
		p.publish(wctx, stored)
		return stored, nil
	}
	p.log.Error("persist stage record failed", "call_id", rec.CallID, "stage", rec.Stage, "error", err)

	marker := *rec
	marker.Status = types.StatusFailed
	marker.Output = ""
	marker.Error = PersistFailed
	out, merr := p.store(dbc, &marker)
	if merr != nil {
		p.log.Error("persist failure marker failed", "call_id", rec.CallID, "stage", rec.Stage, "error", merr)
		out = &marker
	}
	p.publish(wctx, out)
	if !out.Failed() {
		// another writer stored the stage first
		return out, nil
	}
	return out, fmt.Errorf("%w: %v", errNotStored, err)
}

func (p *Pipeline) store(dbc dbctx.Context, rec *types.GenerationRecord) (*types.GenerationRecord, error) {
	err := p.records.Create(dbc, rec)
	if err == nil {
		return rec, nil
	}
	if !errors.Is(err, types.ErrDuplicateKey) {
		return nil, err
	}
	p.log.Warn("stage record already exists", "call_id", rec.CallID, "stage", rec.Stage)
	if existing, gerr := p.records.GetByID(dbc, rec.ID); gerr == nil {
		return existing, nil
	}
	return rec, nil
}

func (p *Pipeline) publish(ctx context.Context, rec *types.GenerationRecord) {
	st := rec.StageName()
	if p.sessions != nil {
		if slot, ok := p.sessions.SlotFor(rec.CallID, st); ok {
			if rec.Failed() {
				slot.Reject(errors.New(rec.Error))
			} else {
				slot.Resolve(rec.Output)
			}
		}
	}
	if p.emit != nil {
		p.emit.Emit(ctx, realtime.SSEMessage{
			Channel: rec.ID,
			Event:   realtime.SSEEventStageCompleted,
			Data: realtime.StagePayload{
				CallID: rec.CallID,
				Stage:  rec.Stage,
				Status: rec.Status,
				Output: rec.Output,
				Error:  rec.Error,
			},
		})
	}
}

func (p *Pipeline) exists(ctx context.Context, callID string, st types.Stage) bool {
	_, err := p.records.GetByID(dbctx.New(context.WithoutCancel(ctx)), types.RecordKey(callID, st))
	return err == nil
}
