package runtime

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/yungbote/prompt-battle/internal/platform/ctxutil"
)

// Job is one unit of in-memory work. It lives only as long as the process.
type Job struct {
	ID         uuid.UUID
	Type       string
	CallID     string
	SessionID  string
	Payload    map[string]any
	TraceID    string
	RequestID  string
	EnqueuedAt time.Time
}

// NewJob stamps a job with an id and the trace data found on ctx.
func NewJob(ctx context.Context, jobType, callID, sessionID string, payload map[string]any) *Job {
	j := &Job{
		ID:         uuid.New(),
		Type:       jobType,
		CallID:     callID,
		SessionID:  sessionID,
		Payload:    payload,
		EnqueuedAt: time.Now().UTC(),
	}
	if td := ctxutil.GetTraceData(ctx); td != nil {
		j.TraceID = td.TraceID
		j.RequestID = td.RequestID
	}
	return j
}

/*
Context is the execution handle for a single job run.
	- Ctx: worker-scoped context (cancellation on shutdown), carrying the
	  submitting request's trace data
	- Job: the job being executed
Handlers report terminal failure through Fail so the worker can log it once.
*/
type Context struct {
	Ctx context.Context
	Job *Job

	failStage string
	failErr   error
}

func NewContext(ctx context.Context, job *Job) *Context {
	c := &Context{Ctx: ctx, Job: job}
	c.applyTraceData()
	return c
}

func (c *Context) applyTraceData() {
	if c == nil || c.Ctx == nil || c.Job == nil {
		return
	}
	if c.Job.TraceID == "" && c.Job.RequestID == "" {
		return
	}
	c.Ctx = ctxutil.WithTraceData(c.Ctx, &ctxutil.TraceData{
		TraceID:   c.Job.TraceID,
		RequestID: c.Job.RequestID,
	})
}

// Payload never returns nil.
func (c *Context) Payload() map[string]any {
	if c.Job == nil {
		return map[string]any{}
	}
	if c.Job.Payload == nil {
		c.Job.Payload = map[string]any{}
	}
	return c.Job.Payload
}

// PayloadString reads a payload field as a trimmed string ("" when absent).
func (c *Context) PayloadString(key string) string {
	v, ok := c.Payload()[key]
	if !ok || v == nil {
		return ""
	}
	return strings.TrimSpace(fmt.Sprint(v))
}

// Fail records the first terminal failure of the run.
func (c *Context) Fail(stage string, err error) {
	if c.failErr != nil || err == nil {
		return
	}
	c.failStage = stage
	c.failErr = err
}

// Failure returns the recorded failure, if any.
func (c *Context) Failure() (stage string, err error) {
	return c.failStage, c.failErr
}
