package services

import (
	"context"
	"errors"
	"testing"
	"time"

	types "github.com/yungbote/prompt-battle/internal/domain"
	"github.com/yungbote/prompt-battle/internal/realtime"
)

type awaitResult struct {
	view StageView
	err  error
}

func awaitAsync(svc OutputMonitorService, ctx context.Context, callID string, st types.Stage) <-chan awaitResult {
	out := make(chan awaitResult, 1)
	go func() {
		v, err := svc.Await(ctx, callID, st)
		out <- awaitResult{v, err}
	}()
	return out
}

func waitResult(t *testing.T, ch <-chan awaitResult) awaitResult {
	t.Helper()
	select {
	case r := <-ch:
		return r
	case <-time.After(3 * time.Second):
		t.Fatalf("Await did not return")
	}
	return awaitResult{}
}

func waitForSubscriber(t *testing.T, hub *realtime.SSEHub, channel string) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for hub.Subscribers(channel) == 0 {
		if time.Now().After(deadline) {
			t.Fatalf("no subscriber on %s", channel)
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestAwaitReturnsStoredRecordImmediately(t *testing.T) {
	env := newTestEnv(t)
	hub := realtime.NewSSEHub(env.log)
	svc := NewOutputMonitorService(env.log, hub, env.records, env.sessions, time.Hour, time.Minute)
	env.put(t, "m1", types.StageBaselineOutput, types.StatusSucceeded, "out", "")

	for i := 0; i < 2; i++ {
		start := time.Now()
		v, err := svc.Await(context.Background(), "m1", types.StageBaselineOutput)
		if err != nil || v.Output != "out" {
			t.Fatalf("attempt %d: %+v %v", i, v, err)
		}
		if time.Since(start) > time.Second {
			t.Fatalf("delivered stage should return immediately")
		}
	}
	if hub.Subscribers(types.RecordKey("m1", types.StageBaselineOutput)) != 0 {
		t.Fatalf("subscription leaked")
	}
}

func TestAwaitWakesOnHubMessage(t *testing.T) {
	env := newTestEnv(t)
	hub := realtime.NewSSEHub(env.log)
	svc := NewOutputMonitorService(env.log, hub, env.records, env.sessions, time.Hour, time.Minute)

	res := awaitAsync(svc, context.Background(), "m2", types.StageChallengerOutput)
	channel := types.RecordKey("m2", types.StageChallengerOutput)
	waitForSubscriber(t, hub, channel)
	hub.Broadcast(realtime.SSEMessage{
		Channel: channel,
		Event:   realtime.SSEEventStageCompleted,
		Data:    realtime.StagePayload{CallID: "m2", Stage: string(types.StageChallengerOutput), Status: types.StatusSucceeded, Output: "pushed"},
	})
	r := waitResult(t, res)
	if r.err != nil || r.view.Output != "pushed" {
		t.Fatalf("got %+v %v", r.view, r.err)
	}
}

func TestAwaitWakesOnSlot(t *testing.T) {
	env := newTestEnv(t)
	svc := NewOutputMonitorService(env.log, nil, env.records, env.sessions, time.Hour, time.Minute)
	env.sessions.BeginCall("sid", "m3")

	res := awaitAsync(svc, context.Background(), "m3", types.StageBaselinePrompt)
	time.Sleep(20 * time.Millisecond)
	slot, _ := env.sessions.SlotFor("m3", types.StageBaselinePrompt)
	slot.Resolve("slot-value")
	r := waitResult(t, res)
	if r.err != nil || r.view.Output != "slot-value" {
		t.Fatalf("got %+v %v", r.view, r.err)
	}
}

func TestAwaitPollsStore(t *testing.T) {
	env := newTestEnv(t)
	svc := NewOutputMonitorService(env.log, nil, env.records, nil, 10*time.Millisecond, time.Minute)

	res := awaitAsync(svc, context.Background(), "m4", types.StageBaselinePrompt)
	time.Sleep(30 * time.Millisecond)
	env.put(t, "m4", types.StageBaselinePrompt, types.StatusFailed, "", "boom")
	r := waitResult(t, res)
	if r.err != nil || !r.view.Failed() || r.view.Error != "boom" {
		t.Fatalf("got %+v %v", r.view, r.err)
	}
}

func TestAwaitTimeoutAndCancel(t *testing.T) {
	env := newTestEnv(t)
	svc := NewOutputMonitorService(env.log, nil, env.records, nil, 10*time.Millisecond, 40*time.Millisecond)

	v, err := svc.Await(context.Background(), "m5", types.StageBaselinePrompt)
	if !errors.Is(err, types.ErrTimeout) || v.Error != "timeout" {
		t.Fatalf("expected timeout, got %+v %v", v, err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := svc.Await(ctx, "m5", types.StageBaselinePrompt); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected canceled, got %v", err)
	}
}

func TestAwaitValidatesInput(t *testing.T) {
	env := newTestEnv(t)
	svc := NewOutputMonitorService(env.log, nil, env.records, nil, 0, 0)
	if _, err := svc.Await(context.Background(), "", types.StageBaselinePrompt); !errors.Is(err, types.ErrMissingParameter) {
		t.Fatalf("expected missing parameter, got %v", err)
	}
	if _, err := svc.Await(context.Background(), "x", types.Stage("bogus")); !errors.Is(err, types.ErrInvalidStage) {
		t.Fatalf("expected invalid stage, got %v", err)
	}
}
