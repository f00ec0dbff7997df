package presentation

import (
	"bytes"
	"html/template"
	"net/url"
	"time"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	types "github.com/yungbote/prompt-battle/internal/domain"
	"github.com/yungbote/prompt-battle/internal/services"
)

type PanelKind string

const (
	PanelPrimary PanelKind = "primary"
	PanelDerived PanelKind = "derived"
	PanelBox     PanelKind = "box"
)

// Panel names the part of the page a response renders. Stage is set for
// PanelBox only.
type Panel struct {
	Kind  PanelKind
	Stage types.Stage
}

func PrimaryPanel() Panel { return Panel{Kind: PanelPrimary} }

func DerivedPanel() Panel { return Panel{Kind: PanelDerived} }

func BoxPanel(stage types.Stage) Panel { return Panel{Kind: PanelBox, Stage: stage} }

type ActionKind string

const (
	ActionPoll   ActionKind = "poll"
	ActionStop   ActionKind = "stop"
	ActionStream ActionKind = "stream"
)

type Stream struct {
	Stage string `json:"stage"`
	URL   string `json:"url"`
	Event string `json:"event"`
}

// NextAction tells the client what to do after applying the fragments.
type NextAction struct {
	Kind    ActionKind `json:"kind"`
	AfterMS int64      `json:"after_ms,omitempty"`
	URL     string     `json:"url,omitempty"`
	Streams []Stream   `json:"streams,omitempty"`
}

type Fragment struct {
	ID   string        `json:"id"`
	HTML template.HTML `json:"html"`
	OOB  bool          `json:"oob,omitempty"`
}

// Render is everything one response carries.
type Render struct {
	Fragments []Fragment `json:"fragments"`
	Next      NextAction `json:"next"`
	Trigger   string     `json:"trigger,omitempty"`
}

// TriggerOutputsLoaded fires once both primary outputs are on screen.
const TriggerOutputsLoaded = "outputs1and2Loaded"

// Routes the assembler points the client at.
const (
	RouteGenerations      = "/generations"
	RouteCheckGenerations = "/check_generations"
	RouteProcessBox       = "/process_additional_outputs"
	RouteOutputMonitor    = "/sse_output_monitor/"
)

// Assembler turns a ViewState into fragments. It performs no I/O and its
// output depends only on its inputs.
type Assembler struct {
	pollInterval time.Duration
	md           goldmark.Markdown
}

func New(pollInterval time.Duration) *Assembler {
	if pollInterval <= 0 {
		pollInterval = 500 * time.Millisecond
	}
	return &Assembler{
		pollInterval: pollInterval,
		md:           goldmark.New(goldmark.WithExtensions(extension.GFM)),
	}
}

func (a *Assembler) Assemble(vs services.ViewState, panel Panel) Render {
	switch panel.Kind {
	case PanelDerived:
		return a.derived(vs)
	case PanelBox:
		return a.box(vs, panel.Stage)
	default:
		return a.primary(vs)
	}
}

func (a *Assembler) primary(vs services.ViewState) Render {
	if !vs.AllTerminal(types.PrimaryStages) {
		next := a.poll(RouteGenerations, url.Values{"call_id": {vs.CallID}})
		return Render{
			Fragments: []Fragment{a.group(PrimaryGroupID, vs, types.PrimaryStages, next, false)},
			Next:      next,
		}
	}

	stop := NextAction{Kind: ActionStop}
	r := Render{
		Fragments: []Fragment{a.group(PrimaryGroupID, vs, types.PrimaryStages, stop, false)},
		Next:      stop,
	}
	switch {
	case vs.AllTerminal(types.DerivedStages):
		r.Fragments = append(r.Fragments, a.group(DerivedGroupID, vs, types.DerivedStages, stop, true))
	case primaryFailed(vs):
		// derived failure markers follow right behind; poll for them
		next := a.poll(RouteCheckGenerations, url.Values{"call_id": {vs.CallID}})
		r.Fragments = append(r.Fragments, a.group(DerivedGroupID, vs, types.DerivedStages, next, true))
	default:
		streams := make([]Stream, 0, len(types.DerivedStages))
		for _, st := range types.DerivedStages {
			streams = append(streams, Stream{
				Stage: string(st),
				URL:   RouteOutputMonitor + string(st) + "?" + url.Values{"call_id": {vs.CallID}}.Encode(),
				Event: st.EventName(),
			})
		}
		r.Fragments = append(r.Fragments, a.streamGroup(vs, streams))
		r.Next = NextAction{Kind: ActionStream, Streams: streams}
	}
	if !primaryFailed(vs) {
		r.Trigger = TriggerOutputsLoaded
	}
	return r
}

func primaryFailed(vs services.ViewState) bool {
	for _, st := range types.PrimaryStages {
		if vs.Stage(st).Failed() {
			return true
		}
	}
	return false
}

func (a *Assembler) derived(vs services.ViewState) Render {
	next := NextAction{Kind: ActionStop}
	if !vs.AllTerminal(types.DerivedStages) {
		next = a.poll(RouteCheckGenerations, url.Values{"call_id": {vs.CallID}})
	}
	return Render{
		Fragments: []Fragment{a.group(DerivedGroupID, vs, types.DerivedStages, next, false)},
		Next:      next,
	}
}

func (a *Assembler) box(vs services.ViewState, st types.Stage) Render {
	box := BoxForStage(st)
	sv := vs.Stage(st)
	next := NextAction{Kind: ActionStop}
	if !sv.Terminal() {
		next = a.poll(RouteProcessBox, url.Values{"box_id": {box}, "call_id": {vs.CallID}})
	}
	return Render{
		Fragments: []Fragment{{ID: contentID(box), HTML: a.boxContent(box, sv, next)}},
		Next:      next,
	}
}

// StageEvent renders the single payload of an SSE output monitor event.
func (a *Assembler) StageEvent(sv services.StageView) Fragment {
	box := BoxForStage(sv.Stage)
	return Fragment{ID: contentID(box), HTML: a.boxBody(sv)}
}

// ClearInput resets the submission field out of band.
func (a *Assembler) ClearInput(placeholder string) Fragment {
	return Fragment{ID: InputID, HTML: execute(clearInputTmpl, map[string]any{
		"ID":          InputID,
		"Placeholder": placeholder,
	}), OOB: true}
}

// ErrorFragment renders a user-visible error in the given target.
func (a *Assembler) ErrorFragment(targetID, message string) Fragment {
	return Fragment{ID: targetID, HTML: execute(errorTmpl, map[string]any{"ID": targetID, "Message": message})}
}

// GradeAck confirms a recorded grade.
func (a *Assembler) GradeAck(g types.Grade) Fragment {
	label := "tie"
	switch g {
	case types.GradeLeft:
		label = "output 1 is better"
	case types.GradeRight:
		label = "output 2 is better"
	}
	return Fragment{ID: GradeStatusID, HTML: execute(gradeAckTmpl, map[string]any{"ID": GradeStatusID, "Label": label})}
}

func (a *Assembler) poll(route string, q url.Values) NextAction {
	return NextAction{Kind: ActionPoll, AfterMS: a.pollInterval.Milliseconds(), URL: route + "?" + q.Encode()}
}

func (a *Assembler) markdown(src string) template.HTML {
	var buf bytes.Buffer
	if err := a.md.Convert([]byte(src), &buf); err != nil {
		return template.HTML(template.HTMLEscapeString(src))
	}
	return template.HTML(buf.String())
}
