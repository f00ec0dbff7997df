package presentation

import (
	"bytes"
	"html/template"
	"strings"

	types "github.com/yungbote/prompt-battle/internal/domain"
	"github.com/yungbote/prompt-battle/internal/services"
)

const (
	InputID        = "user-input"
	GradeStatusID  = "grade-status"
	PrimaryGroupID = "primary-outputs"
	DerivedGroupID = "derived-outputs"
)

var (
	groupTmpl = template.Must(template.New("group").Parse(
		`<div id="{{.ID}}" class="output-group"` +
			`{{if .Poll}} hx-get="{{.Poll.URL}}" hx-trigger="load delay:{{.Poll.AfterMS}}ms" hx-swap="outerHTML"{{end}}` +
			`{{if .OOB}} hx-swap-oob="true"{{end}}>` +
			`{{range .Boxes}}<div id="{{.ContentID}}" class="output-box-content">{{.Body}}</div>{{end}}</div>`))

	streamGroupTmpl = template.Must(template.New("stream").Parse(
		`<div id="{{.ID}}" class="output-group" hx-swap-oob="true">` +
			`{{range .Boxes}}<div id="{{.ContentID}}" class="output-box-content" hx-ext="sse" sse-connect="{{.URL}}" sse-swap="{{.Event}}" sse-close="{{.Event}}" hx-swap="innerHTML">{{.Body}}</div>{{end}}</div>`))

	bodyTmpl = template.Must(template.New("body").Parse(
		`{{if eq .State "done"}}<div class="markdown">{{.HTML}}</div>` +
			`{{else if eq .State "failed"}}<p class="generation-failed">Generation failed: {{.Error}}</p>` +
			`{{else}}<p class="generation-pending">Generating...</p>{{end}}`))

	boxContentTmpl = template.Must(template.New("box").Parse(
		`<div id="{{.ContentID}}" class="output-box-content"` +
			`{{if .Poll}} hx-get="{{.Poll.URL}}" hx-trigger="load delay:{{.Poll.AfterMS}}ms" hx-swap="outerHTML"{{end}}>{{.Body}}</div>`))

	clearInputTmpl = template.Must(template.New("clear").Parse(
		`<input type="text" name="user_input" id="{{.ID}}" placeholder="{{.Placeholder}}" hx-swap-oob="true">`))

	errorTmpl = template.Must(template.New("error").Parse(
		`<div id="{{.ID}}" class="error">{{.Message}}</div>`))

	gradeAckTmpl = template.Must(template.New("grade").Parse(
		`<div id="{{.ID}}" class="grade-ack">Recorded: {{.Label}}</div>`))
)

type boxView struct {
	ContentID string
	Body      template.HTML
	URL       string
	Event     string
}

func (a *Assembler) group(id string, vs services.ViewState, stages []types.Stage, next NextAction, oob bool) Fragment {
	boxes := make([]boxView, 0, len(stages))
	for _, st := range stages {
		box := BoxForStage(st)
		boxes = append(boxes, boxView{ContentID: contentID(box), Body: a.boxBody(vs.Stage(st))})
	}
	var poll *NextAction
	if next.Kind == ActionPoll {
		poll = &next
	}
	return Fragment{ID: id, OOB: oob, HTML: execute(groupTmpl, map[string]any{
		"ID":    id,
		"Poll":  poll,
		"OOB":   oob,
		"Boxes": boxes,
	})}
}

func (a *Assembler) streamGroup(vs services.ViewState, streams []Stream) Fragment {
	boxes := make([]boxView, 0, len(streams))
	for _, s := range streams {
		st := types.Stage(s.Stage)
		box := BoxForStage(st)
		boxes = append(boxes, boxView{
			ContentID: contentID(box),
			Body:      a.boxBody(vs.Stage(st)),
			URL:       s.URL,
			Event:     s.Event,
		})
	}
	return Fragment{ID: DerivedGroupID, OOB: true, HTML: execute(streamGroupTmpl, map[string]any{
		"ID":    DerivedGroupID,
		"Boxes": boxes,
	})}
}

func (a *Assembler) boxContent(box string, sv services.StageView, next NextAction) template.HTML {
	var poll *NextAction
	if next.Kind == ActionPoll {
		poll = &next
	}
	return execute(boxContentTmpl, map[string]any{
		"ContentID": contentID(box),
		"Poll":      poll,
		"Body":      a.boxBody(sv),
	})
}

func (a *Assembler) boxBody(sv services.StageView) template.HTML {
	data := map[string]any{"State": "pending"}
	switch {
	case sv.Succeeded():
		data["State"] = "done"
		data["HTML"] = a.markdown(sv.Output)
	case sv.Failed():
		data["State"] = "failed"
		data["Error"] = sv.Error
	}
	return execute(bodyTmpl, data)
}

func execute(t *template.Template, data any) template.HTML {
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return template.HTML(template.HTMLEscapeString(err.Error()))
	}
	return template.HTML(strings.TrimSpace(buf.String()))
}
