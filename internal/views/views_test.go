package views

import (
	"encoding/json"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/smp-planner/spmp/internal/i18n"
	"github.com/smp-planner/spmp/internal/plan"
	"github.com/smp-planner/spmp/internal/state"
)

const samplePlan = `{
	"project_id": 9,
	"project_name": "Team Tracker",
	"methodology": "Scrum",
	"wbs": {
		"project_name": "Team Tracker",
		"phases": [
			{"id": "1", "name": "Discovery", "description": "Understand users", "tasks": [
				{"id": "1.1", "name": "Stakeholder interviews", "effort_days": 3, "resource": "PM"},
				{"id": "1.2", "name": "Backlog grooming", "effort_days": 6, "dependencies": ["1.1"]}
			]},
			{"id": "2", "name": "Build", "tasks": [
				{"id": "2.1", "name": "Mobile client", "effort_days": 15}
			]}
		]
	},
	"gantt": {"gantt_tasks": [
		{"id": "a", "name": "Interviews", "start_date": "2025-01-01", "end_date": "2025-01-04", "progress": 50},
		{"id": "b", "name": "Client", "start_date": "2025-01-05", "end_date": "2025-01-20", "dependencies": ["a"]},
		{"id": "c", "name": "Release", "start_date": "2025-01-20", "end_date": "2025-01-20", "type": "milestone"},
		{"id": "d", "name": "Broken", "start_date": "someday", "end_date": "2025-01-20"}
	]},
	"risks": [
		{"id": 1, "title": "Scope creep", "description": "Features keep growing", "category": "Scope", "probability": "High", "impact": "متوسط", "mitigation": "Freeze scope per sprint"},
		{"id": 2, "description": "Key developer leaves", "probability": 2, "impact": null}
	]
}`

func samplePlanData(t *testing.T) *plan.ProjectData {
	t.Helper()
	data, serr := plan.NormalizeFullPlan(http.StatusOK, []byte(samplePlan), "A task tracker for teams")
	if serr != nil {
		t.Fatalf("normalize sample: %v", serr)
	}
	return data
}

func TestNoDataAffordances(t *testing.T) {
	opts := Options{Locale: i18n.English}
	emptyWBS, _ := plan.NormalizeFullPlan(http.StatusOK, []byte(`{"wbs": {"phases": []}, "gantt": {"gantt_tasks": []}}`), "x")
	cases := []struct {
		name string
		got  string
		want string
	}{
		{"nil project wbs", RenderWBS(nil, opts), "No WBS data yet"},
		{"absent wbs", RenderWBS(&plan.ProjectData{}, opts), "No WBS data yet"},
		{"empty phases", RenderWBS(emptyWBS, opts), "No WBS data yet"},
		{"nil project gantt", RenderGantt(nil, opts), "No schedule data yet"},
		{"empty gantt list", RenderGantt(emptyWBS, opts), "No schedule data yet"},
		{"unparseable gantt", RenderGantt(&plan.ProjectData{Gantt: json.RawMessage(`{"tasks": [{"start": "x", "end": "y"}]}`)}, opts), "No schedule data yet"},
		{"no risks", RenderRisks(emptyWBS, opts), "No risks identified yet"},
		{"nil risks", RenderRisks(nil, opts), "No risks identified yet"},
		{"no chat", RenderChat(nil, opts), "No messages yet"},
		{"no project card", RenderProjectCard(nil, opts), "No plan generated yet"},
	}
	for _, c := range cases {
		if !strings.Contains(c.got, c.want) {
			t.Errorf("%s: got %q, want it to contain %q", c.name, c.got, c.want)
		}
	}
}

func TestRenderWBS(t *testing.T) {
	out := RenderWBS(samplePlanData(t), Options{Locale: i18n.English})
	for _, want := range []string{
		"Team Tracker",
		"1 Discovery",
		"Understand users",
		"1.1 Stakeholder interviews",
		"[3 days · short]",
		"[6 days · medium]",
		"[15 days · long]",
		"Resource: PM",
		"Depends on: 1.1",
		"2 Build",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("wbs output missing %q:\n%s", want, out)
		}
	}
}

func TestRenderGantt(t *testing.T) {
	out := RenderGantt(samplePlanData(t), Options{Locale: i18n.English, Width: 60})
	for _, want := range []string{"2025-01-01 → 2025-01-20", "Interviews", "Client", "after Interviews", "◆", "milestone"} {
		if !strings.Contains(out, want) {
			t.Errorf("gantt output missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "Broken") {
		t.Error("task with unparseable start must be excluded")
	}
}

func TestRenderRisks(t *testing.T) {
	out := RenderRisks(samplePlanData(t), Options{Locale: i18n.English, Width: 120})
	for _, want := range []string{"Scope creep", "Key developer leaves", "High", "متوسط", "Freeze scope per sprint", "Total risks: 2", "Probability"} {
		if !strings.Contains(out, want) {
			t.Errorf("risk output missing %q:\n%s", want, out)
		}
	}

	arabic := RenderRisks(samplePlanData(t), Options{Locale: i18n.Arabic})
	if !strings.Contains(arabic, "الاحتمالية") {
		t.Errorf("arabic header missing:\n%s", arabic)
	}
}

func TestRenderChat(t *testing.T) {
	at := time.Date(2025, 1, 1, 9, 30, 0, 0, time.Local)
	msgs := []plan.ChatMessage{
		plan.NewChatMessage(plan.RoleUser, "What is the critical path?", at),
		plan.NewChatMessage(plan.RoleAssistant, "The longest chain of dependent tasks.", at),
	}
	out := RenderChat(msgs, Options{Locale: i18n.English, Width: 60})
	for _, want := range []string{"You:", "Assistant:", "09:30", "critical path", "dependent tasks"} {
		if !strings.Contains(out, want) {
			t.Errorf("chat output missing %q:\n%s", want, out)
		}
	}
	if strings.Index(out, "You:") > strings.Index(out, "Assistant:") {
		t.Error("messages must render in transcript order")
	}
}

func TestRenderStatusPrecedence(t *testing.T) {
	opts := Options{Locale: i18n.English}
	tests := []struct {
		name  string
		state state.State
		want  string
		avoid string
	}{
		{"idle", state.State{}, "", ""},
		{"loading wins", state.State{Loading: true, Error: plan.ErrParse, Message: "m"}, "Analyzing", "Analysis error"},
		{"error", state.State{Error: plan.ErrScopeTooShort, Message: "add detail", HTTPStatus: 400}, "too short", ""},
		{"message only", state.State{Message: "Could not connect"}, "Could not connect", "Analysis error"},
		{"free text kind", state.State{Error: "Please provide a question"}, "Please provide a question", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := RenderStatus(tt.state, opts)
			if tt.want == "" && out != "" {
				t.Errorf("expected empty status, got %q", out)
			}
			if !strings.Contains(out, tt.want) {
				t.Errorf("status %q missing %q", out, tt.want)
			}
			if tt.avoid != "" && strings.Contains(out, tt.avoid) {
				t.Errorf("status %q should not contain %q", out, tt.avoid)
			}
		})
	}

	out := RenderStatus(state.State{Error: plan.ErrScopeTooShort, Message: "add detail", HTTPStatus: 400}, opts)
	if !strings.Contains(out, "add detail") || !strings.Contains(out, "HTTP 400") {
		t.Errorf("all three error signals should be visible: %q", out)
	}
}

func TestRenderProjectCard(t *testing.T) {
	out := RenderProjectCard(samplePlanData(t), Options{Locale: i18n.English})
	for _, want := range []string{"Team Tracker", "Scrum", "ID: 9", "2 phases · 3 tasks · 2 risks", "A task tracker for teams"} {
		if !strings.Contains(out, want) {
			t.Errorf("card missing %q:\n%s", want, out)
		}
	}
}

func TestRenderersDoNotMutate(t *testing.T) {
	data := samplePlanData(t)
	before := data.Clone()
	opts := Options{Locale: i18n.Arabic, Width: 40}
	_ = RenderWBS(data, opts)
	_ = RenderGantt(data, opts)
	_ = RenderRisks(data, opts)
	_ = RenderProjectCard(data, opts)

	a, _ := json.Marshal(before)
	b, _ := json.Marshal(data)
	if string(a) != string(b) {
		t.Error("renderer mutated project data")
	}
}

func TestRenderPlan(t *testing.T) {
	opts := Options{Locale: i18n.English}
	out := RenderPlan(samplePlanData(t), opts)
	card := strings.Index(out, "2 phases · 3 tasks · 2 risks")
	wbs := strings.Index(out, "1 Discovery")
	schedule := strings.Index(out, "2025-01-01 → 2025-01-20")
	if card < 0 || wbs < card || schedule < wbs {
		t.Errorf("sections out of order:\n%s", out)
	}
	if !strings.Contains(RenderPlan(nil, opts), "No plan generated yet") {
		t.Error("nil plan should show the empty card")
	}
}
