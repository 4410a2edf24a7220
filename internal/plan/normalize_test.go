package plan

import (
	"net/http"
	"testing"
)

func TestNormalizeFullPlanDefaults(t *testing.T) {
	// 缺少 project_name / methodology / risks 时应填充默认值
	bodies := []string{
		`{}`,
		`{"project_name": "", "methodology": ""}`,
		`{"project_name": null, "methodology": null, "risks": null}`,
	}
	for _, body := range bodies {
		data, serr := NormalizeFullPlan(http.StatusOK, []byte(body), "Build a task-tracking mobile app for teams")
		if serr != nil {
			t.Fatalf("body %s: unexpected error %v", body, serr)
		}
		if data.ProjectName != DefaultProjectName {
			t.Errorf("body %s: project name = %q, want %q", body, data.ProjectName, DefaultProjectName)
		}
		if data.Methodology != DefaultMethodology {
			t.Errorf("body %s: methodology = %q, want %q", body, data.Methodology, DefaultMethodology)
		}
		if data.Risks == nil || len(data.Risks) != 0 {
			t.Errorf("body %s: risks = %#v, want empty non-nil slice", body, data.Risks)
		}
		if data.WBS != nil || data.Gantt != nil {
			t.Errorf("body %s: absent wbs/gantt must stay absent", body)
		}
	}
}

func TestNormalizeFullPlanScopeFromRequest(t *testing.T) {
	body := `{"project_name": "Tracker", "project_scope": "something else entirely"}`
	data, serr := NormalizeFullPlan(http.StatusOK, []byte(body), "original request text")
	if serr != nil {
		t.Fatalf("unexpected error %v", serr)
	}
	if data.ProjectScope != "original request text" {
		t.Errorf("project scope = %q, want request text", data.ProjectScope)
	}
}

func TestNormalizeFullPlanStructuredErrorAnyStatus(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		kind    ErrorKind
		message string
	}{
		{"error in 200 body", http.StatusOK, `{"error": "SCOPE_TOO_SHORT", "message": "too short"}`, ErrScopeTooShort, "too short"},
		{"error in 400 body", http.StatusBadRequest, `{"error": "NOT_SOFTWARE_PROJECT"}`, ErrNotSoftwareProject, ""},
		{"parse error with raw response", http.StatusOK, `{"error": "PARSE_ERROR", "message": "bad json", "raw_response": "..."}`, ErrParse, "bad json"},
		{"500 with detail", http.StatusInternalServerError, `{"detail": "Error generating full plan: boom"}`, ErrRequestFailed, "Error generating full plan: boom"},
		{"500 with html", http.StatusBadGateway, `<html>bad gateway</html>`, ErrRequestFailed, "Bad Gateway"},
		{"200 not an object", http.StatusOK, `"just a string"`, ErrParse, "backend did not return a JSON object"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, serr := NormalizeFullPlan(tt.status, []byte(tt.body), "text")
			if data != nil {
				t.Fatalf("expected no project data, got %#v", data)
			}
			if serr == nil {
				t.Fatal("expected structured error")
			}
			if serr.Kind != tt.kind {
				t.Errorf("kind = %q, want %q", serr.Kind, tt.kind)
			}
			if serr.Message != tt.message {
				t.Errorf("message = %q, want %q", serr.Message, tt.message)
			}
			if serr.Status != tt.status {
				t.Errorf("status = %d, want %d", serr.Status, tt.status)
			}
		})
	}
}

func TestNormalizeFullPlanPassThrough(t *testing.T) {
	body := `{
		"project_id": 42,
		"project_name": "Team Tracker",
		"methodology": "Scrum",
		"wbs": {
			"project_name": "Team Tracker",
			"phases": [
				{"id": "1", "name": "Discovery", "tasks": [
					{"id": "1.1", "name": "Interviews", "effort_days": 3, "dependencies": []},
					{"id": 1.2, "name": "Backlog", "effort_days": "5", "resource": "PO", "dependencies": ["1.1"]}
				]},
				{"id": "2", "name": "Build", "tasks": null},
				"garbage"
			]
		},
		"gantt": {"gantt_tasks": []},
		"risks": [
			{"id": 1, "title": "API delay", "description": "backend late", "probability": "40%", "impact": "High"},
			{"id": 2, "description": "scope creep", "probability": 3, "impact": null},
			17
		]
	}`
	data, serr := NormalizeFullPlan(http.StatusOK, []byte(body), "desc")
	if serr != nil {
		t.Fatalf("unexpected error %v", serr)
	}
	if data.ProjectID != "42" {
		t.Errorf("project id = %q, want 42", data.ProjectID)
	}
	if data.WBS == nil || len(data.WBS.Phases) != 2 {
		t.Fatalf("expected 2 phases, got %#v", data.WBS)
	}
	tasks := data.WBS.Phases[0].Tasks
	if len(tasks) != 2 {
		t.Fatalf("expected 2 tasks, got %d", len(tasks))
	}
	if tasks[1].ID != "1.2" || tasks[1].EffortDays == nil || *tasks[1].EffortDays != 5 {
		t.Errorf("lenient task decode failed: %#v", tasks[1])
	}
	if len(tasks[1].Dependencies) != 1 || tasks[1].Dependencies[0] != "1.1" {
		t.Errorf("dependencies = %#v", tasks[1].Dependencies)
	}
	if got := data.WBS.Phases[1].Tasks; got == nil || len(got) != 0 {
		t.Errorf("null tasks should become empty list, got %#v", got)
	}
	if data.Gantt == nil {
		t.Error("present gantt must be kept")
	}
	if len(data.Risks) != 2 {
		t.Fatalf("expected 2 risks, got %d", len(data.Risks))
	}
	if data.Risks[0].Probability.String() != "40%" || data.Risks[0].Impact.String() != "High" {
		t.Errorf("risk scalars = %#v", data.Risks[0])
	}
	if !data.Risks[1].Probability.IsNumeric() || data.Risks[1].Probability.String() != "3" {
		t.Errorf("numeric probability lost: %#v", data.Risks[1].Probability)
	}
	if !data.Risks[1].Impact.IsZero() {
		t.Errorf("null impact should be zero, got %q", data.Risks[1].Impact)
	}
}

func TestNormalizeFullPlanEmptyWBSIsNotAbsent(t *testing.T) {
	data, serr := NormalizeFullPlan(http.StatusOK, []byte(`{"wbs": {"phases": []}}`), "desc")
	if serr != nil {
		t.Fatalf("unexpected error %v", serr)
	}
	if data.WBS == nil {
		t.Fatal("empty wbs must be distinguishable from absent wbs")
	}
	if data.WBS.TaskCount() != 0 {
		t.Errorf("task count = %d", data.WBS.TaskCount())
	}
}

func TestNormalizeAnswer(t *testing.T) {
	answer, serr := NormalizeAnswer(http.StatusOK, []byte(`{"answer": "Use sprints."}`))
	if serr != nil || answer != "Use sprints." {
		t.Errorf("answer = %q, err = %v", answer, serr)
	}

	answer, serr = NormalizeAnswer(http.StatusOK, []byte(`{}`))
	if serr != nil || answer != "" {
		t.Errorf("missing answer should be empty, got %q, %v", answer, serr)
	}

	_, serr = NormalizeAnswer(http.StatusBadRequest, []byte(`{"error": "Please provide a question"}`))
	if serr == nil || serr.Kind != "Please provide a question" {
		t.Errorf("expected free-text error kind, got %v", serr)
	}

	_, serr = NormalizeAnswer(http.StatusOK, []byte(`{"error": "TEXT_TOO_GENERIC", "message": "be specific"}`))
	if serr == nil || serr.Kind != ErrTextTooGeneric || serr.Message != "be specific" {
		t.Errorf("expected TEXT_TOO_GENERIC, got %v", serr)
	}
}

func TestNormalizeSingleViews(t *testing.T) {
	wbs, serr := NormalizeWBS(http.StatusOK, []byte(`{"project_name": "X", "phases": [{"id": "1", "name": "P"}]}`))
	if serr != nil || len(wbs.Phases) != 1 {
		t.Errorf("wbs = %#v, err = %v", wbs, serr)
	}

	gantt, serr := NormalizeGantt(http.StatusOK, []byte(`[{"id": 1, "name": "a", "start": "2025-01-01", "end": "2025-01-03"}]`))
	if serr != nil || len(ExtractGanttTasks(gantt)) != 1 {
		t.Errorf("unwrapped gantt array not accepted: %s, %v", gantt, serr)
	}

	_, serr = NormalizeGantt(http.StatusBadRequest, []byte(`{"error": "project_scope is required"}`))
	if serr == nil {
		t.Error("expected gantt error")
	}

	risks, serr := NormalizeRisks(http.StatusOK, []byte(`{"project_id": 1, "total_risks": 1, "risks": [{"id": 1, "description": "d"}]}`))
	if serr != nil || len(risks) != 1 {
		t.Errorf("risks = %#v, err = %v", risks, serr)
	}

	risks, serr = NormalizeRisks(http.StatusOK, []byte(`{"project_id": 1}`))
	if serr != nil || risks == nil || len(risks) != 0 {
		t.Errorf("missing risks should be empty, got %#v, %v", risks, serr)
	}
}

func TestProjectDataClone(t *testing.T) {
	data, _ := NormalizeFullPlan(http.StatusOK, []byte(`{"wbs": {"phases": [{"id": "1", "tasks": [{"id": "1.1", "effort_days": 2, "dependencies": ["1.0"]}]}]}, "risks": [{"id": 1}]}`), "x")
	clone := data.Clone()
	task := &clone.WBS.Phases[0].Tasks[0]
	task.Name = "changed"
	*task.EffortDays = 40
	task.Dependencies[0] = "changed"
	clone.Risks[0].Title = "changed"

	orig := data.WBS.Phases[0].Tasks[0]
	if orig.Name == "changed" || data.Risks[0].Title == "changed" {
		t.Error("clone shares memory with original")
	}
	if *orig.EffortDays != 2 || orig.Dependencies[0] != "1.0" {
		t.Errorf("task fields shared with clone: effort = %v, deps = %v", *orig.EffortDays, orig.Dependencies)
	}
}
