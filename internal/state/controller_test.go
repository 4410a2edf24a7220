package state

import (
	"context"
	"errors"
	"net/http"
	"reflect"
	"sync"
	"testing"
	"time"

	"github.com/smp-planner/spmp/internal/api"
	"github.com/smp-planner/spmp/internal/plan"
)

type fakeBackend struct {
	mu       sync.Mutex
	calls    int
	ask      func(question, mode string) (*api.Response, error)
	fullPlan func(description string) (*api.Response, error)
}

func (f *fakeBackend) Ask(_ context.Context, question, mode string) (*api.Response, error) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()
	return f.ask(question, mode)
}

func (f *fakeBackend) FullPlan(_ context.Context, description string) (*api.Response, error) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()
	return f.fullPlan(description)
}

func (f *fakeBackend) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func respond(status int, body string) func(string) (*api.Response, error) {
	return func(string) (*api.Response, error) {
		return &api.Response{Status: status, Body: []byte(body)}, nil
	}
}

func unreachable() error {
	return &api.TransportError{Endpoint: "/api/ask/", Err: errors.New("dial tcp: connection refused")}
}

func fixedClock() time.Time {
	return time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
}

func TestGenerateAllSuccess(t *testing.T) {
	backend := &fakeBackend{fullPlan: respond(http.StatusOK, `{"project_id": 1, "project_name": "Team Tracker", "risks": []}`)}
	c := NewController(backend)
	c.SetActiveTab(TabChat)

	outcome, err := c.GenerateAll(context.Background(), "Build a task-tracking mobile app for teams")
	if err != nil || outcome != OutcomeSucceeded {
		t.Fatalf("outcome = %v, err = %v", outcome, err)
	}

	s := c.Snapshot()
	if s.Project == nil || s.Project.ProjectName != "Team Tracker" {
		t.Fatalf("project = %#v", s.Project)
	}
	if s.Project.ProjectScope != "Build a task-tracking mobile app for teams" {
		t.Errorf("scope = %q", s.Project.ProjectScope)
	}
	if s.ActiveTab != TabChat {
		t.Errorf("active tab changed to %q", s.ActiveTab)
	}
	if s.Error != "" || s.Message != "" {
		t.Errorf("error = %q, message = %q, want both cleared", s.Error, s.Message)
	}
	if s.Loading {
		t.Error("loading must be reset")
	}
	if len(s.Transcript) != 0 {
		t.Error("generate must not touch chat state")
	}
}

func TestGenerateAllFailureKeepsPreviousPlan(t *testing.T) {
	backend := &fakeBackend{fullPlan: respond(http.StatusOK, `{"project_name": "First"}`)}
	c := NewController(backend)
	if _, err := c.GenerateAll(context.Background(), "first description"); err != nil {
		t.Fatal(err)
	}
	before := c.Snapshot().Project

	// 结构化错误，即使 HTTP 200
	backend.fullPlan = respond(http.StatusOK, `{"error": "SCOPE_TOO_SHORT", "message": "Please describe more"}`)
	outcome, _ := c.GenerateAll(context.Background(), "hi")
	if outcome != OutcomeRejected {
		t.Fatalf("outcome = %v", outcome)
	}
	s := c.Snapshot()
	if s.Error != plan.ErrScopeTooShort {
		t.Errorf("error = %q", s.Error)
	}
	if s.Message != "Please describe more" {
		t.Errorf("message = %q", s.Message)
	}
	if s.HTTPStatus != http.StatusOK {
		t.Errorf("status = %d", s.HTTPStatus)
	}
	if !reflect.DeepEqual(s.Project, before) {
		t.Errorf("project changed after structured error: %#v", s.Project)
	}

	// 传输失败
	backend.fullPlan = func(string) (*api.Response, error) { return nil, unreachable() }
	outcome, _ = c.GenerateAll(context.Background(), "another description")
	if outcome != OutcomeUnavailable {
		t.Fatalf("outcome = %v", outcome)
	}
	s = c.Snapshot()
	if s.Error != "" {
		t.Errorf("transport failure must not set error slot, got %q", s.Error)
	}
	if s.Message != DefaultPhrases.Unavailable {
		t.Errorf("message = %q", s.Message)
	}
	if !reflect.DeepEqual(s.Project, before) {
		t.Error("project changed after transport failure")
	}
	if s.Loading {
		t.Error("loading must be reset")
	}
}

func TestSendChatNetworkUnreachable(t *testing.T) {
	backend := &fakeBackend{ask: func(string, string) (*api.Response, error) { return nil, unreachable() }}
	c := NewController(backend, WithClock(fixedClock))

	outcome, err := c.SendChat(context.Background(), "What is the critical path?")
	if err != nil || outcome != OutcomeUnavailable {
		t.Fatalf("outcome = %v, err = %v", outcome, err)
	}
	s := c.Snapshot()
	if len(s.Transcript) != 2 {
		t.Fatalf("transcript has %d messages, want 2", len(s.Transcript))
	}
	if s.Transcript[0].Role != plan.RoleUser || s.Transcript[0].Content != "What is the critical path?" {
		t.Errorf("user message = %#v", s.Transcript[0])
	}
	if s.Transcript[1].Role != plan.RoleAssistant || s.Transcript[1].Content != DefaultPhrases.ConnectionFailed {
		t.Errorf("assistant message = %#v", s.Transcript[1])
	}
	if s.Error != "" {
		t.Errorf("error = %q, want empty", s.Error)
	}
	if s.Message == "" {
		t.Error("message must be set")
	}
	if !s.Transcript[0].Timestamp.Equal(fixedClock()) {
		t.Errorf("timestamp = %v", s.Transcript[0].Timestamp)
	}
}

func TestSendChatOutcomes(t *testing.T) {
	tests := []struct {
		name      string
		status    int
		body      string
		outcome   Outcome
		errorKind plan.ErrorKind
		reply     string
	}{
		{"answer", http.StatusOK, `{"answer": "Use a burndown chart."}`, OutcomeSucceeded, "", "Use a burndown chart."},
		{"missing answer", http.StatusOK, `{}`, OutcomeSucceeded, "", ""},
		{"structured error with message", http.StatusOK, `{"error": "TEXT_TOO_GENERIC", "message": "Be more specific"}`, OutcomeRejected, plan.ErrTextTooGeneric, "Be more specific"},
		{"structured error without message", http.StatusBadRequest, `{"error": "Please provide a question"}`, OutcomeRejected, "Please provide a question", "Please provide a question"},
		{"known error code without message", http.StatusBadRequest, `{"error": "SCOPE_TOO_SHORT"}`, OutcomeRejected, plan.ErrScopeTooShort, DefaultPhrases.GenericError},
		{"server error", http.StatusInternalServerError, `{"detail": "boom"}`, OutcomeRejected, plan.ErrRequestFailed, "boom"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var gotMode string
			backend := &fakeBackend{ask: func(_ string, mode string) (*api.Response, error) {
				gotMode = mode
				return &api.Response{Status: tt.status, Body: []byte(tt.body)}, nil
			}}
			c := NewController(backend)
			c.SetChatMode(plan.ChatModeDetailed)

			outcome, err := c.SendChat(context.Background(), "  question  ")
			if err != nil || outcome != tt.outcome {
				t.Fatalf("outcome = %v, err = %v", outcome, err)
			}
			if gotMode != "detailed" {
				t.Errorf("mode = %q", gotMode)
			}
			s := c.Snapshot()
			if s.Error != tt.errorKind {
				t.Errorf("error = %q, want %q", s.Error, tt.errorKind)
			}
			if s.HTTPStatus != tt.status {
				t.Errorf("status = %d, want %d", s.HTTPStatus, tt.status)
			}
			if len(s.Transcript) != 2 {
				t.Fatalf("transcript has %d messages", len(s.Transcript))
			}
			if s.Transcript[0].Content != "question" {
				t.Errorf("question not trimmed: %q", s.Transcript[0].Content)
			}
			if s.Transcript[1].Content != tt.reply {
				t.Errorf("reply = %q, want %q", s.Transcript[1].Content, tt.reply)
			}
		})
	}
}

func TestEmptyInputIsNoOp(t *testing.T) {
	backend := &fakeBackend{
		ask:      func(string, string) (*api.Response, error) { t.Fatal("unexpected ask"); return nil, nil },
		fullPlan: func(string) (*api.Response, error) { t.Fatal("unexpected plan"); return nil, nil },
	}
	c := NewController(backend)
	changes := 0
	c.Bus().Subscribe(AllEvents, HandlerFunc(func(Event) { changes++ }))
	before := c.Snapshot()

	for _, input := range []string{"", "   ", "\n\t"} {
		if o, err := c.SendChat(context.Background(), input); o != OutcomeSkipped || err != nil {
			t.Errorf("SendChat(%q) = %v, %v", input, o, err)
		}
		if o, err := c.GenerateAll(context.Background(), input); o != OutcomeSkipped || err != nil {
			t.Errorf("GenerateAll(%q) = %v, %v", input, o, err)
		}
	}
	if o, _ := c.SendChatDraft(context.Background()); o != OutcomeSkipped {
		t.Errorf("empty draft should be skipped, got %v", o)
	}

	if backend.callCount() != 0 {
		t.Errorf("backend called %d times", backend.callCount())
	}
	if changes != 0 {
		t.Errorf("%d events published for no-op input", changes)
	}
	if !reflect.DeepEqual(before, c.Snapshot()) {
		t.Error("state changed")
	}
}

func TestDraftActions(t *testing.T) {
	var asked, described string
	backend := &fakeBackend{
		ask: func(q, _ string) (*api.Response, error) {
			asked = q
			return &api.Response{Status: 200, Body: []byte(`{"answer": "ok"}`)}, nil
		},
		fullPlan: func(d string) (*api.Response, error) {
			described = d
			return &api.Response{Status: 200, Body: []byte(`{}`)}, nil
		},
	}
	c := NewController(backend)
	c.SetProjectDescription("  An inventory system for a bakery  ")

	if _, err := c.GenerateAllDraft(context.Background()); err != nil {
		t.Fatal(err)
	}
	if _, err := c.SendChatDraft(context.Background()); err != nil {
		t.Fatal(err)
	}
	if described != "An inventory system for a bakery" || asked != described {
		t.Errorf("asked = %q, described = %q", asked, described)
	}
	if c.Snapshot().Draft != "  An inventory system for a bakery  " {
		t.Error("draft must be preserved")
	}
}

func TestTranscriptAppendOnly(t *testing.T) {
	answers := []func(string, string) (*api.Response, error){
		func(string, string) (*api.Response, error) {
			return &api.Response{Status: 200, Body: []byte(`{"answer": "a1"}`)}, nil
		},
		func(string, string) (*api.Response, error) { return nil, unreachable() },
		func(string, string) (*api.Response, error) {
			return &api.Response{Status: 200, Body: []byte(`{"error": "PARSE_ERROR"}`)}, nil
		},
	}
	backend := &fakeBackend{}
	c := NewController(backend)

	var prior []plan.ChatMessage
	for i, answer := range answers {
		backend.ask = answer
		if _, err := c.SendChat(context.Background(), "question"); err != nil {
			t.Fatal(err)
		}
		now := c.Snapshot().Transcript
		if len(now) != len(prior)+2 {
			t.Fatalf("round %d: transcript grew by %d", i, len(now)-len(prior))
		}
		if !reflect.DeepEqual(now[:len(prior)], prior) {
			t.Fatalf("round %d: prior entries changed", i)
		}
		prior = now
	}

	seen := map[string]bool{}
	for _, m := range prior {
		if seen[m.ID] {
			t.Errorf("duplicate message id %s", m.ID)
		}
		seen[m.ID] = true
	}

	c.ClearChat()
	if got := c.Snapshot().Transcript; got == nil || len(got) != 0 {
		t.Errorf("transcript after clear = %#v", got)
	}
}

func TestSecondActionWhileLoadingIsRejected(t *testing.T) {
	release := make(chan struct{})
	started := make(chan struct{})
	backend := &fakeBackend{
		ask: func(string, string) (*api.Response, error) {
			close(started)
			<-release
			return &api.Response{Status: 200, Body: []byte(`{"answer": "done"}`)}, nil
		},
		fullPlan: func(string) (*api.Response, error) {
			t.Error("generate must not reach the backend while busy")
			return nil, nil
		},
	}
	c := NewController(backend)

	done := make(chan Outcome)
	go func() {
		o, _ := c.SendChat(context.Background(), "first")
		done <- o
	}()
	<-started

	before := c.Snapshot()
	if !before.Loading {
		t.Fatal("loading should be set while request is in flight")
	}
	if _, err := c.GenerateAll(context.Background(), "second"); !errors.Is(err, ErrBusy) {
		t.Errorf("GenerateAll err = %v, want ErrBusy", err)
	}
	if _, err := c.SendChat(context.Background(), "third"); !errors.Is(err, ErrBusy) {
		t.Errorf("SendChat err = %v, want ErrBusy", err)
	}
	if !reflect.DeepEqual(before, c.Snapshot()) {
		t.Error("rejected action changed state")
	}

	close(release)
	if o := <-done; o != OutcomeSucceeded {
		t.Errorf("first outcome = %v", o)
	}
	s := c.Snapshot()
	if s.Loading || len(s.Transcript) != 2 {
		t.Errorf("loading = %v, transcript = %d", s.Loading, len(s.Transcript))
	}
}

func TestOptimisticWritesPublishedBeforeRequest(t *testing.T) {
	var mu sync.Mutex
	var log []string
	record := func(s string) {
		mu.Lock()
		log = append(log, s)
		mu.Unlock()
	}

	backend := &fakeBackend{ask: func(string, string) (*api.Response, error) {
		record("request")
		return &api.Response{Status: 200, Body: []byte(`{"answer": "x"}`)}, nil
	}}
	c := NewController(backend)
	c.Bus().Subscribe(AllEvents, HandlerFunc(func(e Event) {
		if sc, ok := e.(*StateChangedEvent); ok {
			record("changed:loading=" + map[bool]string{true: "t", false: "f"}[sc.Snapshot.Loading])
			return
		}
		record(e.Type())
	}))

	if _, err := c.SendChat(context.Background(), "hello"); err != nil {
		t.Fatal(err)
	}
	want := []string{
		EventTypeActionStarted, EventTypeChatAppended, "changed:loading=t",
		"request",
		EventTypeChatAppended, EventTypeActionFinished, "changed:loading=f",
	}
	if !reflect.DeepEqual(log, want) {
		t.Errorf("event order = %v, want %v", log, want)
	}
}

func TestLoadingResetOnPanic(t *testing.T) {
	backend := &fakeBackend{fullPlan: func(string) (*api.Response, error) { panic("backend exploded") }}
	c := NewController(backend)

	func() {
		defer func() {
			if recover() == nil {
				t.Error("expected panic to propagate")
			}
		}()
		_, _ = c.GenerateAll(context.Background(), "x")
	}()
	if c.Snapshot().Loading {
		t.Error("loading must be reset even when the request panics")
	}
}

func TestSnapshotIsDeepCopy(t *testing.T) {
	backend := &fakeBackend{fullPlan: respond(200, `{
		"project_name": "P",
		"wbs": {"phases": [{"id": "1", "name": "Build", "tasks": [{"id": "1.1", "name": "API", "effort_days": 3, "dependencies": ["1.0"]}]}]},
		"risks": [{"id": 1, "description": "d"}]
	}`)}
	c := NewController(backend)
	_, _ = c.GenerateAll(context.Background(), "desc")

	s := c.Snapshot()
	s.Project.ProjectName = "mutated"
	s.Project.Risks[0].Description = "mutated"
	task := &s.Project.WBS.Phases[0].Tasks[0]
	*task.EffortDays = 99
	task.Dependencies[0] = "mutated"

	got := c.Snapshot().Project
	if got.ProjectName != "P" || got.Risks[0].Description != "d" {
		t.Error("snapshot shares memory with controller state")
	}
	orig := got.WBS.Phases[0].Tasks[0]
	if orig.EffortDays == nil || *orig.EffortDays != 3 {
		t.Errorf("effort days = %v, want 3", orig.EffortDays)
	}
	if len(orig.Dependencies) != 1 || orig.Dependencies[0] != "1.0" {
		t.Errorf("dependencies = %v, want [1.0]", orig.Dependencies)
	}
}

func TestWithPhrases(t *testing.T) {
	backend := &fakeBackend{ask: func(string, string) (*api.Response, error) { return nil, unreachable() }}
	c := NewController(backend, WithPhrases(Phrases{ConnectionFailed: "Could not reach the server"}))
	_, _ = c.SendChat(context.Background(), "q")
	s := c.Snapshot()
	if s.Transcript[1].Content != "Could not reach the server" {
		t.Errorf("assistant = %q", s.Transcript[1].Content)
	}
	if s.Message != DefaultPhrases.Unavailable {
		t.Errorf("unset phrase should keep default, got %q", s.Message)
	}
}

func TestSetPhrases(t *testing.T) {
	backend := &fakeBackend{ask: func(string, string) (*api.Response, error) {
		return &api.Response{Status: http.StatusBadRequest, Body: []byte(`{"error": "SCOPE_TOO_SHORT"}`)}, nil
	}}
	c := NewController(backend)
	c.SetPhrases(Phrases{GenericError: "Something went wrong"})
	_, _ = c.SendChat(context.Background(), "q")
	if got := c.Snapshot().Transcript[1].Content; got != "Something went wrong" {
		t.Errorf("assistant = %q", got)
	}
}
