// Package state 持有界面的唯一状态容器。所有写入都经过 Controller，
// 视图只读取快照。
package state

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/smp-planner/spmp/internal/api"
	"github.com/smp-planner/spmp/internal/plan"
)

// ErrBusy 已有操作在进行中，新的操作被拒绝且不改变任何状态
var ErrBusy = errors.New("another request is already in flight")

// Tab 主界面的显示模式
type Tab string

const (
	TabChat        Tab = "chat"
	TabGenerateAll Tab = "generateAll"
)

// Action 异步操作的种类
type Action string

const (
	ActionChat     Action = "chat"
	ActionGenerate Action = "generate"
)

// Outcome 异步操作的结果
type Outcome int

const (
	// OutcomeSkipped 输入为空，没有发出请求
	OutcomeSkipped Outcome = iota
	OutcomeSucceeded
	// OutcomeRejected 后端返回了结构化错误
	OutcomeRejected
	// OutcomeUnavailable 没有收到任何响应
	OutcomeUnavailable
)

func (o Outcome) String() string {
	switch o {
	case OutcomeSucceeded:
		return "succeeded"
	case OutcomeRejected:
		return "rejected"
	case OutcomeUnavailable:
		return "unavailable"
	default:
		return "skipped"
	}
}

// Backend 控制器需要的后端操作，*api.Client 满足该接口
type Backend interface {
	Ask(ctx context.Context, question, mode string) (*api.Response, error)
	FullPlan(ctx context.Context, description string) (*api.Response, error)
}

// State 界面状态。Error、Message 和 HTTPStatus 互相独立。
type State struct {
	ActiveTab  Tab
	Draft      string
	ChatMode   plan.ChatMode
	Transcript []plan.ChatMessage
	Project    *plan.ProjectData
	Loading    bool
	Error      plan.ErrorKind
	Message    string
	HTTPStatus int
}

func (s State) clone() State {
	out := s
	out.Transcript = append([]plan.ChatMessage{}, s.Transcript...)
	out.Project = s.Project.Clone()
	return out
}

// Phrases 控制器写入状态的用户可见文本
type Phrases struct {
	// Unavailable 传输失败时写入 Message 槽
	Unavailable string
	// ConnectionFailed 传输失败时追加的助手消息
	ConnectionFailed string
	// GenericError 结构化错误没有说明时的助手消息
	GenericError string
}

// DefaultPhrases 默认的阿拉伯语文本，界面语言确定后由调用方替换
var DefaultPhrases = Phrases{
	Unavailable:      "تعذر الاتصال بالسيرفر",
	ConnectionFailed: "❌ تعذر الاتصال بالسيرفر",
	GenericError:     "حدث خطأ",
}

// Controller 单写者、多读者的状态容器
type Controller struct {
	mu      sync.Mutex
	state   State
	backend Backend
	bus     EventBus
	logger  *slog.Logger
	now     func() time.Time
	phrases Phrases
}

// Option 配置 Controller
type Option func(*Controller)

// WithEventBus 使用外部事件总线
func WithEventBus(bus EventBus) Option {
	return func(c *Controller) {
		if bus != nil {
			c.bus = bus
		}
	}
}

// WithLogger 设置日志记录器
func WithLogger(l *slog.Logger) Option {
	return func(c *Controller) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithClock 替换消息时间戳的时钟
func WithClock(now func() time.Time) Option {
	return func(c *Controller) {
		if now != nil {
			c.now = now
		}
	}
}

// WithPhrases 替换用户可见文本，空字段保留默认值
func WithPhrases(p Phrases) Option {
	return func(c *Controller) {
		if p.Unavailable != "" {
			c.phrases.Unavailable = p.Unavailable
		}
		if p.ConnectionFailed != "" {
			c.phrases.ConnectionFailed = p.ConnectionFailed
		}
		if p.GenericError != "" {
			c.phrases.GenericError = p.GenericError
		}
	}
}

// NewController 创建控制器，初始为聊天标签页、normal 模式、空记录
func NewController(backend Backend, opts ...Option) *Controller {
	c := &Controller{
		state: State{
			ActiveTab:  TabChat,
			ChatMode:   plan.ChatModeNormal,
			Transcript: []plan.ChatMessage{},
		},
		backend: backend,
		bus:     NewMemoryEventBus(),
		logger:  slog.Default(),
		now:     time.Now,
		phrases: DefaultPhrases,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Bus 返回控制器发布事件的总线
func (c *Controller) Bus() EventBus {
	return c.bus
}

// Snapshot 返回当前状态的深拷贝
func (c *Controller) Snapshot() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.clone()
}

// SetPhrases 在切换界面语言后替换用户可见文本，空字段保持不变
func (c *Controller) SetPhrases(p Phrases) {
	c.mu.Lock()
	defer c.mu.Unlock()
	WithPhrases(p)(c)
}

// SetActiveTab 切换显示模式
func (c *Controller) SetActiveTab(tab Tab) {
	c.update(func(s *State) []Event {
		s.ActiveTab = tab
		return nil
	})
}

// SetProjectDescription 保存当前输入草稿
func (c *Controller) SetProjectDescription(text string) {
	c.update(func(s *State) []Event {
		s.Draft = text
		return nil
	})
}

// SetChatMode 设置聊天回答的详细程度
func (c *Controller) SetChatMode(mode plan.ChatMode) {
	c.update(func(s *State) []Event {
		s.ChatMode = mode
		return nil
	})
}

// ClearChat 清空聊天记录
func (c *Controller) ClearChat() {
	c.update(func(s *State) []Event {
		s.Transcript = []plan.ChatMessage{}
		return []Event{NewChatClearedEvent()}
	})
}

// SendChatDraft 以当前草稿为问题调用 SendChat
func (c *Controller) SendChatDraft(ctx context.Context) (Outcome, error) {
	return c.SendChat(ctx, c.draft())
}

// SendChat 向助手提问。用户消息在请求发出前追加，
// 无论结果如何都会再追加一条助手消息。
func (c *Controller) SendChat(ctx context.Context, question string) (Outcome, error) {
	q := strings.TrimSpace(question)
	if q == "" {
		return OutcomeSkipped, nil
	}

	var mode plan.ChatMode
	err := c.begin(ActionChat, func(s *State) []Event {
		mode = s.ChatMode
		msg := plan.NewChatMessage(plan.RoleUser, q, c.now())
		s.Transcript = append(s.Transcript, msg)
		return []Event{NewChatAppendedEvent(msg)}
	})
	if err != nil {
		return OutcomeSkipped, err
	}

	outcome := OutcomeUnavailable
	var complete func(s *State) []Event
	defer func() { c.finish(ActionChat, outcome, complete) }()

	resp, err := c.backend.Ask(ctx, q, string(mode))
	outcome, complete = c.chatCompletion(resp, err)
	return outcome, nil
}

func (c *Controller) chatCompletion(resp *api.Response, err error) (Outcome, func(s *State) []Event) {
	appendAssistant := func(s *State, content string) []Event {
		msg := plan.NewChatMessage(plan.RoleAssistant, content, c.now())
		s.Transcript = append(s.Transcript, msg)
		return []Event{NewChatAppendedEvent(msg)}
	}

	if err != nil {
		c.logger.Warn("chat request failed", "error", err, "unavailable", errors.Is(err, api.ErrUnavailable))
		return OutcomeUnavailable, func(s *State) []Event {
			s.Message = c.phrases.Unavailable
			return appendAssistant(s, c.phrases.ConnectionFailed)
		}
	}

	answer, serr := plan.NormalizeAnswer(resp.Status, resp.Body)
	if serr != nil {
		c.logger.Info("chat rejected by backend", "kind", serr.Kind, "status", serr.Status)
		return OutcomeRejected, func(s *State) []Event {
			s.Error = serr.Kind
			s.HTTPStatus = serr.Status
			// 已知错误码由状态面板本地化显示，自由文本的 error 直接作为回复
			explanation := serr.Message
			if explanation == "" && !serr.Kind.Known() {
				explanation = string(serr.Kind)
			}
			if explanation == "" {
				explanation = c.phrases.GenericError
			}
			return appendAssistant(s, explanation)
		}
	}

	return OutcomeSucceeded, func(s *State) []Event {
		s.HTTPStatus = resp.Status
		return appendAssistant(s, answer)
	}
}

// GenerateAllDraft 以当前草稿为描述调用 GenerateAll
func (c *Controller) GenerateAllDraft(ctx context.Context) (Outcome, error) {
	return c.GenerateAll(ctx, c.draft())
}

// GenerateAll 生成完整计划。失败时保留旧计划，成功时整体替换。
func (c *Controller) GenerateAll(ctx context.Context, description string) (Outcome, error) {
	text := strings.TrimSpace(description)
	if text == "" {
		return OutcomeSkipped, nil
	}
	if err := c.begin(ActionGenerate, nil); err != nil {
		return OutcomeSkipped, err
	}

	outcome := OutcomeUnavailable
	var complete func(s *State) []Event
	defer func() { c.finish(ActionGenerate, outcome, complete) }()

	resp, err := c.backend.FullPlan(ctx, text)
	if err != nil {
		c.logger.Warn("plan request failed", "error", err, "unavailable", errors.Is(err, api.ErrUnavailable))
		complete = func(s *State) []Event {
			s.Message = c.phrases.Unavailable
			return nil
		}
		return outcome, nil
	}

	data, serr := plan.NormalizeFullPlan(resp.Status, resp.Body, text)
	if serr != nil {
		c.logger.Info("plan rejected by backend", "kind", serr.Kind, "status", serr.Status)
		outcome = OutcomeRejected
		complete = func(s *State) []Event {
			s.Error = serr.Kind
			s.Message = serr.Message
			s.HTTPStatus = serr.Status
			return nil
		}
		return outcome, nil
	}

	outcome = OutcomeSucceeded
	complete = func(s *State) []Event {
		s.Project = data
		s.HTTPStatus = resp.Status
		return []Event{NewPlanReplacedEvent(data.Clone())}
	}
	return outcome, nil
}

func (c *Controller) draft() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.Draft
}

// begin 进入 loading 状态并清空上一次的错误信号。
// 已有操作进行中时返回 ErrBusy，不做任何修改。
func (c *Controller) begin(action Action, fn func(s *State) []Event) error {
	c.mu.Lock()
	if c.state.Loading {
		c.mu.Unlock()
		return ErrBusy
	}
	c.state.Loading = true
	c.state.Error = ""
	c.state.Message = ""
	c.state.HTTPStatus = 0
	events := []Event{NewActionStartedEvent(action)}
	if fn != nil {
		events = append(events, fn(&c.state)...)
	}
	snapshot := c.state.clone()
	c.mu.Unlock()

	c.publish(events, snapshot)
	return nil
}

// finish 应用结果并无条件退出 loading 状态。complete 可以为 nil（例如 panic 时）。
func (c *Controller) finish(action Action, outcome Outcome, complete func(s *State) []Event) {
	c.mu.Lock()
	var events []Event
	if complete != nil {
		events = complete(&c.state)
	}
	c.state.Loading = false
	events = append(events, NewActionFinishedEvent(action, outcome))
	snapshot := c.state.clone()
	c.mu.Unlock()

	c.publish(events, snapshot)
}

func (c *Controller) update(fn func(s *State) []Event) {
	c.mu.Lock()
	events := fn(&c.state)
	snapshot := c.state.clone()
	c.mu.Unlock()

	c.publish(events, snapshot)
}

// publish 在释放锁之后调用，订阅者可以安全地读取快照
func (c *Controller) publish(events []Event, snapshot State) {
	for _, e := range events {
		c.bus.Publish(e)
	}
	c.bus.Publish(NewStateChangedEvent(snapshot))
}
