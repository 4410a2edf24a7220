package tui

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/smp-planner/spmp/internal/i18n"
	"github.com/smp-planner/spmp/internal/plan"
	"github.com/smp-planner/spmp/internal/state"
	"github.com/smp-planner/spmp/internal/views"
)

// Version 是当前的 spmp 版本，由 main 包设置
var Version string

// Section 计划标签页中显示的视图
type Section int

const (
	SectionAll Section = iota
	SectionWBS
	SectionGantt
	SectionRisks
)

var sectionNames = []string{"all", "wbs", "gantt", "risks"}

func (s Section) String() string {
	if s < 0 || int(s) >= len(sectionNames) {
		return sectionNames[SectionAll]
	}
	return sectionNames[s]
}

// Next 循环切换到下一个视图
func (s Section) Next() Section {
	return (s + 1) % Section(len(sectionNames))
}

func parseSection(name string) (Section, bool) {
	for i, n := range sectionNames {
		if n == name {
			return Section(i), true
		}
	}
	return SectionAll, false
}

// Phrases 返回控制器在指定语言下写入状态的文本
func Phrases(loc i18n.Locale) state.Phrases {
	return state.Phrases{
		Unavailable:      loc.T("errors." + plan.NetworkUnavailable),
		ConnectionFailed: loc.T("errors.connectionFailed"),
		GenericError:     loc.T("errors.generic"),
	}
}

var (
	titleStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("39")).Bold(true)
	activeTabStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("0")).Background(lipgloss.Color("39")).Padding(0, 1)
	tabStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("8")).Padding(0, 1)
	mutedStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	noticeStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
)

// Model 主界面。所有状态写入都交给 state.Controller，
// Model 只保存最近一次读取的快照和纯界面状态。
type Model struct {
	ctrl   *state.Controller
	ctx    context.Context
	cancel context.CancelFunc
	logger *slog.Logger

	locale        i18n.Locale
	keys          keyMap
	help          help.Model
	spinner       spinner.Model
	textarea      textarea.Model
	viewport      viewport.Model
	commandParser *CommandParser

	snapshot     state.State
	section      Section
	chatDraft    string
	notice       string
	showCommands bool

	changes     chan struct{}
	done        chan struct{}
	unsubscribe func()
	closeOnce   sync.Once

	width  int
	height int
	ready  bool
}

// Option 配置 Model
type Option func(*Model)

// WithLocale 设置初始界面语言
func WithLocale(l i18n.Locale) Option {
	return func(m *Model) {
		if l != "" {
			m.locale = l
		}
	}
}

// WithLogger 设置日志记录器
func WithLogger(l *slog.Logger) Option {
	return func(m *Model) {
		if l != nil {
			m.logger = l
		}
	}
}

// NewModel 创建界面并订阅控制器的状态变更。退出前调用 Close 取消订阅。
func NewModel(ctrl *state.Controller, opts ...Option) *Model {
	ta := textarea.New()
	ta.Focus()
	ta.CharLimit = 0
	ta.SetHeight(3)
	ta.ShowLineNumbers = false
	ta.KeyMap.InsertNewline.SetEnabled(false)

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = noticeStyle

	ctx, cancel := context.WithCancel(context.Background())

	m := &Model{
		ctrl:          ctrl,
		ctx:           ctx,
		cancel:        cancel,
		logger:        slog.Default(),
		locale:        i18n.Default,
		help:          help.New(),
		spinner:       sp,
		textarea:      ta,
		viewport:      viewport.New(views.DefaultWidth, 20),
		commandParser: NewCommandParser(),
		changes:       make(chan struct{}, 1),
		done:          make(chan struct{}),
	}
	for _, opt := range opts {
		opt(m)
	}

	// 通道只作为唤醒信号，收到后重新读取快照，所以丢弃重复信号不会丢失状态
	m.unsubscribe = ctrl.Bus().Subscribe(state.EventTypeStateChanged, state.HandlerFunc(func(state.Event) {
		select {
		case m.changes <- struct{}{}:
		default:
		}
	}))

	m.snapshot = ctrl.Snapshot()
	if m.snapshot.ActiveTab == state.TabGenerateAll {
		m.textarea.SetValue(m.snapshot.Draft)
	}
	m.setLocale(m.locale)
	m.refreshContent()
	return m
}

// Close 取消订阅并中止进行中的请求，可以重复调用
func (m *Model) Close() {
	m.closeOnce.Do(func() {
		m.unsubscribe()
		m.cancel()
		close(m.done)
	})
}

// Locale 返回当前界面语言
func (m *Model) Locale() i18n.Locale {
	return m.locale
}

func (m *Model) Init() tea.Cmd {
	return tea.Batch(textarea.Blink, m.spinner.Tick, m.waitForChange())
}

// waitForChange 等待下一次状态变更，每次处理 StateChangedMsg 后重新调用
func (m *Model) waitForChange() tea.Cmd {
	changes, done := m.changes, m.done
	return func() tea.Msg {
		select {
		case <-changes:
			return StateChangedMsg{}
		case <-done:
			return nil
		}
	}
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			m.Close()
			return m, tea.Quit
		case key.Matches(msg, m.keys.Submit):
			return m, m.submit()
		case key.Matches(msg, m.keys.Tab):
			if m.snapshot.ActiveTab == state.TabChat {
				m.setTab(state.TabGenerateAll)
			} else {
				m.setTab(state.TabChat)
			}
			return m, nil
		case key.Matches(msg, m.keys.Section):
			m.section = m.section.Next()
			m.refreshContent()
			return m, nil
		case key.Matches(msg, m.keys.Mode):
			m.ctrl.SetChatMode(m.snapshot.ChatMode.Next())
			return m, nil
		case key.Matches(msg, m.keys.Lang):
			m.setLocale(m.locale.Next())
			m.refreshContent()
			return m, nil
		case key.Matches(msg, m.keys.Clear):
			m.ctrl.ClearChat()
			return m, nil
		case key.Matches(msg, m.keys.Up, m.keys.Down):
			var cmd tea.Cmd
			m.viewport, cmd = m.viewport.Update(msg)
			return m, cmd
		}

	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.viewport.Width = msg.Width
		m.textarea.SetWidth(msg.Width)
		m.help.Width = msg.Width
		m.ready = true
		m.refreshContent()
		return m, nil

	case StateChangedMsg:
		m.snapshot = m.ctrl.Snapshot()
		m.refreshContent()
		return m, m.waitForChange()

	case ActionDoneMsg:
		switch {
		case errors.Is(msg.Err, state.ErrBusy):
			m.notice = m.locale.T("busy")
		case msg.Err != nil:
			m.notice = msg.Err.Error()
		}
		m.logger.Debug("action returned", "action", msg.Action, "outcome", msg.Outcome, "error", msg.Err)
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	var cmd tea.Cmd
	m.textarea, cmd = m.textarea.Update(msg)
	return m, cmd
}

// submit 处理回车：斜杠命令在本地执行，其余输入按当前标签页发送
func (m *Model) submit() tea.Cmd {
	input := strings.TrimSpace(m.textarea.Value())
	if input == "" {
		return nil
	}

	if cmd := m.commandParser.Parse(input); cmd != nil {
		if m.snapshot.ActiveTab == state.TabChat {
			m.textarea.Reset()
		} else {
			m.textarea.SetValue(m.snapshot.Draft)
		}
		return m.handleCommand(cmd)
	}

	if m.snapshot.Loading {
		m.notice = m.locale.T("busy")
		return nil
	}
	m.notice = ""
	m.showCommands = false
	m.help.ShowAll = false

	if m.snapshot.ActiveTab == state.TabChat {
		m.textarea.Reset()
		return m.send(state.ActionChat, input)
	}
	m.ctrl.SetProjectDescription(input)
	return m.send(state.ActionGenerate, input)
}

// send 在 tea.Cmd 中执行阻塞的控制器操作
func (m *Model) send(action state.Action, text string) tea.Cmd {
	ctrl, ctx := m.ctrl, m.ctx
	return func() tea.Msg {
		var (
			outcome state.Outcome
			err     error
		)
		if action == state.ActionChat {
			outcome, err = ctrl.SendChat(ctx, text)
		} else {
			outcome, err = ctrl.GenerateAllDraft(ctx)
		}
		return ActionDoneMsg{Action: action, Outcome: outcome, Err: err}
	}
}

func (m *Model) handleCommand(cmd *Command) tea.Cmd {
	m.notice = ""
	switch cmd.Type {
	case CommandTypeChat:
		m.setTab(state.TabChat)
	case CommandTypePlan:
		m.setTab(state.TabGenerateAll)
	case CommandTypeMode:
		mode, ok := plan.ParseChatMode(cmd.Arg)
		if !ok {
			m.notice = m.locale.Tf("unknownCommand", cmd.Raw)
			break
		}
		m.ctrl.SetChatMode(mode)
	case CommandTypeLang:
		loc, ok := i18n.Parse(cmd.Arg)
		if !ok {
			m.notice = m.locale.Tf("unknownCommand", cmd.Raw)
			break
		}
		m.setLocale(loc)
	case CommandTypeSection:
		m.section, _ = parseSection(cmd.Arg)
		m.setTab(state.TabGenerateAll)
	case CommandTypeClear:
		m.ctrl.ClearChat()
	case CommandTypeHelp:
		m.showCommands = !m.showCommands
		m.help.ShowAll = m.showCommands
	default:
		m.notice = m.locale.Tf("unknownCommand", cmd.Raw)
	}
	m.logger.Debug("command", "type", FormatCommandType(cmd.Type), "raw", cmd.Raw)
	m.refreshContent()
	return nil
}

// setTab 切换标签页。两个标签页的输入草稿分开保存，计划描述存入控制器。
func (m *Model) setTab(tab state.Tab) {
	if tab == m.snapshot.ActiveTab {
		return
	}
	if m.snapshot.ActiveTab == state.TabChat {
		m.chatDraft = m.textarea.Value()
		m.textarea.SetValue(m.snapshot.Draft)
	} else {
		m.ctrl.SetProjectDescription(m.textarea.Value())
		m.textarea.SetValue(m.chatDraft)
	}
	m.ctrl.SetActiveTab(tab)
	m.snapshot = m.ctrl.Snapshot()
	m.applyPlaceholder()
	m.refreshContent()
}

func (m *Model) setLocale(loc i18n.Locale) {
	m.locale = loc
	m.keys = newKeyMap(loc)
	m.ctrl.SetPhrases(Phrases(loc))
	m.applyPlaceholder()
}

func (m *Model) applyPlaceholder() {
	if m.snapshot.ActiveTab == state.TabChat {
		m.textarea.Placeholder = m.locale.T("chat.placeholder")
	} else {
		m.textarea.Placeholder = m.locale.T("input.placeholder")
	}
}

func (m *Model) viewOptions() views.Options {
	return views.Options{Locale: m.locale, Width: m.width}
}

func (m *Model) refreshContent() {
	m.viewport.SetContent(m.content())
	if m.snapshot.ActiveTab == state.TabChat {
		m.viewport.GotoBottom()
	}
}

// content 渲染当前标签页。生成失败时旧计划保持可见。
func (m *Model) content() string {
	opts := m.viewOptions()
	if m.snapshot.ActiveTab == state.TabChat {
		return views.RenderChat(m.snapshot.Transcript, opts)
	}

	p := m.snapshot.Project
	if p == nil {
		return views.RenderProjectCard(nil, opts)
	}
	switch m.section {
	case SectionWBS:
		return views.RenderWBS(p, opts)
	case SectionGantt:
		return views.RenderGantt(p, opts)
	case SectionRisks:
		return views.RenderRisks(p, opts)
	}

	if !m.snapshot.Loading {
		return views.RenderPlan(p, opts)
	}
	// 加载中隐藏项目卡片，旧计划的其余部分保持可见
	return strings.Join([]string{
		views.RenderWBS(p, opts),
		views.RenderGantt(p, opts),
		views.RenderRisks(p, opts),
	}, "\n\n")
}

func (m *Model) tabsView() string {
	tab := func(label string, active bool) string {
		if active {
			return activeTabStyle.Render(label)
		}
		return tabStyle.Render(label)
	}

	chat := m.snapshot.ActiveTab == state.TabChat
	line := tab(m.locale.T("tabs.chat"), chat) + tab(m.locale.T("tabs.plan"), !chat)
	if chat {
		return line + "  " + mutedStyle.Render(m.locale.T("chat.modeLabel")+": "+m.locale.ChatMode(m.snapshot.ChatMode))
	}

	sections := make([]string, len(sectionNames))
	for i, name := range sectionNames {
		label := m.locale.T("tabs." + name)
		if Section(i) == m.section {
			sections[i] = lipgloss.NewStyle().Foreground(lipgloss.Color("39")).Underline(true).Render(label)
		} else {
			sections[i] = mutedStyle.Render(label)
		}
	}
	return line + "  " + strings.Join(sections, mutedStyle.Render(" · "))
}

func (m *Model) header() string {
	title := titleStyle.Render(m.locale.T("app.title"))
	if Version != "" {
		title += " " + mutedStyle.Render(Version)
	}
	lines := []string{title + "  " + m.tabsView()}
	status := views.RenderStatus(m.snapshot, m.viewOptions())
	if m.snapshot.Loading {
		status = m.spinner.View() + " " + status
	}
	if status != "" {
		lines = append(lines, status)
	}
	return strings.Join(lines, "\n")
}

func (m *Model) footer() string {
	var lines []string
	if m.notice != "" {
		lines = append(lines, noticeStyle.Render(m.notice))
	}
	if m.showCommands {
		lines = append(lines, mutedStyle.Render(m.locale.T("help.commands")))
	}
	lines = append(lines, m.textarea.View(), m.help.View(m.keys))
	return strings.Join(lines, "\n")
}

func (m *Model) View() string {
	if !m.ready {
		return m.locale.T("common.loading")
	}

	header, footer := m.header(), m.footer()
	m.viewport.Height = max(1, m.height-lipgloss.Height(header)-lipgloss.Height(footer))

	return lipgloss.JoinVertical(lipgloss.Left, header, m.viewport.View(), footer)
}
