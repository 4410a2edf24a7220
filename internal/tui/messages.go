package tui

import (
	"github.com/smp-planner/spmp/internal/state"
)

// Message types for tea.Model

// StateChangedMsg 控制器状态已变更，收到后重新读取快照
type StateChangedMsg struct{}

// ActionDoneMsg 异步操作返回
type ActionDoneMsg struct {
	Action  state.Action
	Outcome state.Outcome
	Err     error
}
