package state

import "github.com/smp-planner/spmp/internal/plan"

// 事件类型常量
const (
	EventTypeStateChanged   = "state.changed"
	EventTypeChatAppended   = "chat.appended"
	EventTypeChatCleared    = "chat.cleared"
	EventTypePlanReplaced   = "plan.replaced"
	EventTypeActionStarted  = "action.started"
	EventTypeActionFinished = "action.finished"
)

// StateChangedEvent 每次状态写入后发布，携带写入后的快照
type StateChangedEvent struct {
	*BaseEvent
	Snapshot State
}

// NewStateChangedEvent 创建状态变更事件
func NewStateChangedEvent(snapshot State) *StateChangedEvent {
	return &StateChangedEvent{
		BaseEvent: NewBaseEvent(EventTypeStateChanged, snapshot),
		Snapshot:  snapshot,
	}
}

// ChatAppendedEvent 聊天记录追加了一条消息
type ChatAppendedEvent struct {
	*BaseEvent
	Message plan.ChatMessage
}

// NewChatAppendedEvent 创建消息追加事件
func NewChatAppendedEvent(msg plan.ChatMessage) *ChatAppendedEvent {
	return &ChatAppendedEvent{
		BaseEvent: NewBaseEvent(EventTypeChatAppended, msg),
		Message:   msg,
	}
}

// NewChatClearedEvent 创建聊天清空事件
func NewChatClearedEvent() *BaseEvent {
	return NewBaseEvent(EventTypeChatCleared, nil)
}

// PlanReplacedEvent 计划被整体替换
type PlanReplacedEvent struct {
	*BaseEvent
	Project *plan.ProjectData
}

// NewPlanReplacedEvent 创建计划替换事件
func NewPlanReplacedEvent(project *plan.ProjectData) *PlanReplacedEvent {
	return &PlanReplacedEvent{
		BaseEvent: NewBaseEvent(EventTypePlanReplaced, project),
		Project:   project,
	}
}

// ActionEvent 异步操作开始或结束
type ActionEvent struct {
	*BaseEvent
	Action  Action
	Outcome Outcome
}

// NewActionStartedEvent 创建操作开始事件
func NewActionStartedEvent(action Action) *ActionEvent {
	return &ActionEvent{
		BaseEvent: NewBaseEvent(EventTypeActionStarted, action),
		Action:    action,
	}
}

// NewActionFinishedEvent 创建操作结束事件
func NewActionFinishedEvent(action Action, outcome Outcome) *ActionEvent {
	return &ActionEvent{
		BaseEvent: NewBaseEvent(EventTypeActionFinished, outcome),
		Action:    action,
		Outcome:   outcome,
	}
}
