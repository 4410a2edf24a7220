package state

import (
	"sort"
	"sync"
	"time"
)

// Event 事件接口
type Event interface {
	// Type 事件类型
	Type() string
	// Data 事件数据
	Data() any
	// Timestamp 事件时间戳
	Timestamp() time.Time
}

// EventHandler 事件处理器接口
type EventHandler interface {
	// Handle 处理事件
	Handle(event Event)

	// Priority 处理优先级，数值越小优先级越高
	Priority() int
}

// HandlerFunc 把普通函数适配为优先级为 0 的 EventHandler
type HandlerFunc func(Event)

// Handle 调用函数本身
func (f HandlerFunc) Handle(event Event) {
	f(event)
}

// Priority 默认优先级
func (f HandlerFunc) Priority() int {
	return 0
}

// EventBus 事件总线接口
type EventBus interface {
	// Subscribe 订阅事件，返回取消订阅函数。eventType 为 "*" 时接收所有事件
	Subscribe(eventType string, handler EventHandler) (unsubscribe func())

	// Publish 同步发布事件
	Publish(event Event)

	// Clear 清空所有订阅
	Clear()
}

// AllEvents 订阅全部事件类型的通配符
const AllEvents = "*"

// BaseEvent 基础事件实现
type BaseEvent struct {
	eventType string
	data      any
	timestamp time.Time
}

// NewBaseEvent 创建基础事件
func NewBaseEvent(eventType string, data any) *BaseEvent {
	return &BaseEvent{
		eventType: eventType,
		data:      data,
		timestamp: time.Now(),
	}
}

// Type 事件类型
func (e *BaseEvent) Type() string {
	return e.eventType
}

// Data 事件数据
func (e *BaseEvent) Data() any {
	return e.data
}

// Timestamp 事件时间戳
func (e *BaseEvent) Timestamp() time.Time {
	return e.timestamp
}

type subscription struct {
	id      uint64
	handler EventHandler
}

// MemoryEventBus 内存事件总线实现
type MemoryEventBus struct {
	handlers map[string][]subscription
	nextID   uint64
	mutex    sync.RWMutex
}

// NewMemoryEventBus 创建内存事件总线
func NewMemoryEventBus() *MemoryEventBus {
	return &MemoryEventBus{
		handlers: make(map[string][]subscription),
	}
}

// Subscribe 订阅事件。处理器按优先级排序，同优先级保持订阅顺序。
func (bus *MemoryEventBus) Subscribe(eventType string, handler EventHandler) func() {
	bus.mutex.Lock()
	defer bus.mutex.Unlock()

	bus.nextID++
	id := bus.nextID
	current := bus.handlers[eventType]
	subs := make([]subscription, 0, len(current)+1)
	subs = append(subs, current...)
	subs = append(subs, subscription{id: id, handler: handler})
	sort.SliceStable(subs, func(i, j int) bool {
		return subs[i].handler.Priority() < subs[j].handler.Priority()
	})
	bus.handlers[eventType] = subs

	var once sync.Once
	return func() {
		once.Do(func() { bus.unsubscribe(eventType, id) })
	}
}

func (bus *MemoryEventBus) unsubscribe(eventType string, id uint64) {
	bus.mutex.Lock()
	defer bus.mutex.Unlock()

	subs := bus.handlers[eventType]
	// 订阅列表只做整体替换，Publish 持有的旧切片不会被修改
	for i, s := range subs {
		if s.id == id {
			next := make([]subscription, 0, len(subs)-1)
			next = append(next, subs[:i]...)
			bus.handlers[eventType] = append(next, subs[i+1:]...)
			return
		}
	}
}

// Publish 发布事件，先通知具体类型的订阅者，再通知通配符订阅者
func (bus *MemoryEventBus) Publish(event Event) {
	bus.mutex.RLock()
	typed := bus.handlers[event.Type()]
	wildcard := bus.handlers[AllEvents]
	bus.mutex.RUnlock()

	for _, s := range typed {
		s.handler.Handle(event)
	}
	for _, s := range wildcard {
		s.handler.Handle(event)
	}
}

// Clear 清空所有订阅
func (bus *MemoryEventBus) Clear() {
	bus.mutex.Lock()
	defer bus.mutex.Unlock()

	bus.handlers = make(map[string][]subscription)
}
