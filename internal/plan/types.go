package plan

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	// DefaultProjectName 后端未返回项目名称时使用的占位名称
	DefaultProjectName = "Untitled project"
	// DefaultMethodology 后端未返回方法论时使用的回退标签
	DefaultMethodology = "Agile"
)

// ID 是后端分配的不透明标识，JSON 中可以是字符串或数字，只按字符串相等比较
type ID string

// String 返回标识的文本形式
func (id ID) String() string {
	return string(id)
}

// IsZero 判断标识是否缺失
func (id ID) IsZero() bool {
	return id == ""
}

// Scalar 保存自由格式的字符串或序数数字（例如风险的概率和影响）
type Scalar struct {
	text    string
	numeric bool
}

// TextScalar 创建文本值
func TextScalar(s string) Scalar {
	return Scalar{text: s}
}

// NumberScalar 创建数字值
func NumberScalar(f float64) Scalar {
	return Scalar{text: strconv.FormatFloat(f, 'f', -1, 64), numeric: true}
}

// String 返回值的显示文本
func (s Scalar) String() string {
	return s.text
}

// IsZero 判断值是否缺失
func (s Scalar) IsZero() bool {
	return s.text == ""
}

// IsNumeric 判断后端是否以数字形式发送
func (s Scalar) IsNumeric() bool {
	return s.numeric
}

// UnmarshalJSON 接受字符串、数字、布尔或 null
func (s *Scalar) UnmarshalJSON(data []byte) error {
	text, numeric := textOf(data)
	*s = Scalar{text: text, numeric: numeric}
	return nil
}

// MarshalJSON 保持原始的数字或字符串形式
func (s Scalar) MarshalJSON() ([]byte, error) {
	if s.text == "" {
		return []byte("null"), nil
	}
	if s.numeric {
		return []byte(s.text), nil
	}
	return json.Marshal(s.text)
}

// WBS 是工作分解结构：阶段的有序序列
type WBS struct {
	ProjectName string  `json:"project_name,omitempty"`
	Methodology string  `json:"methodology,omitempty"`
	Phases      []Phase `json:"phases"`
}

// Phase WBS 中的一个阶段
type Phase struct {
	ID          ID     `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Tasks       []Task `json:"tasks"`
}

// Task WBS 中的一个任务
type Task struct {
	ID           ID       `json:"id"`
	Name         string   `json:"name"`
	Description  string   `json:"description,omitempty"`
	EffortDays   *float64 `json:"effort_days,omitempty"`
	Resource     string   `json:"resource,omitempty"`
	Dependencies []ID     `json:"dependencies,omitempty"`
}

// TaskCount 返回所有阶段中的任务总数
func (w *WBS) TaskCount() int {
	if w == nil {
		return 0
	}
	n := 0
	for _, p := range w.Phases {
		n += len(p.Tasks)
	}
	return n
}

// GanttType 甘特图条目的种类
type GanttType string

const (
	GanttTypeTask      GanttType = "task"
	GanttTypeMilestone GanttType = "milestone"
	GanttTypeProject   GanttType = "project"
)

// GanttTask 是从甘特图负载中提取出的、可直接渲染的排期条目
type GanttTask struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Start        time.Time `json:"start_date"`
	End          time.Time `json:"end_date"`
	Dependencies []string  `json:"dependencies"`
	Progress     *float64  `json:"progress,omitempty"`
	Type         GanttType `json:"type,omitempty"`
	Resource     string    `json:"resource,omitempty"`
}

// Risk 风险登记册中的一条风险
type Risk struct {
	ID          ID     `json:"id"`
	Title       string `json:"title,omitempty"`
	Description string `json:"description"`
	Category    string `json:"category,omitempty"`
	Trigger     string `json:"trigger,omitempty"`
	Owner       string `json:"owner,omitempty"`
	Probability Scalar `json:"probability"`
	Impact      Scalar `json:"impact"`
	Mitigation  string `json:"mitigation,omitempty"`
}

// ProjectData 是规范化后的完整计划记录。
// WBS 和 Gantt 为 nil 表示尚未生成；Risks 在规范化后永远不为 nil。
type ProjectData struct {
	ProjectID    ID              `json:"project_id,omitempty"`
	ProjectName  string          `json:"project_name"`
	ProjectScope string          `json:"project_scope,omitempty"`
	Methodology  string          `json:"methodology"`
	WBS          *WBS            `json:"wbs,omitempty"`
	Gantt        json.RawMessage `json:"gantt,omitempty"`
	Risks        []Risk          `json:"risks"`
}

// GanttTasks 从甘特图负载中提取可渲染的任务
func (p *ProjectData) GanttTasks() []GanttTask {
	if p == nil || p.Gantt == nil {
		return []GanttTask{}
	}
	return ExtractGanttTasks(p.Gantt)
}

// Clone 返回深拷贝，调用方可以自由持有
func (p *ProjectData) Clone() *ProjectData {
	if p == nil {
		return nil
	}
	out := *p
	if p.WBS != nil {
		w := *p.WBS
		w.Phases = make([]Phase, len(p.WBS.Phases))
		for i, ph := range p.WBS.Phases {
			ph.Tasks = append([]Task(nil), ph.Tasks...)
			for j := range ph.Tasks {
				t := &ph.Tasks[j]
				if t.EffortDays != nil {
					days := *t.EffortDays
					t.EffortDays = &days
				}
				t.Dependencies = append([]ID(nil), t.Dependencies...)
			}
			w.Phases[i] = ph
		}
		out.WBS = &w
	}
	if p.Gantt != nil {
		out.Gantt = append(json.RawMessage(nil), p.Gantt...)
	}
	out.Risks = append([]Risk{}, p.Risks...)
	return &out
}

// ChatMode 聊天回答的详细程度
type ChatMode string

const (
	ChatModeChild    ChatMode = "child"
	ChatModeNormal   ChatMode = "normal"
	ChatModeDetailed ChatMode = "detailed"
)

// ChatModes 按显示顺序列出所有模式
var ChatModes = []ChatMode{ChatModeChild, ChatModeNormal, ChatModeDetailed}

// ParseChatMode 解析模式名称，未知名称返回 false
func ParseChatMode(s string) (ChatMode, bool) {
	switch ChatMode(strings.ToLower(strings.TrimSpace(s))) {
	case ChatModeChild:
		return ChatModeChild, true
	case ChatModeNormal:
		return ChatModeNormal, true
	case ChatModeDetailed:
		return ChatModeDetailed, true
	}
	return "", false
}

// Next 返回循环中的下一个模式
func (m ChatMode) Next() ChatMode {
	for i, mode := range ChatModes {
		if mode == m {
			return ChatModes[(i+1)%len(ChatModes)]
		}
	}
	return ChatModeNormal
}

// Role 聊天消息的角色
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// ChatMessage 聊天记录中的一条消息，插入后不再修改
type ChatMessage struct {
	ID        string    `json:"id"`
	Role      Role      `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// NewChatMessage 创建带有随机 ID 的消息
func NewChatMessage(role Role, content string, at time.Time) ChatMessage {
	return ChatMessage{
		ID:        uuid.NewString(),
		Role:      role,
		Content:   content,
		Timestamp: at,
	}
}

// textOf 把 JSON 标量转为文本；第二个返回值表示是否为数字
func textOf(raw json.RawMessage) (string, bool) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return "", false
	}
	switch raw[0] {
	case '"':
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return "", false
		}
		return s, false
	case 't', 'f':
		var b bool
		if err := json.Unmarshal(raw, &b); err != nil {
			return "", false
		}
		return strconv.FormatBool(b), false
	case 'n', '{', '[':
		return "", false
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err != nil {
		return "", false
	}
	return n.String(), true
}
