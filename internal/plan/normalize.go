package plan

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
)

// object 是松散解析后的 JSON 对象，所有"猜测结构"的逻辑都基于它
type object map[string]json.RawMessage

func decodeObject(raw []byte) (object, bool) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || raw[0] != '{' {
		return nil, false
	}
	var obj object
	if err := json.Unmarshal(raw, &obj); err != nil {
		return nil, false
	}
	return obj, true
}

func decodeArray(raw []byte) ([]json.RawMessage, bool) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || raw[0] != '[' {
		return nil, false
	}
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, false
	}
	return items, true
}

// present 判断字段存在且不是 null
func present(raw json.RawMessage) bool {
	raw = bytes.TrimSpace(raw)
	return len(raw) > 0 && !bytes.Equal(raw, []byte("null"))
}

func (o object) has(key string) bool {
	return present(o[key])
}

func (o object) str(key string) string {
	s, _ := textOf(o[key])
	return s
}

// first 返回第一个存在且非 null 的字段
func (o object) first(keys ...string) (json.RawMessage, bool) {
	for _, k := range keys {
		if o.has(k) {
			return o[k], true
		}
	}
	return nil, false
}

func (o object) number(key string) *float64 {
	s, _ := textOf(o[key])
	if s == "" {
		return nil
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return nil
	}
	return &f
}

func idList(raw json.RawMessage) []string {
	items, ok := decodeArray(raw)
	if !ok {
		return []string{}
	}
	ids := make([]string, 0, len(items))
	for _, item := range items {
		if s, _ := textOf(item); s != "" {
			ids = append(ids, s)
		}
	}
	return ids
}

func isSuccess(status int) bool {
	return status >= 200 && status < 300
}

// detectError 识别结构化错误。error 字段在任意状态码下都生效，
// 后端有时会在 200 响应体里报告错误。
func detectError(status int, obj object) *StructuredError {
	if kind := obj.str("error"); kind != "" {
		return &StructuredError{Kind: ErrorKind(kind), Message: obj.str("message"), Status: status}
	}
	if !isSuccess(status) {
		msg := obj.str("message")
		if msg == "" {
			msg = obj.str("detail")
		}
		if msg == "" {
			msg = http.StatusText(status)
		}
		return &StructuredError{Kind: ErrRequestFailed, Message: msg, Status: status}
	}
	return nil
}

// undecodable 处理不是 JSON 对象的响应体
func undecodable(status int) *StructuredError {
	if isSuccess(status) {
		return &StructuredError{Kind: ErrParse, Message: "backend did not return a JSON object", Status: status}
	}
	return &StructuredError{Kind: ErrRequestFailed, Message: http.StatusText(status), Status: status}
}

// NormalizeFullPlan 把 /api/plan/full/ 的响应转换为规范的 ProjectData。
// 出现结构化错误时跳过规范化，只返回错误。
// project_scope 总是取调用方的请求文本，不信任后端回显。
func NormalizeFullPlan(status int, body []byte, requestText string) (*ProjectData, *StructuredError) {
	obj, ok := decodeObject(body)
	if !ok {
		return nil, undecodable(status)
	}
	if serr := detectError(status, obj); serr != nil {
		return nil, serr
	}

	data := &ProjectData{
		ProjectID:    ID(obj.str("project_id")),
		ProjectName:  obj.str("project_name"),
		ProjectScope: requestText,
		Methodology:  obj.str("methodology"),
		Risks:        decodeRisks(obj["risks"]),
	}
	if strings.TrimSpace(data.ProjectName) == "" {
		data.ProjectName = DefaultProjectName
	}
	if strings.TrimSpace(data.Methodology) == "" {
		data.Methodology = DefaultMethodology
	}

	if obj.has("wbs") {
		if wbs, ok := decodeWBS(obj["wbs"]); ok {
			data.WBS = wbs
		} else {
			slog.Warn("wbs payload is not an object, treating as absent")
		}
	}
	if obj.has("gantt") {
		data.Gantt = append(json.RawMessage(nil), bytes.TrimSpace(obj["gantt"])...)
	}
	return data, nil
}

// NormalizeAnswer 处理 /api/ask/ 的响应；缺少 answer 时返回空字符串
func NormalizeAnswer(status int, body []byte) (string, *StructuredError) {
	obj, ok := decodeObject(body)
	if !ok {
		return "", undecodable(status)
	}
	if serr := detectError(status, obj); serr != nil {
		return "", serr
	}
	return obj.str("answer"), nil
}

// NormalizeWBS 处理 /api/wbs/ 的响应
func NormalizeWBS(status int, body []byte) (*WBS, *StructuredError) {
	obj, ok := decodeObject(body)
	if !ok {
		return nil, undecodable(status)
	}
	if serr := detectError(status, obj); serr != nil {
		return nil, serr
	}
	wbs, ok := decodeWBS(body)
	if !ok {
		return nil, &StructuredError{Kind: ErrParse, Message: "wbs payload is not an object", Status: status}
	}
	return wbs, nil
}

// NormalizeGantt 处理 /api/gantt/ 的响应。后端直接返回甘特图负载（不包装），
// 可能是对象也可能是数组。
func NormalizeGantt(status int, body []byte) (json.RawMessage, *StructuredError) {
	if _, ok := decodeArray(body); ok {
		if !isSuccess(status) {
			return nil, &StructuredError{Kind: ErrRequestFailed, Message: http.StatusText(status), Status: status}
		}
		return append(json.RawMessage(nil), bytes.TrimSpace(body)...), nil
	}
	obj, ok := decodeObject(body)
	if !ok {
		return nil, undecodable(status)
	}
	if serr := detectError(status, obj); serr != nil {
		return nil, serr
	}
	return append(json.RawMessage(nil), bytes.TrimSpace(body)...), nil
}

// NormalizeRisks 处理 /api/risk/generate/ 的响应
func NormalizeRisks(status int, body []byte) ([]Risk, *StructuredError) {
	obj, ok := decodeObject(body)
	if !ok {
		return nil, undecodable(status)
	}
	if serr := detectError(status, obj); serr != nil {
		return nil, serr
	}
	return decodeRisks(obj["risks"]), nil
}

func decodeWBS(raw json.RawMessage) (*WBS, bool) {
	obj, ok := decodeObject(raw)
	if !ok {
		return nil, false
	}
	wbs := &WBS{
		ProjectName: obj.str("project_name"),
		Methodology: obj.str("methodology"),
		Phases:      []Phase{},
	}
	phases, _ := decodeArray(obj["phases"])
	for _, item := range phases {
		po, ok := decodeObject(item)
		if !ok {
			continue
		}
		phase := Phase{
			ID:          ID(po.str("id")),
			Name:        po.str("name"),
			Description: po.str("description"),
			Tasks:       []Task{},
		}
		tasks, _ := decodeArray(po["tasks"])
		for _, t := range tasks {
			to, ok := decodeObject(t)
			if !ok {
				continue
			}
			phase.Tasks = append(phase.Tasks, decodeTask(to))
		}
		wbs.Phases = append(wbs.Phases, phase)
	}
	return wbs, true
}

func decodeTask(o object) Task {
	task := Task{
		ID:          ID(o.str("id")),
		Name:        o.str("name"),
		Description: o.str("description"),
		Resource:    o.str("resource"),
	}
	if effort := o.number("effort_days"); effort != nil && *effort >= 0 {
		task.EffortDays = effort
	}
	for _, dep := range idList(o["dependencies"]) {
		task.Dependencies = append(task.Dependencies, ID(dep))
	}
	return task
}

func decodeRisks(raw json.RawMessage) []Risk {
	risks := []Risk{}
	if !present(raw) {
		return risks
	}
	items, ok := decodeArray(raw)
	if !ok {
		slog.Warn("risks payload is not an array, using empty register")
		return risks
	}
	for _, item := range items {
		o, ok := decodeObject(item)
		if !ok {
			continue
		}
		var prob, impact Scalar
		_ = prob.UnmarshalJSON(o["probability"])
		_ = impact.UnmarshalJSON(o["impact"])
		risks = append(risks, Risk{
			ID:          ID(o.str("id")),
			Title:       o.str("title"),
			Description: o.str("description"),
			Category:    o.str("category"),
			Trigger:     o.str("trigger"),
			Owner:       o.str("owner"),
			Probability: prob,
			Impact:      impact,
			Mitigation:  o.str("mitigation"),
		})
	}
	return risks
}
