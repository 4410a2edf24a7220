package plan

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"
)

// dateLayouts 接受的日期字符串格式，按顺序尝试
var dateLayouts = []struct {
	layout string
	local  bool // 没有时区信息的日期时间按本地时间解释
}{
	{time.RFC3339Nano, false},
	{"2006-01-02T15:04:05", true},
	{"2006-01-02T15:04", true},
	{"2006-01-02 15:04:05", true},
	{"2006-01-02", false},
	{"2006/01/02", false},
	{time.RFC1123Z, false},
	{time.RFC1123, false},
	{"Jan 2, 2006", false},
	{"2 Jan 2006", false},
}

// ExtractGanttTasks 从形状未知的甘特图负载中找出任务列表。
// 依次尝试 gantt_tasks、tasks 字段，负载本身是数组时直接使用，否则为空。
// 缺少可解析开始或结束时间的任务会被静默丢弃。
func ExtractGanttTasks(raw json.RawMessage) []GanttTask {
	items := locateGanttList(raw)
	tasks := make([]GanttTask, 0, len(items))
	for idx, item := range items {
		o, ok := decodeObject(item)
		if !ok {
			continue
		}
		start, ok := instant(o, "start_date", "start")
		if !ok {
			continue
		}
		end, ok := instant(o, "end_date", "end")
		if !ok {
			continue
		}

		id := o.str("id")
		if id == "" {
			id = strconv.Itoa(idx)
		}
		deps := []string{}
		if raw, ok := o.first("dependencies", "depends_on"); ok {
			deps = idList(raw)
		}

		task := GanttTask{
			ID:           id,
			Name:         o.str("name"),
			Start:        start,
			End:          end,
			Dependencies: deps,
			Progress:     o.number("progress"),
			Resource:     o.str("resource"),
		}
		switch t := GanttType(strings.ToLower(o.str("type"))); t {
		case GanttTypeTask, GanttTypeMilestone, GanttTypeProject:
			task.Type = t
		}
		tasks = append(tasks, task)
	}
	return tasks
}

func locateGanttList(raw json.RawMessage) []json.RawMessage {
	if obj, ok := decodeObject(raw); ok {
		for _, key := range []string{"gantt_tasks", "tasks"} {
			if items, ok := decodeArray(obj[key]); ok {
				return items
			}
		}
		return nil
	}
	items, _ := decodeArray(raw)
	return items
}

// instant 读取第一个存在的字段并解析为时间点
func instant(o object, keys ...string) (time.Time, bool) {
	raw, ok := o.first(keys...)
	if !ok {
		return time.Time{}, false
	}
	return ParseInstant(raw)
}

// ParseInstant 接受毫秒级 epoch 数字或日期字符串。epoch 0 视为缺失。
func ParseInstant(raw json.RawMessage) (time.Time, bool) {
	text, numeric := textOf(raw)
	if text == "" {
		return time.Time{}, false
	}
	if numeric {
		ms, err := strconv.ParseFloat(text, 64)
		if err != nil || ms == 0 {
			return time.Time{}, false
		}
		return time.UnixMilli(int64(ms)).UTC(), true
	}
	return parseDate(strings.TrimSpace(text))
}

func parseDate(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	for _, l := range dateLayouts {
		var (
			t   time.Time
			err error
		)
		if l.local {
			t, err = time.ParseInLocation(l.layout, s, time.Local)
		} else {
			t, err = time.Parse(l.layout, s)
		}
		if err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// Span 返回任务集合的最早开始和最晚结束时间
func Span(tasks []GanttTask) (time.Time, time.Time) {
	var lo, hi time.Time
	for i, t := range tasks {
		if i == 0 || t.Start.Before(lo) {
			lo = t.Start
		}
		if i == 0 || t.End.After(hi) {
			hi = t.End
		}
	}
	return lo, hi
}
