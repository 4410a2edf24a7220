package views

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/smp-planner/spmp/internal/plan"
)

const (
	dateLayout    = "2006-01-02"
	maxLabelWidth = 28
	minBarWidth   = 10
)

var (
	barStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("39"))
	doneStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	milestoneStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("13"))
)

// RenderGantt 把甘特图任务渲染为按时间缩放的文本条。
// 负载缺失或提取不到任何有效任务时显示"暂无数据"。
func RenderGantt(p *plan.ProjectData, opts Options) string {
	loc := opts.locale()
	tasks := p.GanttTasks()
	if len(tasks) == 0 {
		return empty(loc.T("gantt.noData"))
	}

	lo, hi := plan.Span(tasks)
	total := hi.Sub(lo).Hours()
	if total <= 0 {
		total = 24
	}

	labelWidth := 0
	for _, t := range tasks {
		labelWidth = max(labelWidth, runewidth.StringWidth(ganttLabel(t)))
	}
	labelWidth = min(labelWidth, maxLabelWidth)
	barWidth := max(opts.width()-labelWidth-3, minBarWidth)

	names := make(map[string]string, len(tasks))
	for _, t := range tasks {
		names[t.ID] = t.Name
	}

	var sb strings.Builder
	sb.WriteString(titleStyle.Render(loc.Tf("gantt.range", lo.Format(dateLayout), hi.Format(dateLayout))))
	sb.WriteString("\n\n")
	for _, t := range tasks {
		label := runewidth.FillRight(runewidth.Truncate(ganttLabel(t), labelWidth, "…"), labelWidth)
		offset := int(math.Floor(t.Start.Sub(lo).Hours() / total * float64(barWidth)))
		length := int(math.Round(t.End.Sub(t.Start).Hours() / total * float64(barWidth)))
		offset = min(max(offset, 0), barWidth-1)
		length = min(max(length, 1), barWidth-offset)

		sb.WriteString(label)
		sb.WriteString(" │")
		sb.WriteString(strings.Repeat(" ", offset))
		sb.WriteString(ganttBar(t, length))
		sb.WriteString("\n")

		detail := fmt.Sprintf("%s – %s", t.Start.Format(dateLayout), t.End.Format(dateLayout))
		if t.Type == plan.GanttTypeMilestone {
			detail += " · " + loc.T("gantt.milestone")
		}
		if t.Resource != "" {
			detail += " · " + t.Resource
		}
		if len(t.Dependencies) > 0 {
			deps := make([]string, len(t.Dependencies))
			for i, id := range t.Dependencies {
				// 依赖只按字符串比较，找不到时显示原始 id
				if name, ok := names[id]; ok && name != "" {
					deps[i] = name
				} else {
					deps[i] = id
				}
			}
			detail += " · " + loc.Tf("gantt.dependsOn", strings.Join(deps, ", "))
		}
		sb.WriteString(strings.Repeat(" ", labelWidth))
		sb.WriteString(" │")
		sb.WriteString(mutedStyle.Render(detail))
		sb.WriteString("\n")
	}
	return strings.TrimRight(sb.String(), "\n")
}

func ganttLabel(t plan.GanttTask) string {
	if t.Name != "" {
		return t.Name
	}
	return t.ID
}

func ganttBar(t plan.GanttTask, length int) string {
	if t.Type == plan.GanttTypeMilestone {
		return milestoneStyle.Render("◆")
	}
	done := 0
	if t.Progress != nil {
		// 进度可能是 0–1 的比例或 0–100 的百分比
		p := *t.Progress
		if p > 1 {
			p /= 100
		}
		p = math.Min(math.Max(p, 0), 1)
		done = int(math.Round(p * float64(length)))
	}
	return doneStyle.Render(strings.Repeat("█", done)) + barStyle.Render(strings.Repeat("▒", length-done))
}
