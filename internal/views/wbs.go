package views

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/tree"

	"github.com/smp-planner/spmp/internal/plan"
)

// RenderWBS 以树形渲染工作分解结构：项目 → 阶段 → 任务。
// WBS 缺失或没有阶段时显示"暂无数据"。
func RenderWBS(p *plan.ProjectData, opts Options) string {
	loc := opts.locale()
	if p == nil || p.WBS == nil || len(p.WBS.Phases) == 0 {
		return empty(loc.T("wbs.noData"))
	}

	name := p.WBS.ProjectName
	if name == "" {
		name = p.ProjectName
	}
	root := tree.Root(titleStyle.Render(name)).
		Enumerator(tree.RoundedEnumerator).
		EnumeratorStyle(mutedStyle)

	for _, phase := range p.WBS.Phases {
		label := phaseStyle.Render(joinNonEmpty(" ", phase.ID.String(), phase.Name))
		if phase.Description != "" {
			label += "\n" + mutedStyle.Render(phase.Description)
		}
		node := tree.Root(label).
			Enumerator(tree.RoundedEnumerator).
			EnumeratorStyle(mutedStyle)
		for _, task := range phase.Tasks {
			node.Child(taskLabel(task, opts))
		}
		root.Child(node)
	}
	return root.String()
}

func taskLabel(t plan.Task, opts Options) string {
	loc := opts.locale()
	band := plan.ClassifyEffort(t.EffortDays)
	effort := lipgloss.NewStyle().Foreground(effortColors[band])

	var sb strings.Builder
	sb.WriteString(joinNonEmpty(" ", t.ID.String(), t.Name))
	if t.EffortDays != nil {
		sb.WriteString(" ")
		sb.WriteString(effort.Render(fmt.Sprintf("[%s %s · %s]",
			strconv.FormatFloat(*t.EffortDays, 'f', -1, 64), loc.T("days"), loc.T("wbs.effort."+band.String()))))
	}

	var details []string
	if t.Description != "" {
		details = append(details, t.Description)
	}
	if t.Resource != "" {
		details = append(details, fmt.Sprintf("%s: %s", loc.T("wbs.resource"), t.Resource))
	}
	if len(t.Dependencies) > 0 {
		ids := make([]string, len(t.Dependencies))
		for i, d := range t.Dependencies {
			ids[i] = d.String()
		}
		details = append(details, fmt.Sprintf("%s: %s", loc.T("wbs.dependencies"), strings.Join(ids, ", ")))
	}
	for _, d := range details {
		sb.WriteString("\n")
		sb.WriteString(mutedStyle.Render(d))
	}
	return sb.String()
}

func joinNonEmpty(sep string, parts ...string) string {
	out := parts[:0:0]
	for _, p := range parts {
		if strings.TrimSpace(p) != "" {
			out = append(out, p)
		}
	}
	return strings.Join(out, sep)
}
