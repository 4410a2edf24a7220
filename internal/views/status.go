package views

import (
	"fmt"
	"strings"

	"github.com/mattn/go-runewidth"

	"github.com/smp-planner/spmp/internal/plan"
	"github.com/smp-planner/spmp/internal/state"
)

// RenderStatus 渲染结果区域的状态面板，优先级为 loading > 结构化错误 > 普通消息。
// 没有需要显示的内容时返回空字符串。
func RenderStatus(s state.State, opts Options) string {
	loc := opts.locale()
	switch {
	case s.Loading:
		return loadingStyle.Render(loc.T("common.loading"))
	case s.Error != "":
		lines := []string{
			errorStyle.Bold(true).Render(loc.T("status.errorTitle")),
			loc.ErrorText(s.Error),
		}
		if s.Message != "" && s.Message != string(s.Error) {
			lines = append(lines, mutedStyle.Render(s.Message))
		}
		if s.HTTPStatus != 0 && (s.HTTPStatus < 200 || s.HTTPStatus >= 300) {
			lines = append(lines, mutedStyle.Render(loc.Tf("status.httpStatus", s.HTTPStatus)))
		}
		return errorBoxStyle.Width(min(opts.width(), 100) - 2).Render(strings.Join(lines, "\n"))
	case s.Message != "":
		return errorStyle.Render(s.Message)
	}
	return ""
}

// RenderProjectCard 渲染项目名称、方法论徽章和简要统计
func RenderProjectCard(p *plan.ProjectData, opts Options) string {
	loc := opts.locale()
	if p == nil {
		return empty(loc.T("plan.noData"))
	}

	header := titleStyle.Render(p.ProjectName) + "  " + badgeStyle.Render(p.Methodology)
	lines := []string{header}
	if !p.ProjectID.IsZero() {
		lines = append(lines, mutedStyle.Render(fmt.Sprintf("%s: %s", loc.T("project.id"), p.ProjectID)))
	}
	phases := 0
	if p.WBS != nil {
		phases = len(p.WBS.Phases)
	}
	lines = append(lines, mutedStyle.Render(loc.Tf("project.stats", phases, p.WBS.TaskCount(), len(p.Risks))))
	if p.ProjectScope != "" {
		lines = append(lines, truncate(p.ProjectScope, opts.width()-4))
	}
	return cardStyle.Render(strings.Join(lines, "\n"))
}

func truncate(s string, width int) string {
	s = strings.Join(strings.Fields(s), " ")
	if width <= 1 {
		return s
	}
	return runewidth.Truncate(s, width, "…")
}
