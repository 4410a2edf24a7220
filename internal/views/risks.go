package views

import (
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/smp-planner/spmp/internal/plan"
)

// RenderRisks 以表格渲染风险登记册。风险列表为空时显示"暂无数据"。
// 概率和影响按严重程度着色，无法分类的值保持原样显示。
func RenderRisks(p *plan.ProjectData, opts Options) string {
	loc := opts.locale()
	if p == nil || len(p.Risks) == 0 {
		return empty(loc.T("risk.noData"))
	}
	return RenderRiskTable(p.Risks, opts)
}

// RenderRiskTable 渲染任意风险列表，供单独的风险接口复用
func RenderRiskTable(risks []plan.Risk, opts Options) string {
	loc := opts.locale()
	if len(risks) == 0 {
		return empty(loc.T("risk.noData"))
	}

	// 描述和缓解措施平分剩余宽度
	width := opts.width()
	textWidth := max((width-40)/2, 16)

	tw := table.NewWriter()
	tw.SetStyle(table.StyleLight)
	// 保留本地化标题的原始大小写
	tw.Style().Format.Header = text.FormatDefault
	tw.Style().Format.Footer = text.FormatDefault
	tw.AppendHeader(table.Row{
		"#",
		loc.T("risk.table.name"),
		loc.T("risk.table.category"),
		loc.T("risk.table.probability"),
		loc.T("risk.table.impact"),
		loc.T("risk.table.mitigation"),
	})
	tw.SetColumnConfigs([]table.ColumnConfig{
		{Number: 2, WidthMax: textWidth},
		{Number: 6, WidthMax: textWidth},
	})

	for i, r := range risks {
		id := r.ID.String()
		if id == "" {
			id = strconv.Itoa(i + 1)
		}
		tw.AppendRow(table.Row{
			id,
			riskSummary(r),
			dash(r.Category),
			severityCell(r.Probability),
			severityCell(r.Impact),
			dash(r.Mitigation),
		})
	}
	tw.AppendFooter(table.Row{"", loc.Tf("risk.total", len(risks))})
	return tw.Render()
}

func riskSummary(r plan.Risk) string {
	var parts []string
	if r.Title != "" {
		parts = append(parts, r.Title)
	}
	if r.Description != "" && r.Description != r.Title {
		parts = append(parts, r.Description)
	}
	if r.Owner != "" {
		parts = append(parts, "@"+r.Owner)
	}
	if len(parts) == 0 {
		return "-"
	}
	return strings.Join(parts, "\n")
}

func severityCell(v plan.Scalar) string {
	if v.IsZero() {
		return "-"
	}
	style := lipgloss.NewStyle().Foreground(severityColors[plan.ClassifySeverity(v)])
	return style.Render(v.String())
}

func dash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return s
}
