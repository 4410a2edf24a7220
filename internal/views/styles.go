// Package views 把规范化后的计划和聊天记录渲染为终端文本。
// 所有渲染函数都是纯函数，不修改传入的数据。
package views

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/smp-planner/spmp/internal/i18n"
	"github.com/smp-planner/spmp/internal/plan"
)

// Options 渲染参数
type Options struct {
	Locale i18n.Locale
	// Width 可用宽度，<= 0 时使用 DefaultWidth
	Width int
}

// DefaultWidth 未指定宽度时的渲染宽度
const DefaultWidth = 80

func (o Options) width() int {
	if o.Width <= 0 {
		return DefaultWidth
	}
	return o.Width
}

func (o Options) locale() i18n.Locale {
	if o.Locale == "" {
		return i18n.Default
	}
	return o.Locale
}

var (
	mutedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	titleStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("39")).Bold(true)
	phaseStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("12")).Bold(true)
	userStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("12"))
	botStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	loadingStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	badgeStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("0")).Background(lipgloss.Color("13")).Padding(0, 1)

	emptyStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("8")).
			Italic(true).
			Padding(1, 2)

	cardStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("39")).
			Padding(0, 1)

	errorBoxStyle = lipgloss.NewStyle().
			Border(lipgloss.NormalBorder()).
			BorderForeground(lipgloss.Color("9")).
			Padding(0, 1)
)

// 工作量分级的颜色：短绿、中黄、长红
var effortColors = map[plan.EffortBand]lipgloss.Color{
	plan.EffortShort:  lipgloss.Color("10"),
	plan.EffortMedium: lipgloss.Color("11"),
	plan.EffortLong:   lipgloss.Color("9"),
}

var severityColors = map[plan.Severity]lipgloss.Color{
	plan.SeveritySevere:   lipgloss.Color("9"),
	plan.SeverityModerate: lipgloss.Color("11"),
	plan.SeverityMild:     lipgloss.Color("10"),
	plan.SeverityNeutral:  lipgloss.Color("8"),
}

func empty(text string) string {
	return emptyStyle.Render(text)
}
