// Package report 把规范化后的计划导出为 Markdown 或 HTML 文档
package report

import (
	"bytes"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/russross/blackfriday/v2"

	"github.com/smp-planner/spmp/internal/i18n"
	"github.com/smp-planner/spmp/internal/plan"
)

// Format 导出格式
type Format string

const (
	FormatMarkdown Format = "markdown"
	FormatHTML     Format = "html"
)

// ParseFormat 解析格式名称，接受 md 作为 markdown 的别名
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "markdown", "md":
		return FormatMarkdown, nil
	case "html":
		return FormatHTML, nil
	}
	return "", fmt.Errorf("unknown report format %q (want markdown or html)", s)
}

// Options 导出参数
type Options struct {
	Locale i18n.Locale
	// Now 生成时间，为零值时不输出时间行
	Now time.Time
}

// Write 按指定格式写出报告
func Write(w io.Writer, p *plan.ProjectData, format Format, opts Options) error {
	var out []byte
	switch format {
	case FormatMarkdown:
		out = Markdown(p, opts)
	case FormatHTML:
		out = HTML(p, opts)
	default:
		return fmt.Errorf("unknown report format %q", format)
	}
	_, err := w.Write(out)
	return err
}

// HTML 把 Markdown 报告转换为 HTML 片段；阿拉伯语时包一层 dir="rtl"。
// 计划文本来自后端，其中的原始 HTML 不会输出。
func HTML(p *plan.ProjectData, opts Options) []byte {
	renderer := blackfriday.NewHTMLRenderer(blackfriday.HTMLRendererParameters{
		Flags: blackfriday.CommonHTMLFlags | blackfriday.SkipHTML,
	})
	body := blackfriday.Run(Markdown(p, opts),
		blackfriday.WithExtensions(blackfriday.CommonExtensions),
		blackfriday.WithRenderer(renderer))
	if opts.Locale.RTL() {
		var buf bytes.Buffer
		buf.WriteString(`<div dir="rtl">` + "\n")
		buf.Write(body)
		buf.WriteString("</div>\n")
		return buf.Bytes()
	}
	return body
}

// Markdown 渲染完整计划：项目信息、WBS、排期和风险
func Markdown(p *plan.ProjectData, opts Options) []byte {
	loc := opts.Locale
	if loc == "" {
		loc = i18n.Default
	}

	var b bytes.Buffer
	if p == nil {
		fmt.Fprintf(&b, "_%s_\n", loc.T("plan.noData"))
		return b.Bytes()
	}

	fmt.Fprintf(&b, "# %s\n\n", loc.Tf("report.title", p.ProjectName))
	fmt.Fprintf(&b, "- **%s:** %s\n", loc.T("project.methodology"), p.Methodology)
	if !p.ProjectID.IsZero() {
		fmt.Fprintf(&b, "- **%s:** %s\n", loc.T("project.id"), p.ProjectID)
	}
	if !opts.Now.IsZero() {
		fmt.Fprintf(&b, "- %s\n", loc.Tf("report.generated", opts.Now.Format(time.RFC3339)))
	}
	b.WriteString("\n")
	if p.ProjectScope != "" {
		fmt.Fprintf(&b, "## %s\n\n%s\n\n", loc.T("report.scope"), p.ProjectScope)
	}

	writeWBS(&b, p, loc)
	writeSchedule(&b, p, loc)
	writeRisks(&b, p, loc)
	return b.Bytes()
}

func writeWBS(b *bytes.Buffer, p *plan.ProjectData, loc i18n.Locale) {
	fmt.Fprintf(b, "## %s\n\n", loc.T("tabs.wbs"))
	if p.WBS == nil || len(p.WBS.Phases) == 0 {
		fmt.Fprintf(b, "_%s_\n\n", loc.T("wbs.noData"))
		return
	}
	for _, phase := range p.WBS.Phases {
		fmt.Fprintf(b, "### %s\n\n", loc.Tf("report.phase", phase.ID, phase.Name))
		if phase.Description != "" {
			fmt.Fprintf(b, "%s\n\n", phase.Description)
		}
		for _, t := range phase.Tasks {
			fmt.Fprintf(b, "- **%s** %s", t.ID, t.Name)
			if t.EffortDays != nil {
				fmt.Fprintf(b, " (%s %s)", strconv.FormatFloat(*t.EffortDays, 'f', -1, 64), loc.T("days"))
			}
			b.WriteString("\n")
			if t.Description != "" {
				fmt.Fprintf(b, "  - %s\n", t.Description)
			}
			if t.Resource != "" {
				fmt.Fprintf(b, "  - %s: %s\n", loc.T("wbs.resource"), t.Resource)
			}
			if len(t.Dependencies) > 0 {
				ids := make([]string, len(t.Dependencies))
				for i, d := range t.Dependencies {
					ids[i] = d.String()
				}
				fmt.Fprintf(b, "  - %s: %s\n", loc.T("wbs.dependencies"), strings.Join(ids, ", "))
			}
		}
		b.WriteString("\n")
	}
}

func writeSchedule(b *bytes.Buffer, p *plan.ProjectData, loc i18n.Locale) {
	fmt.Fprintf(b, "## %s\n\n", loc.T("report.schedule"))
	tasks := p.GanttTasks()
	if len(tasks) == 0 {
		fmt.Fprintf(b, "_%s_\n\n", loc.T("gantt.noData"))
		return
	}
	fmt.Fprintf(b, "| %s | %s | %s | %s |\n", loc.T("report.task"), loc.T("report.start"), loc.T("report.end"), loc.T("wbs.dependencies"))
	b.WriteString("|---|---|---|---|\n")
	for _, t := range tasks {
		name := t.Name
		if name == "" {
			name = t.ID
		}
		fmt.Fprintf(b, "| %s | %s | %s | %s |\n",
			cell(name), t.Start.Format("2006-01-02"), t.End.Format("2006-01-02"), cell(strings.Join(t.Dependencies, ", ")))
	}
	b.WriteString("\n")
}

func writeRisks(b *bytes.Buffer, p *plan.ProjectData, loc i18n.Locale) {
	fmt.Fprintf(b, "## %s\n\n", loc.T("tabs.risks"))
	if len(p.Risks) == 0 {
		fmt.Fprintf(b, "_%s_\n\n", loc.T("risk.noData"))
		return
	}
	fmt.Fprintf(b, "| %s | %s | %s | %s | %s |\n",
		loc.T("risk.table.name"), loc.T("risk.table.category"), loc.T("risk.table.probability"),
		loc.T("risk.table.impact"), loc.T("risk.table.mitigation"))
	b.WriteString("|---|---|---|---|---|\n")
	for _, r := range p.Risks {
		name := r.Title
		if name == "" {
			name = r.Description
		} else if r.Description != "" {
			name += ": " + r.Description
		}
		fmt.Fprintf(b, "| %s | %s | %s | %s | %s |\n",
			cell(name), cell(r.Category), cell(r.Probability.String()), cell(r.Impact.String()), cell(r.Mitigation))
	}
	b.WriteString("\n")
	fmt.Fprintf(b, "%s\n", loc.Tf("risk.total", len(p.Risks)))
}

// cell 转义表格单元格中的竖线和换行
func cell(s string) string {
	s = strings.ReplaceAll(s, "|", `\|`)
	s = strings.Join(strings.Fields(s), " ")
	if s == "" {
		return "-"
	}
	return s
}
