package views

import (
	"strings"

	"github.com/smp-planner/spmp/internal/plan"
)

// RenderPlan 依次渲染项目卡片、WBS、甘特图和风险登记册
func RenderPlan(p *plan.ProjectData, opts Options) string {
	if p == nil {
		return RenderProjectCard(nil, opts)
	}
	return strings.Join([]string{
		RenderProjectCard(p, opts),
		RenderWBS(p, opts),
		RenderGantt(p, opts),
		RenderRisks(p, opts),
	}, "\n\n")
}
