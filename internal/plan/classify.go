package plan

import "strings"

// EffortBand 任务工作量的显示分级，不持久化
type EffortBand int

const (
	EffortShort  EffortBand = iota // < 4 天
	EffortMedium                   // 4–8 天（含）
	EffortLong                     // > 8 天
)

func (b EffortBand) String() string {
	switch b {
	case EffortMedium:
		return "medium"
	case EffortLong:
		return "long"
	default:
		return "short"
	}
}

// ClassifyEffort 缺失的工作量按 0 处理
func ClassifyEffort(days *float64) EffortBand {
	d := 0.0
	if days != nil {
		d = *days
	}
	switch {
	case d > 8:
		return EffortLong
	case d >= 4:
		return EffortMedium
	default:
		return EffortShort
	}
}

// Severity 风险概率/影响的显示分级
type Severity int

const (
	SeverityNeutral Severity = iota
	SeverityMild
	SeverityModerate
	SeveritySevere
)

func (s Severity) String() string {
	switch s {
	case SeverityMild:
		return "mild"
	case SeverityModerate:
		return "moderate"
	case SeveritySevere:
		return "severe"
	default:
		return "neutral"
	}
}

var severityKeywords = []struct {
	severity Severity
	words    []string
}{
	{SeveritySevere, []string{"high", "عالي"}},
	{SeverityModerate, []string{"medium", "متوسط"}},
	{SeverityMild, []string{"low", "منخفض"}},
}

// ClassifySeverity 按双语关键词做大小写不敏感的子串匹配，顺序为 high、medium、low
func ClassifySeverity(v Scalar) Severity {
	s := strings.ToLower(v.String())
	for _, kw := range severityKeywords {
		for _, w := range kw.words {
			if strings.Contains(s, w) {
				return kw.severity
			}
		}
	}
	return SeverityNeutral
}
