package views

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/smp-planner/spmp/internal/plan"
)

// RenderChat 渲染聊天记录，每条消息带角色标签和本地时间
func RenderChat(messages []plan.ChatMessage, opts Options) string {
	loc := opts.locale()
	if len(messages) == 0 {
		return empty(loc.T("chat.noData"))
	}

	body := lipgloss.NewStyle().Width(opts.width())
	var sb strings.Builder
	for i, msg := range messages {
		if i > 0 {
			sb.WriteString("\n\n")
		}
		label := userStyle.Render(loc.T("chat.you") + ":")
		if msg.Role == plan.RoleAssistant {
			label = botStyle.Render(loc.T("chat.assistant") + ":")
		}
		sb.WriteString(label)
		if !msg.Timestamp.IsZero() {
			sb.WriteString(" ")
			sb.WriteString(mutedStyle.Render(msg.Timestamp.Local().Format("15:04")))
		}
		sb.WriteString("\n")
		sb.WriteString(body.Render(msg.Content))
	}
	return sb.String()
}
