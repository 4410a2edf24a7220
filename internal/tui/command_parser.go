package tui

import (
	"regexp"
	"strings"
)

// CommandType 斜杠命令类型
type CommandType int

const (
	CommandTypeUnknown CommandType = iota
	CommandTypeChat
	CommandTypePlan
	CommandTypeMode
	CommandTypeLang
	CommandTypeSection
	CommandTypeClear
	CommandTypeHelp
)

// Command 解析后的命令
type Command struct {
	Type CommandType
	Raw  string
	// Arg 命令参数：/mode 的模式、/lang 的语言、计划视图命令的视图名
	Arg string
}

type commandPattern struct {
	typ CommandType
	re  *regexp.Regexp
}

// CommandParser 命令解析器
type CommandParser struct {
	patterns []commandPattern
}

// NewCommandParser 创建新的命令解析器
func NewCommandParser() *CommandParser {
	parser := &CommandParser{}
	parser.initializePatterns()
	return parser
}

// initializePatterns 初始化正则表达式模式，第一个捕获组作为参数
func (p *CommandParser) initializePatterns() {
	p.patterns = []commandPattern{
		{CommandTypeChat, regexp.MustCompile(`(?i)^/chat$`)},
		{CommandTypePlan, regexp.MustCompile(`(?i)^/plan$`)},
		{CommandTypeMode, regexp.MustCompile(`(?i)^/mode\s+(\S+)$`)},
		{CommandTypeLang, regexp.MustCompile(`(?i)^/lang\s+(\S+)$`)},
		{CommandTypeSection, regexp.MustCompile(`(?i)^/(all|wbs|gantt|risks)$`)},
		{CommandTypeClear, regexp.MustCompile(`(?i)^/clear$`)},
		{CommandTypeHelp, regexp.MustCompile(`(?i)^/(?:help|\?)$`)},
	}
}

// Parse 解析命令字符串。不以 "/" 开头的输入不是命令，返回 nil；
// 无法识别的斜杠命令返回 CommandTypeUnknown。
func (p *CommandParser) Parse(input string) *Command {
	input = strings.TrimSpace(input)
	if !strings.HasPrefix(input, "/") {
		return nil
	}

	for _, pattern := range p.patterns {
		matches := pattern.re.FindStringSubmatch(input)
		if matches == nil {
			continue
		}
		cmd := &Command{Type: pattern.typ, Raw: input}
		if len(matches) >= 2 {
			cmd.Arg = strings.ToLower(strings.TrimSpace(matches[1]))
		}
		return cmd
	}

	return &Command{Type: CommandTypeUnknown, Raw: input}
}

// FormatCommandType 格式化命令类型为字符串
func FormatCommandType(cmdType CommandType) string {
	switch cmdType {
	case CommandTypeChat:
		return "CHAT"
	case CommandTypePlan:
		return "PLAN"
	case CommandTypeMode:
		return "MODE"
	case CommandTypeLang:
		return "LANG"
	case CommandTypeSection:
		return "SECTION"
	case CommandTypeClear:
		return "CLEAR"
	case CommandTypeHelp:
		return "HELP"
	default:
		return "UNKNOWN"
	}
}
