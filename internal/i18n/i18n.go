// Package i18n 提供界面语言匹配和双语（英语/阿拉伯语）文本目录
package i18n

import (
	"fmt"
	"strings"

	"golang.org/x/text/language"

	"github.com/smp-planner/spmp/internal/plan"
)

// Locale 界面语言
type Locale string

const (
	English Locale = "en"
	Arabic  Locale = "ar"
)

// Default 未能匹配时使用的语言
const Default = English

var (
	supported = []Locale{English, Arabic}
	matcher   = language.NewMatcher([]language.Tag{language.English, language.Arabic})
)

// Supported 返回支持的语言列表
func Supported() []Locale {
	return append([]Locale(nil), supported...)
}

// Match 把语言偏好（如 "ar-EG"、"en_US.UTF-8"、"en-GB,ar;q=0.8"）映射到支持的语言。
// 依次尝试每个参数，都无法匹配时返回 Default。
func Match(preferences ...string) Locale {
	for _, p := range preferences {
		p = normalizeTag(p)
		if p == "" {
			continue
		}
		tags, _, err := language.ParseAcceptLanguage(p)
		if err != nil || len(tags) == 0 {
			continue
		}
		if _, idx, conf := matcher.Match(tags...); conf != language.No {
			return supported[idx]
		}
	}
	return Default
}

// Parse 解析用户明确指定的语言，不支持的语言返回 false
func Parse(s string) (Locale, bool) {
	l := Match(s)
	if !strings.HasPrefix(strings.ToLower(normalizeTag(s)), string(l)) {
		return "", false
	}
	return l, true
}

// normalizeTag 处理 POSIX 风格的 LANG 值
func normalizeTag(s string) string {
	s = strings.TrimSpace(s)
	if strings.Contains(s, ",") {
		return s
	}
	if i := strings.IndexAny(s, ".@"); i >= 0 {
		s = s[:i]
	}
	if s == "C" || s == "POSIX" {
		return ""
	}
	return strings.ReplaceAll(s, "_", "-")
}

// RTL 判断语言是否从右到左书写
func (l Locale) RTL() bool {
	return l == Arabic
}

// Next 在支持的语言之间循环切换
func (l Locale) Next() Locale {
	for i, s := range supported {
		if s == l {
			return supported[(i+1)%len(supported)]
		}
	}
	return Default
}

// T 查找文本。当前语言缺少的键回落到英语，英语也缺少时返回键本身。
func (l Locale) T(key string) string {
	if s, ok := catalog[l][key]; ok {
		return s
	}
	if s, ok := catalog[English][key]; ok {
		return s
	}
	return key
}

// Tf 查找文本并按 fmt 格式化
func (l Locale) Tf(key string, args ...any) string {
	return fmt.Sprintf(l.T(key), args...)
}

// ErrorText 返回结构化错误种类的本地化说明。
// 未知种类由后端以自由文本发送，原样返回。
func (l Locale) ErrorText(kind plan.ErrorKind) string {
	if kind == "" {
		return ""
	}
	if !kind.Known() {
		return string(kind)
	}
	return l.T("errors." + string(kind))
}

// ChatMode 返回聊天模式的显示名称
func (l Locale) ChatMode(m plan.ChatMode) string {
	return l.T("chat.modes." + string(m))
}
