// Package locale 负责请求语言的协商，以及面向用户的中英文反馈文案。
package locale

import (
	"strings"

	"golang.org/x/text/language"
)

const (
	LanguageChinese = "zh"
	LanguageEnglish = "en"
)

// supported 的顺序即 matcher 的兜底顺序，中文优先
var (
	supported = []string{LanguageChinese, LanguageEnglish}
	matcher   = language.NewMatcher([]language.Tag{language.Chinese, language.English})
)

// NormalizeLanguage 将 BCP 47 标签（如 zh-CN、en_US）归一为 zh / en，不支持的语言返回空串
func NormalizeLanguage(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if strings.EqualFold(trimmed, "cn") {
		return LanguageChinese
	}
	tag, err := language.Parse(trimmed)
	if err != nil {
		return ""
	}
	base, _ := tag.Base()
	switch base.String() {
	case LanguageChinese:
		return LanguageChinese
	case LanguageEnglish:
		return LanguageEnglish
	}
	return ""
}

// Negotiate 按 Accept-Language 的权重挑选支持的语言，无可用语言时返回空串
func Negotiate(acceptLanguage string) string {
	tags, _, err := language.ParseAcceptLanguage(acceptLanguage)
	if err != nil || len(tags) == 0 {
		return ""
	}
	_, index, confidence := matcher.Match(tags...)
	if confidence == language.No {
		return ""
	}
	return supported[index]
}

// Resolve 返回第一个可识别的候选语言，全部无法识别时回退到中文
func Resolve(candidates ...string) string {
	for _, candidate := range candidates {
		if normalized := NormalizeLanguage(candidate); normalized != "" {
			return normalized
		}
	}
	return LanguageChinese
}
