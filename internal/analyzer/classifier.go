package analyzer

import (
	"regexp"

	"contract-risk-go/internal/model"
)

// ClausePattern 将条款类别与其触发用的正则绑定。
// 切片顺序即匹配优先级，命中第一个后停止。
type ClausePattern struct {
	Type    model.ClauseType
	Pattern *regexp.Regexp
}

// clausePatterns 按优先级排列的条款识别规则，均为大小写不敏感匹配。
var clausePatterns = []ClausePattern{
	{model.ClausePaymentTerms, regexp.MustCompile(`(?i)payment\s+terms|pay\s+within|invoice\s+due|price|fee`)},
	{model.ClauseTermination, regexp.MustCompile(`(?i)terminat(e|ion)|cancel|end\s+of\s+contract`)},
	{model.ClauseLiability, regexp.MustCompile(`(?i)liab(le|ility)|responsible|obligation`)},
	{model.ClauseConfidentiality, regexp.MustCompile(`(?i)confidential|non-disclosure|secret|proprietary`)},
	{model.ClauseIntellectualProperty, regexp.MustCompile(`(?i)intellectual\s+property|copyright|patent|trademark`)},
	{model.ClauseDataProtection, regexp.MustCompile(`(?i)data\s+protection|privacy|personal\s+data|gdpr`)},
	{model.ClauseWarranty, regexp.MustCompile(`(?i)warrant(y|ies)|guarantee`)},
	{model.ClauseIndemnification, regexp.MustCompile(`(?i)indemnif(y|ication)|hold\s+harmless`)},
	{model.ClauseForceMajeure, regexp.MustCompile(`(?i)force\s+majeure|act\s+of\s+god|unforeseen`)},
	{model.ClauseNonCompete, regexp.MustCompile(`(?i)non-compete|competition|restraint\s+of\s+trade`)},
	{model.ClauseGoverningLaw, regexp.MustCompile(`(?i)governing\s+law|jurisdiction|applicable\s+law`)},
}

// Classifier 基于规则识别分块所属的条款类别。
type Classifier struct {
	patterns []ClausePattern
}

// NewClassifier 创建一个使用内置规则集的 Classifier。
func NewClassifier() *Classifier {
	return &Classifier{patterns: clausePatterns}
}

// Classify 返回文本命中的第一个条款类别，全部未命中时返回 ClauseUnclassified。
func (c *Classifier) Classify(text string) model.ClauseType {
	for _, p := range c.patterns {
		if p.Pattern.MatchString(text) {
			return p.Type
		}
	}
	return model.ClauseUnclassified
}
