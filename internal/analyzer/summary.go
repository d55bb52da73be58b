package analyzer

import (
	"context"
	"fmt"
	"strings"

	"contract-risk-go/internal/model"
	"contract-risk-go/pkg/llm"
	"contract-risk-go/pkg/log"
)

const summaryPromptTemplate = `You're a legal document analyzer. Summarize the following legal document concisely.
Document type: %s
Risk assessment: Overall risk score %.2f, with %d high risk, %d medium risk, and %d low risk clauses.

%s

First 3000 characters of document:
%s

Generate a professional summary in 3-4 sentences. Mention document type, purpose, and major risk areas if any exist.
`

// docDescriptions 是规则式摘要对各文档类别的固定描述。
var docDescriptions = map[model.DocumentType]string{
	model.DocTypeContract: "a sales contract that outlines terms and conditions between parties",
	model.DocTypeInvoice:  "an invoice document requesting payment for goods or services",
	model.DocTypeNDA:      "a non-disclosure agreement protecting confidential information",
}

// Summarizer 生成文档摘要，大模型失败时回退到规则式摘要。
type Summarizer struct {
	llmClient llm.Client
}

// NewSummarizer 创建一个 Summarizer。llmClient 可以为 nil，此时只产出规则式摘要。
func NewSummarizer(llmClient llm.Client) *Summarizer {
	return &Summarizer{llmClient: llmClient}
}

// Summarize 为文档生成摘要。
// 摘要正文来自大模型，末尾附加一段基于重要条款统计的确定性风险说明。
func (s *Summarizer) Summarize(ctx context.Context, fullText string, docType model.DocumentType, importantClauses []model.ClauseAssessment) string {
	riskCounts := countByLevel(importantClauses)

	var overallRisk float64
	if len(importantClauses) > 0 {
		var sum float64
		for _, c := range importantClauses {
			sum += c.RiskScore
		}
		overallRisk = sum / float64(len(importantClauses))
	}

	if s.llmClient == nil {
		return s.fallbackSummary(docType, importantClauses, riskCounts)
	}

	var clausesInfo strings.Builder
	if len(importantClauses) > 0 {
		clausesInfo.WriteString("Important clauses identified:\n")
		limit := len(importantClauses)
		if limit > 5 {
			limit = 5
		}
		for _, clause := range importantClauses[:limit] {
			clausesInfo.WriteString(fmt.Sprintf("- %s (risk: %s): %s...\n",
				strings.ReplaceAll(string(clause.ClauseType), "_", " "),
				clause.RiskLevel,
				truncateRunes(clause.ClauseText, 100)))
		}
	}

	excerpt := truncateRunes(fullText, 3000)
	prompt := fmt.Sprintf(summaryPromptTemplate,
		docType, overallRisk,
		riskCounts[model.RiskHigh], riskCounts[model.RiskMedium], riskCounts[model.RiskLow],
		clausesInfo.String(), excerpt)

	maxTokens := 500
	summaryText, err := s.llmClient.Complete(ctx, prompt, &llm.GenerationParams{MaxTokens: &maxTokens})
	if err != nil {
		log.Warnf("[Summarizer] 大模型摘要失败，回退规则式摘要: %v", err)
		return s.fallbackSummary(docType, importantClauses, riskCounts)
	}

	// 末尾的风险说明不经过大模型，保证数字与库内记录一致
	if riskCounts[model.RiskHigh] > 0 || riskCounts[model.RiskMedium] > 0 {
		var concernTypes []string
		seen := make(map[model.ClauseType]struct{})
		for _, clause := range importantClauses {
			if clause.RiskLevel != model.RiskHigh && clause.RiskLevel != model.RiskMedium {
				continue
			}
			if _, ok := seen[clause.ClauseType]; ok {
				continue
			}
			seen[clause.ClauseType] = struct{}{}
			concernTypes = append(concernTypes, strings.ReplaceAll(string(clause.ClauseType), "_", " "))
			if len(concernTypes) == 3 {
				break
			}
		}
		return fmt.Sprintf("%s\n\nKey areas of concern include %s. The document has an overall risk score of %.2f with %d high-risk clauses identified.",
			summaryText, strings.Join(concernTypes, ", "), overallRisk, riskCounts[model.RiskHigh])
	}
	return fmt.Sprintf("%s\n\nNo high-risk clauses were identified. The document has an overall risk score of %.2f.",
		summaryText, overallRisk)
}

// fallbackSummary 纯规则式摘要。
func (s *Summarizer) fallbackSummary(docType model.DocumentType, importantClauses []model.ClauseAssessment, riskCounts map[model.RiskLevel]int) string {
	description, ok := docDescriptions[docType]
	if !ok {
		description = "a legal document"
	}

	summary := fmt.Sprintf("This document is %s. Analysis identified %d important clauses, including %d high-risk, %d medium-risk, and %d low-risk items. ",
		description, len(importantClauses),
		riskCounts[model.RiskHigh], riskCounts[model.RiskMedium], riskCounts[model.RiskLow])

	if riskCounts[model.RiskHigh] > 0 {
		var highRiskTypes []string
		for _, clause := range importantClauses {
			if clause.RiskLevel == model.RiskHigh {
				highRiskTypes = append(highRiskTypes, strings.ReplaceAll(string(clause.ClauseType), "_", " "))
			}
			if len(highRiskTypes) == 3 {
				break
			}
		}
		if len(highRiskTypes) > 0 {
			summary += fmt.Sprintf("High-risk areas include %s.", strings.Join(highRiskTypes, ", "))
		}
	}
	return summary
}

func countByLevel(clauses []model.ClauseAssessment) map[model.RiskLevel]int {
	counts := map[model.RiskLevel]int{
		model.RiskHigh:       0,
		model.RiskMedium:     0,
		model.RiskLow:        0,
		model.RiskNegligible: 0,
	}
	for _, c := range clauses {
		counts[c.RiskLevel]++
	}
	return counts
}

// truncateRunes 按字符截断文本。
func truncateRunes(text string, limit int) string {
	runes := []rune(text)
	if len(runes) <= limit {
		return text
	}
	return string(runes[:limit])
}
