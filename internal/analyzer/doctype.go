package analyzer

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"contract-risk-go/internal/model"
	"contract-risk-go/pkg/llm"
	"contract-risk-go/pkg/log"
)

var (
	ndaPattern     = regexp.MustCompile(`non-disclosure|nda|confidential\s+information`)
	invoicePattern = regexp.MustCompile(`invoice|payment\s+due|bill\s+to`)
)

// docTypePromptTemplate 只允许模型回复三个类别之一。
const docTypePromptTemplate = `You are an expert in document classification. Classify the following document text into one of these categories:
1. NDA (Non-disclosure agreement)
2. INVOICE (Invoice document)
3. CONTRACT (General contract)

Response must be ONLY one word: NDA, INVOICE, or CONTRACT.

Document text excerpt (first 1000 characters):
%s

Classification:`

// DocTypeDetector 判定整份文档的类别。
// 优先使用大模型，失败或返回非法类别时回退到规则匹配。
type DocTypeDetector struct {
	llmClient llm.Client
}

// NewDocTypeDetector 创建一个 DocTypeDetector。llmClient 可以为 nil，此时只走规则匹配。
func NewDocTypeDetector(llmClient llm.Client) *DocTypeDetector {
	return &DocTypeDetector{llmClient: llmClient}
}

// Detect 返回文档类别。
func (d *DocTypeDetector) Detect(ctx context.Context, text string) model.DocumentType {
	if d.llmClient == nil {
		return detectDocTypeByRule(text)
	}

	excerpt := text
	if runes := []rune(excerpt); len(runes) > 1000 {
		excerpt = string(runes[:1000])
	}

	maxTokens := 10
	answer, err := d.llmClient.Complete(ctx, fmt.Sprintf(docTypePromptTemplate, excerpt), &llm.GenerationParams{
		MaxTokens: &maxTokens,
	})
	if err != nil {
		log.Warnf("[DocTypeDetector] 大模型分类失败，回退规则匹配: %v", err)
		return detectDocTypeByRule(text)
	}

	switch model.DocumentType(strings.ToUpper(strings.TrimSpace(answer))) {
	case model.DocTypeNDA:
		return model.DocTypeNDA
	case model.DocTypeInvoice:
		return model.DocTypeInvoice
	case model.DocTypeContract:
		return model.DocTypeContract
	default:
		log.Warnf("[DocTypeDetector] 大模型返回非法类别 '%s'，回退规则匹配", answer)
		return detectDocTypeByRule(text)
	}
}

// detectDocTypeByRule 基于关键字的规则分类，未命中时默认 CONTRACT。
func detectDocTypeByRule(text string) model.DocumentType {
	lower := strings.ToLower(text)
	if ndaPattern.MatchString(lower) {
		return model.DocTypeNDA
	}
	if invoicePattern.MatchString(lower) {
		return model.DocTypeInvoice
	}
	return model.DocTypeContract
}
