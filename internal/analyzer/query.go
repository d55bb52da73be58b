package analyzer

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"contract-risk-go/pkg/llm"
	"contract-risk-go/pkg/log"
)

// 上下文拼装的字符预算。
const contextBudget = 4000

// 参与拼装的最大段落数。
const maxContextParagraphs = 7

const answerPromptTemplate = `I need you to answer a question about a document. document text is given ahead. give good answers(longer when required)"

question: %s

Document text:
%s

Answer: start point wise`

// noInfoAnswer 是在文档中完全找不到相关内容时的固定回复。
const noInfoAnswer = "I couldn't find specific information related to your query in the document."

// QueryAnswerer 基于文档全文回答用户提问。
// 先用词频挑选相关段落压缩上下文，再交给大模型；大模型失败时
// 回退到关键字行匹配。
type QueryAnswerer struct {
	llmClient llm.Client
}

// NewQueryAnswerer 创建一个 QueryAnswerer。
func NewQueryAnswerer(llmClient llm.Client) *QueryAnswerer {
	return &QueryAnswerer{llmClient: llmClient}
}

// Answer 返回针对 query 的回答文本。
func (q *QueryAnswerer) Answer(ctx context.Context, query, documentText string) string {
	relevantContext := BuildContext(query, documentText)

	if q.llmClient != nil {
		temperature := 0.2
		maxTokens := 1000
		answer, err := q.llmClient.Complete(ctx, fmt.Sprintf(answerPromptTemplate, query, relevantContext), &llm.GenerationParams{
			Temperature: &temperature,
			MaxTokens:   &maxTokens,
		})
		if err == nil {
			return answer
		}
		log.Warnf("[QueryAnswerer] 大模型问答失败，回退关键字匹配: %v", err)
	}

	return keywordFallback(query, documentText)
}

type scoredParagraph struct {
	score int
	index int
	text  string
}

// BuildContext 从文档中挑选与查询最相关的段落，拼成受预算约束的上下文。
// 段落按空行切分，得分为命中的查询词个数；只保留得分大于 0 的段落，
// 得分相同时维持原文顺序。没有任何段落命中时退回文档开头。
func BuildContext(query, documentText string) string {
	queryTerms := strings.Fields(strings.ToLower(query))
	paragraphs := strings.Split(documentText, "\n\n")

	var scored []scoredParagraph
	for i, para := range paragraphs {
		if len(strings.TrimSpace(para)) < 10 {
			continue
		}
		paraLower := strings.ToLower(para)
		score := 0
		for _, term := range queryTerms {
			if strings.Contains(paraLower, term) {
				score++
			}
		}
		if score > 0 {
			scored = append(scored, scoredParagraph{score: score, index: i, text: para})
		}
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].score > scored[j].score
	})
	if len(scored) > maxContextParagraphs {
		scored = scored[:maxContextParagraphs]
	}

	var builder strings.Builder
	for _, para := range scored {
		if builder.Len()+len(para.text) >= contextBudget {
			continue
		}
		builder.WriteString(para.text)
		builder.WriteString("\n\n")
	}

	if builder.Len() == 0 {
		return truncateRunes(documentText, contextBudget)
	}
	return builder.String()
}

// keywordFallback 逐行匹配查询词，返回最多 5 行命中的内容。
func keywordFallback(query, documentText string) string {
	queryTerms := strings.Fields(strings.ToLower(query))
	lines := strings.Split(documentText, "\n")

	var relevantLines []string
	for _, line := range lines {
		lineLower := strings.ToLower(line)
		for _, term := range queryTerms {
			if strings.Contains(lineLower, term) {
				relevantLines = append(relevantLines, line)
				break
			}
		}
		if len(relevantLines) == 5 {
			break
		}
	}

	if len(relevantLines) > 0 {
		return "I found these relevant sections in the document:\n\n" + strings.Join(relevantLines, "\n")
	}
	return noInfoAnswer
}
