package analyzer

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuildContextSelectsScoringParagraphs(t *testing.T) {
	doc := strings.Join([]string{
		"The payment schedule requires payment within 30 days.",
		"The office is located in Springfield.",
		"Payment disputes must be raised promptly.",
	}, "\n\n")

	got := BuildContext("payment deadline", doc)

	assert.Contains(t, got, "payment within 30 days")
	assert.Contains(t, got, "Payment disputes")
	assert.NotContains(t, got, "Springfield")
}

func TestBuildContextOrdersByScoreThenPosition(t *testing.T) {
	doc := strings.Join([]string{
		"liability is limited here",             // score 1
		"liability and damages are both capped", // score 2
		"damages only in this paragraph",        // score 1
	}, "\n\n")

	got := BuildContext("liability damages", doc)

	// 得分最高的段落在前，得分相同的段落维持原文顺序
	first := strings.Index(got, "liability and damages are both capped")
	second := strings.Index(got, "liability is limited here")
	third := strings.Index(got, "damages only in this paragraph")
	assert.True(t, first < second)
	assert.True(t, second < third)
}

func TestBuildContextSkipsShortParagraphs(t *testing.T) {
	doc := "fee\n\nThe fee schedule is attached to this agreement."

	got := BuildContext("fee", doc)

	assert.Equal(t, "The fee schedule is attached to this agreement.\n\n", got)
}

func TestBuildContextFallsBackToDocumentHead(t *testing.T) {
	doc := "This agreement covers sale of industrial equipment."

	got := BuildContext("zebra", doc)

	assert.Equal(t, doc, got)
}

func TestBuildContextFallbackTruncatesToBudget(t *testing.T) {
	doc := strings.Repeat("a", 5000)

	got := BuildContext("zebra", doc)

	assert.Len(t, got, 4000)
}

func TestBuildContextRespectsBudget(t *testing.T) {
	big := "liability " + strings.Repeat("x", 3900)
	small := "liability cap is one million dollars"
	doc := big + "\n\n" + small

	got := BuildContext("liability", doc)

	// 大段落耗尽预算后，放不下的段落被跳过，已入选的保留
	assert.Contains(t, got, big)
	assert.NotContains(t, got, small)
}

func TestAnswerUsesLLM(t *testing.T) {
	fake := &fakeLLM{answer: "The term is two years."}
	q := NewQueryAnswerer(fake)

	got := q.Answer(context.Background(), "what is the term", "The term of this agreement is two years.")

	assert.Equal(t, "The term is two years.", got)
	assert.Equal(t, 1000, *fake.lastParams.MaxTokens)
	assert.InDelta(t, 0.2, *fake.lastParams.Temperature, 1e-9)
}

func TestAnswerFallsBackToKeywordLines(t *testing.T) {
	fake := &fakeLLM{err: errors.New("api down")}
	q := NewQueryAnswerer(fake)

	doc := "Clause 1: payment due in 30 days\nClause 2: governing law is Delaware\nClause 3: payment by wire"
	got := q.Answer(context.Background(), "payment", doc)

	assert.Contains(t, got, "I found these relevant sections in the document:")
	assert.Contains(t, got, "Clause 1: payment due in 30 days")
	assert.Contains(t, got, "Clause 3: payment by wire")
	assert.NotContains(t, got, "Delaware")
}

func TestAnswerFallbackNoMatches(t *testing.T) {
	fake := &fakeLLM{err: errors.New("api down")}
	q := NewQueryAnswerer(fake)

	got := q.Answer(context.Background(), "zebra", "Nothing relevant here.")

	assert.Equal(t, noInfoAnswer, got)
}

func TestKeywordFallbackLimitsToFiveLines(t *testing.T) {
	lines := make([]string, 8)
	for i := range lines {
		lines[i] = "payment line"
	}

	got := keywordFallback("payment", strings.Join(lines, "\n"))

	matched := strings.Count(got, "payment line")
	assert.Equal(t, 5, matched)
}
