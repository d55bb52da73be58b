package analyzer

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"contract-risk-go/internal/model"
)

func TestSummarizerAppendsConcernSentence(t *testing.T) {
	fake := &fakeLLM{answer: "This NDA protects trade secrets."}
	s := NewSummarizer(fake)

	clauses := []model.ClauseAssessment{
		{ClauseType: model.ClauseLiability, RiskScore: 0.8, RiskLevel: model.RiskHigh},
		{ClauseType: model.ClauseConfidentiality, RiskScore: 0.6, RiskLevel: model.RiskMedium},
	}

	got := s.Summarize(context.Background(), "full text", model.DocTypeNDA, clauses)

	assert.Contains(t, got, "This NDA protects trade secrets.")
	assert.Contains(t, got, "Key areas of concern include liability, confidentiality.")
	assert.Contains(t, got, "overall risk score of 0.70")
	assert.Contains(t, got, "1 high-risk clauses identified")
}

func TestSummarizerNoHighRiskSentence(t *testing.T) {
	fake := &fakeLLM{answer: "A routine invoice."}
	s := NewSummarizer(fake)

	clauses := []model.ClauseAssessment{
		{ClauseType: model.ClausePaymentTerms, RiskScore: 0.2, RiskLevel: model.RiskLow},
	}

	got := s.Summarize(context.Background(), "full text", model.DocTypeInvoice, clauses)

	assert.Contains(t, got, "No high-risk clauses were identified.")
	assert.Contains(t, got, "overall risk score of 0.20")
}

func TestSummarizerFallbackOnLLMError(t *testing.T) {
	fake := &fakeLLM{err: errors.New("api down")}
	s := NewSummarizer(fake)

	clauses := []model.ClauseAssessment{
		{ClauseType: model.ClauseLiability, RiskScore: 0.8, RiskLevel: model.RiskHigh},
	}

	got := s.Summarize(context.Background(), "full text", model.DocTypeContract, clauses)

	assert.Contains(t, got, "a sales contract that outlines terms and conditions between parties")
	assert.Contains(t, got, "1 important clauses")
	assert.Contains(t, got, "High-risk areas include liability.")
}

func TestSummarizerFallbackWithoutClauses(t *testing.T) {
	s := NewSummarizer(nil)

	got := s.Summarize(context.Background(), "full text", model.DocTypeNDA, nil)

	assert.Contains(t, got, "a non-disclosure agreement protecting confidential information")
	assert.Contains(t, got, "0 important clauses")
	assert.NotContains(t, got, "High-risk areas")
}

func TestSummarizerPromptExcerptLimit(t *testing.T) {
	fake := &fakeLLM{answer: "summary"}
	s := NewSummarizer(fake)

	long := make([]rune, 4000)
	for i := range long {
		long[i] = 'y'
	}
	s.Summarize(context.Background(), string(long), model.DocTypeContract, nil)

	assert.NotContains(t, fake.lastPrompt, string(long[:3001]))
	assert.Contains(t, fake.lastPrompt, string(long[:3000]))
	assert.Equal(t, 500, *fake.lastParams.MaxTokens)
}
