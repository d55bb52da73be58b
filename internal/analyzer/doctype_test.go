package analyzer

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"contract-risk-go/internal/model"
	"contract-risk-go/pkg/llm"
)

// fakeLLM 在测试中替代真实的大模型客户端。
type fakeLLM struct {
	answer     string
	err        error
	lastPrompt string
	lastParams *llm.GenerationParams
}

func (f *fakeLLM) Complete(ctx context.Context, prompt string, gen *llm.GenerationParams) (string, error) {
	f.lastPrompt = prompt
	f.lastParams = gen
	return f.answer, f.err
}

func (f *fakeLLM) StreamChatMessages(ctx context.Context, messages []llm.Message, gen *llm.GenerationParams, writer llm.MessageWriter) error {
	return f.err
}

func TestDocTypeDetectorUsesLLMAnswer(t *testing.T) {
	fake := &fakeLLM{answer: "nda"}
	d := NewDocTypeDetector(fake)

	got := d.Detect(context.Background(), "some agreement text")

	assert.Equal(t, model.DocTypeNDA, got)
	assert.NotNil(t, fake.lastParams)
	assert.Equal(t, 10, *fake.lastParams.MaxTokens)
}

func TestDocTypeDetectorInvalidLLMAnswerFallsBackToRules(t *testing.T) {
	fake := &fakeLLM{answer: "SOMETHING ELSE"}
	d := NewDocTypeDetector(fake)

	got := d.Detect(context.Background(), "invoice with payment due upon receipt")
	assert.Equal(t, model.DocTypeInvoice, got)
}

func TestDocTypeDetectorLLMErrorFallsBackToRules(t *testing.T) {
	fake := &fakeLLM{err: errors.New("api down")}
	d := NewDocTypeDetector(fake)

	got := d.Detect(context.Background(), "this non-disclosure agreement is made between")
	assert.Equal(t, model.DocTypeNDA, got)
}

func TestDocTypeDetectorRuleFallbackDefaultsToContract(t *testing.T) {
	d := NewDocTypeDetector(nil)

	got := d.Detect(context.Background(), "master services agreement between the parties")
	assert.Equal(t, model.DocTypeContract, got)
}

func TestDocTypeDetectorRulePriority(t *testing.T) {
	d := NewDocTypeDetector(nil)

	// 同时命中 NDA 与 INVOICE 关键词时 NDA 优先
	got := d.Detect(context.Background(), "nda covering the invoice process")
	assert.Equal(t, model.DocTypeNDA, got)
}

func TestDocTypeDetectorPromptUsesFirstThousandRunes(t *testing.T) {
	fake := &fakeLLM{answer: "CONTRACT"}
	d := NewDocTypeDetector(fake)

	long := make([]rune, 2000)
	for i := range long {
		long[i] = 'x'
	}
	d.Detect(context.Background(), string(long))

	// prompt 中只应包含前 1000 个字符的摘录
	assert.NotContains(t, fake.lastPrompt, string(long[:1001]))
	assert.Contains(t, fake.lastPrompt, string(long[:1000]))
}
