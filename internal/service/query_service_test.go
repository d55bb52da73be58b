package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"contract-risk-go/internal/analyzer"
	"contract-risk-go/internal/model"
)

// 未注入大模型客户端时 QueryAnswerer 走关键字匹配，结果可断言。
func newTestQueryService(docRepo *fakeDocRepo) QueryService {
	return NewQueryService(docRepo, analyzer.NewQueryAnswerer(nil))
}

func TestQuerySpecificDocument(t *testing.T) {
	docRepo := newFakeDocRepo()
	_ = docRepo.Create(&model.Document{
		Filename: "contract.pdf",
		DocType:  model.DocTypeContract,
		FullText: "Payment is due in 30 days.\nDelivery is FOB origin.",
		UserID:   1,
	})
	svc := newTestQueryService(docRepo)

	result, err := svc.Query(context.Background(), "payment", 1, 1)
	require.NoError(t, err)

	assert.Equal(t, "payment", result.Query)
	assert.Contains(t, result.Answer, "Payment is due in 30 days.")
	assert.Equal(t, "contract.pdf", result.DocumentInfo.Filename)
	assert.Equal(t, model.DocTypeContract, result.DocumentInfo.DocType)
	assert.NotEmpty(t, result.Timestamp)
}

func TestQueryFallsBackToLatestDocument(t *testing.T) {
	docRepo := newFakeDocRepo()
	_ = docRepo.Create(&model.Document{Filename: "old.pdf", DocType: model.DocTypeContract, FullText: "irrelevant", UserID: 1})
	_ = docRepo.Create(&model.Document{Filename: "new.pdf", DocType: model.DocTypeNDA, FullText: "The term is confidential.", UserID: 1})
	svc := newTestQueryService(docRepo)

	result, err := svc.Query(context.Background(), "confidential", 0, 1)
	require.NoError(t, err)

	assert.Equal(t, "new.pdf", result.DocumentInfo.Filename)
}

func TestQueryWithoutAnyDocument(t *testing.T) {
	svc := newTestQueryService(newFakeDocRepo())

	result, err := svc.Query(context.Background(), "anything", 0, 1)
	require.NoError(t, err)

	assert.Equal(t, "No document found to query.", result.Answer)
	assert.Empty(t, result.DocumentInfo.Filename)
}

func TestQueryUnknownDocumentIDTreatedAsMissing(t *testing.T) {
	svc := newTestQueryService(newFakeDocRepo())

	result, err := svc.Query(context.Background(), "anything", 99, 1)
	require.NoError(t, err)
	assert.Equal(t, "No document found to query.", result.Answer)
}

func TestQueryDeniesForeignDocument(t *testing.T) {
	docRepo := newFakeDocRepo()
	_ = docRepo.Create(&model.Document{Filename: "theirs.pdf", FullText: "text content here", UserID: 2})
	svc := newTestQueryService(docRepo)

	_, err := svc.Query(context.Background(), "anything", 1, 1)
	assert.ErrorIs(t, err, ErrDocumentNotFound)
}
