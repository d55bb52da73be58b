package service

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"contract-risk-go/internal/config"
	"contract-risk-go/internal/model"
)

func newTestDocumentService(docRepo *fakeDocRepo, riskRepo *fakeRiskRepo) DocumentService {
	return NewDocumentService(nil, docRepo, riskRepo, config.MinIOConfig{}, config.KafkaConfig{})
}

func TestGetAnalysisRebuildsFromRecords(t *testing.T) {
	docRepo := newFakeDocRepo()
	_ = docRepo.Create(&model.Document{
		Filename: "contract.pdf",
		DocType:  model.DocTypeContract,
		UserID:   1,
		Metadata: model.JSONMap{"summary": "A short summary."},
	})
	riskRepo := &fakeRiskRepo{records: []model.RiskRecord{
		{DocumentID: 1, ClauseType: model.ClauseLiability, ClauseText: "liable...", RiskScore: 0.8, Explanation: "exposed", AnalysisDate: time.Now()},
		{DocumentID: 1, ClauseType: model.ClauseGoverningLaw, ClauseText: "law...", RiskScore: 0.4, Explanation: "neutral", AnalysisDate: time.Now()},
	}}
	svc := newTestDocumentService(docRepo, riskRepo)

	analysis, err := svc.GetAnalysis(1, 1)
	require.NoError(t, err)

	assert.Equal(t, uint(1), analysis.DocumentID)
	assert.Equal(t, "A short summary.", analysis.Summary)
	assert.InDelta(t, 0.6, analysis.OverallRiskScore, 1e-9)
	require.Len(t, analysis.ImportantClauses, 2)
	assert.Equal(t, model.RiskHigh, analysis.ImportantClauses[0].RiskLevel)
	assert.Equal(t, model.RiskMedium, analysis.ImportantClauses[1].RiskLevel)
}

func TestGetAnalysisDeniesForeignDocument(t *testing.T) {
	docRepo := newFakeDocRepo()
	_ = docRepo.Create(&model.Document{Filename: "theirs.pdf", UserID: 2})
	svc := newTestDocumentService(docRepo, &fakeRiskRepo{})

	_, err := svc.GetAnalysis(1, 1)
	assert.ErrorIs(t, err, ErrDocumentNotFound)
}

func TestGetAnalysisMissingDocument(t *testing.T) {
	svc := newTestDocumentService(newFakeDocRepo(), &fakeRiskRepo{})

	_, err := svc.GetAnalysis(42, 1)
	assert.ErrorIs(t, err, ErrDocumentNotFound)
}

func TestListDocumentsMapsRows(t *testing.T) {
	docRepo := newFakeDocRepo()
	uploaded := time.Date(2025, 6, 1, 10, 30, 0, 0, time.UTC)
	docRepo.rows = []model.DocumentWithRisk{
		{ID: 3, Filename: "nda.pdf", DocType: model.DocTypeNDA, UploadDate: uploaded, AvgRiskScore: 0.55},
	}
	svc := newTestDocumentService(docRepo, &fakeRiskRepo{})

	list, err := svc.ListDocuments(1)
	require.NoError(t, err)

	require.Len(t, list, 1)
	assert.Equal(t, uint(3), list[0].DocumentID)
	assert.Equal(t, "nda.pdf", list[0].Filename)
	assert.Equal(t, model.DocTypeNDA, list[0].DocumentType)
	assert.Equal(t, "2025-06-01 10:30:00", list[0].UploadDate)
	assert.InDelta(t, 0.55, list[0].OverallRiskScore, 1e-9)
}

func TestReportGroupsClausesByRiskLevel(t *testing.T) {
	docRepo := newFakeDocRepo()
	_ = docRepo.Create(&model.Document{
		Filename: "contract.pdf",
		DocType:  model.DocTypeContract,
		UserID:   1,
		Metadata: model.JSONMap{"summary": "Summary text."},
	})
	riskRepo := &fakeRiskRepo{records: []model.RiskRecord{
		{DocumentID: 1, ClauseType: model.ClauseLiability, ClauseText: "The vendor shall be liable.", RiskScore: 0.8, Explanation: "exposed"},
		{DocumentID: 1, ClauseType: model.ClausePaymentTerms, ClauseText: "Net 30 payment terms.", RiskScore: 0.2, Explanation: "acceptable"},
	}}
	svc := newTestDocumentService(docRepo, riskRepo)

	report, err := svc.Report(1, 1)
	require.NoError(t, err)

	assert.Contains(t, report, "DOCUMENT ANALYSIS SUMMARY: contract.pdf")
	assert.Contains(t, report, "Document Type: CONTRACT")
	assert.Contains(t, report, "Overall Risk Score: 0.50")
	assert.Contains(t, report, "Summary text.")
	assert.Contains(t, report, "HIGH RISK CLAUSES:")
	assert.Contains(t, report, "Liability")
	assert.Contains(t, report, "LOW RISK CLAUSES:")
	assert.Contains(t, report, "Payment Terms")

	// 高风险段落应出现在低风险段落之前
	assert.Less(t,
		strings.Index(report, "HIGH RISK CLAUSES:"),
		strings.Index(report, "LOW RISK CLAUSES:"))
}
