package analyzer

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"contract-risk-go/internal/model"
)

func TestCosineSimilarity(t *testing.T) {
	assert.InDelta(t, 1.0, CosineSimilarity([]float32{1, 0, 2}, []float32{1, 0, 2}), 1e-9)
	assert.InDelta(t, 0.0, CosineSimilarity([]float32{1, 0}, []float32{0, 1}), 1e-9)
	assert.InDelta(t, -1.0, CosineSimilarity([]float32{1, 0}, []float32{-1, 0}), 1e-9)
}

func TestCosineSimilarityDegenerateInputs(t *testing.T) {
	assert.Equal(t, 0.0, CosineSimilarity(nil, []float32{1}))
	assert.Equal(t, 0.0, CosineSimilarity([]float32{1, 2}, []float32{1}))
	assert.Equal(t, 0.0, CosineSimilarity([]float32{0, 0}, []float32{1, 1}))
}

func TestScorerTopSimilarOrdersAndLimits(t *testing.T) {
	s := NewScorer(2)
	query := model.Vector{1, 0}
	stored := []model.StoredClause{
		{ChunkText: "orthogonal", Embedding: model.Vector{0, 1}, RiskScore: 0.9},
		{ChunkText: "identical", Embedding: model.Vector{1, 0}, RiskScore: 0.2},
		{ChunkText: "diagonal", Embedding: model.Vector{1, 1}, RiskScore: 0.5},
	}

	similar := s.TopSimilar(query, stored)

	assert.Len(t, similar, 2)
	assert.Equal(t, "identical", similar[0].Text)
	assert.Equal(t, "diagonal", similar[1].Text)
}

func TestScorerWeightedAverage(t *testing.T) {
	s := NewScorer(5)
	similar := []model.SimilarClause{
		{Similarity: 0.8, RiskScore: 1.0},
		{Similarity: 0.2, RiskScore: 0.0},
	}

	result := s.Score("clause", model.ClauseLiability, similar)

	// (0.8*1.0 + 0.2*0.0) / (0.8+0.2) = 0.8
	assert.InDelta(t, 0.8, result.RiskScore, 1e-9)
	assert.Equal(t, model.RiskHigh, result.RiskLevel)

	// (0.9*0.8 + 0.5*0.2) / (0.9+0.5) = 0.6142857...
	result = s.Score("clause", model.ClauseLiability, []model.SimilarClause{
		{Similarity: 0.9, RiskScore: 0.8},
		{Similarity: 0.5, RiskScore: 0.2},
	})
	assert.InDelta(t, 0.6142857142857143, result.RiskScore, 1e-9)
	assert.Equal(t, model.RiskMedium, result.RiskLevel)
}

func TestScorerIgnoresNegativeSimilarities(t *testing.T) {
	s := NewScorer(5)

	// 反向相似的历史条款不参与加权，结果不得越出 [0, 1]。
	result := s.Score("clause", model.ClauseLiability, []model.SimilarClause{
		{Similarity: 0.9, RiskScore: 0.05},
		{Similarity: -0.8, RiskScore: 0.9},
	})
	assert.InDelta(t, 0.05, result.RiskScore, 1e-9)
	assert.GreaterOrEqual(t, result.RiskScore, 0.0)
	assert.LessOrEqual(t, result.RiskScore, 1.0)
	assert.Equal(t, model.RiskNegligible, result.RiskLevel)

	// 全部为负相似时等同于零权重，退回 0.5。
	result = s.Score("clause", model.ClauseLiability, []model.SimilarClause{
		{Similarity: -0.3, RiskScore: 0.9},
		{Similarity: -0.7, RiskScore: 0.1},
	})
	assert.InDelta(t, 0.5, result.RiskScore, 1e-9)
}

func TestScorerZeroTotalWeightFallsBackToMiddle(t *testing.T) {
	s := NewScorer(5)
	similar := []model.SimilarClause{
		{Similarity: 0, RiskScore: 0.9},
		{Similarity: 0, RiskScore: 0.1},
	}

	result := s.Score("clause", model.ClauseLiability, similar)

	assert.InDelta(t, 0.5, result.RiskScore, 1e-9)
	assert.Equal(t, model.RiskMedium, result.RiskLevel)
}

func TestScorerColdStartUsesPriors(t *testing.T) {
	s := NewScorer(5)

	result := s.Score("clause", model.ClauseLiability, nil)
	assert.InDelta(t, 0.8, result.RiskScore, 1e-9)

	result = s.Score("clause", model.ClauseGoverningLaw, nil)
	assert.InDelta(t, 0.4, result.RiskScore, 1e-9)

	// 未知类别使用兜底先验
	result = s.Score("clause", model.ClauseType("unknown"), nil)
	assert.InDelta(t, 0.5, result.RiskScore, 1e-9)
}

func TestLevelForScoreBoundaries(t *testing.T) {
	assert.Equal(t, model.RiskHigh, LevelForScore(0.70))
	assert.Equal(t, model.RiskMedium, LevelForScore(0.69))
	assert.Equal(t, model.RiskMedium, LevelForScore(0.40))
	assert.Equal(t, model.RiskLow, LevelForScore(0.39))
	assert.Equal(t, model.RiskLow, LevelForScore(0.10))
	assert.Equal(t, model.RiskNegligible, LevelForScore(0.09))
	assert.Equal(t, model.RiskNegligible, LevelForScore(0))
}

func TestExplainRisk(t *testing.T) {
	assert.Equal(t,
		"Liability clauses expose you to significant risk without adequate protection.",
		ExplainRisk(model.ClauseLiability, 0.85))

	assert.Equal(t,
		"Payment terms are standard and favorable.",
		ExplainRisk(model.ClausePaymentTerms, 0.05))

	assert.Equal(t,
		"This clause should be reviewed by legal counsel.",
		ExplainRisk(model.ClauseType("unknown"), 0.9))
}
