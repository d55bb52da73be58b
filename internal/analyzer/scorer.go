package analyzer

import (
	"math"
	"sort"

	"contract-risk-go/internal/model"
)

// 风险等级阈值，评分落入 [阈值, 上一档) 即归入对应等级。
const (
	HighRiskThreshold   = 0.70
	MediumRiskThreshold = 0.40
	LowRiskThreshold    = 0.10
)

// defaultRisks 是各条款类别在无历史数据时的先验风险分。
var defaultRisks = map[model.ClauseType]float64{
	model.ClausePaymentTerms:         0.6,
	model.ClauseTermination:          0.7,
	model.ClauseLiability:            0.8,
	model.ClauseConfidentiality:      0.7,
	model.ClauseIntellectualProperty: 0.7,
	model.ClauseDataProtection:       0.8,
	model.ClauseWarranty:             0.6,
	model.ClauseIndemnification:      0.7,
	model.ClauseForceMajeure:         0.5,
	model.ClauseNonCompete:           0.6,
	model.ClauseGoverningLaw:         0.4,
}

// fallbackRisk 是未知条款类别的兜底先验分。
const fallbackRisk = 0.5

// CosineSimilarity 计算两个向量的余弦相似度。
// 维度不一致或任一向量为零向量时返回 0。
func CosineSimilarity(a, b []float32) float64 {
	if len(a) == 0 || len(b) == 0 || len(a) != len(b) {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

// Scorer 基于历史相似条款计算风险分数。
type Scorer struct {
	topK int // 参与加权的相似条款数量上限
}

// NewScorer 创建一个 Scorer。topK 非正时使用 5。
func NewScorer(topK int) *Scorer {
	if topK <= 0 {
		topK = 5
	}
	return &Scorer{topK: topK}
}

// TopSimilar 对历史条款按与给定向量的相似度排序，返回前 topK 条。
func (s *Scorer) TopSimilar(embedding model.Vector, stored []model.StoredClause) []model.SimilarClause {
	if len(stored) == 0 {
		return nil
	}
	similar := make([]model.SimilarClause, 0, len(stored))
	for _, clause := range stored {
		similar = append(similar, model.SimilarClause{
			Text:       clause.ChunkText,
			Similarity: CosineSimilarity(embedding, clause.Embedding),
			RiskScore:  clause.RiskScore,
			ClauseType: clause.ClauseType,
			DocType:    clause.DocType,
			Filename:   clause.Filename,
		})
	}
	sort.SliceStable(similar, func(i, j int) bool {
		return similar[i].Similarity > similar[j].Similarity
	})
	if len(similar) > s.topK {
		similar = similar[:s.topK]
	}
	return similar
}

// Score 计算单个条款的风险评估结果。
// 有历史相似条款时对相似度为正的条目做加权平均，
// 相似度非正的条目不参与，保证结果落在 [0, 1]；
// 正权重之和为 0 时退回 0.5；冷启动（无历史条款）时使用类别先验分。
func (s *Scorer) Score(clauseText string, clauseType model.ClauseType, similar []model.SimilarClause) model.ClauseAssessment {
	var finalScore float64
	if len(similar) > 0 {
		var weightedSum, totalWeight float64
		for _, clause := range similar {
			if clause.Similarity <= 0 {
				continue
			}
			weightedSum += clause.Similarity * clause.RiskScore
			totalWeight += clause.Similarity
		}
		if totalWeight > 0 {
			finalScore = weightedSum / totalWeight
		} else {
			finalScore = fallbackRisk
		}
	} else {
		if prior, ok := defaultRisks[clauseType]; ok {
			finalScore = prior
		} else {
			finalScore = fallbackRisk
		}
	}

	return model.ClauseAssessment{
		ClauseType:  clauseType,
		ClauseText:  clauseText,
		RiskScore:   finalScore,
		RiskLevel:   LevelForScore(finalScore),
		Explanation: ExplainRisk(clauseType, finalScore),
	}
}

// LevelForScore 将连续风险分映射到离散风险等级。
func LevelForScore(score float64) model.RiskLevel {
	switch {
	case score >= HighRiskThreshold:
		return model.RiskHigh
	case score >= MediumRiskThreshold:
		return model.RiskMedium
	case score >= LowRiskThreshold:
		return model.RiskLow
	default:
		return model.RiskNegligible
	}
}

// explanations 是 (条款类别, 风险等级) 到解释文案的静态映射。
var explanations = map[model.ClauseType]map[model.RiskLevel]string{
	model.ClausePaymentTerms: {
		model.RiskHigh:       "Payment terms are unfavorable and may lead to cash flow issues.",
		model.RiskMedium:     "Payment terms have some concerns that should be reviewed.",
		model.RiskLow:        "Payment terms are generally acceptable with minor concerns.",
		model.RiskNegligible: "Payment terms are standard and favorable.",
	},
	model.ClauseTermination: {
		model.RiskHigh:       "Termination clause heavily favors the other party and may restrict your options.",
		model.RiskMedium:     "Termination provisions have some imbalance that should be addressed.",
		model.RiskLow:        "Termination terms are generally fair with some minor issues.",
		model.RiskNegligible: "Termination terms are balanced and protect your interests.",
	},
	model.ClauseLiability: {
		model.RiskHigh:       "Liability clauses expose you to significant risk without adequate protection.",
		model.RiskMedium:     "Liability provisions have some concerning terms that should be negotiated.",
		model.RiskLow:        "Liability clauses have minor issues but are largely acceptable.",
		model.RiskNegligible: "Liability provisions are well-balanced and provide adequate protection.",
	},
	model.ClauseConfidentiality: {
		model.RiskHigh:       "Confidentiality provisions may not adequately protect sensitive information.",
		model.RiskMedium:     "Confidentiality terms have gaps that should be addressed.",
		model.RiskLow:        "Confidentiality provisions are generally adequate with minor concerns.",
		model.RiskNegligible: "Confidentiality terms are comprehensive and protective.",
	},
	model.ClauseIntellectualProperty: {
		model.RiskHigh:       "IP provisions may compromise ownership rights or grant excessive licenses.",
		model.RiskMedium:     "IP terms have some concerning elements that should be reviewed.",
		model.RiskLow:        "IP clauses are generally favorable with minor concerns.",
		model.RiskNegligible: "IP provisions properly protect your intellectual property.",
	},
	model.ClauseDataProtection: {
		model.RiskHigh:       "Data protection provisions don't meet compliance requirements or create liability.",
		model.RiskMedium:     "Data protection terms need strengthening to ensure proper compliance.",
		model.RiskLow:        "Data protection clauses are generally adequate with minor gaps.",
		model.RiskNegligible: "Data protection provisions are comprehensive and compliant.",
	},
	model.ClauseWarranty: {
		model.RiskHigh:       "Warranty provisions create extensive obligations with limited protection.",
		model.RiskMedium:     "Warranty terms should be negotiated to improve balance.",
		model.RiskLow:        "Warranty clauses are generally acceptable with minor concerns.",
		model.RiskNegligible: "Warranty provisions are reasonable and well-balanced.",
	},
	model.ClauseIndemnification: {
		model.RiskHigh:       "Indemnification clauses create significant one-sided obligations.",
		model.RiskMedium:     "Indemnification terms are imbalanced and should be negotiated.",
		model.RiskLow:        "Indemnification provisions have minor concerns but are generally fair.",
		model.RiskNegligible: "Indemnification clauses are fair and provide mutual protection.",
	},
	model.ClauseForceMajeure: {
		model.RiskHigh:       "Force majeure provisions are inadequate or missing critical scenarios.",
		model.RiskMedium:     "Force majeure terms should be expanded to cover additional scenarios.",
		model.RiskLow:        "Force majeure clauses are generally adequate with minor gaps.",
		model.RiskNegligible: "Force majeure provisions are comprehensive and well-balanced.",
	},
	model.ClauseNonCompete: {
		model.RiskHigh:       "Non-compete provisions are overly restrictive and may be unenforceable.",
		model.RiskMedium:     "Non-compete terms are broadly drafted and should be narrowed.",
		model.RiskLow:        "Non-compete clauses are generally reasonable with minor concerns.",
		model.RiskNegligible: "Non-compete provisions are narrowly tailored and reasonable.",
	},
	model.ClauseGoverningLaw: {
		model.RiskHigh:       "Governing law/jurisdiction creates significant disadvantage.",
		model.RiskMedium:     "Governing law/jurisdiction may create some procedural challenges.",
		model.RiskLow:        "Governing law/jurisdiction provisions have minor concerns.",
		model.RiskNegligible: "Governing law/jurisdiction terms are favorable or neutral.",
	},
}

// ExplainRisk 返回条款类别在当前风险分下的标准解释文案。
// 未知条款类别统一提示人工复核。
func ExplainRisk(clauseType model.ClauseType, score float64) string {
	byLevel, ok := explanations[clauseType]
	if !ok {
		return "This clause should be reviewed by legal counsel."
	}
	return byLevel[LevelForScore(score)]
}
