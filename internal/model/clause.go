// Package model 定义了与数据库表对应的 Go 结构体以及领域枚举类型。
package model

// ClauseType 是合同条款的类别标签。
// 分类器只会产出下面十一种类别之一，未命中时为 ClauseUnclassified。
type ClauseType string

const (
	ClausePaymentTerms         ClauseType = "payment_terms"
	ClauseTermination          ClauseType = "termination"
	ClauseLiability            ClauseType = "liability"
	ClauseConfidentiality      ClauseType = "confidentiality"
	ClauseIntellectualProperty ClauseType = "intellectual_property"
	ClauseDataProtection       ClauseType = "data_protection"
	ClauseWarranty             ClauseType = "warranty"
	ClauseIndemnification      ClauseType = "indemnification"
	ClauseForceMajeure         ClauseType = "force_majeure"
	ClauseNonCompete           ClauseType = "non_compete"
	ClauseGoverningLaw         ClauseType = "governing_law"
	ClauseUnclassified         ClauseType = ""
)

// ImportantClauseTypes 是需要在分析报告中重点呈现的条款类别集合。
var ImportantClauseTypes = map[ClauseType]struct{}{
	ClausePaymentTerms:         {},
	ClauseTermination:          {},
	ClauseLiability:            {},
	ClauseConfidentiality:      {},
	ClauseIntellectualProperty: {},
	ClauseDataProtection:       {},
	ClauseWarranty:             {},
	ClauseIndemnification:      {},
	ClauseForceMajeure:         {},
	ClauseNonCompete:           {},
	ClauseGoverningLaw:         {},
}

// RiskLevel 是风险分数映射出的离散风险等级。
type RiskLevel string

const (
	RiskHigh       RiskLevel = "high"
	RiskMedium     RiskLevel = "medium"
	RiskLow        RiskLevel = "low"
	RiskNegligible RiskLevel = "negligible"
)

// DocumentType 是整份文档的类别标签（封闭集合）。
type DocumentType string

const (
	DocTypeNDA      DocumentType = "NDA"
	DocTypeInvoice  DocumentType = "INVOICE"
	DocTypeContract DocumentType = "CONTRACT"
)

// SimilarClause 是一次相似条款检索的瞬态结果，仅存在于单次风险评分调用内，
// 不做持久化。
type SimilarClause struct {
	Text       string       `json:"text"`
	Similarity float64      `json:"similarity"`
	RiskScore  float64      `json:"riskScore"`
	ClauseType ClauseType   `json:"type"`
	DocType    DocumentType `json:"docType"`
	Filename   string       `json:"filename"`
}

// ClauseAssessment 是单个条款的风险评估结果。
type ClauseAssessment struct {
	ClauseType  ClauseType `json:"type"`
	ClauseText  string     `json:"text"`
	RiskScore   float64    `json:"risk_score"`
	RiskLevel   RiskLevel  `json:"risk_level"`
	Explanation string     `json:"explanation"`
}
