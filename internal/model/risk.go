package model

import "time"

// RiskRecord 对应于数据库中的 risk_records 表。
// 每个被分类的分块产生一条记录，只增不改。
type RiskRecord struct {
	ID           uint       `gorm:"primaryKey;autoIncrement" json:"id"`
	DocumentID   uint       `gorm:"index;not null;column:document_id" json:"documentId"`
	ClauseType   ClauseType `gorm:"type:varchar(50);not null;column:clause_type" json:"clauseType"`
	ClauseText   string     `gorm:"type:text;not null;column:clause_text" json:"clauseText"`
	RiskScore    float64    `gorm:"not null;column:risk_score" json:"riskScore"`
	Explanation  string     `gorm:"type:text;column:risk_explanation" json:"explanation"`
	AnalysisDate time.Time  `gorm:"autoCreateTime;column:analysis_date" json:"analysisDate"`
}

// TableName 指定了此模型在数据库中对应的表名。
func (RiskRecord) TableName() string {
	return "risk_records"
}

// AnalysisResult 是一次文档分析返回给调用方的聚合视图。
type AnalysisResult struct {
	DocumentID       uint               `json:"document_id"`
	Filename         string             `json:"filename"`
	DocumentType     DocumentType       `json:"document_type"`
	Summary          string             `json:"summary"`
	ImportantClauses []ClauseAssessment `json:"important_clauses"`
	OverallRiskScore float64            `json:"overall_risk_score"`
	AnalysisDate     string             `json:"analysis_date"`
}

// DocumentInfo 是问答结果附带的文档元信息。
type DocumentInfo struct {
	Filename string       `json:"filename,omitempty"`
	DocType  DocumentType `json:"doc_type,omitempty"`
}

// QueryResult 是一次文档问答的结果。
type QueryResult struct {
	Query        string       `json:"query"`
	Answer       string       `json:"answer"`
	DocumentInfo DocumentInfo `json:"document_info"`
	Timestamp    string       `json:"timestamp"`
}
