package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// Vector 是以 JSON 文本形式落库的定长向量。
type Vector []float32

// Value 实现 driver.Valuer 接口。
func (v Vector) Value() (driver.Value, error) {
	b, err := json.Marshal([]float32(v))
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan 实现 sql.Scanner 接口。
func (v *Vector) Scan(value interface{}) error {
	switch src := value.(type) {
	case []byte:
		return json.Unmarshal(src, (*[]float32)(v))
	case string:
		return json.Unmarshal([]byte(src), (*[]float32)(v))
	case nil:
		*v = nil
		return nil
	default:
		return fmt.Errorf("无法将 %T 解析为 Vector", value)
	}
}

// DocumentChunk 对应于数据库中的 chunks 表。
// 分块从属于文档，生命周期与父文档一致；只有命中条款类别的分块才会落库。
type DocumentChunk struct {
	ID         uint       `gorm:"primaryKey;autoIncrement" json:"id"`
	DocumentID uint       `gorm:"index;not null;column:document_id" json:"documentId"`
	ChunkIndex int        `gorm:"not null;column:chunk_index" json:"chunkIndex"`
	ChunkText  string     `gorm:"type:text;not null;column:chunk_text" json:"chunkText"`
	Embedding  Vector     `gorm:"type:json;column:embedding_vector" json:"-"`
	ClauseType ClauseType `gorm:"type:varchar(50);index;column:clause_type" json:"clauseType"`
	RiskScore  float64    `gorm:"column:risk_score" json:"riskScore"`
}

// TableName 指定了此模型在数据库中对应的表名。
func (DocumentChunk) TableName() string {
	return "chunks"
}

// StoredClause 是相似度检索从 chunks 与 documents 联查出的历史条款。
type StoredClause struct {
	ChunkText  string       `gorm:"column:chunk_text"`
	RiskScore  float64      `gorm:"column:risk_score"`
	ClauseType ClauseType   `gorm:"column:clause_type"`
	Embedding  Vector       `gorm:"column:embedding_vector"`
	DocType    DocumentType `gorm:"column:doc_type"`
	Filename   string       `gorm:"column:filename"`
}

// EsClause 定义了存储在 Elasticsearch 条款索引中的文档结构。
type EsClause struct {
	ClauseID     string     `json:"clause_id"` // 唯一标识，例如 documentID_chunkIndex
	DocumentID   uint       `json:"document_id"`
	ChunkIndex   int        `json:"chunk_index"`
	TextContent  string     `json:"text_content"`
	Vector       []float32  `json:"vector"`
	ClauseType   ClauseType `json:"clause_type"`
	RiskScore    float64    `json:"risk_score"`
	ModelVersion string     `json:"model_version"`
	UserID       uint       `json:"user_id"`
}

// ClauseSearchDTO 定义了条款混合检索接口返回的结果结构。
type ClauseSearchDTO struct {
	DocumentID  uint       `json:"documentId"`
	Filename    string     `json:"filename"`
	ChunkIndex  int        `json:"chunkIndex"`
	TextContent string     `json:"textContent"`
	ClauseType  ClauseType `json:"clauseType"`
	RiskScore   float64    `json:"riskScore"`
	Score       float64    `json:"score"` // 检索得分
}
