package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// JSONMap 以 JSON 文本形式存入数据库的自由元数据。
type JSONMap map[string]interface{}

// Value 实现 driver.Valuer 接口。
func (m JSONMap) Value() (driver.Value, error) {
	if m == nil {
		return "{}", nil
	}
	b, err := json.Marshal(m)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan 实现 sql.Scanner 接口。
func (m *JSONMap) Scan(value interface{}) error {
	if value == nil {
		*m = JSONMap{}
		return nil
	}
	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, m)
	case string:
		return json.Unmarshal([]byte(v), m)
	default:
		return fmt.Errorf("无法将 %T 解析为 JSONMap", value)
	}
}

// Document 对应于数据库中的 documents 表。
// 每次上传创建一条记录，创建后除归属用户外不再修改。
type Document struct {
	ID         uint         `gorm:"primaryKey;autoIncrement" json:"id"`
	Filename   string       `gorm:"type:varchar(255);not null" json:"filename"`
	DocType    DocumentType `gorm:"type:varchar(20);not null;column:doc_type" json:"docType"`
	FullText   string       `gorm:"type:longtext;not null;column:full_text" json:"-"`
	UploadDate time.Time    `gorm:"autoCreateTime;column:upload_date" json:"uploadDate"`
	Metadata   JSONMap      `gorm:"type:json" json:"metadata"`
	// UserID 为 0 表示后台导入的公共文档，所有用户可见。
	UserID uint `gorm:"index;default:0" json:"userId"`
}

// TableName 指定了此模型在数据库中对应的表名。
func (Document) TableName() string {
	return "documents"
}

// DocumentWithRisk 是文档列表联查 risk_records 得到的行。
type DocumentWithRisk struct {
	ID           uint         `gorm:"column:id"`
	Filename     string       `gorm:"column:filename"`
	DocType      DocumentType `gorm:"column:doc_type"`
	UploadDate   time.Time    `gorm:"column:upload_date"`
	AvgRiskScore float64      `gorm:"column:avg_risk_score"`
}

// DocumentSummaryDTO 是文档列表接口返回的轻量视图。
type DocumentSummaryDTO struct {
	DocumentID       uint         `json:"document_id"`
	Filename         string       `json:"filename"`
	DocumentType     DocumentType `json:"document_type"`
	UploadDate       string       `json:"upload_date"`
	OverallRiskScore float64      `json:"overall_risk_score"`
}
