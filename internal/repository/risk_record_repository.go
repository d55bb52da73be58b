package repository

import (
	"gorm.io/gorm"

	"contract-risk-go/internal/model"
)

// RiskRecordRepository 接口定义了风险记录的持久化操作。
type RiskRecordRepository interface {
	// BatchCreate 一次性写入一份文档的全部风险记录。
	BatchCreate(records []model.RiskRecord) error
	FindByDocumentID(documentID uint) ([]model.RiskRecord, error)
}

// riskRecordRepository 是 RiskRecordRepository 接口的 GORM 实现。
type riskRecordRepository struct {
	db *gorm.DB
}

// NewRiskRecordRepository 创建一个新的 RiskRecordRepository 实例。
func NewRiskRecordRepository(db *gorm.DB) RiskRecordRepository {
	return &riskRecordRepository{db: db}
}

// BatchCreate 批量写入风险记录，空切片直接返回。
func (r *riskRecordRepository) BatchCreate(records []model.RiskRecord) error {
	if len(records) == 0 {
		return nil
	}
	return r.db.Create(&records).Error
}

// FindByDocumentID 返回某文档的全部风险记录。
func (r *riskRecordRepository) FindByDocumentID(documentID uint) ([]model.RiskRecord, error) {
	var records []model.RiskRecord
	err := r.db.Where("document_id = ?", documentID).Find(&records).Error
	return records, err
}
