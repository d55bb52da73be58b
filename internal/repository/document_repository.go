// Package repository 定义了与数据库进行数据交换的接口和实现。
package repository

import (
	"gorm.io/gorm"

	"contract-risk-go/internal/model"
)

// DocumentRepository 接口定义了文档数据的持久化操作。
type DocumentRepository interface {
	Create(doc *model.Document) error
	FindByID(id uint) (*model.Document, error)
	// FindLatestByUserID 返回某用户最近上传的文档，没有时返回 gorm.ErrRecordNotFound。
	FindLatestByUserID(userID uint) (*model.Document, error)
	// FindByUserID 返回某用户的全部文档及其风险均值，按上传时间倒序。
	FindByUserID(userID uint) ([]model.DocumentWithRisk, error)
	// UpdateMetadata 分析完成后回写摘要等元数据。
	UpdateMetadata(docID uint, metadata model.JSONMap) error
	// FindBatchByIDs 批量查找文档，用于检索结果补全文件名。
	FindBatchByIDs(ids []uint) ([]model.Document, error)
}

// documentRepository 是 DocumentRepository 接口的 GORM 实现。
type documentRepository struct {
	db *gorm.DB
}

// NewDocumentRepository 创建一个新的 DocumentRepository 实例。
func NewDocumentRepository(db *gorm.DB) DocumentRepository {
	return &documentRepository{db: db}
}

// Create 在数据库中创建一条新的文档记录。
func (r *documentRepository) Create(doc *model.Document) error {
	return r.db.Create(doc).Error
}

// FindByID 根据主键查找文档。
func (r *documentRepository) FindByID(id uint) (*model.Document, error) {
	var doc model.Document
	err := r.db.First(&doc, id).Error
	if err != nil {
		return nil, err
	}
	return &doc, nil
}

// FindLatestByUserID 按上传时间倒序取某用户的最新文档。
func (r *documentRepository) FindLatestByUserID(userID uint) (*model.Document, error) {
	var doc model.Document
	err := r.db.Where("user_id = ?", userID).Order("upload_date DESC").First(&doc).Error
	if err != nil {
		return nil, err
	}
	return &doc, nil
}

// FindByUserID 联查 risk_records 计算每份文档的风险均值。
func (r *documentRepository) FindByUserID(userID uint) ([]model.DocumentWithRisk, error) {
	var results []model.DocumentWithRisk
	err := r.db.Model(&model.Document{}).
		Select("documents.id, documents.filename, documents.doc_type, documents.upload_date, COALESCE(AVG(risk_records.risk_score), 0) AS avg_risk_score").
		Joins("LEFT JOIN risk_records ON risk_records.document_id = documents.id").
		Where("documents.user_id = ?", userID).
		Group("documents.id").
		Order("documents.upload_date DESC").
		Scan(&results).Error
	return results, err
}

// FindBatchByIDs 根据主键批量查找文档。
func (r *documentRepository) FindBatchByIDs(ids []uint) ([]model.Document, error) {
	var docs []model.Document
	if len(ids) == 0 {
		return docs, nil
	}
	err := r.db.Where("id IN ?", ids).Find(&docs).Error
	return docs, err
}

// UpdateMetadata 覆盖文档的元数据字段。
func (r *documentRepository) UpdateMetadata(docID uint, metadata model.JSONMap) error {
	return r.db.Model(&model.Document{}).Where("id = ?", docID).Update("metadata", metadata).Error
}
