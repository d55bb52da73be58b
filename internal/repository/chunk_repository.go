package repository

import (
	"gorm.io/gorm"

	"contract-risk-go/internal/model"
)

// ChunkRepository 接口定义了文档分块的持久化操作。
type ChunkRepository interface {
	// CreateOne 在独立事务中写入单个分块。
	// 单块失败不影响其它分块，由调用方决定跳过还是中止。
	CreateOne(chunk *model.DocumentChunk) error
	FindByDocumentID(documentID uint) ([]model.DocumentChunk, error)
	// FindByClauseType 联查 documents 取出某条款类别的全部历史分块，
	// 供相似度评分使用。
	FindByClauseType(clauseType model.ClauseType) ([]model.StoredClause, error)
}

// chunkRepository 是 ChunkRepository 接口的 GORM 实现。
type chunkRepository struct {
	db *gorm.DB
}

// NewChunkRepository 创建一个新的 ChunkRepository 实例。
func NewChunkRepository(db *gorm.DB) ChunkRepository {
	return &chunkRepository{db: db}
}

// CreateOne 每个分块单独开事务写入。
func (r *chunkRepository) CreateOne(chunk *model.DocumentChunk) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		return tx.Create(chunk).Error
	})
}

// FindByDocumentID 返回某文档的全部分块，按分块序号排序。
func (r *chunkRepository) FindByDocumentID(documentID uint) ([]model.DocumentChunk, error) {
	var chunks []model.DocumentChunk
	err := r.db.Where("document_id = ?", documentID).Order("chunk_index ASC").Find(&chunks).Error
	return chunks, err
}

// FindByClauseType 取出指定条款类别的历史分块及所属文档信息。
func (r *chunkRepository) FindByClauseType(clauseType model.ClauseType) ([]model.StoredClause, error) {
	var clauses []model.StoredClause
	err := r.db.Model(&model.DocumentChunk{}).
		Select("chunks.chunk_text, chunks.risk_score, chunks.clause_type, chunks.embedding_vector, documents.doc_type, documents.filename").
		Joins("JOIN documents ON documents.id = chunks.document_id").
		Where("chunks.clause_type = ?", clauseType).
		Scan(&clauses).Error
	return clauses, err
}
