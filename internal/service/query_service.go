package service

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"contract-risk-go/internal/analyzer"
	"contract-risk-go/internal/model"
	"contract-risk-go/internal/repository"
	"contract-risk-go/pkg/log"
)

// QueryService 接口定义了文档问答操作。
type QueryService interface {
	// Query 回答针对某份文档的提问。documentID 为 0 时回退到该用户最近上传的文档。
	Query(ctx context.Context, query string, documentID, userID uint) (*model.QueryResult, error)
}

// queryService 是 QueryService 接口的实现。
type queryService struct {
	docRepo  repository.DocumentRepository
	answerer *analyzer.QueryAnswerer
}

// NewQueryService 创建一个新的 QueryService 实例。
func NewQueryService(docRepo repository.DocumentRepository, answerer *analyzer.QueryAnswerer) QueryService {
	return &queryService{
		docRepo:  docRepo,
		answerer: answerer,
	}
}

// Query 解析目标文档后交给 QueryAnswerer。
func (s *queryService) Query(ctx context.Context, query string, documentID, userID uint) (*model.QueryResult, error) {
	doc, err := s.resolveDocument(documentID, userID)
	if err != nil {
		return nil, err
	}

	timestamp := model.FormatTime(time.Now())
	if doc == nil {
		// 一份文档都没有时返回固定回答，不视为错误
		return &model.QueryResult{
			Query:     query,
			Answer:    "No document found to query.",
			Timestamp: timestamp,
		}, nil
	}

	answer := s.answerer.Answer(ctx, query, doc.FullText)
	log.Infof("[QueryService] 问答完成, DocumentID: %d, query: '%s'", doc.ID, query)

	return &model.QueryResult{
		Query:  query,
		Answer: answer,
		DocumentInfo: model.DocumentInfo{
			Filename: doc.Filename,
			DocType:  doc.DocType,
		},
		Timestamp: timestamp,
	}, nil
}

// resolveDocument 按 documentID 查找文档，为 0 时取该用户最新文档。
// 找不到任何文档时返回 (nil, nil)。
func (s *queryService) resolveDocument(documentID, userID uint) (*model.Document, error) {
	if documentID != 0 {
		doc, err := s.docRepo.FindByID(documentID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, nil
			}
			return nil, err
		}
		if doc.UserID != 0 && doc.UserID != userID {
			return nil, ErrDocumentNotFound
		}
		return doc, nil
	}

	doc, err := s.docRepo.FindLatestByUserID(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return doc, nil
}
