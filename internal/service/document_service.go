package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"mime"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"gorm.io/gorm"

	"contract-risk-go/internal/analyzer"
	"contract-risk-go/internal/config"
	"contract-risk-go/internal/model"
	"contract-risk-go/internal/pipeline"
	"contract-risk-go/internal/repository"
	"contract-risk-go/pkg/kafka"
	"contract-risk-go/pkg/log"
	"contract-risk-go/pkg/storage"
	"contract-risk-go/pkg/tasks"
)

// ErrDocumentNotFound 表示文档不存在或不属于当前用户。
var ErrDocumentNotFound = errors.New("document not found")

// DocumentService 接口定义了文档上传、分析与查阅相关的业务操作。
type DocumentService interface {
	// AnalyzeDocument 同步执行一次完整分析，返回分析结果。
	AnalyzeDocument(ctx context.Context, data []byte, fileName string, userID uint) (*model.AnalysisResult, error)
	// EnqueueAnalysis 将分析任务投递到消息队列，返回 MinIO 对象名作为任务句柄。
	EnqueueAnalysis(ctx context.Context, data []byte, fileName string, userID uint) (string, error)
	// GetAnalysis 从库内记录重建一份文档的分析结果。
	GetAnalysis(documentID, userID uint) (*model.AnalysisResult, error)
	// ListDocuments 返回某用户的文档列表及风险均值。
	ListDocuments(userID uint) ([]model.DocumentSummaryDTO, error)
	// DownloadURL 为原始文件生成有时效的下载链接。
	DownloadURL(documentID, userID uint) (string, error)
	// Report 生成一份格式化的文本分析报告。
	Report(documentID, userID uint) (string, error)
}

// documentService 是 DocumentService 接口的实现。
type documentService struct {
	processor *pipeline.Processor
	docRepo   repository.DocumentRepository
	riskRepo  repository.RiskRecordRepository
	minioCfg  config.MinIOConfig
	kafkaCfg  config.KafkaConfig
}

// NewDocumentService 创建一个新的 DocumentService 实例。
func NewDocumentService(
	processor *pipeline.Processor,
	docRepo repository.DocumentRepository,
	riskRepo repository.RiskRecordRepository,
	minioCfg config.MinIOConfig,
	kafkaCfg config.KafkaConfig,
) DocumentService {
	return &documentService{
		processor: processor,
		docRepo:   docRepo,
		riskRepo:  riskRepo,
		minioCfg:  minioCfg,
		kafkaCfg:  kafkaCfg,
	}
}

// storeOriginal 将原始文件上传到 MinIO，返回对象名。上传失败只记日志。
func (s *documentService) storeOriginal(ctx context.Context, data []byte, fileName string, userID uint) string {
	objectKey := fmt.Sprintf("uploads/%d/%d_%s", userID, time.Now().UnixNano(), fileName)
	contentType := mime.TypeByExtension(filepath.Ext(fileName))
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	if err := storage.UploadObject(ctx, s.minioCfg.BucketName, objectKey, bytes.NewReader(data), int64(len(data)), contentType); err != nil {
		log.Warnf("[DocumentService] 原始文件上传 MinIO 失败, FileName: %s: %v", fileName, err)
		return ""
	}
	return objectKey
}

// AnalyzeDocument 同步分析：先归档原始文件，再执行流水线。
func (s *documentService) AnalyzeDocument(ctx context.Context, data []byte, fileName string, userID uint) (*model.AnalysisResult, error) {
	objectKey := s.storeOriginal(ctx, data, fileName, userID)

	result, err := s.processor.Analyze(ctx, bytes.NewReader(data), fileName, userID)
	if err != nil {
		return nil, err
	}

	if objectKey != "" {
		if err := s.attachObjectKey(result.DocumentID, objectKey); err != nil {
			log.Warnf("[DocumentService] 回写 object_key 失败, DocumentID: %d: %v", result.DocumentID, err)
		}
	}
	return result, nil
}

// EnqueueAnalysis 异步分析：原始文件必须先进入 MinIO，任务只携带对象名。
func (s *documentService) EnqueueAnalysis(ctx context.Context, data []byte, fileName string, userID uint) (string, error) {
	objectKey := s.storeOriginal(ctx, data, fileName, userID)
	if objectKey == "" {
		return "", errors.New("原始文件归档失败，无法投递异步任务")
	}

	task := tasks.AnalysisTask{
		DocumentKey: objectKey,
		FileName:    fileName,
		UserID:      userID,
	}
	if err := kafka.ProduceAnalysisTask(task); err != nil {
		return "", fmt.Errorf("投递分析任务失败: %w", err)
	}
	return objectKey, nil
}

// attachObjectKey 将 MinIO 对象名并入文档元数据。
func (s *documentService) attachObjectKey(documentID uint, objectKey string) error {
	doc, err := s.docRepo.FindByID(documentID)
	if err != nil {
		return err
	}
	if doc.Metadata == nil {
		doc.Metadata = model.JSONMap{}
	}
	doc.Metadata["object_key"] = objectKey
	return s.docRepo.UpdateMetadata(documentID, doc.Metadata)
}

// findOwnedDocument 取文档并校验归属。
func (s *documentService) findOwnedDocument(documentID, userID uint) (*model.Document, error) {
	doc, err := s.docRepo.FindByID(documentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrDocumentNotFound
		}
		return nil, err
	}
	if doc.UserID != 0 && doc.UserID != userID {
		return nil, ErrDocumentNotFound
	}
	return doc, nil
}

// GetAnalysis 用文档记录与风险记录重建分析结果，摘要取自分析时回写的元数据。
func (s *documentService) GetAnalysis(documentID, userID uint) (*model.AnalysisResult, error) {
	doc, err := s.findOwnedDocument(documentID, userID)
	if err != nil {
		return nil, err
	}

	records, err := s.riskRepo.FindByDocumentID(documentID)
	if err != nil {
		return nil, err
	}

	var importantClauses []model.ClauseAssessment
	var riskSum float64
	for _, rec := range records {
		riskSum += rec.RiskScore
		if _, known := model.ImportantClauseTypes[rec.ClauseType]; known || rec.RiskScore >= analyzer.MediumRiskThreshold {
			importantClauses = append(importantClauses, model.ClauseAssessment{
				ClauseType:  rec.ClauseType,
				ClauseText:  rec.ClauseText,
				RiskScore:   rec.RiskScore,
				RiskLevel:   analyzer.LevelForScore(rec.RiskScore),
				Explanation: rec.Explanation,
			})
		}
	}

	var overallRisk float64
	if len(records) > 0 {
		overallRisk = riskSum / float64(len(records))
	}

	summary, _ := doc.Metadata["summary"].(string)
	analysisDate := model.FormatTime(doc.UploadDate)
	if len(records) > 0 {
		analysisDate = model.FormatTime(records[0].AnalysisDate)
	}

	return &model.AnalysisResult{
		DocumentID:       doc.ID,
		Filename:         doc.Filename,
		DocumentType:     doc.DocType,
		Summary:          summary,
		ImportantClauses: importantClauses,
		OverallRiskScore: overallRisk,
		AnalysisDate:     analysisDate,
	}, nil
}

// ListDocuments 返回用户文档列表。
func (s *documentService) ListDocuments(userID uint) ([]model.DocumentSummaryDTO, error) {
	rows, err := s.docRepo.FindByUserID(userID)
	if err != nil {
		return nil, err
	}

	result := make([]model.DocumentSummaryDTO, 0, len(rows))
	for _, row := range rows {
		result = append(result, model.DocumentSummaryDTO{
			DocumentID:       row.ID,
			Filename:         row.Filename,
			DocumentType:     row.DocType,
			UploadDate:       model.FormatTime(row.UploadDate),
			OverallRiskScore: row.AvgRiskScore,
		})
	}
	return result, nil
}

// DownloadURL 生成原始文件的预签名下载链接，有效期 15 分钟。
func (s *documentService) DownloadURL(documentID, userID uint) (string, error) {
	doc, err := s.findOwnedDocument(documentID, userID)
	if err != nil {
		return "", err
	}

	objectKey, _ := doc.Metadata["object_key"].(string)
	if objectKey == "" {
		return "", errors.New("原始文件未归档，无法下载")
	}
	return storage.GetPresignedURL(s.minioCfg.BucketName, objectKey, 15*time.Minute)
}

// Report 生成文本报告：按风险等级分组列出重要条款。
func (s *documentService) Report(documentID, userID uint) (string, error) {
	analysis, err := s.GetAnalysis(documentID, userID)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	line := strings.Repeat("=", 80)
	sep := strings.Repeat("-", 80)

	b.WriteString(line + "\n")
	b.WriteString(fmt.Sprintf("DOCUMENT ANALYSIS SUMMARY: %s\n", analysis.Filename))
	b.WriteString(line + "\n")
	b.WriteString(fmt.Sprintf("Document Type: %s\n", analysis.DocumentType))
	b.WriteString(fmt.Sprintf("Analysis Date: %s\n", analysis.AnalysisDate))
	b.WriteString(fmt.Sprintf("Overall Risk Score: %.2f\n", analysis.OverallRiskScore))
	b.WriteString(sep + "\n")

	if analysis.Summary != "" {
		b.WriteString("DOCUMENT SUMMARY:\n")
		b.WriteString(sep + "\n")
		b.WriteString(analysis.Summary + "\n")
		b.WriteString(sep + "\n")
	}

	b.WriteString("IMPORTANT CLAUSES AND RISKS:\n")
	b.WriteString(sep + "\n")

	grouped := make(map[model.RiskLevel][]model.ClauseAssessment)
	for _, clause := range analysis.ImportantClauses {
		grouped[clause.RiskLevel] = append(grouped[clause.RiskLevel], clause)
	}
	for _, level := range []model.RiskLevel{model.RiskHigh, model.RiskMedium, model.RiskLow, model.RiskNegligible} {
		clauses := grouped[level]
		if len(clauses) == 0 {
			continue
		}
		sort.SliceStable(clauses, func(i, j int) bool { return clauses[i].RiskScore > clauses[j].RiskScore })

		b.WriteString(fmt.Sprintf("\n%s RISK CLAUSES:\n", strings.ToUpper(string(level))))
		for _, clause := range clauses {
			title := titleCase(strings.ReplaceAll(string(clause.ClauseType), "_", " "))
			snippet := clause.ClauseText
			if runes := []rune(snippet); len(runes) > 150 {
				snippet = string(runes[:150]) + "..."
			}
			b.WriteString(fmt.Sprintf("\n  - %s:\n", title))
			b.WriteString(fmt.Sprintf("    Risk Score: %.2f\n", clause.RiskScore))
			b.WriteString(fmt.Sprintf("    Explanation: %s\n", clause.Explanation))
			b.WriteString(fmt.Sprintf("    Text snippet: %q\n", snippet))
		}
	}

	b.WriteString("\n" + line + "\n")
	return b.String(), nil
}

// titleCase 将每个空格分隔的单词首字母大写。
func titleCase(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}
