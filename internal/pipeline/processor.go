// Package pipeline 定义了文档分析的核心流程。
package pipeline

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"time"
	"unicode/utf8"

	"github.com/minio/minio-go/v7"

	"contract-risk-go/internal/analyzer"
	"contract-risk-go/internal/config"
	"contract-risk-go/internal/model"
	"contract-risk-go/internal/repository"
	"contract-risk-go/pkg/embedding"
	"contract-risk-go/pkg/log"
	"contract-risk-go/pkg/storage"
	"contract-risk-go/pkg/tasks"
	"contract-risk-go/pkg/tika"
)

// TextExtractor 抽象文本提取器，便于在测试中替换 Tika。
type TextExtractor interface {
	ExtractText(fileReader io.Reader, fileName string) (string, error)
}

// ClauseIndexer 抽象条款的搜索索引写入。
type ClauseIndexer interface {
	IndexClause(ctx context.Context, clause model.EsClause) error
}

// Processor 封装了文档分析的所有依赖和逻辑。
type Processor struct {
	extractor       TextExtractor
	embeddingClient embedding.Client
	chunker         *analyzer.Chunker
	classifier      *analyzer.Classifier
	detector        *analyzer.DocTypeDetector
	scorer          *analyzer.Scorer
	summarizer      *analyzer.Summarizer
	docRepo         repository.DocumentRepository
	chunkRepo       repository.ChunkRepository
	riskRepo        repository.RiskRecordRepository
	indexer         ClauseIndexer // 可以为 nil，此时跳过搜索索引
	minioCfg        config.MinIOConfig
	embeddingModel  string
	abortOnEmbedErr bool
}

// NewProcessor 创建一个新的 Processor 实例。
func NewProcessor(
	extractor TextExtractor,
	embeddingClient embedding.Client,
	detector *analyzer.DocTypeDetector,
	summarizer *analyzer.Summarizer,
	docRepo repository.DocumentRepository,
	chunkRepo repository.ChunkRepository,
	riskRepo repository.RiskRecordRepository,
	indexer ClauseIndexer,
	minioCfg config.MinIOConfig,
	embeddingCfg config.EmbeddingConfig,
	analysisCfg config.AnalysisConfig,
) *Processor {
	return &Processor{
		extractor:       extractor,
		embeddingClient: embeddingClient,
		chunker:         analyzer.NewChunker(analysisCfg.ChunkSize, analysisCfg.ChunkOverlap),
		classifier:      analyzer.NewClassifier(),
		detector:        detector,
		scorer:          analyzer.NewScorer(analysisCfg.TopK),
		summarizer:      summarizer,
		docRepo:         docRepo,
		chunkRepo:       chunkRepo,
		riskRepo:        riskRepo,
		indexer:         indexer,
		minioCfg:        minioCfg,
		embeddingModel:  embeddingCfg.Model,
		abortOnEmbedErr: analysisCfg.AbortOnEmbedError,
	}
}

// chunkData 是单个分块在流水线内的中间状态。
type chunkData struct {
	index      int
	text       string
	embedding  model.Vector
	clauseType model.ClauseType
	riskScore  float64
}

// Analyze 对一份上传文档执行完整分析。
// 流程：提取全文 -> 判定文档类别 -> 分块 -> 逐块向量化与条款识别 ->
// 写入文档 -> 逐条款风险评分 -> 持久化分块与风险记录 -> 搜索索引 -> 生成摘要。
func (p *Processor) Analyze(ctx context.Context, fileReader io.Reader, fileName string, userID uint) (*model.AnalysisResult, error) {
	log.Infof("[Processor] 开始分析文档, FileName: %s, UserID: %d", fileName, userID)

	// 1. 提取全文
	fullText, err := p.extractor.ExtractText(fileReader, fileName)
	if err != nil {
		log.Errorf("[Processor] 提取文本失败, FileName: %s, Error: %v", fileName, err)
		return nil, err
	}
	log.Infof("[Processor] 步骤1: 文本提取成功, 内容长度: %d 字符", utf8.RuneCountInString(fullText))

	// 2. 判定文档类别
	docType := p.detector.Detect(ctx, fullText)
	log.Infof("[Processor] 步骤2: 文档类别判定为 %s", docType)

	// 3. 文本分块
	chunks := p.chunker.Split(fullText)
	log.Infof("[Processor] 步骤3: 文本分块完成, 共生成 %d 个分块", len(chunks))
	if len(chunks) == 0 {
		return nil, errors.New("未生成任何文本分块")
	}

	// 4. 逐块向量化并识别条款类别
	chunkDatas := make([]chunkData, 0, len(chunks))
	for i, chunk := range chunks {
		vector, err := p.embeddingClient.CreateEmbedding(ctx, chunk)
		if err != nil {
			if p.abortOnEmbedErr {
				log.Errorf("[Processor] 分块 %d 向量化失败, 中止分析: %v", i, err)
				return nil, fmt.Errorf("块 %d 向量化失败: %w", i, err)
			}
			log.Warnf("[Processor] 分块 %d 向量化失败, 跳过该分块: %v", i, err)
			continue
		}
		chunkDatas = append(chunkDatas, chunkData{
			index:      i,
			text:       chunk,
			embedding:  vector,
			clauseType: p.classifier.Classify(chunk),
		})
	}
	log.Infof("[Processor] 步骤4: 向量化完成, 有效分块 %d/%d", len(chunkDatas), len(chunks))

	// 5. 写入文档记录
	doc := &model.Document{
		Filename: fileName,
		DocType:  docType,
		FullText: fullText,
		UserID:   userID,
		Metadata: model.JSONMap{
			"length": utf8.RuneCountInString(fullText),
			"chunks": len(chunks),
		},
	}
	if err := p.docRepo.Create(doc); err != nil {
		log.Errorf("[Processor] 写入文档记录失败: %v", err)
		return nil, fmt.Errorf("写入文档记录失败: %w", err)
	}
	log.Infof("[Processor] 步骤5: 文档记录已创建, DocumentID: %d", doc.ID)

	// 6. 逐条款风险评分。评分只参考既有历史数据，当前文档的分块尚未落库，
	// 不会影响自身评分。
	var riskRecords []model.RiskRecord
	var importantClauses []model.ClauseAssessment
	var riskSum float64
	for i := range chunkDatas {
		cd := &chunkDatas[i]
		if cd.clauseType == model.ClauseUnclassified {
			continue
		}

		stored, err := p.chunkRepo.FindByClauseType(cd.clauseType)
		if err != nil {
			log.Warnf("[Processor] 查询历史条款失败 (type=%s), 按冷启动处理: %v", cd.clauseType, err)
			stored = nil
		}
		similar := p.scorer.TopSimilar(cd.embedding, stored)
		assessment := p.scorer.Score(cd.text, cd.clauseType, similar)
		cd.riskScore = assessment.RiskScore
		riskSum += assessment.RiskScore

		riskRecords = append(riskRecords, model.RiskRecord{
			DocumentID:  doc.ID,
			ClauseType:  assessment.ClauseType,
			ClauseText:  assessment.ClauseText,
			RiskScore:   assessment.RiskScore,
			Explanation: assessment.Explanation,
		})

		// 命中条款类别即视为重要；未知类别只在达到中风险时保留
		if _, known := model.ImportantClauseTypes[cd.clauseType]; known || assessment.RiskScore >= analyzer.MediumRiskThreshold {
			importantClauses = append(importantClauses, assessment)
		}
	}
	log.Infof("[Processor] 步骤6: 风险评分完成, 产生 %d 条风险记录", len(riskRecords))

	// 7. 持久化分块。每块独立事务，失败只记日志不回滚整篇分析。
	persisted := 0
	for _, cd := range chunkDatas {
		if cd.clauseType == model.ClauseUnclassified {
			continue
		}
		chunk := &model.DocumentChunk{
			DocumentID: doc.ID,
			ChunkIndex: cd.index,
			ChunkText:  cd.text,
			Embedding:  cd.embedding,
			ClauseType: cd.clauseType,
			RiskScore:  cd.riskScore,
		}
		if err := p.chunkRepo.CreateOne(chunk); err != nil {
			log.Warnf("[Processor] 分块 %d 落库失败, 跳过: %v", cd.index, err)
			continue
		}
		persisted++
	}
	log.Infof("[Processor] 步骤7: 分块持久化完成, 成功 %d 条", persisted)

	// 8. 批量写入风险记录
	if err := p.riskRepo.BatchCreate(riskRecords); err != nil {
		log.Errorf("[Processor] 批量写入风险记录失败: %v", err)
		return nil, fmt.Errorf("批量写入风险记录失败: %w", err)
	}

	// 9. 搜索索引（尽力而为，索引失败不影响分析结果）
	if p.indexer != nil {
		for _, cd := range chunkDatas {
			if cd.clauseType == model.ClauseUnclassified {
				continue
			}
			esClause := model.EsClause{
				ClauseID:     fmt.Sprintf("%d_%d", doc.ID, cd.index),
				DocumentID:   doc.ID,
				ChunkIndex:   cd.index,
				TextContent:  cd.text,
				Vector:       cd.embedding,
				ClauseType:   cd.clauseType,
				RiskScore:    cd.riskScore,
				ModelVersion: p.embeddingModel,
				UserID:       userID,
			}
			if err := p.indexer.IndexClause(ctx, esClause); err != nil {
				log.Warnf("[Processor] 索引分块 %d 到 Elasticsearch 失败: %v", cd.index, err)
			}
		}
	}

	// 10. 生成摘要并回写元数据
	summary := p.summarizer.Summarize(ctx, fullText, docType, importantClauses)

	var overallRisk float64
	if len(riskRecords) > 0 {
		overallRisk = riskSum / float64(len(riskRecords))
	}

	doc.Metadata["summary"] = summary
	doc.Metadata["overall_risk_score"] = overallRisk
	if err := p.docRepo.UpdateMetadata(doc.ID, doc.Metadata); err != nil {
		log.Warnf("[Processor] 回写文档元数据失败: %v", err)
	}

	result := &model.AnalysisResult{
		DocumentID:       doc.ID,
		Filename:         fileName,
		DocumentType:     docType,
		Summary:          summary,
		ImportantClauses: importantClauses,
		OverallRiskScore: overallRisk,
		AnalysisDate:     model.FormatTime(time.Now()),
	}
	log.Infof("[Processor] 文档分析完成, DocumentID: %d, OverallRisk: %.2f", doc.ID, overallRisk)
	return result, nil
}

// Process 消费一条异步分析任务：从 MinIO 下载原始文件后执行完整分析。
func (p *Processor) Process(ctx context.Context, task tasks.AnalysisTask) error {
	log.Infof("[Processor] 开始处理异步任务, Object: %s, FileName: %s", task.DocumentKey, task.FileName)

	object, err := storage.MinioClient.GetObject(ctx, p.minioCfg.BucketName, task.DocumentKey, minio.GetObjectOptions{})
	if err != nil {
		log.Errorf("[Processor] 从MinIO下载文件失败, Object: %s, Error: %v", task.DocumentKey, err)
		return fmt.Errorf("从 MinIO 下载文件失败: %w", err)
	}
	defer object.Close()

	buf := new(bytes.Buffer)
	size, err := buf.ReadFrom(object)
	if err != nil {
		return fmt.Errorf("读取MinIO对象流失败: %w", err)
	}
	if size == 0 {
		log.Warnf("[Processor] 文件 '%s' 内容为空, 处理中止", task.FileName)
		return errors.New("文件内容为空")
	}

	result, err := p.Analyze(ctx, bytes.NewReader(buf.Bytes()), task.FileName, task.UserID)
	if err != nil {
		return err
	}

	// 把原始文件的对象名并入元数据，供后续下载使用
	if doc, findErr := p.docRepo.FindByID(result.DocumentID); findErr == nil {
		if doc.Metadata == nil {
			doc.Metadata = model.JSONMap{}
		}
		doc.Metadata["object_key"] = task.DocumentKey
		if updErr := p.docRepo.UpdateMetadata(doc.ID, doc.Metadata); updErr != nil {
			log.Warnf("[Processor] 回写 object_key 失败, DocumentID: %d: %v", doc.ID, updErr)
		}
	}
	return nil
}

// 保证 tika.Client 满足 TextExtractor。
var _ TextExtractor = (*tika.Client)(nil)
