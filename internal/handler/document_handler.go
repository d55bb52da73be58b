package handler

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"contract-risk-go/internal/config"
	"contract-risk-go/internal/model"
	"contract-risk-go/internal/service"
	"contract-risk-go/pkg/log"
	"contract-risk-go/pkg/tika"

	"github.com/gin-gonic/gin"
)

// DocumentHandler 负责处理文档上传、分析与查阅相关的 API 请求。
type DocumentHandler struct {
	documentService service.DocumentService
	queryService    service.QueryService
	kafkaEnabled    bool
}

// NewDocumentHandler 创建一个新的 DocumentHandler 实例。
func NewDocumentHandler(documentService service.DocumentService, queryService service.QueryService, kafkaCfg config.KafkaConfig) *DocumentHandler {
	return &DocumentHandler{
		documentService: documentService,
		queryService:    queryService,
		kafkaEnabled:    kafkaCfg.Enabled,
	}
}

// currentUser 从上下文中取出 AuthMiddleware 注入的用户对象。
func currentUser(c *gin.Context) (*model.User, bool) {
	userValue, exists := c.Get("user")
	if !exists {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "无法获取用户信息"})
		return nil, false
	}
	user, ok := userValue.(*model.User)
	if !ok || user == nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "用户数据类型错误"})
		return nil, false
	}
	return user, true
}

// Analyze 处理文档上传并触发风险分析。
// Kafka 开启时任务进入队列异步处理，否则在请求内同步完成。
func (h *DocumentHandler) Analyze(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		log.Warnf("Analyze: 请求中缺少文件, error: %v", err)
		c.JSON(http.StatusBadRequest, gin.H{
			"code":    http.StatusBadRequest,
			"message": "请求必须包含 file 字段",
		})
		return
	}

	if err := tika.CheckFormat(fileHeader.Filename); err != nil {
		log.Warnf("Analyze: 文件格式不支持, filename: %s", fileHeader.Filename)
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		log.Errorf("Analyze: 打开上传文件失败, error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "读取上传文件失败"})
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		log.Errorf("Analyze: 读取上传文件失败, error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "读取上传文件失败"})
		return
	}

	// 异步路径：归档到 MinIO 并投递 Kafka 任务
	if h.kafkaEnabled {
		objectKey, err := h.documentService.EnqueueAnalysis(c.Request.Context(), data, fileHeader.Filename, user.ID)
		if err != nil {
			log.Errorf("Analyze: 任务入队失败, filename: %s, error: %v", fileHeader.Filename, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "分析任务提交失败"})
			return
		}
		log.Infof("Analyze: 分析任务已入队, user: %s, objectKey: %s", user.Username, objectKey)
		c.JSON(http.StatusAccepted, gin.H{
			"code":    http.StatusAccepted,
			"message": "文档已接收，分析进行中",
			"data":    gin.H{"objectKey": objectKey, "filename": fileHeader.Filename},
		})
		return
	}

	result, err := h.documentService.AnalyzeDocument(c.Request.Context(), data, fileHeader.Filename, user.ID)
	if err != nil {
		if errors.Is(err, tika.ErrUnsupportedFormat) || errors.Is(err, tika.ErrUnreadableFile) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		log.Errorf("Analyze: 文档分析失败, filename: %s, error: %v", fileHeader.Filename, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "文档分析失败"})
		return
	}

	log.Infof("Analyze: 文档分析完成, user: %s, documentID: %d", user.Username, result.DocumentID)
	c.JSON(http.StatusOK, gin.H{"code": http.StatusOK, "data": result, "message": "success"})
}

// GetAnalysis 返回一份已分析文档的完整分析结果。
func (h *DocumentHandler) GetAnalysis(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	docID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "无效的文档 ID"})
		return
	}

	result, err := h.documentService.GetAnalysis(uint(docID), user.ID)
	if err != nil {
		if errors.Is(err, service.ErrDocumentNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "文档不存在"})
			return
		}
		log.Errorf("GetAnalysis: 获取分析结果失败, documentID: %d, error: %v", docID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "获取分析结果失败"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"code": http.StatusOK, "data": result, "message": "success"})
}

// List 返回当前用户的全部文档及风险均值。
func (h *DocumentHandler) List(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	docs, err := h.documentService.ListDocuments(user.ID)
	if err != nil {
		log.Errorf("List: 查询文档列表失败, user: %s, error: %v", user.Username, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "查询文档列表失败"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"code": http.StatusOK, "data": docs, "message": "success"})
}

// QueryRequest 定义了文档问答 API 的请求体结构。
type QueryRequest struct {
	Query      string `json:"query" binding:"required"`
	DocumentID uint   `json:"documentId"`
}

// Query 回答针对某份文档内容的提问，documentId 缺省时使用最近上传的文档。
func (h *DocumentHandler) Query(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	var req QueryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"code":    http.StatusBadRequest,
			"message": "无效的请求负载：query 不能为空",
		})
		return
	}

	result, err := h.queryService.Query(c.Request.Context(), req.Query, req.DocumentID, user.ID)
	if err != nil {
		if errors.Is(err, service.ErrDocumentNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "文档不存在"})
			return
		}
		log.Errorf("Query: 文档问答失败, user: %s, error: %v", user.Username, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "文档问答失败"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"code": http.StatusOK, "data": result, "message": "success"})
}

// Report 以纯文本形式返回格式化的分析报告。
func (h *DocumentHandler) Report(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	docID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "无效的文档 ID"})
		return
	}

	report, err := h.documentService.Report(uint(docID), user.ID)
	if err != nil {
		if errors.Is(err, service.ErrDocumentNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "文档不存在"})
			return
		}
		log.Errorf("Report: 生成报告失败, documentID: %d, error: %v", docID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "生成报告失败"})
		return
	}

	c.String(http.StatusOK, report)
}

// Download 为原始文件生成一个有时效的下载链接。
func (h *DocumentHandler) Download(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	docID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "无效的文档 ID"})
		return
	}

	url, err := h.documentService.DownloadURL(uint(docID), user.ID)
	if err != nil {
		if errors.Is(err, service.ErrDocumentNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "文档不存在"})
			return
		}
		log.Errorf("Download: 生成下载链接失败, documentID: %d, error: %v", docID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "生成下载链接失败"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"code": http.StatusOK, "data": gin.H{"url": url}, "message": "success"})
}
