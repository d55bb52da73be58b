// Package main 是应用程序的入口点。
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"contract-risk-go/internal/analyzer"
	"contract-risk-go/internal/config"
	"contract-risk-go/internal/handler"
	"contract-risk-go/internal/middleware"
	"contract-risk-go/internal/pipeline"
	"contract-risk-go/internal/repository"
	"contract-risk-go/internal/service"
	"contract-risk-go/pkg/database"
	"contract-risk-go/pkg/embedding"
	"contract-risk-go/pkg/es"
	"contract-risk-go/pkg/kafka"
	"contract-risk-go/pkg/llm"
	"contract-risk-go/pkg/log"
	"contract-risk-go/pkg/storage"
	"contract-risk-go/pkg/tika"
	"contract-risk-go/pkg/token"

	"github.com/gin-gonic/gin"
)

func main() {
	// 1. 初始化配置
	config.Init("./configs/config.yaml")
	cfg := config.Conf

	// 2. 初始化日志记录器
	log.Init(cfg.Log.Level, cfg.Log.Format, cfg.Log.OutputPath)
	defer log.Sync() // 确保在程序退出时刷新所有缓冲的日志条目
	log.Info("日志记录器初始化成功")

	// 3. 初始化数据库、Redis、对象存储与 ES
	database.InitMySQL(cfg.Database.MySQL.DSN)
	database.InitRedis(cfg.Database.Redis.Addr, cfg.Database.Redis.Password, cfg.Database.Redis.DB)
	storage.InitMinIO(cfg.MinIO)
	if err := es.InitES(cfg.Elasticsearch, cfg.Embedding.Dimensions); err != nil {
		log.Errorf("es 初始化失败 %s", err)
		return
	}
	if cfg.Kafka.Enabled {
		kafka.InitProducer(cfg.Kafka)
	}

	// 4. 初始化 Repository
	userRepo := repository.NewUserRepository(database.DB)
	docRepo := repository.NewDocumentRepository(database.DB)
	chunkRepo := repository.NewChunkRepository(database.DB)
	riskRepo := repository.NewRiskRecordRepository(database.DB)
	conversationRepo := repository.NewConversationRepository(database.RDB)

	// 5. 初始化外部服务客户端
	jwtManager := token.NewJWTManager(cfg.JWT.Secret, cfg.JWT.AccessTokenExpireHours, cfg.JWT.RefreshTokenExpireDays)
	tikaClient := tika.NewClient(cfg.Tika)
	embeddingClient := embedding.NewClient(cfg.Embedding)
	llmClient := llm.NewClient(cfg.LLM)

	// 6. 初始化分析管道 (Processor)
	detector := analyzer.NewDocTypeDetector(llmClient)
	summarizer := analyzer.NewSummarizer(llmClient)
	indexer := es.NewIndexer(es.ESClient, cfg.Elasticsearch.IndexName)
	processor := pipeline.NewProcessor(
		tikaClient,
		embeddingClient,
		detector,
		summarizer,
		docRepo,
		chunkRepo,
		riskRepo,
		indexer,
		cfg.MinIO,
		cfg.Embedding,
		cfg.Analysis,
	)

	// 7. 初始化 Service (依赖注入)
	userService := service.NewUserService(userRepo, jwtManager)
	documentService := service.NewDocumentService(processor, docRepo, riskRepo, cfg.MinIO, cfg.Kafka)
	queryService := service.NewQueryService(docRepo, analyzer.NewQueryAnswerer(llmClient))
	searchService := service.NewSearchService(embeddingClient, es.ESClient, cfg.Elasticsearch, docRepo)
	conversationService := service.NewConversationService(conversationRepo)
	chatService := service.NewChatService(docRepo, llmClient, conversationRepo)

	// 8. 启动后台 Kafka 消费者
	if cfg.Kafka.Enabled {
		go kafka.StartConsumer(cfg.Kafka, processor)
	}

	// 9. 设置 Gin 模式并创建路由引擎
	gin.SetMode(cfg.Server.Mode)
	r := gin.New() // 使用 New() 创建一个不带默认中间件的引擎
	r.Use(middleware.RequestLogger(), gin.Recovery())

	// 10. 注册路由
	apiV1 := r.Group("/api/v1")
	{
		// Auth 路由组
		auth := apiV1.Group("/auth")
		{
			auth.POST("/refreshToken", handler.NewAuthHandler(userService).RefreshToken)
		}

		users := apiV1.Group("/users")
		{
			// 无需认证的路由 (公开访问)
			users.POST("/register", handler.NewUserHandler(userService).Register)
			users.POST("/login", handler.NewUserHandler(userService).Login)

			// 需要认证的路由 (仅限登录用户访问)
			authed := users.Group("/")
			authed.Use(middleware.AuthMiddleware(jwtManager, userService))
			{
				authed.GET("/me", handler.NewUserHandler(userService).GetProfile)
				authed.POST("/logout", handler.NewUserHandler(userService).Logout)
			}
		}

		// Document 路由组，需要认证
		docHandler := handler.NewDocumentHandler(documentService, queryService, cfg.Kafka)
		documents := apiV1.Group("/documents")
		documents.Use(middleware.AuthMiddleware(jwtManager, userService))
		{
			documents.POST("/upload", docHandler.Analyze)
			documents.GET("", docHandler.List)
			documents.GET("/:id", docHandler.GetAnalysis)
			documents.GET("/:id/report", docHandler.Report)
			documents.GET("/:id/download", docHandler.Download)
			documents.POST("/query", docHandler.Query)
		}

		// Search 路由组
		search := apiV1.Group("/search")
		search.Use(middleware.AuthMiddleware(jwtManager, userService))
		{
			search.GET("/clauses", handler.NewSearchHandler(searchService).SearchClauses)
		}

		// Conversation 路由组
		conversation := apiV1.Group("/users/conversation")
		conversation.Use(middleware.AuthMiddleware(jwtManager, userService))
		{
			conversation.GET("", handler.NewConversationHandler(conversationService).GetConversations)
		}

		// Chat 路由 (WebSocket)
		chatHandler := handler.NewChatHandler(chatService, userService, jwtManager)
		chatGroup := apiV1.Group("/chat")
		{
			chatGroup.GET("/websocket-token", chatHandler.GetWebsocketStopToken)
		}
		r.GET("/chat/:token", chatHandler.Handle)
	}

	// 11. 启动 HTTP 服务器并实现优雅停机
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.Server.Port),
		Handler: r,
	}

	go func() {
		log.Infof("服务启动于 %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("HTTP 服务监听失败: %s\n", err)
		}
	}()

	// 等待中断信号以实现优雅停机
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("接收到停机信号，正在关闭服务...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("HTTP 服务器关闭失败: %v", err)
	}

	log.Info("服务已退出")
}
