package server

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	middlewareLogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	fiberSwagger "github.com/swaggo/fiber-swagger"

	_ "github.com/yockii/office_tools/docs"
	sysapi "github.com/yockii/office_tools/internal/api_sys"
	toolapi "github.com/yockii/office_tools/internal/api_tool"
	"github.com/yockii/office_tools/internal/middleware"
	"github.com/yockii/office_tools/internal/service"
	"github.com/yockii/office_tools/pkg/config"
	"github.com/yockii/office_tools/pkg/logger"
)

type Server struct {
	app *fiber.App

	// 各个service
	sessionSrv     service.SessionService
	authSrv        service.AuthService
	applicationSrv service.ApplicationService
	mailSrv        service.MailService
	templateSrv    service.TemplateService
	usageLogSrv    service.UsageLogService
	documentSrv    service.DocumentService
}

func New() *Server {
	return &Server{}
}

func (s *Server) Start() error {
	// 创建Fiber实例
	s.app = fiber.New(fiber.Config{
		AppName:               config.GetString("server.app_name"),
		EnablePrintRoutes:     config.GetBool("server.print_routes"),
		DisableStartupMessage: true,
		BodyLimit:             32 << 20,
	})

	s.setupServices()

	// 配置中间件
	s.setupMiddleware()

	// 配置工具路由
	s.setupToolRoutes()
	// 配置管理路由
	s.setupSystemRoutes()

	// 启动服务器
	addr := config.GetServerAddress()
	logger.Info("服务监听地址", logger.F("address", addr))

	// 优雅关闭
	go s.gracefulShutdown()

	if err := s.app.Listen(addr); err != nil {
		logger.Error("服务停止", logger.F("error", err))
		return err
	}
	return nil
}

func (s *Server) gracefulShutdown() {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("服务关闭中...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := s.app.ShutdownWithContext(ctx); err != nil {
		logger.Error("服务关闭失败", logger.F("error", err))
	}

	logger.Info("服务已关闭")
}

// setupServices 配置服务层
func (s *Server) setupServices() {
	s.sessionSrv = service.NewSessionService()
	s.applicationSrv = service.NewApplicationService()
	s.authSrv = service.NewAuthService(s.applicationSrv, s.sessionSrv)

	s.mailSrv = service.NewMailService()
	s.templateSrv = service.NewTemplateService()
	s.usageLogSrv = service.NewUsageLogService()
	s.documentSrv = service.NewDocumentService(s.templateSrv, s.mailSrv)
}

// setupMiddleware 配置中间件
func (s *Server) setupMiddleware() {
	// 异常恢复
	s.app.Use(recover.New())

	// CORS
	s.app.Use(cors.New(cors.Config{
		AllowOrigins: config.GetString("security.allowed_origins"),
		AllowHeaders: "Origin, Content-Type, Accept, Authorization, X-Admin-Key",
	}))

	// 访问日志
	s.app.Use(middlewareLogger.New(middlewareLogger.Config{
		Format:     "[${ip}]-${time} ${status} ${latency} ${method} ${path} | ${error}\n",
		TimeFormat: "2006-01-02 15:04:05",
		TimeZone:   "Local",
	}))

	// 全局限流
	if config.GetBool("rate_limit.enabled") {
		s.app.Use(middleware.RateLimit(
			config.GetInt("rate_limit.max_requests"),
			time.Duration(config.GetInt("rate_limit.duration"))*time.Second,
		))
	}
}

// setupToolRoutes 配置应用调用的工具路由
func (s *Server) setupToolRoutes() {
	toolapi.RegisterAuthHandler(s.authSrv)
	toolapi.RegisterRenderHandler(s.documentSrv, s.usageLogSrv)
	toolapi.RegisterTemplateHandler(s.templateSrv, s.usageLogSrv)
	toolapi.RegisterDocumentHandler(s.documentSrv, s.usageLogSrv)

	apiGroup := s.app.Group("/api/v1")
	for _, handler := range toolapi.PublicHandlers {
		handler.RegisterRoutes(apiGroup)
	}

	appAuthMiddleware := middleware.NewAppMiddleware(s.authSrv, s.applicationSrv, s.sessionSrv)
	toolGroup := s.app.Group("/api/v1", appAuthMiddleware)
	for _, handler := range toolapi.Handlers {
		handler.RegisterRoutes(toolGroup)
	}

	// 健康检查
	s.app.Get("/health", func(c *fiber.Ctx) error {
		return c.SendString("OK")
	})

	// API文档
	s.app.Get("/swagger/*", fiberSwagger.WrapHandler)
}

// setupSystemRoutes 配置管理路由
func (s *Server) setupSystemRoutes() {
	sysapi.RegisterAppHandler(
		s.applicationSrv,
		s.usageLogSrv,
		s.documentSrv,
	)
	sysapi.RegisterStatusHandler()

	sysAuthMiddleware := middleware.NewSysMiddleware()
	apiGroup := s.app.Group("/sys_api/v1")
	for _, handler := range sysapi.Handlers {
		handler.RegisterRoutes(apiGroup, sysAuthMiddleware)
	}
}
