package sysapi

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/yockii/office_tools/internal/constant"
	"github.com/yockii/office_tools/internal/model"
	"github.com/yockii/office_tools/internal/service"
	"github.com/yockii/office_tools/pkg/logger"
	"github.com/yockii/office_tools/pkg/util"
)

type AppHandler struct {
	appService      service.ApplicationService
	usageLogService service.UsageLogService
	documentService service.DocumentService
}

func RegisterAppHandler(
	applicationService service.ApplicationService,
	usageLogService service.UsageLogService,
	documentService service.DocumentService,
) {
	handler := &AppHandler{
		appService:      applicationService,
		usageLogService: usageLogService,
		documentService: documentService,
	}
	Handlers = append(Handlers, handler)
}

func (h *AppHandler) RegisterRoutes(router fiber.Router, authMiddleware fiber.Handler) {
	apps := router.Group("/applications", authMiddleware)
	{
		apps.Post("/new", h.CreateApp)
		apps.Post("/update", h.UpdateApp)
		apps.Post("/delete", h.DeleteApp)
		apps.Get("/list", h.ListApps)
		apps.Get("/info", h.GetApp)
	}

	logs := router.Group("/usage_logs", authMiddleware)
	{
		logs.Get("/list", h.ListUsageLogs)
	}

	documents := router.Group("/documents", authMiddleware)
	{
		documents.Get("/list", h.ListDocuments)
	}
}

// CreateApp 创建应用，APIKey与APISecret服务端生成，
// 明文密钥仅在本次响应中返回
func (h *AppHandler) CreateApp(c *fiber.Ctx) error {
	var app model.Application
	if err := c.BodyParser(&app); err != nil {
		logger.Error("请求参数解析失败", logger.F("err", err))
		return c.Status(fiber.StatusBadRequest).JSON(service.Error(constant.ErrInvalidParams))
	}
	if app.Name == "" {
		return c.Status(fiber.StatusBadRequest).JSON(service.Error(constant.ErrInvalidParams))
	}

	app.Status = 1
	app.APIKey = "ak-" + util.NewShortID()
	secret := "sk-" + util.NewShortID()
	app.APISecret = secret

	if err := h.appService.Create(c.Context(), &app); err != nil {
		return c.Status(constant.GetErrorCode(err)).JSON(service.Error(err))
	}

	// 返回明文secret，入库的是bcrypt散列
	app.APISecret = secret
	return c.JSON(service.OK(app))
}

// UpdateApp 更新应用
func (h *AppHandler) UpdateApp(c *fiber.Ctx) error {
	var app model.Application
	if err := c.BodyParser(&app); err != nil {
		logger.Error("请求参数解析失败", logger.F("err", err))
		return c.Status(fiber.StatusBadRequest).JSON(service.Error(constant.ErrInvalidParams))
	}

	app.APIKey = "" // 禁止修改APIKey

	if err := h.appService.Update(c.Context(), &app); err != nil {
		return c.Status(constant.GetErrorCode(err)).JSON(service.Error(err))
	}

	app.APISecret = ""
	return c.JSON(service.OK(app))
}

// DeleteApp 删除应用
func (h *AppHandler) DeleteApp(c *fiber.Ctx) error {
	var app model.Application
	if err := c.BodyParser(&app); err != nil {
		logger.Error("请求参数解析失败", logger.F("err", err))
		return c.Status(fiber.StatusBadRequest).JSON(service.Error(constant.ErrInvalidParams))
	}
	if app.ID == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(service.Error(constant.ErrInvalidParams))
	}

	if err := h.appService.Delete(c.Context(), app.ID); err != nil {
		return c.Status(constant.GetErrorCode(err)).JSON(service.Error(err))
	}

	return c.JSON(service.OK(nil))
}

// ListApps 获取应用列表
func (h *AppHandler) ListApps(c *fiber.Ctx) error {
	offset := c.QueryInt("offset", 0)
	limit := c.QueryInt("limit", service.DefaultPageSize)
	if limit > service.MaxPageSize {
		limit = service.MaxPageSize
	}

	var condition model.Application
	if err := c.QueryParser(&condition); err != nil {
		logger.Error("请求参数解析失败", logger.F("err", err))
		return c.Status(fiber.StatusBadRequest).JSON(service.Error(constant.ErrInvalidParams))
	}

	apps, total, err := h.appService.List(c.Context(), &condition, offset, limit)
	if err != nil {
		return c.Status(constant.GetErrorCode(err)).JSON(service.Error(err))
	}

	for _, app := range apps {
		app.APISecret = ""
	}
	return c.JSON(service.OK(service.NewListResponse(apps, total, offset, limit)))
}

// GetApp 获取应用详情
func (h *AppHandler) GetApp(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Query("id"), 10, 64)
	if err != nil {
		logger.Error("请求参数解析失败", logger.F("err", err))
		return c.Status(fiber.StatusBadRequest).JSON(service.Error(constant.ErrInvalidParams))
	}

	app, err := h.appService.Get(c.Context(), id)
	if err != nil {
		return c.Status(constant.GetErrorCode(err)).JSON(service.Error(err))
	}

	app.APISecret = ""
	return c.JSON(service.OK(app))
}

// ListUsageLogs 获取调用日志列表
func (h *AppHandler) ListUsageLogs(c *fiber.Ctx) error {
	offset := c.QueryInt("offset", 0)
	limit := c.QueryInt("limit", service.DefaultPageSize)
	if limit > service.MaxPageSize {
		limit = service.MaxPageSize
	}

	var condition model.UsageLog
	if err := c.QueryParser(&condition); err != nil {
		logger.Error("请求参数解析失败", logger.F("err", err))
		return c.Status(fiber.StatusBadRequest).JSON(service.Error(constant.ErrInvalidParams))
	}

	list, total, err := h.usageLogService.List(c.Context(), &condition, offset, limit)
	if err != nil {
		return c.Status(constant.GetErrorCode(err)).JSON(service.Error(err))
	}

	return c.JSON(service.OK(service.NewListResponse(list, total, offset, limit)))
}

// ListDocuments 获取全部应用的文档列表
func (h *AppHandler) ListDocuments(c *fiber.Ctx) error {
	offset := c.QueryInt("offset", 0)
	limit := c.QueryInt("limit", service.DefaultPageSize)
	if limit > service.MaxPageSize {
		limit = service.MaxPageSize
	}

	var condition model.Document
	if err := c.QueryParser(&condition); err != nil {
		logger.Error("请求参数解析失败", logger.F("err", err))
		return c.Status(fiber.StatusBadRequest).JSON(service.Error(constant.ErrInvalidParams))
	}

	documents, total, err := h.documentService.List(c.Context(), &condition, offset, limit)
	if err != nil {
		return c.Status(constant.GetErrorCode(err)).JSON(service.Error(err))
	}

	return c.JSON(service.OK(service.NewListResponse(documents, total, offset, limit)))
}
