package toolapi

import (
	"io"

	"github.com/gofiber/fiber/v2"

	"github.com/yockii/office_tools/internal/constant"
	"github.com/yockii/office_tools/internal/middleware"
	"github.com/yockii/office_tools/internal/model"
	"github.com/yockii/office_tools/internal/service"
	"github.com/yockii/office_tools/pkg/logger"
)

// 模板上传大小上限
const maxTemplateSize = 20 << 20

type TemplateHandler struct {
	templateService service.TemplateService
	usageLogService service.UsageLogService
}

func RegisterTemplateHandler(
	templateService service.TemplateService,
	usageLogService service.UsageLogService,
) {
	handler := &TemplateHandler{
		templateService: templateService,
		usageLogService: usageLogService,
	}
	Handlers = append(Handlers, handler)
}

func (h *TemplateHandler) RegisterRoutes(router fiber.Router) {
	templates := router.Group("/templates")
	{
		templates.Post("/upload", h.UploadTemplate)
		templates.Get("/", h.ListTemplates)
		templates.Post("/delete", h.DeleteTemplate)
	}
}

// UploadTemplate 上传DOCX模板
func (h *TemplateHandler) UploadTemplate(c *fiber.Ctx) error {
	app := middleware.AppFromContext(c)
	if app == nil {
		return c.Status(fiber.StatusUnauthorized).JSON(service.Error(constant.ErrUnauthorized))
	}

	form, err := c.MultipartForm()
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(service.Error(constant.ErrInvalidParams))
	}

	files := form.File["file"]
	if len(files) == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(service.Error(constant.ErrInvalidParams))
	}
	file := files[0]
	if file.Size > maxTemplateSize {
		return c.Status(fiber.StatusBadRequest).JSON(service.Error(constant.ErrInvalidParams))
	}

	name := file.Filename
	if nv := form.Value["name"]; len(nv) > 0 && nv[0] != "" {
		name = nv[0]
	}
	description := ""
	if dv := form.Value["description"]; len(dv) > 0 {
		description = dv[0]
	}

	f, err := file.Open()
	if err != nil {
		logger.Error("读取上传文件失败", logger.F("err", err))
		return c.Status(fiber.StatusBadRequest).JSON(service.Error(constant.ErrInvalidParams))
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		logger.Error("读取上传文件失败", logger.F("err", err))
		return c.Status(fiber.StatusBadRequest).JSON(service.Error(constant.ErrInvalidParams))
	}

	tpl, err := h.templateService.Upload(c.Context(), app, name, description, data)
	if err != nil {
		go h.usageLogService.Record(c.Context(), &model.UsageLog{
			ApplicationID: app.ID,
			Action:        constant.LogActionUploadTemplate,
			IP:            c.IP(),
			UserAgent:     c.Get("User-Agent"),
			Failed:        true,
		})
		return c.Status(constant.GetErrorCode(err)).JSON(service.Error(err))
	}

	go h.usageLogService.Record(c.Context(), &model.UsageLog{
		ApplicationID: app.ID,
		Action:        constant.LogActionUploadTemplate,
		IP:            c.IP(),
		UserAgent:     c.Get("User-Agent"),
	})

	return c.JSON(service.OK(tpl))
}

// ListTemplates 查询本应用的模板列表
func (h *TemplateHandler) ListTemplates(c *fiber.Ctx) error {
	app := middleware.AppFromContext(c)
	if app == nil {
		return c.Status(fiber.StatusUnauthorized).JSON(service.Error(constant.ErrUnauthorized))
	}

	offset := c.QueryInt("offset", 0)
	limit := c.QueryInt("limit", service.DefaultPageSize)
	if limit > service.MaxPageSize {
		limit = service.MaxPageSize
	}

	var condition model.Template
	if err := c.QueryParser(&condition); err != nil {
		logger.Error("请求参数解析失败", logger.F("err", err))
		return c.Status(fiber.StatusBadRequest).JSON(service.Error(constant.ErrInvalidParams))
	}
	condition.ApplicationID = app.ID

	templates, total, err := h.templateService.List(c.Context(), &condition, offset, limit)
	if err != nil {
		return c.Status(constant.GetErrorCode(err)).JSON(service.Error(err))
	}

	return c.JSON(service.OK(service.NewListResponse(templates, total, offset, limit)))
}

// DeleteTemplate 删除模板
func (h *TemplateHandler) DeleteTemplate(c *fiber.Ctx) error {
	app := middleware.AppFromContext(c)
	if app == nil {
		return c.Status(fiber.StatusUnauthorized).JSON(service.Error(constant.ErrUnauthorized))
	}

	var tpl model.Template
	if err := c.BodyParser(&tpl); err != nil {
		logger.Error("请求参数解析失败", logger.F("err", err))
		return c.Status(fiber.StatusBadRequest).JSON(service.Error(constant.ErrInvalidParams))
	}
	if tpl.ID == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(service.Error(constant.ErrInvalidParams))
	}

	if err := h.templateService.Remove(c.Context(), app, tpl.ID); err != nil {
		return c.Status(constant.GetErrorCode(err)).JSON(service.Error(err))
	}

	go h.usageLogService.Record(c.Context(), &model.UsageLog{
		ApplicationID: app.ID,
		Action:        constant.LogActionDeleteTemplate,
		IP:            c.IP(),
		UserAgent:     c.Get("User-Agent"),
	})

	return c.JSON(service.OK(true))
}
