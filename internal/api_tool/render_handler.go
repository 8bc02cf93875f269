package toolapi

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/yockii/office_tools/internal/constant"
	"github.com/yockii/office_tools/internal/middleware"
	"github.com/yockii/office_tools/internal/model"
	"github.com/yockii/office_tools/internal/service"
	"github.com/yockii/office_tools/pkg/logger"
)

type RenderHandler struct {
	documentService service.DocumentService
	usageLogService service.UsageLogService
}

func RegisterRenderHandler(
	documentService service.DocumentService,
	usageLogService service.UsageLogService,
) {
	handler := &RenderHandler{
		documentService: documentService,
		usageLogService: usageLogService,
	}
	Handlers = append(Handlers, handler)
}

func (h *RenderHandler) RegisterRoutes(router fiber.Router) {
	tools := router.Group("/tools")
	{
		tools.Post("/word", h.RenderWord)
		tools.Post("/spreadsheet", h.RenderSpreadsheet)
		tools.Post("/template", h.SpliceTemplate)
		tools.Post("/preview", h.Preview)
	}
}

type renderRequest struct {
	Name     string   `json:"name"`
	Markdown string   `json:"markdown"`
	SendTo   []string `json:"sendTo"`
}

type spliceRequest struct {
	TemplateID uint64            `json:"templateId,string"`
	Name       string            `json:"name"`
	Values     map[string]string `json:"values"`
	SendTo     []string          `json:"sendTo"`
}

type renderResponse struct {
	Document    *model.Document `json:"document"`
	DownloadURL string          `json:"downloadUrl"`
	Notices     []string        `json:"notices,omitempty"`
	CellErrors  []string        `json:"cellErrors,omitempty"`
}

func newRenderResponse(result *service.RenderResult) *renderResponse {
	return &renderResponse{
		Document:    result.Document,
		DownloadURL: fmt.Sprintf("/api/v1/documents/%d/download", result.Document.ID),
		Notices:     result.Notices,
		CellErrors:  result.CellErrors,
	}
}

// RenderWord Markdown生成Word文档
func (h *RenderHandler) RenderWord(c *fiber.Ctx) error {
	app := middleware.AppFromContext(c)
	if app == nil {
		return c.Status(fiber.StatusUnauthorized).JSON(service.Error(constant.ErrUnauthorized))
	}

	var req renderRequest
	if err := c.BodyParser(&req); err != nil {
		logger.Error("请求参数解析失败", logger.F("err", err))
		return c.Status(fiber.StatusBadRequest).JSON(service.Error(constant.ErrInvalidParams))
	}
	if req.Markdown == "" {
		return c.Status(fiber.StatusBadRequest).JSON(service.Error(constant.ErrInvalidParams))
	}
	if req.Name == "" {
		req.Name = "未命名文档"
	}

	start := time.Now()
	result, err := h.documentService.RenderWord(c.Context(), app, req.Name, req.Markdown, req.SendTo)
	h.record(c, app, constant.LogActionRenderWord, result, start, err)
	if err != nil {
		return c.Status(constant.GetErrorCode(err)).JSON(service.Error(err))
	}

	return c.JSON(service.OK(newRenderResponse(result)))
}

// RenderSpreadsheet Markdown生成电子表格
func (h *RenderHandler) RenderSpreadsheet(c *fiber.Ctx) error {
	app := middleware.AppFromContext(c)
	if app == nil {
		return c.Status(fiber.StatusUnauthorized).JSON(service.Error(constant.ErrUnauthorized))
	}

	var req renderRequest
	if err := c.BodyParser(&req); err != nil {
		logger.Error("请求参数解析失败", logger.F("err", err))
		return c.Status(fiber.StatusBadRequest).JSON(service.Error(constant.ErrInvalidParams))
	}
	if req.Markdown == "" {
		return c.Status(fiber.StatusBadRequest).JSON(service.Error(constant.ErrInvalidParams))
	}
	if req.Name == "" {
		req.Name = "未命名表格"
	}

	start := time.Now()
	result, err := h.documentService.RenderSpreadsheet(c.Context(), app, req.Name, req.Markdown, req.SendTo)
	h.record(c, app, constant.LogActionRenderSpreadsheet, result, start, err)
	if err != nil {
		return c.Status(constant.GetErrorCode(err)).JSON(service.Error(err))
	}

	return c.JSON(service.OK(newRenderResponse(result)))
}

// SpliceTemplate DOCX模板占位符拼接。
// JSON请求引用模板库中的模板ID，multipart请求随请求上传模板文件
func (h *RenderHandler) SpliceTemplate(c *fiber.Ctx) error {
	app := middleware.AppFromContext(c)
	if app == nil {
		return c.Status(fiber.StatusUnauthorized).JSON(service.Error(constant.ErrUnauthorized))
	}

	if strings.HasPrefix(c.Get(fiber.HeaderContentType), fiber.MIMEMultipartForm) {
		return h.spliceUploaded(c, app)
	}

	var req spliceRequest
	if err := c.BodyParser(&req); err != nil {
		logger.Error("请求参数解析失败", logger.F("err", err))
		return c.Status(fiber.StatusBadRequest).JSON(service.Error(constant.ErrInvalidParams))
	}
	if req.TemplateID == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(service.Error(constant.ErrInvalidParams))
	}

	start := time.Now()
	result, err := h.documentService.SpliceTemplate(c.Context(), app, req.TemplateID, req.Name, req.Values, req.SendTo)
	h.record(c, app, constant.LogActionSpliceTemplate, result, start, err)
	if err != nil {
		return c.Status(constant.GetErrorCode(err)).JSON(service.Error(err))
	}

	return c.JSON(service.OK(newRenderResponse(result)))
}

// spliceUploaded 处理随请求上传模板的multipart拼接
func (h *RenderHandler) spliceUploaded(c *fiber.Ctx, app *model.Application) error {
	form, err := c.MultipartForm()
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(service.Error(constant.ErrInvalidParams))
	}

	files := form.File["template"]
	if len(files) == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(service.Error(constant.ErrInvalidParams))
	}
	f, err := files[0].Open()
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(service.Error(constant.ErrInvalidParams))
	}
	defer f.Close()
	template, err := io.ReadAll(f)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(service.Error(constant.ErrInvalidParams))
	}

	values := map[string]string{}
	if vs := form.Value["values"]; len(vs) > 0 && vs[0] != "" {
		if err := json.Unmarshal([]byte(vs[0]), &values); err != nil {
			logger.Error("解析values参数失败", logger.F("err", err))
			return c.Status(fiber.StatusBadRequest).JSON(service.Error(constant.ErrInvalidParams))
		}
	}

	name := files[0].Filename
	if nv := form.Value["name"]; len(nv) > 0 && nv[0] != "" {
		name = nv[0]
	}
	var sendTo []string
	if sv := form.Value["sendTo"]; len(sv) > 0 && sv[0] != "" {
		sendTo = strings.Split(sv[0], ",")
	}

	start := time.Now()
	result, err := h.documentService.SpliceTemplateData(c.Context(), app, name, template, values, sendTo)
	h.record(c, app, constant.LogActionSpliceTemplate, result, start, err)
	if err != nil {
		return c.Status(constant.GetErrorCode(err)).JSON(service.Error(err))
	}

	return c.JSON(service.OK(newRenderResponse(result)))
}

type previewRequest struct {
	Markdown string `json:"markdown"`
}

// Preview Markdown转HTML预览
func (h *RenderHandler) Preview(c *fiber.Ctx) error {
	app := middleware.AppFromContext(c)
	if app == nil {
		return c.Status(fiber.StatusUnauthorized).JSON(service.Error(constant.ErrUnauthorized))
	}

	var req previewRequest
	if err := c.BodyParser(&req); err != nil {
		logger.Error("请求参数解析失败", logger.F("err", err))
		return c.Status(fiber.StatusBadRequest).JSON(service.Error(constant.ErrInvalidParams))
	}
	if req.Markdown == "" {
		return c.Status(fiber.StatusBadRequest).JSON(service.Error(constant.ErrInvalidParams))
	}

	start := time.Now()
	html, err := h.documentService.PreviewHTML(c.Context(), req.Markdown)
	h.record(c, app, constant.LogActionPreviewHTML, nil, start, err)
	if err != nil {
		return c.Status(constant.GetErrorCode(err)).JSON(service.Error(err))
	}

	return c.JSON(service.OK(fiber.Map{"html": html}))
}

// record 记录渲染类接口的调用日志
func (h *RenderHandler) record(c *fiber.Ctx, app *model.Application, action int, result *service.RenderResult, start time.Time, err error) {
	log := &model.UsageLog{
		ApplicationID: app.ID,
		Action:        action,
		Duration:      time.Since(start).Milliseconds(),
		IP:            c.IP(),
		UserAgent:     c.Get("User-Agent"),
		Failed:        err != nil,
	}
	if result != nil && result.Document != nil {
		log.TraceID = result.Document.TraceID
		log.DocumentID = result.Document.ID
	}
	go h.usageLogService.Record(c.Context(), log)
}
