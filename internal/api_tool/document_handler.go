package toolapi

import (
	"net/url"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/yockii/office_tools/internal/constant"
	"github.com/yockii/office_tools/internal/middleware"
	"github.com/yockii/office_tools/internal/model"
	"github.com/yockii/office_tools/internal/service"
	"github.com/yockii/office_tools/pkg/logger"
)

const (
	contentTypeDocx = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	contentTypeXlsx = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

type DocumentHandler struct {
	documentService service.DocumentService
	usageLogService service.UsageLogService
}

func RegisterDocumentHandler(
	documentService service.DocumentService,
	usageLogService service.UsageLogService,
) {
	handler := &DocumentHandler{
		documentService: documentService,
		usageLogService: usageLogService,
	}
	Handlers = append(Handlers, handler)
}

func (h *DocumentHandler) RegisterRoutes(router fiber.Router) {
	documents := router.Group("/documents")
	{
		documents.Get("/", h.ListDocuments)
		documents.Get("/:id/download", h.DownloadDocument)
		documents.Post("/delete", h.DeleteDocument)
	}
}

// ListDocuments 查询本应用的文档列表
func (h *DocumentHandler) ListDocuments(c *fiber.Ctx) error {
	app := middleware.AppFromContext(c)
	if app == nil {
		return c.Status(fiber.StatusUnauthorized).JSON(service.Error(constant.ErrUnauthorized))
	}

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
	condition.ApplicationID = app.ID

	documents, total, err := h.documentService.List(c.Context(), &condition, offset, limit)
	if err != nil {
		return c.Status(constant.GetErrorCode(err)).JSON(service.Error(err))
	}

	return c.JSON(service.OK(service.NewListResponse(documents, total, offset, limit)))
}

// DownloadDocument 下载文档内容
func (h *DocumentHandler) DownloadDocument(c *fiber.Ctx) error {
	app := middleware.AppFromContext(c)
	if app == nil {
		return c.Status(fiber.StatusUnauthorized).JSON(service.Error(constant.ErrUnauthorized))
	}

	id, err := strconv.ParseUint(c.Params("id"), 10, 64)
	if err != nil {
		logger.Error("请求参数解析失败", logger.F("err", err))
		return c.Status(fiber.StatusBadRequest).JSON(service.Error(constant.ErrInvalidParams))
	}

	doc, data, err := h.documentService.Download(c.Context(), app, id)
	if err != nil {
		go h.usageLogService.Record(c.Context(), &model.UsageLog{
			ApplicationID: app.ID,
			Action:        constant.LogActionDownloadDocument,
			DocumentID:    id,
			IP:            c.IP(),
			UserAgent:     c.Get("User-Agent"),
			Failed:        true,
		})
		return c.Status(constant.GetErrorCode(err)).JSON(service.Error(err))
	}

	go h.usageLogService.Record(c.Context(), &model.UsageLog{
		ApplicationID: app.ID,
		Action:        constant.LogActionDownloadDocument,
		TraceID:       doc.TraceID,
		DocumentID:    doc.ID,
		IP:            c.IP(),
		UserAgent:     c.Get("User-Agent"),
	})

	fileName := doc.Name
	contentType := contentTypeDocx
	ext := ".docx"
	if doc.Kind == model.DocumentKindSpreadsheet {
		contentType = contentTypeXlsx
		ext = ".xlsx"
	}

	c.Set(fiber.HeaderContentType, contentType)
	c.Set(fiber.HeaderContentDisposition,
		`attachment; filename*=UTF-8''`+url.PathEscape(fileName+ext))
	return c.Send(data)
}

// DeleteDocument 删除文档及其存储对象
func (h *DocumentHandler) DeleteDocument(c *fiber.Ctx) error {
	app := middleware.AppFromContext(c)
	if app == nil {
		return c.Status(fiber.StatusUnauthorized).JSON(service.Error(constant.ErrUnauthorized))
	}

	var document model.Document
	if err := c.BodyParser(&document); err != nil {
		logger.Error("请求参数解析失败", logger.F("err", err))
		return c.Status(fiber.StatusBadRequest).JSON(service.Error(constant.ErrInvalidParams))
	}
	if document.ID == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(service.Error(constant.ErrInvalidParams))
	}

	doc, err := h.documentService.Get(c.Context(), document.ID)
	if err != nil {
		return c.Status(constant.GetErrorCode(err)).JSON(service.Error(err))
	}
	if doc.ApplicationID != app.ID {
		return c.Status(fiber.StatusForbidden).JSON(service.Error(constant.ErrPermissionDenied))
	}

	if err := h.documentService.Delete(c.Context(), doc.ID); err != nil {
		return c.Status(constant.GetErrorCode(err)).JSON(service.Error(err))
	}

	return c.JSON(service.OK(true))
}
