package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/rs/xid"
	"gorm.io/gorm"

	"github.com/yockii/office_tools/internal/constant"
	"github.com/yockii/office_tools/internal/model"
	"github.com/yockii/office_tools/internal/storage"
	"github.com/yockii/office_tools/pkg/docgen"
	"github.com/yockii/office_tools/pkg/doctpl"
	"github.com/yockii/office_tools/pkg/logger"
	"github.com/yockii/office_tools/pkg/sheetgen"
	"github.com/yockii/office_tools/pkg/util"
)

type documentService struct {
	*BaseServiceImpl[*model.Document]
	templateService TemplateService
	mailService     MailService
	wordGenerator   *docgen.DocGenerator
	sheetGenerator  *sheetgen.Generator
	splicer         *doctpl.Splicer
	htmlConverter   *docgen.HtmlConverter
}

func NewDocumentService(templateService TemplateService, mailService MailService) *documentService {
	srv := new(documentService)
	srv.BaseServiceImpl = NewBaseService(BaseServiceConfig[*model.Document]{
		NewModel:       srv.NewModel,
		BuildCondition: srv.BuildCondition,
		DeleteHook:     srv.removeObject,
	})
	srv.templateService = templateService
	srv.mailService = mailService
	srv.wordGenerator = docgen.NewDocGenerator()
	srv.sheetGenerator = sheetgen.NewGenerator()
	srv.splicer = doctpl.NewSplicer()
	srv.htmlConverter = docgen.NewHtmlConverter()
	return srv
}

func (s *documentService) NewModel() *model.Document {
	return &model.Document{}
}

func (s *documentService) BuildCondition(query *gorm.DB, condition *model.Document) *gorm.DB {
	if condition.ApplicationID != 0 {
		query = query.Where("application_id = ?", condition.ApplicationID)
	}
	if condition.Kind != "" {
		query = query.Where("kind = ?", condition.Kind)
	}
	if condition.Name != "" {
		query = query.Where("name LIKE ?", "%"+condition.Name+"%")
	}
	if condition.TraceID != "" {
		query = query.Where("trace_id = ?", condition.TraceID)
	}
	if condition.Status != 0 {
		query = query.Where("status = ?", condition.Status)
	}
	return query
}

func (s *documentService) removeObject(ctx context.Context, record *model.Document) {
	if err := storage.Get().Delete(record.ObjectName); err != nil {
		logger.Warn("删除文档对象失败", logger.F("objectName", record.ObjectName), logger.F("error", err))
	}
}

// RenderWord implements DocumentService.
func (s *documentService) RenderWord(ctx context.Context, app *model.Application, name, markdown string, sendTo []string) (*RenderResult, error) {
	result, err := s.wordGenerator.RenderString(markdown)
	if err != nil {
		logger.Error("渲染Word文档失败", logger.F("error", err))
		return nil, constant.ErrRenderFailed
	}

	var notices []string
	for _, n := range result.ParseNotices {
		notices = append(notices, fmt.Sprintf("第%d行: %s", n.Line, n.Detail))
	}
	for _, style := range result.UnresolvedStyles {
		notices = append(notices, "未定义样式: "+style)
	}

	doc, err := s.saveDocument(ctx, app, model.DocumentKindWord, name, ".docx", result.Docx, notices, nil, sendTo)
	if err != nil {
		return nil, err
	}
	return &RenderResult{Document: doc, Data: result.Docx, Notices: notices}, nil
}

// RenderSpreadsheet implements DocumentService.
func (s *documentService) RenderSpreadsheet(ctx context.Context, app *model.Application, name, markdown string, sendTo []string) (*RenderResult, error) {
	result, err := s.sheetGenerator.RenderString(markdown)
	if err != nil {
		logger.Error("渲染电子表格失败", logger.F("error", err))
		return nil, constant.ErrRenderFailed
	}

	var notices []string
	for _, n := range result.Notices {
		notices = append(notices, fmt.Sprintf("第%d行: %s", n.Line, n.Detail))
	}
	var cellErrors []string
	for _, ce := range result.CellErrors {
		cellErrors = append(cellErrors, ce.Cell+": "+ce.Detail.Error())
	}

	doc, err := s.saveDocument(ctx, app, model.DocumentKindSpreadsheet, name, ".xlsx", result.Xlsx, notices, cellErrors, sendTo)
	if err != nil {
		return nil, err
	}
	return &RenderResult{Document: doc, Data: result.Xlsx, Notices: notices, CellErrors: cellErrors}, nil
}

// SpliceTemplate implements DocumentService.
func (s *documentService) SpliceTemplate(ctx context.Context, app *model.Application, templateID uint64, name string, values map[string]string, sendTo []string) (*RenderResult, error) {
	tpl, data, err := s.templateService.Load(ctx, app, templateID)
	if err != nil {
		return nil, err
	}
	if name == "" {
		name = tpl.Name
	}
	return s.SpliceTemplateData(ctx, app, name, data, values, sendTo)
}

// SpliceTemplateData implements DocumentService.
func (s *documentService) SpliceTemplateData(ctx context.Context, app *model.Application, name string, template []byte, values map[string]string, sendTo []string) (*RenderResult, error) {
	result, err := s.splicer.Splice(template, values)
	if err != nil {
		if errors.Is(err, doctpl.ErrMalformedTemplate) {
			return nil, constant.ErrTemplateInvalid
		}
		logger.Error("模板拼接失败", logger.F("error", err))
		return nil, constant.ErrRenderFailed
	}

	if name == "" {
		name = "未命名文档"
	}

	var notices []string
	for _, key := range result.UnresolvedKeys {
		notices = append(notices, "未提供的占位符: "+key)
	}
	for _, style := range result.UnresolvedStyles {
		notices = append(notices, "未定义样式: "+style)
	}

	doc, err := s.saveDocument(ctx, app, model.DocumentKindTemplate, name, ".docx", result.Docx, notices, nil, sendTo)
	if err != nil {
		return nil, err
	}
	return &RenderResult{Document: doc, Data: result.Docx, Notices: notices}, nil
}

// PreviewHTML implements DocumentService.
func (s *documentService) PreviewHTML(ctx context.Context, markdown string) (string, error) {
	html, err := s.htmlConverter.ConvertMarkdownToHTML([]byte(markdown))
	if err != nil {
		logger.Error("Markdown转HTML失败", logger.F("error", err))
		return "", constant.ErrRenderFailed
	}
	return html, nil
}

// Download implements DocumentService.
func (s *documentService) Download(ctx context.Context, app *model.Application, id uint64) (*model.Document, []byte, error) {
	doc, err := s.Get(ctx, id)
	if err != nil {
		if errors.Is(err, constant.ErrRecordNotFound) {
			return nil, nil, constant.ErrDocumentNotFound
		}
		return nil, nil, err
	}
	if doc.ApplicationID != app.ID {
		return nil, nil, constant.ErrPermissionDenied
	}

	data, err := storage.Get().Load(doc.ObjectName)
	if err != nil {
		logger.Error("读取文档对象失败", logger.F("objectName", doc.ObjectName), logger.F("error", err))
		return nil, nil, constant.ErrStorageError
	}
	return doc, data, nil
}

// saveDocument 落盘并入库，按需异步发送通知邮件
func (s *documentService) saveDocument(ctx context.Context, app *model.Application, kind, name, ext string, data []byte, notices, cellErrors, sendTo []string) (*model.Document, error) {
	objectName := util.GenerateObjectName(ext)
	if err := storage.Get().Save(objectName, data); err != nil {
		logger.Error("保存文档对象失败", logger.F("objectName", objectName), logger.F("error", err))
		return nil, constant.ErrStorageError
	}

	doc := &model.Document{
		ApplicationID: app.ID,
		TraceID:       xid.New().String(),
		Kind:          kind,
		Name:          name,
		ObjectName:    objectName,
		Size:          int64(len(data)),
		Status:        model.DocumentStatusOK,
		Notices:       marshalStrings(notices),
		CellErrors:    marshalStrings(cellErrors),
	}
	if err := s.Create(ctx, doc); err != nil {
		return nil, err
	}

	// 收件人：请求指定的send_to优先，否则用应用配置的通知邮箱
	recipients := sendTo
	if len(recipients) == 0 && app.NotifyEmail != "" {
		recipients = []string{app.NotifyEmail}
	}
	if s.mailService != nil && len(recipients) > 0 {
		go func() {
			for _, to := range recipients {
				if err := s.mailService.SendDocumentNotice(context.Background(), to, doc, data); err != nil {
					logger.Warn("发送文档通知邮件失败", logger.F("documentId", doc.ID), logger.F("to", to), logger.F("error", err))
				}
			}
		}()
	}

	return doc, nil
}

func marshalStrings(values []string) string {
	if len(values) == 0 {
		return ""
	}
	data, err := json.Marshal(values)
	if err != nil {
		return ""
	}
	return string(data)
}
