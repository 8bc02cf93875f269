package service

import (
	"context"
	"net/http"

	"github.com/yockii/office_tools/internal/constant"
	"github.com/yockii/office_tools/internal/model"
)

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

type ApplicationService interface {
	Create(ctx context.Context, record *model.Application) error
	Update(ctx context.Context, record *model.Application) error
	Delete(ctx context.Context, id uint64) error
	Get(ctx context.Context, id uint64) (*model.Application, error)
	List(ctx context.Context, condition *model.Application, offset, limit int) ([]*model.Application, int64, error)

	GetByApiKey(ctx context.Context, apiKey string) (*model.Application, error)
}

type AuthService interface {
	// IssueToken 凭应用Key/Secret换取访问token
	IssueToken(ctx context.Context, apiKey, apiSecret string) (uint64, string, error)
	Refresh(ctx context.Context, token string) (string, error)
	Revoke(ctx context.Context, token string) error
	Verify(ctx context.Context, token string) (*model.Application, error)
}

type SessionService interface {
	// CacheApplication 缓存应用信息
	CacheApplication(ctx context.Context, app *model.Application) error
	// GetCachedApplication 获取缓存的应用信息
	GetCachedApplication(ctx context.Context, apiKey string) (*model.Application, error)
	// RemoveCachedApplication 移除应用缓存
	RemoveCachedApplication(ctx context.Context, apiKey string) error
	// BlockToken 将token加入黑名单
	BlockToken(ctx context.Context, token string) error
	// IsTokenBlocked 检查token是否在黑名单中
	IsTokenBlocked(ctx context.Context, token string) bool
	// IncrRequestCount 记录应用在当前窗口内的请求次数
	IncrRequestCount(ctx context.Context, apiKey string) (int64, error)
}

// RenderResult 一次文档生成的结果
type RenderResult struct {
	Document   *model.Document
	Data       []byte
	Notices    []string
	CellErrors []string
}

type DocumentService interface {
	Get(ctx context.Context, id uint64) (*model.Document, error)
	List(ctx context.Context, condition *model.Document, offset, limit int) ([]*model.Document, int64, error)
	Delete(ctx context.Context, id uint64) error

	// RenderWord Markdown渲染为DOCX
	RenderWord(ctx context.Context, app *model.Application, name, markdown string, sendTo []string) (*RenderResult, error)
	// RenderSpreadsheet Markdown渲染为XLSX
	RenderSpreadsheet(ctx context.Context, app *model.Application, name, markdown string, sendTo []string) (*RenderResult, error)
	// SpliceTemplate 用模板库中的模板做占位符替换生成DOCX
	SpliceTemplate(ctx context.Context, app *model.Application, templateID uint64, name string, values map[string]string, sendTo []string) (*RenderResult, error)
	// SpliceTemplateData 用随请求上传的模板做占位符替换生成DOCX
	SpliceTemplateData(ctx context.Context, app *model.Application, name string, template []byte, values map[string]string, sendTo []string) (*RenderResult, error)
	// PreviewHTML Markdown转HTML预览
	PreviewHTML(ctx context.Context, markdown string) (string, error)
	// Download 读取已生成的文档内容
	Download(ctx context.Context, app *model.Application, id uint64) (*model.Document, []byte, error)
}

type TemplateService interface {
	Get(ctx context.Context, id uint64) (*model.Template, error)
	List(ctx context.Context, condition *model.Template, offset, limit int) ([]*model.Template, int64, error)

	// Upload 校验并保存DOCX模板
	Upload(ctx context.Context, app *model.Application, name, description string, data []byte) (*model.Template, error)
	// Remove 删除模板及其存储对象
	Remove(ctx context.Context, app *model.Application, id uint64) error
	// Load 读取模板内容
	Load(ctx context.Context, app *model.Application, id uint64) (*model.Template, []byte, error)
}

type UsageLogService interface {
	List(ctx context.Context, condition *model.UsageLog, offset, limit int) ([]*model.UsageLog, int64, error)
	// Record 记录一次调用，失败只写日志不阻断业务
	Record(ctx context.Context, log *model.UsageLog)
}

type MailService interface {
	// SendDocumentNotice 文档生成完成后发送带附件的通知邮件
	SendDocumentNotice(ctx context.Context, to string, doc *model.Document, data []byte) error
}

// /////////////////////////////
// Response 通用响应结构
type Response struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data"`
}

func OK(data interface{}) *Response {
	return NewResponse(data, nil)
}

func Error(err error) *Response {
	return NewResponse(nil, err)
}

// NewResponse 创建响应
func NewResponse(data interface{}, err error) *Response {
	if err == nil {
		return &Response{
			Code:    http.StatusOK,
			Message: "success",
			Data:    data,
		}
	}

	code := constant.GetErrorCode(err)
	return &Response{
		Code:    code,
		Message: err.Error(),
		Data:    data,
	}
}

// ListResponse 列表响应结构
type ListResponse struct {
	Total  int64       `json:"total"`
	Items  interface{} `json:"items"`
	Offset int         `json:"offset"`
	Limit  int         `json:"limit"`
}

// NewListResponse 创建列表响应
func NewListResponse(items interface{}, total int64, offset, limit int) *ListResponse {
	return &ListResponse{
		Total:  total,
		Items:  items,
		Offset: offset,
		Limit:  limit,
	}
}
