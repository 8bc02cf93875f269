package service

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"gopkg.in/gomail.v2"

	"github.com/yockii/office_tools/internal/constant"
	"github.com/yockii/office_tools/internal/model"
	"github.com/yockii/office_tools/pkg/config"
	"github.com/yockii/office_tools/pkg/docgen"
	"github.com/yockii/office_tools/pkg/logger"
)

type mailService struct {
	dialer        *gomail.Dialer
	from          string
	htmlConverter *docgen.HtmlConverter
}

// NewMailService 按配置创建邮件服务，未启用时返回nil
func NewMailService() MailService {
	if !config.GetBool("mail.enabled") {
		return nil
	}
	return &mailService{
		dialer: gomail.NewDialer(
			config.GetString("mail.host"),
			config.GetInt("mail.port"),
			config.GetString("mail.username"),
			config.GetString("mail.password"),
		),
		from:          config.GetString("mail.from"),
		htmlConverter: docgen.NewHtmlConverter(),
	}
}

// SendDocumentNotice implements MailService.
func (s *mailService) SendDocumentNotice(ctx context.Context, to string, doc *model.Document, data []byte) error {
	kindName := "Word文档"
	switch doc.Kind {
	case model.DocumentKindSpreadsheet:
		kindName = "电子表格"
	case model.DocumentKindTemplate:
		kindName = "模板文档"
	}

	body := fmt.Sprintf("## 文档已生成\n\n- 名称：%s\n- 类型：%s\n- 大小：%d 字节\n\n文档见附件。",
		doc.Name, kindName, doc.Size)
	html, err := s.htmlConverter.ConvertMarkdownToHTML([]byte(body))
	if err != nil {
		html = "<p>" + doc.Name + " 已生成，见附件。</p>"
	}

	ext := ".docx"
	if doc.Kind == model.DocumentKindSpreadsheet {
		ext = ".xlsx"
	}

	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", to)
	m.SetHeader("Subject", fmt.Sprintf("文档生成完成：%s", doc.Name))
	m.SetBody("text/html", html)
	m.Attach(doc.Name+ext, gomail.SetCopyFunc(func(w io.Writer) error {
		_, err := io.Copy(w, bytes.NewReader(data))
		return err
	}))

	if err := s.dialer.DialAndSend(m); err != nil {
		logger.Error("发送邮件失败", logger.F("to", to), logger.F("error", err))
		return constant.ErrInternalError
	}
	return nil
}
