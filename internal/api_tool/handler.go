package toolapi

import "github.com/gofiber/fiber/v2"

var Handlers []Handler

type Handler interface {
	RegisterRoutes(router fiber.Router)
}

/*
对应用的接口，应用可以调用这些接口实现：
1、Markdown生成Word文档
2、Markdown生成电子表格
3、DOCX模板占位符拼接
4、Markdown转HTML预览
5、模板管理与文档下载
*/
