package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/yockii/office_tools/internal/constant"
	"github.com/yockii/office_tools/internal/model"
	"github.com/yockii/office_tools/internal/service"
	"github.com/yockii/office_tools/pkg/logger"
)

// NewAppMiddleware 应用鉴权。Authorization Bearer内容
// 优先按JWT解析，失败则按原始api_key处理
func NewAppMiddleware(
	authService service.AuthService,
	applicationService service.ApplicationService,
	sessionService service.SessionService,
) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authorization := c.Get("Authorization")
		token := strings.TrimPrefix(authorization, "Bearer ")

		if token == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(service.Error(constant.ErrUnauthorized))
		}

		application, err := authService.Verify(c.Context(), token)
		if err != nil {
			// 非JWT时按api_key查找应用
			application, err = applicationService.GetByApiKey(c.Context(), token)
			if err != nil {
				return c.Status(fiber.StatusUnauthorized).JSON(service.Error(constant.ErrUnauthorized))
			}
		}
		if application == nil || application.Status != 1 {
			return c.Status(fiber.StatusUnauthorized).JSON(service.Error(constant.ErrUnauthorized))
		}

		// 按应用配置限流
		if application.RateLimitInMinute > 0 && sessionService != nil {
			count, err := sessionService.IncrRequestCount(c.Context(), application.APIKey)
			if err == nil && count > int64(application.RateLimitInMinute) {
				logger.Warn("rate limit exceeded",
					logger.F("apiKey", application.APIKey),
					logger.F("path", c.Path()),
				)
				return c.Status(fiber.StatusTooManyRequests).JSON(service.Error(constant.ErrInvalidOperation))
			}
		}

		// 将应用信息存入上下文
		c.Locals("application", application)

		return c.Next()
	}
}

// AppFromContext 取出鉴权中间件写入的应用信息
func AppFromContext(c *fiber.Ctx) *model.Application {
	app, _ := c.Locals("application").(*model.Application)
	return app
}
