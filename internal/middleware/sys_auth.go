package middleware

import (
	"crypto/subtle"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/yockii/office_tools/internal/constant"
	"github.com/yockii/office_tools/internal/service"
	"github.com/yockii/office_tools/pkg/config"
	"github.com/yockii/office_tools/pkg/logger"
)

// NewSysMiddleware 管理接口鉴权，校验X-Admin-Key请求头。
// 未配置admin.key时管理接口全部拒绝
func NewSysMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		adminKey := config.GetString("admin.key")
		if adminKey == "" {
			return c.Status(fiber.StatusForbidden).JSON(service.Error(constant.ErrForbidden))
		}

		provided := c.Get("X-Admin-Key")
		if subtle.ConstantTimeCompare([]byte(provided), []byte(adminKey)) != 1 {
			return c.Status(fiber.StatusUnauthorized).JSON(service.Error(constant.ErrUnauthorized))
		}

		return c.Next()
	}
}

// Recovery 错误恢复中间件
func Recovery() fiber.Handler {
	return func(c *fiber.Ctx) error {
		defer func() {
			if r := recover(); r != nil {
				logger.Error("panic recovered",
					logger.F("error", r),
					logger.F("path", c.Path()),
					logger.F("method", c.Method()),
				)

				err, ok := r.(error)
				if !ok {
					err = fiber.ErrInternalServerError
				}

				c.Status(fiber.StatusInternalServerError).JSON(service.NewResponse(nil, err))
			}
		}()

		return c.Next()
	}
}

// RequestLogger 请求日志中间件
func RequestLogger() fiber.Handler {
	return func(c *fiber.Ctx) error {
		// 记录请求开始时间
		start := time.Now()

		// 处理请求
		err := c.Next()

		// 记录请求日志
		logger.Info("request completed",
			logger.F("method", c.Method()),
			logger.F("path", c.Path()),
			logger.F("status", c.Response().StatusCode()),
			logger.F("duration", time.Since(start)),
			logger.F("ip", c.IP()),
			logger.F("user-agent", c.Get("User-Agent")),
		)

		return err
	}
}
