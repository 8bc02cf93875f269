package toolapi

import (
	"github.com/gofiber/fiber/v2"

	"github.com/yockii/office_tools/internal/constant"
	"github.com/yockii/office_tools/internal/service"
	"github.com/yockii/office_tools/pkg/logger"
)

// PublicHandlers 不经应用鉴权的处理器
var PublicHandlers []Handler

type AuthHandler struct {
	authService service.AuthService
}

func RegisterAuthHandler(authService service.AuthService) {
	handler := &AuthHandler{authService: authService}
	PublicHandlers = append(PublicHandlers, handler)
}

func (h *AuthHandler) RegisterRoutes(router fiber.Router) {
	auth := router.Group("/auth")
	{
		auth.Post("/token", h.IssueToken)
		auth.Post("/refresh", h.Refresh)
		auth.Post("/revoke", h.Revoke)
	}
}

type tokenRequest struct {
	APIKey    string `json:"apiKey"`
	APISecret string `json:"apiSecret"`
}

type refreshRequest struct {
	Token string `json:"token"`
}

// IssueToken 凭应用Key/Secret换取访问token
func (h *AuthHandler) IssueToken(c *fiber.Ctx) error {
	var req tokenRequest
	if err := c.BodyParser(&req); err != nil {
		logger.Error("请求参数解析失败", logger.F("err", err))
		return c.Status(fiber.StatusBadRequest).JSON(service.Error(constant.ErrInvalidParams))
	}
	if req.APIKey == "" || req.APISecret == "" {
		return c.Status(fiber.StatusBadRequest).JSON(service.Error(constant.ErrInvalidParams))
	}

	appID, token, err := h.authService.IssueToken(c.Context(), req.APIKey, req.APISecret)
	if err != nil {
		return c.Status(constant.GetErrorCode(err)).JSON(service.Error(err))
	}

	return c.JSON(service.OK(fiber.Map{
		"appId": appID,
		"token": token,
	}))
}

// Refresh 刷新token
func (h *AuthHandler) Refresh(c *fiber.Ctx) error {
	var req refreshRequest
	if err := c.BodyParser(&req); err != nil {
		logger.Error("请求参数解析失败", logger.F("err", err))
		return c.Status(fiber.StatusBadRequest).JSON(service.Error(constant.ErrInvalidParams))
	}
	if req.Token == "" {
		return c.Status(fiber.StatusBadRequest).JSON(service.Error(constant.ErrInvalidParams))
	}

	token, err := h.authService.Refresh(c.Context(), req.Token)
	if err != nil {
		return c.Status(constant.GetErrorCode(err)).JSON(service.Error(err))
	}

	return c.JSON(service.OK(fiber.Map{"token": token}))
}

// Revoke 吊销token
func (h *AuthHandler) Revoke(c *fiber.Ctx) error {
	var req refreshRequest
	if err := c.BodyParser(&req); err != nil {
		logger.Error("请求参数解析失败", logger.F("err", err))
		return c.Status(fiber.StatusBadRequest).JSON(service.Error(constant.ErrInvalidParams))
	}
	if req.Token == "" {
		return c.Status(fiber.StatusBadRequest).JSON(service.Error(constant.ErrInvalidParams))
	}

	if err := h.authService.Revoke(c.Context(), req.Token); err != nil {
		return c.Status(constant.GetErrorCode(err)).JSON(service.Error(err))
	}

	return c.JSON(service.OK(true))
}
