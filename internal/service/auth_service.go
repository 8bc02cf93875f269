package service

import (
	"context"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/yockii/office_tools/internal/constant"
	"github.com/yockii/office_tools/internal/model"
	"github.com/yockii/office_tools/pkg/config"
)

type Claims struct {
	AppID  uint64 `json:"aid"`
	APIKey string `json:"key"`
	jwt.RegisteredClaims
}

type authService struct {
	applicationService ApplicationService
	sessionService     SessionService
	secret             []byte
	expire             time.Duration
}

func NewAuthService(
	applicationService ApplicationService,
	sessionService SessionService,
) AuthService {
	return &authService{
		applicationService: applicationService,
		sessionService:     sessionService,
		secret:             config.GetJWTSecret(),
		expire:             time.Duration(config.GetInt("jwt.expire")) * time.Second,
	}
}

// IssueToken implements AuthService.
func (s *authService) IssueToken(ctx context.Context, apiKey, apiSecret string) (uint64, string, error) {
	app, err := s.applicationService.GetByApiKey(ctx, apiKey)
	if err != nil {
		return 0, "", constant.ErrInvalidCredential
	}
	if app.Status != 1 {
		return 0, "", constant.ErrForbidden
	}
	if !app.CompareSecret(apiSecret) {
		return 0, "", constant.ErrInvalidCredential
	}

	signedToken, err := s.sign(app)
	if err != nil {
		return 0, "", err
	}

	// 缓存应用信息，供后续鉴权直接命中
	if s.sessionService != nil {
		_ = s.sessionService.CacheApplication(ctx, app)
	}

	return app.ID, signedToken, nil
}

func (s *authService) Verify(ctx context.Context, tokenString string) (*model.Application, error) {
	// 检查token是否在黑名单中
	if s.sessionService != nil && s.sessionService.IsTokenBlocked(ctx, tokenString) {
		return nil, constant.ErrInvalidToken
	}

	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, constant.ErrInvalidToken
		}
		return s.secret, nil
	})
	if err != nil {
		return nil, constant.ErrInvalidToken
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, constant.ErrInvalidToken
	}

	app, err := s.applicationService.GetByApiKey(ctx, claims.APIKey)
	if err != nil {
		return nil, constant.ErrInvalidToken
	}
	if app.Status != 1 {
		return nil, constant.ErrForbidden
	}

	return app, nil
}

func (s *authService) Refresh(ctx context.Context, tokenString string) (string, error) {
	app, err := s.Verify(ctx, tokenString)
	if err != nil {
		return "", err
	}
	return s.sign(app)
}

func (s *authService) Revoke(ctx context.Context, tokenString string) error {
	if _, err := s.Verify(ctx, tokenString); err != nil {
		return err
	}

	if s.sessionService != nil {
		if err := s.sessionService.BlockToken(ctx, tokenString); err != nil {
			return err
		}
	}
	return nil
}

func (s *authService) sign(app *model.Application) (string, error) {
	claims := Claims{
		AppID:  app.ID,
		APIKey: app.APIKey,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(s.expire)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signedToken, err := token.SignedString(s.secret)
	if err != nil {
		return "", constant.ErrInternalError
	}
	return signedToken, nil
}
