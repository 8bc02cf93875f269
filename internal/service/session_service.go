package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/yockii/office_tools/internal/constant"
	"github.com/yockii/office_tools/internal/model"
	"github.com/yockii/office_tools/pkg/config"
	"github.com/yockii/office_tools/pkg/logger"
)

const (
	// key前缀
	appPrefix     = "app:"
	tokenPrefix   = "token:"
	counterPrefix = "reqcount:"

	// 过期时间
	appExpire     = time.Hour   // 应用信息缓存有效期
	counterWindow = time.Minute // 限流计数窗口
)

type sessionService struct {
	rdb         *redis.Client
	tokenExpire time.Duration
}

func NewSessionService() SessionService {
	return &sessionService{
		rdb: redis.NewClient(&redis.Options{
			Addr:         config.GetString("redis.addr"),
			Password:     config.GetString("redis.password"),
			DB:           config.GetInt("redis.db"),
			ReadTimeout:  3 * time.Second,
			WriteTimeout: 3 * time.Second,
		}),
		tokenExpire: time.Duration(config.GetInt64("jwt.expire")) * time.Second,
	}
}

func (s *sessionService) CacheApplication(ctx context.Context, app *model.Application) error {
	data, err := json.Marshal(app)
	if err != nil {
		logger.Error("序列化应用信息失败", logger.F("error", err))
		return constant.ErrSerializeError
	}

	key := appPrefix + app.APIKey
	if err := s.rdb.Set(ctx, key, data, appExpire).Err(); err != nil {
		logger.Error("存储应用缓存失败", logger.F("error", err))
		return constant.ErrCacheError
	}
	return nil
}

func (s *sessionService) GetCachedApplication(ctx context.Context, apiKey string) (*model.Application, error) {
	key := appPrefix + apiKey
	data, err := s.rdb.Get(ctx, key).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, constant.ErrRecordNotFound
		}
		logger.Error("获取应用缓存失败", logger.F("error", err))
		return nil, constant.ErrCacheError
	}

	var app model.Application
	if err := json.Unmarshal(data, &app); err != nil {
		logger.Error("反序列化应用信息失败", logger.F("error", err))
		return nil, constant.ErrDeserializeError
	}

	return &app, nil
}

func (s *sessionService) RemoveCachedApplication(ctx context.Context, apiKey string) error {
	key := appPrefix + apiKey
	if err := s.rdb.Del(ctx, key).Err(); err != nil {
		logger.Error("删除应用缓存失败", logger.F("error", err))
		return constant.ErrCacheError
	}
	return nil
}

func (s *sessionService) BlockToken(ctx context.Context, token string) error {
	key := tokenPrefix + token
	if err := s.rdb.Set(ctx, key, "blocked", s.tokenExpire).Err(); err != nil {
		logger.Error("禁用token失败", logger.F("error", err))
		return constant.ErrCacheError
	}
	return nil
}

func (s *sessionService) IsTokenBlocked(ctx context.Context, token string) bool {
	key := tokenPrefix + token
	_, err := s.rdb.Get(ctx, key).Result()
	if err != nil {
		if err == redis.Nil {
			return false
		}
		logger.Error("查询token失败", logger.F("error", err))
		return true
	}
	return true
}

// IncrRequestCount 窗口内请求计数，首次计数时设置窗口过期
func (s *sessionService) IncrRequestCount(ctx context.Context, apiKey string) (int64, error) {
	key := counterPrefix + apiKey
	count, err := s.rdb.Incr(ctx, key).Result()
	if err != nil {
		logger.Error("请求计数失败", logger.F("error", err))
		return 0, constant.ErrCacheError
	}
	if count == 1 {
		if err := s.rdb.Expire(ctx, key, counterWindow).Err(); err != nil {
			logger.Error("设置计数窗口失败", logger.F("error", err))
		}
	}
	return count, nil
}
