package service

import (
	"context"
	"errors"
	"sync"

	"gorm.io/gorm"

	"github.com/yockii/office_tools/internal/constant"
	"github.com/yockii/office_tools/internal/model"
	"github.com/yockii/office_tools/pkg/logger"
)

type applicationService struct {
	*BaseServiceImpl[*model.Application]
	appMu  sync.RWMutex
	appMap map[string]*model.Application
}

func NewApplicationService() *applicationService {
	srv := new(applicationService)
	srv.BaseServiceImpl = NewBaseService(BaseServiceConfig[*model.Application]{
		NewModel:       srv.NewModel,
		CheckDuplicate: srv.CheckDuplicate,
		BuildCondition: srv.BuildCondition,
		UpdateHook:     srv.evictCache,
		DeleteHook:     srv.evictCache,
	})
	srv.appMap = make(map[string]*model.Application)

	return srv
}

func (s *applicationService) NewModel() *model.Application {
	return &model.Application{}
}

func (s *applicationService) CheckDuplicate(record *model.Application) (bool, error) {
	query := s.db.Model(s.NewModel()).Where(&model.Application{
		Name: record.Name,
	})
	if record.ID != 0 {
		query = query.Where("id <> ?", record.ID)
	}
	var count int64
	if err := query.Count(&count).Error; err != nil {
		logger.Error("查询记录失败", logger.F("error", err))
		return false, constant.ErrDatabaseError
	}
	return count > 0, nil
}

func (s *applicationService) BuildCondition(query *gorm.DB, condition *model.Application) *gorm.DB {
	if condition.Name != "" {
		query = query.Where("name LIKE ?", "%"+condition.Name+"%")
	}
	if condition.Status != 0 {
		query = query.Where("status = ?", condition.Status)
	}
	return query
}

func (s *applicationService) GetByApiKey(ctx context.Context, apiKey string) (*model.Application, error) {
	s.appMu.RLock()
	app, ok := s.appMap[apiKey]
	s.appMu.RUnlock()
	if ok {
		return app, nil
	}

	var record model.Application
	err := s.db.Where(&model.Application{APIKey: apiKey}).First(&record).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, constant.ErrRecordNotFound
		}
		logger.Error("查询记录失败", logger.F("error", err))
		return nil, constant.ErrDatabaseError
	}

	s.appMu.Lock()
	s.appMap[apiKey] = &record
	s.appMu.Unlock()
	return &record, nil
}

func (s *applicationService) evictCache(ctx context.Context, record *model.Application) {
	s.appMu.Lock()
	delete(s.appMap, record.APIKey)
	s.appMu.Unlock()
}
