package service

import (
	"context"

	"gorm.io/gorm"

	"github.com/yockii/office_tools/internal/model"
	"github.com/yockii/office_tools/pkg/logger"
)

type usageLogService struct {
	*BaseServiceImpl[*model.UsageLog]
}

func NewUsageLogService() *usageLogService {
	srv := new(usageLogService)
	srv.BaseServiceImpl = NewBaseService(BaseServiceConfig[*model.UsageLog]{
		NewModel: srv.NewModel,
		BuildCondition: func(query *gorm.DB, condition *model.UsageLog) *gorm.DB {
			if condition.ApplicationID != 0 {
				query = query.Where("application_id = ?", condition.ApplicationID)
			}
			if condition.Action != 0 {
				query = query.Where("action = ?", condition.Action)
			}
			if condition.TraceID != "" {
				query = query.Where("trace_id = ?", condition.TraceID)
			}
			return query
		},
	})
	return srv
}

func (s *usageLogService) NewModel() *model.UsageLog {
	return &model.UsageLog{}
}

// Record implements UsageLogService.
func (s *usageLogService) Record(ctx context.Context, log *model.UsageLog) {
	if err := s.Create(ctx, log); err != nil {
		logger.Error("创建调用日志失败", logger.F("error", err), logger.F("record", log))
	}
}
