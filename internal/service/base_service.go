package service

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/yockii/office_tools/internal/constant"
	"github.com/yockii/office_tools/internal/model"
	"github.com/yockii/office_tools/pkg/database"
	"github.com/yockii/office_tools/pkg/logger"
)

// BaseServiceConfig 具体服务注入的可定制行为，未注入的走默认实现
type BaseServiceConfig[T model.Model] struct {
	NewModel       func() T
	CheckDuplicate func(record T) (bool, error)
	DeleteCheck    func(record T) error
	BuildCondition func(query *gorm.DB, condition T) *gorm.DB
	UpdateHook     func(ctx context.Context, record T)
	DeleteHook     func(ctx context.Context, record T)
	ListOrder      string
}

type BaseServiceImpl[T model.Model] struct {
	db     *gorm.DB
	config BaseServiceConfig[T]
}

func NewBaseService[T model.Model](config BaseServiceConfig[T]) *BaseServiceImpl[T] {
	if config.ListOrder == "" {
		config.ListOrder = "created_at DESC"
	}
	return &BaseServiceImpl[T]{
		db:     database.GetDB(),
		config: config,
	}
}

func (s *BaseServiceImpl[T]) NewModel() T {
	return s.config.NewModel()
}

// Create 创建记录
func (s *BaseServiceImpl[T]) Create(ctx context.Context, record T) error {
	if s.config.CheckDuplicate != nil {
		duplicate, err := s.config.CheckDuplicate(record)
		if err != nil {
			return err
		}
		if duplicate {
			return constant.ErrRecordDuplicate
		}
	}

	if err := s.db.Create(record).Error; err != nil {
		logger.Error("创建记录失败", logger.F("error", err))
		return constant.ErrDatabaseError
	}
	return nil
}

// Update 更新记录
func (s *BaseServiceImpl[T]) Update(ctx context.Context, record T) error {
	id := record.GetID()
	if id == 0 {
		return constant.ErrInvalidParams
	}
	existingRecord := s.NewModel()
	if err := s.db.First(existingRecord, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return constant.ErrRecordNotFound
		}
		logger.Error("查询记录失败", logger.F("error", err))
		return constant.ErrDatabaseError
	}

	if s.config.CheckDuplicate != nil {
		duplicate, err := s.config.CheckDuplicate(record)
		if err != nil {
			return err
		}
		if duplicate {
			return constant.ErrRecordDuplicate
		}
	}

	if err := s.db.Model(record).Updates(record).Error; err != nil {
		logger.Error("更新记录失败", logger.F("error", err))
		return constant.ErrDatabaseError
	}

	if s.config.UpdateHook != nil {
		s.config.UpdateHook(ctx, existingRecord)
	}
	return nil
}

// Delete 删除记录
func (s *BaseServiceImpl[T]) Delete(ctx context.Context, id uint64) error {
	record := s.NewModel()
	if err := s.db.First(record, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return constant.ErrRecordNotFound
		}
		logger.Error("查询记录失败", logger.F("error", err))
		return constant.ErrDatabaseError
	}

	if s.config.DeleteCheck != nil {
		if err := s.config.DeleteCheck(record); err != nil {
			return err
		}
	}

	if err := s.db.Delete(record).Error; err != nil {
		logger.Error("删除记录失败", logger.F("error", err))
		return constant.ErrDatabaseError
	}
	if s.config.DeleteHook != nil {
		s.config.DeleteHook(ctx, record)
	}
	return nil
}

// Get 查询记录
func (s *BaseServiceImpl[T]) Get(ctx context.Context, id uint64) (T, error) {
	record := s.NewModel()
	if err := s.db.First(record, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return record, constant.ErrRecordNotFound
		}
		logger.Error("查询记录失败", logger.F("error", err))
		return record, constant.ErrDatabaseError
	}
	return record, nil
}

// List 查询记录列表
func (s *BaseServiceImpl[T]) List(ctx context.Context, condition T, offset, limit int) ([]T, int64, error) {
	var records []T
	var total int64

	if limit <= 0 {
		limit = DefaultPageSize
	}
	if limit > MaxPageSize {
		limit = MaxPageSize
	}

	query := s.db.Model(s.NewModel())

	if s.config.BuildCondition != nil {
		query = s.config.BuildCondition(query, condition)
	}

	if err := query.Count(&total).Error; err != nil {
		logger.Error("查询记录总数失败", logger.F("error", err))
		return records, 0, constant.ErrDatabaseError
	}

	if err := query.Offset(offset).Limit(limit).Order(s.config.ListOrder).Find(&records).Error; err != nil {
		logger.Error("查询记录失败", logger.F("error", err))
		return records, 0, constant.ErrDatabaseError
	}

	return records, total, nil
}
