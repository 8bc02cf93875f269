package service

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/yockii/office_tools/internal/constant"
	"github.com/yockii/office_tools/internal/model"
	"github.com/yockii/office_tools/internal/storage"
	"github.com/yockii/office_tools/pkg/doctpl"
	"github.com/yockii/office_tools/pkg/logger"
	"github.com/yockii/office_tools/pkg/util"
)

type templateService struct {
	*BaseServiceImpl[*model.Template]
}

func NewTemplateService() *templateService {
	srv := new(templateService)
	srv.BaseServiceImpl = NewBaseService(BaseServiceConfig[*model.Template]{
		NewModel:       srv.NewModel,
		BuildCondition: srv.BuildCondition,
	})
	return srv
}

func (s *templateService) NewModel() *model.Template {
	return &model.Template{}
}

func (s *templateService) BuildCondition(query *gorm.DB, condition *model.Template) *gorm.DB {
	if condition.ApplicationID != 0 {
		query = query.Where("application_id = ?", condition.ApplicationID)
	}
	if condition.Name != "" {
		query = query.Where("name LIKE ?", "%"+condition.Name+"%")
	}
	return query
}

// Upload implements TemplateService.
func (s *templateService) Upload(ctx context.Context, app *model.Application, name, description string, data []byte) (*model.Template, error) {
	if name == "" || len(data) == 0 {
		return nil, constant.ErrInvalidParams
	}

	// 校验模板并提取占位符
	keys, err := doctpl.ExtractKeys(data)
	if err != nil {
		if errors.Is(err, doctpl.ErrMalformedTemplate) {
			return nil, constant.ErrTemplateInvalid
		}
		logger.Error("解析模板失败", logger.F("error", err))
		return nil, constant.ErrInternalError
	}

	objectName := "templates/" + util.GenerateObjectName(".docx")
	if err := storage.Get().Save(objectName, data); err != nil {
		logger.Error("保存模板对象失败", logger.F("objectName", objectName), logger.F("error", err))
		return nil, constant.ErrStorageError
	}

	tpl := &model.Template{
		ApplicationID: app.ID,
		Name:          name,
		Description:   description,
		ObjectName:    objectName,
		Size:          int64(len(data)),
		Placeholders:  strings.Join(keys, ","),
		Status:        1,
	}
	if err := s.Create(ctx, tpl); err != nil {
		return nil, err
	}
	return tpl, nil
}

// Remove implements TemplateService.
func (s *templateService) Remove(ctx context.Context, app *model.Application, id uint64) error {
	tpl, err := s.get(ctx, app, id)
	if err != nil {
		return err
	}

	if err := s.Delete(ctx, id); err != nil {
		return err
	}
	if err := storage.Get().Delete(tpl.ObjectName); err != nil {
		logger.Warn("删除模板对象失败", logger.F("objectName", tpl.ObjectName), logger.F("error", err))
	}
	return nil
}

// Load implements TemplateService.
func (s *templateService) Load(ctx context.Context, app *model.Application, id uint64) (*model.Template, []byte, error) {
	tpl, err := s.get(ctx, app, id)
	if err != nil {
		return nil, nil, err
	}

	data, err := storage.Get().Load(tpl.ObjectName)
	if err != nil {
		logger.Error("读取模板对象失败", logger.F("objectName", tpl.ObjectName), logger.F("error", err))
		return nil, nil, constant.ErrStorageError
	}
	return tpl, data, nil
}

func (s *templateService) get(ctx context.Context, app *model.Application, id uint64) (*model.Template, error) {
	tpl, err := s.Get(ctx, id)
	if err != nil {
		if errors.Is(err, constant.ErrRecordNotFound) {
			return nil, constant.ErrTemplateNotFound
		}
		return nil, err
	}
	if tpl.ApplicationID != app.ID {
		return nil, constant.ErrPermissionDenied
	}
	return tpl, nil
}
