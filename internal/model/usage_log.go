package model

import (
	"gorm.io/gorm"

	"github.com/yockii/office_tools/pkg/util"
)

// UsageLog 应用调用日志
type UsageLog struct {
	BaseModel
	ApplicationID uint64       `json:"applicationId,string" gorm:"index;not null"`
	Action        int          `json:"action" gorm:"not null"`
	TraceID       string       `json:"traceId" gorm:"type:varchar(32);index"`
	DocumentID    uint64       `json:"documentId,string" gorm:"index"`
	Duration      int64        `json:"duration"` // 处理耗时，毫秒
	IP            string       `json:"ip" gorm:"type:varchar(50)"`
	UserAgent     string       `json:"userAgent" gorm:"type:varchar(255)"`
	Failed        bool         `json:"failed" gorm:"default:false;not null"`
	Application   *Application `json:"application" gorm:"foreignKey:ApplicationID"` // 关联字段
}

func (l *UsageLog) TableComment() string {
	return "调用日志表"
}

// BeforeCreate 创建前钩子
func (l *UsageLog) BeforeCreate(tx *gorm.DB) error {
	if l.ID == 0 {
		l.ID = util.NewID()
	}
	return nil
}

func init() {
	models = append(models, &UsageLog{})
}
