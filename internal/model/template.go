package model

import (
	"time"

	"gorm.io/gorm"

	"github.com/yockii/office_tools/pkg/util"
)

// Template 上传的DOCX模板
type Template struct {
	BaseModel
	ApplicationID uint64    `json:"applicationId,string" gorm:"index;not null"`
	Name          string    `json:"name" gorm:"type:varchar(100);not null"`
	Description   string    `json:"description" gorm:"type:varchar(200)"`
	ObjectName    string    `json:"objectName" gorm:"type:varchar(255);not null"` // 存储对象名
	Size          int64     `json:"size"`
	Placeholders  string    `json:"placeholders" gorm:"type:text"` // 模板内占位符键名, 逗号分隔
	Status        int       `json:"status" gorm:"type:int;default:1;not null"`
	UpdatedAt     time.Time `json:"updatedAt,omitzero" gorm:"type:timestamp;not null"`
}

func (t *Template) TableComment() string {
	return "文档模板表"
}

// BeforeCreate 创建前钩子
func (t *Template) BeforeCreate(tx *gorm.DB) error {
	if t.ID == 0 {
		t.ID = util.NewID()
	}
	return nil
}

func init() {
	models = append(models, &Template{})
}
