package model

import (
	"time"

	"gorm.io/gorm"

	"github.com/yockii/office_tools/pkg/util"
)

// 文档类型
const (
	DocumentKindWord        = "word"
	DocumentKindSpreadsheet = "spreadsheet"
	DocumentKindTemplate    = "template"
)

// 文档状态
const (
	DocumentStatusOK     = 1
	DocumentStatusFailed = -1
)

// Document 生成的文档记录
type Document struct {
	BaseModel
	ApplicationID uint64    `json:"applicationId,string" gorm:"index;not null"`
	TraceID       string    `json:"traceId" gorm:"type:varchar(32);index"`
	Kind          string    `json:"kind" gorm:"type:varchar(20);not null"` // word, spreadsheet, template
	Name          string    `json:"name" gorm:"type:varchar(200);not null"`
	ObjectName    string    `json:"objectName" gorm:"type:varchar(255);not null"` // 存储对象名
	Size          int64     `json:"size"`
	Status        int       `json:"status" gorm:"type:int;default:1;not null"`
	Notices       string    `json:"notices" gorm:"type:text"`    // 解析降级记录，JSON数组
	CellErrors    string    `json:"cellErrors" gorm:"type:text"` // 公式单元格错误，JSON数组
	UpdatedAt     time.Time `json:"updatedAt,omitzero" gorm:"type:timestamp;not null"`
}

func (d *Document) TableComment() string {
	return "生成文档表"
}

// BeforeCreate 创建前钩子
func (d *Document) BeforeCreate(tx *gorm.DB) error {
	if d.ID == 0 {
		d.ID = util.NewID()
	}
	return nil
}

func init() {
	models = append(models, &Document{})
}
