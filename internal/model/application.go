package model

import (
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/yockii/office_tools/pkg/util"
)

// Application 接入应用模型，凭API Key/Secret调用文档生成接口
type Application struct {
	BaseModel
	Name              string    `json:"name" gorm:"type:varchar(50);not null"`
	Description       string    `json:"description" gorm:"type:varchar(200)"`
	APIKey            string    `json:"apiKey" gorm:"type:varchar(64);uniqueIndex"`
	APISecret         string    `json:"apiSecret,omitempty" gorm:"type:varchar(100);not null"`
	Status            int       `json:"status" gorm:"type:int;default:1;not null"` // 1: 正常, -1: 禁用
	RateLimitInMinute int       `json:"rateLimitInMinute" gorm:"default:-1"`       // 每分钟限流, -1表示不限制
	AllowedOrigins    string    `json:"allowedOrigins"`                            // 允许的来源域名, 逗号分隔
	NotifyEmail       string    `json:"notifyEmail" gorm:"type:varchar(100)"`      // 文档生成完成通知邮箱
	UpdatedAt         time.Time `json:"updatedAt,omitzero" gorm:"type:timestamp;not null"`
}

func (a *Application) TableComment() string {
	return "应用表"
}

// BeforeCreate 创建前钩子
func (a *Application) BeforeCreate(tx *gorm.DB) error {
	if a.ID == 0 {
		a.ID = util.NewID()
	}
	if err := a.encryptSecret(); err != nil {
		return err
	}
	return nil
}

// BeforeUpdate 更新前钩子
func (a *Application) BeforeUpdate(tx *gorm.DB) error {
	if tx.Statement.Changed("APISecret") {
		secret := ""
		switch dest := tx.Statement.Dest.(type) {
		case *Application:
			secret = dest.APISecret
		case map[string]interface{}:
			if secretInter, ok := dest["APISecret"]; ok {
				secret, _ = secretInter.(string)
			}
		}
		if secret != "" {
			if encrypted, err := bcrypt.GenerateFromPassword([]byte(secret), bcrypt.DefaultCost); err == nil {
				tx.Statement.SetColumn("APISecret", encrypted)
			}
		}
	}
	return nil
}

// CompareSecret 校验应用密钥
func (a *Application) CompareSecret(secret string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(a.APISecret), []byte(secret))
	return err == nil
}

// encryptSecret 加密应用密钥
func (a *Application) encryptSecret() error {
	if a.APISecret == "" {
		return nil
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(a.APISecret), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	a.APISecret = string(hashed)
	return nil
}

func init() {
	models = append(models, &Application{})
}
