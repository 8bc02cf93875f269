package util

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// GenerateObjectName 生成存储对象名：按日期分目录，文件名用UUID避免冲突
func GenerateObjectName(ext string) string {
	return fmt.Sprintf("%s/%s%s", time.Now().Format("2006/01/02"), uuid.NewString(), ext)
}
