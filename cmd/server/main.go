package main

import (
	"log"

	"github.com/yockii/office_tools/internal/model"
	"github.com/yockii/office_tools/internal/server"
	"github.com/yockii/office_tools/internal/storage"
	"github.com/yockii/office_tools/pkg/config"
	"github.com/yockii/office_tools/pkg/database"
	"github.com/yockii/office_tools/pkg/logger"
	"github.com/yockii/office_tools/pkg/util"
)

// @title Office Tools API
// @version 1.0
// @description Markdown驱动的办公文档生成服务
// @BasePath /api/v1
func main() {
	// 初始化配置
	if err := config.Init(); err != nil {
		log.Fatalf("初始化配置失败: %v", err)
	}

	util.InitNode(config.GetUint64("server.node_id"))

	// 初始化日志
	logger.Init()

	// 连接数据库
	database.Init()

	// 数据库迁移
	model.AutoMigrate(database.GetDB())

	model.InitData(database.GetDB())

	// 初始化文档存储
	if err := storage.Init(); err != nil {
		log.Fatalf("初始化存储失败: %v", err)
	}

	// 创建服务器实例
	srv := server.New()

	// 启动服务器
	if err := srv.Start(); err != nil {
		log.Fatalf("服务停止: %v", err)
	}
}
