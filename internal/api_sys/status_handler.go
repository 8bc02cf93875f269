package sysapi

import (
	"runtime"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/disk"
	"github.com/shirou/gopsutil/v3/host"
	"github.com/shirou/gopsutil/v3/mem"

	"github.com/yockii/office_tools/internal/service"
	"github.com/yockii/office_tools/pkg/logger"
)

type StatusHandler struct {
	startTime time.Time
}

func RegisterStatusHandler() {
	handler := &StatusHandler{startTime: time.Now()}
	Handlers = append(Handlers, handler)
}

func (h *StatusHandler) RegisterRoutes(router fiber.Router, authMiddleware fiber.Handler) {
	router.Get("/status", authMiddleware, h.Status)
}

// Status 服务与宿主机运行状态
func (h *StatusHandler) Status(c *fiber.Ctx) error {
	status := fiber.Map{
		"uptime":     time.Since(h.startTime).String(),
		"goroutines": runtime.NumGoroutine(),
		"goVersion":  runtime.Version(),
	}

	if info, err := host.Info(); err == nil {
		status["host"] = fiber.Map{
			"hostname": info.Hostname,
			"os":       info.OS,
			"platform": info.Platform,
			"uptime":   info.Uptime,
		}
	} else {
		logger.Warn("获取主机信息失败", logger.F("error", err))
	}

	if percents, err := cpu.Percent(0, false); err == nil && len(percents) > 0 {
		status["cpuPercent"] = percents[0]
	}

	if vm, err := mem.VirtualMemory(); err == nil {
		status["memory"] = fiber.Map{
			"total":       vm.Total,
			"used":        vm.Used,
			"usedPercent": vm.UsedPercent,
		}
	}

	if du, err := disk.Usage("/"); err == nil {
		status["disk"] = fiber.Map{
			"total":       du.Total,
			"used":        du.Used,
			"usedPercent": du.UsedPercent,
		}
	}

	return c.JSON(service.OK(status))
}
