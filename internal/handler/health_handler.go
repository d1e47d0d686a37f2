package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// HealthHandler 健康检查，探测数据库与 Redis
type HealthHandler struct {
	dbPing    func(ctx context.Context) error
	cachePing func(ctx context.Context) error
}

func NewHealthHandler(dbPing, cachePing func(ctx context.Context) error) *HealthHandler {
	return &HealthHandler{dbPing: dbPing, cachePing: cachePing}
}

// Health GET /healthz
// 任一依赖不可用时返回 503 和 degraded 状态，供探针摘除实例
func (h *HealthHandler) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	components := gin.H{}
	status := http.StatusOK

	if err := h.dbPing(ctx); err != nil {
		components["database"] = err.Error()
		status = http.StatusServiceUnavailable
	} else {
		components["database"] = "ok"
	}

	if err := h.cachePing(ctx); err != nil {
		components["cache"] = err.Error()
		status = http.StatusServiceUnavailable
	} else {
		components["cache"] = "ok"
	}

	state := "ok"
	if status != http.StatusOK {
		state = "degraded"
	}
	c.JSON(status, gin.H{"status": state, "components": components})
}
