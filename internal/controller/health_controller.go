package controller

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/klass-lk/blogapi"
)

type Pinger interface {
	PingContext(ctx context.Context) error
}

type HealthController struct {
	db Pinger
}

func NewHealthController(db Pinger) *HealthController {
	return &HealthController{db: db}
}

func (c *HealthController) Register(group *blogapi.ControllerGroup) {
	group.GET("", c.Health)
}

// Health reports 503 when the database is unreachable.
func (c *HealthController) Health(ctx *blogapi.Context) (gin.H, error) {
	if c.db == nil {
		return gin.H{"status": "ok"}, nil
	}
	pingCtx, cancel := context.WithTimeout(ctx.Request.Context(), 2*time.Second)
	defer cancel()
	if err := c.db.PingContext(pingCtx); err != nil {
		return nil, blogapi.ApiError{
			Status:    http.StatusServiceUnavailable,
			ErrorCode: "UNAVAILABLE",
			Message:   "database unreachable",
		}
	}
	return gin.H{"status": "ok", "database": "ok"}, nil
}
