package app

import (
	"github.com/gin-gonic/gin"

	httpx "github.com/yungbote/mockview-backend/internal/http"
	"github.com/yungbote/mockview-backend/internal/platform/logger"
)

func wireRouter(log *logger.Logger, handlers Handlers) *gin.Engine {
	return httpx.NewRouter(httpx.RouterConfig{
		Log:              log,
		InterviewHandler: handlers.Interview,
		HealthHandler:    handlers.Health,
	})
}
