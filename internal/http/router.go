package http

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	httpH "github.com/yungbote/mockview-backend/internal/http/handlers"
	httpMW "github.com/yungbote/mockview-backend/internal/http/middleware"
	"github.com/yungbote/mockview-backend/internal/platform/logger"
)

type RouterConfig struct {
	Log *logger.Logger

	InterviewHandler *httpH.InterviewHandler
	HealthHandler    *httpH.HealthHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(otelgin.Middleware("mockview"))
	r.Use(httpMW.AttachTraceContext())
	r.Use(httpMW.RequestLogger(cfg.Log))
	r.Use(httpMW.CORS())

	// Health
	if cfg.HealthHandler != nil {
		r.GET("/healthcheck", cfg.HealthHandler.HealthCheck)
	}

	api := r.Group("/api")
	{
		if cfg.InterviewHandler != nil {
			api.POST("/interviews", cfg.InterviewHandler.Start)
			api.POST("/interviews/:id/answers", cfg.InterviewHandler.SubmitAnswer)
			api.GET("/interviews/:id", cfg.InterviewHandler.Status)
			api.POST("/interviews/:id/complete", cfg.InterviewHandler.Complete)
		}
	}

	return r
}
