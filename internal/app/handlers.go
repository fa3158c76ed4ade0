package app

import (
	httpH "github.com/yungbote/mockview-backend/internal/http/handlers"
	"github.com/yungbote/mockview-backend/internal/platform/logger"
)

type Handlers struct {
	Interview *httpH.InterviewHandler
	Health    *httpH.HealthHandler
}

func wireHandlers(log *logger.Logger, serviceset Services) Handlers {
	return Handlers{
		Interview: httpH.NewInterviewHandler(log, serviceset.Interview, serviceset.Evaluation),
		Health:    httpH.NewHealthHandler(),
	}
}
