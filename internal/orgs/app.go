package orgs

import (
	"go.uber.org/zap"

	"orgsvc/internal/token"
)

// App is the org-service application container: shared deps only,
// request-scoped work goes through context. Handlers and middleware are
// methods on this type.
type App struct {
	log    *zap.SugaredLogger
	svc    *Service
	tokens *token.Service
}

func NewApp(log *zap.SugaredLogger, svc *Service, tokens *token.Service) *App {
	return &App{log: log, svc: svc, tokens: tokens}
}
