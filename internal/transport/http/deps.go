package http

import (
	"github.com/go-iot-telemetry/internal/application/alarm"
	"github.com/go-iot-telemetry/internal/application/forecast"
	"github.com/go-iot-telemetry/internal/application/notification"
	"github.com/go-iot-telemetry/internal/application/session"
	"github.com/go-iot-telemetry/internal/application/telemetry"
	"github.com/go-iot-telemetry/internal/application/user"
	"github.com/go-iot-telemetry/internal/config"
	"github.com/go-iot-telemetry/internal/infrastructure/coreiot"
	"github.com/go-iot-telemetry/internal/infrastructure/dynamo"
	jwtinfra "github.com/go-iot-telemetry/internal/infrastructure/jwt"
	s3infra "github.com/go-iot-telemetry/internal/infrastructure/s3"
	"github.com/go-iot-telemetry/internal/infrastructure/sns"
	"github.com/go-iot-telemetry/internal/pkg/workerpool"
)

// Deps holds all infrastructure dependencies for the router.
type Deps struct {
	UserRepo         *dynamo.UserRepo
	ReadingRepo      *dynamo.ReadingRepo
	AlarmRepo        *dynamo.AlarmRepo
	NotificationRepo *dynamo.NotificationRepo
	ModelStore       *s3infra.ModelStore
	AlarmPublisher   sns.AlarmPublisher // nil disables push
	CoreIoT          *coreiot.Client
	JWTProvider      *jwtinfra.Provider
	TrainingPool     *workerpool.Pool
}

// services are the application services built from Deps.
type services struct {
	users         user.Service
	sessions      session.Service
	alarms        alarm.Service
	notifications notification.Service
	telemetry     telemetry.Service
	trainer       *forecast.Trainer
	predictor     *forecast.Predictor
}

func buildServices(cfg *config.Config, deps *Deps) *services {
	training := cfg.Training
	trainer := forecast.NewTrainer(deps.ReadingRepo, deps.ModelStore, training.Window)
	scheduler := forecast.NewScheduler(forecast.SchedulerDeps{
		Claims:   deps.UserRepo,
		Pool:     deps.TrainingPool,
		Trainer:  trainer,
		Interval: training.Interval,
		Timeout:  training.Timeout,
	})

	evaluator := alarm.NewEvaluator(deps.AlarmRepo, deps.NotificationRepo, deps.AlarmPublisher)

	return &services{
		users:         user.NewService(deps.UserRepo),
		sessions:      session.NewService(deps.UserRepo, deps.JWTProvider),
		alarms:        alarm.NewService(deps.AlarmRepo),
		notifications: notification.NewService(deps.NotificationRepo),
		telemetry: telemetry.NewService(telemetry.ServiceDeps{
			UserRepo:    deps.UserRepo,
			ReadingRepo: deps.ReadingRepo,
			Remote:      deps.CoreIoT,
			Evaluator:   evaluator,
			Scheduler:   scheduler,
			RPCMethod:   cfg.CoreIoT.RPCMethod,
		}),
		trainer:   trainer,
		predictor: forecast.NewPredictor(deps.ReadingRepo, deps.ModelStore, training.Window),
	}
}
