package injector

import (
	"github.com/lk2023060901/vehicle-discovery/internal/conf"
	"github.com/lk2023060901/vehicle-discovery/internal/data"
	"github.com/lk2023060901/vehicle-discovery/internal/pkg/logger"
	"github.com/lk2023060901/vehicle-discovery/internal/savedsearch/biz"
	"github.com/lk2023060901/vehicle-discovery/internal/savedsearch/job"
	"github.com/lk2023060901/vehicle-discovery/internal/server"
)

// App encapsulates all application dependencies
type App struct {
	Config     *conf.Config
	Logger     *logger.Logger
	Data       *data.Data
	HTTPServer *server.HTTPServer
	Scheduler  *job.Scheduler
	Detector   *biz.Detector
}

func newApp(
	config *conf.Config,
	log *logger.Logger,
	d *data.Data,
	httpServer *server.HTTPServer,
	scheduler *job.Scheduler,
	detector *biz.Detector,
) *App {
	return &App{
		Config:     config,
		Logger:     log,
		Data:       d,
		HTTPServer: httpServer,
		Scheduler:  scheduler,
		Detector:   detector,
	}
}
