package container

import (
	"fmt"

	"gotabstat/adapters/datareadiness/coercer"
	"gotabstat/adapters/excel"
	"gotabstat/adapters/stats/engine"
	"gotabstat/app"
	"gotabstat/internal"
	"gotabstat/internal/api"
	"gotabstat/internal/config"
	"gotabstat/ports"
)

// Container holds all application dependencies
type Container struct {
	Config *config.Config
	Logger *internal.Logger

	// Adapters
	Coercer *coercer.TypeCoercer
	Loader  ports.TableLoader
	Engine  ports.StatsEngine

	// Application services
	Service *app.AnalysisService
}

// New wires the loader, engine and service from cfg
func New(cfg *config.Config) (*Container, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}

	c := &Container{
		Config: cfg,
		Logger: internal.NewLogger(internal.ParseLogLevel(cfg.Log.Level)),
	}
	c.initAdapters()
	c.initServices()
	return c, nil
}

// initAdapters builds the spreadsheet loader and the statistics engine
func (c *Container) initAdapters() {
	c.Coercer = coercer.NewTypeCoercer(c.Config.CoercionConfig())
	c.Loader = excel.NewDataReader(c.Coercer, c.Logger)
	c.Engine = engine.NewEngine(c.Config.EngineConfig())
}

func (c *Container) initServices() {
	c.Service = app.NewAnalysisService(c.Loader, c.Engine, c.Logger)
}

// NewAPIServer builds the HTTP server using the configured limits
func (c *Container) NewAPIServer() *api.Server {
	return api.NewServer(c.Service, api.Options{
		MaxConcurrent:  int64(c.Config.Server.MaxConcurrentAnalyses),
		MaxUploadBytes: int64(c.Config.Server.MaxUploadMB) << 20,
		Coercer:        c.Coercer,
	}, c.Logger)
}
