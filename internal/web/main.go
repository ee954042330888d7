// Package web wires the HTTP API of the back office: session resolution,
// login and logout, the authenticated /api routes and the probes.
package web

import (
	"errors"
	"net/http"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"

	"github.com/PontoAdmin/ponto-admin/internal/attendance"
	"github.com/PontoAdmin/ponto-admin/internal/audit"
	"github.com/PontoAdmin/ponto-admin/internal/auth"
	"github.com/PontoAdmin/ponto-admin/internal/config"
	"github.com/PontoAdmin/ponto-admin/internal/datamanagement"
	"github.com/PontoAdmin/ponto-admin/internal/employee"
	"github.com/PontoAdmin/ponto-admin/internal/errortrack"
	"github.com/PontoAdmin/ponto-admin/internal/financial"
	fiberlogger "github.com/PontoAdmin/ponto-admin/internal/logger/adapter/fiber"
	"github.com/PontoAdmin/ponto-admin/internal/permission"
	"github.com/PontoAdmin/ponto-admin/internal/pixexport"
	"github.com/PontoAdmin/ponto-admin/internal/settings"
	"github.com/PontoAdmin/ponto-admin/internal/users"
	"github.com/PontoAdmin/ponto-admin/internal/web/handler"
	"github.com/PontoAdmin/ponto-admin/internal/web/handler/admin/server/configuration"
	attendancehandler "github.com/PontoAdmin/ponto-admin/internal/web/handler/attendance"
	"github.com/PontoAdmin/ponto-admin/internal/web/handler/dashboard"
	"github.com/PontoAdmin/ponto-admin/internal/web/handler/data"
	"github.com/PontoAdmin/ponto-admin/internal/web/handler/employees"
	"github.com/PontoAdmin/ponto-admin/internal/web/handler/errorlog"
	financialhandler "github.com/PontoAdmin/ponto-admin/internal/web/handler/financial"
	"github.com/PontoAdmin/ponto-admin/internal/web/handler/login"
	"github.com/PontoAdmin/ponto-admin/internal/web/handler/logout"
	"github.com/PontoAdmin/ponto-admin/internal/web/handler/me"
	"github.com/PontoAdmin/ponto-admin/internal/web/handler/permissions"
	"github.com/PontoAdmin/ponto-admin/internal/web/handler/pix"
	"github.com/PontoAdmin/ponto-admin/internal/web/handler/reports"
	settingshandler "github.com/PontoAdmin/ponto-admin/internal/web/handler/settings"
	usershandler "github.com/PontoAdmin/ponto-admin/internal/web/handler/users"
	authmiddleware "github.com/PontoAdmin/ponto-admin/internal/web/middleware/auth"
)

const (
	// CheckAlivePath answers 200 while the service accepts traffic.
	CheckAlivePath = "/checkalive"
	// MetricsPath serves the prometheus metrics.
	MetricsPath = "/metrics"
)

// Services are the domain services the handlers expose.
type Services struct {
	Guard      *permission.Guard
	Provider   *auth.LocalProvider
	Audit      *audit.Service
	Tracker    *errortrack.Tracker
	Employees  *employee.Service
	Attendance *attendance.Service
	Financial  *financial.Service
	Pix        *pixexport.Service
	Users      *users.Service
	Settings   *settings.Service
	Data       *datamanagement.Service
}

// Service represents the web service.
type Service struct {
	App          *fiber.App
	cfg          *config.Config
	fastShutDown bool
	alive        atomic.Bool
}

// Start starts the web service on the given address.
func (s *Service) Start(addr string) error {
	var doneFiber = make(chan bool)

	go func() {
		if err := s.App.Listen(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Msgf("fiber listen error: %v", err)
		}

		doneFiber <- true
	}()

	<-doneFiber // wait for fiber to stop

	return nil
}

// WaitShutdown blocks until SIGINT or SIGTERM and stops the server gracefully.
func (s *Service) WaitShutdown() {
	irqSig := make(chan os.Signal, 1)
	signal.Notify(irqSig, syscall.SIGINT, syscall.SIGTERM)

	sig := <-irqSig
	log.Info().Msgf("shutdown request (signal: %v)", sig)

	// Graceful shutdown for reverse proxies: set status to fail, so checkalive returns fail.
	if !s.fastShutDown {
		log.Info().Msgf(
			"graceful shutdown: return 503 while %d seconds to let LB to remove this pod from active targets",
			s.cfg.Webserver.ShutDownTime,
		)

		s.alive.Store(false)
		time.Sleep(time.Duration(s.cfg.Webserver.ShutDownTime) * time.Second)
	}

	serverShutdown := make(chan struct{})

	go func() {
		log.Info().Msg("stopping http server ...")

		err := s.App.Shutdown()
		if err != nil {
			log.Error().Err(err).Msg("")
		}

		serverShutdown <- struct{}{}
	}()

	<-serverShutdown
	log.Info().Msg("http server was stopped ... good bye...")
}

// CheckAlive answers 200 while alive and 503 during shutdown.
func (s *Service) CheckAlive(c *fiber.Ctx) error {
	if !s.alive.Load() {
		return c.SendStatus(fiber.StatusServiceUnavailable)
	}

	return c.SendString("OK")
}

// New creates the web service and registers every route.
func New(cfg *config.Config, svcs Services) (*Service, error) {
	if cfg == nil {
		panic("config cannot be nil")
	}

	app := fiber.New(
		fiber.Config{
			ReadBufferSize: 8192,
			AppName:        cfg.Title,
			CaseSensitive:  true,
			Prefork:        false,
			Immutable:      true,
		},
	)

	if !cfg.Webserver.DisableRecover {
		app.Use(recover.New(recover.Config{EnableStackTrace: cfg.DevMode}))
	}

	app.Use(fiberlogger.New(fiberlogger.Config{Config: cfg.Log, CheckAliveURI: CheckAlivePath}))

	service := &Service{
		cfg: cfg,
		App: app,
	}
	service.alive.Store(true)

	app.Get(CheckAlivePath, service.CheckAlive)
	app.Get(MetricsPath, adaptor.HTTPHandler(promhttp.Handler()))

	app.Use(authmiddleware.New(svcs.Provider))

	api := app.Group(handler.APIPath, auth.RequireAuthenticated())

	err := errors.Join(
		login.Handler.Init(app, cfg, svcs.Provider, svcs.Audit),
		logout.Handler.Init(app, cfg, svcs.Audit),
		me.Handler.Init(api, svcs.Guard, svcs.Provider),
		dashboard.Handler.Init(api, svcs.Employees, svcs.Attendance),
		employees.Handler.Init(api, svcs.Employees),
		attendancehandler.Handler.Init(api, svcs.Attendance),
		financialhandler.Handler.Init(api, svcs.Financial),
		pix.Handler.Init(api, svcs.Pix),
		usershandler.Handler.Init(api, svcs.Users),
		permissions.Handler.Init(api, svcs.Users),
		reports.Handler.Init(api, svcs.Guard, svcs.Audit),
		errorlog.Handler.Init(api, svcs.Tracker),
		settingshandler.Handler.Init(api, svcs.Settings),
		data.Handler.Init(api, svcs.Data),
		configuration.Handler.Init(api, cfg, svcs.Guard),
	)
	if err != nil {
		return nil, err
	}

	return service, nil
}
