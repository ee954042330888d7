// Package daemon opens the database, builds the services and runs the web
// service together with the background error flusher.
package daemon

import (
	"context"
	"fmt"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/gofiber/fiber/v2"
	sessionmysql "github.com/gofiber/storage/mysql/v2"
	sessionpostgres "github.com/gofiber/storage/postgres/v3"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	gormmysql "gorm.io/driver/mysql"
	gormpostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/PontoAdmin/ponto-admin/internal/attendance"
	"github.com/PontoAdmin/ponto-admin/internal/audit"
	"github.com/PontoAdmin/ponto-admin/internal/auth"
	"github.com/PontoAdmin/ponto-admin/internal/config"
	"github.com/PontoAdmin/ponto-admin/internal/datamanagement"
	"github.com/PontoAdmin/ponto-admin/internal/db/dsn"
	"github.com/PontoAdmin/ponto-admin/internal/db/models"
	"github.com/PontoAdmin/ponto-admin/internal/employee"
	"github.com/PontoAdmin/ponto-admin/internal/errortrack"
	"github.com/PontoAdmin/ponto-admin/internal/financial"
	"github.com/PontoAdmin/ponto-admin/internal/logger/adapter/stdlogger"
	"github.com/PontoAdmin/ponto-admin/internal/permission"
	"github.com/PontoAdmin/ponto-admin/internal/pixexport"
	"github.com/PontoAdmin/ponto-admin/internal/settings"
	"github.com/PontoAdmin/ponto-admin/internal/users"
	"github.com/PontoAdmin/ponto-admin/internal/web"
	"github.com/PontoAdmin/ponto-admin/internal/web/session"
)

const (
	sessionTable  = "sessions"
	slowThreshold = 200 * time.Millisecond
	flushTimeout  = 10 * time.Second
)

// Daemon represents the main application daemon.
type Daemon struct {
	cfg        *config.Config
	db         *gorm.DB
	webService *web.Service
	tracker    *errortrack.Tracker
}

// Start serves HTTP until SIGINT or SIGTERM, then folds the pending error
// counts into their rows.
func (d *Daemon) Start() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go d.tracker.Run(ctx, d.cfg.ErrorTracking.FlushInterval)
	go d.webService.WaitShutdown()

	err := d.webService.Start(fmt.Sprintf(":%d", d.cfg.Webserver.Port))

	cancel()

	flushCtx, flushCancel := context.WithTimeout(context.Background(), flushTimeout)
	defer flushCancel()

	if ferr := d.tracker.Flush(flushCtx); ferr != nil {
		log.Warn().Err(ferr).Msg("errortrack: final flush failed")
	}

	return err
}

// Open connects to the configured database.
func Open(cfg *config.Config) (*gorm.DB, error) {
	source, err := dsn.Create(cfg)
	if err != nil {
		return nil, err
	}

	var dialector gorm.Dialector

	switch cfg.DB.GormEngine {
	case config.EngineMySQL:
		dialector = gormmysql.Open(source)
	case config.EnginePostgres:
		dialector = gormpostgres.Open(source)
	default:
		dialector = sqlite.Open(source)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: gormlogger.New(stdlogger.NewComponent("gorm"), gormlogger.Config{
			SlowThreshold:             slowThreshold,
			LogLevel:                  gormlogger.Warn,
			IgnoreRecordNotFoundError: true,
		}),
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to connect database")
	}

	if cfg.DB.GormEngine == config.EngineSQLite {
		sqlDB, err := db.DB()
		if err != nil {
			return nil, errors.Wrap(err, "failed to get sqlite pool")
		}

		sqlDB.SetMaxOpenConns(1)
	}

	return db, nil
}

// Migrate creates or updates every table.
func Migrate(db *gorm.DB) error {
	return errors.Wrap(db.AutoMigrate(models.All()...), "failed to migrate database")
}

// sessionStorage keeps sessions in the application database. SQLite uses
// the in-memory store of the session middleware.
func sessionStorage(cfg *config.Config) (fiber.Storage, error) {
	switch cfg.DB.GormEngine {
	case config.EngineMySQL:
		source, err := dsn.Create(cfg)
		if err != nil {
			return nil, err
		}

		return sessionmysql.New(sessionmysql.Config{
			ConnectionURI: source,
			Table:         sessionTable,
		}), nil
	case config.EnginePostgres:
		return sessionpostgres.New(sessionpostgres.Config{
			Host:     cfg.DB.Host,
			Port:     cfg.DB.Port,
			Username: cfg.DB.User,
			Password: cfg.DB.Password,
			Database: cfg.DB.Name,
			Table:    sessionTable,
		}), nil
	default:
		return nil, nil
	}
}

// Build creates every service over db.
func Build(ctx context.Context, cfg *config.Config, db *gorm.DB) web.Services {
	store := permission.NewStore(db)
	guard := permission.NewGuard(permission.NewAccountResolver(db, store))
	auditService := audit.New(ctx, db, cfg.Audit.Enabled)

	tracker := errortrack.New(ctx, db, guard, errortrack.Options{
		Window:         cfg.ErrorTracking.DebounceWindow,
		NotifyFallback: cfg.ErrorTracking.NotifyCritical,
	})

	conc := cfg.Bulk.Concurrency

	return web.Services{
		Guard:      guard,
		Provider:   auth.NewLocalProvider(db),
		Audit:      auditService,
		Tracker:    tracker,
		Employees:  employee.New(db, guard, conc),
		Attendance: attendance.New(db, guard, conc),
		Financial:  financial.New(db, guard, auditService, conc),
		Pix:        pixexport.New(db, guard, auditService),
		Users:      users.New(db, guard, store, auditService),
		Settings: settings.New(db, guard, auditService, settings.Options{
			AuditFallback:  cfg.Audit.Enabled,
			NotifyFallback: cfg.ErrorTracking.NotifyCritical,
			RetentionDays:  cfg.Retention.Days,
		}, auditService, tracker),
		Data: datamanagement.New(db, guard, auditService, cfg.Retention.Days, conc),
	}
}

// New opens and seeds the database and builds the web service.
func New(cfg *config.Config) (*Daemon, error) {
	if cfg == nil {
		return nil, errors.New("config is nil")
	}

	db, err := Open(cfg)
	if err != nil {
		return nil, err
	}

	if err = Migrate(db); err != nil {
		return nil, err
	}

	ctx := context.Background()

	if err = Seed(ctx, cfg, db); err != nil {
		return nil, err
	}

	storage, err := sessionStorage(cfg)
	if err != nil {
		return nil, err
	}

	session.Init(storage)

	svcs := Build(ctx, cfg, db)

	webService, err := web.New(cfg, svcs)
	if err != nil {
		return nil, errors.Wrap(err, "failed to register handlers")
	}

	return &Daemon{
		cfg:        cfg,
		db:         db,
		webService: webService,
		tracker:    svcs.Tracker,
	}, nil
}
