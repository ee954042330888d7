package config

import (
	"time"

	"github.com/PontoAdmin/ponto-admin/internal/logger"
)

// Session settings.
type Session struct {
	ExpiryTime time.Duration
}

// Config overall data structure.
type Config struct {
	DevMode       bool // enable dev mode for development
	DB            DB
	Log           logger.Log
	Title         string
	Webserver     Webserver
	Audit         Audit
	ErrorTracking ErrorTracking
	Bulk          Bulk
	Retention     Retention
}

// Webserver implement webserver settings.
type Webserver struct {
	CleanPath      bool    // use clean path middleware to allow multi slash requests
	DisableRecover bool    // disable recover middleware
	Domain         string  // domain name for the webserver
	Port           int     // listening port for the webserver
	ShutDownTime   int     // wait time for shutdown
	URL            string  // base url for the webserver
	Session        Session // session settings
}

// Audit holds the defaults of the activity log.
// Enabled is only used to seed the audit_log_enabled setting on first start.
type Audit struct {
	Enabled bool
}

// ErrorTracking holds the client error capture settings.
type ErrorTracking struct {
	DebounceWindow time.Duration // identical errors inside this window are counted, not written
	FlushInterval  time.Duration // how often suppressed occurrences are folded into their rows
	NotifyCritical bool          // seed value of the error_notify_critical setting
}

// Bulk holds the settings of batch operations.
type Bulk struct {
	Concurrency int // max concurrent item operations of one batch
}

// Retention holds the data management defaults.
type Retention struct {
	Days int // seed value of the retention_days setting
}
