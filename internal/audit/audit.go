// Package audit records the activity log: who did what, in which module, to which entity.
package audit

import (
	"context"
	"encoding/json"
	"strings"
	"sync/atomic"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/PontoAdmin/ponto-admin/internal/besteffort"
	"github.com/PontoAdmin/ponto-admin/internal/db/controller/setting"
	"github.com/PontoAdmin/ponto-admin/internal/db/models"
)

// ActionType is the kind of a logged action.
type ActionType string

// Action types.
const (
	ActionCreate     ActionType = "create"
	ActionUpdate     ActionType = "update"
	ActionDelete     ActionType = "delete"
	ActionView       ActionType = "view"
	ActionExport     ActionType = "export"
	ActionImport     ActionType = "import"
	ActionLogin      ActionType = "login"
	ActionLogout     ActionType = "logout"
	ActionBulkAction ActionType = "bulk_action"
)

// Module labels.
const (
	ModuleAuth           = "auth"
	ModuleAttendance     = "attendance"
	ModuleEmployees      = "employees"
	ModuleFinancial      = "financial"
	ModuleReports        = "reports"
	ModuleC6Payment      = "c6payment"
	ModuleErrors         = "errors"
	ModuleSettings       = "settings"
	ModuleUsers          = "users"
	ModuleDataManagement = "datamanagement"
	ModulePermissions    = "permissions"
)

const channel = "audit"

// ValidActionType reports whether a is one of the action types.
func ValidActionType(a ActionType) bool {
	switch a {
	case ActionCreate, ActionUpdate, ActionDelete, ActionView, ActionExport,
		ActionImport, ActionLogin, ActionLogout, ActionBulkAction:
		return true
	default:
		return false
	}
}

// Entry is one action to log.
type Entry struct {
	UserID      string
	Action      ActionType
	Module      string
	EntityType  string
	EntityID    string
	OldData     any
	NewData     any
	Description string
	// UserAgent defaults to the one stored in the context by WithUserAgent.
	UserAgent string
}

// Recorder is implemented by Service. Domain services depend on it.
type Recorder interface {
	Log(ctx context.Context, e Entry) besteffort.Outcome
}

// Service writes and queries the activity log. Logging is gated by the
// audit_log_enabled setting, read at construction and again on Refresh.
type Service struct {
	db       *gorm.DB
	fallback bool
	enabled  atomic.Bool
	now      func() time.Time
}

// New creates the service and reads the enabled flag. fallback is used when
// the setting is absent or cannot be read.
func New(ctx context.Context, db *gorm.DB, fallback bool) *Service {
	s := &Service{db: db, fallback: fallback, now: time.Now}
	if err := s.Refresh(ctx); err != nil {
		log.Warn().Err(err).Bool("enabled", fallback).Msg("audit: could not read enabled flag, using default")
	}

	return s
}

// Refresh re-reads the enabled flag from the settings store.
func (s *Service) Refresh(ctx context.Context) error {
	v, err := setting.GetBool(ctx, s.db, setting.KeyAuditLogEnabled, s.fallback)
	s.enabled.Store(v)

	return err
}

// Enabled reports the cached enabled flag.
func (s *Service) Enabled() bool {
	return s.enabled.Load()
}

// Log appends e to the activity log. It never fails the caller: a disabled
// log yields a skipped outcome and write errors are returned in the outcome.
func (s *Service) Log(ctx context.Context, e Entry) besteffort.Outcome {
	if !s.Enabled() {
		return besteffort.Skip(channel)
	}

	if e.UserAgent == "" {
		e.UserAgent = UserAgentFrom(ctx)
	}

	row := models.AuditLog{
		ID:          uuid.NewString(),
		UserID:      e.UserID,
		ActionType:  string(e.Action),
		Module:      e.Module,
		EntityType:  e.EntityType,
		EntityID:    e.EntityID,
		Description: e.Description,
		UserAgent:   truncate(e.UserAgent, 255),
		CreatedAt:   s.now(),
	}

	var err error
	if row.OldData, err = snapshot(e.OldData); err != nil {
		return besteffort.Fail(channel, err)
	}

	if row.NewData, err = snapshot(e.NewData); err != nil {
		return besteffort.Fail(channel, err)
	}

	if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
		return besteffort.Fail(channel, err)
	}

	return besteffort.OK(channel)
}

// snapshot encodes v with sensitive keys redacted. nil stays nil.
func snapshot(v any) (datatypes.JSON, error) {
	if v == nil {
		return nil, nil
	}

	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}

	var generic any
	if err := json.Unmarshal(raw, &generic); err != nil {
		return nil, err
	}

	raw, err = json.Marshal(redact(generic))
	if err != nil {
		return nil, err
	}

	return datatypes.JSON(raw), nil
}

var sensitiveKeys = []string{"password", "secret", "token"} //nolint:gochecknoglobals

func redact(v any) any {
	switch t := v.(type) {
	case map[string]any:
		for k, inner := range t {
			lower := strings.ToLower(k)
			hidden := false

			for _, s := range sensitiveKeys {
				if strings.Contains(lower, s) {
					hidden = true
					break
				}
			}

			if hidden {
				t[k] = "***"
				continue
			}

			t[k] = redact(inner)
		}

		return t
	case []any:
		for i := range t {
			t[i] = redact(t[i])
		}

		return t
	default:
		return v
	}
}

// truncate cuts s to at most n bytes without splitting a UTF-8 sequence.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}

	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}

	return s[:n]
}

type userAgentKey struct{}

// WithUserAgent stores the request user agent for entries logged under ctx.
func WithUserAgent(ctx context.Context, ua string) context.Context {
	return context.WithValue(ctx, userAgentKey{}, ua)
}

// UserAgentFrom returns the user agent stored by WithUserAgent.
func UserAgentFrom(ctx context.Context) string {
	ua, _ := ctx.Value(userAgentKey{}).(string)
	return ua
}
