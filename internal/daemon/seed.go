package daemon

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"strconv"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/PontoAdmin/ponto-admin/internal/config"
	"github.com/PontoAdmin/ponto-admin/internal/db/controller/retention"
	"github.com/PontoAdmin/ponto-admin/internal/db/controller/setting"
	"github.com/PontoAdmin/ponto-admin/internal/db/models"
	"github.com/PontoAdmin/ponto-admin/internal/permission"
)

const (
	// EnvAdminPassword sets the password of the super user on first start.
	EnvAdminPassword = "PONTO_ADMIN_PASSWORD"

	adminUsername        = "admin"
	defaultAdminPassword = "changeme"
)

// Seed creates the super user account and stores the setting defaults of
// cfg. Existing rows are left untouched.
func Seed(ctx context.Context, cfg *config.Config, db *gorm.DB) error {
	if err := seedAdmin(ctx, db); err != nil {
		return err
	}

	policy, err := json.Marshal(retention.Default(cfg.Retention.Days))
	if err != nil {
		return err
	}

	defaults := []struct {
		name  string
		value []byte
	}{
		{setting.KeyAuditLogEnabled, []byte(strconv.FormatBool(cfg.Audit.Enabled))},
		{setting.KeyErrorNotifyCritical, []byte(strconv.FormatBool(cfg.ErrorTracking.NotifyCritical))},
		{setting.KeyDataRetention, policy},
	}

	for _, d := range defaults {
		written, err := setting.SetDefault(ctx, db, d.name, d.value)
		if err != nil {
			return err
		}

		if written {
			log.Info().Str("setting", d.name).Msg("seeded setting default")
		}
	}

	return nil
}

func seedAdmin(ctx context.Context, db *gorm.DB) error {
	err := db.WithContext(ctx).Where("id = ?", permission.SuperUserID).First(&models.User{}).Error
	if err == nil {
		return nil
	}

	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	password := os.Getenv(EnvAdminPassword)
	if password == "" {
		password = defaultAdminPassword
		log.Warn().Str("username", adminUsername).Msg("super user created with the default password, change it")
	}

	hash, err := models.HashPassword(password)
	if err != nil {
		return err
	}

	return db.WithContext(ctx).Create(&models.User{
		ID:       permission.SuperUserID,
		Username: adminUsername,
		Email:    "admin@localhost",
		FullName: "Administrador",
		Password: hash,
		Active:   true,
	}).Error
}
