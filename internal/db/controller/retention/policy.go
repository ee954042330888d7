// Package retention stores the data retention policy as a JSON setting.
package retention

import (
	"context"
	"encoding/json"
	"errors"

	"gorm.io/gorm"

	"github.com/PontoAdmin/ponto-admin/internal/db/controller/setting"
)

type (
	// Policy controls what the data management cleanup removes.
	Policy struct {
		// Days is the age after which attendance rows and resolved errors are removed.
		Days int `json:"days" validate:"min=30,max=3650"`
		// Attendance enables removal of old attendance rows.
		Attendance bool `json:"attendance"`
		// ResolvedErrors enables removal of old resolved error rows.
		ResolvedErrors bool `json:"resolvedErrors"`
	}
)

// Default returns the policy used when nothing is stored.
func Default(days int) Policy {
	return Policy{Days: days, Attendance: true, ResolvedErrors: true}
}

// Load loads the retention policy from the database.
// It returns setting.ErrSettingNotFound when no policy was saved yet.
func (p *Policy) Load(ctx context.Context, db *gorm.DB) error {
	s, err := setting.Get(ctx, db, setting.KeyDataRetention)
	if err != nil {
		return err
	}

	return json.Unmarshal(s.Value, p)
}

// LoadOrDefault loads the stored policy and falls back to Default(days) when absent.
func LoadOrDefault(ctx context.Context, db *gorm.DB, days int) (Policy, error) {
	p := Default(days)
	err := p.Load(ctx, db)
	if errors.Is(err, setting.ErrSettingNotFound) {
		return Default(days), nil
	}

	return p, err
}

// Save saves the retention policy to the database.
func (p *Policy) Save(ctx context.Context, db *gorm.DB) error {
	data, err := json.Marshal(p)
	if err != nil {
		return err
	}

	_, err = setting.Set(ctx, db, setting.KeyDataRetention, data)

	return err
}
