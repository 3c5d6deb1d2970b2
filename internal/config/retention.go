package config

import (
	"errors"
	"os"

	"github.com/bryan1993-HA/domovra-addons/internal/retention"

	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

// Keys stored in settings.json by the add-on UI.
const (
	settingsKeyWarning  = "retention_days_warning"
	settingsKeyCritical = "retention_days_critical"
)

// RetentionSource yields the retention thresholds to apply right now.
type RetentionSource interface {
	Policy() retention.Policy
}

// StaticRetention always returns the same policy.
type StaticRetention retention.Policy

func (s StaticRetention) Policy() retention.Policy {
	return retention.NewPolicy(s.WarningDays, s.CriticalDays)
}

// SettingsRetention re-reads settings.json on every call so edits made from
// the UI apply without a restart. Missing file or keys fall back to the
// environment values captured at startup.
type SettingsRetention struct {
	path     string
	fallback retention.Policy
}

// NewSettingsRetention builds a source reading path, falling back to the
// WARNING_DAYS / CRITICAL_DAYS values of cfg.
func NewSettingsRetention(cfg *Config) *SettingsRetention {
	return &SettingsRetention{
		path:     cfg.SettingsPath,
		fallback: retention.NewPolicy(cfg.WarningDays, cfg.CriticalDays),
	}
}

func (s *SettingsRetention) Policy() retention.Policy {
	warning, critical := s.fallback.WarningDays, s.fallback.CriticalDays

	v, err := s.read()
	if err != nil {
		return retention.NewPolicy(warning, critical)
	}
	if v.IsSet(settingsKeyWarning) {
		warning = v.GetInt(settingsKeyWarning)
	}
	if v.IsSet(settingsKeyCritical) {
		critical = v.GetInt(settingsKeyCritical)
	}
	return retention.NewPolicy(warning, critical)
}

func (s *SettingsRetention) read() (*viper.Viper, error) {
	if s.path == "" {
		return nil, os.ErrNotExist
	}
	v := viper.New()
	v.SetConfigFile(s.path)
	v.SetConfigType("json")
	if err := v.ReadInConfig(); err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			log.Warn().Err(err).Str("path", s.path).Msg("settings unreadable, using env thresholds")
		}
		return nil, err
	}
	return v, nil
}
