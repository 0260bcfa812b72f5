package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequired(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
}

func TestLoadDefaults(t *testing.T) {
	setRequired(t)

	s, err := Load()
	require.NoError(t, err)
	assert.Equal(t, ":8080", s.HTTPAddr)
	assert.Equal(t, TariffSourceDB, s.TariffSource)
	assert.Equal(t, 90*time.Second, s.GeocoderTimeout)
	assert.Equal(t, time.Second, s.GeocoderPause)
	assert.Equal(t, 1.25, s.WindingFactor)
	assert.False(t, s.AllowDegraded)
	assert.Equal(t, "info", s.LogLevel)
	assert.Contains(t, s.Database.DSN(), "dbname=rail_distance")
}

func TestLoadOverrides(t *testing.T) {
	setRequired(t)
	t.Setenv("TARIFF_SOURCE", "FILES")
	t.Setenv("TARIFF_DATA_DIR", "/data/tariff")
	t.Setenv("GEOCODER_PAUSE", "250ms")
	t.Setenv("WINDING_FACTOR", "1.4")
	t.Setenv("ALLOW_DEGRADED", "true")

	s, err := Load()
	require.NoError(t, err)
	assert.Equal(t, TariffSourceFiles, s.TariffSource)
	assert.Equal(t, 250*time.Millisecond, s.GeocoderPause)
	assert.Equal(t, 1.4, s.WindingFactor)
	assert.True(t, s.AllowDegraded)
}

func TestLoadRejectsInvalid(t *testing.T) {
	cases := map[string]map[string]string{
		"winding not above one": {"WINDING_FACTOR": "1"},
		"bad duration":          {"GEOCODER_PAUSE": "soon"},
		"files without dir":     {"TARIFF_SOURCE": "files"},
		"unknown source":        {"TARIFF_SOURCE": "ftp"},
		"admin without pass":    {"ADMIN_EMAIL": "admin@example.com"},
	}
	for name, env := range cases {
		t.Run(name, func(t *testing.T) {
			setRequired(t)
			for k, v := range env {
				t.Setenv(k, v)
			}
			_, err := Load()
			assert.Error(t, err)
		})
	}
}
