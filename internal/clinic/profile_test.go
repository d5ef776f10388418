package clinic

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultProfileIsValid(t *testing.T) {
	profile := DefaultProfile()
	require.NoError(t, profile.Validate())

	roster, err := profile.Roster()
	require.NoError(t, err)
	assert.Len(t, roster, 10)
	assert.Equal(t, "08:00 AM", roster[0].Label)
	assert.Len(t, profile.Services, 3)
}

func TestLoadProfileMissingFileUsesDefaults(t *testing.T) {
	profile, err := LoadProfile(filepath.Join(t.TempDir(), "absent.toml"))
	require.NoError(t, err)
	assert.Equal(t, "Mente Novedosa", profile.Name)

	profile, err = LoadProfile("")
	require.NoError(t, err)
	assert.Equal(t, "Psicóloga Rut Ordoñez", profile.Practitioner)
}

func TestLoadProfileOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "clinic.toml")
	content := `
name = "Consultorio Norte"
timezone = "America/Panama"
slots = ["10:00 AM", "11:30 AM", "16:00"]

[[services]]
title = "Terapia de Pareja"
duration = "60 min"
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	profile, err := LoadProfile(path)
	require.NoError(t, err)
	assert.Equal(t, "Consultorio Norte", profile.Name)
	assert.Equal(t, "Psicóloga Rut Ordoñez", profile.Practitioner, "unset keys keep defaults")
	require.Len(t, profile.Services, 1)
	assert.Equal(t, "Terapia de Pareja", profile.Services[0].Title)

	roster, err := profile.Roster()
	require.NoError(t, err)
	assert.Equal(t, 16, roster[2].Hour)

	loc, err := profile.Location()
	require.NoError(t, err)
	assert.Equal(t, "America/Panama", loc.String())
}

func TestLoadProfileRejectsBadRoster(t *testing.T) {
	path := filepath.Join(t.TempDir(), "clinic.toml")
	require.NoError(t, os.WriteFile(path, []byte(`slots = ["soon"]`), 0o644))

	_, err := LoadProfile(path)
	assert.Error(t, err)
}

func TestLoadProfileRejectsBadTimezone(t *testing.T) {
	path := filepath.Join(t.TempDir(), "clinic.toml")
	require.NoError(t, os.WriteFile(path, []byte(`timezone = "Mars/Olympus"`), 0o644))

	_, err := LoadProfile(path)
	assert.Error(t, err)
}

func TestHandlerGetProfile(t *testing.T) {
	handler := NewHandler(nil, nil)
	rr := httptest.NewRecorder()
	handler.GetProfile(rr, httptest.NewRequest(http.MethodGet, "/api/site", nil))

	require.Equal(t, http.StatusOK, rr.Code)
	var body Profile
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&body))
	assert.Equal(t, "Mente Novedosa", body.Name)
	assert.Len(t, body.Testimonials, 2)
}

func TestLoadProfileRejectsUnknownKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "clinic.toml")
	require.NoError(t, os.WriteFile(path, []byte(`nmae = "typo"`), 0o644))

	_, err := LoadProfile(path)
	assert.ErrorContains(t, err, "unknown profile keys")
}
