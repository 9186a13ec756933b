package conf

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// validSettings returns a settings struct that passes validation.
func validSettings() *Settings {
	s := &Settings{}
	s.Model = ModelConfig{
		Path:      "alcohol3.tflite",
		LatentDim: 256,
		Sigma:     0.0003,
		InputSize: 224,
		Contrast:  1.2,
		Threshold: 0.4,
		Timeout:   30 * time.Second,
	}
	s.Upload = UploadConfig{
		Path:         "Uploads/",
		MaxSize:      5 * 1024 * 1024,
		AllowedTypes: []string{"png", "jpg", "jpeg"},
	}
	s.WebServer.Port = "8080"
	s.WebServer.RateLimit = 10
	s.Output.SQLite.Enabled = true
	s.Output.SQLite.Path = "results.db"
	return s
}

func TestValidateSettingsAcceptsDefaults(t *testing.T) {
	require.NoError(t, ValidateSettings(validSettings()))
}

func TestValidateSettingsThresholdRange(t *testing.T) {
	s := validSettings()
	s.Model.Threshold = 1.5
	assert.Error(t, ValidateSettings(s))

	s.Model.Threshold = -0.1
	assert.Error(t, ValidateSettings(s))

	s.Model.Threshold = 1.0
	assert.NoError(t, ValidateSettings(s))
}

func TestValidateSettingsDatabaseExclusive(t *testing.T) {
	s := validSettings()
	s.Output.MySQL.Enabled = true
	assert.Error(t, ValidateSettings(s), "both databases enabled")

	s.Output.SQLite.Enabled = false
	assert.NoError(t, ValidateSettings(s), "mysql only")

	s.Output.MySQL.Enabled = false
	assert.Error(t, ValidateSettings(s), "no database enabled")
}

func TestValidateSettingsAdminCredentialsPaired(t *testing.T) {
	s := validSettings()
	s.Security.AdminUsername = "admin"
	assert.Error(t, ValidateSettings(s), "username without hash")

	s.Security.AdminPasswordHash = "$2a$10$abcdefghijklmnopqrstuv"
	assert.NoError(t, ValidateSettings(s))
	assert.True(t, s.AdminEnabled())
}

func TestValidateSettingsAllowedTypesNoDot(t *testing.T) {
	s := validSettings()
	s.Upload.AllowedTypes = []string{".png"}
	assert.Error(t, ValidateSettings(s))
}

func TestValidateSettingsNotifyNeedsURLs(t *testing.T) {
	s := validSettings()
	s.Notify.Enabled = true
	assert.Error(t, ValidateSettings(s))

	s.Notify.URLs = []string{"discord://token@channel"}
	assert.NoError(t, ValidateSettings(s))
}

func TestAllowedExtension(t *testing.T) {
	s := validSettings()

	assert.True(t, s.AllowedExtension("png"))
	assert.True(t, s.AllowedExtension(".JPG"))
	assert.True(t, s.AllowedExtension("jpeg"))
	assert.False(t, s.AllowedExtension("gif"))
	assert.False(t, s.AllowedExtension(""))
}

func TestGenerateRandomSecret(t *testing.T) {
	a := GenerateRandomSecret()
	b := GenerateRandomSecret()
	assert.NotEmpty(t, a)
	assert.NotEqual(t, a, b)
}
