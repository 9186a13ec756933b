package conf

import (
	"fmt"
	"strings"
)

// ValidateSettings checks the loaded settings for consistency. It returns an
// error describing the first problem found.
func ValidateSettings(settings *Settings) error {
	if settings.Model.Path == "" {
		return fmt.Errorf("model.path must not be empty")
	}

	if settings.Model.Threshold < 0 || settings.Model.Threshold > 1 {
		return fmt.Errorf("model.threshold must be in [0,1], got %f", settings.Model.Threshold)
	}

	if settings.Model.LatentDim <= 0 {
		return fmt.Errorf("model.latentdim must be positive, got %d", settings.Model.LatentDim)
	}

	if settings.Model.InputSize <= 0 {
		return fmt.Errorf("model.inputsize must be positive, got %d", settings.Model.InputSize)
	}

	if settings.Model.Sigma < 0 {
		return fmt.Errorf("model.sigma must not be negative, got %f", settings.Model.Sigma)
	}

	if settings.Upload.MaxSize <= 0 {
		return fmt.Errorf("upload.maxsize must be positive, got %d", settings.Upload.MaxSize)
	}

	if len(settings.Upload.AllowedTypes) == 0 {
		return fmt.Errorf("upload.allowedtypes must not be empty")
	}
	for _, ext := range settings.Upload.AllowedTypes {
		if strings.HasPrefix(ext, ".") {
			return fmt.Errorf("upload.allowedtypes entries must not include the dot: %q", ext)
		}
	}

	if settings.WebServer.RateLimit <= 0 {
		return fmt.Errorf("webserver.ratelimit must be positive, got %f", settings.WebServer.RateLimit)
	}

	sqliteEnabled := settings.Output.SQLite.Enabled
	mysqlEnabled := settings.Output.MySQL.Enabled
	if sqliteEnabled && mysqlEnabled {
		return fmt.Errorf("only one database output can be enabled at a time")
	}
	if !sqliteEnabled && !mysqlEnabled {
		return fmt.Errorf("one database output must be enabled")
	}

	// Admin credentials come as a pair; a hash without a username and the
	// other way around is a config mistake, not a disabled admin view.
	hasUser := settings.Security.AdminUsername != ""
	hasHash := settings.Security.AdminPasswordHash != ""
	if hasUser != hasHash {
		return fmt.Errorf("security.adminusername and security.adminpasswordhash must be set together")
	}

	if settings.Notify.Enabled && len(settings.Notify.URLs) == 0 {
		return fmt.Errorf("notify.enabled requires at least one notify.urls entry")
	}
	if settings.Notify.Threshold < 0 || settings.Notify.Threshold > 1 {
		return fmt.Errorf("notify.threshold must be in [0,1], got %f", settings.Notify.Threshold)
	}

	return nil
}

// AdminEnabled reports whether the admin map view is configured.
func (s *Settings) AdminEnabled() bool {
	return s.Security.AdminUsername != "" && s.Security.AdminPasswordHash != ""
}

// AllowedExtension reports whether ext (without dot, any case) is an accepted
// upload file type.
func (s *Settings) AllowedExtension(ext string) bool {
	ext = strings.ToLower(strings.TrimPrefix(ext, "."))
	for _, allowed := range s.Upload.AllowedTypes {
		if strings.EqualFold(allowed, ext) {
			return true
		}
	}
	return false
}
