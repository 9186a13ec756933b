package datastore

import (
	"path/filepath"
	"testing"

	"github.com/Keithclinton/Counter-Front/internal/conf"
)

// testSettings returns settings pointing the SQLite store at a temp file.
func testSettings(t *testing.T) *conf.Settings {
	t.Helper()

	settings := &conf.Settings{}
	settings.Output.SQLite.Enabled = true
	settings.Output.SQLite.Path = filepath.Join(t.TempDir(), "results.db")
	return settings
}
