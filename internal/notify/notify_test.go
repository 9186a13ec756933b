package notify

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Keithclinton/Counter-Front/internal/conf"
)

func TestNewSinkDisabled(t *testing.T) {
	sink, err := NewSink(&conf.NotifyConfig{Enabled: false})
	require.NoError(t, err)
	assert.IsType(t, Noop{}, sink)

	sink, err = NewSink(&conf.NotifyConfig{Enabled: true, URLs: nil})
	require.NoError(t, err)
	assert.IsType(t, Noop{}, sink)

	sink, err = NewSink(nil)
	require.NoError(t, err)
	assert.IsType(t, Noop{}, sink)
}

func TestNewSinkInvalidURL(t *testing.T) {
	_, err := NewSink(&conf.NotifyConfig{
		Enabled: true,
		URLs:    []string{"not-a-service-url"},
	})
	assert.Error(t, err)
}

func TestNoopSend(t *testing.T) {
	var sink Noop
	assert.NoError(t, sink.Send(context.Background(), Alert{Brand: "Test"}))
}

func TestFormatAlert(t *testing.T) {
	lat, lon := -1.2284, 36.8722
	when := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	msg := formatAlert(Alert{
		Brand:      "Gilbeys",
		BatchNo:    "GIL-2025-a1b2",
		Confidence: 0.12,
		Latitude:   &lat,
		Longitude:  &lon,
		Time:       when,
	})

	assert.Contains(t, msg, "Gilbeys")
	assert.Contains(t, msg, "GIL-2025-a1b2")
	assert.Contains(t, msg, "12.00%")
	assert.Contains(t, msg, "-1.2284, 36.8722")
	assert.Contains(t, msg, "2025-06-01T12:00:00Z")
}

func TestFormatAlertNoLocation(t *testing.T) {
	msg := formatAlert(Alert{Brand: "Chrome", BatchNo: "CHR-2025-ffff", Time: time.Now()})
	assert.True(t, strings.Contains(msg, "Location: unknown"))
}
