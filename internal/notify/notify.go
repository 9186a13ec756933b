// Package notify dispatches counterfeit detection alerts to external
// messaging services.
package notify

import (
	"context"
	"fmt"
	"io"
	"log"
	"log/slog"
	"slices"
	"strings"
	"time"

	shoutrrr "github.com/nicholas-fedor/shoutrrr"
	router "github.com/nicholas-fedor/shoutrrr/pkg/router"
	stypes "github.com/nicholas-fedor/shoutrrr/pkg/types"

	"github.com/Keithclinton/Counter-Front/internal/conf"
	"github.com/Keithclinton/Counter-Front/internal/errors"
	"github.com/Keithclinton/Counter-Front/internal/logging"
)

// Alert describes a single counterfeit detection worth telling someone about.
type Alert struct {
	Brand      string
	BatchNo    string
	Confidence float64
	Latitude   *float64
	Longitude  *float64
	Time       time.Time
}

// Sink receives alerts. Implementations must be safe for concurrent use.
type Sink interface {
	Send(ctx context.Context, alert Alert) error
}

// Noop is a Sink that discards all alerts. Used when notifications are
// disabled in the configuration.
type Noop struct{}

func (Noop) Send(context.Context, Alert) error { return nil }

// ShoutrrrSink sends alerts through one or more shoutrrr service URLs.
type ShoutrrrSink struct {
	urls   []string
	sender *router.ServiceRouter
	logger *slog.Logger
}

// NewSink builds a Sink from the notification settings. When notifications
// are disabled or no URLs are configured it returns a Noop sink.
func NewSink(settings *conf.NotifyConfig) (Sink, error) {
	if settings == nil || !settings.Enabled || len(settings.URLs) == 0 {
		return Noop{}, nil
	}

	sender, err := shoutrrr.CreateSender(settings.URLs...)
	if err != nil {
		return nil, errors.New(err).
			Component("notify").
			Category(errors.CategoryNotification).
			Context("operation", "create_sender").
			Build()
	}
	sender.SetLogger(log.New(io.Discard, "", 0))

	return &ShoutrrrSink{
		urls:   slices.Clone(settings.URLs),
		sender: sender,
		logger: logging.ForService("notify"),
	}, nil
}

// Send delivers the alert to every configured service. The first delivery
// failure is returned; remaining services are still attempted by the router.
func (s *ShoutrrrSink) Send(ctx context.Context, alert Alert) error {
	if s.sender == nil {
		return errors.Newf("notification sender not initialized").
			Component("notify").
			Category(errors.CategoryNotification).
			Build()
	}
	_ = ctx // the router applies its own per-service timeouts

	params := stypes.Params{}
	params.SetTitle("Counterfeit product detected")

	errs := s.sender.Send(formatAlert(alert), &params)
	for _, e := range errs {
		if e != nil {
			return errors.New(e).
				Component("notify").
				Category(errors.CategoryNotification).
				Context("operation", "send").
				Build()
		}
	}

	s.logger.Info("counterfeit alert dispatched",
		"brand", alert.Brand,
		"batch_no", alert.BatchNo)
	return nil
}

func formatAlert(alert Alert) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Counterfeit detected: %s (batch %s)\n", alert.Brand, alert.BatchNo)
	fmt.Fprintf(&b, "Confidence: %.2f%%\n", alert.Confidence*100)
	if alert.Latitude != nil && alert.Longitude != nil {
		fmt.Fprintf(&b, "Location: %.4f, %.4f\n", *alert.Latitude, *alert.Longitude)
	} else {
		b.WriteString("Location: unknown\n")
	}
	fmt.Fprintf(&b, "Scanned at: %s", alert.Time.Format(time.RFC3339))
	return b.String()
}
