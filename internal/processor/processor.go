// Package processor orchestrates the scan pipeline: it validates an
// uploaded image, stores it on disk, runs the classifier and persists the
// resulting scan record.
package processor

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Keithclinton/Counter-Front/internal/conf"
	"github.com/Keithclinton/Counter-Front/internal/datastore"
	"github.com/Keithclinton/Counter-Front/internal/errors"
	"github.com/Keithclinton/Counter-Front/internal/imageproc"
	"github.com/Keithclinton/Counter-Front/internal/logging"
	"github.com/Keithclinton/Counter-Front/internal/notify"
	"github.com/Keithclinton/Counter-Front/internal/observability"
)

// Scorer produces an authenticity score for a preprocessed image tensor.
// Higher scores indicate authentic products.
type Scorer interface {
	Predict(ctx context.Context, imageTensor []float32) (float64, error)
	Loaded() bool
}

// Request carries one upload through the pipeline. Latitude and Longitude
// are the raw form values; clients without a GPS fix send "Unknown".
type Request struct {
	Brand     string
	Filename  string
	Size      int64
	Reader    io.Reader
	Latitude  string
	Longitude string
}

// Report is the outcome of a successfully processed scan.
type Report struct {
	Scan  datastore.ScanResult
	Score float64
}

// Processor runs uploads through validation, inference and persistence.
type Processor struct {
	Settings *conf.Settings
	DS       datastore.Interface
	Scorer   Scorer
	Metrics  *observability.Metrics
	Sink     notify.Sink

	logger *slog.Logger
}

// New creates a Processor. Sink may be nil, in which case counterfeit
// alerts are skipped.
func New(settings *conf.Settings, ds datastore.Interface, scorer Scorer, metrics *observability.Metrics, sink notify.Sink) *Processor {
	if sink == nil {
		sink = notify.Noop{}
	}
	return &Processor{
		Settings: settings,
		DS:       ds,
		Scorer:   scorer,
		Metrics:  metrics,
		Sink:     sink,
		logger:   logging.ForService("processor"),
	}
}

// Process runs the full pipeline for one upload. On any error no scan row
// is written and the stored image, if already written, is removed.
func (p *Processor) Process(ctx context.Context, req *Request) (*Report, error) {
	coords, err := p.validate(req)
	if err != nil {
		p.Metrics.RecordValidationFailure(validationReason(err))
		return nil, err
	}

	if p.Scorer == nil || !p.Scorer.Loaded() {
		p.Metrics.RecordPrediction("error")
		return nil, errors.Newf("classifier model is not loaded").
			Component("processor").
			Category(errors.CategoryModelInit).
			Build()
	}

	storedName, storedPath, err := p.storeUpload(req)
	if err != nil {
		p.Metrics.RecordPrediction("error")
		return nil, err
	}

	keep := false
	defer func() {
		if !keep {
			if rmErr := os.Remove(storedPath); rmErr != nil && !os.IsNotExist(rmErr) {
				p.logger.Warn("failed to remove uploaded image", "path", storedPath, "error", rmErr)
			}
		}
	}()

	img, err := imageproc.Load(storedPath, imageproc.Options{
		TargetSize: p.Settings.Model.InputSize,
		Contrast:   p.Settings.Model.Contrast,
	})
	if err != nil {
		p.Metrics.RecordPrediction("error")
		return nil, err
	}

	predictCtx := ctx
	if p.Settings.Model.Timeout > 0 {
		var cancel context.CancelFunc
		predictCtx, cancel = context.WithTimeout(ctx, p.Settings.Model.Timeout)
		defer cancel()
	}

	start := time.Now()
	score, err := p.Scorer.Predict(predictCtx, img)
	p.Metrics.ObserveInference(time.Since(start).Seconds())
	if err != nil {
		p.Metrics.RecordPrediction("error")
		return nil, err
	}

	authentic := score >= p.Settings.Model.Threshold

	// The stored filename is only recorded when the image survives the
	// scan; without retention the /Uploads route would serve a 404.
	imageURL := ""
	if p.Settings.Upload.KeepImages {
		imageURL = storedName
	}
	scan := datastore.ScanResult{
		Brand:       req.Brand,
		BatchNo:     BatchNumber(req.Brand),
		Date:        time.Now().Format("2006-01-02"),
		Confidence:  score,
		IsAuthentic: authentic,
		Latitude:    coords.lat,
		Longitude:   coords.lon,
		ImageURL:    imageURL,
	}
	if err := p.DS.Save(&scan); err != nil {
		p.Metrics.RecordPrediction("error")
		return nil, err
	}

	keep = p.Settings.Upload.KeepImages
	if authentic {
		p.Metrics.RecordPrediction("authentic")
	} else {
		p.Metrics.RecordPrediction("counterfeit")
		if t := p.Settings.Notify.Threshold; t <= 0 || score <= t {
			p.alert(ctx, &scan)
		}
	}

	p.logger.Info("scan processed",
		"id", scan.ID,
		"brand", scan.Brand,
		"batch_no", scan.BatchNo,
		"score", fmt.Sprintf("%.4f", score),
		"authentic", authentic)

	return &Report{Scan: scan, Score: score}, nil
}

// storeUpload writes the upload to the configured directory under a
// collision-free name and returns the stored filename and full path.
func (p *Processor) storeUpload(req *Request) (name, path string, err error) {
	if err := os.MkdirAll(p.Settings.Upload.Path, 0o755); err != nil {
		return "", "", errors.New(err).
			Component("processor").
			Category(errors.CategoryFileIO).
			Context("operation", "create_upload_dir").
			Build()
	}

	hex := strings.ReplaceAll(uuid.New().String(), "-", "")
	name = hex + "_" + strings.ToLower(filepath.Base(req.Filename))
	path = filepath.Join(p.Settings.Upload.Path, name)

	f, err := os.Create(path)
	if err != nil {
		return "", "", errors.New(err).
			Component("processor").
			Category(errors.CategoryFileIO).
			Context("operation", "store_upload").
			Build()
	}
	defer f.Close()

	if _, err := io.Copy(f, req.Reader); err != nil {
		os.Remove(path)
		return "", "", errors.New(err).
			Component("processor").
			Category(errors.CategoryFileIO).
			Context("operation", "store_upload").
			Build()
	}
	return name, path, nil
}

// alert dispatches a counterfeit notification. Delivery failures are logged
// but never fail the scan itself.
func (p *Processor) alert(ctx context.Context, scan *datastore.ScanResult) {
	alert := notify.Alert{
		Brand:      scan.Brand,
		BatchNo:    scan.BatchNo,
		Confidence: scan.Confidence,
		Latitude:   scan.Latitude,
		Longitude:  scan.Longitude,
		Time:       scan.CreatedAt,
	}
	if alert.Time.IsZero() {
		alert.Time = time.Now()
	}
	if err := p.Sink.Send(ctx, alert); err != nil {
		p.logger.Warn("failed to send counterfeit alert", "error", err)
		return
	}
	if _, noop := p.Sink.(notify.Noop); !noop {
		p.Metrics.RecordNotification()
	}
}
