package httpcontroller

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/shirou/gopsutil/v3/disk"
	"github.com/shirou/gopsutil/v3/mem"

	"github.com/Keithclinton/Counter-Front/internal/processor"
)

// Fallback map position used for scans stored without a GPS fix.
const (
	fallbackLatitude  = -1.2284
	fallbackLongitude = 36.8722
)

const (
	defaultPerPage = 100
	maxPerPage     = 500
)

// PredictResponse is the JSON body returned for a processed scan.
type PredictResponse struct {
	ID          uint   `json:"id"`
	IsAuthentic bool   `json:"is_authentic"`
	Brand       string `json:"brand"`
	BatchNo     string `json:"batch_no"`
	Date        string `json:"date"`
	Confidence  string `json:"confidence"`
	Latitude    string `json:"latitude"`
	Longitude   string `json:"longitude"`
	ImageURL    string `json:"image_url"`
	Message     string `json:"message"`
}

// LocationPoint is one scan rendered on the admin map.
type LocationPoint struct {
	ID          uint    `json:"id"`
	Lat         float64 `json:"lat"`
	Lng         float64 `json:"lng"`
	IsAuthentic bool    `json:"is_authentic"`
	Brand       string  `json:"brand"`
	BatchNo     string  `json:"batch_no"`
	Confidence  string  `json:"confidence"`
	Date        string  `json:"date"`
	ImageURL    string  `json:"image_url"`
}

func (s *Server) handleHome(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"message": "Welcome to the Alcohol Detection API",
	})
}

func (s *Server) handlePredict(c echo.Context) error {
	fileHeader, err := c.FormFile("image")
	if err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse(err, "image file is required", http.StatusBadRequest))
	}

	src, err := fileHeader.Open()
	if err != nil {
		return s.HandleError(c, err, "failed to read uploaded image")
	}
	defer src.Close()

	// Omitted coordinates behave like the client's explicit "no fix" value.
	latitude := c.FormValue("latitude")
	if strings.TrimSpace(latitude) == "" {
		latitude = "Unknown"
	}
	longitude := c.FormValue("longitude")
	if strings.TrimSpace(longitude) == "" {
		longitude = "Unknown"
	}

	report, err := s.Processor.Process(c.Request().Context(), &processor.Request{
		Brand:     c.FormValue("brand"),
		Filename:  fileHeader.Filename,
		Size:      fileHeader.Size,
		Reader:    src,
		Latitude:  latitude,
		Longitude: longitude,
	})
	if err != nil {
		return s.HandleError(c, err, "failed to process scan")
	}

	// The map view must pick up the new scan on its next poll
	s.locationCache.Flush()

	message := "Counterfeit detected"
	if report.Scan.IsAuthentic {
		message = "Authentic"
	}

	return c.JSON(http.StatusOK, PredictResponse{
		ID:          report.Scan.ID,
		IsAuthentic: report.Scan.IsAuthentic,
		Brand:       report.Scan.Brand,
		BatchNo:     report.Scan.BatchNo,
		Date:        report.Scan.Date,
		Confidence:  formatConfidence(report.Score),
		Latitude:    latitude,
		Longitude:   longitude,
		ImageURL:    report.Scan.ImageURL,
		Message:     message,
	})
}

func (s *Server) handleLocations(c echo.Context) error {
	page, err := strconv.Atoi(c.QueryParam("page"))
	if err != nil || page < 1 {
		page = 1
	}
	perPage, err := strconv.Atoi(c.QueryParam("per_page"))
	if err != nil || perPage < 1 {
		perPage = defaultPerPage
	}
	if perPage > maxPerPage {
		perPage = maxPerPage
	}

	cacheKey := fmt.Sprintf("locations:%d:%d", page, perPage)
	if cached, found := s.locationCache.Get(cacheKey); found {
		return c.JSON(http.StatusOK, cached)
	}

	scans, err := s.DS.List(perPage, (page-1)*perPage)
	if err != nil {
		return s.HandleError(c, err, "failed to query scan locations")
	}

	locations := make([]LocationPoint, 0, len(scans))
	for i := range scans {
		scan := &scans[i]
		point := LocationPoint{
			ID:          scan.ID,
			Lat:         fallbackLatitude,
			Lng:         fallbackLongitude,
			IsAuthentic: scan.IsAuthentic,
			Brand:       scan.Brand,
			BatchNo:     scan.BatchNo,
			Confidence:  formatConfidence(scan.Confidence),
			Date:        scan.Date,
			ImageURL:    scan.ImageURL,
		}
		if scan.Latitude != nil && scan.Longitude != nil {
			point.Lat = *scan.Latitude
			point.Lng = *scan.Longitude
		}
		locations = append(locations, point)
	}

	response := map[string]any{"locations": locations}
	s.locationCache.SetDefault(cacheKey, response)
	return c.JSON(http.StatusOK, response)
}

func (s *Server) handleHealth(c echo.Context) error {
	dbConnected := s.DS != nil && s.DS.Ping() == nil
	modelLoaded := s.Processor != nil && s.Processor.Scorer != nil && s.Processor.Scorer.Loaded()

	status := "healthy"
	if !dbConnected {
		status = "unhealthy"
	}

	body := map[string]any{
		"status":             status,
		"model_loaded":       modelLoaded,
		"database_connected": dbConnected,
		"uptime_seconds":     int64(time.Since(s.startTime).Seconds()),
	}
	system := map[string]any{}
	if vm, err := mem.VirtualMemory(); err == nil {
		system["memory_total"] = vm.Total
		system["memory_used_percent"] = fmt.Sprintf("%.1f", vm.UsedPercent)
	}
	if du, err := disk.Usage(s.Settings.Upload.Path); err == nil {
		system["disk_free"] = du.Free
		system["disk_used_percent"] = fmt.Sprintf("%.1f", du.UsedPercent)
	}
	if len(system) > 0 {
		body["system"] = system
	}
	return c.JSON(http.StatusOK, body)
}

func (s *Server) handlePredictHealth(c echo.Context) error {
	if s.Processor != nil && s.Processor.Scorer != nil && s.Processor.Scorer.Loaded() {
		return c.JSON(http.StatusOK, map[string]any{
			"status":       "healthy",
			"model_loaded": true,
			"message":      "Prediction endpoint is healthy",
		})
	}
	return c.JSON(http.StatusInternalServerError,
		NewErrorResponse(nil, "Model not loaded", http.StatusInternalServerError))
}

// handleUploadedFile serves a stored scan image. The filename is reduced to
// its base name so the route cannot escape the upload directory.
func (s *Server) handleUploadedFile(c echo.Context) error {
	name := filepath.Base(c.Param("filename"))
	if name == "." || name == ".." || strings.ContainsAny(name, `/\`) {
		return c.JSON(http.StatusBadRequest,
			NewErrorResponse(nil, "invalid filename", http.StatusBadRequest))
	}

	path := filepath.Join(s.Settings.Upload.Path, name)
	if _, err := os.Stat(path); err != nil {
		return c.JSON(http.StatusNotFound,
			NewErrorResponse(nil, "File not found", http.StatusNotFound))
	}
	return c.File(path)
}

// formatConfidence renders a 0..1 score as a percentage string, e.g. "92.35%".
func formatConfidence(score float64) string {
	return fmt.Sprintf("%.2f%%", score*100)
}
