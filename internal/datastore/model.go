// model.go this code defines the data model for the application
package datastore

import "time"

// ScanResult represents a single scored scan of an uploaded product image.
// Rows are created once per successful prediction and never mutated.
type ScanResult struct {
	ID          uint     `gorm:"primaryKey"`
	Brand       string   `gorm:"index:idx_scan_results_brand"`
	BatchNo     string   `gorm:"index:idx_scan_results_batch_no"`
	Date        string   `gorm:"index:idx_scan_results_date"` // date of inference, YYYY-MM-DD
	Confidence  float64  // raw classifier score in [0,1]
	IsAuthentic bool     // confidence >= threshold, higher score means more authentic
	Latitude    *float64 // nil when the coordinate was not supplied
	Longitude   *float64
	ImageURL    string    // stored image filename when retention is enabled
	CreatedAt   time.Time `gorm:"index"`
}
