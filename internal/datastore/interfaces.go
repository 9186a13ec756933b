// interfaces.go: this code defines the interface for the database operations
package datastore

import (
	"fmt"
	"log"
	"os"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/Keithclinton/Counter-Front/internal/conf"
	"github.com/Keithclinton/Counter-Front/internal/errors"
)

// Interface abstracts the underlying database implementation and defines the
// operations the scan pipeline needs.
type Interface interface {
	Open() error
	Save(scan *ScanResult) error
	Get(id uint) (ScanResult, error)
	List(limit, offset int) ([]ScanResult, error)
	Count() (int64, error)
	Ping() error
	Close() error
}

// DataStore implements Interface using a GORM database.
type DataStore struct {
	DB *gorm.DB // GORM database instance
}

// New creates a new datastore instance based on the enabled output.
func New(settings *conf.Settings) Interface {
	switch {
	case settings.Output.SQLite.Enabled:
		return &SQLiteStore{
			Settings: settings,
		}
	case settings.Output.MySQL.Enabled:
		return &MySQLStore{
			Settings: settings,
		}
	default:
		return nil
	}
}

// Save stores a scan result as a single transaction in the database. The row
// is either fully visible with all fields or not visible at all.
func (ds *DataStore) Save(scan *ScanResult) error {
	if ds.DB == nil {
		return errors.Newf("database connection is not initialized").
			Component("datastore").
			Category(errors.CategoryDatabase).
			Build()
	}

	err := ds.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(scan).Error; err != nil {
			return fmt.Errorf("saving scan result: %w", err)
		}
		return nil
	})
	if err != nil {
		return errors.New(err).
			Component("datastore").
			Category(errors.CategoryDatabase).
			Context("brand", scan.Brand).
			Build()
	}
	return nil
}

// Get retrieves a scan result by its ID from the database.
func (ds *DataStore) Get(id uint) (ScanResult, error) {
	var scan ScanResult
	if err := ds.DB.First(&scan, id).Error; err != nil {
		category := errors.CategoryDatabase
		if errors.Is(err, gorm.ErrRecordNotFound) {
			category = errors.CategoryNotFound
		}
		return ScanResult{}, errors.New(fmt.Errorf("getting scan with ID %d: %w", id, err)).
			Component("datastore").
			Category(category).
			Build()
	}
	return scan, nil
}

// List returns stored scans ordered by id ascending, sliced by limit and
// offset. Clamping of the page size is the caller's concern.
func (ds *DataStore) List(limit, offset int) ([]ScanResult, error) {
	var scans []ScanResult

	err := ds.DB.Order("id ASC").
		Limit(limit).
		Offset(offset).
		Find(&scans).Error
	if err != nil {
		return nil, errors.New(fmt.Errorf("listing scans: %w", err)).
			Component("datastore").
			Category(errors.CategoryDatabase).
			Build()
	}
	return scans, nil
}

// Count returns the total number of stored scans.
func (ds *DataStore) Count() (int64, error) {
	var count int64
	if err := ds.DB.Model(&ScanResult{}).Count(&count).Error; err != nil {
		return 0, errors.New(fmt.Errorf("counting scans: %w", err)).
			Component("datastore").
			Category(errors.CategoryDatabase).
			Build()
	}
	return count, nil
}

// Ping verifies database connectivity with a trivial query.
func (ds *DataStore) Ping() error {
	if ds.DB == nil {
		return fmt.Errorf("database connection is not initialized")
	}
	return ds.DB.Exec("SELECT 1").Error
}

// performAutoMigration automates database migrations with error handling.
func performAutoMigration(db *gorm.DB, debug bool, dbType, connectionInfo string) error {
	if err := db.AutoMigrate(&ScanResult{}); err != nil {
		return fmt.Errorf("failed to auto-migrate %s database: %w", dbType, err)
	}

	if debug {
		log.Printf("%s database connection initialized: %s", dbType, connectionInfo)
	}

	return nil
}

// createGormLogger configures and returns a new GORM logger instance.
func createGormLogger() logger.Interface {
	return logger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		logger.Config{
			SlowThreshold: 200 * time.Millisecond,
			LogLevel:      logger.Warn,
			Colorful:      true,
		},
	)
}
