package datastore

import (
	"context"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"time"

	"github.com/attendcast/attendcast/internal/analytics"
	"github.com/attendcast/attendcast/internal/services"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// AttendanceRow is a row of the monthly attendance table. A NULL
// proportion is read as NaN and dropped by the feature builder.
type AttendanceRow struct {
	ApplicationID     string   `gorm:"column:application_id;index"`
	Year              int      `gorm:"column:year"`
	Month             int      `gorm:"column:month"`
	AvgTrueProportion *float64 `gorm:"column:avg_true_proportion"`
}

// Proportion returns the row's proportion, or NaN when it is NULL
func (r AttendanceRow) Proportion() float64 {
	if r.AvgTrueProportion == nil {
		return math.NaN()
	}
	return *r.AvgTrueProportion
}

// ErrorRow is a row of the error table
type ErrorRow struct {
	ID            uint      `gorm:"primaryKey"`
	RunID         string    `gorm:"column:run_id;index"`
	ApplicationID string    `gorm:"column:application_id"`
	Model         string    `gorm:"column:model"`
	MSE           float64   `gorm:"column:mse"`
	CreatedAt     time.Time `gorm:"column:created_at"`
}

// ForecastRow is a row of the forecast table
type ForecastRow struct {
	ID            uint      `gorm:"primaryKey"`
	RunID         string    `gorm:"column:run_id;index"`
	ApplicationID string    `gorm:"column:application_id"`
	Date          string    `gorm:"column:date"`
	Model         string    `gorm:"column:model"`
	Prediction    float64   `gorm:"column:prediction"`
	MSE           float64   `gorm:"column:mse"`
	CreatedAt     time.Time `gorm:"column:created_at"`
}

// OpenSQLite opens a SQLite database through gorm. Parent directories of a
// file path are created; ":memory:" is passed through.
func OpenSQLite(path string) (*gorm.DB, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite database: %w", err)
	}

	// Every connection to ":memory:" sees its own empty database.
	if path == ":memory:" {
		sqlDB, err := db.DB()
		if err != nil {
			return nil, err
		}
		sqlDB.SetMaxOpenConns(1)
	}
	return db, nil
}

// SQLiteSource reads the attendance table from SQLite
type SQLiteSource struct {
	db    *gorm.DB
	table string
	owned bool
}

// OpenSQLiteSource opens the database at path and reads from table
func OpenSQLiteSource(path, table string) (*SQLiteSource, error) {
	db, err := OpenSQLite(path)
	if err != nil {
		return nil, err
	}
	return &SQLiteSource{db: db, table: table, owned: true}, nil
}

// NewSQLiteSource reads table from an open database
func NewSQLiteSource(db *gorm.DB, table string) *SQLiteSource {
	return &SQLiteSource{db: db, table: table}
}

// ReadRecords reads the whole attendance table
func (s *SQLiteSource) ReadRecords(ctx context.Context) ([]analytics.AttendanceRecord, error) {
	var rows []AttendanceRow
	err := s.db.WithContext(ctx).
		Table(s.table).
		Order("application_id, year, month").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", s.table, err)
	}

	records := make([]analytics.AttendanceRecord, len(rows))
	for i, r := range rows {
		records[i] = analytics.AttendanceRecord{
			EntityID:          r.ApplicationID,
			Year:              r.Year,
			Month:             r.Month,
			AvgTrueProportion: r.Proportion(),
		}
	}
	return records, nil
}

// Close closes the database if the source opened it
func (s *SQLiteSource) Close() error {
	if !s.owned {
		return nil
	}
	return closeDB(s.db)
}

// SQLiteSink appends the tables of each run to SQLite, tagged with the run id
type SQLiteSink struct {
	db            *gorm.DB
	errorTable    string
	forecastTable string
	owned         bool
}

// OpenSQLiteSink opens the database at path and creates the tables
func OpenSQLiteSink(path, errorTable, forecastTable string) (*SQLiteSink, error) {
	db, err := OpenSQLite(path)
	if err != nil {
		return nil, err
	}

	sink, err := NewSQLiteSink(db, errorTable, forecastTable)
	if err != nil {
		_ = closeDB(db)
		return nil, err
	}
	sink.owned = true
	return sink, nil
}

// NewSQLiteSink writes to an open database and creates the tables
func NewSQLiteSink(db *gorm.DB, errorTable, forecastTable string) (*SQLiteSink, error) {
	if err := db.Table(errorTable).AutoMigrate(&ErrorRow{}); err != nil {
		return nil, fmt.Errorf("failed to migrate %s: %w", errorTable, err)
	}
	if err := db.Table(forecastTable).AutoMigrate(&ForecastRow{}); err != nil {
		return nil, fmt.Errorf("failed to migrate %s: %w", forecastTable, err)
	}
	return &SQLiteSink{db: db, errorTable: errorTable, forecastTable: forecastTable}, nil
}

// WriteResults inserts both tables in one transaction
func (s *SQLiteSink) WriteResults(ctx context.Context, result *services.RunResult) error {
	now := time.Now().UTC()

	errorRows := make([]ErrorRow, len(result.Errors))
	for i, e := range result.Errors {
		errorRows[i] = ErrorRow{
			RunID:         result.RunID,
			ApplicationID: e.EntityID,
			Model:         e.Model,
			MSE:           e.MSE,
			CreatedAt:     now,
		}
	}

	forecastRows := make([]ForecastRow, len(result.Forecasts))
	for i, p := range result.Forecasts {
		forecastRows[i] = ForecastRow{
			RunID:         result.RunID,
			ApplicationID: p.EntityID,
			Date:          p.Date,
			Model:         p.Model,
			Prediction:    p.Prediction,
			MSE:           p.MSE,
			CreatedAt:     now,
		}
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if len(errorRows) > 0 {
			if err := tx.Table(s.errorTable).CreateInBatches(errorRows, 500).Error; err != nil {
				return fmt.Errorf("failed to insert into %s: %w", s.errorTable, err)
			}
		}
		if len(forecastRows) > 0 {
			if err := tx.Table(s.forecastTable).CreateInBatches(forecastRows, 500).Error; err != nil {
				return fmt.Errorf("failed to insert into %s: %w", s.forecastTable, err)
			}
		}
		return nil
	})
}

// ErrorRows returns the error table rows of a run
func (s *SQLiteSink) ErrorRows(ctx context.Context, runID string) ([]ErrorRow, error) {
	var rows []ErrorRow
	err := s.db.WithContext(ctx).Table(s.errorTable).Where("run_id = ?", runID).Order("id").Find(&rows).Error
	return rows, err
}

// ForecastRows returns the forecast table rows of a run
func (s *SQLiteSink) ForecastRows(ctx context.Context, runID string) ([]ForecastRow, error) {
	var rows []ForecastRow
	err := s.db.WithContext(ctx).Table(s.forecastTable).Where("run_id = ?", runID).Order("id").Find(&rows).Error
	return rows, err
}

// Close closes the database if the sink opened it
func (s *SQLiteSink) Close() error {
	if !s.owned {
		return nil
	}
	return closeDB(s.db)
}

func closeDB(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
