package settings

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/glebarez/sqlite"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// settingsRow is the single row of the user_settings table
type settingsRow struct {
	ID                 uint           `gorm:"primaryKey"`
	SelectedSeasonID   int            `gorm:"not null;default:0"`
	GradeLevel         string         `gorm:"size:32;not null"`
	FavoriteTeams      datatypes.JSON `gorm:"not null"`
	TopBarColor        string         `gorm:"size:7"`
	TopBarContentColor string         `gorm:"size:7"`
	ButtonColor        string         `gorm:"size:7"`
	Minimalistic       bool
	Vibration          bool
	DateFilterActive   bool
	UpdatedAt          int64 `gorm:"autoUpdateTime"`
}

func (settingsRow) TableName() string {
	return "user_settings"
}

// settingsRowID is the primary key of the only settings row
const settingsRowID = 1

// SQLStore implements Store on SQLite through gorm
type SQLStore struct {
	db *gorm.DB
}

// OpenSQLite opens (or creates) a SQLite database. An empty path opens a private in-memory database.
func OpenSQLite(path string) (*gorm.DB, error) {
	dsn := path
	if dsn == "" {
		dsn = "file::memory:"
	}
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		SkipDefaultTransaction: true,
		Logger:                 logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}
	if path == "" {
		// every pooled connection would otherwise get its own empty database
		sqlDB, err := db.DB()
		if err != nil {
			return nil, fmt.Errorf("failed to access sql interface: %w", err)
		}
		sqlDB.SetMaxOpenConns(1)
		return db, nil
	}
	if err := db.Exec("PRAGMA journal_mode = WAL;").Error; err != nil {
		return nil, fmt.Errorf("error setting PRAGMA: %w", err)
	}
	return db, nil
}

// NewSQLStore migrates the settings table and returns a store using db
func NewSQLStore(db *gorm.DB) (*SQLStore, error) {
	if err := db.AutoMigrate(&settingsRow{}); err != nil {
		return nil, fmt.Errorf("failed to migrate settings table: %w", err)
	}
	return &SQLStore{db: db}, nil
}

// Load reads the settings row, or returns Defaults when it does not exist
func (st *SQLStore) Load() (*Settings, error) {
	var row settingsRow
	err := st.db.First(&row, settingsRowID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return Defaults(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load settings: %w", err)
	}

	s := &Settings{
		SelectedSeasonID:   row.SelectedSeasonID,
		GradeLevel:         row.GradeLevel,
		TopBarColor:        row.TopBarColor,
		TopBarContentColor: row.TopBarContentColor,
		ButtonColor:        row.ButtonColor,
		Minimalistic:       row.Minimalistic,
		Vibration:          row.Vibration,
		DateFilterActive:   row.DateFilterActive,
	}
	if len(row.FavoriteTeams) > 0 {
		if err := json.Unmarshal(row.FavoriteTeams, &s.FavoriteTeams); err != nil {
			return nil, fmt.Errorf("failed to decode favorite teams: %w", err)
		}
	}
	s.Normalize()
	return s, nil
}

// Save validates and upserts the settings row
func (st *SQLStore) Save(s *Settings) error {
	if s == nil {
		return fmt.Errorf("settings cannot be nil")
	}
	s.Normalize()
	if err := s.Validate(); err != nil {
		return err
	}
	return st.write(s)
}

// Reset writes Defaults over the stored settings
func (st *SQLStore) Reset() (*Settings, error) {
	s := Defaults()
	if err := st.write(s); err != nil {
		return nil, err
	}
	return s, nil
}

func (st *SQLStore) write(s *Settings) error {
	favorites, err := json.Marshal(s.FavoriteTeams)
	if err != nil {
		return fmt.Errorf("failed to encode favorite teams: %w", err)
	}
	row := settingsRow{
		ID:                 settingsRowID,
		SelectedSeasonID:   s.SelectedSeasonID,
		GradeLevel:         s.GradeLevel,
		FavoriteTeams:      datatypes.JSON(favorites),
		TopBarColor:        s.TopBarColor,
		TopBarContentColor: s.TopBarContentColor,
		ButtonColor:        s.ButtonColor,
		Minimalistic:       s.Minimalistic,
		Vibration:          s.Vibration,
		DateFilterActive:   s.DateFilterActive,
	}
	// Save inserts or updates by primary key, including zero-value fields
	if err := st.db.Save(&row).Error; err != nil {
		return fmt.Errorf("failed to save settings: %w", err)
	}
	return nil
}
