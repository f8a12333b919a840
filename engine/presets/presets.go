// Package presets persists named control snapshots in a SQLite database.
package presets

import (
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/Carmen-Shannon/oxy-icosphere/engine/controls"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var (
	// ErrPresetNotFound is returned when no preset has the requested name.
	ErrPresetNotFound = errors.New("presets: preset not found")

	// ErrInvalidName is returned for an empty preset name.
	ErrInvalidName = errors.New("presets: invalid name")
)

// PresetModel is the database row for one preset.
type PresetModel struct {
	Name          string `gorm:"primaryKey"`
	Tessellations int
	ColorR        int
	ColorG        int
	ColorB        int
	Background    bool
	Deformation   bool
	UpdatedAt     time.Time
}

func (m PresetModel) snapshot() controls.Snapshot {
	return controls.Snapshot{
		Tessellations: m.Tessellations,
		ColorRGB:      [3]int{m.ColorR, m.ColorG, m.ColorB},
		Background:    m.Background,
		Deformation:   m.Deformation,
	}
}

// store is the implementation of the Store interface.
type store struct {
	db   *gorm.DB
	path string
}

// Store saves and restores control snapshots by name.
type Store interface {
	// Save creates or replaces the preset called name.
	//
	// Parameters:
	//   - name: the preset name, surrounding whitespace is ignored
	//   - s: the snapshot to store
	//
	// Returns:
	//   - error: ErrInvalidName, a wrapped controls.ErrInvalidValue, or a database error
	Save(name string, s controls.Snapshot) error

	// Load returns the preset called name.
	//
	// Parameters:
	//   - name: the preset name
	//
	// Returns:
	//   - controls.Snapshot: the stored snapshot
	//   - error: ErrPresetNotFound if there is no such preset
	Load(name string) (controls.Snapshot, error)

	// List returns every preset name in ascending order.
	List() ([]string, error)

	// Delete removes the preset called name, returning ErrPresetNotFound if it does not exist.
	Delete(name string) error

	// Close releases the database.
	Close() error
}

var _ Store = &store{}

// NewStore opens (or creates) the presets database at path and migrates its schema.
//
// Parameters:
//   - path: the SQLite file; its directory is created if needed
//
// Returns:
//   - Store: the opened store
//   - error: an error if the database could not be opened or migrated
func NewStore(path string) (Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create presets dir: %w", err)
		}
	}

	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open presets database %s: %w", path, err)
	}
	if err := db.AutoMigrate(&PresetModel{}); err != nil {
		return nil, fmt.Errorf("migrate presets database: %w", err)
	}

	log.Printf("[Presets] database opened: %s", path)
	return &store{db: db, path: path}, nil
}

func (s *store) Save(name string, snap controls.Snapshot) error {
	name, err := cleanName(name)
	if err != nil {
		return err
	}
	if err := snap.Validate(); err != nil {
		return err
	}

	model := PresetModel{
		Name:          name,
		Tessellations: snap.Tessellations,
		ColorR:        snap.ColorRGB[0],
		ColorG:        snap.ColorRGB[1],
		ColorB:        snap.ColorRGB[2],
		Background:    snap.Background,
		Deformation:   snap.Deformation,
	}
	if err := s.db.Save(&model).Error; err != nil {
		return fmt.Errorf("save preset %q: %w", name, err)
	}
	return nil
}

func (s *store) Load(name string) (controls.Snapshot, error) {
	name, err := cleanName(name)
	if err != nil {
		return controls.Snapshot{}, err
	}

	var model PresetModel
	if err := s.db.First(&model, "name = ?", name).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return controls.Snapshot{}, fmt.Errorf("%q: %w", name, ErrPresetNotFound)
		}
		return controls.Snapshot{}, fmt.Errorf("load preset %q: %w", name, err)
	}
	return model.snapshot(), nil
}

func (s *store) List() ([]string, error) {
	var names []string
	if err := s.db.Model(&PresetModel{}).Order("name").Pluck("name", &names).Error; err != nil {
		return nil, fmt.Errorf("list presets: %w", err)
	}
	return names, nil
}

func (s *store) Delete(name string) error {
	name, err := cleanName(name)
	if err != nil {
		return err
	}

	result := s.db.Delete(&PresetModel{}, "name = ?", name)
	if result.Error != nil {
		return fmt.Errorf("delete preset %q: %w", name, result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("%q: %w", name, ErrPresetNotFound)
	}
	return nil
}

func (s *store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func cleanName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", ErrInvalidName
	}
	return name, nil
}
