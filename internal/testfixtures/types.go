// Package testfixtures provides shared gorm models and database helpers for
// tests.
package testfixtures

import (
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Widget is the canonical test model.
type Widget struct {
	ID       string `gorm:"primaryKey;type:text" json:"id"`
	Name     string `gorm:"not null;type:text" json:"name" validate:"required"`
	Price    int    `gorm:"not null" json:"price" validate:"gte=0"`
	Archived bool   `json:"archived"`
	Owner    string `gorm:"type:text" json:"owner"`
}

func (Widget) TableName() string { return "widgets" }

func (w *Widget) BeforeCreate(tx *gorm.DB) error {
	if w.ID == "" {
		w.ID = uuid.New().String()
	}
	return nil
}

// Gallery exercises a second resource with a non-default lookup.
type Gallery struct {
	ID   uint   `gorm:"primaryKey" json:"id"`
	Slug string `gorm:"uniqueIndex;not null;type:text" json:"slug" validate:"required"`
	Name string `gorm:"type:text" json:"name"`
}

func (Gallery) TableName() string { return "galleries" }

// OpenDB opens a fresh in-memory sqlite database with the fixture schema.
func OpenDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open sqlite: %v", err)
	}
	if err := db.AutoMigrate(&Widget{}, &Gallery{}); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}
	return db
}

// SeedWidgets inserts n widgets named widget-0..widget-n-1.
func SeedWidgets(t *testing.T, db *gorm.DB, n int) []Widget {
	t.Helper()
	widgets := make([]Widget, n)
	for i := range widgets {
		widgets[i] = Widget{
			Name:  "widget-" + uuid.NewString()[:8],
			Price: (i + 1) * 10,
		}
	}
	if err := db.Create(&widgets).Error; err != nil {
		t.Fatalf("failed to seed widgets: %v", err)
	}
	return widgets
}
