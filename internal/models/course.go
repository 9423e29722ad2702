package models

import (
	"strings"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Course difficulty levels as stored in the catalog and survey profiles.
const (
	LevelBeginner     = "beginner"
	LevelIntermediate = "intermediate"
	LevelAdvanced     = "advanced"
	LevelExpert       = "expert"
)

// Course is the catalog projection consumed by the learning-path engine.
// Marketplace course CRUD lives in a separate service; this model covers the
// read contract (level, categories, rating, duration, description quality)
// plus the display fields hydrated into path responses.
type Course struct {
	ID            uint                        `gorm:"primaryKey" json:"id"`
	Title         string                      `gorm:"size:255;not null" json:"title"`
	Subtitle      string                      `gorm:"size:512" json:"subtitle"`
	Description   string                      `gorm:"type:text" json:"description"`
	Level         string                      `gorm:"size:32;index;not null" json:"level"`
	CategoriesRaw string                      `gorm:"column:categories;type:text" json:"-"`
	Duration      string                      `gorm:"size:64" json:"duration"`
	WillLearn     datatypes.JSONSlice[string] `gorm:"type:json" json:"will_learn"`
	Rating        float64                     `gorm:"default:0" json:"rating"`
	RatingCount   int                         `gorm:"default:0" json:"rating_count"`
	Price         float64                     `gorm:"default:0" json:"price"`
	ThumbnailURL  string                      `gorm:"size:512" json:"thumbnail_url"`
	IsActive      bool                        `gorm:"index;default:true" json:"is_active"`
	CreatedAt     time.Time                   `json:"created_at"`
	UpdatedAt     time.Time                   `json:"updated_at"`
	Categories    []string                    `gorm:"-" json:"categories"`
}

// BeforeSave normalises the level and encodes category tags.
func (c *Course) BeforeSave(tx *gorm.DB) error {
	c.Level = NormalizeLevel(c.Level)
	c.CategoriesRaw = encodeTags(c.Categories)
	if c.Rating < 0 {
		c.Rating = 0
	}
	if c.Rating > 5 {
		c.Rating = 5
	}
	return nil
}

// AfterFind hydrates the category list after loading from DB.
func (c *Course) AfterFind(tx *gorm.DB) error {
	c.Categories = decodeTags(c.CategoriesRaw)
	return nil
}

// NormalizeLevel lower-cases a level value and maps unknowns to beginner.
func NormalizeLevel(level string) string {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case LevelIntermediate:
		return LevelIntermediate
	case LevelAdvanced:
		return LevelAdvanced
	case LevelExpert:
		return LevelExpert
	default:
		return LevelBeginner
	}
}

// Enrollment links a student to a purchased course. The engine only reads it
// to keep already-owned courses out of new recommendations.
type Enrollment struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	StudentID uint      `gorm:"uniqueIndex:idx_enrollments_student_course;not null" json:"student_id"`
	CourseID  uint      `gorm:"uniqueIndex:idx_enrollments_student_course;not null" json:"course_id"`
	Status    string    `gorm:"size:32;default:active" json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

func encodeTags(tags []string) string {
	if len(tags) == 0 {
		return ""
	}
	cleaned := make([]string, 0, len(tags))
	for _, tag := range tags {
		trimmed := strings.TrimSpace(strings.ToLower(tag))
		if trimmed == "" {
			continue
		}
		cleaned = append(cleaned, trimmed)
	}
	if len(cleaned) == 0 {
		return ""
	}
	return "|" + strings.Join(cleaned, "|") + "|"
}

func decodeTags(raw string) []string {
	raw = strings.Trim(raw, "|")
	if raw == "" {
		return []string{}
	}
	parts := strings.Split(raw, "|")
	tags := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed == "" {
			continue
		}
		tags = append(tags, trimmed)
	}
	return tags
}
