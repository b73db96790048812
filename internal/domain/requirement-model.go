package domain

import (
	"time"

	"github.com/lib/pq"
)

// DefaultMaxFileSize applies when a requirement is created without a size limit.
const DefaultMaxFileSize int64 = 5 * 1024 * 1024

type DocumentRequirement struct {
	ID           uint           `gorm:"primaryKey" json:"id"`
	CountryID    uint           `gorm:"not null;uniqueIndex:uidx_requirements_country_type_title" json:"country_id"`
	DocumentType string         `gorm:"type:varchar(50);not null;uniqueIndex:uidx_requirements_country_type_title" json:"document_type"`
	Title        string         `gorm:"type:varchar(200);not null;uniqueIndex:uidx_requirements_country_type_title" json:"title"`
	Description  string         `gorm:"type:text" json:"description"`
	Required     bool           `gorm:"not null;default:true" json:"required"`
	MaxFileSize  int64          `gorm:"not null" json:"max_file_size"`
	AllowedTypes pq.StringArray `gorm:"type:text[];not null" json:"allowed_types"`
	Order        int            `gorm:"column:sort_order;not null;default:0" json:"order"`
	Active       bool           `gorm:"not null;default:true;index" json:"active"`
	CreatedByID  uint           `gorm:"not null" json:"created_by_id"`
	CreatedAt    time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
}

// Allows reports whether ext (lower-case, no dot) is one of the accepted file types.
func (r DocumentRequirement) Allows(ext string) bool {
	for _, t := range r.AllowedTypes {
		if t == ext {
			return true
		}
	}
	return false
}
