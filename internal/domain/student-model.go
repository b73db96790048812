package domain

import "time"

type Student struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	FullName    string    `gorm:"type:varchar(200);not null" json:"full_name"`
	Email       string    `gorm:"type:varchar(255);uniqueIndex;not null" json:"email"`
	Phone       *string   `gorm:"type:varchar(50)" json:"phone,omitempty"`
	AssociateID *uint     `gorm:"index" json:"associate_id,omitempty"` // portfolio owner
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}
