package domain

import "time"

type Role string

const (
	RoleStudent   Role = "STUDENT"
	RoleAssociate Role = "ASSOCIATE"
	RoleDirector  Role = "DIRECTOR"
)

func (r Role) IsStaff() bool {
	return r == RoleAssociate || r == RoleDirector
}

type Staff struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	FullName  string    `gorm:"type:varchar(200);not null" json:"full_name"`
	Email     string    `gorm:"type:varchar(255);uniqueIndex;not null" json:"email"`
	Role      Role      `gorm:"type:varchar(20);not null;default:'ASSOCIATE'" json:"role"`
	Active    bool      `gorm:"not null;default:true" json:"active"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Staff) TableName() string {
	return "staff"
}
