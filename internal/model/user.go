package model

import (
	"time"

	"gorm.io/gorm"
)

// Role is the enumerated account role stored in users.role.
type Role string

const (
	RoleUser  Role = "USER"
	RoleAdmin Role = "ADMIN"
)

// User represents an application user record as stored in the
// `users` table.  The password hash is never serialized.  DeletedAt is
// the soft-delete marker: gorm adds `deleted_at IS NULL` to every
// default query and turns Delete into an UPDATE of this column.
type User struct {
	ID           uint           `gorm:"primaryKey" json:"id"`
	Email        string         `gorm:"uniqueIndex;size:191;not null" json:"email"`
	PasswordHash string         `gorm:"column:password;size:255;not null" json:"-"`
	FirstName    string         `gorm:"size:20;not null" json:"firstName"`
	LastName     string         `gorm:"size:20;not null" json:"lastName"`
	Age          int            `gorm:"not null" json:"age"`
	Phone        string         `gorm:"size:32;not null" json:"phone"`
	Role         Role           `gorm:"size:16;not null;default:'USER'" json:"role"`
	Avatar       *string        `gorm:"size:1024" json:"avatar"`
	CreatedAt    time.Time      `json:"createdAt"`
	UpdatedAt    time.Time      `json:"updatedAt"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"deletedAt"`
}

// Token models an issued token pair.  Only SHA-256 hashes of the two
// JWTs are stored.  A pair is revoked by soft-deleting the row; several
// live pairs may coexist for one user (one per login).
type Token struct {
	ID               uint           `gorm:"primaryKey"`
	UserID           uint           `gorm:"index;not null"`
	Email            string         `gorm:"size:191;not null"`
	AccessTokenHash  string         `gorm:"size:64;index;not null"`
	RefreshTokenHash string         `gorm:"size:64;index;not null"`
	CreatedAt        time.Time
	DeletedAt        gorm.DeletedAt `gorm:"index"`
}
