package model

import (
	"time"

	"gorm.io/gorm"
)

// Post is a content record authored by a user.  Photo holds the object
// storage location of an attached image, if any.
type Post struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	AuthorID  uint           `gorm:"index;not null" json:"authorId"`
	Title     string         `gorm:"size:40;not null" json:"title"`
	Text      *string        `gorm:"size:256" json:"text"`
	Published bool           `gorm:"not null;default:false" json:"published"`
	Photo     *string        `gorm:"size:1024" json:"photo"`
	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deletedAt"`
}

// Comment belongs to a post and an author.
type Comment struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	AuthorID  uint           `gorm:"index;not null" json:"authorId"`
	PostID    uint           `gorm:"index;not null" json:"postId"`
	Title     string         `gorm:"size:40;not null" json:"title"`
	Text      string         `gorm:"size:256;not null" json:"text"`
	Published bool           `gorm:"not null;default:false" json:"published"`
	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deletedAt"`
}
