package postgres

import (
	"time"

	"github.com/lib/pq"

	"content-scoring-service/internal/domain"
)

// ContentItemModel is the GORM model for the content_items table.
type ContentItemModel struct {
	ID      string `gorm:"type:varchar(64);primaryKey"`
	Kind    string `gorm:"type:varchar(20);not null"`
	OwnerID string `gorm:"type:varchar(64);not null;index"`

	Title   string         `gorm:"type:varchar(500);not null"`
	Subject string         `gorm:"type:varchar(200)"`
	Tags    pq.StringArray `gorm:"type:text[]"`

	// Engagement
	RatingMean  float64 `gorm:"type:double precision;not null;default:0"`
	RatingCount int     `gorm:"not null;default:0"`
	Downloads   int     `gorm:"not null;default:0"`
	Likes       int     `gorm:"not null;default:0"`

	DerivedScore int `gorm:"not null;default:0"`

	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}

// TableName returns the table name for ContentItemModel.
func (ContentItemModel) TableName() string {
	return "content_items"
}

// ToDomain converts ContentItemModel to domain.ContentItem.
func (m *ContentItemModel) ToDomain() *domain.ContentItem {
	tags := []string(m.Tags)
	if tags == nil {
		tags = []string{}
	}
	return &domain.ContentItem{
		ID:           m.ID,
		Kind:         domain.ContentKind(m.Kind),
		OwnerID:      m.OwnerID,
		Title:        m.Title,
		Subject:      m.Subject,
		Tags:         tags,
		RatingMean:   m.RatingMean,
		RatingCount:  m.RatingCount,
		Downloads:    m.Downloads,
		Likes:        m.Likes,
		DerivedScore: m.DerivedScore,
		CreatedAt:    m.CreatedAt,
		UpdatedAt:    m.UpdatedAt,
	}
}

// itemFromDomain creates a ContentItemModel from domain.ContentItem.
func itemFromDomain(c *domain.ContentItem) *ContentItemModel {
	return &ContentItemModel{
		ID:           c.ID,
		Kind:         string(c.Kind),
		OwnerID:      c.OwnerID,
		Title:        c.Title,
		Subject:      c.Subject,
		Tags:         c.Tags,
		RatingMean:   c.RatingMean,
		RatingCount:  c.RatingCount,
		Downloads:    c.Downloads,
		Likes:        c.Likes,
		DerivedScore: c.DerivedScore,
		CreatedAt:    c.CreatedAt,
		UpdatedAt:    c.UpdatedAt,
	}
}

// UserModel is the GORM model for the users table.
type UserModel struct {
	ID           string    `gorm:"type:varchar(64);primaryKey"`
	PointBalance int64     `gorm:"not null;default:0"`
	Badge        string    `gorm:"type:varchar(20);not null;default:'bronze'"`
	CreatedAt    time.Time `gorm:"autoCreateTime"`
	UpdatedAt    time.Time `gorm:"autoUpdateTime"`
}

// TableName returns the table name for UserModel.
func (UserModel) TableName() string {
	return "users"
}

// ToDomain converts UserModel to domain.User.
func (m *UserModel) ToDomain() *domain.User {
	return &domain.User{
		ID:           m.ID,
		PointBalance: m.PointBalance,
		Badge:        domain.Badge(m.Badge),
		CreatedAt:    m.CreatedAt,
		UpdatedAt:    m.UpdatedAt,
	}
}

// ItemMemberModel records one user in one of an item's sets (likers, downloaders).
type ItemMemberModel struct {
	SetName   string    `gorm:"column:set_name;type:varchar(20);primaryKey"`
	ItemID    string    `gorm:"type:varchar(64);primaryKey"`
	UserID    string    `gorm:"type:varchar(64);primaryKey"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
}

// TableName returns the table name for ItemMemberModel.
func (ItemMemberModel) TableName() string {
	return "item_members"
}

// tableFor maps a collection to its table.
func tableFor(c domain.Collection) string {
	switch c {
	case domain.CollectionItems:
		return ContentItemModel{}.TableName()
	case domain.CollectionUsers:
		return UserModel{}.TableName()
	}
	return ""
}
