package migrations

import (
	"github.com/go-gormigrate/gormigrate/v2"
	"gorm.io/gorm"
)

// createItemMembers stores the likedBy and downloadedBy sets.
// The primary key makes each user count at most once per set.
func createItemMembers() *gormigrate.Migration {
	return &gormigrate.Migration{
		ID: "002_create_item_members",
		Migrate: func(tx *gorm.DB) error {
			return tx.Exec(`
				CREATE TABLE IF NOT EXISTS item_members (
					set_name VARCHAR(20) NOT NULL CHECK (set_name IN ('liked_by', 'downloaded_by')),
					item_id VARCHAR(64) NOT NULL REFERENCES content_items(id) ON DELETE CASCADE,
					user_id VARCHAR(64) NOT NULL,
					created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
					PRIMARY KEY (set_name, item_id, user_id)
				);
			`).Error
		},
		Rollback: func(tx *gorm.DB) error {
			return tx.Exec("DROP TABLE IF EXISTS item_members;").Error
		},
	}
}
