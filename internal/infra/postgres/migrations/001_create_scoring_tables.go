package migrations

import (
	"github.com/go-gormigrate/gormigrate/v2"
	"gorm.io/gorm"
)

// createScoringTables creates users and content_items with their indexes.
func createScoringTables() *gormigrate.Migration {
	return &gormigrate.Migration{
		ID: "001_create_scoring_tables",
		Migrate: func(tx *gorm.DB) error {
			if err := tx.Exec(`
				CREATE TABLE IF NOT EXISTS users (
					id VARCHAR(64) PRIMARY KEY,
					point_balance BIGINT NOT NULL DEFAULT 0,
					badge VARCHAR(20) NOT NULL DEFAULT 'bronze',
					created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
					updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
				);
			`).Error; err != nil {
				return err
			}

			if err := tx.Exec(`
				CREATE TABLE IF NOT EXISTS content_items (
					id VARCHAR(64) PRIMARY KEY,
					kind VARCHAR(20) NOT NULL CHECK (kind IN ('note', 'question')),
					owner_id VARCHAR(64) NOT NULL REFERENCES users(id),
					title VARCHAR(500) NOT NULL,
					subject VARCHAR(200),
					tags TEXT[],

					-- Engagement
					rating_mean DOUBLE PRECISION NOT NULL DEFAULT 0,
					rating_count INTEGER NOT NULL DEFAULT 0 CHECK (rating_count >= 0),
					downloads INTEGER NOT NULL DEFAULT 0 CHECK (downloads >= 0),
					likes INTEGER NOT NULL DEFAULT 0 CHECK (likes >= 0),

					derived_score INTEGER NOT NULL DEFAULT 0,

					created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
					updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
				);
			`).Error; err != nil {
				return err
			}

			indexes := []string{
				"CREATE INDEX IF NOT EXISTS idx_content_items_owner ON content_items(owner_id);",
				"CREATE INDEX IF NOT EXISTS idx_content_items_owner_score ON content_items(owner_id, derived_score DESC);",
			}
			for _, idx := range indexes {
				if err := tx.Exec(idx).Error; err != nil {
					return err
				}
			}

			return nil
		},
		Rollback: func(tx *gorm.DB) error {
			if err := tx.Exec("DROP TABLE IF EXISTS content_items;").Error; err != nil {
				return err
			}
			return tx.Exec("DROP TABLE IF EXISTS users;").Error
		},
	}
}
