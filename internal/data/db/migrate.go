package db

import (
	"fmt"

	types "github.com/yungbote/assistant-store/internal/domain"
	"gorm.io/gorm"
)

func AutoMigrateAll(db *gorm.DB) error {
	if err := db.AutoMigrate(types.Models()...); err != nil {
		return err
	}
	return EnsureMemoryIndexes(db)
}

// EnsureMemoryIndexes adds the partial index used to list a user's active memories
// by importance. Both Postgres and SQLite accept this form.
func EnsureMemoryIndexes(db *gorm.DB) error {
	if err := db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_user_memories_active_importance
		ON user_memories (user_id, importance DESC, last_accessed DESC)
		WHERE is_active;
	`).Error; err != nil {
		return fmt.Errorf("create idx_user_memories_active_importance: %w", err)
	}
	return nil
}

func (s *DatabaseService) AutoMigrateAll() error {
	s.log.Info("Auto migrating tables...")
	if err := AutoMigrateAll(s.db); err != nil {
		s.log.Error("Auto migration failed", "error", err)
		return err
	}
	return nil
}
