package migrations

import (
	"fmt"
	"log/slog"

	"gorm.io/gorm"

	"poll-voting-backend/models"
)

// VoteUniqueIndex 同一用户在同一投票中最多一条记录
const VoteUniqueIndex = "idx_vote_poll_user"

// Run 按顺序执行全部迁移
func Run(db *gorm.DB, log *slog.Logger) error {
	steps := []struct {
		name string
		fn   func(*gorm.DB, *slog.Logger) error
	}{
		{"automigrate", autoMigrate},
		{"vote_unique_index", ensureVoteUniqueIndex},
	}

	for _, step := range steps {
		log.Info("running migration", slog.String("step", step.name))
		if err := step.fn(db, log); err != nil {
			return fmt.Errorf("migrations.%s: %w", step.name, err)
		}
	}
	return nil
}

func autoMigrate(db *gorm.DB, _ *slog.Logger) error {
	return db.AutoMigrate(
		&models.Role{},
		&models.User{},
		&models.Poll{},
		&models.Choice{},
		&models.VoteEntry{},
	)
}

// ensureVoteUniqueIndex 旧库中 vote_entries 可能缺少唯一索引，这里补上
func ensureVoteUniqueIndex(db *gorm.DB, log *slog.Logger) error {
	if db.Migrator().HasIndex(&models.VoteEntry{}, VoteUniqueIndex) {
		log.Debug("migration skipped, index exists", slog.String("index", VoteUniqueIndex))
		return nil
	}
	if err := db.Migrator().CreateIndex(&models.VoteEntry{}, VoteUniqueIndex); err != nil {
		return err
	}
	log.Info("created index", slog.String("index", VoteUniqueIndex))
	return nil
}
