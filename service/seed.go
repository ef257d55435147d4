package service

import (
	"context"
	"log/slog"

	"poll-voting-backend/logger"
	"poll-voting-backend/models"
	"poll-voting-backend/repository"
)

// SeedRoles 角色表为空时写入预置角色。失败只记录日志，启动继续
func SeedRoles(ctx context.Context, roles repository.RoleRepository, log *slog.Logger) {
	const op = "service.SeedRoles"

	log = log.With(slog.String("op", op))

	n, err := roles.CountRoles(ctx)
	if err != nil {
		log.Error("failed to count roles", logger.Err(err))
		return
	}
	if n > 0 {
		return
	}

	for _, name := range models.SeedRoleNames {
		if err := roles.InsertRole(ctx, &models.Role{Name: name}); err != nil {
			log.Error("failed to add role", slog.String("role", name), logger.Err(err))
			continue
		}
		log.Info("added role", slog.String("role", name))
	}
}
