package database

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"poll-voting-backend/config"
	"poll-voting-backend/migrations"
	"poll-voting-backend/repository"
)

// newGormLogger 慢查询阈值1秒，忽略未找到记录
func newGormLogger(env string) logger.Interface {
	level := logger.Warn
	if env == "local" {
		level = logger.Info
	}
	return logger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		logger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  level,
			IgnoreRecordNotFoundError: true,
			ParameterizedQueries:      true,
			Colorful:                  env == "local",
		},
	)
}

// OpenGorm 按驱动打开关系型数据库并执行迁移
func OpenGorm(cfg *config.Config, log *slog.Logger) (*gorm.DB, error) {
	const op = "database.OpenGorm"

	var dialector gorm.Dialector
	switch cfg.Storage.Driver {
	case config.DriverMySQL:
		dialector = mysql.Open(cfg.Storage.DSN)
	case config.DriverSQLite:
		dialector = sqlite.Open(cfg.Storage.DSN)
	default:
		return nil, fmt.Errorf("%s: driver %q is not relational", op, cfg.Storage.Driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:         newGormLogger(cfg.Env),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	switch cfg.Storage.Driver {
	case config.DriverMySQL:
		sqlDB.SetMaxIdleConns(10)
		sqlDB.SetMaxOpenConns(100)
		sqlDB.SetConnMaxLifetime(time.Hour)
	case config.DriverSQLite:
		// sqlite 只允许单写连接
		sqlDB.SetMaxOpenConns(1)
	}

	if err := migrations.Run(db, log); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	log.Info("database connected", slog.String("driver", cfg.Storage.Driver))
	return db, nil
}

// ConnectMongo 连接文档数据库并创建索引
func ConnectMongo(ctx context.Context, cfg *config.Config, log *slog.Logger) (*repository.MongoStore, error) {
	const op = "database.ConnectMongo"

	ctx, cancel := context.WithTimeout(ctx, cfg.Storage.Timeout)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().
		ApplyURI(cfg.Storage.DSN).
		SetTimeout(cfg.Storage.Timeout))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	store := repository.NewMongoStore(client, cfg.Storage.Database)
	if err := store.Ping(ctx); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err := store.EnsureIndexes(ctx); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	log.Info("mongo connected", slog.String("database", cfg.Storage.Database))
	return store, nil
}

// Open 根据配置返回对应的存储实现
func Open(ctx context.Context, cfg *config.Config, log *slog.Logger) (repository.Store, error) {
	if cfg.Storage.Driver == config.DriverMongo {
		return ConnectMongo(ctx, cfg, log)
	}

	db, err := OpenGorm(cfg, log)
	if err != nil {
		return nil, err
	}
	return repository.NewGormStore(db), nil
}
