package db

import (
	"database/sql"
	"fmt"
	"os"

	"app/internal/config"
	"app/internal/domain/model"

	_ "github.com/jackc/pgx/v5/stdlib"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// Connect はDBに接続して *gorm.DB を返す。
// 接続自体はpgxのdatabase/sqlドライバで張り、gormへ渡す。
func Connect(cfg config.Config) (*gorm.DB, error) {
	dsn := dsnFromEnvOrConfig(cfg)

	sqlDB, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}

	return gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{
		// 一意制約違反を gorm.ErrDuplicatedKey に翻訳させる
		TranslateError: true,
	})
}

// Migrate はテーブルを自動作成する
func Migrate(gdb *gorm.DB) error {
	return gdb.AutoMigrate(
		&model.StockEntry{},
		&model.Order{},
		&model.SessionRecord{},
	)
}

func dsnFromEnvOrConfig(cfg config.Config) string {
	// DATABASE_URL があれば最優先で使う
	if dsn := os.Getenv("DATABASE_URL"); dsn != "" {
		return dsn
	}
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		cfg.PostgresHost, cfg.PostgresPort, cfg.PostgresUser, cfg.PostgresPassword, cfg.PostgresDB,
	)
}
