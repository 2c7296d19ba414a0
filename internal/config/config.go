package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Configはアプリ全体の設定
type Config struct {
	Port string // サーバーポート（8080）

	PostgresHost     string
	PostgresPort     string
	PostgresUser     string
	PostgresPassword string
	PostgresDB       string

	// セッション保管先: postgres / redis / memory
	SessionBackend string
	RedisAddr      string

	LineChannelAccessToken string // LINE Messaging APIトークン
	LineChannelSecret      string // webhook署名検証用

	Colors            []string // 取り扱い色
	Sizes             []string // 取り扱いサイズ
	DefaultPrice      int64    // 台帳に価格が無いときの1本あたり価格
	SessionTTLSeconds int      // セッションの有効秒数
	LowStockAlert     int64    // 残りこの数以下で管理者へ警告
	AdminUserIDs      []string // 管理者のLINE user ID

	JWTSecret         string // 管理APIのJWT署名シークレット
	AdminPasswordHash string // 管理APIログイン用bcryptハッシュ

	GoEnv string // dev/prod
}

// Loadは環境変数から設定を組み立てる
func Load() (Config, error) {
	cfg := Config{
		Port: getenv("PORT", "8080"),

		PostgresHost:     getenv("POSTGRES_HOST", "localhost"),
		PostgresPort:     getenv("POSTGRES_PORT", "5432"),
		PostgresUser:     getenv("POSTGRES_USER", "postgres"),
		PostgresPassword: getenv("POSTGRES_PASSWORD", "postgres"),
		PostgresDB:       getenv("POSTGRES_DB", "hardy"),

		SessionBackend: getenv("SESSION_BACKEND", "postgres"),
		RedisAddr:      getenv("REDIS_ADDR", "localhost:6379"),

		LineChannelAccessToken: os.Getenv("LINE_CHANNEL_ACCESS_TOKEN"),
		LineChannelSecret:      os.Getenv("LINE_CHANNEL_SECRET"),

		Colors: splitCSV(getenv("SHOP_COLORS", "Dark Coffee,Navy")),
		Sizes:  splitCSV(getenv("SHOP_SIZES", "XS,S,M,L,XL,XXL")),

		AdminUserIDs: splitCSV(os.Getenv("ADMIN_USER_IDS")),

		JWTSecret:         os.Getenv("JWT_SECRET"),
		AdminPasswordHash: os.Getenv("ADMIN_PASSWORD_HASH"),

		GoEnv: getenv("GO_ENV", "dev"),
	}

	var err error
	if cfg.DefaultPrice, err = intEnv("PRICE_PER_PIECE", 1290); err != nil {
		return Config{}, err
	}
	ttl, err := intEnv("SESSION_TTL_SECONDS", 1800)
	if err != nil {
		return Config{}, err
	}
	cfg.SessionTTLSeconds = int(ttl)
	if cfg.LowStockAlert, err = intEnv("LOW_STOCK_ALERT", 3); err != nil {
		return Config{}, err
	}

	//必須チェック
	if cfg.LineChannelAccessToken == "" {
		return Config{}, fmt.Errorf("LINE_CHANNEL_ACCESS_TOKEN is required")
	}
	if cfg.LineChannelSecret == "" {
		return Config{}, fmt.Errorf("LINE_CHANNEL_SECRET is required")
	}
	if cfg.JWTSecret == "" {
		return Config{}, fmt.Errorf("JWT_SECRET is required")
	}
	if cfg.AdminPasswordHash == "" {
		return Config{}, fmt.Errorf("ADMIN_PASSWORD_HASH is required")
	}
	switch cfg.SessionBackend {
	case "postgres", "redis", "memory":
	default:
		return Config{}, fmt.Errorf("SESSION_BACKEND must be postgres, redis or memory")
	}
	if len(cfg.Colors) == 0 {
		return Config{}, fmt.Errorf("SHOP_COLORS is required")
	}
	if len(cfg.Sizes) == 0 {
		return Config{}, fmt.Errorf("SHOP_SIZES is required")
	}
	if cfg.SessionTTLSeconds <= 0 {
		return Config{}, fmt.Errorf("SESSION_TTL_SECONDS must be positive")
	}

	return cfg, nil
}

func getenv(key string, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func intEnv(key string, def int64) (int64, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	i, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%s must be number: %w", key, err)
	}
	return i, nil
}

func splitCSV(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if t := strings.TrimSpace(p); t != "" {
			out = append(out, t)
		}
	}
	return out
}
