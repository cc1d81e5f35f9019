// Package config 负责加载和管理应用程序的配置。
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// 全局配置变量，存储从配置文件加载的所有设置。
var Conf Config

// Config 是整个应用程序的配置结构体，与 config.yaml 文件结构对应。
type Config struct {
	Server        ServerConfig        `mapstructure:"server"`
	Database      DatabaseConfig      `mapstructure:"database"`
	JWT           JWTConfig           `mapstructure:"jwt"`
	Session       SessionConfig       `mapstructure:"session"`
	Log           LogConfig           `mapstructure:"log"`
	Kafka         KafkaConfig         `mapstructure:"kafka"`
	Elasticsearch ElasticsearchConfig `mapstructure:"elasticsearch"`
	LLM           LLMConfig           `mapstructure:"llm"`
	Board         BoardConfig         `mapstructure:"board"`
	RateLimit     RateLimitConfig     `mapstructure:"rate_limit"`
}

// ServerConfig 存储服务器相关的配置。
type ServerConfig struct {
	Port     string `mapstructure:"port"`
	Mode     string `mapstructure:"mode"`
	Timezone string `mapstructure:"timezone"`
}

// DatabaseConfig 存储所有数据库连接的配置。
type DatabaseConfig struct {
	// Driver 取值 "mysql" 或 "sqlite"。
	Driver string       `mapstructure:"driver"`
	MySQL  MySQLConfig  `mapstructure:"mysql"`
	SQLite SQLiteConfig `mapstructure:"sqlite"`
	Redis  RedisConfig  `mapstructure:"redis"`
}

// MySQLConfig 存储 MySQL 数据库的配置。
type MySQLConfig struct {
	DSN string `mapstructure:"dsn"`
}

// SQLiteConfig 存储 SQLite 数据库文件的配置。
type SQLiteConfig struct {
	Path string `mapstructure:"path"`
}

// RedisConfig 存储 Redis 的配置。
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// JWTConfig 存储 JWT 相关的配置。
type JWTConfig struct {
	Secret string `mapstructure:"secret"`
	// TokenExpireHours 是 token 签名本身的绝对有效期，会话的空闲超时由 SessionConfig 控制。
	TokenExpireHours int `mapstructure:"token_expire_hours"`
}

// SessionConfig 存储登录会话的配置。
type SessionConfig struct {
	IdleTimeout  time.Duration `mapstructure:"idle_timeout"`
	CookieName   string        `mapstructure:"cookie_name"`
	CookieSecure bool          `mapstructure:"cookie_secure"`
}

// LogConfig 存储日志相关的配置。
type LogConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"`
	OutputPath string `mapstructure:"output_path"`
}

// KafkaConfig 存储 Kafka 相关的配置。Brokers 为空时不启用索引管道。
type KafkaConfig struct {
	Brokers string `mapstructure:"brokers"`
	Topic   string `mapstructure:"topic"`
	GroupID string `mapstructure:"group_id"`
}

// ElasticsearchConfig 存储 Elasticsearch 相关的配置。Addresses 为空时搜索接口不可用。
type ElasticsearchConfig struct {
	Addresses string `mapstructure:"addresses"`
	Username  string `mapstructure:"username"`
	Password  string `mapstructure:"password"`
	IndexName string `mapstructure:"index_name"`
}

// LLMConfig 存储大语言模型相关的配置。
type LLMConfig struct {
	// Provider 取值 "openai"（DeepSeek 等 OpenAI 兼容接口）或 "gemini"。
	Provider   string              `mapstructure:"provider"`
	APIKey     string              `mapstructure:"api_key"`
	BaseURL    string              `mapstructure:"base_url"`
	Model      string              `mapstructure:"model"`
	Timeout    time.Duration       `mapstructure:"timeout"`
	Generation LLMGenerationConfig `mapstructure:"generation"`
	// Personas 列出启用 AI 自动回答的分类及其人设提示词。
	// 使用列表而不是 map，因为 viper 会把 map 的键转成小写。
	Personas []PersonaConfig `mapstructure:"personas"`
	// DefaultPersona 仅用于预览接口中没有专属人设的分类。
	DefaultPersona string `mapstructure:"default_persona"`
}

// LLMGenerationConfig 配置生成相关参数（可选）。
type LLMGenerationConfig struct {
	Temperature float64 `mapstructure:"temperature"`
	TopP        float64 `mapstructure:"top_p"`
	MaxTokens   int     `mapstructure:"max_tokens"`
}

// PersonaConfig 描述一个分类对应的 AI 人设。
type PersonaConfig struct {
	Category string `mapstructure:"category"`
	Template string `mapstructure:"template"`
}

// BoardConfig 存储问答板的业务配置。
type BoardConfig struct {
	Categories      []string `mapstructure:"categories"`
	AllSentinel     string   `mapstructure:"all_sentinel"`
	AIStudentNumber string   `mapstructure:"ai_student_number"`
}

// RateLimitConfig 限制每个用户调用 AI 预览接口的频率。
type RateLimitConfig struct {
	PreviewPerMinute int `mapstructure:"preview_per_minute"`
	PreviewBurst     int `mapstructure:"preview_burst"`
}

// DefaultCategories 是问答板固定的分类列表（不含“すべて”）。
var DefaultCategories = []string{
	"基本情報技術者試験", "ITパスポート", "セキュリティ教科", "ディジタル情報",
	"坂上先生教科", "コンピュータ基礎", "情報システム(要件定義)", "データサイエンスとAI",
	"マネジメントと戦略", "データベース", "ネットワーク基礎", "データ構造とアルゴリズム",
	"プログラミング演習Python", "プログラミング演習C言語", "プログラミング演習Java",
	"Webアプリ", "画像制作", "動画制作", "AR・VR", "半導体とアプリケーション",
	"ホームページ制作", "PCスキルアップ", "プレゼン", "地域経済", "情報総合実習", "その他",
}

// setDefaults 为所有可选项设置默认值。
func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", "5000")
	v.SetDefault("server.mode", "release")
	v.SetDefault("server.timezone", "Asia/Tokyo")
	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.sqlite.path", "hajimeteno.db")
	v.SetDefault("database.redis.addr", "localhost:6379")
	// 没有默认值的键无法被 AutomaticEnv 覆盖，因此密钥也要注册空默认值
	v.SetDefault("jwt.secret", "")
	v.SetDefault("jwt.token_expire_hours", 24)
	v.SetDefault("session.idle_timeout", 30*time.Minute)
	v.SetDefault("session.cookie_name", "qa_session")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("kafka.topic", "question-index")
	v.SetDefault("kafka.group_id", "qa-board-indexer")
	v.SetDefault("elasticsearch.index_name", "questions")
	v.SetDefault("llm.provider", "openai")
	v.SetDefault("llm.api_key", "")
	v.SetDefault("llm.timeout", 30*time.Second)
	v.SetDefault("board.categories", DefaultCategories)
	v.SetDefault("board.all_sentinel", "すべて")
	v.SetDefault("board.ai_student_number", "AI")
	v.SetDefault("rate_limit.preview_per_minute", 10)
	v.SetDefault("rate_limit.preview_burst", 3)
}

// Init 初始化配置加载，从指定的路径读取 YAML 文件并解析到 Conf 变量中。
// 环境变量 QABOARD_<SECTION>_<KEY> 会覆盖文件中的值，适合注入密钥。
func Init(configPath string) {
	cfg, err := Load(configPath)
	if err != nil {
		panic(err)
	}
	Conf = cfg
}

// Load 读取配置但不修改全局变量，供 CLI 子命令和测试使用。
func Load(configPath string) (Config, error) {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix("QABOARD")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if configPath != "" {
		v.SetConfigFile(configPath)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return cfg, fmt.Errorf("读取配置文件失败: %w", err)
		}
	}

	if err := v.Unmarshal(&cfg); err != nil {
		return cfg, fmt.Errorf("无法将配置解析到结构体中: %w", err)
	}
	if cfg.JWT.Secret == "" {
		return cfg, fmt.Errorf("jwt.secret 不能为空")
	}
	return cfg, nil
}

// Location 返回用于展示时间的时区，解析失败时回退到 UTC+9。
func (c ServerConfig) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.FixedZone("JST", 9*60*60)
	}
	return loc
}
