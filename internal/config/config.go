// Package config 负责加载和管理应用程序的配置。
package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// 全局配置变量，存储从配置文件加载的所有设置。
var Conf Config

// Config 是整个应用程序的配置结构体，与 config.yaml 文件结构对应。
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	JWT      JWTConfig      `mapstructure:"jwt"`
	Log      LogConfig      `mapstructure:"log"`
	Kafka    KafkaConfig    `mapstructure:"kafka"`
	Storage  StorageConfig  `mapstructure:"storage"`
	Metrics  MetricsConfig  `mapstructure:"metrics"`
}

// ServerConfig 存储服务器相关的配置。
type ServerConfig struct {
	Port string `mapstructure:"port"`
	Mode string `mapstructure:"mode"`
	// MaxBodyBytes 是上传请求体的最大字节数，超过后直接拒绝。
	MaxBodyBytes int64 `mapstructure:"max_body_bytes"`
	// MaxMemoryBytes 是 multipart 表单在内存中缓冲的阈值，超出部分写入临时文件。
	MaxMemoryBytes int64 `mapstructure:"max_memory_bytes"`
	// SeedDir 为启动时导入的视频目录，子目录名即为群组 ID。
	SeedDir string `mapstructure:"seed_dir"`
}

// DatabaseConfig 存储所有数据库连接的配置。
type DatabaseConfig struct {
	MySQL MySQLConfig `mapstructure:"mysql"`
	Redis RedisConfig `mapstructure:"redis"`
}

// MySQLConfig 存储 MySQL 数据库的配置。
type MySQLConfig struct {
	DSN         string `mapstructure:"dsn"`
	AutoMigrate bool   `mapstructure:"auto_migrate"`
}

// RedisConfig 存储 Redis 的配置。
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// JWTConfig 存储 JWT 相关的配置。
type JWTConfig struct {
	Secret                 string `mapstructure:"secret"`
	AccessTokenExpireHours int    `mapstructure:"access_token_expire_hours"`
	RefreshTokenExpireDays int    `mapstructure:"refresh_token_expire_days"`
}

// LogConfig 存储日志相关的配置。
type LogConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"`
	OutputPath string `mapstructure:"output_path"`
}

// KafkaConfig 存储 Kafka 相关的配置。Brokers 为空时不发送上传完成事件。
type KafkaConfig struct {
	Brokers string `mapstructure:"brokers"`
	Topic   string `mapstructure:"topic"`
}

// StorageConfig 存储对象存储（MinIO / S3 兼容服务）的配置。
type StorageConfig struct {
	// Driver 取值 "minio"（默认）或 "s3"。
	Driver          string `mapstructure:"driver"`
	Endpoint        string `mapstructure:"endpoint"`
	Region          string `mapstructure:"region"`
	AccessKeyID     string `mapstructure:"access_key_id"`
	SecretAccessKey string `mapstructure:"secret_access_key"`
	UseSSL          bool   `mapstructure:"use_ssl"`
	BucketName      string `mapstructure:"bucket_name"`
	// PartSizeBytes 是分片上传的固定分片大小。
	PartSizeBytes int64 `mapstructure:"part_size_bytes"`
	// MaxParts 是单个文件允许的最大分片数。
	MaxParts int `mapstructure:"max_parts"`
	// MaxFileSizeBytes 为 0 时不限制文件大小（仍受 MaxParts 约束）。
	MaxFileSizeBytes int64 `mapstructure:"max_file_size_bytes"`
}

// MetricsConfig 存储 Prometheus 指标相关的配置。
type MetricsConfig struct {
	Enabled   bool   `mapstructure:"enabled"`
	Namespace string `mapstructure:"namespace"`
	Path      string `mapstructure:"path"`
}

// Init 初始化配置加载，从指定的路径读取 YAML 文件并解析到 Conf 变量中。
func Init(configPath string) {
	cfg, err := Load(configPath)
	if err != nil {
		panic(err)
	}
	Conf = cfg
}

// Load 读取配置文件并叠加环境变量，例如 STORAGE_ACCESS_KEY_ID 会覆盖 storage.access_key_id。
func Load(configPath string) (Config, error) {
	var cfg Config

	v := viper.New()
	v.SetConfigFile(configPath)
	v.SetConfigType("yaml")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		return cfg, fmt.Errorf("读取配置文件失败: %w", err)
	}

	if err := v.Unmarshal(&cfg); err != nil {
		return cfg, fmt.Errorf("无法将配置解析到结构体中: %w", err)
	}
	if err := validate(cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

const (
	// MinPartSizeBytes 是 S3/R2/MinIO 对非最后一个分片的最小尺寸要求。
	MinPartSizeBytes = 5 << 20
	// MaxPartsLimit 是 S3 协议允许的最大分片数。
	MaxPartsLimit = 10000
)

// validate 在启动时拒绝存储端必然拒绝的分片配置，避免错误拖到第一次上传才暴露。
func validate(cfg Config) error {
	if cfg.Storage.PartSizeBytes < MinPartSizeBytes {
		return fmt.Errorf("storage.part_size_bytes 必须 >= %d (5MiB), 当前为 %d", MinPartSizeBytes, cfg.Storage.PartSizeBytes)
	}
	if cfg.Storage.MaxParts < 1 || cfg.Storage.MaxParts > MaxPartsLimit {
		return fmt.Errorf("storage.max_parts 必须在 1 到 %d 之间, 当前为 %d", MaxPartsLimit, cfg.Storage.MaxParts)
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.mode", "release")
	v.SetDefault("server.max_body_bytes", 512<<20)
	v.SetDefault("server.max_memory_bytes", 32<<20)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("jwt.access_token_expire_hours", 1)
	v.SetDefault("jwt.refresh_token_expire_days", 7)
	// 敏感项默认留空，只有先注册 key，AutomaticEnv 才能在 Unmarshal 时生效
	v.SetDefault("database.mysql.dsn", "")
	v.SetDefault("database.redis.password", "")
	v.SetDefault("jwt.secret", "")
	v.SetDefault("storage.endpoint", "")
	v.SetDefault("storage.access_key_id", "")
	v.SetDefault("storage.secret_access_key", "")
	v.SetDefault("storage.bucket_name", "")
	v.SetDefault("kafka.brokers", "")
	v.SetDefault("storage.driver", "minio")
	v.SetDefault("storage.region", "auto")
	v.SetDefault("storage.part_size_bytes", MinPartSizeBytes)
	v.SetDefault("storage.max_parts", MaxPartsLimit)
	v.SetDefault("kafka.topic", "video-uploaded")
	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.namespace", "vidhub")
	v.SetDefault("metrics.path", "/metrics")
}
