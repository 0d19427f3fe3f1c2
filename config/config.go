package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config 应用全局配置结构体
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"db"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Auth     AuthConfig     `mapstructure:"auth"`
	Log      LogConfig      `mapstructure:"log"`
	Schedule ScheduleConfig `mapstructure:"schedule"`
	Archive  ArchiveConfig  `mapstructure:"archive"`
	Generate GenerateConfig `mapstructure:"generate"`
}

// ServerConfig HTTP 服务器配置
type ServerConfig struct {
	Port    int        `mapstructure:"port"`
	BaseURL string     `mapstructure:"base_url"`
	CORS    CORSConfig `mapstructure:"cors"`
}

// CORSConfig 跨域配置
type CORSConfig struct {
	AllowOrigins []string `mapstructure:"allow_origins"`
}

// DatabaseConfig PostgreSQL 数据库配置
type DatabaseConfig struct {
	Host            string `mapstructure:"host"`
	Port            int    `mapstructure:"port"`
	Name            string `mapstructure:"name"`
	User            string `mapstructure:"user"`
	Password        string `mapstructure:"password"`
	SSLMode         string `mapstructure:"sslmode"`
	Timezone        string `mapstructure:"timezone"`
	MaxOpenConns    int    `mapstructure:"max_open_conns"`
	MaxIdleConns    int    `mapstructure:"max_idle_conns"`
	ConnMaxLifetime int    `mapstructure:"conn_max_lifetime"`  // 连接最大生命周期（分钟）
	ConnMaxIdleTime int    `mapstructure:"conn_max_idle_time"` // 空闲连接最大存活时间（分钟）
}

// DSN 生成 PostgreSQL 连接字符串
func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s TimeZone=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode, c.Timezone,
	)
}

// RedisConfig Redis 缓存配置
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// AuthConfig JWT 认证配置
// 认证服务在平台侧，本引擎只负责验签与角色校验
type AuthConfig struct {
	JWTSecret string `mapstructure:"jwt_secret"`
	Issuer    string `mapstructure:"issuer"`
}

// LogConfig 日志配置
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// ScheduleConfig 学习窗口与测评窗口配置
type ScheduleConfig struct {
	WeekdayStart          string        `mapstructure:"weekday_start"`           // 周一至周五窗口开始 HH:MM
	WeekdayEnd            string        `mapstructure:"weekday_end"`             // 周一至周五窗口结束
	SaturdayStart         string        `mapstructure:"saturday_start"`          // 周六窗口开始
	SaturdayEnd           string        `mapstructure:"saturday_end"`            // 周六窗口结束
	PeriodMinutes         int           `mapstructure:"period_minutes"`          // 单节课时长（分钟）
	GraceMinutes          int           `mapstructure:"grace_minutes"`           // 窗口结束后的宽限时长（分钟）
	HolidayLookaheadWeeks int           `mapstructure:"holiday_lookahead_weeks"` // 周六假期顺延的最大查找周数
	SweepInterval         time.Duration `mapstructure:"sweep_interval"`          // 作废/宽限到期巡检间隔
}

// ArchiveConfig 归档与保留策略配置
type ArchiveConfig struct {
	RetentionDays int           `mapstructure:"retention_days"` // 归档数据保留天数
	SweepInterval time.Duration `mapstructure:"sweep_interval"` // 保留清理任务间隔
}

// GenerateConfig 批量生成配置
type GenerateConfig struct {
	Workers int `mapstructure:"workers"` // 并发生成的 worker 数
}

// Load 从配置文件与环境变量加载配置
// 优先级：环境变量 > 配置文件 > 默认值
func Load(path string) (*Config, error) {
	v := viper.New()

	// ── 默认值 ──
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.base_url", "http://localhost:8080")
	v.SetDefault("server.cors.allow_origins", []string{"http://localhost:5173"})

	v.SetDefault("db.host", "localhost")
	v.SetDefault("db.port", 5432)
	v.SetDefault("db.name", "edu_platform")
	v.SetDefault("db.user", "postgres")
	v.SetDefault("db.password", "")
	v.SetDefault("db.sslmode", "disable")
	v.SetDefault("db.timezone", "Africa/Lagos")
	v.SetDefault("db.max_open_conns", 25)
	v.SetDefault("db.max_idle_conns", 10)
	v.SetDefault("db.conn_max_lifetime", 60)  // 60分钟
	v.SetDefault("db.conn_max_idle_time", 30) // 30分钟

	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)

	v.SetDefault("auth.issuer", "edu-platform")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	// 学习窗口：周一至周五 16:00-18:00，周六 12:00-15:00，周日休息
	v.SetDefault("schedule.weekday_start", "16:00")
	v.SetDefault("schedule.weekday_end", "18:00")
	v.SetDefault("schedule.saturday_start", "12:00")
	v.SetDefault("schedule.saturday_end", "15:00")
	v.SetDefault("schedule.period_minutes", 60)
	v.SetDefault("schedule.grace_minutes", 15)
	v.SetDefault("schedule.holiday_lookahead_weeks", 4)
	v.SetDefault("schedule.sweep_interval", "15m")

	v.SetDefault("archive.retention_days", 365)
	v.SetDefault("archive.sweep_interval", "24h")

	v.SetDefault("generate.workers", 4)

	// ── 配置文件 ──
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("./config")
		v.AddConfigPath(".")
	}

	// ── 环境变量 ──
	v.SetEnvPrefix("EDU")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("读取配置文件失败: %w", err)
		}
		// 配置文件不存在时仅依赖默认值和环境变量
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("解析配置失败: %w", err)
	}

	// ── 关键配置校验 ──
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate 校验关键配置项
func (c *Config) Validate() error {
	if c.Auth.JWTSecret == "" {
		return fmt.Errorf("配置校验失败: auth.jwt_secret 不能为空")
	}
	if len(c.Auth.JWTSecret) < 16 {
		return fmt.Errorf("配置校验失败: auth.jwt_secret 长度不能少于 16 字符")
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("配置校验失败: server.port 必须在 1-65535 之间")
	}
	if c.Schedule.PeriodMinutes <= 0 {
		return fmt.Errorf("配置校验失败: schedule.period_minutes 必须大于 0")
	}
	if c.Schedule.GraceMinutes < 0 {
		return fmt.Errorf("配置校验失败: schedule.grace_minutes 不能为负数")
	}
	if c.Schedule.HolidayLookaheadWeeks <= 0 {
		return fmt.Errorf("配置校验失败: schedule.holiday_lookahead_weeks 必须大于 0")
	}
	if c.Generate.Workers <= 0 {
		return fmt.Errorf("配置校验失败: generate.workers 必须大于 0")
	}
	return nil
}
