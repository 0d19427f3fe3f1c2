package redis

import (
	"context"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/forhay123/haybee-edu-sub009/config"
)

// Client Redis 客户端封装
// 当前用于假期日历缓存与接口限流；后续可扩展分布式锁等场景
type Client struct {
	rdb    *goredis.Client
	logger *zap.Logger
}

// NewClient 创建 Redis 连接并执行 Ping 健康检查
func NewClient(cfg *config.RedisConfig, logger *zap.Logger) (*Client, error) {
	rdb := goredis.NewClient(&goredis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("Redis 连接失败: %w", err)
	}

	logger.Info("Redis 连接成功", zap.String("addr", cfg.Addr))

	return &Client{rdb: rdb, logger: logger}, nil
}

// ── 假期日历缓存 ──
//
// 以 Set 存放全部假期日期（YYYY-MM-DD），生成排课前批量预热，
// 假期增删时整体失效，下次读取时由服务层重建。

const holidaySetKey = "holiday:dates"

// CacheHolidayDates 重建假期日期缓存
func (c *Client) CacheHolidayDates(ctx context.Context, dates []string, ttl time.Duration) error {
	pipe := c.rdb.TxPipeline()
	pipe.Del(ctx, holidaySetKey)
	if len(dates) > 0 {
		members := make([]interface{}, len(dates))
		for i, d := range dates {
			members[i] = d
		}
		pipe.SAdd(ctx, holidaySetKey, members...)
		pipe.Expire(ctx, holidaySetKey, ttl)
	}
	_, err := pipe.Exec(ctx)
	return err
}

// IsHolidayCached 检查某日期是否在缓存中
// 第二个返回值表示缓存是否存在（不存在时需回源数据库）
func (c *Client) IsHolidayCached(ctx context.Context, date string) (bool, bool, error) {
	n, err := c.rdb.Exists(ctx, holidaySetKey).Result()
	if err != nil {
		return false, false, err
	}
	if n == 0 {
		return false, false, nil
	}
	ok, err := c.rdb.SIsMember(ctx, holidaySetKey, date).Result()
	if err != nil {
		return false, true, err
	}
	return ok, true, nil
}

// InvalidateHolidayCache 假期增删后使缓存失效
func (c *Client) InvalidateHolidayCache(ctx context.Context) error {
	return c.rdb.Del(ctx, holidaySetKey).Err()
}

// ── 接口限流 ──

const rateLimitPrefix = "ratelimit:"

// CheckRateLimit 固定窗口限流：窗口内超过 limit 次返回 false
func (c *Client) CheckRateLimit(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	fullKey := rateLimitPrefix + key

	count, err := c.rdb.Incr(ctx, fullKey).Result()
	if err != nil {
		return false, err
	}
	if count == 1 {
		// 首次计数时设置窗口过期
		if err := c.rdb.Expire(ctx, fullKey, window).Err(); err != nil {
			return false, err
		}
	}
	return count <= int64(limit), nil
}

// Close 关闭 Redis 连接
func (c *Client) Close() error {
	return c.rdb.Close()
}
