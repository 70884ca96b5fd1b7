package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// ErrNotFound 槽位不存在
var ErrNotFound = errors.New("storage: key not found")

// 支持的存储驱动
const (
	DriverMemory = "memory"
	DriverFile   = "file"
	DriverDB     = "database"
	DriverRedis  = "redis"
)

// Backend 字节键值存储
// 对应前台 localStorage 的 getItem / setItem / removeItem
type Backend interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}

// Options 存储后端构建参数
type Options struct {
	Driver   string
	Dir      string        // file 驱动的根目录
	Prefix   string        // redis key 前缀
	RedisTTL time.Duration // redis 过期时间，0 表示不过期
	DB       *gorm.DB
	Redis    *redis.Client
}

// New 按驱动创建存储后端
func New(opts Options) (Backend, error) {
	switch strings.ToLower(strings.TrimSpace(opts.Driver)) {
	case DriverMemory:
		return NewMemoryBackend(), nil
	case "", DriverFile:
		return NewFileBackend(opts.Dir)
	case DriverDB, "sqlite", "postgres":
		if opts.DB == nil {
			return nil, errors.New("storage: database driver requires an initialized db")
		}
		return NewGormBackend(opts.DB), nil
	case DriverRedis:
		if opts.Redis == nil {
			return nil, errors.New("storage: redis driver requires an enabled redis client")
		}
		return NewRedisBackend(opts.Redis, opts.Prefix, opts.RedisTTL), nil
	default:
		return nil, fmt.Errorf("storage: unsupported driver %q", opts.Driver)
	}
}
