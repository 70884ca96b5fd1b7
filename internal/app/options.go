package app

import (
	"os"
	"time"

	"github.com/dujiao-next/storefront-cart/internal/config"
	"github.com/dujiao-next/storefront-cart/internal/logger"

	"go.uber.org/zap"
)

// 启动模式
// api 模式承载购物车接口与空闲清理；worker 模式只消费结算移交；all 同时运行两者
const (
	ModeAll    = "all"
	ModeAPI    = "api"
	ModeWorker = "worker"
)

// Options 应用启动选项，ShutdownTimeout 同时约束 HTTP 与队列服务的停止
type Options struct {
	Config          *config.Config
	Logger          *zap.SugaredLogger
	Signals         []os.Signal
	ShutdownTimeout time.Duration
	Mode            string
}

// normalizeOptions 补齐默认参数
func normalizeOptions(opts Options) Options {
	if opts.Logger == nil {
		opts.Logger = logger.S()
	}
	if opts.ShutdownTimeout <= 0 {
		opts.ShutdownTimeout = 10 * time.Second
	}
	if opts.Mode == "" {
		opts.Mode = ModeAll
	}
	return opts
}
