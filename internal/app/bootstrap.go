package app

import (
	"errors"
	"time"

	"github.com/dujiao-next/storefront-cart/internal/config"
	"github.com/dujiao-next/storefront-cart/internal/logger"
	"github.com/dujiao-next/storefront-cart/internal/provider"
	"github.com/dujiao-next/storefront-cart/internal/router"
	"github.com/dujiao-next/storefront-cart/internal/worker"
)

// BuildRunner 构建服务运行器
func BuildRunner(cfg *config.Config, mode string) (*Runner, *provider.Container, error) {
	if cfg == nil {
		return nil, nil, errors.New("config is nil")
	}

	container := provider.NewContainer(cfg)

	var services []Service

	// 初始化 HTTP 服务，购物车驻留在 API 进程内，清理服务随之启动
	if mode == ModeAll || mode == ModeAPI {
		engine := router.SetupRouter(cfg, container)
		httpService := NewHTTPService(cfg.Server.Addr(), engine)
		services = append(services, httpService)

		sweeper := NewSweeperService(
			container.CartService,
			time.Duration(cfg.Cart.SweepIntervalSeconds)*time.Second,
			time.Duration(cfg.Cart.IdleEvictMinutes)*time.Minute,
		)
		services = append(services, sweeper)
	}

	// 初始化 Worker 服务
	if mode == ModeAll || mode == ModeWorker {
		consumer := worker.NewConsumer(container)
		workerService, err := worker.NewService(&cfg.Queue, consumer)
		if err != nil {
			if mode == ModeWorker {
				container.Close()
				return nil, nil, err
			}
			// all 模式下队列未启用时仅运行 API，结算接口返回不可用
			logger.Warnw("app_worker_disabled", "error", err)
		} else {
			services = append(services, workerService)
		}
	}

	// 如果没有服务被启动（例如模式错误或配置导致都没起），应该报错或至少打日志
	if len(services) == 0 {
		container.Close()
		return nil, nil, errors.New("no services initialized (check mode and config)")
	}

	return NewRunner(services...), container, nil
}

// Run 应用启动入口
func Run(opts Options) error {
	opts = normalizeOptions(opts)
	if opts.Config == nil {
		return errors.New("config is nil")
	}

	runner, container, err := BuildRunner(opts.Config, opts.Mode)
	if err != nil {
		return err
	}
	defer container.Close()

	opts.Logger.Infow("app_start",
		"addr", opts.Config.Server.Addr(),
		"mode", opts.Mode,
		"storage", opts.Config.Storage.Driver,
	)
	return RunWithOptions(runner, opts)
}
