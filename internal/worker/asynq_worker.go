package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/dujiao-next/storefront-cart/internal/cache"
	"github.com/dujiao-next/storefront-cart/internal/constants"
	"github.com/dujiao-next/storefront-cart/internal/logger"
	"github.com/dujiao-next/storefront-cart/internal/models"
	"github.com/dujiao-next/storefront-cart/internal/provider"
	"github.com/dujiao-next/storefront-cart/internal/queue"

	"github.com/hibiken/asynq"
)

// Consumer 异步任务消费者
type Consumer struct {
	*provider.Container
}

// NewConsumer 创建消费者
func NewConsumer(c *provider.Container) *Consumer {
	return &Consumer{
		Container: c,
	}
}

// Register 注册消费者
func (c *Consumer) Register(mux *asynq.ServeMux) {
	if c == nil || mux == nil {
		logger.Debugw("worker_register_skip_nil", "consumer_nil", c == nil, "mux_nil", mux == nil)
		return
	}
	mux.HandleFunc(queue.TaskCartCheckout, c.handleCartCheckout)
}

func (c *Consumer) handleCartCheckout(ctx context.Context, task *asynq.Task) error {
	if c == nil || c.Container == nil || task == nil {
		logger.Debugw("worker_cart_checkout_skip_nil", "consumer_nil", c == nil, "task_nil", task == nil)
		return nil
	}
	payload, err := queue.ParseCartCheckoutPayload(task)
	if err != nil {
		// 载荷损坏重试无意义
		logger.Warnw("worker_cart_checkout_invalid_payload", "error", err)
		return fmt.Errorf("%w: %v", asynq.SkipRetry, err)
	}
	if c.HandoffRepo == nil {
		return errors.New("checkout handoff repository not initialized")
	}
	items, err := json.Marshal(payload.Items)
	if err != nil {
		return fmt.Errorf("%w: %v", asynq.SkipRetry, err)
	}
	handoff := &models.CheckoutHandoff{
		HandoffNo:   payload.HandoffNo,
		SessionID:   payload.SessionID,
		Items:       string(items),
		ItemCount:   payload.ItemCount,
		TotalAmount: payload.TotalAmount,
		Status:      constants.CheckoutHandoffStatusReceived,
	}
	created, err := c.HandoffRepo.CreateIfAbsent(handoff)
	if err != nil {
		logger.Warnw("worker_cart_checkout_record_failed", "handoff_no", payload.HandoffNo, "error", err)
		return err
	}
	if !created {
		logger.Debugw("worker_cart_checkout_duplicate", "handoff_no", payload.HandoffNo)
		return nil
	}
	if err := cache.Del(ctx, cache.CheckoutHandoffKey(payload.HandoffNo)); err != nil {
		logger.Debugw("worker_cart_checkout_cache_del_failed", "handoff_no", payload.HandoffNo, "error", err)
	}
	logger.Infow("worker_cart_checkout_recorded",
		"handoff_no", payload.HandoffNo,
		"session_id", payload.SessionID,
		"item_count", payload.ItemCount,
		"total", payload.TotalAmount.String(),
	)
	return nil
}
