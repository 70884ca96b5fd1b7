package queue

import (
	"encoding/json"
	"errors"
	"strings"

	"github.com/dujiao-next/storefront-cart/internal/constants"
	"github.com/dujiao-next/storefront-cart/internal/models"

	"github.com/hibiken/asynq"
)

const (
	// TaskCartCheckout 购物车结算移交任务
	TaskCartCheckout = constants.TaskCartCheckout
)

// ErrInvalidCheckoutPayload 结算载荷无效
var ErrInvalidCheckoutPayload = errors.New("invalid cart checkout payload")

// CartCheckoutPayload 购物车结算移交任务载荷
type CartCheckoutPayload struct {
	HandoffNo   string                `json:"handoff_no"`
	SessionID   string                `json:"session_id"`
	Items       []models.CartLineItem `json:"items"`
	ItemCount   int                   `json:"item_count"`
	TotalAmount models.Money          `json:"total_amount"`
}

// Validate 校验载荷
func (p CartCheckoutPayload) Validate() error {
	if strings.TrimSpace(p.HandoffNo) == "" || strings.TrimSpace(p.SessionID) == "" {
		return ErrInvalidCheckoutPayload
	}
	if len(p.Items) == 0 || p.ItemCount <= 0 {
		return ErrInvalidCheckoutPayload
	}
	return nil
}

// NewCartCheckoutTask 创建购物车结算移交任务
func NewCartCheckoutTask(payload CartCheckoutPayload) (*asynq.Task, error) {
	if err := payload.Validate(); err != nil {
		return nil, err
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskCartCheckout, body), nil
}

// ParseCartCheckoutPayload 解析购物车结算移交任务载荷
func ParseCartCheckoutPayload(task *asynq.Task) (CartCheckoutPayload, error) {
	var payload CartCheckoutPayload
	if task == nil {
		return payload, ErrInvalidCheckoutPayload
	}
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return payload, errors.Join(ErrInvalidCheckoutPayload, err)
	}
	if err := payload.Validate(); err != nil {
		return payload, err
	}
	return payload, nil
}
