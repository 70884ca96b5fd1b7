package repository

import (
	"errors"
	"strings"

	"github.com/dujiao-next/storefront-cart/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CheckoutHandoffListFilter 查询移交记录的过滤条件
type CheckoutHandoffListFilter struct {
	Page      int
	PageSize  int
	SessionID string
	Status    string
}

// CheckoutHandoffRepository 结算移交数据访问接口
type CheckoutHandoffRepository interface {
	CreateIfAbsent(handoff *models.CheckoutHandoff) (bool, error)
	GetByHandoffNo(handoffNo string) (*models.CheckoutHandoff, error)
	List(filter CheckoutHandoffListFilter) ([]models.CheckoutHandoff, int64, error)
}

// GormCheckoutHandoffRepository GORM 实现
type GormCheckoutHandoffRepository struct {
	db *gorm.DB
}

// NewCheckoutHandoffRepository 创建结算移交仓库
func NewCheckoutHandoffRepository(db *gorm.DB) *GormCheckoutHandoffRepository {
	return &GormCheckoutHandoffRepository{db: db}
}

// CreateIfAbsent 按移交单号幂等写入，返回是否新建
// 队列重试会重复投递同一单号
func (r *GormCheckoutHandoffRepository) CreateIfAbsent(handoff *models.CheckoutHandoff) (bool, error) {
	if handoff == nil || strings.TrimSpace(handoff.HandoffNo) == "" {
		return false, errors.New("handoff_no is required")
	}
	result := r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "handoff_no"}},
		DoNothing: true,
	}).Create(handoff)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// GetByHandoffNo 按单号获取，不存在时返回 nil
func (r *GormCheckoutHandoffRepository) GetByHandoffNo(handoffNo string) (*models.CheckoutHandoff, error) {
	var handoff models.CheckoutHandoff
	if err := r.db.Where("handoff_no = ?", handoffNo).First(&handoff).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &handoff, nil
}

// List 分页查询移交记录，按创建先后倒序
func (r *GormCheckoutHandoffRepository) List(filter CheckoutHandoffListFilter) ([]models.CheckoutHandoff, int64, error) {
	query := r.db.Model(&models.CheckoutHandoff{})
	if sessionID := strings.TrimSpace(filter.SessionID); sessionID != "" {
		query = query.Where("session_id = ?", sessionID)
	}
	if status := strings.TrimSpace(filter.Status); status != "" {
		query = query.Where("status = ?", status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var handoffs []models.CheckoutHandoff
	if err := query.Order("id desc").Scopes(paginate(filter.Page, filter.PageSize)).Find(&handoffs).Error; err != nil {
		return nil, 0, err
	}
	return handoffs, total, nil
}
