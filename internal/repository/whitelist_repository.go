package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"shortlink-service/internal/model"
)

// WhitelistRepository 域名白名单数据访问
type WhitelistRepository struct {
	db *gorm.DB
}

func NewWhitelistRepository(db *gorm.DB) *WhitelistRepository {
	return &WhitelistRepository{db: db}
}

// Insert 新增白名单域名，域名唯一冲突时返回 gorm.ErrDuplicatedKey
func (r *WhitelistRepository) Insert(ctx context.Context, domain *model.WhitelistDomain) error {
	return r.db.WithContext(ctx).Create(domain).Error
}

// List 分页查询白名单，filter 对域名做模糊匹配
func (r *WhitelistRepository) List(ctx context.Context, page, size int, filter string) ([]model.WhitelistDomain, int64, error) {
	query := r.db.WithContext(ctx).Model(&model.WhitelistDomain{})
	if filter != "" {
		query = query.Where("domain LIKE ?", "%"+filter+"%")
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var domains []model.WhitelistDomain
	err := query.Order("domain ASC").
		Offset((page - 1) * size).
		Limit(size).
		Find(&domains).Error
	if err != nil {
		return nil, 0, err
	}
	return domains, total, nil
}

// ListAll 返回全部白名单域名，建库放行校验用，量级很小
func (r *WhitelistRepository) ListAll(ctx context.Context) ([]model.WhitelistDomain, error) {
	var domains []model.WhitelistDomain
	if err := r.db.WithContext(ctx).Order("domain ASC").Find(&domains).Error; err != nil {
		return nil, err
	}
	return domains, nil
}

// DeleteByID 删除白名单域名，记录不存在时返回 gorm.ErrRecordNotFound
func (r *WhitelistRepository) DeleteByID(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Where("id = ?", id).Delete(&model.WhitelistDomain{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
