package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"shortlink-service/internal/model"
)

// ShortLinkRepository 短链接表数据访问
type ShortLinkRepository struct {
	db *gorm.DB
}

func NewShortLinkRepository(db *gorm.DB) *ShortLinkRepository {
	return &ShortLinkRepository{db: db}
}

// Insert 新增短链接，短码唯一冲突时返回 gorm.ErrDuplicatedKey
func (r *ShortLinkRepository) Insert(ctx context.Context, link *model.ShortLink) error {
	return r.db.WithContext(ctx).Create(link).Error
}

// FindByCode 按短码查询，不区分归属和启用状态，由调用方判定可用性
func (r *ShortLinkRepository) FindByCode(ctx context.Context, code string) (*model.ShortLink, error) {
	var link model.ShortLink
	err := r.db.WithContext(ctx).Where("short_code = ?", code).First(&link).Error
	if err != nil {
		return nil, err
	}
	return &link, nil
}

// FindByID 按主键查询，限定归属人，避免跨用户读取
func (r *ShortLinkRepository) FindByID(ctx context.Context, ownerEmail string, id uuid.UUID) (*model.ShortLink, error) {
	var link model.ShortLink
	err := r.db.WithContext(ctx).
		Where("id = ? AND owner_email = ?", id, ownerEmail).
		First(&link).Error
	if err != nil {
		return nil, err
	}
	return &link, nil
}

// ListByOwner 游标分页查询，按短码升序，afterCode 为空表示从头开始
func (r *ShortLinkRepository) ListByOwner(ctx context.Context, ownerEmail, afterCode, codeFilter string, limit int) ([]model.ShortLink, error) {
	query := r.db.WithContext(ctx).
		Where("owner_email = ?", ownerEmail).
		Order("short_code ASC").
		Limit(limit)
	if afterCode != "" {
		query = query.Where("short_code > ?", afterCode)
	}
	if codeFilter != "" {
		query = query.Where("short_code LIKE ?", "%"+codeFilter+"%")
	}

	var links []model.ShortLink
	if err := query.Find(&links).Error; err != nil {
		return nil, err
	}
	return links, nil
}

// Save 保存整条记录，用于状态变更
func (r *ShortLinkRepository) Save(ctx context.Context, link *model.ShortLink) error {
	return r.db.WithContext(ctx).Save(link).Error
}

// Delete 软删除，短码仍保留在表中不会被重新分配
func (r *ShortLinkRepository) Delete(ctx context.Context, link *model.ShortLink) error {
	return r.db.WithContext(ctx).Delete(link).Error
}

// FindExpiredBetween 查询在 [from, to) 内到期的短链接，供定时清理任务使用
func (r *ShortLinkRepository) FindExpiredBetween(ctx context.Context, from, to time.Time) ([]model.ShortLink, error) {
	var links []model.ShortLink
	err := r.db.WithContext(ctx).
		Where("expires_at >= ? AND expires_at < ?", from, to).
		Order("expires_at ASC").
		Find(&links).Error
	if err != nil {
		return nil, err
	}
	return links, nil
}
