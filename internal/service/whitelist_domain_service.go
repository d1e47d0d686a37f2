package service

import (
	"context"
	"errors"
	"regexp"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"shortlink-service/internal/apperrors"
	"shortlink-service/internal/model"
	"shortlink-service/response"
)

// WhitelistRepository 白名单持久化接口
type WhitelistRepository interface {
	Insert(ctx context.Context, domain *model.WhitelistDomain) error
	List(ctx context.Context, page, size int, filter string) ([]model.WhitelistDomain, int64, error)
	ListAll(ctx context.Context) ([]model.WhitelistDomain, error)
	DeleteByID(ctx context.Context, id uuid.UUID) error
}

// 裸主机名校验，不带协议和路径
var domainPattern = regexp.MustCompile(`^[a-z0-9]([a-z0-9-]*[a-z0-9])?(\.[a-z0-9]([a-z0-9-]*[a-z0-9])?)+$`)

// WhitelistDomainService 域名白名单业务
// 白名单为空时放行全部域名，配置了条目后只允许命中的域名建链
type WhitelistDomainService struct {
	repo   WhitelistRepository
	logger *zap.Logger
}

func NewWhitelistDomainService(repo WhitelistRepository, logger *zap.Logger) *WhitelistDomainService {
	return &WhitelistDomainService{repo: repo, logger: logger}
}

// CreateWhitelistDomain 创建白名单域名
func (s *WhitelistDomainService) CreateWhitelistDomain(ctx context.Context, domain string) (*model.WhitelistDomain, error) {
	domain = strings.ToLower(strings.TrimSpace(domain))
	if domain == "" {
		return nil, apperrors.InvalidRequestError("error.domain_required")
	}
	if !domainPattern.MatchString(domain) {
		return nil, apperrors.InvalidRequestError("error.domain_invalid")
	}

	whitelist := &model.WhitelistDomain{Domain: domain}
	if err := s.repo.Insert(ctx, whitelist); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperrors.ErrDomainExists
		}
		s.logger.Error("创建白名单域名失败", zap.String("domain", domain), zap.Error(err))
		return nil, apperrors.BackendUnavailable(err)
	}
	return whitelist, nil
}

// ListWhitelistDomains 支持分页查询白名单列表
func (s *WhitelistDomainService) ListWhitelistDomains(ctx context.Context, page, size int, domain string) (*response.PageResponse[model.WhitelistDomain], error) {
	// 参数校验
	if page < 1 {
		page = 1
	}
	if size < 1 || size > 100 {
		size = 10 // 默认每页10条，最大100条
	}

	domains, total, err := s.repo.List(ctx, page, size, domain)
	if err != nil {
		s.logger.Error("查询域名白名单失败", zap.Error(err))
		return nil, apperrors.BackendUnavailable(err)
	}

	// 计算总页数
	totalPage := (int(total) + size - 1) / size

	return &response.PageResponse[model.WhitelistDomain]{
		Page:      page,
		Size:      size,
		Total:     int(total),
		TotalPage: totalPage,
		List:      domains,
	}, nil
}

// DeleteWhitelistDomain 删除白名单域名
func (s *WhitelistDomainService) DeleteWhitelistDomain(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.DeleteByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.ErrNotFound
		}
		s.logger.Error("删除域名白名单失败", zap.String("id", id.String()), zap.Error(err))
		return apperrors.BackendUnavailable(err)
	}
	return nil
}

// IsAllowed 判断目标域名是否放行，支持子域名匹配
func (s *WhitelistDomainService) IsAllowed(ctx context.Context, host string) (bool, error) {
	domains, err := s.repo.ListAll(ctx)
	if err != nil {
		return false, err
	}
	// 未配置白名单时不做限制
	if len(domains) == 0 {
		return true, nil
	}

	host = strings.ToLower(host)
	for _, d := range domains {
		if host == d.Domain || strings.HasSuffix(host, "."+d.Domain) {
			return true, nil
		}
	}
	return false, nil
}
