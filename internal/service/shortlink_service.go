package service

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
	"gorm.io/gorm"

	"shortlink-service/internal/apperrors"
	"shortlink-service/internal/dto"
	"shortlink-service/internal/model"
	"shortlink-service/pkg/codegen"
	"shortlink-service/pkg/utils"
)

// LinkRepository 短链接持久化接口，未命中返回 gorm.ErrRecordNotFound，
// 短码唯一冲突返回 gorm.ErrDuplicatedKey
type LinkRepository interface {
	Insert(ctx context.Context, link *model.ShortLink) error
	FindByCode(ctx context.Context, code string) (*model.ShortLink, error)
	FindByID(ctx context.Context, ownerEmail string, id uuid.UUID) (*model.ShortLink, error)
	ListByOwner(ctx context.Context, ownerEmail, afterCode, codeFilter string, limit int) ([]model.ShortLink, error)
	Save(ctx context.Context, link *model.ShortLink) error
	Delete(ctx context.Context, link *model.ShortLink) error
	FindExpiredBetween(ctx context.Context, from, to time.Time) ([]model.ShortLink, error)
}

// LinkCache 短链接缓存接口，实现见 repository.LinkCache
// 缓存故障不阻塞主流程，错误由本服务记录日志后降级
type LinkCache interface {
	Get(ctx context.Context, shortCode string) (*model.ShortLink, bool, error)
	Set(ctx context.Context, link *model.ShortLink) error
	SetNegative(ctx context.Context, shortCode string) error
	Delete(ctx context.Context, shortCode string) error
}

// DomainChecker 建链目标域名放行校验
type DomainChecker interface {
	IsAllowed(ctx context.Context, host string) (bool, error)
}

const (
	defaultListLimit = 50
	maxListLimit     = 100
)

// ShortLinkService 短链接核心业务
type ShortLinkService struct {
	repo       LinkRepository
	cache      LinkCache
	domains    DomainChecker
	probe      ReachabilityChecker // 为 nil 时跳过可达性探测
	generate   codegen.Generator
	maxRetries int
	logger     *zap.Logger

	// 同一短码的并发回源合并为一次数据库查询
	sf singleflight.Group
}

func NewShortLinkService(
	repo LinkRepository,
	cache LinkCache,
	domains DomainChecker,
	probe ReachabilityChecker,
	generate codegen.Generator,
	maxRetries int,
	logger *zap.Logger,
) *ShortLinkService {
	if maxRetries < 1 {
		maxRetries = 1
	}
	return &ShortLinkService{
		repo:       repo,
		cache:      cache,
		domains:    domains,
		probe:      probe,
		generate:   generate,
		maxRetries: maxRetries,
		logger:     logger,
	}
}

// CreateShortLink 创建短链
// 指定短码时只尝试一次，冲突即报错；随机短码冲突时换码重试，
// 重试次数用尽返回短码空间耗尽错误
func (s *ShortLinkService) CreateShortLink(ctx context.Context, ownerEmail string, req dto.CreateShortLinkRequest) (*model.ShortLink, error) {
	now := time.Now()

	// Gin 标准验证之外的业务校验，错误信息为 i18n 消息键
	if err := req.Validate(now); err != nil {
		return nil, apperrors.InvalidRequestError(err.Error())
	}

	target, err := url.ParseRequestURI(req.TargetURL)
	if err != nil {
		return nil, apperrors.InvalidRequestError("error.target_url_invalid")
	}

	// 白名单放行校验
	allowed, err := s.domains.IsAllowed(ctx, target.Hostname())
	if err != nil {
		s.logger.Error("查询域名白名单失败", zap.String("host", target.Hostname()), zap.Error(err))
		return nil, apperrors.BackendUnavailable(err)
	}
	if !allowed {
		return nil, apperrors.ErrDomainNotAllowed
	}

	// 可达性探测，目标站点握手失败时拒绝建链
	if s.probe != nil {
		if err := s.probe(ctx, req.TargetURL); err != nil {
			s.logger.Info("目标 URL 探测失败",
				zap.String("target_url", req.TargetURL),
				zap.Error(err))
			return nil, apperrors.InvalidRequestError("error.target_url_unreachable")
		}
	}

	link := &model.ShortLink{
		OwnerEmail:   ownerEmail,
		TargetURL:    req.TargetURL,
		RedirectCode: req.RedirectCode,
		ExpiresAt:    req.ExpiresAt,
	}
	if link.RedirectCode == 0 {
		link.RedirectCode = http.StatusFound // 默认临时跳转
	}

	// 指定短码：唯一冲突直接返回已存在
	if req.ShortCode != "" {
		if err := utils.ValidateShortCode(req.ShortCode); err != nil {
			return nil, apperrors.InvalidRequestError(err.Error())
		}
		link.ShortCode = req.ShortCode
		if err := s.repo.Insert(ctx, link); err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return nil, apperrors.ErrCodeExists
			}
			s.logger.Error("数据库写入失败", zap.String("short_code", link.ShortCode), zap.Error(err))
			return nil, apperrors.BackendUnavailable(err)
		}
		s.cacheLink(ctx, link)
		return link, nil
	}

	// 随机短码：冲突换码重试，唯一索引兜底保证不会覆盖已有短码
	for attempt := 1; attempt <= s.maxRetries; attempt++ {
		link.ID = uuid.Nil // 重试时重新生成主键
		link.ShortCode = s.generate()

		err := s.repo.Insert(ctx, link)
		if err == nil {
			s.cacheLink(ctx, link)
			return link, nil
		}
		if !errors.Is(err, gorm.ErrDuplicatedKey) {
			s.logger.Error("数据库写入失败", zap.String("short_code", link.ShortCode), zap.Error(err))
			return nil, apperrors.BackendUnavailable(err)
		}
		s.logger.Warn("短码冲突，重新生成",
			zap.String("short_code", link.ShortCode),
			zap.Int("attempt", attempt))
	}

	s.logger.Error("短码生成重试次数用尽",
		zap.Int("max_retries", s.maxRetries),
		zap.String("owner", ownerEmail))
	return nil, apperrors.ErrCodeSpaceExhausted
}

// cacheLink 建链后写入缓存，失败只记日志，读路径会自行回源
func (s *ShortLinkService) cacheLink(ctx context.Context, link *model.ShortLink) {
	if err := s.cache.Set(ctx, link); err != nil {
		s.logger.Warn("写入缓存失败",
			zap.String("short_code", link.ShortCode),
			zap.Error(err))
	}
}

// Resolve 短码解析，缓存优先，未命中回源数据库并回填
// 返回 ErrNotFound / ErrLinkExpired / BackendUnavailable
func (s *ShortLinkService) Resolve(ctx context.Context, shortCode string) (*model.ShortLink, error) {
	if err := utils.ValidateShortCode(shortCode); err != nil {
		// 非法短码不可能存在于库中，直接按未找到处理
		return nil, apperrors.ErrNotFound
	}

	now := time.Now()

	link, found, err := s.cache.Get(ctx, shortCode)
	if err != nil {
		s.logger.Warn("读取缓存失败，降级回源",
			zap.String("short_code", shortCode),
			zap.Error(err))
	} else if found {
		if link == nil {
			// 负缓存命中
			return nil, apperrors.ErrNotFound
		}
		if link.Resolvable(now) {
			return link, nil
		}
		// 缓存中的记录已过期或被禁用，按未命中处理并清掉脏缓存
		if err := s.cache.Delete(ctx, shortCode); err != nil {
			s.logger.Warn("删除过期缓存失败",
				zap.String("short_code", shortCode),
				zap.Error(err))
		}
	}

	v, err, _ := s.sf.Do(shortCode, func() (interface{}, error) {
		return s.resolveFromStore(ctx, shortCode, now)
	})
	if err != nil {
		return nil, err
	}
	return v.(*model.ShortLink), nil
}

// resolveFromStore 回源数据库，并按查询结果回填正向或负向缓存
func (s *ShortLinkService) resolveFromStore(ctx context.Context, shortCode string, now time.Time) (*model.ShortLink, error) {
	link, err := s.repo.FindByCode(ctx, shortCode)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// 缓存空值，防止缓存穿透
			s.cacheNegative(ctx, shortCode)
			return nil, apperrors.ErrNotFound
		}
		s.logger.Error("查询短链失败", zap.String("short_code", shortCode), zap.Error(err))
		return nil, apperrors.BackendUnavailable(err)
	}

	if link.IsExpired(now) {
		s.cacheNegative(ctx, shortCode)
		return nil, apperrors.ErrLinkExpired
	}
	if link.Disabled {
		s.cacheNegative(ctx, shortCode)
		return nil, apperrors.ErrNotFound
	}

	s.cacheLink(ctx, link)
	return link, nil
}

func (s *ShortLinkService) cacheNegative(ctx context.Context, shortCode string) {
	if err := s.cache.SetNegative(ctx, shortCode); err != nil {
		s.logger.Warn("写入负缓存失败",
			zap.String("short_code", shortCode),
			zap.Error(err))
	}
}

// ListShortLinks 游标分页查询当前用户的短链列表
func (s *ShortLinkService) ListShortLinks(ctx context.Context, ownerEmail, afterCode, codeFilter string, limit int) ([]model.ShortLink, error) {
	if limit < 1 {
		limit = defaultListLimit
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}

	links, err := s.repo.ListByOwner(ctx, ownerEmail, afterCode, codeFilter, limit)
	if err != nil {
		s.logger.Error("查询短链列表失败", zap.String("owner", ownerEmail), zap.Error(err))
		return nil, apperrors.BackendUnavailable(err)
	}
	return links, nil
}

// GetShortLink 按主键查询当前用户的短链
func (s *ShortLinkService) GetShortLink(ctx context.Context, ownerEmail string, id uuid.UUID) (*model.ShortLink, error) {
	link, err := s.repo.FindByID(ctx, ownerEmail, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		s.logger.Error("查询短链失败", zap.String("id", id.String()), zap.Error(err))
		return nil, apperrors.BackendUnavailable(err)
	}
	return link, nil
}

// UpdateShortLinkStatus 启用/禁用短链，变更后删除缓存保证即时生效
func (s *ShortLinkService) UpdateShortLinkStatus(ctx context.Context, ownerEmail string, id uuid.UUID, disabled bool) error {
	link, err := s.repo.FindByID(ctx, ownerEmail, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.ErrNotFound
		}
		s.logger.Error("查询短链失败", zap.String("id", id.String()), zap.Error(err))
		return apperrors.BackendUnavailable(err)
	}

	if link.Disabled == disabled {
		return nil // 状态未变化
	}

	link.Disabled = disabled
	if err := s.repo.Save(ctx, link); err != nil {
		s.logger.Error("更新短链状态失败", zap.String("id", id.String()), zap.Error(err))
		return apperrors.BackendUnavailable(err)
	}

	// 启用和禁用都要清缓存：禁用清掉正向缓存，启用清掉负缓存
	if err := s.cache.Delete(ctx, link.ShortCode); err != nil {
		s.logger.Warn("删除缓存失败",
			zap.String("short_code", link.ShortCode),
			zap.Error(err))
	}
	return nil
}

// DeleteShortLink 软删除短链并返回被删记录，短码永久保留不再分配
func (s *ShortLinkService) DeleteShortLink(ctx context.Context, ownerEmail string, id uuid.UUID) (*model.ShortLink, error) {
	link, err := s.repo.FindByID(ctx, ownerEmail, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		s.logger.Error("查询短链失败", zap.String("id", id.String()), zap.Error(err))
		return nil, apperrors.BackendUnavailable(err)
	}

	if err := s.repo.Delete(ctx, link); err != nil {
		s.logger.Error("删除短链失败", zap.String("id", id.String()), zap.Error(err))
		return nil, apperrors.BackendUnavailable(err)
	}

	if err := s.cache.Delete(ctx, link.ShortCode); err != nil {
		s.logger.Warn("删除缓存失败",
			zap.String("short_code", link.ShortCode),
			zap.Error(err))
	}
	return link, nil
}

// SweepExpired 清理最近到期短链的缓存，由定时任务调用
// 读路径对过期记录有兜底判断，这里只是让缓存尽快收敛
func (s *ShortLinkService) SweepExpired(ctx context.Context, lookback time.Duration) (int, error) {
	now := time.Now()
	links, err := s.repo.FindExpiredBetween(ctx, now.Add(-lookback), now)
	if err != nil {
		s.logger.Error("查询到期短链失败", zap.Error(err))
		return 0, err
	}

	for _, link := range links {
		if err := s.cache.Delete(ctx, link.ShortCode); err != nil {
			s.logger.Warn("删除到期短链缓存失败",
				zap.String("short_code", link.ShortCode),
				zap.Error(err))
		}
	}

	if len(links) > 0 {
		s.logger.Info("到期短链缓存清理完成", zap.Int("count", len(links)))
	}
	return len(links), nil
}
