package service_test

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"shortlink-service/internal/model"
)

var errMock = errors.New("mock error")

// fakeLinkRepo 内存版短链接仓库，行为对齐数据库语义：
// 短码唯一冲突返回 gorm.ErrDuplicatedKey，未命中返回 gorm.ErrRecordNotFound
type fakeLinkRepo struct {
	mu     sync.Mutex
	byCode map[string]model.ShortLink

	insertErr error
	findErr   error
	saveErr   error

	insertCalls int
	findCalls   int
	saveCalls   int
	lastLimit   int

	findDelay time.Duration
}

func newFakeLinkRepo() *fakeLinkRepo {
	return &fakeLinkRepo{byCode: make(map[string]model.ShortLink)}
}

func (r *fakeLinkRepo) Insert(_ context.Context, link *model.ShortLink) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.insertCalls++

	if r.insertErr != nil {
		return r.insertErr
	}
	if _, exists := r.byCode[link.ShortCode]; exists {
		return gorm.ErrDuplicatedKey
	}
	if link.ID == uuid.Nil {
		link.ID = uuid.New()
	}
	link.CreatedAt = time.Now()
	r.byCode[link.ShortCode] = *link
	return nil
}

func (r *fakeLinkRepo) FindByCode(_ context.Context, code string) (*model.ShortLink, error) {
	if r.findDelay > 0 {
		time.Sleep(r.findDelay)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.findCalls++

	if r.findErr != nil {
		return nil, r.findErr
	}
	link, ok := r.byCode[code]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	out := link
	return &out, nil
}

func (r *fakeLinkRepo) FindByID(_ context.Context, ownerEmail string, id uuid.UUID) (*model.ShortLink, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.findErr != nil {
		return nil, r.findErr
	}
	for _, link := range r.byCode {
		if link.ID == id && link.OwnerEmail == ownerEmail {
			out := link
			return &out, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeLinkRepo) ListByOwner(_ context.Context, ownerEmail, afterCode, codeFilter string, limit int) ([]model.ShortLink, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lastLimit = limit

	if r.findErr != nil {
		return nil, r.findErr
	}

	var links []model.ShortLink
	for _, link := range r.byCode {
		if link.OwnerEmail != ownerEmail {
			continue
		}
		if afterCode != "" && link.ShortCode <= afterCode {
			continue
		}
		if codeFilter != "" && !strings.Contains(link.ShortCode, codeFilter) {
			continue
		}
		links = append(links, link)
	}
	sort.Slice(links, func(i, j int) bool { return links[i].ShortCode < links[j].ShortCode })
	if len(links) > limit {
		links = links[:limit]
	}
	return links, nil
}

func (r *fakeLinkRepo) Save(_ context.Context, link *model.ShortLink) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.saveCalls++

	if r.saveErr != nil {
		return r.saveErr
	}
	r.byCode[link.ShortCode] = *link
	return nil
}

func (r *fakeLinkRepo) Delete(_ context.Context, link *model.ShortLink) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.byCode, link.ShortCode)
	return nil
}

func (r *fakeLinkRepo) FindExpiredBetween(_ context.Context, from, to time.Time) ([]model.ShortLink, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.findErr != nil {
		return nil, r.findErr
	}
	var links []model.ShortLink
	for _, link := range r.byCode {
		if link.ExpiresAt == nil {
			continue
		}
		if !link.ExpiresAt.Before(from) && link.ExpiresAt.Before(to) {
			links = append(links, link)
		}
	}
	return links, nil
}

func (r *fakeLinkRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.byCode)
}

// fakeLinkCache 内存版缓存，entries 中 value 为 nil 表示负缓存
type fakeLinkCache struct {
	mu      sync.Mutex
	entries map[string]*model.ShortLink

	getErr    error
	setErr    error
	setNegErr error
	delErr    error

	setCalls int
	negCalls int
	delCalls int
}

func newFakeLinkCache() *fakeLinkCache {
	return &fakeLinkCache{entries: make(map[string]*model.ShortLink)}
}

func (c *fakeLinkCache) Get(_ context.Context, code string) (*model.ShortLink, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.getErr != nil {
		return nil, false, c.getErr
	}
	entry, ok := c.entries[code]
	if !ok {
		return nil, false, nil
	}
	if entry == nil {
		return nil, true, nil
	}
	out := *entry
	return &out, true, nil
}

func (c *fakeLinkCache) Set(_ context.Context, link *model.ShortLink) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.setCalls++

	if c.setErr != nil {
		return c.setErr
	}
	copied := *link
	c.entries[link.ShortCode] = &copied
	return nil
}

func (c *fakeLinkCache) SetNegative(_ context.Context, code string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.negCalls++

	if c.setNegErr != nil {
		return c.setNegErr
	}
	c.entries[code] = nil
	return nil
}

func (c *fakeLinkCache) Delete(_ context.Context, code string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.delCalls++

	if c.delErr != nil {
		return c.delErr
	}
	delete(c.entries, code)
	return nil
}

func (c *fakeLinkCache) has(code string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.entries[code]
	return ok
}

func (c *fakeLinkCache) isNegative(code string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	entry, ok := c.entries[code]
	return ok && entry == nil
}

// stubDomainChecker 固定放行结果
type stubDomainChecker struct {
	allowed bool
	err     error
}

func (s stubDomainChecker) IsAllowed(context.Context, string) (bool, error) {
	return s.allowed, s.err
}

// fakeWhitelistRepo 内存版白名单仓库
type fakeWhitelistRepo struct {
	mu       sync.Mutex
	byDomain map[string]model.WhitelistDomain

	listErr error
}

func newFakeWhitelistRepo() *fakeWhitelistRepo {
	return &fakeWhitelistRepo{byDomain: make(map[string]model.WhitelistDomain)}
}

func (r *fakeWhitelistRepo) Insert(_ context.Context, domain *model.WhitelistDomain) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byDomain[domain.Domain]; exists {
		return gorm.ErrDuplicatedKey
	}
	if domain.ID == uuid.Nil {
		domain.ID = uuid.New()
	}
	r.byDomain[domain.Domain] = *domain
	return nil
}

func (r *fakeWhitelistRepo) List(_ context.Context, page, size int, filter string) ([]model.WhitelistDomain, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.listErr != nil {
		return nil, 0, r.listErr
	}

	var all []model.WhitelistDomain
	for _, d := range r.byDomain {
		if filter != "" && !strings.Contains(d.Domain, filter) {
			continue
		}
		all = append(all, d)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].Domain < all[j].Domain })

	total := int64(len(all))
	start := (page - 1) * size
	if start >= len(all) {
		return []model.WhitelistDomain{}, total, nil
	}
	end := start + size
	if end > len(all) {
		end = len(all)
	}
	return all[start:end], total, nil
}

func (r *fakeWhitelistRepo) ListAll(_ context.Context) ([]model.WhitelistDomain, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.listErr != nil {
		return nil, r.listErr
	}
	var all []model.WhitelistDomain
	for _, d := range r.byDomain {
		all = append(all, d)
	}
	return all, nil
}

func (r *fakeWhitelistRepo) DeleteByID(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for domain, d := range r.byDomain {
		if d.ID == id {
			delete(r.byDomain, domain)
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

// fakeTokenCache 内存版令牌缓存，异步写入路径会并发访问，必须加锁
type fakeTokenCache struct {
	mu     sync.Mutex
	tokens map[string]string

	getErr error
	setErr error

	getCalls int
	setCalls int
}

func newFakeTokenCache() *fakeTokenCache {
	return &fakeTokenCache{tokens: make(map[string]string)}
}

func (c *fakeTokenCache) GetEmail(_ context.Context, token string) (string, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.getCalls++

	if c.getErr != nil {
		return "", false, c.getErr
	}
	email, ok := c.tokens[token]
	return email, ok, nil
}

func (c *fakeTokenCache) SetEmailNX(_ context.Context, token, email string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.setCalls++

	if c.setErr != nil {
		return c.setErr
	}
	if _, exists := c.tokens[token]; !exists {
		c.tokens[token] = email
	}
	return nil
}

func (c *fakeTokenCache) email(token string) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	email, ok := c.tokens[token]
	return email, ok
}
