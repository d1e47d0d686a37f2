package model

import "time"

type ShortLink struct {
	BaseModel
	OwnerEmail   string     `gorm:"size:255;index;not null" json:"ownerEmail"`
	ShortCode    string     `gorm:"uniqueIndex;size:32;not null" json:"shortCode"`
	TargetURL    string     `gorm:"size:2048;not null" json:"targetUrl"`
	RedirectCode int        `gorm:"default:302" json:"redirectCode"`
	Disabled     bool       `json:"disabled"`
	ExpiresAt    *time.Time `gorm:"index" json:"expiresAt,omitempty"`
}

// IsExpired 判断短链是否已过期；未设置过期时间视为永久有效
func (l *ShortLink) IsExpired(now time.Time) bool {
	if l.ExpiresAt == nil {
		return false
	}
	return now.After(*l.ExpiresAt)
}

// Resolvable 是否可对外跳转（未禁用且未过期）
func (l *ShortLink) Resolvable(now time.Time) bool {
	return !l.Disabled && !l.IsExpired(now)
}
