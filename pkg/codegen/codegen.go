// Package codegen 负责生成随机短码
package codegen

import (
	"fmt"

	"github.com/jaevor/go-nanoid"
)

// Base62Alphabet 短码字符集：数字 + 大小写字母
const Base62Alphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz"

// Generator 返回一个新短码
type Generator func() string

// NewBase62 构造 base62 随机短码生成器
// 长度 8 时码空间约 62^8 ≈ 2.18e14，碰撞概率可忽略
func NewBase62(length int) (Generator, error) {
	if length < 4 || length > 32 {
		return nil, fmt.Errorf("code length must be between 4 and 32, got %d", length)
	}

	gen, err := nanoid.CustomASCII(Base62Alphabet, length)
	if err != nil {
		return nil, err
	}
	return Generator(gen), nil
}
