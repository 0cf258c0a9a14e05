package security

import (
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/golang-jwt/jwt/v5"
	"github.com/lk2023060901/kidlingo/pkg/config"
)

// JWTConfig JWT 配置，只支持 HMAC 系列算法
type JWTConfig struct {
	SecretKey   string        `mapstructure:"secret_key" json:"secret_key"`
	Algorithm   string        `mapstructure:"algorithm" json:"algorithm"` // HS256/HS384/HS512
	ExpiresIn   time.Duration `mapstructure:"expires_in" json:"expires_in"`
	Issuer      string        `mapstructure:"issuer" json:"issuer"`
	TokenPrefix string        `mapstructure:"token_prefix" json:"token_prefix"`
}

// DefaultJWTConfig 默认配置，有效期 1 小时
func DefaultJWTConfig() *JWTConfig {
	return &JWTConfig{
		Algorithm:   "HS256",
		ExpiresIn:   time.Hour,
		TokenPrefix: "Bearer ",
	}
}

// Claims 令牌声明，Subject 为用户 ID
type Claims struct {
	jwt.RegisteredClaims
}

// JWTManager JWT 管理器
type JWTManager struct {
	config *JWTConfig
	method jwt.SigningMethod
}

// NewJWTManager 创建 JWT 管理器
func NewJWTManager(cfg *JWTConfig) (*JWTManager, error) {
	merged, err := config.MergeConfig(DefaultJWTConfig(), cfg)
	if err != nil {
		return nil, err
	}
	if merged.SecretKey == "" {
		return nil, ErrSecretKeyEmpty
	}

	var method jwt.SigningMethod
	switch strings.ToUpper(merged.Algorithm) {
	case "HS384":
		method = jwt.SigningMethodHS384
	case "HS512":
		method = jwt.SigningMethodHS512
	default:
		method = jwt.SigningMethodHS256
	}
	return &JWTManager{config: merged, method: method}, nil
}

// Generate 为 subject 签发令牌，返回令牌与过期时间
func (m *JWTManager) Generate(subject string) (string, time.Time, error) {
	now := time.Now()
	exp := now.Add(m.config.ExpiresIn)
	claims := &Claims{RegisteredClaims: jwt.RegisteredClaims{
		Subject:   subject,
		Issuer:    m.config.Issuer,
		IssuedAt:  jwt.NewNumericDate(now),
		NotBefore: jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(exp),
	}}

	token, err := jwt.NewWithClaims(m.method, claims).SignedString([]byte(m.config.SecretKey))
	if err != nil {
		return "", time.Time{}, errors.Wrap(err, "sign token")
	}
	return token, exp, nil
}

// Validate 验证令牌签名与有效期
func (m *JWTManager) Validate(tokenString string) (*Claims, error) {
	tokenString = strings.TrimPrefix(tokenString, m.config.TokenPrefix)

	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(t *jwt.Token) (any, error) {
		if t.Method.Alg() != m.method.Alg() {
			return nil, ErrAlgorithmMismatch
		}
		return []byte(m.config.SecretKey), nil
	})
	if err != nil {
		return nil, wrapJWTError(err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrTokenInvalid
	}
	return claims, nil
}

func wrapJWTError(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return errors.Mark(err, ErrTokenExpired)
	case errors.Is(err, jwt.ErrTokenMalformed):
		return errors.Mark(err, ErrTokenMalformed)
	case errors.Is(err, ErrAlgorithmMismatch):
		return err
	default:
		return errors.Mark(err, ErrTokenInvalid)
	}
}

// PeekExpiry 不校验签名，只读取 exp 声明
// 客户端没有服务端密钥，只能据此估算会话何时过期
func PeekExpiry(tokenString string) (time.Time, bool) {
	claims := &jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(tokenString, claims); err != nil {
		return time.Time{}, false
	}
	if claims.ExpiresAt == nil {
		return time.Time{}, false
	}
	return claims.ExpiresAt.Time, true
}
