package service

import (
	"errors"
	"strings"
	"time"

	"github.com/dujiao-next/storefront-cart/internal/config"
	"github.com/dujiao-next/storefront-cart/internal/constants"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const defaultCartSessionExpireHours = 24 * 30

// CartSessionClaims 游客购物车会话令牌
type CartSessionClaims struct {
	SessionID string `json:"sid"`
	jwt.RegisteredClaims
}

// CartSessionService 签发与校验购物车会话
type CartSessionService struct {
	secret      []byte
	expireHours int
	now         func() time.Time
}

// NewCartSessionService 创建购物车会话服务
func NewCartSessionService(cfg config.CartSessionConfig) *CartSessionService {
	hours := cfg.ExpireHours
	if hours <= 0 {
		hours = defaultCartSessionExpireHours
	}
	return &CartSessionService{
		secret:      []byte(cfg.SecretKey),
		expireHours: hours,
		now:         time.Now,
	}
}

// NewSessionID 生成新的会话ID
func NewSessionID() string {
	return uuid.NewString()
}

// Issue 为会话签发令牌，sessionID 为空时生成新会话
func (s *CartSessionService) Issue(sessionID string) (string, string, time.Time, error) {
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		sessionID = NewSessionID()
	}
	now := s.now()
	expiresAt := now.Add(time.Duration(s.expireHours) * time.Hour)
	claims := CartSessionClaims{
		SessionID: sessionID,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    constants.CartSessionIssuer,
			Subject:   sessionID,
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(s.secret)
	if err != nil {
		return "", "", time.Time{}, err
	}
	return tokenString, sessionID, expiresAt, nil
}

// Parse 校验令牌并返回会话
func (s *CartSessionService) Parse(tokenString string) (*CartSessionClaims, error) {
	tokenString = strings.TrimSpace(tokenString)
	if tokenString == "" {
		return nil, ErrCartSessionRequired
	}
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(constants.CartSessionIssuer),
		jwt.WithTimeFunc(s.now),
	)
	claims := &CartSessionClaims{}
	token, err := parser.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return s.secret, nil
	})
	if err != nil {
		return nil, errors.Join(ErrCartSessionInvalid, err)
	}
	if !token.Valid || strings.TrimSpace(claims.SessionID) == "" {
		return nil, ErrCartSessionInvalid
	}
	return claims, nil
}
