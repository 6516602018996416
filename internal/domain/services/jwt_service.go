package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"rwportal-http-service/internal/domain/models"
	"rwportal-http-service/internal/infrastructure/config"

	"github.com/golang-jwt/jwt/v4"
	"gorm.io/gorm"
)

// InterfaceJWTService 定义JWT服务接口
type InterfaceJWTService interface {
	GenerateToken(userID uint, role models.Role, rtID *uint) (string, error)
	ValidateToken(tokenString string) (*JWTClaims, error)
	ParseCaller(tokenString string) (*Caller, error)
	Login(ctx context.Context, username, password string) (*LoginResult, error)
}

// LoginResult 表示登录结果
type LoginResult struct {
	Token     string      `json:"token"`
	ExpiresAt time.Time   `json:"expires_at"`
	UserID    uint        `json:"user_id"`
	Role      models.Role `json:"role"`
	Username  string      `json:"username"`
	Name      string      `json:"name,omitempty"`
	RTID      *uint       `json:"rt_id,omitempty"`
}

// JWTClaims 定义JWT令牌的声明结构
type JWTClaims struct {
	UserID uint        `json:"user_id"`
	Role   models.Role `json:"role"`
	RTID   *uint       `json:"rt_id,omitempty"` // RT 管理层与居民所属的 RT
	jwt.RegisteredClaims
}

// JWTService 提供JWT相关服务
type JWTService struct {
	secretKey []byte
	issuer    string
	expire    time.Duration
	DB        *gorm.DB
}

// NewJWTService 创建一个新的JWT服务
func NewJWTService(cfg *config.Config, db *gorm.DB) *JWTService {
	return &JWTService{
		secretKey: []byte(cfg.JWTSecretKey),
		issuer:    "rwportal-http-service",
		expire:    time.Duration(cfg.JWTExpireHours) * time.Hour,
		DB:        db,
	}
}

// 1 GenerateToken 生成JWT令牌
func (s *JWTService) GenerateToken(userID uint, role models.Role, rtID *uint) (string, error) {
	token, _, err := s.generate(userID, role, rtID)
	return token, err
}

func (s *JWTService) generate(userID uint, role models.Role, rtID *uint) (string, time.Time, error) {
	now := time.Now()
	expiresAt := now.Add(s.expire)

	claims := &JWTClaims{
		UserID: userID,
		Role:   role,
		RTID:   rtID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			Issuer:    s.issuer,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secretKey)
	return signed, expiresAt, err
}

// 2 ValidateToken 验证JWT令牌并返回声明
func (s *JWTService) ValidateToken(tokenString string) (*JWTClaims, error) {
	claims := &JWTClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		// 验证签名算法
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.secretKey, nil
	})
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, errors.New("invalid token")
	}
	if !claims.Role.Valid() {
		return nil, fmt.Errorf("unknown role %q", claims.Role)
	}
	return claims, nil
}

// 3 ParseCaller 将令牌解析为调用方身份
func (s *JWTService) ParseCaller(tokenString string) (*Caller, error) {
	claims, err := s.ValidateToken(tokenString)
	if err != nil {
		return nil, err
	}
	return &Caller{
		UserID: claims.UserID,
		Role:   claims.Role,
		RTID:   claims.RTID,
	}, nil
}

// 4 Login 处理用户登录请求
func (s *JWTService) Login(ctx context.Context, username, password string) (*LoginResult, error) {
	var user models.User
	if err := s.DB.WithContext(ctx).Where("username = ?", username).First(&user).Error; err != nil {
		if isNotFound(err) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if user.Status != "" && user.Status != "active" {
		return nil, ErrInvalidCredentials
	}
	if !user.CheckPassword(password) {
		return nil, ErrInvalidCredentials
	}

	token, expiresAt, err := s.generate(user.ID, user.Role, user.RTID)
	if err != nil {
		return nil, err
	}

	return &LoginResult{
		Token:     token,
		ExpiresAt: expiresAt,
		UserID:    user.ID,
		Role:      user.Role,
		Username:  user.Username,
		Name:      user.Name,
		RTID:      user.RTID,
	}, nil
}
