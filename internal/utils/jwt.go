package utils

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt"
)

var (
	jwtSecret    []byte
	tokenExpires = 24 * time.Hour
)

// InitJWT 設定簽名密鑰與有效期，必須在伺服器啟動時呼叫
func InitJWT(secret string, expireHours int) {
	jwtSecret = []byte(secret)
	if expireHours > 0 {
		tokenExpires = time.Duration(expireHours) * time.Hour
	}
}

type Claims struct {
	UserID   string `json:"user_id"`
	Username string `json:"username"`
	Role     string `json:"role"`
	jwt.StandardClaims
}

// GenerateToken 生成一個新的 JWT token
func GenerateToken(userID, username, role string) (string, error) {
	nowTime := time.Now()
	expireTime := nowTime.Add(tokenExpires)

	claims := Claims{
		UserID:   userID,
		Username: username,
		Role:     role,
		StandardClaims: jwt.StandardClaims{
			ExpiresAt: expireTime.Unix(),
			IssuedAt:  nowTime.Unix(),
		},
	}

	tokenClaims := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return tokenClaims.SignedString(jwtSecret)
}

// ParseToken 解析和驗證 JWT token
func ParseToken(token string) (*Claims, error) {
	if len(jwtSecret) == 0 {
		return nil, errors.New("jwt secret not initialized")
	}

	tokenClaims, err := jwt.ParseWithClaims(token, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		return jwtSecret, nil
	})

	if tokenClaims != nil {
		if claims, ok := tokenClaims.Claims.(*Claims); ok && tokenClaims.Valid {
			return claims, nil
		}
	}

	return nil, err
}
