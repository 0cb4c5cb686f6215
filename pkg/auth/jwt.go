package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v4"

	apperrors "github.com/yourusername/quiz-api/internal/pkg/errors"
)

// RoleAdmin - роль, открывающая изменение контента
const RoleAdmin = "admin"

// Минимальная длина HMAC-секрета
const MinSecretLength = 16

// JWTCustomClaims содержит пользовательские поля для токена
type JWTCustomClaims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// IsAdmin сообщает, выдан ли токен администратору
func (c *JWTCustomClaims) IsAdmin() bool {
	return c.Role == RoleAdmin
}

// JWTService подписывает и проверяет HS256-токены.
// Секрет читается через SecretFunc при каждом вызове, поэтому отсутствие
// секрета обнаруживается в момент первого обращения, а не при старте.
type JWTService struct {
	secret        func() string
	expirationHrs int
}

// NewJWTService создает сервис. secret может вернуть пустую строку: тогда
// операции вернут apperrors.ErrNotConfigured.
func NewJWTService(secret func() string, expirationHrs int) *JWTService {
	if expirationHrs <= 0 {
		expirationHrs = 24
	}
	return &JWTService{secret: secret, expirationHrs: expirationHrs}
}

func (s *JWTService) key() ([]byte, error) {
	var secret string
	if s.secret != nil {
		secret = s.secret()
	}
	if strings.TrimSpace(secret) == "" {
		return nil, fmt.Errorf("auth.jwt_secret: %w", apperrors.ErrNotConfigured)
	}
	return []byte(secret), nil
}

// GenerateToken выпускает токен для subject с заданной ролью
func (s *JWTService) GenerateToken(subject, role string) (string, error) {
	key, err := s.key()
	if err != nil {
		return "", err
	}

	now := time.Now()
	claims := &JWTCustomClaims{
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Duration(s.expirationHrs) * time.Hour)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(key)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// ParseToken проверяет подпись и срок действия токена.
// Ошибки токена оборачивают apperrors.ErrUnauthorized.
func (s *JWTService) ParseToken(tokenString string) (*JWTCustomClaims, error) {
	key, err := s.key()
	if err != nil {
		return nil, err
	}

	claims := &JWTCustomClaims{}
	_, err = jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		// Проверяем метод подписи токена
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return key, nil
	})
	if err != nil {
		var ve *jwt.ValidationError
		if errors.As(err, &ve) {
			switch {
			case ve.Errors&jwt.ValidationErrorMalformed != 0:
				return nil, fmt.Errorf("token is malformed: %w", apperrors.ErrUnauthorized)
			case ve.Errors&jwt.ValidationErrorExpired != 0:
				return nil, fmt.Errorf("token is expired: %w", apperrors.ErrUnauthorized)
			case ve.Errors&jwt.ValidationErrorSignatureInvalid != 0:
				return nil, fmt.Errorf("signature is invalid: %w", apperrors.ErrUnauthorized)
			}
		}
		return nil, fmt.Errorf("token validation failed: %w", apperrors.ErrUnauthorized)
	}
	return claims, nil
}
