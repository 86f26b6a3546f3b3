package storage

import (
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	ErrInvalidUploadToken = errors.New("invalid upload token")
	ErrExpiredUploadToken = errors.New("upload token has expired")
)

const uploadAudience = "photo-upload"

// uploadClaims binds an upload link to one key and content type.
type uploadClaims struct {
	Key         string `json:"key"`
	ContentType string `json:"content_type"`
	jwt.RegisteredClaims
}

func (s *LocalPhotoStore) signUpload(key, contentType string, expiresIn time.Duration) (string, error) {
	now := time.Now()
	claims := uploadClaims{
		Key:         key,
		ContentType: strings.ToLower(contentType),
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(expiresIn)),
			IssuedAt:  jwt.NewNumericDate(now),
			Audience:  jwt.ClaimStrings{uploadAudience},
			ID:        uuid.NewString(),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

// VerifyUpload checks that token was issued by this store for key and
// contentType and has not expired.
func (s *LocalPhotoStore) VerifyUpload(token, key, contentType string) error {
	parsed, err := jwt.ParseWithClaims(token, &uploadClaims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidUploadToken
		}
		return s.secret, nil
	}, jwt.WithAudience(uploadAudience))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return ErrExpiredUploadToken
		}
		return ErrInvalidUploadToken
	}

	claims, ok := parsed.Claims.(*uploadClaims)
	if !ok || !parsed.Valid {
		return ErrInvalidUploadToken
	}
	if claims.Key != key || claims.ContentType != strings.ToLower(contentType) {
		return ErrInvalidUploadToken
	}
	return nil
}
