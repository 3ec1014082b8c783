package auth

import (
	"fmt"
	"strings"

	"github.com/dgrijalva/jwt-go"

	"urban-pulse/internal/domain/model"
)

// JWTVerifier はホスト型認証プロバイダが発行したHS256トークンを検証する
type JWTVerifier struct {
	secret []byte
}

// NewJWTVerifier は署名鍵を指定してJWTVerifierを作成
func NewJWTVerifier(secret string) (*JWTVerifier, error) {
	if secret == "" {
		return nil, fmt.Errorf("AUTH_JWT_SECRET環境変数が設定されていません")
	}
	return &JWTVerifier{secret: []byte(secret)}, nil
}

// Verify は "Bearer " 付きまたは素のトークン文字列を検証し、ユーザーを返す
func (v *JWTVerifier) Verify(tokenString string) (*model.CurrentUser, error) {
	tokenString = strings.TrimSpace(strings.TrimPrefix(tokenString, "Bearer "))
	if tokenString == "" {
		return nil, model.ErrUnauthorized
	}

	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("想定外の署名方式です: %v", token.Header["alg"])
		}
		return v.secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", model.ErrUnauthorized, err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, model.ErrUnauthorized
	}

	sub, _ := claims["sub"].(string)
	if sub == "" {
		return nil, fmt.Errorf("%w: subクレームがありません", model.ErrUnauthorized)
	}
	email, _ := claims["email"].(string)
	name, _ := claims["name"].(string)

	return &model.CurrentUser{ID: sub, Email: email, Name: name}, nil
}
