// Package auth はユーザー登録・サインイン・ベアラートークン管理を提供する。
package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

// ErrBadToken は署名不正・期限切れ・形式不正のトークンを表す。
var ErrBadToken = errors.New("invalid token")

// HashPassword はbcryptでパスワードをハッシュ化する。
func HashPassword(pw string, cost int) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(pw), cost)
	return string(b), err
}

// CheckPassword はパスワードがハッシュと一致するかを返す。
func CheckPassword(hash, pw string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(pw)) == nil
}

// Claims はベアラートークンのクレーム。
// UserIDが認証主体、RegisteredClaims.IDはsessionsテーブルの行ID（jti）。
type Claims struct {
	UserID int64 `json:"uid"`
	jwt.RegisteredClaims
}

// MakeToken はHS256署名のベアラートークンを生成する。
// sessionIDをjtiとして埋め込み、セッション行の削除でトークンを失効可能にする。
func MakeToken(userID int64, sessionID, secret string, maxAge time.Duration) (string, error) {
	c := Claims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        sessionID,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(maxAge)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString([]byte(secret))
}

// ParseToken はベアラートークンを検証してクレームを返す。
func ParseToken(raw, secret string) (*Claims, error) {
	tok, err := jwt.ParseWithClaims(raw, &Claims{}, func(t *jwt.Token) (any, error) {
		// alg混同攻撃を遮断する
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrBadToken
		}
		return []byte(secret), nil
	})
	if err != nil {
		return nil, err
	}
	c, ok := tok.Claims.(*Claims)
	if !ok || !tok.Valid {
		return nil, ErrBadToken
	}
	return c, nil
}
