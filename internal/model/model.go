// Package model はドメインモデルを定義する。
package model

import "time"

// User はサービス利用ユーザーを表す。
type User struct {
	ID           int64
	Name         string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Meeting はミーティングを表す。
// Membersはmeeting_user結合テーブル経由で登録済みのユーザー。
type Meeting struct {
	ID          int64
	Title       string
	Description string
	Time        time.Time
	Members     []User
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Session はベアラートークンの裏付けとなるログインセッションを表す。
// IDはJWTのjtiクレームに対応する。行が削除されたトークンは失効する。
type Session struct {
	ID        string
	UserID    int64
	ExpiresAt time.Time
	CreatedAt time.Time
}

// TimeLayout はミーティング時刻の入力フォーマット（YYYYMMDDHHiiss）。
const TimeLayout = "20060102150405"
