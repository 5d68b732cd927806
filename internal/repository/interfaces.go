// Package repository はデータ永続化のインターフェースを定義する。
package repository

import (
	"context"
	"database/sql"

	"github.com/hitoshi/meetman/internal/model"
)

// UserRepository はユーザーデータの永続化インターフェース。
type UserRepository interface {
	// Create はユーザーを作成し、採番されたIDをuser.IDに書き戻す。
	Create(ctx context.Context, user *model.User) error

	// FindByID は指定IDのユーザーを取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id int64) (*model.User, error)

	// FindByEmail はメールアドレスでユーザーを検索する。見つからない場合はnilを返す。
	FindByEmail(ctx context.Context, email string) (*model.User, error)
}

// SessionRepository はセッションデータの永続化インターフェース。
type SessionRepository interface {
	// Create はセッションを作成する。
	Create(ctx context.Context, session *model.Session) error
	// FindByID は指定IDのセッションを取得する。期限切れの場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.Session, error)
	// DeleteByID は指定IDのセッションを削除する。
	DeleteByID(ctx context.Context, id string) error
	// DeleteByUserID は指定ユーザーの全セッションを削除する。
	DeleteByUserID(ctx context.Context, userID int64) error
}

// MeetingRepository はミーティングデータと登録関係の永続化インターフェース。
type MeetingRepository interface {
	// FindByID は指定IDのミーティングを取得する（メンバーなし）。
	// 見つからない場合はnilを返す。
	FindByID(ctx context.Context, id int64) (*model.Meeting, error)

	// FindByIDWithMembers は指定IDのミーティングを登録メンバー付きで取得する。
	// 見つからない場合はnilを返す。
	FindByIDWithMembers(ctx context.Context, id int64) (*model.Meeting, error)

	// ListAll は全ミーティングをID昇順で返す。
	ListAll(ctx context.Context) ([]*model.Meeting, error)

	// CreateWithMember はミーティングを作成し、作成者を最初のメンバーとして
	// 同一トランザクションで登録する。採番されたIDをmeeting.IDに書き戻す。
	CreateWithMember(ctx context.Context, meeting *model.Meeting, userID int64) error

	// Update はtitle/description/timeを上書き更新する。
	// 対象行が存在しない場合はエラーを返す。
	Update(ctx context.Context, meeting *model.Meeting) error

	// Delete は指定IDのミーティング行を削除する。
	Delete(ctx context.Context, id int64) error

	// Members はミーティングの登録メンバー一覧を返す。
	Members(ctx context.Context, meetingID int64) ([]model.User, error)

	// IsMember はユーザーがミーティングに登録済みかを返す。
	IsMember(ctx context.Context, meetingID, userID int64) (bool, error)

	// Attach はユーザーをミーティングに登録する。
	// ON CONFLICT DO NOTHINGによる冪等な挿入で、実際に行が増えた場合のみtrueを返す。
	Attach(ctx context.Context, meetingID, userID int64) (bool, error)

	// Detach はユーザーのミーティング登録を解除する。
	// 該当行がなくてもエラーにしない。
	Detach(ctx context.Context, meetingID, userID int64) error

	// DetachAll はミーティングの全登録を解除する。
	DetachAll(ctx context.Context, meetingID int64) error
}

// TxBeginner はトランザクション開始用のインターフェース。
type TxBeginner interface {
	BeginTx(ctx context.Context, opts *sql.TxOptions) (*sql.Tx, error)
}
