package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/hitoshi/meetman/internal/model"
)

// PostgresMeetingRepo はPostgreSQLを使用したミーティングリポジトリ。
// ミーティング本体とmeeting_user結合テーブル（登録関係）の両方を扱う。
type PostgresMeetingRepo struct {
	db *sql.DB
}

// NewPostgresMeetingRepo はPostgresMeetingRepoを生成する。
func NewPostgresMeetingRepo(db *sql.DB) *PostgresMeetingRepo {
	return &PostgresMeetingRepo{db: db}
}

// FindByID は指定IDのミーティングを取得する（メンバーなし）。見つからない場合はnilを返す。
func (r *PostgresMeetingRepo) FindByID(ctx context.Context, id int64) (*model.Meeting, error) {
	m := &model.Meeting{}
	err := r.db.QueryRowContext(ctx,
		`SELECT id, title, description, time, created_at, updated_at
		 FROM meetings WHERE id = $1`,
		id,
	).Scan(&m.ID, &m.Title, &m.Description, &m.Time, &m.CreatedAt, &m.UpdatedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("ミーティングの取得に失敗しました: %w", err)
	}

	return m, nil
}

// FindByIDWithMembers は指定IDのミーティングを登録メンバー付きで取得する。
// 見つからない場合はnilを返す。
func (r *PostgresMeetingRepo) FindByIDWithMembers(ctx context.Context, id int64) (*model.Meeting, error) {
	m, err := r.FindByID(ctx, id)
	if err != nil || m == nil {
		return m, err
	}

	members, err := r.Members(ctx, id)
	if err != nil {
		return nil, err
	}
	m.Members = members

	return m, nil
}

// ListAll は全ミーティングをID昇順で返す。
func (r *PostgresMeetingRepo) ListAll(ctx context.Context) ([]*model.Meeting, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, title, description, time, created_at, updated_at
		 FROM meetings ORDER BY id ASC`,
	)
	if err != nil {
		return nil, fmt.Errorf("ミーティング一覧の取得に失敗しました: %w", err)
	}
	defer rows.Close()

	var meetings []*model.Meeting
	for rows.Next() {
		m := &model.Meeting{}
		if err := rows.Scan(&m.ID, &m.Title, &m.Description, &m.Time, &m.CreatedAt, &m.UpdatedAt); err != nil {
			return nil, fmt.Errorf("ミーティング行の読み取りに失敗しました: %w", err)
		}
		meetings = append(meetings, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ミーティング一覧の走査に失敗しました: %w", err)
	}
	return meetings, nil
}

// CreateWithMember はミーティングを作成し、作成者を最初のメンバーとして
// 同一トランザクションで登録する。採番されたIDをmeeting.IDに書き戻す。
func (r *PostgresMeetingRepo) CreateWithMember(ctx context.Context, meeting *model.Meeting, userID int64) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("トランザクションの開始に失敗しました: %w", err)
	}
	defer tx.Rollback()

	err = tx.QueryRowContext(ctx,
		`INSERT INTO meetings (title, description, time)
		 VALUES ($1, $2, $3)
		 RETURNING id, created_at, updated_at`,
		meeting.Title, meeting.Description, meeting.Time,
	).Scan(&meeting.ID, &meeting.CreatedAt, &meeting.UpdatedAt)
	if err != nil {
		return fmt.Errorf("ミーティングの作成に失敗しました: %w", err)
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO meeting_user (meeting_id, user_id) VALUES ($1, $2)`,
		meeting.ID, userID,
	)
	if err != nil {
		return fmt.Errorf("作成者のミーティング登録に失敗しました: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("トランザクションのコミットに失敗しました: %w", err)
	}
	return nil
}

// Update はtitle/description/timeを上書き更新する。対象行が存在しない場合はエラーを返す。
func (r *PostgresMeetingRepo) Update(ctx context.Context, meeting *model.Meeting) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE meetings
		 SET title = $2, description = $3, time = $4, updated_at = now()
		 WHERE id = $1`,
		meeting.ID, meeting.Title, meeting.Description, meeting.Time,
	)
	if err != nil {
		return fmt.Errorf("ミーティングの更新に失敗しました: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("更新結果の取得に失敗しました: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("ミーティングが見つかりません: %d", meeting.ID)
	}
	return nil
}

// Delete は指定IDのミーティング行を削除する。対象行が存在しない場合はエラーを返す。
func (r *PostgresMeetingRepo) Delete(ctx context.Context, id int64) error {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM meetings WHERE id = $1`,
		id,
	)
	if err != nil {
		return fmt.Errorf("ミーティングの削除に失敗しました: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("削除結果の取得に失敗しました: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("ミーティングが見つかりません: %d", id)
	}
	return nil
}

// Members はミーティングの登録メンバー一覧を登録順で返す。
func (r *PostgresMeetingRepo) Members(ctx context.Context, meetingID int64) ([]model.User, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT u.id, u.name, u.email, u.password_hash, u.created_at, u.updated_at
		 FROM users u
		 JOIN meeting_user mu ON mu.user_id = u.id
		 WHERE mu.meeting_id = $1
		 ORDER BY mu.created_at ASC`,
		meetingID,
	)
	if err != nil {
		return nil, fmt.Errorf("メンバー一覧の取得に失敗しました: %w", err)
	}
	defer rows.Close()

	var members []model.User
	for rows.Next() {
		var u model.User
		if err := rows.Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.CreatedAt, &u.UpdatedAt); err != nil {
			return nil, fmt.Errorf("メンバー行の読み取りに失敗しました: %w", err)
		}
		members = append(members, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("メンバー一覧の走査に失敗しました: %w", err)
	}
	return members, nil
}

// IsMember はユーザーがミーティングに登録済みかを返す。
func (r *PostgresMeetingRepo) IsMember(ctx context.Context, meetingID, userID int64) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS(
			SELECT 1 FROM meeting_user WHERE meeting_id = $1 AND user_id = $2
		 )`,
		meetingID, userID,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("登録状態の確認に失敗しました: %w", err)
	}
	return exists, nil
}

// Attach はユーザーをミーティングに登録する。
// UNIQUE制約とON CONFLICT DO NOTHINGにより確認と挿入が単一文で原子的に行われ、
// 実際に行が増えた場合のみtrueを返す。
func (r *PostgresMeetingRepo) Attach(ctx context.Context, meetingID, userID int64) (bool, error) {
	result, err := r.db.ExecContext(ctx,
		`INSERT INTO meeting_user (meeting_id, user_id)
		 VALUES ($1, $2)
		 ON CONFLICT (meeting_id, user_id) DO NOTHING`,
		meetingID, userID,
	)
	if err != nil {
		return false, fmt.Errorf("ミーティングへの登録に失敗しました: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("登録結果の取得に失敗しました: %w", err)
	}
	return rowsAffected > 0, nil
}

// Detach はユーザーのミーティング登録を解除する。該当行がなくてもエラーにしない。
func (r *PostgresMeetingRepo) Detach(ctx context.Context, meetingID, userID int64) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM meeting_user WHERE meeting_id = $1 AND user_id = $2`,
		meetingID, userID,
	)
	if err != nil {
		return fmt.Errorf("ミーティング登録の解除に失敗しました: %w", err)
	}
	return nil
}

// DetachAll はミーティングの全登録を解除する。
func (r *PostgresMeetingRepo) DetachAll(ctx context.Context, meetingID int64) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM meeting_user WHERE meeting_id = $1`,
		meetingID,
	)
	if err != nil {
		return fmt.Errorf("全ミーティング登録の解除に失敗しました: %w", err)
	}
	return nil
}

// compile-time interface check
var _ MeetingRepository = (*PostgresMeetingRepo)(nil)
