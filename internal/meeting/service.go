// Package meeting はミーティング管理のドメインロジックを提供する。
package meeting

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/hitoshi/meetman/internal/model"
	"github.com/hitoshi/meetman/internal/repository"
	"github.com/hitoshi/meetman/internal/security"
)

// MetricsRecorder はミーティング操作のメトリクス記録インターフェース。
// metrics.MetricsCollectorの部分集合として定義する。
type MetricsRecorder interface {
	RecordMeetingCreated()
	RecordMeetingUpdated()
	RecordMeetingDeleted()
	RecordDeleteCompensation()
}

// Service はミーティング管理のサービス層。
// 一覧・作成・取得・更新・削除（補償処理付き）のビジネスロジックを提供する。
type Service struct {
	meetingRepo repository.MeetingRepository
	userRepo    repository.UserRepository
	sanitizer   security.InputSanitizerService
	metrics     MetricsRecorder
}

// NewService はServiceの新しいインスタンスを生成する。
// metricsはnilを許容する（テストや計測なし構成用）。
func NewService(
	meetingRepo repository.MeetingRepository,
	userRepo repository.UserRepository,
	sanitizer security.InputSanitizerService,
	metrics MetricsRecorder,
) *Service {
	return &Service{
		meetingRepo: meetingRepo,
		userRepo:    userRepo,
		sanitizer:   sanitizer,
		metrics:     metrics,
	}
}

// List は全ミーティングを返す。ページネーションやフィルタは行わない。
func (s *Service) List(ctx context.Context) ([]*model.Meeting, error) {
	meetings, err := s.meetingRepo.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("ミーティング一覧の取得に失敗しました: %w", err)
	}
	return meetings, nil
}

// Create はミーティングを作成し、作成者を最初のメンバーとして登録する。
// timeStrは固定フォーマットYYYYMMDDHHiissで、フォーマット違反は呼び出し前に
// バリデーション済みであること。actingUserIDのユーザーが存在しない場合は
// 元システム互換の"User not found"エラーを返す。
func (s *Service) Create(ctx context.Context, actingUserID int64, title, description, timeStr string) (*model.Meeting, error) {
	user, err := s.userRepo.FindByID(ctx, actingUserID)
	if err != nil {
		return nil, fmt.Errorf("ユーザーの取得に失敗しました: %w", err)
	}
	if user == nil {
		return nil, model.NewAuthUserNotFoundError()
	}

	t, err := time.Parse(model.TimeLayout, timeStr)
	if err != nil {
		return nil, fmt.Errorf("時刻のパースに失敗しました: %w", err)
	}

	m := &model.Meeting{
		Title:       s.sanitizer.Sanitize(title),
		Description: s.sanitizer.Sanitize(description),
		Time:        t,
	}

	if err := s.meetingRepo.CreateWithMember(ctx, m, actingUserID); err != nil {
		slog.Error("failed to persist meeting",
			slog.String("error", err.Error()),
			slog.Int64("user_id", actingUserID),
		)
		return nil, model.NewSaveFailedError()
	}

	if s.metrics != nil {
		s.metrics.RecordMeetingCreated()
	}

	slog.Info("meeting created",
		slog.Int64("meeting_id", m.ID),
		slog.Int64("user_id", actingUserID),
	)

	return m, nil
}

// Show は指定IDのミーティングを登録メンバー付きで返す。
func (s *Service) Show(ctx context.Context, id int64) (*model.Meeting, error) {
	m, err := s.meetingRepo.FindByIDWithMembers(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("ミーティングの取得に失敗しました: %w", err)
	}
	if m == nil {
		return nil, model.NewMeetingNotFoundError(id)
	}
	return m, nil
}

// Update はミーティングのtitle/description/timeを上書きする。
// 操作ユーザーがミーティングの登録メンバーでない場合は401相当のエラーを返す。
// 永続化失敗は元システムの空200と異なり、明示的なエラーとして顕在化させる。
func (s *Service) Update(ctx context.Context, actingUserID, id int64, title, description, timeStr string) (*model.Meeting, error) {
	user, err := s.userRepo.FindByID(ctx, actingUserID)
	if err != nil {
		return nil, fmt.Errorf("ユーザーの取得に失敗しました: %w", err)
	}
	if user == nil {
		return nil, model.NewAuthUserNotFoundError()
	}

	m, err := s.meetingRepo.FindByIDWithMembers(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("ミーティングの取得に失敗しました: %w", err)
	}
	if m == nil {
		return nil, model.NewMeetingNotFoundError(id)
	}

	isMember, err := s.meetingRepo.IsMember(ctx, id, actingUserID)
	if err != nil {
		return nil, fmt.Errorf("登録状態の確認に失敗しました: %w", err)
	}
	if !isMember {
		return nil, model.NewNotMemberError("user not registered for meeting, update not successful")
	}

	t, err := time.Parse(model.TimeLayout, timeStr)
	if err != nil {
		return nil, fmt.Errorf("時刻のパースに失敗しました: %w", err)
	}

	m.Title = s.sanitizer.Sanitize(title)
	m.Description = s.sanitizer.Sanitize(description)
	m.Time = t

	if err := s.meetingRepo.Update(ctx, m); err != nil {
		slog.Error("failed to persist meeting update",
			slog.String("error", err.Error()),
			slog.Int64("meeting_id", id),
		)
		return nil, model.NewUpdateFailedError()
	}

	if s.metrics != nil {
		s.metrics.RecordMeetingUpdated()
	}

	return m, nil
}

// Destroy はミーティングを削除する。
// 削除前に全メンバーを捕捉して登録解除し、行削除に失敗した場合は捕捉済み
// メンバーを再登録する（ベストエフォートの補償処理）。捕捉から補償までは
// 並行する登録変更に対して原子的ではない。これは元システムの挙動を踏襲している。
func (s *Service) Destroy(ctx context.Context, actingUserID, id int64) error {
	m, err := s.meetingRepo.FindByID(ctx, id)
	if err != nil {
		return fmt.Errorf("ミーティングの取得に失敗しました: %w", err)
	}
	if m == nil {
		return model.NewMeetingNotFoundError(id)
	}

	user, err := s.userRepo.FindByID(ctx, actingUserID)
	if err != nil {
		return fmt.Errorf("ユーザーの取得に失敗しました: %w", err)
	}
	if user == nil {
		return model.NewAuthUserNotFoundError()
	}

	isMember, err := s.meetingRepo.IsMember(ctx, id, actingUserID)
	if err != nil {
		return fmt.Errorf("登録状態の確認に失敗しました: %w", err)
	}
	if !isMember {
		return model.NewNotMemberError("user not registered for meeting, delete not successful")
	}

	// 補償処理に備えて現在のメンバーを捕捉してから全登録を解除する
	members, err := s.meetingRepo.Members(ctx, id)
	if err != nil {
		return fmt.Errorf("メンバーの捕捉に失敗しました: %w", err)
	}
	if err := s.meetingRepo.DetachAll(ctx, id); err != nil {
		return fmt.Errorf("全登録の解除に失敗しました: %w", err)
	}

	if err := s.meetingRepo.Delete(ctx, id); err != nil {
		slog.Error("meeting deletion failed, re-attaching members",
			slog.String("error", err.Error()),
			slog.Int64("meeting_id", id),
			slog.Int("member_count", len(members)),
		)

		// 捕捉済みメンバーを再登録する。補償処理自体の失敗はログのみに残す。
		for _, member := range members {
			if _, attachErr := s.meetingRepo.Attach(ctx, id, member.ID); attachErr != nil {
				slog.Error("failed to re-attach member during compensation",
					slog.String("error", attachErr.Error()),
					slog.Int64("meeting_id", id),
					slog.Int64("user_id", member.ID),
				)
			}
		}

		if s.metrics != nil {
			s.metrics.RecordDeleteCompensation()
		}

		return model.NewDeletionFailedError()
	}

	if s.metrics != nil {
		s.metrics.RecordMeetingDeleted()
	}

	slog.Info("meeting deleted",
		slog.Int64("meeting_id", id),
		slog.Int64("user_id", actingUserID),
	)

	return nil
}
