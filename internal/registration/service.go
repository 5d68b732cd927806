// Package registration はミーティングへのユーザー登録・登録解除を扱う。
package registration

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/hitoshi/meetman/internal/model"
	"github.com/hitoshi/meetman/internal/repository"
)

// MetricsRecorder は登録操作のメトリクス記録インターフェース。
type MetricsRecorder interface {
	RecordRegistration()
	RecordUnregistration()
}

// Result は登録操作の結果。AlreadyRegisteredは同一ペアの登録が既に
// 存在していて新たな行が挿入されなかったことを示す。
type Result struct {
	Meeting           *model.Meeting
	User              *model.User
	AlreadyRegistered bool
}

// Service はミーティング登録のサービス層。
type Service struct {
	meetingRepo repository.MeetingRepository
	userRepo    repository.UserRepository
	metrics     MetricsRecorder
}

// NewService はServiceの新しいインスタンスを生成する。metricsはnilを許容する。
func NewService(meetingRepo repository.MeetingRepository, userRepo repository.UserRepository, metrics MetricsRecorder) *Service {
	return &Service{
		meetingRepo: meetingRepo,
		userRepo:    userRepo,
		metrics:     metrics,
	}
}

// Register は指定ユーザーを指定ミーティングに登録する。
// 挿入はON CONFLICT DO NOTHINGによる単一文で行い、確認と挿入の間の競合で
// 重複行が生まれることはない。既登録の場合もResultとして返し、エラーにはしない。
func (s *Service) Register(ctx context.Context, meetingID, userID int64) (*Result, error) {
	m, err := s.meetingRepo.FindByID(ctx, meetingID)
	if err != nil {
		return nil, fmt.Errorf("ミーティングの取得に失敗しました: %w", err)
	}
	if m == nil {
		return nil, model.NewMeetingNotFoundError(meetingID)
	}

	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("ユーザーの取得に失敗しました: %w", err)
	}
	if user == nil {
		return nil, model.NewUserNotFoundError(userID)
	}

	inserted, err := s.meetingRepo.Attach(ctx, meetingID, userID)
	if err != nil {
		return nil, fmt.Errorf("ミーティングへの登録に失敗しました: %w", err)
	}

	if inserted {
		if s.metrics != nil {
			s.metrics.RecordRegistration()
		}
		slog.Info("user registered for meeting",
			slog.Int64("meeting_id", meetingID),
			slog.Int64("user_id", userID),
		)
	}

	return &Result{
		Meeting:           m,
		User:              user,
		AlreadyRegistered: !inserted,
	}, nil
}

// Unregister は操作ユーザー自身の登録を指定ミーティングから解除する。
// 他ユーザーの登録は解除できない。登録メンバーでない場合は401相当のエラーを返す。
func (s *Service) Unregister(ctx context.Context, actingUserID, meetingID int64) (*model.Meeting, *model.User, error) {
	m, err := s.meetingRepo.FindByID(ctx, meetingID)
	if err != nil {
		return nil, nil, fmt.Errorf("ミーティングの取得に失敗しました: %w", err)
	}
	if m == nil {
		return nil, nil, model.NewMeetingNotFoundError(meetingID)
	}

	user, err := s.userRepo.FindByID(ctx, actingUserID)
	if err != nil {
		return nil, nil, fmt.Errorf("ユーザーの取得に失敗しました: %w", err)
	}
	if user == nil {
		return nil, nil, model.NewAuthUserNotFoundError()
	}

	isMember, err := s.meetingRepo.IsMember(ctx, meetingID, actingUserID)
	if err != nil {
		return nil, nil, fmt.Errorf("登録状態の確認に失敗しました: %w", err)
	}
	if !isMember {
		return nil, nil, model.NewNotMemberError("user not registered for meeting, delete operation not successful")
	}

	if err := s.meetingRepo.Detach(ctx, meetingID, actingUserID); err != nil {
		return nil, nil, fmt.Errorf("登録の解除に失敗しました: %w", err)
	}

	if s.metrics != nil {
		s.metrics.RecordUnregistration()
	}

	slog.Info("user unregistered from meeting",
		slog.Int64("meeting_id", meetingID),
		slog.Int64("user_id", actingUserID),
	)

	return m, user, nil
}
