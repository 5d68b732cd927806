package registration

import (
	"context"
	"errors"
	"testing"

	"github.com/hitoshi/meetman/internal/model"
)

// --- モック ---

type mockMeetingRepo struct {
	findByIDFn func(ctx context.Context, id int64) (*model.Meeting, error)
	isMemberFn func(ctx context.Context, meetingID, userID int64) (bool, error)
	attachFn   func(ctx context.Context, meetingID, userID int64) (bool, error)
	detachFn   func(ctx context.Context, meetingID, userID int64) error

	detachCalls [][2]int64
}

func (m *mockMeetingRepo) FindByID(ctx context.Context, id int64) (*model.Meeting, error) {
	if m.findByIDFn != nil {
		return m.findByIDFn(ctx, id)
	}
	return nil, nil
}
func (m *mockMeetingRepo) FindByIDWithMembers(ctx context.Context, id int64) (*model.Meeting, error) {
	return nil, nil
}
func (m *mockMeetingRepo) ListAll(ctx context.Context) ([]*model.Meeting, error) {
	return nil, nil
}
func (m *mockMeetingRepo) CreateWithMember(ctx context.Context, meeting *model.Meeting, userID int64) error {
	return nil
}
func (m *mockMeetingRepo) Update(ctx context.Context, meeting *model.Meeting) error { return nil }
func (m *mockMeetingRepo) Delete(ctx context.Context, id int64) error               { return nil }
func (m *mockMeetingRepo) Members(ctx context.Context, meetingID int64) ([]model.User, error) {
	return nil, nil
}
func (m *mockMeetingRepo) IsMember(ctx context.Context, meetingID, userID int64) (bool, error) {
	if m.isMemberFn != nil {
		return m.isMemberFn(ctx, meetingID, userID)
	}
	return false, nil
}
func (m *mockMeetingRepo) Attach(ctx context.Context, meetingID, userID int64) (bool, error) {
	if m.attachFn != nil {
		return m.attachFn(ctx, meetingID, userID)
	}
	return true, nil
}
func (m *mockMeetingRepo) Detach(ctx context.Context, meetingID, userID int64) error {
	m.detachCalls = append(m.detachCalls, [2]int64{meetingID, userID})
	if m.detachFn != nil {
		return m.detachFn(ctx, meetingID, userID)
	}
	return nil
}
func (m *mockMeetingRepo) DetachAll(ctx context.Context, meetingID int64) error { return nil }

type mockUserRepo struct {
	findByIDFn func(ctx context.Context, id int64) (*model.User, error)
}

func (m *mockUserRepo) Create(ctx context.Context, user *model.User) error { return nil }
func (m *mockUserRepo) FindByID(ctx context.Context, id int64) (*model.User, error) {
	if m.findByIDFn != nil {
		return m.findByIDFn(ctx, id)
	}
	return &model.User{ID: id, Name: "Test User", Email: "test@example.com"}, nil
}
func (m *mockUserRepo) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	return nil, nil
}

type mockMetrics struct {
	registrations   int
	unregistrations int
}

func (m *mockMetrics) RecordRegistration()   { m.registrations++ }
func (m *mockMetrics) RecordUnregistration() { m.unregistrations++ }

func existingMeeting(id int64) func(ctx context.Context, id int64) (*model.Meeting, error) {
	return func(ctx context.Context, gotID int64) (*model.Meeting, error) {
		return &model.Meeting{ID: gotID, Title: "Sync"}, nil
	}
}

// --- Register ---

func TestRegister_AttachesUserToMeeting(t *testing.T) {
	var attachedMeeting, attachedUser int64
	meetingRepo := &mockMeetingRepo{
		findByIDFn: existingMeeting(1),
		attachFn: func(ctx context.Context, meetingID, userID int64) (bool, error) {
			attachedMeeting = meetingID
			attachedUser = userID
			return true, nil
		},
	}
	metrics := &mockMetrics{}
	svc := NewService(meetingRepo, &mockUserRepo{}, metrics)

	result, err := svc.Register(context.Background(), 1, 7)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if result.AlreadyRegistered {
		t.Error("AlreadyRegistered = true, want false")
	}
	if attachedMeeting != 1 || attachedUser != 7 {
		t.Errorf("attached (%d, %d), want (1, 7)", attachedMeeting, attachedUser)
	}
	if result.Meeting.ID != 1 || result.User.ID != 7 {
		t.Errorf("result ids = (%d, %d), want (1, 7)", result.Meeting.ID, result.User.ID)
	}
	if metrics.registrations != 1 {
		t.Errorf("registrations metric = %d, want 1", metrics.registrations)
	}
}

// 同一ペアの二重登録はAlreadyRegisteredとして返り、行は増えない。
func TestRegister_AlreadyRegistered(t *testing.T) {
	meetingRepo := &mockMeetingRepo{
		findByIDFn: existingMeeting(1),
		attachFn: func(ctx context.Context, meetingID, userID int64) (bool, error) {
			return false, nil
		},
	}
	metrics := &mockMetrics{}
	svc := NewService(meetingRepo, &mockUserRepo{}, metrics)

	result, err := svc.Register(context.Background(), 1, 7)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if !result.AlreadyRegistered {
		t.Error("AlreadyRegistered = false, want true")
	}
	if metrics.registrations != 0 {
		t.Errorf("registrations metric = %d, want 0", metrics.registrations)
	}
}

func TestRegister_MeetingNotFound(t *testing.T) {
	svc := NewService(&mockMeetingRepo{}, &mockUserRepo{}, nil)

	_, err := svc.Register(context.Background(), 55, 7)

	var apiErr *model.APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected APIError, got %v", err)
	}
	if apiErr.Code != model.ErrCodeMeetingNotFound {
		t.Errorf("Code = %q, want %q", apiErr.Code, model.ErrCodeMeetingNotFound)
	}
	if apiErr.Message != "No meeting with id 55" {
		t.Errorf("Message = %q", apiErr.Message)
	}
}

func TestRegister_UserNotFound(t *testing.T) {
	meetingRepo := &mockMeetingRepo{findByIDFn: existingMeeting(1)}
	userRepo := &mockUserRepo{
		findByIDFn: func(ctx context.Context, id int64) (*model.User, error) {
			return nil, nil
		},
	}
	svc := NewService(meetingRepo, userRepo, nil)

	_, err := svc.Register(context.Background(), 1, 99)

	var apiErr *model.APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected APIError, got %v", err)
	}
	if apiErr.Code != model.ErrCodeUserNotFound {
		t.Errorf("Code = %q, want %q", apiErr.Code, model.ErrCodeUserNotFound)
	}
	if apiErr.Message != "No user with id 99" {
		t.Errorf("Message = %q", apiErr.Message)
	}
}

// --- Unregister ---

func TestUnregister_DetachesActingUserOnly(t *testing.T) {
	meetingRepo := &mockMeetingRepo{
		findByIDFn: existingMeeting(1),
		isMemberFn: func(ctx context.Context, meetingID, userID int64) (bool, error) {
			return true, nil
		},
	}
	metrics := &mockMetrics{}
	svc := NewService(meetingRepo, &mockUserRepo{}, metrics)

	m, user, err := svc.Unregister(context.Background(), 7, 1)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if m.ID != 1 || user.ID != 7 {
		t.Errorf("result ids = (%d, %d), want (1, 7)", m.ID, user.ID)
	}
	if len(meetingRepo.detachCalls) != 1 {
		t.Fatalf("Detach called %d times, want 1", len(meetingRepo.detachCalls))
	}
	if meetingRepo.detachCalls[0] != [2]int64{1, 7} {
		t.Errorf("Detach args = %v, want [1 7]", meetingRepo.detachCalls[0])
	}
	if metrics.unregistrations != 1 {
		t.Errorf("unregistrations metric = %d, want 1", metrics.unregistrations)
	}
}

func TestUnregister_NonMember_ReturnsUnauthorized(t *testing.T) {
	meetingRepo := &mockMeetingRepo{
		findByIDFn: existingMeeting(1),
		isMemberFn: func(ctx context.Context, meetingID, userID int64) (bool, error) {
			return false, nil
		},
	}
	svc := NewService(meetingRepo, &mockUserRepo{}, nil)

	_, _, err := svc.Unregister(context.Background(), 7, 1)

	var apiErr *model.APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected APIError, got %v", err)
	}
	if apiErr.Code != model.ErrCodeNotMember {
		t.Errorf("Code = %q, want %q", apiErr.Code, model.ErrCodeNotMember)
	}
	if apiErr.Message != "user not registered for meeting, delete operation not successful" {
		t.Errorf("Message = %q", apiErr.Message)
	}
	// 状態変更がないこと
	if len(meetingRepo.detachCalls) != 0 {
		t.Errorf("Detach called %d times, want 0", len(meetingRepo.detachCalls))
	}
}

func TestUnregister_MeetingNotFound(t *testing.T) {
	svc := NewService(&mockMeetingRepo{}, &mockUserRepo{}, nil)

	_, _, err := svc.Unregister(context.Background(), 7, 42)

	var apiErr *model.APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected APIError, got %v", err)
	}
	if apiErr.Code != model.ErrCodeMeetingNotFound {
		t.Errorf("Code = %q, want %q", apiErr.Code, model.ErrCodeMeetingNotFound)
	}
}

func TestUnregister_AuthUserNotFound(t *testing.T) {
	meetingRepo := &mockMeetingRepo{findByIDFn: existingMeeting(1)}
	userRepo := &mockUserRepo{
		findByIDFn: func(ctx context.Context, id int64) (*model.User, error) {
			return nil, nil
		},
	}
	svc := NewService(meetingRepo, userRepo, nil)

	_, _, err := svc.Unregister(context.Background(), 99, 1)

	var apiErr *model.APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected APIError, got %v", err)
	}
	if apiErr.Message != "User not found" {
		t.Errorf("Message = %q, want %q", apiErr.Message, "User not found")
	}
}
