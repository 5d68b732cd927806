package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/hitoshi/meetman/internal/model"
	"github.com/hitoshi/meetman/internal/repository"
)

// ErrEmailTaken は同一メールアドレスのユーザーが既に存在することを表す。
var ErrEmailTaken = errors.New("email already taken")

// ErrInvalidCredentials はメールアドレスまたはパスワードの不一致を表す。
var ErrInvalidCredentials = errors.New("invalid credentials")

// ServiceConfig は認証サービスの設定。
type ServiceConfig struct {
	JWTSecret   string
	TokenMaxAge int // トークン有効期間（秒）
	BcryptCost  int
}

// Service はユーザー登録・サインイン・サインアウトのビジネスロジックを提供する。
type Service struct {
	userRepo    repository.UserRepository
	sessionRepo repository.SessionRepository
	config      ServiceConfig
}

// NewService はServiceを生成する。
func NewService(
	userRepo repository.UserRepository,
	sessionRepo repository.SessionRepository,
	config ServiceConfig,
) *Service {
	return &Service{
		userRepo:    userRepo,
		sessionRepo: sessionRepo,
		config:      config,
	}
}

// Signup は新規ユーザーを登録する。
// メールアドレスが既に使われている場合はErrEmailTakenを返す。
func (s *Service) Signup(ctx context.Context, name, email, password string) (*model.User, error) {
	existing, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("既存ユーザーの確認に失敗しました: %w", err)
	}
	if existing != nil {
		return nil, ErrEmailTaken
	}

	hash, err := HashPassword(password, s.config.BcryptCost)
	if err != nil {
		return nil, fmt.Errorf("パスワードのハッシュ化に失敗しました: %w", err)
	}

	user := &model.User{
		Name:         name,
		Email:        email,
		PasswordHash: hash,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("ユーザーの作成に失敗しました: %w", err)
	}

	slog.Info("new user created",
		slog.Int64("user_id", user.ID),
	)

	return user, nil
}

// Signin はメールアドレスとパスワードを検証し、ベアラートークンを発行する。
// 認証失敗時はErrInvalidCredentialsを返す（ユーザー不在とパスワード不一致は区別しない）。
func (s *Service) Signin(ctx context.Context, email, password string) (string, error) {
	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		return "", fmt.Errorf("ユーザーの検索に失敗しました: %w", err)
	}
	if user == nil || !CheckPassword(user.PasswordHash, password) {
		return "", ErrInvalidCredentials
	}

	session := &model.Session{
		ID:        uuid.New().String(),
		UserID:    user.ID,
		ExpiresAt: time.Now().Add(time.Duration(s.config.TokenMaxAge) * time.Second),
		CreatedAt: time.Now(),
	}
	if err := s.sessionRepo.Create(ctx, session); err != nil {
		return "", fmt.Errorf("セッションの保存に失敗しました: %w", err)
	}

	token, err := MakeToken(user.ID, session.ID, s.config.JWTSecret, time.Duration(s.config.TokenMaxAge)*time.Second)
	if err != nil {
		return "", fmt.Errorf("トークンの生成に失敗しました: %w", err)
	}

	slog.Info("user signed in",
		slog.Int64("user_id", user.ID),
	)

	return token, nil
}

// Signout はトークンの裏付けセッションを破棄する。
// 以降、同じjtiを持つトークンは認証ミドルウェアで拒否される。
func (s *Service) Signout(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return fmt.Errorf("session ID is required")
	}

	if err := s.sessionRepo.DeleteByID(ctx, sessionID); err != nil {
		return fmt.Errorf("セッションの削除に失敗しました: %w", err)
	}

	slog.Info("user signed out", slog.String("session_id", sessionID))
	return nil
}
