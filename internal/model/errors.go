// Package model はドメインモデルを定義する。
package model

import "fmt"

// APIError はサービス層からハンドラー境界へ伝搬するエラーを表す。
// MessageはそのままレスポンスボディのmsgフィールドとしてAPI利用者に返る。
// 歴史的経緯のあるメッセージ文字列（元システム互換）は変更しないこと。
type APIError struct {
	Code     string // エラーコード
	Message  string // msgフィールドとして返る文字列
	Category string // カテゴリ: auth, validation, meeting, registration, system
}

// Error はerrorインターフェースを実装する。
func (e *APIError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// 定義済みエラーコード
const (
	ErrCodeUserNotFound      = "USER_NOT_FOUND"
	ErrCodeMeetingNotFound   = "MEETING_NOT_FOUND"
	ErrCodeNotMember         = "NOT_MEETING_MEMBER"
	ErrCodeSaveFailed        = "SAVE_FAILED"
	ErrCodeUpdateFailed      = "UPDATE_FAILED"
	ErrCodeDeletionFailed    = "DELETION_FAILED"
	ErrCodeAlreadyRegistered = "ALREADY_REGISTERED"
)

// NewAuthUserNotFoundError は認証ユーザーが解決できない場合のエラーを生成する。
// 元システムは認証失敗を401ではなく404で返すため、このエラーも404にマッピングされる。
func NewAuthUserNotFoundError() *APIError {
	return &APIError{
		Code:     ErrCodeUserNotFound,
		Message:  "User not found",
		Category: "auth",
	}
}

// NewUserNotFoundError は指定IDのユーザーが存在しない場合のエラーを生成する。
func NewUserNotFoundError(userID int64) *APIError {
	return &APIError{
		Code:     ErrCodeUserNotFound,
		Message:  fmt.Sprintf("No user with id %d", userID),
		Category: "registration",
	}
}

// NewMeetingNotFoundError は指定IDのミーティングが存在しない場合のエラーを生成する。
func NewMeetingNotFoundError(meetingID int64) *APIError {
	return &APIError{
		Code:     ErrCodeMeetingNotFound,
		Message:  fmt.Sprintf("No meeting with id %d", meetingID),
		Category: "meeting",
	}
}

// NewNotMemberError はミーティングの登録メンバーでないユーザーによる操作を拒否する
// エラーを生成する。msgは操作ごとに元システムの文字列をそのまま使う。
func NewNotMemberError(msg string) *APIError {
	return &APIError{
		Code:     ErrCodeNotMember,
		Message:  msg,
		Category: "auth",
	}
}

// NewSaveFailedError はミーティング作成の永続化失敗エラーを生成する。
// メッセージの綴りは元システム互換（"occured"）。
func NewSaveFailedError() *APIError {
	return &APIError{
		Code:     ErrCodeSaveFailed,
		Message:  "An error occured",
		Category: "system",
	}
}

// NewUpdateFailedError はミーティング更新の永続化失敗エラーを生成する。
// 元システムは空の200を返していたが、500として顕在化させる。
func NewUpdateFailedError() *APIError {
	return &APIError{
		Code:     ErrCodeUpdateFailed,
		Message:  "Meeting update failed",
		Category: "system",
	}
}

// NewDeletionFailedError はミーティング削除の永続化失敗エラーを生成する。
func NewDeletionFailedError() *APIError {
	return &APIError{
		Code:     ErrCodeDeletionFailed,
		Message:  "deletion failed",
		Category: "system",
	}
}
