package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/hitoshi/meetman/internal/model"
)

// linkResponse はリソース操作へのリンクを表す。
// 全レスポンスで共通の形 {href, method, params?} を使う。
type linkResponse struct {
	Href   string `json:"href"`
	Method string `json:"method"`
	Params string `json:"params,omitempty"`
}

// userResponse はユーザー情報のAPIレスポンス。パスワードハッシュは含めない。
type userResponse struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// meetingResponse はミーティング情報のAPIレスポンス。
// UsersとViewMeetingはエンドポイントごとに有無が異なる。
type meetingResponse struct {
	ID          int64          `json:"id"`
	Title       string         `json:"title"`
	Description string         `json:"description"`
	Time        time.Time      `json:"time"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	Users       []userResponse `json:"users,omitempty"`
	ViewMeeting *linkResponse  `json:"view_meeting,omitempty"`
}

// msgResponse は msg フィールドのみのレスポンスボディ。
type msgResponse struct {
	Msg string `json:"msg"`
}

// viewMeetingLink は個別ミーティング参照へのリンクを生成する。
func viewMeetingLink(meetingID int64) *linkResponse {
	return &linkResponse{
		Href:   fmt.Sprintf("api/v1/meeting/%d", meetingID),
		Method: http.MethodGet,
	}
}

// toUserResponse はドメインのUserをレスポンス型に変換する。
func toUserResponse(u *model.User) userResponse {
	return userResponse{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

// toMeetingResponse はドメインのMeetingをレスポンス型に変換する。
// メンバー一覧が読み込まれている場合のみusersフィールドが埋まる。
func toMeetingResponse(m *model.Meeting, link *linkResponse) meetingResponse {
	resp := meetingResponse{
		ID:          m.ID,
		Title:       m.Title,
		Description: m.Description,
		Time:        m.Time,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
		ViewMeeting: link,
	}
	for _, u := range m.Members {
		user := u
		resp.Users = append(resp.Users, toUserResponse(&user))
	}
	return resp
}

// writeJSON はレスポンスボディをJSONでエンコードして書き出す。
func writeJSON(w http.ResponseWriter, statusCode int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(body)
}

// writeAPIErrorResponse はAPIErrorを {"msg": "..."} 形式で書き出す。
func writeAPIErrorResponse(w http.ResponseWriter, statusCode int, apiErr *model.APIError) {
	writeJSON(w, statusCode, msgResponse{Msg: apiErr.Message})
}

// writeValidationErrors はフィールド名→メッセージ配列のマップを400で書き出す。
func writeValidationErrors(w http.ResponseWriter, fields map[string][]string) {
	writeJSON(w, http.StatusBadRequest, fields)
}

// handleServiceError はサービス層から返されたエラーを適切なHTTPステータスコードに変換する。
func handleServiceError(w http.ResponseWriter, err error) {
	var apiErr *model.APIError
	if errors.As(err, &apiErr) {
		writeAPIErrorResponse(w, mapAPIErrorToHTTPStatus(apiErr), apiErr)
		return
	}

	// APIError以外のエラーは内部サーバーエラーとして扱う
	slog.Error("internal server error", slog.String("error", err.Error()))
	writeJSON(w, http.StatusInternalServerError, msgResponse{Msg: "Internal server error"})
}

// mapAPIErrorToHTTPStatus はAPIErrorコードからHTTPステータスコードにマッピングする。
// 認証欠落と永続化失敗が404になるのは元システム互換の挙動。
func mapAPIErrorToHTTPStatus(apiErr *model.APIError) int {
	switch apiErr.Code {
	case model.ErrCodeUserNotFound, model.ErrCodeMeetingNotFound:
		return http.StatusNotFound
	case model.ErrCodeNotMember:
		return http.StatusUnauthorized
	case model.ErrCodeSaveFailed, model.ErrCodeDeletionFailed, model.ErrCodeAlreadyRegistered:
		return http.StatusNotFound
	case model.ErrCodeUpdateFailed:
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}
