package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/hitoshi/meetman/internal/middleware"
	"github.com/hitoshi/meetman/internal/model"
	"github.com/hitoshi/meetman/internal/registration"
	"github.com/hitoshi/meetman/internal/validation"
)

// RegistrationServiceInterface は登録ハンドラーが必要とするサービスインターフェース。
type RegistrationServiceInterface interface {
	// Register は指定ユーザーを指定ミーティングに登録する。
	Register(ctx context.Context, meetingID, userID int64) (*registration.Result, error)
	// Unregister は操作ユーザー自身の登録を解除する。
	Unregister(ctx context.Context, actingUserID, meetingID int64) (*model.Meeting, *model.User, error)
}

// RegistrationHandler はミーティング登録のHTTPハンドラー。
type RegistrationHandler struct {
	service   RegistrationServiceInterface
	validator *validation.Validator
}

// NewRegistrationHandler はRegistrationHandlerを生成する。
func NewRegistrationHandler(service RegistrationServiceInterface, validator *validation.Validator) *RegistrationHandler {
	return &RegistrationHandler{
		service:   service,
		validator: validator,
	}
}

// registrationRequest は登録リクエストのボディ。
// requiredをゼロ値と区別するためポインタで受ける。
type registrationRequest struct {
	MeetingID *int64 `json:"meeting_id" validate:"required"`
	UserID    *int64 `json:"user_id" validate:"required"`
}

// registrationResponse は登録成功・既登録のレスポンスボディ。
type registrationResponse struct {
	Msg        string          `json:"msg"`
	Meeting    meetingResponse `json:"meeting"`
	User       userResponse    `json:"user"`
	Unregister linkResponse    `json:"unregister"`
}

// unregistrationResponse は登録解除成功のレスポンスボディ。再登録のヒントリンクを含む。
type unregistrationResponse struct {
	Msg      string          `json:"msg"`
	Meeting  meetingResponse `json:"meeting"`
	User     userResponse    `json:"user"`
	Register linkResponse    `json:"register"`
}

// unregisterLink は登録解除操作へのリンクを生成する。
func unregisterLink(meetingID int64) linkResponse {
	return linkResponse{
		Href:   fmt.Sprintf("api/v1/meeting/registration/%d", meetingID),
		Method: http.MethodDelete,
	}
}

// Register はユーザーをミーティングに登録する。
// 既登録の場合は成功と同形のボディを404で返す（元システム互換）。
// POST /api/v1/meeting/registration
func (h *RegistrationHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registrationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeValidationErrors(w, map[string][]string{
			"body": {"The request body must be valid JSON."},
		})
		return
	}

	if fields := h.validator.Check(req); fields != nil {
		writeValidationErrors(w, fields)
		return
	}

	result, err := h.service.Register(r.Context(), *req.MeetingID, *req.UserID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	resp := registrationResponse{
		Msg:        "User registered for meeting",
		Meeting:    toMeetingResponse(result.Meeting, nil),
		User:       toUserResponse(result.User),
		Unregister: unregisterLink(result.Meeting.ID),
	}

	if result.AlreadyRegistered {
		resp.Msg = "User is already registered for meeting"
		writeJSON(w, http.StatusNotFound, resp)
		return
	}

	writeJSON(w, http.StatusCreated, resp)
}

// Unregister は操作ユーザー自身の登録をミーティングから解除する。
// DELETE /api/v1/meeting/registration/{id}
func (h *RegistrationHandler) Unregister(w http.ResponseWriter, r *http.Request) {
	meetingID, err := meetingIDFromPath(r)
	if err != nil {
		writeAPIErrorResponse(w, http.StatusNotFound, model.NewMeetingNotFoundError(0))
		return
	}

	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeAPIErrorResponse(w, http.StatusNotFound, model.NewAuthUserNotFoundError())
		return
	}

	m, user, err := h.service.Unregister(r.Context(), userID, meetingID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, unregistrationResponse{
		Msg:     "User unregistered for meeting",
		Meeting: toMeetingResponse(m, nil),
		User:    toUserResponse(user),
		Register: linkResponse{
			Href:   "api/v1/meeting/registration/",
			Method: http.MethodPost,
			Params: "user_id, meeting_id",
		},
	})
}
