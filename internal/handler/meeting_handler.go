package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/hitoshi/meetman/internal/middleware"
	"github.com/hitoshi/meetman/internal/model"
	"github.com/hitoshi/meetman/internal/validation"
)

// MeetingServiceInterface はミーティングハンドラーが必要とするサービスインターフェース。
type MeetingServiceInterface interface {
	// List は全ミーティングを返す。
	List(ctx context.Context) ([]*model.Meeting, error)
	// Create はミーティングを作成し、作成者を最初のメンバーにする。
	Create(ctx context.Context, actingUserID int64, title, description, timeStr string) (*model.Meeting, error)
	// Show は指定IDのミーティングをメンバー付きで返す。
	Show(ctx context.Context, id int64) (*model.Meeting, error)
	// Update はミーティングを上書きする。メンバーのみ実行できる。
	Update(ctx context.Context, actingUserID, id int64, title, description, timeStr string) (*model.Meeting, error)
	// Destroy はミーティングを削除する。メンバーのみ実行できる。
	Destroy(ctx context.Context, actingUserID, id int64) error
}

// MeetingHandler はミーティング管理のHTTPハンドラー。
type MeetingHandler struct {
	service   MeetingServiceInterface
	validator *validation.Validator
}

// NewMeetingHandler はMeetingHandlerを生成する。
func NewMeetingHandler(service MeetingServiceInterface, validator *validation.Validator) *MeetingHandler {
	return &MeetingHandler{
		service:   service,
		validator: validator,
	}
}

// meetingRequest はミーティング作成・更新リクエストのボディ。
type meetingRequest struct {
	Title       string `json:"title" validate:"required"`
	Description string `json:"description" validate:"required"`
	Time        string `json:"time" validate:"required,datetime=20060102150405"`
}

// meetingListResponse は一覧取得のレスポンスボディ。
// meetingsが配列の配列なのは元システムのレスポンス形をそのまま踏襲している。
type meetingListResponse struct {
	Msg      string              `json:"msg"`
	Meetings [][]meetingResponse `json:"meetings"`
}

// meetingItemResponse は作成・更新のレスポンスボディ。
type meetingItemResponse struct {
	Msg     string          `json:"msg"`
	Meeting meetingResponse `json:"meeting"`
}

// meetingShowResponse は個別取得のレスポンスボディ。
// 単一オブジェクトだがキー名はmeetings（元システム互換）。
type meetingShowResponse struct {
	Msg      string          `json:"msg"`
	Meetings meetingResponse `json:"meetings"`
}

// meetingDeletedResponse は削除成功のレスポンスボディ。再作成のヒントリンクを含む。
type meetingDeletedResponse struct {
	Msg    string       `json:"msg"`
	Create linkResponse `json:"create"`
}

// List は全ミーティングの一覧を返す。
// GET /api/v1/meeting
func (h *MeetingHandler) List(w http.ResponseWriter, r *http.Request) {
	meetings, err := h.service.List(r.Context())
	if err != nil {
		handleServiceError(w, err)
		return
	}

	items := make([]meetingResponse, len(meetings))
	for i, m := range meetings {
		items[i] = toMeetingResponse(m, viewMeetingLink(m.ID))
	}

	writeJSON(w, http.StatusOK, meetingListResponse{
		Msg:      "List All meetings",
		Meetings: [][]meetingResponse{items},
	})
}

// Create はミーティングを作成する。
// POST /api/v1/meeting
func (h *MeetingHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req meetingRequest
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

	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeAPIErrorResponse(w, http.StatusNotFound, model.NewAuthUserNotFoundError())
		return
	}

	m, err := h.service.Create(r.Context(), userID, req.Title, req.Description, req.Time)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, meetingItemResponse{
		Msg:     "Meeting created",
		Meeting: toMeetingResponse(m, viewMeetingLink(m.ID)),
	})
}

// Show は指定IDのミーティングをメンバー付きで返す。
// GET /api/v1/meeting/{id}
func (h *MeetingHandler) Show(w http.ResponseWriter, r *http.Request) {
	id, err := meetingIDFromPath(r)
	if err != nil {
		writeAPIErrorResponse(w, http.StatusNotFound, model.NewMeetingNotFoundError(0))
		return
	}

	m, err := h.service.Show(r.Context(), id)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	// 個別取得のリンクは一覧を指す
	writeJSON(w, http.StatusOK, meetingShowResponse{
		Msg: "Meeting information",
		Meetings: toMeetingResponse(m, &linkResponse{
			Href:   "api/v1/meeting",
			Method: http.MethodGet,
		}),
	})
}

// Update はミーティングのtitle/description/timeを上書きする。
// PUT/PATCH /api/v1/meeting/{id}
func (h *MeetingHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req meetingRequest
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

	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeAPIErrorResponse(w, http.StatusNotFound, model.NewAuthUserNotFoundError())
		return
	}

	id, err := meetingIDFromPath(r)
	if err != nil {
		writeAPIErrorResponse(w, http.StatusNotFound, model.NewMeetingNotFoundError(0))
		return
	}

	m, err := h.service.Update(r.Context(), userID, id, req.Title, req.Description, req.Time)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, meetingItemResponse{
		Msg:     "Meeting updated",
		Meeting: toMeetingResponse(m, nil),
	})
}

// Destroy はミーティングを削除する。
// DELETE /api/v1/meeting/{id}
func (h *MeetingHandler) Destroy(w http.ResponseWriter, r *http.Request) {
	id, err := meetingIDFromPath(r)
	if err != nil {
		writeAPIErrorResponse(w, http.StatusNotFound, model.NewMeetingNotFoundError(0))
		return
	}

	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeAPIErrorResponse(w, http.StatusNotFound, model.NewAuthUserNotFoundError())
		return
	}

	if err := h.service.Destroy(r.Context(), userID, id); err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, meetingDeletedResponse{
		Msg: "Meeting deleted",
		Create: linkResponse{
			Href:   "api/v1/meeting",
			Method: http.MethodPost,
			Params: "title, description, time",
		},
	})
}

// meetingIDFromPath はパスパラメータidを数値IDとしてパースする。
func meetingIDFromPath(r *http.Request) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
}
