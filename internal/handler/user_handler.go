package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/hitoshi/meetman/internal/auth"
	"github.com/hitoshi/meetman/internal/middleware"
	"github.com/hitoshi/meetman/internal/model"
	"github.com/hitoshi/meetman/internal/validation"
)

// UserServiceInterface はユーザーハンドラーが必要とするサービスインターフェース。
type UserServiceInterface interface {
	// Signup は新規ユーザーを登録する。
	Signup(ctx context.Context, name, email, password string) (*model.User, error)
	// Signin は資格情報を検証しベアラートークンを発行する。
	Signin(ctx context.Context, email, password string) (string, error)
	// Signout はセッションを失効させる。
	Signout(ctx context.Context, sessionID string) error
}

// UserHandler はユーザー登録・認証のHTTPハンドラー。
type UserHandler struct {
	service   UserServiceInterface
	validator *validation.Validator
}

// NewUserHandler はUserHandlerを生成する。
func NewUserHandler(service UserServiceInterface, validator *validation.Validator) *UserHandler {
	return &UserHandler{
		service:   service,
		validator: validator,
	}
}

// signupRequest はユーザー登録リクエストのボディ。
type signupRequest struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

// signinRequest はサインインリクエストのボディ。
type signinRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// signupResponse はユーザー登録成功のレスポンスボディ。
type signupResponse struct {
	Msg  string       `json:"msg"`
	User userResponse `json:"user"`
}

// signinResponse はサインイン成功のレスポンスボディ。
type signinResponse struct {
	Msg   string `json:"msg"`
	Token string `json:"token"`
}

// Signup は新規ユーザーを登録する。
// POST /api/v1/user
func (h *UserHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var req signupRequest
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

	user, err := h.service.Signup(r.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrEmailTaken) {
			writeJSON(w, http.StatusConflict, msgResponse{Msg: "Email already in use"})
			return
		}
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, signupResponse{
		Msg:  "User created",
		User: toUserResponse(user),
	})
}

// Signin は資格情報を検証しベアラートークンを発行する。
// POST /api/v1/user/signin
func (h *UserHandler) Signin(w http.ResponseWriter, r *http.Request) {
	var req signinRequest
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

	token, err := h.service.Signin(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			writeJSON(w, http.StatusUnauthorized, msgResponse{Msg: "Invalid credentials"})
			return
		}
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, signinResponse{
		Msg:   "Signed in",
		Token: token,
	})
}

// Signout は現在のセッションを失効させる。
// POST /api/v1/user/signout
func (h *UserHandler) Signout(w http.ResponseWriter, r *http.Request) {
	sessionID, err := middleware.SessionIDFromContext(r.Context())
	if err != nil {
		writeAPIErrorResponse(w, http.StatusNotFound, model.NewAuthUserNotFoundError())
		return
	}

	if err := h.service.Signout(r.Context(), sessionID); err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, msgResponse{Msg: "Signed out"})
}
