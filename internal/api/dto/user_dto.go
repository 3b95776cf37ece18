package dto

import (
	"time"

	"github.com/spec-kit/hardware-store/internal/domain"
)

// UserRegisterRequest payload for new users.
type UserRegisterRequest struct {
	Name      string `json:"name"`
	Email     string `json:"email"`
	Password  string `json:"password"`
	About     string `json:"about"`
	Gender    string `json:"gender"`
	ImageName string `json:"imageName"`
}

// UserUpdateRequest payload for profile changes. Email cannot be changed.
type UserUpdateRequest struct {
	Name      string `json:"name"`
	Password  string `json:"password"`
	About     string `json:"about"`
	Gender    string `json:"gender"`
	ImageName string `json:"imageName"`
}

// UserLoginRequest payload for login.
type UserLoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// RoleResponse is a granted role.
type RoleResponse struct {
	RoleID   string `json:"roleId"`
	RoleName string `json:"roleName"`
}

// UserResponse is the public view of a user.
type UserResponse struct {
	UserID    string         `json:"userId"`
	Name      string         `json:"name"`
	Email     string         `json:"email"`
	About     string         `json:"about"`
	Gender    string         `json:"gender"`
	ImageName string         `json:"imageName"`
	Enabled   bool           `json:"enabled"`
	Roles     []RoleResponse `json:"roles"`
	CreatedAt time.Time      `json:"createdAt"`
}

// AuthResponse standard response for auth endpoints.
type AuthResponse struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expires_at"`
	User      UserResponse `json:"user"`
}

// CurrentUserResponse describes the authenticated caller.
type CurrentUserResponse struct {
	Identity string   `json:"identity"`
	Roles    []string `json:"roles"`
}

// PageableResponse wraps one page of a listing.
type PageableResponse[T any] struct {
	Content       []T   `json:"content"`
	PageNumber    int   `json:"pageNumber"`
	PageSize      int   `json:"pageSize"`
	TotalElements int64 `json:"totalElements"`
	TotalPages    int   `json:"totalPages"`
	LastPage      bool  `json:"lastPage"`
}

// NewPageableResponse derives page totals from the element count.
func NewPageableResponse[T any](content []T, number, size int, total int64) PageableResponse[T] {
	if content == nil {
		content = []T{}
	}
	pages := 0
	if size > 0 {
		pages = int((total + int64(size) - 1) / int64(size))
	}
	return PageableResponse[T]{
		Content:       content,
		PageNumber:    number,
		PageSize:      size,
		TotalElements: total,
		TotalPages:    pages,
		LastPage:      number+1 >= pages,
	}
}

// ApiResponseMessage acknowledges an operation without a body.
type ApiResponseMessage struct {
	Message string `json:"message"`
	Success bool   `json:"success"`
	Status  int    `json:"status"`
}

// NewUserResponse strips credentials from a domain user.
func NewUserResponse(u *domain.User) UserResponse {
	resp := UserResponse{
		UserID:    u.ID,
		Name:      u.Name,
		Email:     u.Email,
		About:     u.About,
		Gender:    string(u.Gender),
		ImageName: u.ImageName,
		Enabled:   u.Enabled,
		Roles:     make([]RoleResponse, 0, len(u.Roles)),
		CreatedAt: u.CreatedAt,
	}
	for _, r := range u.Roles {
		resp.Roles = append(resp.Roles, RoleResponse{RoleID: r.ID, RoleName: string(r.Name)})
	}
	return resp
}

// NewUserResponses maps a slice of users.
func NewUserResponses(users []domain.User) []UserResponse {
	out := make([]UserResponse, 0, len(users))
	for i := range users {
		out = append(out, NewUserResponse(&users[i]))
	}
	return out
}
