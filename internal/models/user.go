package models

import "time"

const (
	RoleAdmin = "ADMIN"
	RoleUser  = "USER"
)

type User struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Username  string    `json:"username"`
	FirstName string    `json:"firstName,omitempty"`
	LastName  string    `json:"lastName,omitempty"`
	Role      string    `json:"role"`
	IsActive  bool      `json:"isActive"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (u User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

type Session struct {
	User  User   `json:"user"`
	Token string `json:"token"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required|email"`
	Password string `json:"password" validate:"required|minLen:6"`
}

func (r LoginRequest) Messages() map[string]string {
	return map[string]string{
		"email.required":    "Invalid email format",
		"email.email":       "Invalid email format",
		"password.required": "Password must be at least 6 characters",
		"password.minLen":   "Password must be at least 6 characters",
	}
}

type RegisterRequest struct {
	Email     string `json:"email" validate:"required|email"`
	Username  string `json:"username" validate:"required|minLen:3"`
	Password  string `json:"password" validate:"required|minLen:6"`
	FirstName string `json:"firstName,omitempty"`
	LastName  string `json:"lastName,omitempty"`
}

func (r RegisterRequest) Messages() map[string]string {
	return map[string]string{
		"email.required":    "Invalid email format",
		"email.email":       "Invalid email format",
		"username.required": "Username must be at least 3 characters",
		"username.minLen":   "Username must be at least 3 characters",
		"password.required": "Password must be at least 6 characters",
		"password.minLen":   "Password must be at least 6 characters",
	}
}

type ChangeRoleRequest struct {
	UserID string `json:"userId" validate:"required"`
	Role   string `json:"role" validate:"required|in:ADMIN,USER"`
}

func (r ChangeRoleRequest) Messages() map[string]string {
	return map[string]string{
		"userId.required": "User id is required",
		"role.required":   "Invalid role. Must be ADMIN or USER",
		"role.in":         "Invalid role. Must be ADMIN or USER",
	}
}

type BulkActivateRequest struct {
	UserIDs []string `json:"userIds"`
}

type UsersMeta struct {
	Total    int    `json:"total"`
	Active   int    `json:"active"`
	Inactive int    `json:"inactive"`
	Returned int    `json:"returned"`
	Warning  string `json:"warning,omitempty"`
}

type UserList struct {
	Users []User    `json:"users"`
	Meta  UsersMeta `json:"meta"`
}

type AdminResult struct {
	Message string `json:"message"`
	User    *User  `json:"user,omitempty"`
	Count   int    `json:"count,omitempty"`
}
