package domain

import "time"

// User is an account plus its per-user remote credential and training state.
// LastTrainedAt is decoded by the repository so legacy offset-less values are read as UTC.
type User struct {
	UserID        string     `json:"id" dynamodbav:"user_id"`
	Username      string     `json:"username" dynamodbav:"username"`
	Email         string     `json:"email" dynamodbav:"email"`
	PasswordHash  string     `json:"-" dynamodbav:"password_hash"`
	Role          string     `json:"role" dynamodbav:"role"`
	CoreIoTToken  string     `json:"-" dynamodbav:"coreiot_access_token"`
	LastTrainedAt *time.Time `json:"last_trained_at,omitempty" dynamodbav:"-"`
	CreatedAt     time.Time  `json:"created" dynamodbav:"created_at"`
	UpdatedAt     time.Time  `json:"updated" dynamodbav:"updated_at"`
}

// HasCoreIoTToken reports whether a remote credential is stored.
func (u *User) HasCoreIoTToken() bool { return u.CoreIoTToken != "" }

type CreateUserRequest struct {
	Username string `json:"username" validate:"required,min=3,max=64"`
	Password string `json:"password" validate:"required,min=8,max=72"`
	Email    string `json:"email" validate:"required,email"`
}

type UpdateCoreIoTTokenRequest struct {
	CoreIoTToken string `json:"coreiot_access_token" validate:"required"`
}
