package grpcserver

import (
	"time"

	"github.com/and161185/lingua-auth/internal/model"
)

// Empty is the request or response of calls without a payload.
type Empty struct{}

type RegisterEmailRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type RegisterPhoneRequest struct {
	Phone    string `json:"phone"`
	Password string `json:"password"`
}

// RegisterSocialRequest carries a Facebook or Google account id and token.
type RegisterSocialRequest struct {
	ID          string `json:"id"`
	AccessToken string `json:"access_token"`
}

// LoginRequest is dispatched on LoginType (EMAIL, PHONE, FACEBOOK, GOOGLE).
type LoginRequest struct {
	LoginType   string `json:"login_type"`
	Email       string `json:"email,omitempty"`
	Phone       string `json:"phone,omitempty"`
	Password    string `json:"password,omitempty"`
	ID          string `json:"id,omitempty"`
	AccessToken string `json:"access_token,omitempty"`
}

type SessionResponse struct {
	AccessToken    string `json:"access_token"`
	TokenType      string `json:"token_type"`
	IsUserVerified bool   `json:"is_user_verified"`
}

type ForgotPasswordEmailRequest struct {
	Email string `json:"email"`
}

type ForgotPasswordPhoneRequest struct {
	Phone string `json:"phone"`
}

type ResetPasswordRequest struct {
	Token    string `json:"token"`
	Password string `json:"password"`
}

type VerifyEmailRequest struct {
	Token string `json:"token"`
}

type VerifyPhoneRequest struct {
	Pin string `json:"pin"`
}

type CheckVerificationResponse struct {
	Verified bool `json:"verified"`
}

// UserResponse is the public view of an account.
type UserResponse struct {
	ID                 int64     `json:"id"`
	UserCode           string    `json:"user_code"`
	SexCode            string    `json:"sex_code"`
	Name               string    `json:"name,omitempty"`
	Email              string    `json:"email,omitempty"`
	Phone              string    `json:"phone,omitempty"`
	FacebookID         string    `json:"facebook_id,omitempty"`
	GoogleID           string    `json:"google_id,omitempty"`
	IsEmailVerified    bool      `json:"is_email_verified"`
	IsPhoneVerified    bool      `json:"is_phone_verified"`
	IsFacebookVerified bool      `json:"is_facebook_verified"`
	IsGoogleVerified   bool      `json:"is_google_verified"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}

func toUserResponse(u *model.User) *UserResponse {
	return &UserResponse{
		ID:                 u.ID,
		UserCode:           u.UserCode,
		SexCode:            u.SexCode,
		Name:               model.Deref(u.Name),
		Email:              model.Deref(u.Email),
		Phone:              model.Deref(u.Phone),
		FacebookID:         model.Deref(u.FacebookID),
		GoogleID:           model.Deref(u.GoogleID),
		IsEmailVerified:    u.IsEmailVerified,
		IsPhoneVerified:    u.IsPhoneVerified,
		IsFacebookVerified: u.IsFacebookVerified,
		IsGoogleVerified:   u.IsGoogleVerified,
		CreatedAt:          u.CreatedAt,
		UpdatedAt:          u.UpdatedAt,
	}
}

func toSessionResponse(s model.Session) *SessionResponse {
	return &SessionResponse{AccessToken: s.AccessToken, TokenType: s.TokenType, IsUserVerified: s.IsUserVerified}
}

func (r *LoginRequest) toModel() model.LoginRequest {
	return model.LoginRequest{
		Type:        model.LoginType(r.LoginType),
		Credentials: model.Credentials{Email: r.Email, Phone: r.Phone, Password: r.Password},
		Social:      model.SocialCredentials{ProviderID: r.ID, AccessToken: r.AccessToken},
	}
}
