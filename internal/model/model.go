// Package model defines domain entities used by services and repositories.
package model

import (
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"strconv"
	"time"
)

// Sex codes follow ISO 5218.
const (
	SexNotKnown = "0"
	SexMale     = "1"
	SexFemale   = "2"
)

// UserCodeLength is the total length of a generated user code.
const UserCodeLength = 13

const userCodeAlphabet = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// LoginType selects the identity channel used for a login or a session token.
type LoginType string

const (
	LoginEmail    LoginType = "EMAIL"
	LoginPhone    LoginType = "PHONE"
	LoginFacebook LoginType = "FACEBOOK"
	LoginGoogle   LoginType = "GOOGLE"
)

// Valid reports whether t is one of the known login types.
func (t LoginType) Valid() bool {
	switch t {
	case LoginEmail, LoginPhone, LoginFacebook, LoginGoogle:
		return true
	}
	return false
}

// User represents an account. Channel identifiers are nil when not set.
type User struct {
	ID             int64
	UserCode       string
	HashedPassword string // empty for social-only accounts
	SexCode        string
	Name           *string

	Email               *string
	Phone               *string
	FacebookID          *string
	FacebookAccessToken *string
	GoogleID            *string
	GoogleAccessToken   *string

	IsEmailVerified    bool
	IsPhoneVerified    bool
	IsFacebookVerified bool
	IsGoogleVerified   bool

	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt *time.Time // soft delete marker
}

// Deleted reports whether the user is soft-deleted.
func (u *User) Deleted() bool { return u.DeletedAt != nil }

// Str returns a pointer to s, or nil when s is empty.
func Str(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// Deref returns the pointed value or "".
func Deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// ValidateChannels checks that a new user carries at least one identity channel.
func (u *User) ValidateChannels() error {
	if Deref(u.Email) != "" || Deref(u.Phone) != "" ||
		Deref(u.FacebookID) != "" || Deref(u.GoogleID) != "" {
		return nil
	}
	return errors.New("validation: email, phone, facebook_id or google_id required")
}

// ErrUserCodeOverflow means the id is too long to fit a user code.
var ErrUserCodeOverflow = errors.New("id too long for user_code")

// GenerateUserCodeIfEmpty assigns a user code of the form <padding>_<id>,
// UserCodeLength characters in total. It is a no-op when the code is already
// set and fails when the id is not assigned yet or does not fit.
func (u *User) GenerateUserCodeIfEmpty() error {
	if u.UserCode != "" {
		return nil
	}
	if u.ID <= 0 {
		return errors.New("id is required to generate user_code")
	}
	id := strconv.FormatInt(u.ID, 10)
	n := UserCodeLength - 1 - len(id)
	if n < 0 {
		return fmt.Errorf("%w: %d digits", ErrUserCodeOverflow, len(id))
	}
	pad := make([]byte, n)
	lim := big.NewInt(int64(len(userCodeAlphabet)))
	for i := range pad {
		k, err := rand.Int(rand.Reader, lim)
		if err != nil {
			return err
		}
		pad[i] = userCodeAlphabet[k.Int64()]
	}
	u.UserCode = string(pad) + "_" + id
	return nil
}

// Claims is the identity payload carried by a session token.
// Exactly one channel field is set, matching the login type it was issued for.
type Claims struct {
	Email      string `json:"email,omitempty"`
	Phone      string `json:"phone,omitempty"`
	FacebookID string `json:"facebook_id,omitempty"`
	GoogleID   string `json:"google_id,omitempty"`
	UserID     string `json:"user_id"`
}

// ClaimsFor builds session claims for u on the given channel.
func ClaimsFor(u *User, t LoginType) Claims {
	c := Claims{UserID: strconv.FormatInt(u.ID, 10)}
	switch t {
	case LoginEmail:
		c.Email = Deref(u.Email)
	case LoginPhone:
		c.Phone = Deref(u.Phone)
	case LoginFacebook:
		c.FacebookID = Deref(u.FacebookID)
	case LoginGoogle:
		c.GoogleID = Deref(u.GoogleID)
	}
	return c
}

// Credentials is the input of an email/phone login.
type Credentials struct {
	Email    string
	Phone    string
	Password string
}

// SocialCredentials is the input of a Facebook/Google registration or login.
type SocialCredentials struct {
	ProviderID  string
	AccessToken string
}

// LoginRequest is a channel-dispatched login request.
type LoginRequest struct {
	Type LoginType
	Credentials
	Social SocialCredentials
}

// Session is the outcome of a successful login or verification.
type Session struct {
	AccessToken    string
	TokenType      string
	IsUserVerified bool
}
