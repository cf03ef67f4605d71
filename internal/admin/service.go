// Package admin manages the back-office operators whose names are stamped on orders.
package admin

import (
	"context"
	"net/mail"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/MikeMC777/pos-backoffice/internal/apperr"
)

const minPasswordLen = 8

// swagger:model
type Admin struct {
	ID           int64     `json:"admin_id"`
	FirstName    string    `json:"admin_first_name"`
	LastName     string    `json:"admin_last_name"`
	Email        string    `json:"admin_email"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// DisplayName is the name snapshotted onto orders.
func (a Admin) DisplayName() string {
	return strings.TrimSpace(a.FirstName + " " + a.LastName)
}

// CreateAdminRequest payload of creation.
// swagger:model CreateAdminRequest
type CreateAdminRequest struct {
	FirstName string `json:"admin_first_name" example:"Maria"`
	LastName  string `json:"admin_last_name"  example:"Santos"`
	Email     string `json:"admin_email"      example:"maria@store.ph"`
	Password  string `json:"admin_password"   example:"s3cret-pass"`
}

func HashPassword(pw string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(pw), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func CheckPassword(hash, pw string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(pw)) == nil
}

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) Create(ctx context.Context, in CreateAdminRequest) (*Admin, error) {
	in.FirstName = strings.TrimSpace(in.FirstName)
	in.LastName = strings.TrimSpace(in.LastName)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))

	if in.FirstName == "" || in.LastName == "" || in.Email == "" || in.Password == "" {
		return nil, apperr.Validation("first name, last name, email and password are required")
	}
	if _, err := mail.ParseAddress(in.Email); err != nil {
		return nil, apperr.Validation("invalid email address: %s", in.Email)
	}
	if len(in.Password) < minPasswordLen {
		return nil, apperr.Validation("password must be at least %d characters", minPasswordLen)
	}

	hash, err := HashPassword(in.Password)
	if err != nil {
		return nil, apperr.Internal("hash password", err)
	}
	a := &Admin{FirstName: in.FirstName, LastName: in.LastName, Email: in.Email, PasswordHash: hash}
	if err := s.repo.Create(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}

func (s *Service) Get(ctx context.Context, id int64) (*Admin, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) List(ctx context.Context) ([]Admin, error) {
	return s.repo.List(ctx)
}

// Authenticate returns the admin when the credentials match. A wrong email and a
// wrong password are indistinguishable to the caller.
func (s *Service) Authenticate(ctx context.Context, email, password string) (*Admin, error) {
	a, err := s.repo.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if apperr.Is(err, apperr.KindNotFound) {
			return nil, apperr.Validation("invalid credentials")
		}
		return nil, err
	}
	if !CheckPassword(a.PasswordHash, password) {
		return nil, apperr.Validation("invalid credentials")
	}
	return a, nil
}
