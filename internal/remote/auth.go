package remote

import (
	"context"
	"net/http"

	"jobdeck/internal/models"

	"github.com/gookit/validate"
)

func validateRequest(req interface{}) error {
	v := validate.Struct(req)
	if !v.Validate() {
		return reject(ErrValidation, v.Errors.One())
	}
	return nil
}

func (s *Session) Login(ctx context.Context, req models.LoginRequest) (models.Session, error) {
	if err := validateRequest(&req); err != nil {
		return models.Session{}, err
	}
	return s.authenticate(ctx, "/auth/login", req)
}

func (s *Session) Register(ctx context.Context, req models.RegisterRequest) (models.Session, error) {
	if err := validateRequest(&req); err != nil {
		return models.Session{}, err
	}
	return s.authenticate(ctx, "/auth/register", req)
}

func (s *Session) authenticate(ctx context.Context, path string, body interface{}) (models.Session, error) {
	env, err := s.do(ctx, http.MethodPost, path, nil, body)
	if err != nil {
		return models.Session{}, err
	}
	var session models.Session
	if err := s.decodeData(env, http.MethodPost, path, &session); err != nil {
		return models.Session{}, err
	}
	if session.Token == "" {
		return models.Session{}, s.intercept(http.MethodPost, path, http.StatusOK, "", nil, "")
	}
	return session, nil
}

// Me returns the user the current token belongs to.
func (s *Session) Me(ctx context.Context) (models.User, error) {
	env, err := s.do(ctx, http.MethodGet, "/auth/me", nil, nil)
	if err != nil {
		return models.User{}, err
	}
	var data struct {
		User models.User `json:"user"`
	}
	if err := s.decodeData(env, http.MethodGet, "/auth/me", &data); err != nil {
		return models.User{}, err
	}
	return data.User, nil
}
