package services

import (
	"context"
	"errors"

	"jobdeck/internal/models"
	"jobdeck/internal/providers"
)

var (
	ErrNotSignedIn   = errors.New("access token required")
	ErrAdminRequired = errors.New("admin access required")
)

type AccountServiceInterface interface {
	Login(ctx context.Context, p *Profile, req models.LoginRequest) (models.User, error)
	Register(ctx context.Context, p *Profile, req models.RegisterRequest) (models.User, error)
	Logout(p *Profile) error
	Me(ctx context.Context, p *Profile) (models.User, error)
	ListUsers(ctx context.Context, p *Profile, hideInactive bool) (models.UserList, error)
	ToggleActive(ctx context.Context, p *Profile, id string) (models.AdminResult, error)
	ChangeRole(ctx context.Context, p *Profile, req models.ChangeRoleRequest) (models.AdminResult, error)
	BulkActivate(ctx context.Context, p *Profile, req models.BulkActivateRequest) (models.AdminResult, error)
	DeleteUser(ctx context.Context, p *Profile, id string) (models.AdminResult, error)
}

// AccountService keeps a profile's session in step with the auth service and guards the
// admin operations with the locally known role.
type AccountService struct {
	logger providers.Logger
}

func NewAccountService(logger providers.Logger) *AccountService {
	return &AccountService{logger: logger}
}

func (as *AccountService) Login(ctx context.Context, p *Profile, req models.LoginRequest) (models.User, error) {
	session, err := p.Remote.Login(ctx, req)
	if err != nil {
		return models.User{}, err
	}
	return as.store(p, session)
}

func (as *AccountService) Register(ctx context.Context, p *Profile, req models.RegisterRequest) (models.User, error) {
	session, err := p.Remote.Register(ctx, req)
	if err != nil {
		return models.User{}, err
	}
	return as.store(p, session)
}

func (as *AccountService) store(p *Profile, session models.Session) (models.User, error) {
	if err := p.State.Session.SetSession(session.Token, session.User); err != nil {
		return models.User{}, err
	}
	as.logger.Infof(providers.TypeApp, "Profile %s signed in as %s", p.Name, session.User.Username)
	return session.User, nil
}

func (as *AccountService) Logout(p *Profile) error {
	return p.State.Session.Clear()
}

// Me asks the auth service who the token belongs to and refreshes the stored user.
func (as *AccountService) Me(ctx context.Context, p *Profile) (models.User, error) {
	token := p.State.Session.Token()
	if token == "" {
		return models.User{}, ErrNotSignedIn
	}
	user, err := p.Remote.Me(ctx)
	if err != nil {
		return models.User{}, err
	}
	if err := p.State.Session.SetSession(token, user); err != nil {
		return models.User{}, err
	}
	return user, nil
}

func (as *AccountService) requireAdmin(p *Profile) error {
	if p.State.Session.Token() == "" {
		return ErrNotSignedIn
	}
	user, ok := p.State.Session.User()
	if !ok || !user.IsAdmin() {
		return ErrAdminRequired
	}
	return nil
}

func (as *AccountService) ListUsers(ctx context.Context, p *Profile, hideInactive bool) (models.UserList, error) {
	if err := as.requireAdmin(p); err != nil {
		return models.UserList{}, err
	}
	return p.Remote.ListUsers(ctx, hideInactive)
}

func (as *AccountService) ToggleActive(ctx context.Context, p *Profile, id string) (models.AdminResult, error) {
	if err := as.requireAdmin(p); err != nil {
		return models.AdminResult{}, err
	}
	return as.logged(p, "toggle-active", id)(p.Remote.ToggleActive(ctx, id))
}

func (as *AccountService) ChangeRole(ctx context.Context, p *Profile, req models.ChangeRoleRequest) (models.AdminResult, error) {
	if err := as.requireAdmin(p); err != nil {
		return models.AdminResult{}, err
	}
	return as.logged(p, "change-role", req.UserID)(p.Remote.ChangeRole(ctx, req))
}

func (as *AccountService) BulkActivate(ctx context.Context, p *Profile, req models.BulkActivateRequest) (models.AdminResult, error) {
	if err := as.requireAdmin(p); err != nil {
		return models.AdminResult{}, err
	}
	return as.logged(p, "bulk-activate", "")(p.Remote.BulkActivate(ctx, req))
}

func (as *AccountService) DeleteUser(ctx context.Context, p *Profile, id string) (models.AdminResult, error) {
	if err := as.requireAdmin(p); err != nil {
		return models.AdminResult{}, err
	}
	return as.logged(p, "delete", id)(p.Remote.DeleteUser(ctx, id))
}

// logged records successful admin operations in the post log.
func (as *AccountService) logged(p *Profile, op, target string) func(models.AdminResult, error) (models.AdminResult, error) {
	return func(res models.AdminResult, err error) (models.AdminResult, error) {
		if err == nil {
			as.logger.Infof(providers.TypePost, "Profile %s: admin %s %s: %s", p.Name, op, target, res.Message)
		}
		return res, err
	}
}
