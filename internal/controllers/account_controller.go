package controllers

import (
	"net/http"

	"jobdeck/internal/models"
	"jobdeck/internal/providers"
	"jobdeck/internal/services"

	"github.com/spf13/cast"
)

// AccountController signs profiles in and out and relays the user administration calls.
type AccountController struct {
	base
	accounts services.AccountServiceInterface
}

func NewAccountController(logger providers.Logger, profiles services.ProfileServiceInterface, accounts services.AccountServiceInterface) *AccountController {
	return &AccountController{
		base:     base{logger: logger, profiles: profiles},
		accounts: accounts,
	}
}

func (ac *AccountController) Login(w http.ResponseWriter, r *http.Request) {
	p, found := ac.profile(w, r)
	if !found {
		return
	}
	var req models.LoginRequest
	if err := decode(w, r, &req); err != nil {
		ac.fail(w, r, err)
		return
	}
	user, err := ac.accounts.Login(r.Context(), p, req)
	if err != nil {
		ac.fail(w, r, err)
		return
	}
	okMessage(w, http.StatusOK, user, "Login successful")
}

func (ac *AccountController) Register(w http.ResponseWriter, r *http.Request) {
	p, found := ac.profile(w, r)
	if !found {
		return
	}
	var req models.RegisterRequest
	if err := decode(w, r, &req); err != nil {
		ac.fail(w, r, err)
		return
	}
	user, err := ac.accounts.Register(r.Context(), p, req)
	if err != nil {
		ac.fail(w, r, err)
		return
	}
	okMessage(w, http.StatusCreated, user, "User registered successfully")
}

func (ac *AccountController) Logout(w http.ResponseWriter, r *http.Request) {
	p, found := ac.profile(w, r)
	if !found {
		return
	}
	if err := ac.accounts.Logout(p); err != nil {
		ac.fail(w, r, err)
		return
	}
	okMessage(w, http.StatusOK, nil, "Logout successful")
}

func (ac *AccountController) Me(w http.ResponseWriter, r *http.Request) {
	p, found := ac.profile(w, r)
	if !found {
		return
	}
	user, err := ac.accounts.Me(r.Context(), p)
	if err != nil {
		ac.fail(w, r, err)
		return
	}
	ok(w, user)
}

func (ac *AccountController) ListUsers(w http.ResponseWriter, r *http.Request) {
	p, found := ac.profile(w, r)
	if !found {
		return
	}
	list, err := ac.accounts.ListUsers(r.Context(), p, cast.ToBool(r.URL.Query().Get("hideInactive")))
	if err != nil {
		ac.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, models.ApiResponse{Success: true, Data: list.Users, Meta: list.Meta, Message: list.Meta.Warning})
}

func (ac *AccountController) ToggleActive(w http.ResponseWriter, r *http.Request) {
	p, found := ac.profile(w, r)
	if !found {
		return
	}
	ac.adminResult(w, r)(ac.accounts.ToggleActive(r.Context(), p, r.URL.Query().Get("id")))
}

func (ac *AccountController) ChangeRole(w http.ResponseWriter, r *http.Request) {
	p, found := ac.profile(w, r)
	if !found {
		return
	}
	var req models.ChangeRoleRequest
	if err := decode(w, r, &req); err != nil {
		ac.fail(w, r, err)
		return
	}
	ac.adminResult(w, r)(ac.accounts.ChangeRole(r.Context(), p, req))
}

func (ac *AccountController) BulkActivate(w http.ResponseWriter, r *http.Request) {
	p, found := ac.profile(w, r)
	if !found {
		return
	}
	var req models.BulkActivateRequest
	if err := decode(w, r, &req); err != nil {
		ac.fail(w, r, err)
		return
	}
	ac.adminResult(w, r)(ac.accounts.BulkActivate(r.Context(), p, req))
}

func (ac *AccountController) DeleteUser(w http.ResponseWriter, r *http.Request) {
	p, found := ac.profile(w, r)
	if !found {
		return
	}
	ac.adminResult(w, r)(ac.accounts.DeleteUser(r.Context(), p, r.URL.Query().Get("id")))
}

func (ac *AccountController) adminResult(w http.ResponseWriter, r *http.Request) func(models.AdminResult, error) {
	return func(res models.AdminResult, err error) {
		if err != nil {
			ac.fail(w, r, err)
			return
		}
		okMessage(w, http.StatusOK, res, res.Message)
	}
}
