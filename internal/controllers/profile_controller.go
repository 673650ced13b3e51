package controllers

import (
	"net/http"

	"jobdeck/internal/providers"
	"jobdeck/internal/remote"
	"jobdeck/internal/services"
)

type ProfileController struct {
	base
	notifications *remote.LogNotifier
}

func NewProfileController(logger providers.Logger, profiles services.ProfileServiceInterface, notifications *remote.LogNotifier) *ProfileController {
	return &ProfileController{
		base:          base{logger: logger, profiles: profiles},
		notifications: notifications,
	}
}

type profilesResponse struct {
	Open   []string `json:"open"`
	Stored []string `json:"stored"`
}

func (pc *ProfileController) Profiles(w http.ResponseWriter, r *http.Request) {
	stored, err := pc.profiles.Stored()
	if err != nil {
		pc.fail(w, r, err)
		return
	}
	ok(w, profilesResponse{Open: pc.profiles.Profiles(), Stored: stored})
}

// Notifications hands out the upstream failure messages queued since the last call.
func (pc *ProfileController) Notifications(w http.ResponseWriter, r *http.Request) {
	ok(w, pc.notifications.Drain())
}
