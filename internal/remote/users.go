package remote

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"jobdeck/internal/models"
	"jobdeck/internal/providers"

	json "github.com/goccy/go-json"
)

func userPath(id, action string) string {
	p := "/users/" + url.PathEscape(id)
	if action != "" {
		p += "/" + action
	}
	return p
}

// checkTarget refuses admin operations without a target or aimed at the signed-in user.
func (s *Session) checkTarget(id, selfMessage string) error {
	if strings.TrimSpace(id) == "" {
		return reject(ErrValidation, msgUserIDRequired)
	}
	if self := s.creds.UserID(); self != "" && self == id {
		return reject(ErrSelfTarget, selfMessage)
	}
	return nil
}

func (s *Session) ListUsers(ctx context.Context, hideInactive bool) (models.UserList, error) {
	query := url.Values{"hideInactive": {strconv.FormatBool(hideInactive)}}
	env, err := s.do(ctx, http.MethodGet, "/users/all", query, nil)
	if err != nil {
		return models.UserList{}, err
	}
	list := models.UserList{Users: []models.User{}}
	if err := s.decodeData(env, http.MethodGet, "/users/all", &list.Users); err != nil {
		return models.UserList{}, err
	}
	if len(env.Meta) > 0 {
		if err := json.Unmarshal(env.Meta, &list.Meta); err != nil {
			s.client.logger.Warnf(providers.TypeApp, "Ignoring malformed user list meta: %s", err)
		}
	}
	if list.Meta.Returned == 0 {
		list.Meta.Returned = len(list.Users)
	}
	return list, nil
}

func (s *Session) ToggleActive(ctx context.Context, id string) (models.AdminResult, error) {
	if err := s.checkTarget(id, msgSelfDeactivate); err != nil {
		return models.AdminResult{}, err
	}
	return s.userUpdate(ctx, http.MethodPatch, userPath(id, "toggle-active"), nil)
}

func (s *Session) ChangeRole(ctx context.Context, req models.ChangeRoleRequest) (models.AdminResult, error) {
	if err := validateRequest(&req); err != nil {
		return models.AdminResult{}, err
	}
	if err := s.checkTarget(req.UserID, msgSelfRoleChange); err != nil {
		return models.AdminResult{}, err
	}
	body := map[string]string{"role": req.Role}
	return s.userUpdate(ctx, http.MethodPatch, userPath(req.UserID, "change-role"), body)
}

func (s *Session) DeleteUser(ctx context.Context, id string) (models.AdminResult, error) {
	if err := s.checkTarget(id, msgSelfDelete); err != nil {
		return models.AdminResult{}, err
	}
	env, err := s.do(ctx, http.MethodDelete, userPath(id, ""), nil, nil)
	if err != nil {
		return models.AdminResult{}, err
	}
	return models.AdminResult{Message: env.Message}, nil
}

func (s *Session) userUpdate(ctx context.Context, method, path string, body interface{}) (models.AdminResult, error) {
	env, err := s.do(ctx, method, path, nil, body)
	if err != nil {
		return models.AdminResult{}, err
	}
	var user models.User
	if err := s.decodeData(env, method, path, &user); err != nil {
		return models.AdminResult{}, err
	}
	return models.AdminResult{Message: env.Message, User: &user}, nil
}

func (s *Session) BulkActivate(ctx context.Context, req models.BulkActivateRequest) (models.AdminResult, error) {
	ids := make([]string, 0, len(req.UserIDs))
	for _, id := range req.UserIDs {
		if id = strings.TrimSpace(id); id != "" {
			ids = append(ids, id)
		}
	}
	if len(ids) == 0 {
		return models.AdminResult{}, reject(ErrValidation, msgBulkActivateIDs)
	}

	env, err := s.do(ctx, http.MethodPost, "/users/bulk-activate", nil, models.BulkActivateRequest{UserIDs: ids})
	if err != nil {
		return models.AdminResult{}, err
	}
	var data struct {
		Count int `json:"count"`
	}
	if err := s.decodeData(env, http.MethodPost, "/users/bulk-activate", &data); err != nil {
		return models.AdminResult{}, err
	}
	return models.AdminResult{Message: env.Message, Count: data.Count}, nil
}
