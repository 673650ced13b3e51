package remote

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"jobdeck/internal/models"
	"jobdeck/internal/providers"

	"github.com/spf13/cast"
)

// SearchJobs queries the aggregation service. Listings that fail normalization are dropped.
// Listings sharing an id are all kept in upstream order.
func (s *Session) SearchJobs(ctx context.Context, query, location string) ([]models.JobRecord, error) {
	params := url.Values{
		"query":    {strings.TrimSpace(query)},
		"location": {strings.TrimSpace(location)},
	}
	env, err := s.do(ctx, http.MethodGet, "/search/jobs", params, nil)
	if err != nil {
		return nil, err
	}

	var raw []map[string]interface{}
	if err := s.decodeData(env, http.MethodGet, "/search/jobs", &raw); err != nil {
		return nil, err
	}

	jobs := make([]models.JobRecord, 0, len(raw))
	for _, item := range raw {
		job, err := models.JobFromMap(item)
		if err != nil {
			s.client.logger.Warnf(providers.TypeApp, "Dropping listing: %s", err)
			continue
		}
		jobs = append(jobs, job)
	}
	return jobs, nil
}

// SearchLocations returns place suggestions. The service may answer with plain strings or
// with objects carrying a name.
func (s *Session) SearchLocations(ctx context.Context, q string) ([]string, error) {
	env, err := s.do(ctx, http.MethodGet, "/locations/search", url.Values{"q": {q}}, nil)
	if err != nil {
		return nil, err
	}

	var raw []interface{}
	if err := s.decodeData(env, http.MethodGet, "/locations/search", &raw); err != nil {
		return nil, err
	}

	out := make([]string, 0, len(raw))
	for _, item := range raw {
		var name string
		switch v := item.(type) {
		case map[string]interface{}:
			name = cast.ToString(v["name"])
			if name == "" {
				name = cast.ToString(v["label"])
			}
		default:
			name = cast.ToString(v)
		}
		if name = strings.TrimSpace(name); name != "" {
			out = append(out, name)
		}
	}
	return out, nil
}
