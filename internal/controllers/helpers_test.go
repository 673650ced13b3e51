package controllers

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"jobdeck/internal/models"
	"jobdeck/internal/remote"
	"jobdeck/internal/services"
	"jobdeck/internal/storage"
	"jobdeck/internal/structures"
	"jobdeck/internal/testutil"

	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/require"
)

func testConfig(baseURL string) *structures.Config {
	return &structures.Config{
		State: structures.StateConfig{
			RecentLimit:  20,
			HistoryLimit: 50,
			Milestones:   []int{2},
			MaxProfiles:  4,
		},
		Storage: structures.StorageConfig{Driver: "memory"},
		Upstream: structures.UpstreamConfig{
			BaseURL:          baseURL,
			Timeout:          2 * time.Second,
			StaleTime:        time.Minute,
			LocationDebounce: 10 * time.Millisecond,
		},
	}
}

type fixture struct {
	conf          *structures.Config
	logger        *testutil.MockLogger
	profiles      *services.ProfileService
	notifications *remote.LogNotifier
	state         *StateController
	search        *SearchController
	browse        *BrowseController
	account       *AccountController
	profile       *ProfileController
}

// newFixture wires the controllers over a memory backend. An empty baseURL leaves the
// upstream unconfigured.
func newFixture(t *testing.T, baseURL string) *fixture {
	t.Helper()
	conf := testConfig(baseURL)
	logger := &testutil.MockLogger{}
	metrics := &testutil.MockMetrics{}
	notifications := remote.NewLogNotifier(logger)
	client := remote.NewClient(conf, notifications, logger, metrics)
	profiles := services.NewProfileService(conf, storage.NewMemoryBackend(), client, logger, metrics)
	search := services.NewSearchService(conf, testutil.NewMockCache(), logger)
	t.Cleanup(func() {
		search.Wait()
		_ = profiles.Close()
	})

	return &fixture{
		conf:          conf,
		logger:        logger,
		profiles:      profiles,
		notifications: notifications,
		state:         NewStateController(logger, profiles),
		search:        NewSearchController(logger, profiles),
		browse:        NewBrowseController(logger, profiles, search, services.NewLocationService(conf, logger)),
		account:       NewAccountController(logger, profiles, services.NewAccountService(logger)),
		profile:       NewProfileController(logger, profiles, notifications),
	}
}

// call runs handler against a request built from method, target and an optional JSON body.
func call(t *testing.T, handler http.HandlerFunc, method, target string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if raw, isString := body.(string); isString {
			buf.WriteString(raw)
		} else {
			require.NoError(t, json.NewEncoder(&buf).Encode(body))
		}
	}
	req := httptest.NewRequest(method, target, &buf)
	rr := httptest.NewRecorder()
	handler(rr, req)
	return rr
}

// envelope decodes the response and unmarshals its data into dst when dst is non-nil.
func envelope(t *testing.T, rr *httptest.ResponseRecorder, dst interface{}) models.ApiResponse {
	t.Helper()
	var resp struct {
		models.ApiResponse
		Data json.RawMessage `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	if dst != nil {
		require.NoError(t, json.Unmarshal(resp.Data, dst))
	}
	return resp.ApiResponse
}

func job(id, title string) models.JobRecord {
	return models.JobRecord{ID: id, Title: title, Company: "Acme", Location: "Berlin"}
}

// upstream fakes the remote collaborators with the standard envelope.
func upstream(t *testing.T, handler func(r *http.Request) (int, map[string]interface{})) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		status, body := handler(r)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(body)
	}))
	t.Cleanup(srv.Close)
	return srv
}
