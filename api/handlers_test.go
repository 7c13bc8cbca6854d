package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/charliedev/reliquary/config"
	"github.com/charliedev/reliquary/internal/indexer"
	"github.com/charliedev/reliquary/internal/registry"
	"github.com/charliedev/reliquary/internal/search"
	"github.com/charliedev/reliquary/internal/store"
	"github.com/charliedev/reliquary/model"
)

// recordingScheduler captures Schedule calls so tests stay deterministic;
// the real pool would race the assertions on queue contents.
type recordingScheduler struct {
	mu    sync.Mutex
	calls [][2]int64
}

func (s *recordingScheduler) Schedule(elementID, siteID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, [2]int64{elementID, siteID})
}

func (s *recordingScheduler) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.calls)
}

func setupTestRouter(t *testing.T) (*gin.Engine, *store.Store, *recordingScheduler) {
	t.Helper()
	st, err := store.Open(":memory:")
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	t.Cleanup(func() { st.Close() })

	settings := config.DefaultSettings()
	searcher := search.NewService(st, registry.New(), &settings)
	scheduler := &recordingScheduler{}

	gin.SetMode(gin.TestMode)
	router := gin.New()
	SetupRoutes(router, searcher, scheduler, indexer.NewWriter(st), st)
	return router, st, scheduler
}

func doJSON(t *testing.T, router *gin.Engine, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("failed to encode body: %v", err)
		}
		reader = bytes.NewReader(encoded)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestHealthCheckHandler(t *testing.T) {
	router, _, _ := setupTestRouter(t)

	w := doJSON(t, router, http.MethodGet, "/health", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	var body map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid response body: %v", err)
	}
	if body["status"] != "ok" {
		t.Errorf("status field = %v, want ok", body["status"])
	}
}

func TestSearchHandlerGroupNotFound(t *testing.T) {
	router, _, _ := setupTestRouter(t)

	w := doJSON(t, router, http.MethodPost, "/search", SearchRequest{Group: "missing", Page: 1})
	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404; body %s", w.Code, w.Body.String())
	}
	var apiErr APIError
	if err := json.Unmarshal(w.Body.Bytes(), &apiErr); err != nil {
		t.Fatalf("invalid error body: %v", err)
	}
	if apiErr.Code != ErrorCodeGroupNotFound {
		t.Errorf("error code = %s, want %s", apiErr.Code, ErrorCodeGroupNotFound)
	}
}

func TestSearchHandlerRequiresGroup(t *testing.T) {
	router, _, _ := setupTestRouter(t)

	w := doJSON(t, router, http.MethodPost, "/search", SearchRequest{Page: 1})
	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}

func TestGroupLifecycle(t *testing.T) {
	router, _, _ := setupTestRouter(t)

	group := model.SearchGroup{
		SiteID:      1,
		Handle:      "library",
		Name:        "Library",
		PageSize:    10,
		SearchOrder: model.SearchOrderDefault,
	}
	w := doJSON(t, router, http.MethodPost, "/groups", group)
	if w.Code != http.StatusOK {
		t.Fatalf("create status = %d; body %s", w.Code, w.Body.String())
	}
	var created model.SearchGroup
	if err := json.Unmarshal(w.Body.Bytes(), &created); err != nil {
		t.Fatalf("invalid create body: %v", err)
	}
	if created.ID == 0 || created.UID == "" {
		t.Fatalf("created group missing id or uid: %+v", created)
	}

	w = doJSON(t, router, http.MethodGet, "/groups/1", nil)
	if w.Code != http.StatusOK {
		t.Errorf("get status = %d", w.Code)
	}

	w = doJSON(t, router, http.MethodGet, "/groups/999", nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("get missing status = %d, want 404", w.Code)
	}

	w = doJSON(t, router, http.MethodDelete, "/groups/1", nil)
	if w.Code != http.StatusNoContent {
		t.Errorf("delete status = %d, want 204", w.Code)
	}
}

func TestSaveGroupFilterValidation(t *testing.T) {
	router, _, _ := setupTestRouter(t)

	doJSON(t, router, http.MethodPost, "/groups", model.SearchGroup{
		SiteID: 1, Handle: "library", Name: "Library", PageSize: 10, SearchOrder: model.SearchOrderDefault,
	})

	// Neither field nor attribute set.
	w := doJSON(t, router, http.MethodPost, "/groups/1/filters", model.SearchGroupFilter{Handle: "body", Name: "Body"})
	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400 for target-less filter", w.Code)
	}
	var apiErr APIError
	if err := json.Unmarshal(w.Body.Bytes(), &apiErr); err != nil {
		t.Fatalf("invalid error body: %v", err)
	}
	if len(apiErr.Details) != 1 || apiErr.Details[0].Field != "field_id" {
		t.Errorf("error details = %+v, want one naming field_id", apiErr.Details)
	}

	fieldID := int64(10)
	w = doJSON(t, router, http.MethodPost, "/groups/1/filters", model.SearchGroupFilter{FieldID: &fieldID, Handle: "body", Name: "Body"})
	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want 200; body %s", w.Code, w.Body.String())
	}
}

func TestElementSavedHandler(t *testing.T) {
	router, st, scheduler := setupTestRouter(t)

	fieldID := int64(10)
	req := ElementSavedRequest{Values: []model.QueueValue{{FieldID: &fieldID, Value: "the quick brown fox"}}}
	w := doJSON(t, router, http.MethodPut, "/elements/1/sites/1", req)
	if w.Code != http.StatusAccepted {
		t.Fatalf("status = %d, want 202; body %s", w.Code, w.Body.String())
	}
	if scheduler.count() != 1 {
		t.Errorf("scheduler calls = %d, want 1", scheduler.count())
	}
	depth, err := st.QueueDepth(context.Background())
	if err != nil {
		t.Fatalf("failed to read queue depth: %v", err)
	}
	if depth != 1 {
		t.Errorf("queue depth = %d, want 1", depth)
	}

	// A newer save replaces the pending rows rather than piling on.
	w = doJSON(t, router, http.MethodPut, "/elements/1/sites/1", req)
	if w.Code != http.StatusAccepted {
		t.Fatalf("second save status = %d", w.Code)
	}
	depth, _ = st.QueueDepth(context.Background())
	if depth != 1 {
		t.Errorf("queue depth after second save = %d, want 1", depth)
	}
}

func TestElementSavedHandlerRejectsAmbiguousValue(t *testing.T) {
	router, _, _ := setupTestRouter(t)

	w := doJSON(t, router, http.MethodPut, "/elements/1/sites/1", ElementSavedRequest{
		Values: []model.QueueValue{{Value: "no target"}},
	})
	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}

func TestGetFilterOptionsHandlerBadID(t *testing.T) {
	router, _, _ := setupTestRouter(t)

	w := doJSON(t, router, http.MethodGet, "/filters/abc/options", nil)
	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}
