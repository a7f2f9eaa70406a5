package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/jwebster45206/dialogue-engine/pkg/dialogue"
	store "github.com/jwebster45206/dialogue-engine/pkg/storage"
)

const campGraph = `{"startNodeGuid":"a","nodes":[
	{"guid":"a","speaker":"Gale","line":"A word?","options":[{"text":"Go on.","nextNodeGuid":"b"},{"text":"Later.","nextNodeGuid":"gone"}]},
	{"guid":"b","speaker":"Gale","line":"It concerns the orb."}
]}`

func newTestRouter(t *testing.T) (http.Handler, *store.MockStorage) {
	t.Helper()
	storage := store.NewMockStorage()
	g, err := dialogue.Load([]byte(campGraph))
	if err != nil {
		t.Fatalf("Failed to load fixture: %v", err)
	}
	storage.AddGraph("camp.json", g)
	return NewRouter(storage, nil, testLogger()), storage
}

func serve(h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
	}
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func TestDialogueHandler_List(t *testing.T) {
	router, storage := newTestRouter(t)
	g, _ := dialogue.Load([]byte(`{"nodes":[{"guid":"x"}]}`))
	storage.AddGraph("alley.json", g)

	rr := serve(router, http.MethodGet, "/v1/dialogues", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", rr.Code, rr.Body.String())
	}

	var names []string
	if err := json.Unmarshal(rr.Body.Bytes(), &names); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if len(names) != 2 || names[0] != "alley.json" || names[1] != "camp.json" {
		t.Errorf("Unexpected names: %v", names)
	}
}

func TestDialogueHandler_Get(t *testing.T) {
	router, _ := newTestRouter(t)

	tests := []struct {
		name           string
		path           string
		expectedStatus int
		expectedBody   string
	}{
		{
			name:           "existing dialogue",
			path:           "/v1/dialogues/camp.json",
			expectedStatus: http.StatusOK,
			expectedBody:   `"speaker":"Gale"`,
		},
		{
			name:           "problems are reported",
			path:           "/v1/dialogues/camp.json",
			expectedStatus: http.StatusOK,
			expectedBody:   "Node a has option pointing to missing GUID gone",
		},
		{
			name:           "missing dialogue",
			path:           "/v1/dialogues/nowhere.json",
			expectedStatus: http.StatusNotFound,
			expectedBody:   "Dialogue not found",
		},
		{
			name:           "path traversal",
			path:           "/v1/dialogues/..%2Fsecrets.json",
			expectedStatus: http.StatusBadRequest,
			expectedBody:   "Invalid filename",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := serve(router, http.MethodGet, tt.path, "")
			if rr.Code != tt.expectedStatus {
				t.Errorf("Expected status %d, got %d: %s", tt.expectedStatus, rr.Code, rr.Body.String())
			}
			if !strings.Contains(rr.Body.String(), tt.expectedBody) {
				t.Errorf("Expected body to contain %q, got %s", tt.expectedBody, rr.Body.String())
			}
		})
	}
}

func TestDialogueHandler_Put(t *testing.T) {
	router, storage := newTestRouter(t)

	rr := serve(router, http.MethodPut, "/v1/dialogues/alley.yaml?ttl=10m", "nodes:\n  - guid: x\n    line: Psst.\n")
	if rr.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", rr.Code, rr.Body.String())
	}
	var resp DialogueResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if resp.Filename != "alley.yaml" || len(resp.Document.Nodes) != 1 {
		t.Errorf("Unexpected response: %+v", resp)
	}
	if resp.Problems == nil {
		t.Error("Expected an empty problems list, got null")
	}

	g, err := storage.GetGraph(t.Context(), "alley.yaml")
	if err != nil {
		t.Fatalf("Dialogue was not stored: %v", err)
	}
	if g.StartNode().Line != "Psst." {
		t.Errorf("Unexpected start line %q", g.StartNode().Line)
	}

	tests := []struct {
		name           string
		path           string
		body           string
		expectedStatus int
	}{
		{"malformed", "/v1/dialogues/bad.json", `{"nodes":`, http.StatusBadRequest},
		{"duplicate guid", "/v1/dialogues/bad.json", `{"nodes":[{"guid":"a"},{"guid":"a"}]}`, http.StatusBadRequest},
		{"bad ttl", "/v1/dialogues/ok.json?ttl=soon", campGraph, http.StatusBadRequest},
		{"negative ttl", "/v1/dialogues/ok.json?ttl=-1m", campGraph, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := serve(router, http.MethodPut, tt.path, tt.body)
			if rr.Code != tt.expectedStatus {
				t.Errorf("Expected status %d, got %d: %s", tt.expectedStatus, rr.Code, rr.Body.String())
			}
		})
	}
}

func TestDialogueHandler_PutReportsProblems(t *testing.T) {
	router, _ := newTestRouter(t)

	body := `{"startNodeGuid":"a","nodes":[{"guid":"a","line":"Hi","options":[{"text":"Go","nextNodeGuid":"nowhere"}]}]}`
	rr := serve(router, http.MethodPut, "/v1/dialogues/loose.json", body)
	if rr.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", rr.Code, rr.Body.String())
	}

	var resp DialogueResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if len(resp.Problems) == 0 {
		t.Fatal("Expected the dangling reference to be reported")
	}
	if !strings.Contains(strings.Join(resp.Problems, "\n"), "nowhere") {
		t.Errorf("Expected a problem naming 'nowhere', got %v", resp.Problems)
	}
}

func TestDialogueHandler_Delete(t *testing.T) {
	router, storage := newTestRouter(t)

	rr := serve(router, http.MethodDelete, "/v1/dialogues/camp.json", "")
	if rr.Code != http.StatusNoContent {
		t.Fatalf("Expected status 204, got %d", rr.Code)
	}
	if _, err := storage.GetGraph(t.Context(), "camp.json"); err == nil {
		t.Error("Expected dialogue to be deleted")
	}
}

func TestDialogueHandler_MethodNotAllowed(t *testing.T) {
	router, _ := newTestRouter(t)

	rr := serve(router, http.MethodPost, "/v1/dialogues/camp.json", campGraph)
	if rr.Code != http.StatusMethodNotAllowed {
		t.Errorf("Expected status 405, got %d", rr.Code)
	}
}
