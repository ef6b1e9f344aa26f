package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/matzehuels/viewsplit/pkg/cache"
	splitio "github.com/matzehuels/viewsplit/pkg/io"
	"github.com/matzehuels/viewsplit/pkg/pipeline"
)

const testDataset = `{
  "timepoints": [0],
  "entities": [{"id": 0, "size": [1000, 300], "tile": {"id": 3}}],
  "views": [{"timepoint": 0, "entity": 0, "transforms": [{"name": "calibration", "matrix": [1,0,0, 0,1,0]}]}],
  "pyramids": [{"entity": 0, "factors": [[1, 1], [2, 2], [4, 4]]}]
}`

const testOptions = `{"target_size": [600, 300], "overlap": [100, 0]}`

func newTestServer(t *testing.T, c cache.Cache) (*Server, *httptest.Server) {
	t.Helper()
	s := NewServer(pipeline.NewRunner(c, nil, nil), nil)
	ts := httptest.NewServer(s.Handler())
	t.Cleanup(ts.Close)
	return s, ts
}

func post(t *testing.T, url, body string) *http.Response {
	t.Helper()
	resp, err := http.Post(url, "application/json", strings.NewReader(body))
	if err != nil {
		t.Fatalf("POST %s: %v", url, err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func get(t *testing.T, url string) *http.Response {
	t.Helper()
	resp, err := http.Get(url)
	if err != nil {
		t.Fatalf("GET %s: %v", url, err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decodeBody(t *testing.T, resp *http.Response, v any) {
	t.Helper()
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		t.Fatalf("decode response: %v", err)
	}
}

func splitBody(dataset, options string) string {
	return `{"dataset": ` + dataset + `, "options": ` + options + `}`
}

func TestHealth(t *testing.T) {
	_, ts := newTestServer(t, nil)

	resp := get(t, ts.URL+"/healthz")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
}

func TestSplitAndFetch(t *testing.T) {
	_, ts := newTestServer(t, nil)

	resp := post(t, ts.URL+"/v1/split", splitBody(testDataset, testOptions))
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("status = %d, want 201", resp.StatusCode)
	}
	var run Run
	decodeBody(t, resp, &run)
	if run.ID == "" || run.Status != RunStatusCompleted {
		t.Fatalf("run = %+v", run)
	}
	if run.Stats.Tiles != 2 {
		t.Errorf("Stats.Tiles = %d, want 2", run.Stats.Tiles)
	}
	if got := resp.Header.Get("Location"); got != "/v1/runs/"+run.ID {
		t.Errorf("Location = %q", got)
	}

	resp = get(t, ts.URL+"/v1/runs/"+run.ID)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("GET run status = %d, want 200", resp.StatusCode)
	}
	var fetched Run
	decodeBody(t, resp, &fetched)
	if fetched.ID != run.ID {
		t.Errorf("fetched run %s, want %s", fetched.ID, run.ID)
	}

	resp = get(t, ts.URL+"/v1/runs/"+run.ID+"/result")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("GET result status = %d, want 200", resp.StatusCode)
	}
	res, err := splitio.ReadResult(resp.Body)
	if err != nil {
		t.Fatalf("ReadResult() error = %v", err)
	}
	if res.Map.Len() != 2 || res.MaxSpread != 2 {
		t.Errorf("result has %d mappings, spread %d", res.Map.Len(), res.MaxSpread)
	}
}

func TestGraph(t *testing.T) {
	s, ts := newTestServer(t, nil)

	resp := post(t, ts.URL+"/v1/split", splitBody(testDataset, testOptions))
	var run Run
	decodeBody(t, resp, &run)

	resp = get(t, ts.URL+"/v1/runs/"+run.ID+"/graph")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	var buf bytes.Buffer
	buf.ReadFrom(resp.Body)
	if !strings.HasPrefix(buf.String(), "digraph") {
		t.Errorf("body = %.40q, want DOT", buf.String())
	}

	resp = get(t, ts.URL+"/v1/runs/"+run.ID+"/graph?format=png")
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("png status = %d, want 400", resp.StatusCode)
	}
	if s.Runs().Len() != 1 {
		t.Errorf("Runs().Len() = %d, want 1", s.Runs().Len())
	}
}

func TestSplitErrors(t *testing.T) {
	_, ts := newTestServer(t, nil)

	fractional := strings.Replace(testDataset, "[4, 4]", "[4, 2.5]", 1)

	tests := []struct {
		name   string
		body   string
		status int
		code   string
	}{
		{"malformed", `{"dataset": `, http.StatusBadRequest, "INVALID_FORMAT"},
		{"unknown field", `{"bogus": 1}`, http.StatusBadRequest, "INVALID_FORMAT"},
		{"no dataset", `{"options": ` + testOptions + `}`, http.StatusBadRequest, "INVALID_INPUT"},
		{"unaligned", splitBody(testDataset, `{"target_size": [598, 300], "overlap": [100, 0]}`), http.StatusBadRequest, "ALIGNMENT"},
		{"overlap", splitBody(testDataset, `{"target_size": [600, 300], "overlap": [600, 0]}`), http.StatusBadRequest, "OVERLAP_EXCEEDS_SIZE"},
		{"fractional", splitBody(fractional, testOptions), http.StatusUnprocessableEntity, "FRACTIONAL_DOWNSAMPLING"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := post(t, ts.URL+"/v1/split", tt.body)
			if resp.StatusCode != tt.status {
				t.Fatalf("status = %d, want %d", resp.StatusCode, tt.status)
			}
			var body ErrorResponse
			decodeBody(t, resp, &body)
			if body.Code != tt.code {
				t.Errorf("code = %q, want %q", body.Code, tt.code)
			}
		})
	}
}

func TestSplitDefaults(t *testing.T) {
	s, ts := newTestServer(t, nil)
	s.Defaults = pipeline.Options{TargetSize: []int64{600, 300}, Overlap: []int64{100, 0}}

	resp := post(t, ts.URL+"/v1/split", `{"dataset": `+testDataset+`}`)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("status = %d, want 201", resp.StatusCode)
	}
	var run Run
	decodeBody(t, resp, &run)
	if run.Stats.Tiles != 2 {
		t.Errorf("default tiles = %d, want 2", run.Stats.Tiles)
	}

	// Options sent with the request replace the defaults as a whole.
	resp = post(t, ts.URL+"/v1/split", splitBody(testDataset, `{"target_size": [600, 300], "overlap": [400, 0]}`))
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("status = %d, want 201", resp.StatusCode)
	}
	decodeBody(t, resp, &run)
	if run.Stats.Tiles != 3 {
		t.Errorf("request tiles = %d, want 3", run.Stats.Tiles)
	}
}

func TestPlan(t *testing.T) {
	_, ts := newTestServer(t, nil)

	resp := post(t, ts.URL+"/v1/plan", `{"size": [1000, 300], "options": `+testOptions+`}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	var plan struct {
		TileCount int `json:"tile_count"`
		Axes      []struct {
			TileSize int64 `json:"tile_size"`
		} `json:"axes"`
	}
	decodeBody(t, resp, &plan)
	if plan.TileCount != 2 || len(plan.Axes) != 2 {
		t.Errorf("plan = %+v, want 2 tiles over 2 axes", plan)
	}

	resp = post(t, ts.URL+"/v1/plan", `{"size": [1000], "options": `+testOptions+`}`)
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("wrong dimensions status = %d, want 400", resp.StatusCode)
	}
}

func TestRunNotFound(t *testing.T) {
	_, ts := newTestServer(t, nil)

	for _, path := range []string{"/v1/runs/nope", "/v1/runs/nope/result", "/v1/runs/nope/graph"} {
		resp := get(t, ts.URL+path)
		if resp.StatusCode != http.StatusNotFound {
			t.Errorf("GET %s status = %d, want 404", path, resp.StatusCode)
		}
	}
}

func TestRunsSharedThroughCache(t *testing.T) {
	c, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	_, first := newTestServer(t, c)
	_, second := newTestServer(t, c)

	resp := post(t, first.URL+"/v1/split", splitBody(testDataset, testOptions))
	var run Run
	decodeBody(t, resp, &run)

	resp = get(t, second.URL+"/v1/runs/"+run.ID+"/result")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("second server status = %d, want 200", resp.StatusCode)
	}
}
