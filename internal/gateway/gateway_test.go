package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/nongnai/nongnai/internal/action"
	"github.com/nongnai/nongnai/internal/analyzer"
	"github.com/nongnai/nongnai/internal/executor"
	"github.com/nongnai/nongnai/internal/intent"
	"github.com/nongnai/nongnai/internal/metrics"
	"github.com/nongnai/nongnai/internal/template"
)

func newTestServer(t *testing.T) (*Server, *httptest.Server) {
	t.Helper()

	templates := template.Seeded()
	mappings := intent.SeededMapper()
	resolver := intent.NewResolver(templates, mappings)

	exec := executor.New(executor.Config{Metrics: metrics.New()})
	srv := New(Config{
		Resolver:  resolver,
		Executor:  exec,
		Templates: templates,
		Mappings:  mappings,
		Metrics:   metrics.New(),
	})
	exec.SetNotifier(srv.Notify)

	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return srv, ts
}

func postJSON(t *testing.T, url string, body any) *http.Response {
	t.Helper()
	data, err := json.Marshal(body)
	if err != nil {
		t.Fatal(err)
	}
	resp, err := http.Post(url, "application/json", bytes.NewReader(data))
	if err != nil {
		t.Fatal(err)
	}
	return resp
}

func doJSON(t *testing.T, method, url string, body []byte) *http.Response {
	t.Helper()
	req, err := http.NewRequest(method, url, bytes.NewReader(body))
	if err != nil {
		t.Fatal(err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	return resp
}

func decodeBody(t *testing.T, resp *http.Response, v any) {
	t.Helper()
	defer resp.Body.Close()
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		t.Fatal(err)
	}
}

func TestBuildPlanEndpoint(t *testing.T) {
	_, ts := newTestServer(t)

	resp := postJSON(t, ts.URL+"/v1/plans", map[string]any{
		"intent":     "greet_user",
		"confidence": 0.93,
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}

	var plan action.Plan
	decodeBody(t, resp, &plan)
	if plan.Intent != "greet_user" {
		t.Errorf("intent = %q", plan.Intent)
	}
	if plan.Confidence != 0.93 {
		t.Errorf("confidence = %v", plan.Confidence)
	}
	if len(plan.SpeechActions) == 0 || len(plan.GestureActions) == 0 {
		t.Errorf("expected speech and gesture actions, got %d/%d",
			len(plan.SpeechActions), len(plan.GestureActions))
	}
}

func TestBuildPlanDefaultConfidence(t *testing.T) {
	_, ts := newTestServer(t)

	resp := postJSON(t, ts.URL+"/v1/plans", map[string]any{
		"intent": "greet_user",
	})
	var plan action.Plan
	decodeBody(t, resp, &plan)
	if plan.Confidence != 1.0 {
		t.Errorf("confidence = %v, want default 1.0", plan.Confidence)
	}
}

func TestBuildPlanExplicitZeroConfidence(t *testing.T) {
	_, ts := newTestServer(t)

	resp := postJSON(t, ts.URL+"/v1/plans", map[string]any{
		"intent":     "greet_user",
		"confidence": 0.0,
	})
	var plan action.Plan
	decodeBody(t, resp, &plan)
	if plan.Confidence != 0.0 {
		t.Errorf("confidence = %v, want explicit 0", plan.Confidence)
	}
}

func TestBuildPlanMissingIntent(t *testing.T) {
	_, ts := newTestServer(t)
	resp := postJSON(t, ts.URL+"/v1/plans", map[string]any{"confidence": 1.0})
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", resp.StatusCode)
	}
}

func TestExecuteEndpoint(t *testing.T) {
	_, ts := newTestServer(t)

	resp := postJSON(t, ts.URL+"/v1/executions", map[string]any{
		"intent":       "suggest_place",
		"parameters":   map[string]any{"place_name": "วัดอรุณ"},
		"confidence":   0.9,
		"execution_id": "exec-http-1",
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}

	var res struct {
		ID      string `json:"execution_id"`
		Status  string `json:"status"`
		Results struct {
			Speech []executor.SpeechOutput `json:"speech"`
		} `json:"results"`
	}
	decodeBody(t, resp, &res)
	if res.ID != "exec-http-1" {
		t.Errorf("execution_id = %q", res.ID)
	}
	if res.Status != "completed" {
		t.Errorf("status = %q", res.Status)
	}
	if len(res.Results.Speech) == 0 {
		t.Fatal("expected speech results")
	}
	if !strings.Contains(res.Results.Speech[0].Text, "วัดอรุณ") {
		t.Errorf("speech text = %q, want substituted place name", res.Results.Speech[0].Text)
	}
}

func TestRespondEndpoint(t *testing.T) {
	_, ts := newTestServer(t)

	resp := postJSON(t, ts.URL+"/v1/respond", map[string]any{
		"intent":     "greet_user",
		"parameters": map[string]any{},
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}

	var flat intent.FlatResponse
	decodeBody(t, resp, &flat)
	if flat.Intent != "greet_user" {
		t.Errorf("intent = %q", flat.Intent)
	}
	if flat.SpokenText == "" {
		t.Error("expected spoken text")
	}
	if flat.Animation != "wai_greeting" {
		t.Errorf("animation = %q, want wai_greeting", flat.Animation)
	}
}

type stubAnalyzer struct {
	analysis analyzer.Analysis
	calls    int
}

func (s *stubAnalyzer) Analyze(_ context.Context, _ string) (analyzer.Analysis, error) {
	s.calls++
	return s.analysis, nil
}

func TestBuildPlanWithAnalysis(t *testing.T) {
	templates := template.Seeded()
	mappings := intent.SeededMapper()
	stub := &stubAnalyzer{analysis: analyzer.Analysis{Emotion: "happy", Confidence: 0.88, Gesture: "excited_jump"}}
	srv := New(Config{
		Resolver:  intent.NewResolver(templates, mappings),
		Executor:  executor.New(executor.Config{}),
		Templates: templates,
		Mappings:  mappings,
		Analyzer:  stub,
	})
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	resp := postJSON(t, ts.URL+"/v1/plans", map[string]any{
		"intent":     "greet_user",
		"confidence": 1.0,
		"text":       "สวัสดีครับ",
	})
	var plan action.Plan
	decodeBody(t, resp, &plan)

	if stub.calls != 1 {
		t.Fatalf("analyzer calls = %d, want 1", stub.calls)
	}
	raw, ok := plan.Metadata["analysis"].(map[string]any)
	if !ok {
		t.Fatalf("metadata analysis = %T, want object", plan.Metadata["analysis"])
	}
	if raw["emotion"] != "happy" {
		t.Errorf("emotion = %v", raw["emotion"])
	}
}

func TestPutTemplateUnknownCategory(t *testing.T) {
	_, ts := newTestServer(t)
	resp := doJSON(t, http.MethodPut, ts.URL+"/v1/templates/hologram/x", []byte(`{}`))
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", resp.StatusCode)
	}
}

func TestPutTemplateThenList(t *testing.T) {
	_, ts := newTestServer(t)

	payload := []byte(`{"text": "ขอให้เดินทางปลอดภัยนะคะ", "style": "calm"}`)
	resp := doJSON(t, http.MethodPut, ts.URL+"/v1/templates/speech/travel_blessing", payload)
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}

	listResp, err := http.Get(ts.URL + "/v1/templates/speech")
	if err != nil {
		t.Fatal(err)
	}
	var list struct {
		Names []string `json:"names"`
	}
	decodeBody(t, listResp, &list)
	found := false
	for _, n := range list.Names {
		if n == "travel_blessing" {
			found = true
		}
	}
	if !found {
		t.Errorf("travel_blessing not in %v", list.Names)
	}
}

func TestPutIntentThenExecute(t *testing.T) {
	_, ts := newTestServer(t)

	payload := []byte(`{
		"speech_templates": ["confirm"],
		"gesture_templates": ["friendly_nod"],
		"execution_order": ["speech", "gesture"]
	}`)
	resp := doJSON(t, http.MethodPut, ts.URL+"/v1/intents/acknowledge", payload)
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}

	execResp := postJSON(t, ts.URL+"/v1/executions", map[string]any{
		"intent":     "acknowledge",
		"confidence": 1.0,
	})
	var res struct {
		Status string   `json:"status"`
		Errors []string `json:"errors"`
	}
	decodeBody(t, execResp, &res)
	if res.Status != "completed" || len(res.Errors) != 0 {
		t.Errorf("status = %q errors = %v", res.Status, res.Errors)
	}
}

func TestPutIntentBadChannel(t *testing.T) {
	_, ts := newTestServer(t)
	payload := []byte(`{"speech_templates": ["confirm"], "execution_order": ["hologram"]}`)
	resp := doJSON(t, http.MethodPut, ts.URL+"/v1/intents/bad", payload)
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", resp.StatusCode)
	}
}

func TestOutputsAccumulateAndClear(t *testing.T) {
	_, ts := newTestServer(t)

	postJSON(t, ts.URL+"/v1/executions", map[string]any{
		"intent": "greet_user", "confidence": 1.0,
	}).Body.Close()

	resp, err := http.Get(ts.URL + "/v1/outputs")
	if err != nil {
		t.Fatal(err)
	}
	var outs executor.AllOutputs
	decodeBody(t, resp, &outs)
	if len(outs.Speech) == 0 || len(outs.Gesture) == 0 {
		t.Fatalf("expected pending outputs, got %d speech %d gesture",
			len(outs.Speech), len(outs.Gesture))
	}

	del := doJSON(t, http.MethodDelete, ts.URL+"/v1/outputs", nil)
	del.Body.Close()
	if del.StatusCode != http.StatusNoContent {
		t.Fatalf("delete status = %d", del.StatusCode)
	}

	resp2, err := http.Get(ts.URL + "/v1/outputs")
	if err != nil {
		t.Fatal(err)
	}
	var outs2 executor.AllOutputs
	decodeBody(t, resp2, &outs2)
	if len(outs2.Speech) != 0 {
		t.Errorf("expected cleared outputs, got %d speech", len(outs2.Speech))
	}
}

func TestHistoryEndpoint(t *testing.T) {
	_, ts := newTestServer(t)

	for range 3 {
		postJSON(t, ts.URL+"/v1/executions", map[string]any{
			"intent": "greet_user", "confidence": 1.0,
		}).Body.Close()
	}

	resp, err := http.Get(ts.URL + "/v1/executions?limit=2")
	if err != nil {
		t.Fatal(err)
	}
	var history []json.RawMessage
	decodeBody(t, resp, &history)
	if len(history) != 2 {
		t.Errorf("history = %d entries, want 2", len(history))
	}
}

func TestHistoryBadLimit(t *testing.T) {
	_, ts := newTestServer(t)
	resp, err := http.Get(ts.URL + "/v1/executions?limit=zero")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", resp.StatusCode)
	}
}

func TestActiveNotFound(t *testing.T) {
	_, ts := newTestServer(t)
	resp, err := http.Get(ts.URL + "/v1/executions/nope")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", resp.StatusCode)
	}
}

func TestAnnouncementsWithoutScheduler(t *testing.T) {
	_, ts := newTestServer(t)

	resp, err := http.Get(ts.URL + "/v1/announcements")
	if err != nil {
		t.Fatal(err)
	}
	var list []json.RawMessage
	decodeBody(t, resp, &list)
	if len(list) != 0 {
		t.Errorf("expected empty announcements, got %d", len(list))
	}

	run := postJSON(t, ts.URL+"/v1/announcements/x/run", nil)
	defer run.Body.Close()
	if run.StatusCode != http.StatusNotFound {
		t.Fatalf("run status = %d, want 404", run.StatusCode)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	_, ts := newTestServer(t)
	resp, err := http.Get(ts.URL + "/metrics")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
}

func TestStreamReceivesExecutions(t *testing.T) {
	_, ts := newTestServer(t)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/v1/stream"
	conn, _, err := websocket.Dial(ctx, wsURL, nil)
	if err != nil {
		t.Fatal(err)
	}
	defer conn.Close(websocket.StatusNormalClosure, "")

	postJSON(t, ts.URL+"/v1/executions", map[string]any{
		"intent": "greet_user", "confidence": 1.0, "execution_id": "exec-ws-1",
	}).Body.Close()

	var got struct {
		ID     string `json:"execution_id"`
		Status string `json:"status"`
	}
	if err := wsjson.Read(ctx, conn, &got); err != nil {
		t.Fatal(err)
	}
	if got.ID != "exec-ws-1" {
		t.Errorf("execution_id = %q", got.ID)
	}
	if got.Status != "completed" {
		t.Errorf("status = %q", got.Status)
	}
}
