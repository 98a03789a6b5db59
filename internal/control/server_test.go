package control

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/nvezhov/eyeguardd/internal/actions"
	"github.com/nvezhov/eyeguardd/internal/stats"
)

type fakeReminder struct{}

func (fakeReminder) Status() string        { return "idle" }
func (fakeReminder) RestPeriodsToday() int { return 2 }

type fakeStats struct {
	summaries []stats.DailySummary
}

func (f *fakeStats) Recent(n int) ([]stats.DailySummary, error) {
	if n < len(f.summaries) {
		return f.summaries[:n], nil
	}
	return f.summaries, nil
}

type fakeProfiles struct {
	applied []string
}

func (f *fakeProfiles) Apply(name string) error {
	f.applied = append(f.applied, name)
	return nil
}

func (f *fakeProfiles) Names() []string { return []string{"Default", "Night Mode"} }

func newTestServer(t *testing.T) (*httptest.Server, *fakeProfiles) {
	t.Helper()

	profiles := &fakeProfiles{}
	registry := actions.NewRegistry()
	if err := actions.RegisterBuiltins(registry, actions.Deps{Profiles: profiles}); err != nil {
		t.Fatalf("register builtins: %v", err)
	}

	statsSrc := &fakeStats{summaries: []stats.DailySummary{
		{Date: "2026-08-31", UsageSeconds: 3600, RestPeriods: 4},
		{Date: "2026-08-30", UsageSeconds: 1800, RestPeriods: 2},
	}}

	srv := NewServer("127.0.0.1", 0, registry, fakeReminder{}, statsSrc, profiles)
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return ts, profiles
}

func getJSON(t *testing.T, url string) (int, map[string]any) {
	t.Helper()
	resp, err := http.Get(url)
	if err != nil {
		t.Fatalf("GET %s: %v", url, err)
	}
	defer resp.Body.Close()

	var body map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return resp.StatusCode, body
}

func TestHealth(t *testing.T) {
	ts, _ := newTestServer(t)
	code, body := getJSON(t, ts.URL+"/health")
	if code != http.StatusOK || body["status"] != "ok" {
		t.Errorf("health = %d %v", code, body)
	}
}

func TestStatus(t *testing.T) {
	ts, _ := newTestServer(t)
	code, body := getJSON(t, ts.URL+"/status")
	if code != http.StatusOK {
		t.Fatalf("status code = %d", code)
	}
	if body["reminder"] != "idle" {
		t.Errorf("reminder = %v", body["reminder"])
	}
	if body["rest_periods_today"] != float64(2) {
		t.Errorf("rest_periods_today = %v", body["rest_periods_today"])
	}
	profiles, ok := body["profiles"].([]any)
	if !ok || len(profiles) != 2 {
		t.Errorf("profiles = %v", body["profiles"])
	}
}

func TestStats(t *testing.T) {
	ts, _ := newTestServer(t)

	code, body := getJSON(t, ts.URL+"/stats?days=1")
	if code != http.StatusOK {
		t.Fatalf("stats code = %d", code)
	}
	days, ok := body["days"].([]any)
	if !ok || len(days) != 1 {
		t.Fatalf("days = %v", body["days"])
	}

	resp, err := http.Get(ts.URL + "/stats?days=zero")
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("invalid days code = %d", resp.StatusCode)
	}
}

func TestInvokeAction(t *testing.T) {
	ts, profiles := newTestServer(t)

	resp, err := http.Post(ts.URL+"/actions/apply_profile", "application/json",
		strings.NewReader(`{"name":"Night Mode"}`))
	if err != nil {
		t.Fatalf("POST: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("action code = %d", resp.StatusCode)
	}
	if len(profiles.applied) != 1 || profiles.applied[0] != "Night Mode" {
		t.Errorf("applied = %v", profiles.applied)
	}
}

func TestInvokeUnknownAction(t *testing.T) {
	ts, _ := newTestServer(t)

	resp, err := http.Post(ts.URL+"/actions/reboot", "application/json", nil)
	if err != nil {
		t.Fatalf("POST: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("unknown action code = %d", resp.StatusCode)
	}
}

func TestInvokeActionFailure(t *testing.T) {
	ts, _ := newTestServer(t)

	// Missing required name argument.
	resp, err := http.Post(ts.URL+"/actions/apply_profile", "application/json",
		strings.NewReader(`{}`))
	if err != nil {
		t.Fatalf("POST: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Errorf("failed action code = %d", resp.StatusCode)
	}
}

func TestActionRequiresPost(t *testing.T) {
	ts, _ := newTestServer(t)

	resp, err := http.Get(ts.URL + "/actions/apply_profile")
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusMethodNotAllowed {
		t.Errorf("GET action code = %d", resp.StatusCode)
	}
}

func TestRunShutdown(t *testing.T) {
	registry := actions.NewRegistry()
	srv := NewServer("127.0.0.1", 0, registry, nil, nil, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Run(ctx, time.Second) }()

	cancel()
	if err := <-done; err != nil {
		t.Fatalf("run returned error: %v", err)
	}
}
