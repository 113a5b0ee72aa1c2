package health

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/vietddude/ecoscout/internal/core/domain"
	"github.com/vietddude/ecoscout/internal/infra/llm/provider"
)

// =============================================================================
// Stubs
// =============================================================================

type stubBackend struct {
	id     domain.BackendID
	status provider.ProviderStatus
	creds  int
}

func (s *stubBackend) ID() domain.BackendID { return s.id }
func (s *stubBackend) Classify(context.Context, domain.ClassificationRequest) (domain.Classification, error) {
	return domain.Classification{}, errors.New("not used")
}
func (s *stubBackend) Status() provider.Status {
	return provider.Status{
		Backend:     s.id,
		Credentials: s.creds,
		Monitor:     provider.MonitorStats{Status: s.status},
	}
}

type stubSource []provider.Backend

func (s stubSource) Backends() []provider.Backend { return s }

type stubRotation struct{}

func (stubRotation) Position() (domain.BackendID, int) { return domain.BackendGemini, 4 }

type stubDB struct{ err error }

func (s stubDB) Health(context.Context) error { return s.err }

// =============================================================================
// Tests
// =============================================================================

func TestMonitor_CheckHealth(t *testing.T) {
	tests := []struct {
		name     string
		statuses []provider.ProviderStatus
		dbErr    error
		want     SystemStatus
	}{
		{"all healthy", []provider.ProviderStatus{provider.StatusHealthy, provider.StatusHealthy}, nil, StatusHealthy},
		{"one throttled", []provider.ProviderStatus{provider.StatusHealthy, provider.StatusThrottled}, nil, StatusDegraded},
		{"one exhausted", []provider.ProviderStatus{provider.StatusExhausted, provider.StatusHealthy}, nil, StatusDegraded},
		{"all exhausted", []provider.ProviderStatus{provider.StatusExhausted, provider.StatusExhausted}, nil, StatusCritical},
		{"database down", []provider.ProviderStatus{provider.StatusHealthy}, errors.New("down"), StatusCritical},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var src stubSource
			for i, st := range tt.statuses {
				src = append(src, &stubBackend{id: domain.KnownBackends[i], status: st, creds: 1})
			}
			m := NewMonitor(src, stubRotation{}, stubDB{err: tt.dbErr})

			report := m.CheckHealth(context.Background())
			if report.SystemStatus != tt.want {
				t.Errorf("expected %s, got %s", tt.want, report.SystemStatus)
			}
			if len(report.Backends) != len(tt.statuses) {
				t.Errorf("expected %d backends, got %d", len(tt.statuses), len(report.Backends))
			}
			if report.Rotation.Primary != "gemini" || report.Rotation.Served != 4 {
				t.Errorf("unexpected rotation %+v", report.Rotation)
			}
		})
	}
}

func TestServer_Health(t *testing.T) {
	src := stubSource{&stubBackend{id: domain.BackendGroq, status: provider.StatusExhausted}}
	s := NewServer(NewMonitor(src, nil, nil), 0)

	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("expected 503, got %d", rec.Code)
	}
	var body map[string]string
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body["status"] != string(StatusCritical) {
		t.Errorf("unexpected body %v", body)
	}
}

func TestServer_DetailedAndMetrics(t *testing.T) {
	src := stubSource{&stubBackend{id: domain.BackendGroq, status: provider.StatusHealthy, creds: 3}}
	s := NewServer(NewMonitor(src, stubRotation{}, nil), 0)

	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health/detailed", nil))

	var report HealthReport
	if err := json.NewDecoder(rec.Body).Decode(&report); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if report.Backends["groq"].Credentials != 3 {
		t.Errorf("unexpected report %+v", report)
	}

	rec = httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusOK {
		t.Errorf("expected metrics endpoint, got %d", rec.Code)
	}
}
