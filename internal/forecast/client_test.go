package forecast

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"

	"github.com/restwise/insomnia-coach/internal/engine"
)

func TestNewClient_Disabled(t *testing.T) {
	c := NewClient(Config{})
	if c.IsEnabled() {
		t.Error("expected client to be disabled")
	}

	pred, err := c.Predict(context.Background(), uuid.New())
	if err != nil {
		t.Fatalf("disabled client returned error: %v", err)
	}
	if pred != nil {
		t.Errorf("disabled client returned prediction: %+v", pred)
	}
}

func TestPredict(t *testing.T) {
	userID := uuid.New()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if want := "/v1/predictions/" + userID.String(); r.URL.Path != want {
			t.Errorf("path = %s, want %s", r.URL.Path, want)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Errorf("Authorization = %q", got)
		}
		json.NewEncoder(w).Encode(map[string]any{
			"point_estimate": 88.5,
			"lower_95":       82.0,
			"upper_95":       94.0,
			"trend":          "improving",
			"confidence":     0.75,
		})
	}))
	defer srv.Close()

	c := NewClient(Config{BaseURL: srv.URL, APIKey: "test-key"})
	pred, err := c.Predict(context.Background(), userID)
	if err != nil {
		t.Fatalf("Predict: %v", err)
	}
	if pred == nil {
		t.Fatal("Predict returned nil for a valid response")
	}
	if pred.PointEstimate != 88.5 || pred.Trend != engine.TrendImproving || pred.Confidence != 0.75 {
		t.Errorf("prediction mismatch: %+v", pred)
	}
}

func TestPredict_DegradedResponses(t *testing.T) {
	tests := []struct {
		name   string
		status int
	}{
		{name: "no prediction yet", status: http.StatusNotFound},
		{name: "service error", status: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
			}))
			defer srv.Close()

			c := NewClient(Config{BaseURL: srv.URL})
			pred, err := c.Predict(context.Background(), uuid.New())
			if err != nil {
				t.Fatalf("degraded signal must not be an error, got %v", err)
			}
			if pred != nil {
				t.Errorf("expected nil prediction, got %+v", pred)
			}
		})
	}
}

func TestPredict_UnreachableService(t *testing.T) {
	c := NewClient(Config{BaseURL: "http://127.0.0.1:1"})
	pred, err := c.Predict(context.Background(), uuid.New())
	if err != nil {
		t.Fatalf("unreachable service must degrade, not error: %v", err)
	}
	if pred != nil {
		t.Errorf("expected nil prediction, got %+v", pred)
	}
}
