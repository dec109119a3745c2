package server

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"image/png"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/roman-kulish/spectrum-analyzer/internal/render"
)

func post(t *testing.T, h http.Handler, method, body string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(method, "/options", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestOptions_ReturnsPNG(t *testing.T) {
	body := `{
		"minFrequency": 0,
		"maxFrequency": 1000,
		"minAmplitude": 0,
		"maxAmplitude": 1000,
		"numBands": 100,
		"visibleBands": [200, 400, 550, 800],
		"noiseFloor": 200,
		"transmitStrength": 800
	}`

	rec := post(t, New().Handler(), http.MethodPost, body)
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Expected JSON content type, got %q", ct)
	}

	var resp ImageResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if resp.Image == "" {
		t.Fatal("Expected a non-empty image")
	}

	raw, err := base64.StdEncoding.DecodeString(resp.Image)
	if err != nil {
		t.Fatalf("Failed to decode base64: %v", err)
	}
	img, err := png.Decode(bytes.NewReader(raw))
	if err != nil {
		t.Fatalf("Failed to decode PNG: %v", err)
	}
	if img.Bounds().Dx() == 0 || img.Bounds().Dy() == 0 {
		t.Errorf("Expected a non-empty image, got %v", img.Bounds())
	}
}

func TestOptions_ChartSize(t *testing.T) {
	h := New(WithChartConfig(render.ChartConfig{Width: 300, Height: 200})).Handler()

	rec := post(t, h, http.MethodPost, `{"numBands": 30}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp ImageResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	raw, _ := base64.StdEncoding.DecodeString(resp.Image)
	cfg, err := png.DecodeConfig(bytes.NewReader(raw))
	if err != nil {
		t.Fatalf("Failed to decode PNG: %v", err)
	}
	if cfg.Width != 300 || cfg.Height != 200 {
		t.Errorf("Expected 300x200 image, got %dx%d", cfg.Width, cfg.Height)
	}
}

func TestOptions_Errors(t *testing.T) {
	tests := []struct {
		name   string
		method string
		body   string
		status int
	}{
		{"empty body uses defaults", http.MethodPost, "", http.StatusOK},
		{"partial body uses defaults", http.MethodPost, `{"transmitStrength": 10}`, http.StatusOK},
		{"malformed JSON", http.MethodPost, `{"numBands":`, http.StatusBadRequest},
		{"wrong type", http.MethodPost, `{"numBands": "many"}`, http.StatusBadRequest},
		{"invalid options", http.MethodPost, `{"numBands": 2}`, http.StatusBadRequest},
		{"no visible bands", http.MethodPost, `{"visibleBands": []}`, http.StatusBadRequest},
		{"wrong method", http.MethodGet, "", http.StatusMethodNotAllowed},
	}

	h := New().Handler()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := post(t, h, tt.method, tt.body)
			if rec.Code != tt.status {
				t.Fatalf("Expected status %d, got %d: %s", tt.status, rec.Code, rec.Body.String())
			}
			if tt.status == http.StatusOK {
				return
			}

			var resp ErrorResponse
			if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
				t.Fatalf("Failed to decode error response: %v", err)
			}
			if resp.Error == "" {
				t.Errorf("Expected an error message")
			}
		})
	}
}

func TestServe_Shutdown(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("Failed to listen: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() {
		errCh <- New().Serve(ctx, ln)
	}()

	resp, err := http.Post("http://"+ln.Addr().String()+"/options", "application/json", strings.NewReader("{}"))
	if err != nil {
		t.Fatalf("Failed to post: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("Expected status 200, got %d", resp.StatusCode)
	}

	cancel()
	select {
	case err = <-errCh:
		if err != nil {
			t.Errorf("Expected clean shutdown, got %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Expected server to stop on context cancel")
	}
}
