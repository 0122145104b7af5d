package backend

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"net/http/httptest"
	"testing"
)

func newBackendStub(t *testing.T) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Prompt string `json:"prompt"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Prompt == "" {
			http.Error(w, "bad request", http.StatusBadRequest)
			return
		}

		switch r.URL.Path {
		case "/generate/text":
			json.NewEncoder(w).Encode(map[string]string{"text": "a short text about " + req.Prompt})
		case "/generate/image":
			json.NewEncoder(w).Encode(map[string]string{"data_url": encodePNGDataURL(t)})
		case "/generate/script":
			json.NewEncoder(w).Encode(map[string]string{"script": "scene one. scene two."})
		default:
			http.NotFound(w, r)
		}
	}))
}

func encodePNGDataURL(t *testing.T) string {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	img.SetRGBA(1, 1, color.RGBA{R: 255, A: 255})

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("png encode: %v", err)
	}
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(buf.Bytes())
}

func TestGenerateCalls(t *testing.T) {
	srv := newBackendStub(t)
	defer srv.Close()

	client := NewClient(srv.URL)
	ctx := context.Background()

	text, err := client.GenerateText(ctx, "space exploration")
	if err != nil {
		t.Fatalf("GenerateText failed: %v", err)
	}
	if text != "a short text about space exploration" {
		t.Errorf("unexpected text %q", text)
	}

	script, err := client.GenerateScript(ctx, "space exploration")
	if err != nil {
		t.Fatalf("GenerateScript failed: %v", err)
	}
	if script == "" {
		t.Error("expected a non-empty script")
	}

	dataURL, err := client.GenerateImage(ctx, "space exploration")
	if err != nil {
		t.Fatalf("GenerateImage failed: %v", err)
	}

	img, err := DecodeDataURL(dataURL)
	if err != nil {
		t.Fatalf("DecodeDataURL failed: %v", err)
	}
	if img.Bounds().Dx() != 4 || img.Bounds().Dy() != 4 {
		t.Errorf("unexpected image bounds %v", img.Bounds())
	}
}

func TestBackendErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "overloaded", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	client := NewClient(srv.URL)
	if _, err := client.GenerateText(context.Background(), "p"); err == nil {
		t.Error("expected error on non-200 status")
	}
}

func TestDecodeDataURLRejectsGarbage(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"not a data url", "https://example.com/cat.png"},
		{"no separator", "data:image/png;base64"},
		{"wrong encoding", "data:image/png;hex,deadbeef"},
		{"bad payload", "data:image/png;base64,!!!"},
		{"not an image", "data:image/png;base64," + base64.StdEncoding.EncodeToString([]byte("hello"))},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := DecodeDataURL(tt.input); err == nil {
				t.Errorf("expected error for %q", tt.input)
			}
		})
	}
}
