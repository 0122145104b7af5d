package backend

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"net/http"
	"strings"
	"time"
)

// Client talks to the generation backend. The three generate calls are
// independent and keyed by the same prompt; callers typically fan them out
// concurrently. Backend failures never abort a running capture session.
type Client struct {
	baseURL string
	httpc   *http.Client
}

// NewClient creates a backend client for the given base URL.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpc:   &http.Client{Timeout: 120 * time.Second},
	}
}

type generateRequest struct {
	Prompt string `json:"prompt"`
}

// GenerateText asks the backend for the short text artifact.
func (c *Client) GenerateText(ctx context.Context, prompt string) (string, error) {
	var resp struct {
		Text string `json:"text"`
	}
	if err := c.post(ctx, "/generate/text", prompt, &resp); err != nil {
		return "", err
	}
	return resp.Text, nil
}

// GenerateImage asks the backend for the source image as a data URL.
func (c *Client) GenerateImage(ctx context.Context, prompt string) (string, error) {
	var resp struct {
		DataURL string `json:"data_url"`
	}
	if err := c.post(ctx, "/generate/image", prompt, &resp); err != nil {
		return "", err
	}
	return resp.DataURL, nil
}

// GenerateScript asks the backend for the long-form narration script.
func (c *Client) GenerateScript(ctx context.Context, prompt string) (string, error) {
	var resp struct {
		Script string `json:"script"`
	}
	if err := c.post(ctx, "/generate/script", prompt, &resp); err != nil {
		return "", err
	}
	return resp.Script, nil
}

func (c *Client) post(ctx context.Context, path, prompt string, out any) error {
	body, err := json.Marshal(generateRequest{Prompt: prompt})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpc.Do(req)
	if err != nil {
		return fmt.Errorf("backend request %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("backend request %s: unexpected status %s", path, resp.Status)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("backend response %s: %w", path, err)
	}
	return nil
}

// DecodeDataURL turns an embedded base64 image payload
// (data:image/png;base64,...) into a decoded bitmap.
func DecodeDataURL(dataURL string) (image.Image, error) {
	const scheme = "data:"
	if !strings.HasPrefix(dataURL, scheme) {
		return nil, fmt.Errorf("not a data URL")
	}

	comma := strings.IndexByte(dataURL, ',')
	if comma < 0 {
		return nil, fmt.Errorf("malformed data URL: no payload separator")
	}

	meta := dataURL[len(scheme):comma]
	if !strings.HasSuffix(meta, ";base64") {
		return nil, fmt.Errorf("unsupported data URL encoding %q", meta)
	}

	raw, err := base64.StdEncoding.DecodeString(dataURL[comma+1:])
	if err != nil {
		return nil, fmt.Errorf("data URL payload: %w", err)
	}

	img, _, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("data URL image: %w", err)
	}
	return img, nil
}
