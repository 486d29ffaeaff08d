// Package pinata pins content to IPFS through Pinata, giving the pipeline
// its content-addressed store. Locators are ipfs:// URIs derived from the
// pinned content's CID.
package pinata

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"time"

	"go.uber.org/zap"

	"brainrotify/types"
)

const defaultBaseURL = "https://api.pinata.cloud/pinning"

// Client pins files and JSON documents to IPFS via Pinata.
type Client struct {
	apiKey     string
	secretKey  string
	baseURL    string
	httpClient *http.Client
	log        *zap.Logger
}

// New builds a client; credentials come from PINATA_API_KEY and
// PINATA_SECRET_API_KEY.
func New(log *zap.Logger) (*Client, error) {
	apiKey := os.Getenv("PINATA_API_KEY")
	secretKey := os.Getenv("PINATA_SECRET_API_KEY")
	if apiKey == "" || secretKey == "" {
		return nil, fmt.Errorf("PINATA_API_KEY or PINATA_SECRET_API_KEY not set")
	}
	return &Client{
		apiKey:     apiKey,
		secretKey:  secretKey,
		baseURL:    defaultBaseURL,
		httpClient: &http.Client{Timeout: 120 * time.Second},
		log:        log,
	}, nil
}

type pinResponse struct {
	IpfsHash string `json:"IpfsHash"`
	Error    string `json:"error"`
}

// Pin uploads data under the given name and returns its ipfs:// URI.
// JSON documents go through the JSON pinning endpoint so Pinata stores them
// as canonical JSON; everything else is pinned as a file.
func (c *Client) Pin(ctx context.Context, name string, data []byte) (string, error) {
	if json.Valid(data) {
		return c.pinJSON(ctx, name, data)
	}
	return c.pinFile(ctx, name, data)
}

func (c *Client) pinFile(ctx context.Context, name string, data []byte) (string, error) {
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("file", name)
	if err != nil {
		return "", fmt.Errorf("build multipart: %w", err)
	}
	if _, err := part.Write(data); err != nil {
		return "", fmt.Errorf("build multipart: %w", err)
	}
	if err := writer.Close(); err != nil {
		return "", fmt.Errorf("build multipart: %w", err)
	}

	c.log.Debug("pinning file", zap.String("name", name), zap.Int("bytes", len(data)))
	return c.post(ctx, "/pinFileToIPFS", writer.FormDataContentType(), body.Bytes())
}

func (c *Client) pinJSON(ctx context.Context, name string, doc []byte) (string, error) {
	wrapped, err := json.Marshal(map[string]any{
		"pinataMetadata": map[string]any{"name": name},
		"pinataContent":  json.RawMessage(doc),
	})
	if err != nil {
		return "", fmt.Errorf("wrap pin json: %w", err)
	}
	c.log.Debug("pinning json", zap.String("name", name), zap.Int("bytes", len(doc)))
	return c.post(ctx, "/pinJSONToIPFS", "application/json", wrapped)
}

func (c *Client) post(ctx context.Context, path, contentType string, body []byte) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("pinata_api_key", c.apiKey)
	req.Header.Set("pinata_secret_api_key", c.secretKey)
	req.Header.Set("Content-Type", contentType)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", types.Transient(fmt.Errorf("pinata %s: %w", path, err))
	}
	defer resp.Body.Close()

	respBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", types.Transient(fmt.Errorf("pinata %s read body: %w", path, err))
	}
	if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
		return "", types.Transient(fmt.Errorf("pinata %s: HTTP %d", path, resp.StatusCode))
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("pinata %s: HTTP %d: %s", path, resp.StatusCode, string(respBytes))
	}

	var pin pinResponse
	if err := json.Unmarshal(respBytes, &pin); err != nil {
		return "", fmt.Errorf("parse pinata response: %w", err)
	}
	if pin.IpfsHash == "" {
		return "", fmt.Errorf("pinata %s: no IpfsHash in response", path)
	}
	return "ipfs://" + pin.IpfsHash, nil
}
