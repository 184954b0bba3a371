package imagekit

import (
	"context"
	"crypto/hmac"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	pkgerrors "github.com/vastralane/storefront-backend/pkg/errors"
)

const (
	defaultUploadBaseURL = "https://upload.imagekit.io"
	defaultAPIBaseURL    = "https://api.imagekit.io"

	responseBodyReadLimit int64 = 1024
)

var errPrivateKeyRequired = errors.New("imagekit private key is required")

// Client wraps the ImageKit media APIs used for product image hosting.
type Client struct {
	httpClient *http.Client
	uploadURL  string
	apiURL     string
	privateKey string
	publicKey  string
}

// Option configures optional client behavior.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithUploadBaseURL overrides the upload API base URL.
func WithUploadBaseURL(baseURL string) Option {
	return func(c *Client) {
		trimmed := strings.TrimSpace(baseURL)
		if trimmed != "" {
			c.uploadURL = trimmed
		}
	}
}

// WithAPIBaseURL overrides the management API base URL.
func WithAPIBaseURL(baseURL string) Option {
	return func(c *Client) {
		trimmed := strings.TrimSpace(baseURL)
		if trimmed != "" {
			c.apiURL = trimmed
		}
	}
}

// NewClient builds the ImageKit client given the key pair.
func NewClient(privateKey, publicKey string, opts ...Option) (*Client, error) {
	trimmedPrivate := strings.TrimSpace(privateKey)
	if trimmedPrivate == "" {
		return nil, errPrivateKeyRequired
	}

	client := &Client{
		privateKey: trimmedPrivate,
		publicKey:  strings.TrimSpace(publicKey),
		uploadURL:  defaultUploadBaseURL,
		apiURL:     defaultAPIBaseURL,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}

	for _, opt := range opts {
		if opt != nil {
			opt(client)
		}
	}

	if client.httpClient == nil {
		client.httpClient = &http.Client{Timeout: 30 * time.Second}
	}

	return client, nil
}

// UploadResult is the hosted file reference returned after an upload.
type UploadResult struct {
	URL    string `json:"url"`
	FileID string `json:"fileId"`
}

// Upload pushes a base64-encoded file to ImageKit and returns its hosted URL.
func (c *Client) Upload(ctx context.Context, fileBase64, fileName, folder string) (*UploadResult, error) {
	if c == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "media client not configured")
	}
	if strings.TrimSpace(fileBase64) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "file content is required")
	}
	if strings.TrimSpace(fileName) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "file name is required")
	}

	form := url.Values{}
	form.Set("file", fileBase64)
	form.Set("fileName", fileName)
	if strings.TrimSpace(folder) != "" {
		form.Set("folder", folder)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.buildURL(c.uploadURL, "api/v1/files/upload"), strings.NewReader(form.Encode()))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "build upload request")
	}
	httpReq.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	httpReq.SetBasicAuth(c.privateKey, "")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "execute upload request")
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, responseBodyReadLimit))
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(msg))), "upload request failed")
	}

	var result UploadResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode upload response")
	}

	return &result, nil
}

// Delete removes a hosted file by its file ID.
func (c *Client) Delete(ctx context.Context, fileID string) error {
	if c == nil {
		return pkgerrors.New(pkgerrors.CodeDependency, "media client not configured")
	}
	trimmed := strings.TrimSpace(fileID)
	if trimmed == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "file ID is required")
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodDelete, c.buildURL(c.apiURL, "v1/files/"+url.PathEscape(trimmed)), nil)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "build delete request")
	}
	httpReq.SetBasicAuth(c.privateKey, "")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "execute delete request")
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusNoContent && resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, responseBodyReadLimit))
		return pkgerrors.Wrap(pkgerrors.CodeDependency, fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(msg))), "delete request failed")
	}

	return nil
}

// AuthParams are short-lived credentials for direct browser uploads.
type AuthParams struct {
	Token     string `json:"token"`
	Expire    int64  `json:"expire"`
	Signature string `json:"signature"`
}

// AuthenticationParams mints the token/expire/signature triple the upload
// widget expects: HMAC-SHA1 over token+expire with the private key.
func (c *Client) AuthenticationParams(now time.Time, ttl time.Duration) AuthParams {
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	token := uuid.NewString()
	expire := now.Add(ttl).Unix()

	mac := hmac.New(sha1.New, []byte(c.privateKey))
	fmt.Fprintf(mac, "%s%d", token, expire)

	return AuthParams{
		Token:     token,
		Expire:    expire,
		Signature: hex.EncodeToString(mac.Sum(nil)),
	}
}

func (c *Client) buildURL(base, path string) string {
	return fmt.Sprintf("%s/%s", strings.TrimRight(base, "/"), strings.TrimLeft(path, "/"))
}
