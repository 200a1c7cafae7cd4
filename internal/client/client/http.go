package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"github.com/dmitrijs2005/miniblog/internal/netx"
	"github.com/dmitrijs2005/miniblog/internal/server/models"
)

type envelope struct {
	Success bool               `json:"success"`
	Error   string             `json:"error"`
	User    *models.PublicUser `json:"user"`
}

type postsEnvelope struct {
	Data []*models.Article `json:"data"`
}

type presignEnvelope struct {
	Key       string `json:"key"`
	UploadURL string `json:"uploadUrl"`
	PublicURL string `json:"publicUrl"`
}

// HTTPClient is the cookie-session implementation of Client.
type HTTPClient struct {
	base *url.URL
	http *http.Client
}

var _ Client = (*HTTPClient)(nil)

func NewHTTPClient(baseURL string, timeout time.Duration) (*HTTPClient, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("server url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("server url: unsupported scheme %q", u.Scheme)
	}

	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}

	return &HTTPClient{base: u, http: &http.Client{Jar: jar, Timeout: timeout}}, nil
}

func (c *HTTPClient) endpoint(path string, query url.Values) string {
	u := *c.base
	u.Path = c.base.Path + path
	u.RawQuery = query.Encode()
	return u.String()
}

// do sends in as JSON (when non-nil) and decodes a 2xx body into out.
func (c *HTTPClient) do(ctx context.Context, method, path string, query url.Values, in, out any) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.endpoint(path, query), body)
	if err != nil {
		return err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var e envelope
		_ = json.NewDecoder(resp.Body).Decode(&e)
		return &APIError{StatusCode: resp.StatusCode, Message: e.Error}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func (c *HTTPClient) Register(ctx context.Context, name, email string, password []byte) (*models.PublicUser, error) {
	in := map[string]string{"name": name, "email": email, "password": string(password)}
	var out envelope
	if err := c.do(ctx, http.MethodPost, "/api/auth/register", nil, in, &out); err != nil {
		return nil, err
	}
	return out.User, nil
}

func (c *HTTPClient) Login(ctx context.Context, email string, password []byte) (*models.PublicUser, error) {
	in := map[string]string{"email": email, "password": string(password)}
	var out envelope
	if err := c.do(ctx, http.MethodPost, "/api/auth/login", nil, in, &out); err != nil {
		return nil, err
	}
	return out.User, nil
}

func (c *HTTPClient) Logout(ctx context.Context) error {
	return c.do(ctx, http.MethodPost, "/api/auth/logout", nil, nil, nil)
}

func (c *HTTPClient) Me(ctx context.Context) (*models.PublicUser, error) {
	var out envelope
	if err := c.do(ctx, http.MethodGet, "/api/auth/me", nil, nil, &out); err != nil {
		return nil, err
	}
	if !out.Success {
		return nil, nil
	}
	return out.User, nil
}

func (c *HTTPClient) Posts(ctx context.Context, category string) ([]*models.Article, error) {
	q := url.Values{}
	if category != "" {
		q.Set("category", category)
	}
	var out postsEnvelope
	if err := c.do(ctx, http.MethodGet, "/api/posts", q, nil, &out); err != nil {
		return nil, err
	}
	return out.Data, nil
}

func (c *HTTPClient) MyPosts(ctx context.Context) ([]*models.Article, error) {
	var out postsEnvelope
	if err := c.do(ctx, http.MethodGet, "/api/posts/mine", nil, nil, &out); err != nil {
		return nil, err
	}
	return out.Data, nil
}

func (c *HTTPClient) Upload(ctx context.Context, kind, contentType string, body io.Reader) (string, error) {
	in := map[string]string{"kind": kind, "contentType": contentType}
	var out presignEnvelope
	if err := c.do(ctx, http.MethodPost, "/api/media/presign", nil, in, &out); err != nil {
		return "", err
	}

	// The upload goes straight to object storage; the session cookie must not follow it.
	storage := &http.Client{Timeout: c.http.Timeout}
	if err := netx.UploadToPresignedURL(ctx, storage, out.UploadURL, contentType, body); err != nil {
		return "", err
	}
	return out.PublicURL, nil
}
