package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/dmitrijs2005/ecoflow/internal/client/models"
	"github.com/dmitrijs2005/ecoflow/internal/client/workflow"
	"github.com/dmitrijs2005/ecoflow/internal/logging"
	"github.com/google/uuid"
)

const (
	HeaderToken     = "X-API-Token"
	HeaderRequestID = "X-Request-ID"

	DefaultTimeout = 30 * time.Second

	maxDetailLen = 512
)

type HTTPClient struct {
	baseURL *url.URL
	http    *http.Client
	timeout time.Duration
	logger  logging.Logger
	newID   func() string

	mu    sync.RWMutex
	creds Credentials
}

type Option func(*HTTPClient)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *HTTPClient) { c.http = hc }
}

// WithTimeout bounds every request. Zero disables the client-side deadline.
func WithTimeout(d time.Duration) Option {
	return func(c *HTTPClient) { c.timeout = d }
}

func WithLogger(l logging.Logger) Option {
	return func(c *HTTPClient) { c.logger = l }
}

func WithCredentials(creds Credentials) Option {
	return func(c *HTTPClient) { c.creds = creds }
}

func WithRequestIDs(gen func() string) Option {
	return func(c *HTTPClient) { c.newID = gen }
}

func NewHTTPClient(baseURL string, opts ...Option) (*HTTPClient, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse server url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("parse server url: unsupported scheme %q", u.Scheme)
	}

	c := &HTTPClient{
		baseURL: u,
		http:    &http.Client{},
		timeout: DefaultTimeout,
		logger:  logging.Discard(),
		newID:   uuid.NewString,
	}
	for _, o := range opts {
		o(c)
	}
	return c, nil
}

// UseCredentials attaches the token source. It is set after construction
// because the session store itself depends on the client.
func (c *HTTPClient) UseCredentials(creds Credentials) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.creds = creds
}

func (c *HTTPClient) credentials() Credentials {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.creds
}

type request struct {
	method      string
	path        []string
	query       url.Values
	body        []byte
	contentType string
	auth        bool
	// a 401 here means wrong username/password, not a dead session
	login bool
}

type response struct {
	status int
	header http.Header
	body   []byte
}

func jsonRequest(method string, payload any, path ...string) (request, error) {
	r := request{method: method, path: path, auth: true}
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return r, fmt.Errorf("encode request: %w", err)
		}
		r.body = b
		r.contentType = "application/json"
	}
	return r, nil
}

func (c *HTTPClient) do(ctx context.Context, r request) (*response, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	var token string
	if r.auth {
		if creds := c.credentials(); creds != nil {
			token = creds.Token()
		}
		if token == "" {
			return nil, ErrUnauthorized
		}
	}

	segs := make([]string, len(r.path))
	for i, p := range r.path {
		segs[i] = url.PathEscape(p)
	}
	u := c.baseURL.JoinPath(segs...)
	if len(r.query) > 0 {
		u.RawQuery = r.query.Encode()
	}

	var body io.Reader
	if r.body != nil {
		body = bytes.NewReader(r.body)
	}
	req, err := http.NewRequestWithContext(ctx, r.method, u.String(), body)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	reqID := c.newID()
	req.Header.Set(HeaderRequestID, reqID)
	req.Header.Set("Accept", "application/json")
	if r.contentType != "" {
		req.Header.Set("Content-Type", r.contentType)
	}
	if token != "" {
		req.Header.Set(HeaderToken, token)
	}

	log := c.logger.With("request_id", reqID, "method", r.method, "path", u.Path)
	start := time.Now()

	resp, err := c.http.Do(req)
	if err != nil {
		log.Warn(ctx, "request failed", "error", err, "duration", time.Since(start))
		return nil, transportError(ctx, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		log.Warn(ctx, "reading response failed", "error", err)
		return nil, transportError(ctx, err)
	}

	log.Debug(ctx, "request done", "status", resp.StatusCode, "duration", time.Since(start), "bytes", len(data))

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return &response{status: resp.StatusCode, header: resp.Header, body: data}, nil
	}

	apiErr := &APIError{
		Status:    resp.StatusCode,
		Detail:    parseDetail(data),
		RequestID: reqID,
		Kind:      kindForStatus(resp.StatusCode),
	}

	// the token endpoint answers any rejected login with a 4xx
	if r.login && resp.StatusCode >= 400 && resp.StatusCode < 500 {
		apiErr.Kind = ErrInvalidCredentials
		return nil, apiErr
	}

	if resp.StatusCode == http.StatusUnauthorized {
		if creds := c.credentials(); r.auth && creds != nil && creds.Invalidate(ctx, token) {
			log.Info(ctx, "session invalidated by server")
		}
	}

	return nil, apiErr
}

func transportError(ctx context.Context, err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return fmt.Errorf("%w: %w", ErrTimeout, err)
	}
	var netErr interface{ Timeout() bool }
	if errors.As(err, &netErr) && netErr.Timeout() {
		return fmt.Errorf("%w: %w", ErrTimeout, err)
	}
	return fmt.Errorf("%w: %w", ErrUnavailable, err)
}

// parseDetail extracts the human-readable message from an error body. The
// server uses {"detail": "..."} or, for request validation, a list of
// {"loc": [...], "msg": "..."} objects.
func parseDetail(body []byte) string {
	body = bytes.TrimSpace(body)
	if len(body) == 0 {
		return ""
	}

	var envelope struct {
		Detail  json.RawMessage `json:"detail"`
		Message string          `json:"message"`
		Error   string          `json:"error"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		if body[0] == '{' || body[0] == '[' {
			return ""
		}
		return truncate(string(body))
	}

	if len(envelope.Detail) > 0 {
		var s string
		if err := json.Unmarshal(envelope.Detail, &s); err == nil {
			return s
		}

		var items []struct {
			Loc []any  `json:"loc"`
			Msg string `json:"msg"`
		}
		if err := json.Unmarshal(envelope.Detail, &items); err == nil {
			parts := make([]string, 0, len(items))
			for _, it := range items {
				if it.Msg == "" {
					continue
				}
				if len(it.Loc) > 0 {
					parts = append(parts, fmt.Sprintf("%v: %s", it.Loc[len(it.Loc)-1], it.Msg))
				} else {
					parts = append(parts, it.Msg)
				}
			}
			return strings.Join(parts, "; ")
		}

		return truncate(string(envelope.Detail))
	}

	if envelope.Message != "" {
		return envelope.Message
	}
	return envelope.Error
}

func truncate(s string) string {
	if len(s) > maxDetailLen {
		return s[:maxDetailLen]
	}
	return s
}

type validator interface {
	Validate() error
}

func decode(resp *response, v any) error {
	if err := json.Unmarshal(resp.body, v); err != nil {
		return fmt.Errorf("%w: %w", ErrMalformedResponse, err)
	}
	if val, ok := v.(validator); ok {
		if err := val.Validate(); err != nil {
			return fmt.Errorf("%w: %w", ErrMalformedResponse, err)
		}
	}
	return nil
}

func idSegment(id int64) string {
	return strconv.FormatInt(id, 10)
}

func (c *HTTPClient) IssueToken(ctx context.Context, username, password string) (*models.TokenGrant, error) {
	r, err := jsonRequest(http.MethodPost, map[string]string{
		"username": username,
		"password": password,
	}, "token")
	if err != nil {
		return nil, err
	}
	r.auth = false
	r.login = true

	resp, err := c.do(ctx, r)
	if err != nil {
		return nil, err
	}

	var grant models.TokenGrant
	if err := decode(resp, &grant); err != nil {
		return nil, err
	}
	if grant.Token == "" {
		return nil, fmt.Errorf("%w: empty token", ErrMalformedResponse)
	}
	return &grant, nil
}

func (c *HTTPClient) Register(ctx context.Context, user models.NewUser) error {
	r, err := jsonRequest(http.MethodPost, user, "register")
	if err != nil {
		return err
	}
	r.auth = false
	_, err = c.do(ctx, r)
	return err
}

func (c *HTTPClient) Ping(ctx context.Context) error {
	_, err := c.do(ctx, request{method: http.MethodGet, path: []string{"health"}})
	return err
}

func (c *HTTPClient) ListEcos(ctx context.Context, params ListParams) ([]models.EcoSummary, error) {
	r := request{method: http.MethodGet, path: []string{"ecos"}, query: params.Values(), auth: true}
	resp, err := c.do(ctx, r)
	if err != nil {
		return nil, err
	}

	var items []models.EcoSummary
	if err := decode(resp, &items); err != nil {
		return nil, err
	}
	for i, it := range items {
		if err := it.Validate(); err != nil {
			return nil, fmt.Errorf("%w: row %d: %w", ErrMalformedResponse, i, err)
		}
	}
	if items == nil {
		items = []models.EcoSummary{}
	}
	return items, nil
}

func (c *HTTPClient) GetEco(ctx context.Context, id int64) (*models.Eco, error) {
	resp, err := c.do(ctx, request{method: http.MethodGet, path: []string{"ecos", idSegment(id)}, auth: true})
	if err != nil {
		return nil, err
	}

	var eco models.Eco
	if err := decode(resp, &eco); err != nil {
		return nil, err
	}
	return &eco, nil
}

func (c *HTTPClient) CreateEco(ctx context.Context, in models.EcoInput) (int64, error) {
	r, err := jsonRequest(http.MethodPost, in, "ecos")
	if err != nil {
		return 0, err
	}
	resp, err := c.do(ctx, r)
	if err != nil {
		return 0, err
	}

	var out struct {
		EcoID int64 `json:"eco_id"`
		ID    int64 `json:"id"`
	}
	if err := decode(resp, &out); err != nil {
		return 0, err
	}
	id := out.EcoID
	if id == 0 {
		id = out.ID
	}
	if id < 1 {
		return 0, fmt.Errorf("%w: missing eco id", ErrMalformedResponse)
	}
	return id, nil
}

func (c *HTTPClient) UpdateEco(ctx context.Context, id int64, in models.EcoInput) error {
	r, err := jsonRequest(http.MethodPut, in, "ecos", idSegment(id))
	if err != nil {
		return err
	}
	_, err = c.do(ctx, r)
	return err
}

func (c *HTTPClient) DeleteEco(ctx context.Context, id int64) error {
	_, err := c.do(ctx, request{method: http.MethodDelete, path: []string{"ecos", idSegment(id)}, auth: true})
	return err
}

func (c *HTTPClient) Transition(ctx context.Context, id int64, action workflow.Action, comment string) error {
	if !action.IsTransition() {
		return fmt.Errorf("%w: %s", workflow.ErrNotTransition, action)
	}

	var payload any
	if comment != "" {
		payload = map[string]string{"comment": comment}
	} else {
		payload = map[string]string{}
	}
	r, err := jsonRequest(http.MethodPost, payload, "ecos", idSegment(id), string(action))
	if err != nil {
		return err
	}
	_, err = c.do(ctx, r)
	return err
}

func (c *HTTPClient) UploadAttachment(ctx context.Context, id int64, filename string, src io.Reader) error {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	part, err := mw.CreateFormFile("file", filename)
	if err != nil {
		return fmt.Errorf("build upload: %w", err)
	}
	if _, err := io.Copy(part, src); err != nil {
		return fmt.Errorf("read upload: %w", err)
	}
	if err := mw.Close(); err != nil {
		return fmt.Errorf("build upload: %w", err)
	}

	_, err = c.do(ctx, request{
		method:      http.MethodPost,
		path:        []string{"ecos", idSegment(id), "attachments"},
		body:        buf.Bytes(),
		contentType: mw.FormDataContentType(),
		auth:        true,
	})
	return err
}

func (c *HTTPClient) DownloadAttachment(ctx context.Context, id int64, filename string) (*models.BinaryPayload, error) {
	resp, err := c.do(ctx, request{
		method: http.MethodGet,
		path:   []string{"ecos", idSegment(id), "attachments", filename},
		auth:   true,
	})
	if err != nil {
		return nil, err
	}
	return binaryPayload(resp, filename), nil
}

func (c *HTTPClient) DownloadReport(ctx context.Context, id int64) (*models.BinaryPayload, error) {
	resp, err := c.do(ctx, request{
		method: http.MethodGet,
		path:   []string{"ecos", idSegment(id), "report"},
		auth:   true,
	})
	if err != nil {
		return nil, err
	}
	p := binaryPayload(resp, ReportName(id))
	// the report endpoint may wrap markdown in a JSON string
	if strings.HasPrefix(p.ContentType, "application/json") {
		var s string
		if json.Unmarshal(resp.body, &s) == nil {
			p.Data = []byte(s)
			p.ContentType = "text/markdown"
		}
	}
	return p, nil
}

// binaryPayload names the payload fallback, or the Content-Disposition
// filename when no fallback is given.
func binaryPayload(resp *response, fallback string) *models.BinaryPayload {
	ct := resp.header.Get("Content-Type")
	if ct == "" {
		ct = "application/octet-stream"
	}
	name := fallback
	if name == "" {
		if _, params, err := mime.ParseMediaType(resp.header.Get("Content-Disposition")); err == nil {
			name = params["filename"]
		}
	}
	return &models.BinaryPayload{Name: name, ContentType: ct, Data: resp.body}
}

func (c *HTTPClient) ListUsers(ctx context.Context) ([]models.User, error) {
	resp, err := c.do(ctx, request{method: http.MethodGet, path: []string{"admin", "users"}, auth: true})
	if err != nil {
		return nil, err
	}

	var users []models.User
	if err := decode(resp, &users); err != nil {
		return nil, err
	}
	for i, u := range users {
		if u.ID < 1 || u.Username == "" {
			return nil, fmt.Errorf("%w: user row %d", ErrMalformedResponse, i)
		}
	}
	if users == nil {
		users = []models.User{}
	}
	return users, nil
}

func (c *HTTPClient) DeleteUser(ctx context.Context, id int64) error {
	_, err := c.do(ctx, request{method: http.MethodDelete, path: []string{"admin", "users", idSegment(id)}, auth: true})
	return err
}

var _ Client = (*HTTPClient)(nil)
