package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"image"
	"image/color"
	"image/jpeg"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/churchsite/backend/internal/apperrors"
	"github.com/churchsite/backend/internal/auth"
	"github.com/churchsite/backend/internal/metrics"
	"github.com/churchsite/backend/internal/models"
	"github.com/churchsite/backend/internal/upload"
	"github.com/churchsite/backend/internal/validation"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// mockBlogService is a mock implementation of BlogService
type mockBlogService struct {
	calls      int
	err        error
	lastParams models.ListParams
	lastInput  models.BlogInput
	lastID     int64
	lastKey    string
}

func (m *mockBlogService) List(ctx context.Context, params models.ListParams) (*models.Page[models.Blog], error) {
	m.calls++
	m.lastParams = params
	if m.err != nil {
		return nil, m.err
	}
	return &models.Page[models.Blog]{Items: []models.Blog{{ID: 1, Title: "Hello"}}, Total: 1, Page: params.Page, Limit: params.Limit}, nil
}

func (m *mockBlogService) Get(ctx context.Context, idOrSlug string) (*models.Blog, error) {
	m.calls++
	m.lastKey = idOrSlug
	if m.err != nil {
		return nil, m.err
	}
	return &models.Blog{ID: 1, Slug: idOrSlug}, nil
}

func (m *mockBlogService) Create(ctx context.Context, in models.BlogInput) (*models.Blog, error) {
	m.calls++
	m.lastInput = in
	if m.err != nil {
		return nil, m.err
	}
	return &models.Blog{ID: 1, Title: in.Title, FeaturedImage: in.FeaturedImage}, nil
}

func (m *mockBlogService) Update(ctx context.Context, id int64, in models.BlogInput) (*models.Blog, error) {
	m.calls++
	m.lastID = id
	m.lastInput = in
	if m.err != nil {
		return nil, m.err
	}
	return &models.Blog{ID: id, Title: in.Title}, nil
}

func (m *mockBlogService) Delete(ctx context.Context, id int64) error {
	m.calls++
	m.lastID = id
	return m.err
}

// mockEventService is a mock implementation of EventService
type mockEventService struct {
	calls     int
	lastInput models.EventInput
}

func (m *mockEventService) List(ctx context.Context, params models.ListParams) (*models.Page[models.Event], error) {
	m.calls++
	return &models.Page[models.Event]{Page: params.Page, Limit: params.Limit}, nil
}

func (m *mockEventService) Get(ctx context.Context, id int64) (*models.Event, error) {
	m.calls++
	return &models.Event{ID: id}, nil
}

func (m *mockEventService) Create(ctx context.Context, in models.EventInput) (*models.Event, error) {
	m.calls++
	m.lastInput = in
	return &models.Event{ID: 1, Title: in.Title, StartDate: in.StartDate, EndDate: in.EndDate}, nil
}

func (m *mockEventService) Update(ctx context.Context, id int64, in models.EventInput) (*models.Event, error) {
	m.calls++
	return &models.Event{ID: id}, nil
}

func (m *mockEventService) Delete(ctx context.Context, id int64) error {
	m.calls++
	return nil
}

// mockAuthService is a mock implementation of AuthService
type mockAuthService struct {
	calls int
	email string
}

func (m *mockAuthService) Login(ctx context.Context, email, password string) (*models.LoginResponse, error) {
	m.calls++
	m.email = email
	if password != "correct-horse" {
		return nil, apperrors.Unauthenticated("invalid credentials")
	}
	return &models.LoginResponse{AccessToken: "token", User: &models.User{ID: 2, Email: email, Role: auth.RolePastor}}, nil
}

func (m *mockAuthService) Me(ctx context.Context) (*models.User, error) {
	m.calls++
	id, _ := auth.FromContext(ctx)
	return &models.User{ID: id.UserID, Role: id.Role}, nil
}

// mockUploadService is a mock implementation of UploadService
type mockUploadService struct {
	removed []string
}

func (m *mockUploadService) Remove(ctx context.Context, rawURL string) error {
	m.removed = append(m.removed, rawURL)
	return nil
}

type mockPinger struct{ err error }

func (m mockPinger) Ping(ctx context.Context) error { return m.err }

type testServer struct {
	handler  http.Handler
	tokens   *auth.TokenGenerator
	blogs    *mockBlogService
	events   *mockEventService
	auth     *mockAuthService
	uploads  *mockUploadService
	ministry *mockMinistryService
	pastors  *mockPastorService
	pages    *mockPageService
	root     string
	tempDir  string
	registry *prometheus.Registry
}

func newTestServer(t *testing.T, ping error) *testServer {
	t.Helper()
	root := t.TempDir()
	tempDir := t.TempDir()
	logger := zap.NewNop()

	storage, err := upload.NewStorage(root)
	require.NoError(t, err)
	pipeline, err := upload.NewPipeline(storage, upload.DefaultConfig(), tempDir, logger, metrics.Nop{})
	require.NoError(t, err)

	registry := prometheus.NewRegistry()
	collector := metrics.NewCollector(registry)
	tokens := auth.NewTokenGenerator("handler-test-secret", time.Hour)
	guards := NewGuards(tokens, validation.New(), pipeline, collector, logger)

	ts := &testServer{
		tokens:   tokens,
		blogs:    &mockBlogService{},
		events:   &mockEventService{},
		auth:     &mockAuthService{},
		uploads:  &mockUploadService{},
		ministry: &mockMinistryService{},
		pastors:  &mockPastorService{},
		pages:    &mockPageService{},
		root:     root,
		tempDir:  tempDir,
		registry: registry,
	}

	ts.handler = NewRouter(RouterConfig{
		AllowedOrigins: []string{"*"},
		MaxRequestSize: 10 << 20,
		UploadsRoot:    root,
		Recorder:       collector,
		Gatherer:       registry,
		Logger:         logger,
	},
		NewHealthHandler(mockPinger{err: ping}, logger),
		NewBlogHandler(ts.blogs, guards),
		NewEventHandler(ts.events, guards),
		NewSermonHandler(nil, guards),
		NewAuthHandler(ts.auth, guards, nil),
		NewUploadHandler(ts.uploads, guards),
		NewMinistryHandler(ts.ministry, guards),
		NewPastorHandler(ts.pastors, guards),
		NewPageHandler(ts.pages, guards),
	)
	return ts
}

func (ts *testServer) token(t *testing.T, role auth.Role) string {
	t.Helper()
	token, err := ts.tokens.GenerateAccessToken(7, role)
	require.NoError(t, err)
	return token
}

func (ts *testServer) do(req *http.Request, token string) *httptest.ResponseRecorder {
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	ts.handler.ServeHTTP(w, req)
	return w
}

func jsonRequest(method, target, body string) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func multipartRequest(t *testing.T, method, target string, fields map[string]string, fileField string, data []byte) *http.Request {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	if fileField != "" {
		header := make(textproto.MIMEHeader)
		header.Set("Content-Disposition", `form-data; name="`+fileField+`"; filename="photo.jpg"`)
		header.Set("Content-Type", "image/jpeg")
		part, err := mw.CreatePart(header)
		require.NoError(t, err)
		_, err = part.Write(data)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(method, target, &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func jpegBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 120, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, jpeg.Encode(&buf, img, nil))
	return buf.Bytes()
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body), w.Body.String())
	return body
}

func tempFiles(t *testing.T, dir string) []string {
	t.Helper()
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	return names
}

func TestBlogRoutes_List(t *testing.T) {
	tests := []struct {
		name               string
		query              string
		expectedStatus     int
		expectedViolations int
		expectedPage       int
		expectedLimit      int
	}{
		{name: "defaults", query: "", expectedStatus: http.StatusOK, expectedPage: 1, expectedLimit: 10},
		{name: "explicit page", query: "?page=3&limit=20", expectedStatus: http.StatusOK, expectedPage: 3, expectedLimit: 20},
		{name: "every field reported", query: "?page=0&limit=500", expectedStatus: http.StatusBadRequest, expectedViolations: 2},
		{name: "offset bound", query: "?page=200&limit=100", expectedStatus: http.StatusBadRequest, expectedViolations: 1},
		{name: "huge page is rejected", query: "?page=9223372036854775807&limit=2", expectedStatus: http.StatusBadRequest, expectedViolations: 1},
		{name: "not a number", query: "?page=abc", expectedStatus: http.StatusBadRequest, expectedViolations: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := newTestServer(t, nil)

			w := ts.do(httptest.NewRequest(http.MethodGet, "/api/v1/blogs"+tt.query, nil), "")

			assert.Equal(t, tt.expectedStatus, w.Code)
			body := decodeBody(t, w)
			if tt.expectedStatus == http.StatusOK {
				assert.Equal(t, true, body["success"])
				assert.Equal(t, tt.expectedPage, ts.blogs.lastParams.Page)
				assert.Equal(t, tt.expectedLimit, ts.blogs.lastParams.Limit)
				return
			}
			assert.Equal(t, 0, ts.blogs.calls)
			assert.Equal(t, "validation failed", body["message"])
			assert.Len(t, body["errors"], tt.expectedViolations)
		})
	}
}

func TestBlogRoutes_Authorization(t *testing.T) {
	valid := `{"title":"Easter Sunday","content":"<p>Join us</p>"}`

	tests := []struct {
		name           string
		method         string
		target         string
		role           auth.Role
		withToken      bool
		rawToken       string
		expectedStatus int
		expectedMsg    string
	}{
		{name: "create without token", method: http.MethodPost, target: "/api/v1/blogs", expectedStatus: http.StatusUnauthorized, expectedMsg: "authentication required"},
		{name: "create with garbage token", method: http.MethodPost, target: "/api/v1/blogs", rawToken: "not-a-jwt", expectedStatus: http.StatusUnauthorized, expectedMsg: "invalid token"},
		{name: "create as member", method: http.MethodPost, target: "/api/v1/blogs", role: auth.RoleMember, withToken: true, expectedStatus: http.StatusForbidden, expectedMsg: "insufficient permissions"},
		{name: "create without role claim", method: http.MethodPost, target: "/api/v1/blogs", withToken: true, expectedStatus: http.StatusForbidden},
		{name: "create as pastor", method: http.MethodPost, target: "/api/v1/blogs", role: auth.RolePastor, withToken: true, expectedStatus: http.StatusCreated},
		{name: "update as admin", method: http.MethodPut, target: "/api/v1/blogs/4", role: auth.RoleAdmin, withToken: true, expectedStatus: http.StatusOK},
		{name: "delete as pastor", method: http.MethodDelete, target: "/api/v1/blogs/4", role: auth.RolePastor, withToken: true, expectedStatus: http.StatusForbidden},
		{name: "delete as admin", method: http.MethodDelete, target: "/api/v1/blogs/4", role: auth.RoleAdmin, withToken: true, expectedStatus: http.StatusOK},
		{name: "public read with bad token", method: http.MethodGet, target: "/api/v1/blogs/hello", rawToken: "bad", expectedStatus: http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := newTestServer(t, nil)
			token := tt.rawToken
			if tt.withToken {
				token = ts.token(t, tt.role)
			}

			w := ts.do(jsonRequest(tt.method, tt.target, valid), token)

			assert.Equal(t, tt.expectedStatus, w.Code, w.Body.String())
			if w.Code >= http.StatusBadRequest {
				assert.Equal(t, 0, ts.blogs.calls)
				if tt.expectedMsg != "" {
					assert.Equal(t, tt.expectedMsg, decodeBody(t, w)["message"])
				}
			}
		})
	}
}

func TestBlogRoutes_CreateValidation(t *testing.T) {
	ts := newTestServer(t, nil)

	w := ts.do(jsonRequest(http.MethodPost, "/api/v1/blogs", `{"title":"ab","slug":"Not A Slug","published":"maybe"}`), ts.token(t, auth.RolePastor))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	body := decodeBody(t, w)
	violations, ok := body["errors"].([]any)
	require.True(t, ok)

	fields := make([]string, 0, len(violations))
	for _, v := range violations {
		fields = append(fields, v.(map[string]any)["field"].(string))
	}
	assert.Equal(t, []string{"title", "slug", "content", "published"}, fields)
	assert.Equal(t, 0, ts.blogs.calls)
}

func TestBlogRoutes_CreateWithImage(t *testing.T) {
	ts := newTestServer(t, nil)

	req := multipartRequest(t, http.MethodPost, "/api/v1/blogs", map[string]string{
		"title":     "  Easter Sunday  ",
		"content":   "<p>Join us</p>",
		"published": "true",
	}, "featuredImage", jpegBytes(t, 1600, 400))
	w := ts.do(req, ts.token(t, auth.RoleAdmin))

	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	in := ts.blogs.lastInput
	assert.Equal(t, "Easter Sunday", in.Title)
	assert.True(t, in.Published)
	require.NotNil(t, in.FeaturedImage)
	assert.True(t, strings.HasPrefix(*in.FeaturedImage, "/uploads/blog/blog-"))
	assert.True(t, strings.HasSuffix(*in.FeaturedImage, ".webp"))

	_, err := os.Stat(filepath.Join(ts.root, strings.TrimPrefix(*in.FeaturedImage, "/uploads/")))
	assert.NoError(t, err)
	assert.Empty(t, tempFiles(t, ts.tempDir))
}

func TestBlogRoutes_InvalidBodySkipsUpload(t *testing.T) {
	ts := newTestServer(t, nil)

	req := multipartRequest(t, http.MethodPost, "/api/v1/blogs", map[string]string{"title": "x"}, "featuredImage", jpegBytes(t, 50, 50))
	w := ts.do(req, ts.token(t, auth.RolePastor))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	_, err := os.Stat(filepath.Join(ts.root, BlogFolder))
	assert.True(t, os.IsNotExist(err), "no file must be stored for a rejected body")
}

func TestBlogRoutes_ServiceErrors(t *testing.T) {
	ts := newTestServer(t, nil)
	ts.blogs.err = apperrors.NotFound("blog post not found")

	w := ts.do(httptest.NewRequest(http.MethodGet, "/api/v1/blogs/missing", nil), "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "blog post not found", decodeBody(t, w)["message"])

	ts.blogs.err = errors.New("unexpected")
	w = ts.do(httptest.NewRequest(http.MethodGet, "/api/v1/blogs", nil), "")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "internal server error", decodeBody(t, w)["message"])
}

func TestBlogRoutes_InvalidID(t *testing.T) {
	ts := newTestServer(t, nil)

	w := ts.do(httptest.NewRequest(http.MethodDelete, "/api/v1/blogs/abc", nil), ts.token(t, auth.RoleAdmin))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "invalid id", decodeBody(t, w)["message"])
	assert.Equal(t, 0, ts.blogs.calls)
}

func TestEventRoutes_DateOrder(t *testing.T) {
	ts := newTestServer(t, nil)
	token := ts.token(t, auth.RolePastor)

	w := ts.do(jsonRequest(http.MethodPost, "/api/v1/events", `{"title":"Retreat","startDate":"2026-06-05","endDate":"2026-06-01"}`), token)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	violations := decodeBody(t, w)["errors"].([]any)
	require.Len(t, violations, 1)
	assert.Equal(t, "endDate", violations[0].(map[string]any)["field"])
	assert.Equal(t, 0, ts.events.calls)

	w = ts.do(jsonRequest(http.MethodPost, "/api/v1/events", `{"title":"Retreat","startDate":"2026-06-01T09:00","endDate":"2026-06-05","registrationUrl":"https://church.example/retreat"}`), token)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Equal(t, time.Date(2026, 6, 1, 9, 0, 0, 0, time.UTC), ts.events.lastInput.StartDate)
	require.NotNil(t, ts.events.lastInput.RegistrationURL)
}

func TestUploadRoutes(t *testing.T) {
	ts := newTestServer(t, nil)

	t.Run("stores into url folder", func(t *testing.T) {
		req := multipartRequest(t, http.MethodPost, "/api/v1/uploads/gallery", nil, "file", jpegBytes(t, 300, 200))
		w := ts.do(req, ts.token(t, auth.RolePastor))

		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
		data := decodeBody(t, w)["data"].(map[string]any)
		assert.Equal(t, "gallery", data["folder"])
		assert.Equal(t, "image/webp", data["mimeType"])
		assert.Equal(t, float64(300), data["width"])
	})

	t.Run("missing file", func(t *testing.T) {
		req := multipartRequest(t, http.MethodPost, "/api/v1/uploads/gallery", map[string]string{"x": "y"}, "", nil)
		w := ts.do(req, ts.token(t, auth.RolePastor))

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "missing file: file", decodeBody(t, w)["message"])
	})

	t.Run("guest rejected before reading the body", func(t *testing.T) {
		req := multipartRequest(t, http.MethodPost, "/api/v1/uploads/gallery", nil, "file", jpegBytes(t, 30, 20))
		w := ts.do(req, "")

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Empty(t, tempFiles(t, ts.tempDir))
	})

	t.Run("delete requires url", func(t *testing.T) {
		w := ts.do(httptest.NewRequest(http.MethodDelete, "/api/v1/uploads", nil), ts.token(t, auth.RoleAdmin))
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("delete as admin", func(t *testing.T) {
		w := ts.do(httptest.NewRequest(http.MethodDelete, "/api/v1/uploads?url=/uploads/gallery/a.webp", nil), ts.token(t, auth.RoleAdmin))
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, []string{"/uploads/gallery/a.webp"}, ts.uploads.removed)
	})
}

func TestAuthRoutes(t *testing.T) {
	ts := newTestServer(t, nil)

	w := ts.do(jsonRequest(http.MethodPost, "/api/v1/auth/login", `{"email":"not-an-email","password":"short"}`), "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Len(t, decodeBody(t, w)["errors"], 2)
	assert.Equal(t, 0, ts.auth.calls)

	w = ts.do(jsonRequest(http.MethodPost, "/api/v1/auth/login", `{"email":" pastor@church.org ","password":"wrong-horse"}`), "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "pastor@church.org", ts.auth.email)

	w = ts.do(jsonRequest(http.MethodPost, "/api/v1/auth/login", `{"email":"pastor@church.org","password":"correct-horse"}`), "")
	require.Equal(t, http.StatusOK, w.Code)
	cookies := w.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, "access_token", cookies[0].Name)
	assert.True(t, cookies[0].HttpOnly)

	w = ts.do(httptest.NewRequest(http.MethodGet, "/api/v1/auth/me", nil), "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = ts.do(httptest.NewRequest(http.MethodGet, "/api/v1/auth/me", nil), ts.token(t, auth.RoleMember))
	require.Equal(t, http.StatusOK, w.Code)
	data := decodeBody(t, w)["data"].(map[string]any)
	assert.Equal(t, "member", data["identity"].(map[string]any)["role"])
}

func TestHealth(t *testing.T) {
	ts := newTestServer(t, nil)
	w := ts.do(httptest.NewRequest(http.MethodGet, "/health", nil), "")
	assert.Equal(t, http.StatusOK, w.Code)

	ts = newTestServer(t, errors.New("connection refused"))
	w = ts.do(httptest.NewRequest(http.MethodGet, "/health", nil), "")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Equal(t, false, decodeBody(t, w)["success"])
}

func TestStaticUploads(t *testing.T) {
	ts := newTestServer(t, nil)
	require.NoError(t, os.MkdirAll(filepath.Join(ts.root, "blog"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(ts.root, "blog", "a.webp"), []byte("RIFF"), 0644))

	w := ts.do(httptest.NewRequest(http.MethodGet, "/uploads/blog/a.webp", nil), "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))

	w = ts.do(httptest.NewRequest(http.MethodGet, "/uploads/blog/", nil), "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = ts.do(httptest.NewRequest(http.MethodGet, "/uploads/blog/missing.webp", nil), "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestMetricsEndpoint(t *testing.T) {
	ts := newTestServer(t, nil)
	ts.do(httptest.NewRequest(http.MethodGet, "/api/v1/blogs", nil), "")
	ts.do(httptest.NewRequest(http.MethodPost, "/api/v1/blogs", nil), "")

	w := ts.do(httptest.NewRequest(http.MethodGet, "/metrics", nil), "")
	require.Equal(t, http.StatusOK, w.Code)

	body, err := io.ReadAll(w.Body)
	require.NoError(t, err)
	assert.Regexp(t, `churchsite_http_requests_total\{method="GET",route="/api/v1/blogs/?",status_code="200"\} 1`, string(body))
	assert.Contains(t, string(body), `churchsite_auth_failures_total{reason="authentication required"} 1`)
}
