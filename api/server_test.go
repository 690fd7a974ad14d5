package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/rpupo63/blog-backend/auth"
	"github.com/rpupo63/blog-backend/config"
	"github.com/rpupo63/blog-backend/database"
	"github.com/rpupo63/blog-backend/models"
	"github.com/rpupo63/blog-backend/services"
)

type capturedMail struct {
	to, subject, body string
}

type fakeMailer struct {
	mu   sync.Mutex
	sent []capturedMail
}

func (m *fakeMailer) Send(_ context.Context, to, subject, body string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, capturedMail{to: to, subject: subject, body: body})
	return nil
}

func (m *fakeMailer) last() capturedMail {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.sent) == 0 {
		return capturedMail{}
	}
	return m.sent[len(m.sent)-1]
}

type fakePutter struct {
	mu   sync.Mutex
	keys []string
}

func (p *fakePutter) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.keys = append(p.keys, *in.Key)
	return &s3.PutObjectOutput{}, nil
}

type testAPI struct {
	server *httptest.Server
	db     database.Database
	mailer *fakeMailer
	putter *fakePutter
}

func newTestAPI(t *testing.T, env map[string]string) *testAPI {
	t.Helper()

	gdb, err := database.Open(database.Options{
		Type:       "sqlite",
		SQLitePath: filepath.Join(t.TempDir(), "api.db"),
		Logger:     zerolog.Nop(),
	})
	require.NoError(t, err)
	db := database.New(gdb)
	require.NoError(t, db.Migrate())
	t.Cleanup(func() { _ = db.Close() })

	tokens, err := auth.NewTokenService("session-secret", "reset-secret")
	require.NoError(t, err)

	mailer := &fakeMailer{}
	putter := &fakePutter{}
	deps := Dependencies{
		Database:   db,
		Tokens:     tokens,
		Accounts:   services.NewAccountService(db.UserRepo(), auth.NewBcryptHasher(bcrypt.MinCost), tokens, mailer, nil),
		Posts:      services.NewPostService(db.BlogPostRepo(), db.CategoryRepo()),
		Categories: services.NewCategoryService(db.CategoryRepo()),
		Images:     services.NewImageService(putter, "blog-media", "us-east-1", "https://cdn.example.com"),
	}

	server := httptest.NewServer(newRouter(deps, withSettings(config.Load(env))))
	t.Cleanup(server.Close)

	return &testAPI{server: server, db: db, mailer: mailer, putter: putter}
}

// call sends body as JSON and decodes the response into a generic value.
func (a *testAPI) call(t *testing.T, method, path, token string, body any) (int, any) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequest(method, a.server.URL+path, reader)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	return a.do(t, req)
}

func (a *testAPI) do(t *testing.T, req *http.Request) (int, any) {
	t.Helper()

	resp, err := a.server.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	var decoded any
	if len(raw) > 0 {
		require.NoError(t, json.Unmarshal(raw, &decoded), string(raw))
	}
	return resp.StatusCode, decoded
}

func (a *testAPI) signup(t *testing.T, name string) string {
	t.Helper()

	status, _ := a.call(t, http.MethodPost, "/api/auth/register", "", map[string]string{
		"username": name,
		"email":    name + "@example.com",
		"password": "pw-" + name,
	})
	require.Equal(t, http.StatusCreated, status)

	status, body := a.call(t, http.MethodPost, "/api/auth/login", "", map[string]string{
		"email":    name + "@example.com",
		"password": "pw-" + name,
	})
	require.Equal(t, http.StatusOK, status)
	return field(body, "access_token").(string)
}

func (a *testAPI) promote(t *testing.T, name string) {
	t.Helper()

	ctx := context.Background()
	user, err := a.db.UserRepo().FindByEmail(ctx, name+"@example.com")
	require.NoError(t, err)
	require.NotNil(t, user)
	require.NoError(t, a.db.UserRepo().SetRole(ctx, user.ID, models.RoleAdmin))
}

func field(body any, key string) any {
	m, ok := body.(map[string]any)
	if !ok {
		return nil
	}
	return m[key]
}

func TestBlogScenario(t *testing.T) {
	a := newTestAPI(t, nil)
	token := a.signup(t, "alice")

	status, body := a.call(t, http.MethodPost, "/api/blogs/create", token, map[string]any{
		"title":   "Hello World",
		"content": "First post",
		"tags":    []string{"intro", "go"},
	})
	require.Equal(t, http.StatusCreated, status)
	assert.Equal(t, "Blog post created successfully", field(body, "message"))
	blog := field(body, "blog")
	assert.Equal(t, "hello-world", field(blog, "slug"))
	id := int(field(blog, "id").(float64))
	path := "/api/blogs/" + strconv.Itoa(id)

	status, body = a.call(t, http.MethodGet, "/api/blogs/all", "", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Empty(t, body)

	status, _ = a.call(t, http.MethodGet, path, "", nil)
	assert.Equal(t, http.StatusNotFound, status)

	status, body = a.call(t, http.MethodPut, "/api/blogs/update/"+strconv.Itoa(id), token, map[string]any{"published": true})
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "Blog post updated successfully", field(body, "message"))

	status, body = a.call(t, http.MethodGet, "/api/blogs/all", "", nil)
	require.Equal(t, http.StatusOK, status)
	list := body.([]any)
	require.Len(t, list, 1)
	assert.Equal(t, float64(0), field(list[0], "views"))
	assert.Equal(t, "alice", field(list[0], "author"))
	assert.Equal(t, []any{"intro", "go"}, field(list[0], "tags"))

	status, body = a.call(t, http.MethodGet, path, "", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, float64(1), field(body, "views"))
	assert.Equal(t, "Hello World", field(body, "title"))

	status, body = a.call(t, http.MethodPost, "/api/blogs/create", token, map[string]any{
		"title":   "Hello, World!",
		"content": "Same slug",
	})
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, "Slug already exists, please choose a different one", field(body, "error"))
}

func TestOwnership(t *testing.T) {
	a := newTestAPI(t, nil)
	alice := a.signup(t, "alice")
	bob := a.signup(t, "bob")
	admin := a.signup(t, "root")
	a.promote(t, "root")

	_, body := a.call(t, http.MethodPost, "/api/blogs/create", alice, map[string]any{"title": "Mine", "content": "x"})
	id := strconv.Itoa(int(field(field(body, "blog"), "id").(float64)))

	status, body := a.call(t, http.MethodPut, "/api/blogs/update/"+id, bob, map[string]any{"title": "Stolen"})
	assert.Equal(t, http.StatusForbidden, status)
	assert.Equal(t, "Unauthorized", field(body, "error"))

	status, _ = a.call(t, http.MethodPut, "/api/blogs/update/"+id, admin, map[string]any{"title": "Admin edit"})
	assert.Equal(t, http.StatusForbidden, status, "admins may delete but not edit others' posts")

	status, _ = a.call(t, http.MethodDelete, "/api/blogs/delete/"+id, bob, nil)
	assert.Equal(t, http.StatusForbidden, status)

	status, body = a.call(t, http.MethodDelete, "/api/blogs/delete/"+id, admin, nil)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "Blog post deleted successfully", field(body, "message"))

	status, body = a.call(t, http.MethodDelete, "/api/blogs/delete/"+id, alice, nil)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "Blog not found", field(body, "error"))
}

func TestAuthentication(t *testing.T) {
	a := newTestAPI(t, nil)
	a.signup(t, "alice")

	t.Run("missing token", func(t *testing.T) {
		status, body := a.call(t, http.MethodPost, "/api/blogs/create", "", map[string]any{"title": "t", "content": "c"})
		assert.Equal(t, http.StatusUnauthorized, status)
		assert.Equal(t, "error", field(body, "status"))
		assert.Equal(t, "authorization", field(body, "field"))
	})

	t.Run("garbage token", func(t *testing.T) {
		status, body := a.call(t, http.MethodPost, "/api/blogs/create", "not-a-jwt", map[string]any{"title": "t", "content": "c"})
		assert.Equal(t, http.StatusUnauthorized, status)
		assert.Equal(t, "Invalid access token", field(body, "details"))
	})

	t.Run("token for unknown user", func(t *testing.T) {
		tokens, err := auth.NewTokenService("session-secret", "reset-secret")
		require.NoError(t, err)
		ghost, err := tokens.IssueSessionToken(4242)
		require.NoError(t, err)

		status, body := a.call(t, http.MethodPost, "/api/blogs/create", ghost, map[string]any{"title": "t", "content": "c"})
		assert.Equal(t, http.StatusUnauthorized, status)
		assert.Equal(t, "User not found", field(body, "error"))
	})

	t.Run("wrong password", func(t *testing.T) {
		status, body := a.call(t, http.MethodPost, "/api/auth/login", "", map[string]string{
			"email":    "alice@example.com",
			"password": "nope",
		})
		assert.Equal(t, http.StatusUnauthorized, status)
		assert.Equal(t, "Invalid credentials", field(body, "error"))
	})

	t.Run("duplicate registration", func(t *testing.T) {
		status, body := a.call(t, http.MethodPost, "/api/auth/register", "", map[string]string{
			"username": "alice2",
			"email":    "alice@example.com",
			"password": "pw",
		})
		assert.Equal(t, http.StatusConflict, status)
		assert.Equal(t, "Email already exists", field(body, "error"))
	})

	t.Run("malformed body", func(t *testing.T) {
		req, err := http.NewRequest(http.MethodPost, a.server.URL+"/api/auth/register", strings.NewReader("{"))
		require.NoError(t, err)
		status, body := a.do(t, req)
		assert.Equal(t, http.StatusBadRequest, status)
		assert.Equal(t, "json", field(body, "field"))
	})
}

func TestPasswordReset(t *testing.T) {
	a := newTestAPI(t, map[string]string{"RESET_LINK_BASE_URL": "https://blog.example.com/"})
	a.signup(t, "alice")

	status, body := a.call(t, http.MethodPost, "/api/auth/forgot-password", "", map[string]string{"email": "nobody@example.com"})
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "User not found", field(body, "error"))

	status, body = a.call(t, http.MethodPost, "/api/auth/forgot-password", "", map[string]string{"email": "alice@example.com"})
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "Password reset link sent to your email", field(body, "message"))

	mail := a.mailer.last()
	assert.Equal(t, "alice@example.com", mail.to)
	assert.Equal(t, "Password Reset Request", mail.subject)

	link := mail.body[strings.Index(mail.body, "https://"):]
	assert.True(t, strings.HasPrefix(link, "https://blog.example.com/reset-password?token="))
	parsed, err := url.Parse(link)
	require.NoError(t, err)
	token := parsed.Query().Get("token")
	require.NotEmpty(t, token)

	status, body = a.call(t, http.MethodPost, "/api/auth/reset-password", "", map[string]string{"token": "bogus", "new_password": "x"})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "Invalid reset token", field(body, "error"))

	status, body = a.call(t, http.MethodPost, "/api/auth/reset-password", "", map[string]string{"token": token, "new_password": "fresh-pw"})
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "Password reset successfully", field(body, "message"))

	status, _ = a.call(t, http.MethodPost, "/api/auth/login", "", map[string]string{"email": "alice@example.com", "password": "fresh-pw"})
	assert.Equal(t, http.StatusOK, status)
}

func TestDefaultResetLinkPointsAtServer(t *testing.T) {
	a := newTestAPI(t, nil)
	a.signup(t, "alice")

	status, _ := a.call(t, http.MethodPost, "/api/auth/forgot-password", "", map[string]string{"email": "alice@example.com"})
	require.Equal(t, http.StatusOK, status)

	assert.Contains(t, a.mailer.last().body, a.server.URL+"/api/auth/reset-password?token=")
}

func TestCategories(t *testing.T) {
	a := newTestAPI(t, nil)
	user := a.signup(t, "alice")
	admin := a.signup(t, "root")
	a.promote(t, "root")

	status, body := a.call(t, http.MethodPost, "/api/categories/create", user, map[string]string{"name": "Go"})
	assert.Equal(t, http.StatusForbidden, status)
	assert.Equal(t, "Unauthorized", field(body, "error"))

	status, body = a.call(t, http.MethodPost, "/api/categories/create", admin, map[string]string{"name": ""})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "Category name is required", field(body, "error"))

	status, body = a.call(t, http.MethodPost, "/api/categories/create", admin, map[string]string{"name": "Go", "description": "Gophers"})
	require.Equal(t, http.StatusCreated, status)
	assert.Equal(t, "Category created successfully", field(body, "message"))

	status, body = a.call(t, http.MethodGet, "/api/categories/", "", nil)
	require.Equal(t, http.StatusOK, status)
	list := body.([]any)
	require.Len(t, list, 1)
	assert.Equal(t, "Go", field(list[0], "name"))
	id := strconv.Itoa(int(field(list[0], "id").(float64)))

	status, _ = a.call(t, http.MethodPut, "/api/categories/"+id, admin, map[string]any{"description": nil})
	assert.Equal(t, http.StatusOK, status)

	_, body = a.call(t, http.MethodGet, "/api/categories/", "", nil)
	assert.Nil(t, field(body.([]any)[0], "description"))

	status, _ = a.call(t, http.MethodDelete, "/api/categories/"+id, user, nil)
	assert.Equal(t, http.StatusForbidden, status)

	status, body = a.call(t, http.MethodDelete, "/api/categories/"+id, admin, nil)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "Category deleted successfully", field(body, "message"))

	status, _ = a.call(t, http.MethodDelete, "/api/categories/"+id, admin, nil)
	assert.Equal(t, http.StatusNotFound, status)
}

func TestBadPostID(t *testing.T) {
	a := newTestAPI(t, nil)

	status, body := a.call(t, http.MethodGet, "/api/blogs/abc", "", nil)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "invalid blogPostID", field(body, "error"))
}

func TestUploadImage(t *testing.T) {
	a := newTestAPI(t, nil)
	token := a.signup(t, "alice")

	var form bytes.Buffer
	writer := multipart.NewWriter(&form)
	part, err := writer.CreateFormFile("image", "cover.png")
	require.NoError(t, err)
	_, err = part.Write(append([]byte("\x89PNG\r\n\x1a\n"), make([]byte, 64)...))
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	req, err := http.NewRequest(http.MethodPost, a.server.URL+"/api/blogs/upload-image", &form)
	require.NoError(t, err)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)

	status, body := a.do(t, req)
	require.Equal(t, http.StatusCreated, status)

	imageURL := field(body, "image_url").(string)
	assert.True(t, strings.HasPrefix(imageURL, "https://cdn.example.com/blog-images/"), imageURL)
	assert.True(t, strings.HasSuffix(imageURL, ".png"), imageURL)
	require.Len(t, a.putter.keys, 1)
	assert.True(t, strings.HasSuffix(imageURL, a.putter.keys[0]))
}

func TestCORSPreflight(t *testing.T) {
	a := newTestAPI(t, map[string]string{"ACCEPTED_ORIGINS": "https://blog.example.com"})

	preflight := func(origin string) *http.Response {
		req, err := http.NewRequest(http.MethodOptions, a.server.URL+"/api/blogs/create", nil)
		require.NoError(t, err)
		req.Header.Set("Origin", origin)
		req.Header.Set("Access-Control-Request-Method", http.MethodPost)
		resp, err := a.server.Client().Do(req)
		require.NoError(t, err)
		t.Cleanup(func() { _ = resp.Body.Close() })
		return resp
	}

	resp := preflight("https://blog.example.com")
	assert.Equal(t, "https://blog.example.com", resp.Header.Get("Access-Control-Allow-Origin"))

	resp = preflight("https://evil.example.com")
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	assert.Empty(t, resp.Header.Get("Access-Control-Allow-Origin"))
}

func TestHealth(t *testing.T) {
	a := newTestAPI(t, nil)

	status, body := a.call(t, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "ok", field(body, "status"))
	assert.Equal(t, "ok", field(body, "database"))
	assert.NotEmpty(t, field(body, "uptime"))
}

func TestPanicRecovery(t *testing.T) {
	handler := LogInternalServerErrors(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "application/json; charset=utf-8", rec.Header().Get("Content-Type"))

	var body ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "error", body.Status)
	assert.Equal(t, "Internal Server Error", body.Error)
}
