package api_test

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/base64"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/Aquabet/webapp/internal/api"
	"github.com/Aquabet/webapp/internal/metrics"
	"github.com/Aquabet/webapp/internal/model"
	"github.com/Aquabet/webapp/internal/service"
)

// in-memory collaborators backing a fully wired fiber app

type memUserRepo struct {
	byEmail map[string]*model.User
	pingErr error
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{byEmail: make(map[string]*model.User)}
}

func (r *memUserRepo) Create(ctx context.Context, user *model.User) error {
	u := *user
	r.byEmail[user.Email] = &u
	return nil
}

func (r *memUserRepo) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	u, ok := r.byEmail[email]
	if !ok {
		return nil, sql.ErrNoRows
	}
	cp := *u
	return &cp, nil
}

func (r *memUserRepo) FindByVerificationToken(ctx context.Context, token string) (*model.User, error) {
	for _, u := range r.byEmail {
		if u.VerificationToken != nil && *u.VerificationToken == token {
			cp := *u
			return &cp, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (r *memUserRepo) Update(ctx context.Context, user *model.User) error {
	if _, ok := r.byEmail[user.Email]; !ok {
		return sql.ErrNoRows
	}
	cp := *user
	r.byEmail[user.Email] = &cp
	return nil
}

func (r *memUserRepo) Ping(ctx context.Context) error {
	return r.pingErr
}

type memImageRepo struct {
	byUser map[uuid.UUID]*model.Image
}

func newMemImageRepo() *memImageRepo {
	return &memImageRepo{byUser: make(map[uuid.UUID]*model.Image)}
}

func (r *memImageRepo) FindByUserID(ctx context.Context, userID uuid.UUID) (*model.Image, error) {
	img, ok := r.byUser[userID]
	if !ok {
		return nil, sql.ErrNoRows
	}
	cp := *img
	return &cp, nil
}

func (r *memImageRepo) Replace(ctx context.Context, image *model.Image) error {
	cp := *image
	r.byUser[image.UserID] = &cp
	return nil
}

func (r *memImageRepo) Delete(ctx context.Context, userID uuid.UUID) error {
	delete(r.byUser, userID)
	return nil
}

type memBlob struct {
	objects   map[string]string
	deleteErr error
	putErr    error
}

func newMemBlob() *memBlob {
	return &memBlob{objects: make(map[string]string)}
}

func (b *memBlob) Put(ctx context.Context, key string, body io.Reader, contentType string) error {
	if b.putErr != nil {
		return b.putErr
	}
	data, err := io.ReadAll(body)
	if err != nil {
		return err
	}
	b.objects[key] = string(data)
	return nil
}

func (b *memBlob) Delete(ctx context.Context, key string) error {
	if b.deleteErr != nil {
		return b.deleteErr
	}
	delete(b.objects, key)
	return nil
}

func (b *memBlob) ObjectURL(key string) string {
	return "http://s3.local/bucket/" + key
}

func (b *memBlob) KeyFromURL(url string) string {
	return strings.TrimPrefix(url, "http://s3.local/bucket/")
}

type memPublisher struct {
	sent int
	err  error
}

func (p *memPublisher) PublishVerification(ctx context.Context, email, token string) error {
	if p.err != nil {
		return p.err
	}
	p.sent++
	return nil
}

type testEnv struct {
	app    *fiber.App
	users  *memUserRepo
	images *memImageRepo
	blob   *memBlob
	pub    *memPublisher
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	users := newMemUserRepo()
	images := newMemImageRepo()
	blob := newMemBlob()
	pub := &memPublisher{}
	m := metrics.NewNoop()

	userSvc := service.NewUserService(users, pub, m)
	picSvc := service.NewPictureService(images, blob, m)
	app := api.NewRouter(userSvc, picSvc, users, m)

	return &testEnv{app: app, users: users, images: images, blob: blob, pub: pub}
}

func basicAuth(email, password string) string {
	return "Basic " + base64.StdEncoding.EncodeToString([]byte(email+":"+password))
}

func jsonRequest(method, target, body string) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	return req
}

// register posts a user and returns the response.
func (e *testEnv) register(t *testing.T, email, password, firstName, lastName string) *http.Response {
	t.Helper()
	payload, err := json.Marshal(fiber.Map{
		"email":      email,
		"password":   password,
		"first_name": firstName,
		"last_name":  lastName,
	})
	require.NoError(t, err)

	res, err := e.app.Test(jsonRequest(fiber.MethodPost, "/v1/user", string(payload)))
	require.NoError(t, err)
	return res
}

// verify walks the stored token through the verification endpoint.
func (e *testEnv) verify(t *testing.T, email string) {
	t.Helper()
	u, ok := e.users.byEmail[email]
	require.True(t, ok, "user %s not registered", email)
	require.NotNil(t, u.VerificationToken)

	res, err := e.app.Test(httptest.NewRequest(fiber.MethodGet, "/v1/user/verify?token="+*u.VerificationToken, nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, res.StatusCode)
}

func (e *testEnv) registerVerified(t *testing.T, email, password string) {
	t.Helper()
	res := e.register(t, email, password, "Test", "User")
	require.Equal(t, fiber.StatusCreated, res.StatusCode)
	e.verify(t, email)
}

func decodeBody(t *testing.T, res *http.Response) map[string]any {
	t.Helper()
	data, err := io.ReadAll(res.Body)
	require.NoError(t, err)
	var body map[string]any
	require.NoError(t, json.Unmarshal(data, &body))
	return body
}

func multipartPicture(t *testing.T, field, fileName, content string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreateFormFile(field, fileName)
	require.NoError(t, err)
	_, err = part.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, w.Close())
	return &buf, w.FormDataContentType()
}

func requireCacheHeaders(t *testing.T, res *http.Response) {
	t.Helper()
	require.Equal(t, "no-cache, no-store, must-revalidate", res.Header.Get("Cache-Control"))
	require.Equal(t, "no-cache", res.Header.Get("Pragma"))
}
