package controllers_test

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"path"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"github.com/rmaalouf/melodeon_backend/controllers"
	"github.com/rmaalouf/melodeon_backend/middleware"
	"github.com/rmaalouf/melodeon_backend/repositories"
	"github.com/rmaalouf/melodeon_backend/routes"
	"github.com/rmaalouf/melodeon_backend/utils"
)

type testValidator struct {
	validator *validator.Validate
}

func (tv *testValidator) Validate(i interface{}) error {
	return tv.validator.Struct(i)
}

// fakeMediaStore records uploads and deletes; failures are switchable per test.
type fakeMediaStore struct {
	mu         sync.Mutex
	failUpload bool
	failDelete bool
	uploads    int
	deleted    []string
}

func (f *fakeMediaStore) Upload(ctx context.Context, filePath, filename, kind string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failUpload {
		return "", errors.New("upload refused")
	}
	f.uploads++
	return fmt.Sprintf("https://media.test/%s/upload/v1/asset-%d%s", kind, f.uploads, path.Ext(filename)), nil
}

func (f *fakeMediaStore) Delete(ctx context.Context, publicID, kind string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failDelete {
		return errors.New("delete refused")
	}
	f.deleted = append(f.deleted, publicID)
	return nil
}

func (f *fakeMediaStore) deletedIDs() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.deleted...)
}

type testEnv struct {
	e      *echo.Echo
	repo   *repositories.MemoryPostRepository
	media  *fakeMediaStore
	creds  *utils.CredentialStore
	tokens *utils.TokenService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	creds, err := utils.NewCredentialStore("admin", "correct-horse")
	if err != nil {
		t.Fatalf("credential store: %v", err)
	}
	tokens := utils.NewTokenService("test-secret", time.Hour)
	repo := repositories.NewMemoryPostRepository()
	media := &fakeMediaStore{}

	e := echo.New()
	e.Validator = &testValidator{validator: validator.New()}

	gate := middleware.NewAuthGate(tokens, creds)
	routes.RegisterAuthRoutes(e, controllers.NewAuthController(creds, tokens))
	routes.RegisterPostRoutes(e, controllers.NewPostController(repo, media), gate)

	return &testEnv{e: e, repo: repo, media: media, creds: creds, tokens: tokens}
}

func (env *testEnv) bearer(t *testing.T) string {
	t.Helper()
	token, err := env.tokens.Issue(env.creds.AdminID())
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}
	return "Bearer " + token
}

func (env *testEnv) do(req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	env.e.ServeHTTP(rec, req)
	return rec
}

type testFile struct {
	field       string
	name        string
	contentType string
	data        []byte
}

func multipartBody(t *testing.T, fields map[string][]string, files []testFile) (*bytes.Buffer, string) {
	t.Helper()

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	for key, values := range fields {
		for _, value := range values {
			if err := writer.WriteField(key, value); err != nil {
				t.Fatalf("write field %s: %v", key, err)
			}
		}
	}
	for _, file := range files {
		header := textproto.MIMEHeader{}
		header.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, file.field, file.name))
		header.Set("Content-Type", file.contentType)
		part, err := writer.CreatePart(header)
		if err != nil {
			t.Fatalf("create part: %v", err)
		}
		if _, err := part.Write(file.data); err != nil {
			t.Fatalf("write part: %v", err)
		}
	}
	writer.Close()

	return body, writer.FormDataContentType()
}

func jsonRequest(method, target, payload string) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(payload))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	return req
}
