package routes

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"resume-parser/internal/background"
	"resume-parser/internal/config"
	"resume-parser/internal/converter"
	"resume-parser/internal/llm"
	"resume-parser/internal/resume"
	"resume-parser/pkg/models"
)

type staticCompleter struct {
	response map[string]interface{}
}

func (s staticCompleter) CompleteJSON(ctx context.Context, req llm.CompletionRequest) (map[string]interface{}, error) {
	return s.response, nil
}

type staticSettings bool

func (s staticSettings) PreserveMonths() bool { return bool(s) }

type healthyProvider struct{}

func (healthyProvider) IsHealthy() bool         { return true }
func (healthyProvider) GetProviderName() string { return "claude" }

func newTestServer(t *testing.T, cfg *config.Config) *echo.Echo {
	t.Helper()

	conv := converter.NewService(cfg)
	svc := resume.NewServiceWithSettings(conv, staticCompleter{response: map[string]interface{}{
		"personalInfo": map[string]interface{}{"name": "Jane Doe"},
		"summary":      "Backend engineer",
	}}, staticSettings(false))

	tm := background.NewTaskManager(cfg, svc, nil)
	require.NoError(t, tm.Start(context.Background()))
	t.Cleanup(func() { tm.Stop(context.Background()) })

	e := echo.New()
	SetupRoutes(e, cfg, Dependencies{
		Resume:           svc,
		LLM:              healthyProvider{},
		Tasks:            tm,
		SupportedFormats: conv.SupportedExtensions(),
	})
	return e
}

func TestParseRouteEndToEnd(t *testing.T) {
	e := newTestServer(t, config.Default())

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile("file", "cv.md")
	require.NoError(t, err)
	_, err = part.Write([]byte("# Jane Doe\n\nBackend engineer"))
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/resume/parse", body)
	req.Header.Set(echo.HeaderContentType, writer.FormDataContentType())
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.NotEmpty(t, rec.Header().Get(echo.HeaderXRequestID))

	var response models.ParseResumeResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &response))
	assert.Equal(t, "Jane Doe", response.Resume.PersonalInfo.Name)
	assert.Equal(t, rec.Header().Get(echo.HeaderXRequestID), response.RequestID)
	assert.Contains(t, rec.Body.String(), `"workExperience":[]`)
}

func TestRequestIDIsPropagated(t *testing.T) {
	e := newTestServer(t, config.Default())

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set(echo.HeaderXRequestID, "caller-id")
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "caller-id", rec.Header().Get(echo.HeaderXRequestID))
}

func TestUploadCapRejectsLargeBodies(t *testing.T) {
	cfg := config.Default()
	cfg.Parser.MaxUploadBytes = 16
	e := newTestServer(t, cfg)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/resume/parse", strings.NewReader(strings.Repeat("x", 128<<10)))
	req.Header.Set(echo.HeaderContentType, "multipart/form-data; boundary=x")
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
}

func TestUnsupportedFormatRoute(t *testing.T) {
	e := newTestServer(t, config.Default())

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile("file", "cv.exe")
	require.NoError(t, err)
	_, err = part.Write([]byte("MZ"))
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/documents/convert", body)
	req.Header.Set(echo.HeaderContentType, writer.FormDataContentType())
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnsupportedMediaType, rec.Code)
}

func TestRootAndStatus(t *testing.T) {
	e := newTestServer(t, config.Default())

	for _, path := range []string{"/", "/status", "/health/live", "/health/ready"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code, path)
	}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	assert.Contains(t, rec.Body.String(), `".pdf"`)
	assert.Contains(t, rec.Body.String(), `".docx"`)
}
