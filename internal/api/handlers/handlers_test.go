package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"resume-parser/internal/background"
	"resume-parser/internal/config"
	"resume-parser/internal/converter"
	"resume-parser/internal/llm"
	"resume-parser/internal/resume"
	"resume-parser/pkg/models"
)

type mockResumeService struct {
	mock.Mock
}

func (m *mockResumeService) ConvertDocument(ctx context.Context, content []byte, filename string) (string, error) {
	args := m.Called(ctx, content, filename)
	return args.String(0), args.Error(1)
}

func (m *mockResumeService) ParseResumeToJSON(ctx context.Context, markdown string) (*models.ResumeData, error) {
	args := m.Called(ctx, markdown)
	data, _ := args.Get(0).(*models.ResumeData)
	return data, args.Error(1)
}

func (m *mockResumeService) ParseResume(ctx context.Context, content []byte, filename string) (*resume.Result, error) {
	args := m.Called(ctx, content, filename)
	result, _ := args.Get(0).(*resume.Result)
	return result, args.Error(1)
}

type fakeProvider struct {
	healthy bool
}

func (f fakeProvider) IsHealthy() bool         { return f.healthy }
func (f fakeProvider) GetProviderName() string { return "claude" }

func multipartBody(t *testing.T, field, filename string, content []byte) (*bytes.Buffer, string) {
	t.Helper()

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile(field, filename)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, writer.Close())
	return body, writer.FormDataContentType()
}

func uploadContext(t *testing.T, target, filename string, content []byte) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()

	body, contentType := multipartBody(t, "file", filename, content)
	req := httptest.NewRequest(http.MethodPost, target, body)
	req.Header.Set(echo.HeaderContentType, contentType)
	rec := httptest.NewRecorder()
	c := echo.New().NewContext(req, rec)
	c.Set("request_id", "req-1")
	return c, rec
}

func sampleResume() *models.ResumeData {
	return &models.ResumeData{
		PersonalInfo:     models.PersonalInfo{Name: "Jane Doe", Email: "jane@example.com"},
		WorkExperience:   []models.Experience{{ID: 1, Title: "Engineer", Company: "Acme", Description: []string{}}},
		Education:        []models.Education{},
		PersonalProjects: []models.Project{},
		SectionMeta:      []models.SectionMeta{},
		CustomSections:   map[string]models.CustomSection{},
	}
}

func TestParseResumeHandler(t *testing.T) {
	svc := &mockResumeService{}
	svc.On("ParseResume", mock.Anything, []byte("%PDF-1.4"), "cv.pdf").
		Return(&resume.Result{Markdown: "# Jane Doe", Resume: sampleResume()}, nil)

	c, rec := uploadContext(t, "/api/v1/resume/parse?include_markdown=true", "cv.pdf", []byte("%PDF-1.4"))
	require.NoError(t, ParseResumeHandler(config.Default(), svc)(c))

	assert.Equal(t, http.StatusOK, rec.Code)

	var response models.ParseResumeResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &response))
	assert.True(t, response.Success)
	assert.Equal(t, "req-1", response.RequestID)
	assert.Equal(t, "# Jane Doe", response.Markdown)
	assert.Equal(t, "Jane Doe", response.Resume.PersonalInfo.Name)
	assert.Contains(t, rec.Body.String(), `"education":[]`)
	svc.AssertExpectations(t)
}

func TestParseResumeHandler_OmitsMarkdownByDefault(t *testing.T) {
	svc := &mockResumeService{}
	svc.On("ParseResume", mock.Anything, mock.Anything, "cv.docx").
		Return(&resume.Result{Markdown: "# Jane Doe", Resume: sampleResume()}, nil)

	c, rec := uploadContext(t, "/api/v1/resume/parse", "cv.docx", []byte("PK"))
	require.NoError(t, ParseResumeHandler(config.Default(), svc)(c))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotContains(t, rec.Body.String(), `"markdown"`)
}

func TestParseResumeHandler_ErrorMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{name: "unsupported format", err: fmt.Errorf("%w: .exe", converter.ErrUnsupportedFormat), wantStatus: http.StatusUnsupportedMediaType, wantCode: "unsupported_media_type"},
		{name: "empty document", err: converter.ErrEmptyDocument, wantStatus: http.StatusUnprocessableEntity, wantCode: "unprocessable_entity"},
		{name: "schema validation", err: fmt.Errorf("%w: sectionMeta[0].key is required", resume.ErrSchemaValidation), wantStatus: http.StatusBadGateway, wantCode: "bad_gateway"},
		{name: "invalid json", err: fmt.Errorf("resume extraction failed: %w", llm.ErrInvalidJSON), wantStatus: http.StatusBadGateway, wantCode: "bad_gateway"},
		{name: "provider unavailable", err: llm.ErrProviderUnavailable, wantStatus: http.StatusServiceUnavailable, wantCode: "service_unavailable"},
		{name: "deadline", err: context.DeadlineExceeded, wantStatus: http.StatusRequestTimeout, wantCode: "request_timeout"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &mockResumeService{}
			svc.On("ParseResume", mock.Anything, mock.Anything, mock.Anything).Return(nil, tt.err)

			c, rec := uploadContext(t, "/api/v1/resume/parse", "cv.pdf", []byte("%PDF"))
			require.NoError(t, ParseResumeHandler(config.Default(), svc)(c))

			assert.Equal(t, tt.wantStatus, rec.Code)

			var response models.ErrorResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &response))
			assert.Equal(t, tt.wantCode, response.Error)
			assert.Equal(t, "req-1", response.RequestID)
		})
	}
}

func TestParseResumeHandler_UploadValidation(t *testing.T) {
	svc := &mockResumeService{}
	cfg := config.Default()
	cfg.Parser.MaxUploadBytes = 8

	t.Run("missing file field", func(t *testing.T) {
		body, contentType := multipartBody(t, "document", "cv.pdf", []byte("%PDF"))
		req := httptest.NewRequest(http.MethodPost, "/api/v1/resume/parse", body)
		req.Header.Set(echo.HeaderContentType, contentType)
		rec := httptest.NewRecorder()
		c := echo.New().NewContext(req, rec)

		require.NoError(t, ParseResumeHandler(cfg, svc)(c))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("too large", func(t *testing.T) {
		c, rec := uploadContext(t, "/api/v1/resume/parse", "cv.pdf", []byte("0123456789"))
		require.NoError(t, ParseResumeHandler(cfg, svc)(c))
		assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
	})

	t.Run("empty file", func(t *testing.T) {
		c, rec := uploadContext(t, "/api/v1/resume/parse", "cv.pdf", []byte{})
		require.NoError(t, ParseResumeHandler(cfg, svc)(c))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	svc.AssertNotCalled(t, "ParseResume", mock.Anything, mock.Anything, mock.Anything)
}

func TestConvertDocumentHandler(t *testing.T) {
	svc := &mockResumeService{}
	svc.On("ConvertDocument", mock.Anything, []byte("Jane Doe"), "cv.txt").Return("Jane Doe", nil)

	c, rec := uploadContext(t, "/api/v1/documents/convert", "cv.txt", []byte("Jane Doe"))
	require.NoError(t, ConvertDocumentHandler(config.Default(), svc)(c))

	assert.Equal(t, http.StatusOK, rec.Code)

	var response models.ConvertResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &response))
	assert.Equal(t, "Jane Doe", response.Markdown)
	assert.Equal(t, ".txt", response.Format)
}

func TestExtractResumeHandler(t *testing.T) {
	svc := &mockResumeService{}
	svc.On("ParseResumeToJSON", mock.Anything, "# Jane Doe").Return(sampleResume(), nil)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/resume/extract", strings.NewReader(`{"markdown":"# Jane Doe"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := echo.New().NewContext(req, rec)

	require.NoError(t, ExtractResumeHandler(svc)(c))
	assert.Equal(t, http.StatusOK, rec.Code)

	var response models.ExtractResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &response))
	assert.Equal(t, "Acme", response.Resume.WorkExperience[0].Company)
}

func TestExtractResumeHandler_RequiresMarkdown(t *testing.T) {
	svc := &mockResumeService{}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/resume/extract", strings.NewReader(`{"markdown":""}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := echo.New().NewContext(req, rec)

	require.NoError(t, ExtractResumeHandler(svc)(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	svc.AssertNotCalled(t, "ParseResumeToJSON", mock.Anything, mock.Anything)
}

type stubParser struct{}

func (stubParser) ParseResume(ctx context.Context, content []byte, filename string) (*resume.Result, error) {
	return &resume.Result{Markdown: string(content), Resume: sampleResume()}, nil
}

func TestAsyncParseAndTaskStatus(t *testing.T) {
	cfg := config.Default()
	cfg.Workers.PoolSize = 1
	tm := background.NewTaskManager(cfg, stubParser{}, nil)
	require.NoError(t, tm.Start(context.Background()))
	defer tm.Stop(context.Background())

	c, rec := uploadContext(t, "/api/v1/resume/parse/async", "cv.md", []byte("# Jane Doe"))
	require.NoError(t, ParseResumeAsyncHandler(cfg, tm)(c))
	require.Equal(t, http.StatusAccepted, rec.Code)

	var accepted models.AsyncParseResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &accepted))
	assert.Equal(t, models.AsyncStatusAccepted, accepted.Status)
	assert.Regexp(t, `^parse_[a-f0-9]{32}$`, accepted.ProcessID)
	assert.Equal(t, "/api/v1/tasks/"+accepted.ProcessID, accepted.StatusURL)

	var status models.AsyncTaskStatusResponse
	require.Eventually(t, func() bool {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/tasks/"+accepted.ProcessID, nil)
		rec := httptest.NewRecorder()
		c := echo.New().NewContext(req, rec)
		c.SetParamNames("processId")
		c.SetParamValues(accepted.ProcessID)
		if err := TaskStatusHandler(tm)(c); err != nil || rec.Code != http.StatusOK {
			return false
		}
		status = models.AsyncTaskStatusResponse{}
		if err := json.Unmarshal(rec.Body.Bytes(), &status); err != nil {
			return false
		}
		return status.IsCompleted()
	}, 2*time.Second, 10*time.Millisecond)

	assert.Equal(t, models.AsyncStatusSuccess, status.Status)
	require.NotNil(t, status.ProcessingTimeMs)
	data, ok := status.Data.(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "cv.md", data["filename"])
}

func TestTaskStatusHandler_NotFoundAndMalformed(t *testing.T) {
	tm := background.NewTaskManager(config.Default(), stubParser{}, nil)

	tests := []struct {
		processID  string
		wantStatus int
	}{
		{processID: "parse_0123456789abcdef0123456789abcdef", wantStatus: http.StatusNotFound},
		{processID: "../../etc/passwd", wantStatus: http.StatusBadRequest},
	}

	for _, tt := range tests {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/tasks/x", nil)
		rec := httptest.NewRecorder()
		c := echo.New().NewContext(req, rec)
		c.SetParamNames("processId")
		c.SetParamValues(tt.processID)

		require.NoError(t, TaskStatusHandler(tm)(c))
		assert.Equal(t, tt.wantStatus, rec.Code, tt.processID)
	}
}

func TestParseResumeAsyncHandler_NotRunning(t *testing.T) {
	tm := background.NewTaskManager(config.Default(), stubParser{}, nil)

	c, rec := uploadContext(t, "/api/v1/resume/parse/async", "cv.md", []byte("# Jane Doe"))
	require.NoError(t, ParseResumeAsyncHandler(config.Default(), tm)(c))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestReadinessHandler(t *testing.T) {
	tm := background.NewTaskManager(config.Default(), stubParser{}, nil)
	require.NoError(t, tm.Start(context.Background()))
	defer tm.Stop(context.Background())

	run := func(provider ProviderStatus) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/health/ready", nil)
		rec := httptest.NewRecorder()
		require.NoError(t, ReadinessHandler(provider, tm)(echo.New().NewContext(req, rec)))
		return rec
	}

	assert.Equal(t, http.StatusOK, run(fakeProvider{healthy: true}).Code)

	rec := run(fakeProvider{healthy: false})
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), `"llm":"unavailable"`)
}
