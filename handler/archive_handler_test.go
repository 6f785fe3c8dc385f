package handler

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tieubaoca/docqa/logger"
	"github.com/tieubaoca/docqa/service"
	"github.com/tieubaoca/docqa/types"
)

// textConverter treats file contents as the document text; "corrupt" files fail.
type textConverter struct{}

func (textConverter) Convert(ctx context.Context, path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	if bytes.HasPrefix(data, []byte("corrupt")) {
		return "", errors.New("unreadable document")
	}
	return string(data), nil
}

type stubAI struct {
	reply string
	err   error
	calls int
}

func (s *stubAI) Answer(ctx context.Context, prompt string) (string, error) {
	s.calls++
	return s.reply, s.err
}

func (s *stubAI) Provider() string { return "stub" }

func (s *stubAI) Model() string { return "stub-model" }

func newTestRouter(t *testing.T, ai *stubAI, maxUpload int64) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	log := logger.Discard()
	documentService := service.NewDocumentService(
		service.NewArchiveService(service.ArchiveServiceConfig{ScratchDir: t.TempDir()}, log),
		service.NewExtractService(map[string]service.DocumentConverter{".pdf": textConverter{}}, nil, 50, log),
		ai,
		types.DocumentServiceConfig{MaxContextChars: 5000, Instruction: "Answer from the documents."},
		time.Second,
		log,
	)
	return NewRouter(documentService, maxUpload, log)
}

func zipOf(t *testing.T, files map[string]string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for name, body := range files {
		w, err := zw.Create(name)
		require.NoError(t, err)
		_, err = w.Write([]byte(body))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

func multipartRequest(t *testing.T, path string, archive []byte, fields map[string]string) *http.Request {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	if archive != nil {
		fw, err := mw.CreateFormFile(types.FormFieldFile, "upload.zip")
		require.NoError(t, err)
		_, err = fw.Write(archive)
		require.NoError(t, err)
	}
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, path, &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

type envelope struct {
	Status  string          `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func decode(t *testing.T, w *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	return env
}

func TestHandleExtract(t *testing.T) {
	router := newTestRouter(t, &stubAI{}, 0)
	archive := zipOf(t, map[string]string{
		"a.pdf":       "alpha text",
		"dir/b.pdf":   "beta text",
		"bad.pdf":     "corrupt",
		"picture.png": "png",
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, multipartRequest(t, "/api/v1/archives/extract", archive, nil))

	require.Equal(t, http.StatusOK, w.Code)
	env := decode(t, w)
	assert.Equal(t, types.ResponseStatusSuccess, env.Status)

	var ingestion types.IngestionResult
	require.NoError(t, json.Unmarshal(env.Data, &ingestion))
	assert.Equal(t, 3, ingestion.DocumentCount)
	assert.Equal(t, 2, ingestion.SucceededCount)
	assert.Equal(t, 1, ingestion.FailedCount)
	assert.Equal(t, 1, ingestion.SkippedFiles)
	require.Len(t, ingestion.Documents, 3)
	assert.Equal(t, "a.pdf", ingestion.Documents[0].Path)
	assert.Equal(t, "bad.pdf", ingestion.Documents[1].Path)
	assert.Contains(t, ingestion.Documents[1].Error, "failed to process bad.pdf")
	assert.Equal(t, "dir/b.pdf", ingestion.Documents[2].Path)
	assert.NotContains(t, w.Body.String(), `"corpus"`)
}

func TestHandleExtract_BadInput(t *testing.T) {
	tests := []struct {
		name     string
		archive  []byte
		wantCode int
	}{
		{name: "missing file", archive: nil, wantCode: http.StatusBadRequest},
		{name: "not a zip", archive: []byte("plain text"), wantCode: http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := newTestRouter(t, &stubAI{}, 0)
			w := httptest.NewRecorder()
			router.ServeHTTP(w, multipartRequest(t, "/api/v1/archives/extract", tt.archive, nil))
			assert.Equal(t, tt.wantCode, w.Code)
			assert.Equal(t, types.ResponseStatusError, decode(t, w).Status)
		})
	}
}

func TestHandleExtract_TooLarge(t *testing.T) {
	router := newTestRouter(t, &stubAI{}, 64)
	archive := zipOf(t, map[string]string{"a.pdf": strings.Repeat("x", 1024)})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, multipartRequest(t, "/api/v1/archives/extract", archive, nil))
	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
}

func TestHandleExtractStream(t *testing.T) {
	router := newTestRouter(t, &stubAI{}, 0)
	archive := zipOf(t, map[string]string{"a.pdf": "alpha", "b.pdf": "beta"})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, multipartRequest(t, "/api/v1/archives/extract/stream", archive, nil))

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "text/event-stream")
	body := w.Body.String()
	assert.Equal(t, 2, strings.Count(body, "event:"+types.EventDocument))
	assert.Equal(t, 1, strings.Count(body, "event:"+types.EventSummary))
	assert.Less(t, strings.Index(body, `"path":"a.pdf"`), strings.Index(body, `"path":"b.pdf"`))
	assert.Less(t, strings.LastIndex(body, "event:"+types.EventDocument), strings.Index(body, "event:"+types.EventSummary))
}

func TestHandleAsk(t *testing.T) {
	ai := &stubAI{reply: "The beam is **300mm** deep."}
	router := newTestRouter(t, ai, 0)
	archive := zipOf(t, map[string]string{"beams.pdf": "beam depth 300mm"})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, multipartRequest(t, "/api/v1/archives/ask", archive, map[string]string{
		types.FormFieldQuestion: "How deep is the beam?",
	}))

	require.Equal(t, http.StatusOK, w.Code)
	var resp types.AskResponse
	require.NoError(t, json.Unmarshal(decode(t, w).Data, &resp))
	require.NotNil(t, resp.Answer)
	assert.Equal(t, "The beam is **300mm** deep.", resp.Answer.Answer)
	assert.Contains(t, resp.Answer.AnswerHTML, "<strong>300mm</strong>")
	assert.Equal(t, "stub", resp.Answer.Provider)
	assert.Equal(t, 1, resp.Ingestion.SucceededCount)
	assert.Equal(t, 1, ai.calls)
}

func TestHandleAsk_EmptyQuestion(t *testing.T) {
	ai := &stubAI{reply: "unused"}
	router := newTestRouter(t, ai, 0)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, multipartRequest(t, "/api/v1/archives/ask", zipOf(t, map[string]string{"a.pdf": "a"}), map[string]string{
		types.FormFieldQuestion: "  ",
	}))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Zero(t, ai.calls)
}

func TestHandleAsk_NoText(t *testing.T) {
	ai := &stubAI{reply: "unused"}
	router := newTestRouter(t, ai, 0)
	archive := zipOf(t, map[string]string{"scan.pdf": "   "})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, multipartRequest(t, "/api/v1/archives/ask", archive, map[string]string{
		types.FormFieldQuestion: "What is shown?",
	}))

	require.Equal(t, http.StatusOK, w.Code)
	var resp types.AskResponse
	require.NoError(t, json.Unmarshal(decode(t, w).Data, &resp))
	assert.True(t, resp.Ingestion.EmptyCorpus)
	assert.Equal(t, service.NoContextWarning, resp.Answer.Warning)
	assert.Zero(t, ai.calls)
}

func TestHandleAsk_RemoteFailure(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode int
	}{
		{
			name:     "auth failure",
			err:      &service.RemoteServiceError{Provider: "stub", Model: "stub-model", StatusCode: 401, ErrorType: "invalid_request_error", Err: errors.New("bad key")},
			wantCode: http.StatusBadGateway,
		},
		{
			name:     "timeout",
			err:      &service.RemoteServiceError{Provider: "stub", Model: "stub-model", Timeout: true, Err: context.DeadlineExceeded},
			wantCode: http.StatusGatewayTimeout,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := newTestRouter(t, &stubAI{err: tt.err}, 0)
			archive := zipOf(t, map[string]string{"a.pdf": "alpha"})

			w := httptest.NewRecorder()
			router.ServeHTTP(w, multipartRequest(t, "/api/v1/archives/ask", archive, map[string]string{
				types.FormFieldQuestion: "Anything?",
			}))

			require.Equal(t, tt.wantCode, w.Code)
			env := decode(t, w)
			assert.Equal(t, types.ResponseStatusError, env.Status)
			var detail types.RemoteErrorResponse
			require.NoError(t, json.Unmarshal(env.Data, &detail))
			assert.Equal(t, "stub", detail.Provider)
			assert.NotNil(t, detail.Ingestion)
			assert.Contains(t, detail.Detail, "RemoteServiceError")
		})
	}
}

func TestHealthAndIndex(t *testing.T) {
	router := newTestRouter(t, &stubAI{}, 0)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	require.Equal(t, http.StatusOK, w.Code)
	var health types.HealthResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &health))
	assert.Equal(t, "ok", health.Status)
	assert.Equal(t, "stub-model", health.Model)

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "<form")
}

func TestCorsPreflight(t *testing.T) {
	router := newTestRouter(t, &stubAI{}, 0)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodOptions, "/api/v1/archives/ask", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestHandleExtractStream_InvalidArchive(t *testing.T) {
	router := newTestRouter(t, &stubAI{}, 0)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, multipartRequest(t, "/api/v1/archives/extract/stream", []byte("not a zip"), nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, types.ResponseStatusError, decode(t, w).Status)
}
