package server

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/asknotes/asknotes/internal/models"
	"github.com/asknotes/asknotes/internal/types"
	"github.com/asknotes/asknotes/pkg/assistant"
	"github.com/asknotes/asknotes/pkg/ingest"
	"github.com/asknotes/asknotes/pkg/retriever"
	"github.com/asknotes/asknotes/pkg/store"
)

type stubGenerator struct {
	response string
	err      error
	calls    int
}

func (g *stubGenerator) Generate(ctx context.Context, system, user string, opts types.GenerateOptions) (string, error) {
	g.calls++
	return g.response, g.err
}

func (g *stubGenerator) GenerateChat(ctx context.Context, system string, history []models.Turn, message string, opts types.GenerateOptions) (string, error) {
	g.calls++
	return g.response, g.err
}

func newTestServer(t *testing.T, gen types.Generator, chunks []models.Chunk) (*Server, *store.MemoryStore) {
	t.Helper()

	st := store.NewMemoryStore()
	if len(chunks) > 0 {
		require.NoError(t, st.AddChunks(context.Background(), "file-1", chunks))
	}

	a := assistant.NewWithConfig(assistant.AssistantConfig{}, gen, st, retriever.NewWithConfig(retriever.RetrieverConfig{}))
	ing := ingest.NewWithConfig(ingest.IngesterConfig{}, st, nil)
	return New(a, ing), st
}

func TestHealth(t *testing.T) {
	srv, _ := newTestServer(t, &stubGenerator{}, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "ok")
}

func TestChatGroundedAnswer(t *testing.T) {
	gen := &stubGenerator{response: `{"answer":"Mitosis is cell division.","confidence":"high"}`}
	chunks := []models.Chunk{
		{FileName: "bio.txt", PageNumber: 1, ChunkIndex: 0, Text: "Mitosis is the process by which a cell divides."},
	}
	srv, _ := newTestServer(t, gen, chunks)

	body := strings.NewReader(`{"subject":"biology","message":"What is mitosis?"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/chat", body)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var answer models.StructuredAnswer
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &answer))
	assert.Equal(t, "Mitosis is cell division.", answer.Answer)
	assert.Equal(t, 1, gen.calls)
}

func TestChatEmptyStoreReturnsSentinel(t *testing.T) {
	gen := &stubGenerator{}
	srv, _ := newTestServer(t, gen, nil)

	body := strings.NewReader(`{"subject":"biology","message":"What is mitosis?"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/chat", body)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var answer models.StructuredAnswer
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &answer))
	assert.True(t, answer.NotFound())
	assert.Equal(t, 0, gen.calls, "insufficient context must not reach the model")
}

func TestChatRequiresMessage(t *testing.T) {
	srv, _ := newTestServer(t, &stubGenerator{}, nil)

	body := strings.NewReader(`{"subject":"biology"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/chat", body)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestChatRejectsGet(t *testing.T) {
	srv, _ := newTestServer(t, &stubGenerator{}, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/chat", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestChatMalformedModelOutput(t *testing.T) {
	gen := &stubGenerator{response: "this is not json at all"}
	chunks := []models.Chunk{
		{FileName: "bio.txt", PageNumber: 1, ChunkIndex: 0, Text: "Mitosis is the process by which a cell divides."},
	}
	srv, _ := newTestServer(t, gen, chunks)

	body := strings.NewReader(`{"subject":"biology","message":"What is mitosis?"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/chat", body)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadGateway, rec.Code)
}

func TestUploadTextFile(t *testing.T) {
	srv, st := newTestServer(t, &stubGenerator{}, nil)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", "notes.txt")
	require.NoError(t, err)
	_, err = fw.Write([]byte("The mitochondria is the powerhouse of the cell."))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/upload", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var result ingest.FileResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.Equal(t, "notes.txt", result.FileName)
	assert.Equal(t, 1, result.ChunkCount)
	assert.NotEmpty(t, result.FileID)

	// The stored chunks must carry the uploaded filename, not the
	// server-side spool name, or citations point at a file the user
	// has never heard of.
	chunks, err := st.ListChunks(context.Background())
	require.NoError(t, err)
	require.Len(t, chunks, 1)
	assert.Equal(t, "notes.txt", chunks[0].FileName)
}

func TestUploadEmptyFileRejected(t *testing.T) {
	srv, _ := newTestServer(t, &stubGenerator{}, nil)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	_, err := mw.CreateFormFile("file", "empty.txt")
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/upload", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGradeLocalMCQs(t *testing.T) {
	srv, _ := newTestServer(t, &stubGenerator{}, nil)

	exam := models.Exam{
		MCQs: []models.MCQ{
			{ID: "m1", Question: "Q1", Options: map[string]string{"A": "x", "B": "y"}, CorrectOption: "A"},
			{ID: "m2", Question: "Q2", Options: map[string]string{"A": "x", "B": "y"}, CorrectOption: "B"},
		},
	}
	payload, err := json.Marshal(map[string]any{
		"exam":    exam,
		"answers": map[string]string{"m1": "A", "m2": "A"},
	})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/grade", bytes.NewReader(payload))
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var result models.ExamResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.Equal(t, 1, result.MCQCorrect)
	assert.Equal(t, 2, result.MCQTotal)
}

func TestGradeRequiresExam(t *testing.T) {
	srv, _ := newTestServer(t, &stubGenerator{}, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/grade", strings.NewReader(`{"answers":{}}`))
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
