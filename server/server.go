package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"path/filepath"

	"github.com/gorilla/websocket"

	"github.com/asknotes/asknotes/internal/models"
	"github.com/asknotes/asknotes/pkg/assistant"
	"github.com/asknotes/asknotes/pkg/extract"
	"github.com/asknotes/asknotes/pkg/ingest"
	"github.com/asknotes/asknotes/pkg/llm"
)

const maxUploadBytes = 64 << 20

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Message is the envelope exchanged over the websocket connection.
type Message struct {
	Type    string `json:"type"`
	Subject string `json:"subject,omitempty"`
	Content string `json:"content,omitempty"`
}

type Server struct {
	assistant *assistant.Assistant
	ingester  ingest.Ingester
	mux       *http.ServeMux
}

func New(a *assistant.Assistant, ing ingest.Ingester) *Server {
	s := &Server{
		assistant: a,
		ingester:  ing,
		mux:       http.NewServeMux(),
	}

	s.mux.HandleFunc("/api/health", s.handleHealth)
	s.mux.HandleFunc("/api/upload", s.handleUpload)
	s.mux.HandleFunc("/api/chat", s.handleChat)
	s.mux.HandleFunc("/api/study", s.handleStudy)
	s.mux.HandleFunc("/api/exam", s.handleExam)
	s.mux.HandleFunc("/api/grade", s.handleGrade)
	s.mux.HandleFunc("/api/summarize-lecture", s.handleSummarizeLecture)
	s.mux.HandleFunc("/ws", s.handleWebSocket)

	return s
}

func (s *Server) Handler() http.Handler {
	return s.mux
}

func (s *Server) Start(addr string) error {
	log.Printf("Server starting on %s", addr)
	return http.ListenAndServe(addr, s.mux)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("invalid upload: %w", err))
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("missing file field: %w", err))
		return
	}
	defer file.Close()

	// The extractors work on paths, so spool the upload to a temp file
	// that keeps the original extension.
	tmp, err := os.CreateTemp("", "upload-*"+filepath.Ext(header.Filename))
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	defer os.Remove(tmp.Name())

	if _, err := io.Copy(tmp, file); err != nil {
		tmp.Close()
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	tmp.Close()

	// Ingest under the uploaded name, not the spool name, so stored
	// chunks and their citations identify the source document.
	result, err := s.ingester.IngestFileAs(r.Context(), tmp.Name(), header.Filename)
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req struct {
		Subject string `json:"subject"`
		Message string `json:"message"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("invalid request body: %w", err))
		return
	}
	if req.Message == "" {
		writeError(w, http.StatusBadRequest, errors.New("message is required"))
		return
	}

	answer, err := s.assistant.Ask(r.Context(), req.Subject, req.Message)
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}

	writeJSON(w, http.StatusOK, answer)
}

func (s *Server) handleStudy(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req struct {
		Subject string `json:"subject"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("invalid request body: %w", err))
		return
	}

	materials, err := s.assistant.GenerateStudyMaterials(r.Context(), req.Subject)
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}

	writeJSON(w, http.StatusOK, materials)
}

func (s *Server) handleExam(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req struct {
		Subject string `json:"subject"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("invalid request body: %w", err))
		return
	}

	exam, err := s.assistant.GenerateExam(r.Context(), req.Subject)
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}

	writeJSON(w, http.StatusOK, exam)
}

func (s *Server) handleGrade(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req struct {
		Exam    models.Exam       `json:"exam"`
		Answers map[string]string `json:"answers"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("invalid request body: %w", err))
		return
	}
	if len(req.Exam.MCQs) == 0 && len(req.Exam.Essays) == 0 {
		writeError(w, http.StatusBadRequest, errors.New("exam is required"))
		return
	}

	result, err := s.assistant.GradeExam(r.Context(), req.Exam, req.Answers)
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleSummarizeLecture(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req struct {
		Transcript string `json:"transcript"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("invalid request body: %w", err))
		return
	}

	summary, err := s.assistant.SummarizeLecture(r.Context(), req.Transcript)
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"summary": summary})
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("WebSocket upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	for {
		var msg Message
		if err := conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("WebSocket read error: %v", err)
			}
			return
		}

		switch msg.Type {
		case "chat":
			answer, err := s.assistant.Ask(r.Context(), msg.Subject, msg.Content)
			if err != nil {
				s.writeWSError(conn, err)
				continue
			}
			payload, _ := json.Marshal(answer)
			s.writeWS(conn, Message{Type: "answer", Subject: msg.Subject, Content: string(payload)})
		case "ping":
			s.writeWS(conn, Message{Type: "pong"})
		default:
			s.writeWSError(conn, fmt.Errorf("unknown message type %q", msg.Type))
		}
	}
}

func (s *Server) writeWS(conn *websocket.Conn, msg Message) {
	if err := conn.WriteJSON(msg); err != nil {
		log.Printf("WebSocket write error: %v", err)
	}
}

func (s *Server) writeWSError(conn *websocket.Conn, err error) {
	s.writeWS(conn, Message{Type: "error", Content: err.Error()})
}

// statusFor maps pipeline errors onto HTTP statuses. Grounded
// refusals are not errors and never reach this function.
func statusFor(err error) int {
	var formatErr *assistant.ResponseFormatError
	switch {
	case errors.Is(err, llm.ErrRateLimited):
		return http.StatusTooManyRequests
	case errors.Is(err, llm.ErrUnavailable), errors.As(err, &formatErr):
		return http.StatusBadGateway
	case errors.Is(err, extract.ErrExtractionEmpty), errors.Is(err, extract.ErrUnsupportedType):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("Failed to encode response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}
