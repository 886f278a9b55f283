package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/rs/cors"

	"github.com/bellmemo/bell-memo/internal/constants"
	interrors "github.com/bellmemo/bell-memo/internal/errors"
	"github.com/bellmemo/bell-memo/internal/logger"
	"github.com/bellmemo/bell-memo/internal/models"
	"github.com/bellmemo/bell-memo/internal/search"
	"github.com/bellmemo/bell-memo/internal/services"
)

type APIServer struct {
	svc     *services.Services
	version string
	server  *http.Server
}

type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// MemoRequest is the wire form of a memo. A missing id is generated.
type MemoRequest struct {
	ID      *uuid.UUID `json:"id,omitempty"`
	Title   *string    `json:"title"`
	Content *string    `json:"content"`
	Created *int64     `json:"created"`
	Updated *int64     `json:"updated"`
}

func (r MemoRequest) toMemo() *models.Memo {
	memo := &models.Memo{
		Title:   r.Title,
		Content: r.Content,
		Created: r.Created,
		Updated: r.Updated,
	}
	if r.ID != nil {
		memo.ID = *r.ID
	} else {
		memo.ID = uuid.New()
	}
	return memo
}

type SearchResponse struct {
	Query   string `json:"query"`
	Handled bool   `json:"handled"`
}

func NewAPIServer(svc *services.Services, version string) *APIServer {
	return &APIServer{svc: svc, version: version}
}

// Handler returns the routed, CORS-wrapped handler
func (s *APIServer) Handler() http.Handler {
	router := mux.NewRouter()
	router.Use(logRequests)

	api := router.PathPrefix("/api/v1").Subrouter()
	api.HandleFunc("/health", s.handleHealth).Methods("GET")
	api.HandleFunc("/memos", s.handleListMemos).Methods("GET")
	api.HandleFunc("/memos", s.handleInsertMemos).Methods("POST")
	api.HandleFunc("/memos/{id}", s.handleGetMemo).Methods("GET")
	api.HandleFunc("/search", s.handleSearchQuery).Methods("GET")
	api.HandleFunc("/search", s.handleSearchIntent).Methods("POST")

	c := cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"*"},
		MaxAge:         86400,
	})
	return c.Handler(router)
}

func (s *APIServer) Start(addr string) error {
	s.server = &http.Server{
		Addr:         addr,
		Handler:      s.Handler(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	logger.Info("Starting HTTP API server on %s", addr)
	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *APIServer) Stop() error {
	if s.server == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.server.Shutdown(ctx)
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		logger.LogRequest(r.Method, r.URL.Path, r.RemoteAddr)
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		logger.LogResponse(r.Method, r.URL.Path, rec.status, time.Since(start).String())
	})
}

func (s *APIServer) writeJSON(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	response := APIResponse{Success: statusCode < 400, Data: data}
	if err := json.NewEncoder(w).Encode(response); err != nil {
		logger.Error("Failed to encode JSON response: %v", err)
	}
}

func (s *APIServer) writeError(w http.ResponseWriter, statusCode int, err error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(APIResponse{Success: false, Error: err.Error()}); err != nil {
		logger.Error("Failed to encode JSON response: %v", err)
	}
}

// statusFor maps store errors onto HTTP status codes
func statusFor(err error) int {
	switch {
	case errors.Is(err, interrors.ErrDatabaseQuery):
		return http.StatusInternalServerError
	case errors.Is(err, interrors.ErrConstraintViolation):
		return http.StatusConflict
	case errors.Is(err, interrors.ErrMemoNotFound):
		return http.StatusNotFound
	case errors.Is(err, interrors.ErrInvalidMemoID):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

func queryInt(r *http.Request, name string, fallback int) int {
	if v := r.URL.Query().Get(name); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

// Handlers

func (s *APIServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	health := map[string]interface{}{
		"status":    "ok",
		"timestamp": time.Now().Format(time.RFC3339),
		"version":   s.version,
	}

	count, err := s.svc.Memos.Count(r.Context())
	if err != nil {
		health["status"] = "unhealthy"
		health["database_error"] = err.Error()
		s.writeJSON(w, http.StatusServiceUnavailable, health)
		return
	}
	health["memos"] = count

	s.writeJSON(w, http.StatusOK, health)
}

func (s *APIServer) handleListMemos(w http.ResponseWriter, r *http.Request) {
	limit := queryInt(r, "limit", constants.DefaultAPIListLimit)
	offset := queryInt(r, "offset", 0)

	memos, err := s.svc.Memos.List(r.Context(), limit, offset)
	if err != nil {
		s.writeError(w, statusFor(err), err)
		return
	}
	s.writeJSON(w, http.StatusOK, memos)
}

func (s *APIServer) handleGetMemo(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		s.writeError(w, http.StatusBadRequest, fmt.Errorf("%w: %s", interrors.ErrInvalidMemoID, mux.Vars(r)["id"]))
		return
	}

	memo, err := s.svc.Memos.Get(r.Context(), id)
	if err != nil {
		s.writeError(w, statusFor(err), err)
		return
	}
	s.writeJSON(w, http.StatusOK, memo)
}

// handleInsertMemos accepts a single memo object or an array of them. An
// array is inserted atomically.
func (s *APIServer) handleInsertMemos(w http.ResponseWriter, r *http.Request) {
	var raw json.RawMessage
	if err := json.NewDecoder(r.Body).Decode(&raw); err != nil {
		s.writeError(w, http.StatusBadRequest, fmt.Errorf("invalid JSON: %w", err))
		return
	}

	var reqs []*MemoRequest
	if trimmed := bytes.TrimSpace(raw); len(trimmed) > 0 && trimmed[0] == '[' {
		if err := json.Unmarshal(trimmed, &reqs); err != nil {
			s.writeError(w, http.StatusBadRequest, fmt.Errorf("invalid JSON: %w", err))
			return
		}
	} else {
		var req *MemoRequest
		if err := json.Unmarshal(trimmed, &req); err != nil {
			s.writeError(w, http.StatusBadRequest, fmt.Errorf("invalid JSON: %w", err))
			return
		}
		reqs = append(reqs, req)
	}

	if len(reqs) == 0 {
		s.writeError(w, http.StatusBadRequest, fmt.Errorf("no memos provided"))
		return
	}

	memos := make([]*models.Memo, 0, len(reqs))
	for i, req := range reqs {
		if req == nil {
			s.writeError(w, http.StatusBadRequest, fmt.Errorf("memo %d is null", i))
			return
		}
		memos = append(memos, req.toMemo())
	}

	if err := s.svc.Memos.Insert(r.Context(), memos...); err != nil {
		s.writeError(w, statusFor(err), err)
		return
	}
	s.writeJSON(w, http.StatusCreated, memos)
}

func (s *APIServer) handleSearchQuery(w http.ResponseWriter, r *http.Request) {
	values := r.URL.Query()
	if !values.Has(constants.ExtraQuery) {
		s.writeError(w, http.StatusBadRequest, interrors.ErrEmptyQuery)
		return
	}
	query := values.Get(constants.ExtraQuery)

	if err := s.svc.Search.Query(r.Context(), query); err != nil {
		s.writeError(w, http.StatusInternalServerError, err)
		return
	}
	s.writeJSON(w, http.StatusOK, SearchResponse{Query: query, Handled: true})
}

func (s *APIServer) handleSearchIntent(w http.ResponseWriter, r *http.Request) {
	var intent search.Intent
	if err := json.NewDecoder(r.Body).Decode(&intent); err != nil {
		s.writeError(w, http.StatusBadRequest, fmt.Errorf("invalid JSON: %w", err))
		return
	}

	handled, err := s.svc.Search.Dispatch(r.Context(), intent)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err)
		return
	}
	query, _ := intent.Query()
	s.writeJSON(w, http.StatusOK, SearchResponse{Query: query, Handled: handled})
}
