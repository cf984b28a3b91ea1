package daemon

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"log/slog"

	"dust/internal/api"
	"dust/internal/config"
	"dust/internal/logging"
	"dust/internal/services"
)

// apiServer exposes the application facade over local HTTP for the desktop
// shell. Binding defaults to loopback; an empty bind disables the server.
type apiServer struct {
	bind    string
	logger  *slog.Logger
	svc     *api.Service
	hub     *logging.StreamHub
	archive *logging.EventArchive

	listener net.Listener
	server   *http.Server
}

func newAPIServer(cfg *config.Config, svc *api.Service, hub *logging.StreamHub, archive *logging.EventArchive, logger *slog.Logger) (*apiServer, error) {
	if cfg == nil || svc == nil {
		return nil, nil
	}
	bind := strings.TrimSpace(cfg.Paths.APIBind)
	if bind == "" {
		return nil, nil
	}

	srv := &apiServer{
		bind:    bind,
		logger:  logger,
		svc:     svc,
		hub:     hub,
		archive: archive,
	}

	token := strings.TrimSpace(os.Getenv("DUST_API_TOKEN"))
	if token == "" {
		token = strings.TrimSpace(cfg.Paths.APIToken)
	}

	mux := http.NewServeMux()
	handle := func(pattern string, handler http.HandlerFunc) {
		mux.HandleFunc(pattern, authMiddleware(token, handler))
	}
	handle("/api/status", srv.handleStatus)
	handle("/api/games", srv.handleGames)
	handle("/api/games/scan", srv.handleScan)
	handle("/api/games/import/folder", srv.handleImport)
	handle("/api/games/", srv.handleGameSubtree)
	handle("/api/sessions/", srv.handleSession)
	handle("/api/dlsite/info/", srv.handleDLSiteInfo)
	handle("/api/logs", srv.handleLogs)

	srv.server = &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      5 * time.Minute,
		IdleTimeout:       60 * time.Second,
	}
	return srv, nil
}

func (s *apiServer) start(ctx context.Context) error {
	if s == nil {
		return nil
	}
	listener, err := net.Listen("tcp", s.bind)
	if err != nil {
		return fmt.Errorf("api listen: %w", err)
	}
	s.listener = listener

	go func() {
		if err := s.server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.log().Error("api server error", logging.Error(err))
		}
	}()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.server.Shutdown(shutdownCtx)
	}()

	s.log().Info("api server listening", logging.String("address", listener.Addr().String()))
	return nil
}

func (s *apiServer) stop() {
	if s == nil {
		return
	}
	if s.server != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.server.Shutdown(shutdownCtx)
	}
	if s.listener != nil {
		_ = s.listener.Close()
		s.listener = nil
	}
}

// addr reports the bound listen address, or empty before start.
func (s *apiServer) addr() string {
	if s == nil || s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

func (s *apiServer) handleStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	info, err := s.svc.Status(r.Context())
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, info)
}

func (s *apiServer) handleGames(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		list, err := s.svc.Games(r.Context())
		if err != nil {
			s.writeServiceError(w, err)
			return
		}
		s.writeJSON(w, http.StatusOK, list)
	case http.MethodPost:
		var req api.AddGameRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			s.writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		view, err := s.svc.AddGame(r.Context(), req)
		if err != nil {
			s.writeServiceError(w, err)
			return
		}
		s.writeJSON(w, http.StatusCreated, view)
	default:
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

type scanRequest struct {
	Root string `json:"root"`
}

func (s *apiServer) handleScan(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	var req scanRequest
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			s.writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
	}
	summary, err := s.svc.ScanLibrary(r.Context(), req.Root)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, summary)
}

type importRequest struct {
	Folder string `json:"folder"`
	Source string `json:"source"`
}

func (s *apiServer) handleImport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	var req importRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	summary, err := s.svc.ImportFolder(r.Context(), req.Folder, req.Source)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, summary)
}

func (s *apiServer) handleGameSubtree(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/api/games/")
	parts := strings.Split(rest, "/")
	switch {
	case len(parts) == 1 && parts[0] != "":
		id, err := strconv.ParseInt(parts[0], 10, 64)
		if err != nil {
			s.writeError(w, http.StatusBadRequest, "invalid game id")
			return
		}
		s.handleGame(w, r, id)
	case len(parts) == 2 && parts[1] == "launch":
		id, err := strconv.ParseInt(parts[0], 10, 64)
		if err != nil {
			s.writeError(w, http.StatusBadRequest, "invalid game id")
			return
		}
		s.handleLaunch(w, r, id)
	default:
		s.writeError(w, http.StatusNotFound, "not found")
	}
}

func (s *apiServer) handleGame(w http.ResponseWriter, r *http.Request, id int64) {
	switch r.Method {
	case http.MethodGet:
		view, err := s.svc.Game(r.Context(), id)
		if err != nil {
			s.writeServiceError(w, err)
			return
		}
		s.writeJSON(w, http.StatusOK, view)
	case http.MethodPut:
		var req api.UpdateGameRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			s.writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		view, err := s.svc.UpdateGame(r.Context(), id, req)
		if err != nil {
			s.writeServiceError(w, err)
			return
		}
		s.writeJSON(w, http.StatusOK, view)
	case http.MethodDelete:
		if err := s.svc.RemoveGame(r.Context(), id); err != nil {
			s.writeServiceError(w, err)
			return
		}
		s.writeJSON(w, http.StatusOK, map[string]bool{"removed": true})
	default:
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (s *apiServer) handleLaunch(w http.ResponseWriter, r *http.Request, id int64) {
	if r.Method != http.MethodPost {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	info, err := s.svc.PrepareLaunch(r.Context(), id)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, info)
}

func (s *apiServer) handleSession(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	rest := strings.TrimPrefix(r.URL.Path, "/api/sessions/")
	parts := strings.Split(rest, "/")
	if len(parts) != 2 || parts[0] == "" || parts[1] != "finish" {
		s.writeError(w, http.StatusNotFound, "not found")
		return
	}
	receipt, err := s.svc.FinishSession(r.Context(), parts[0])
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, receipt)
}

func (s *apiServer) handleDLSiteInfo(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	id := strings.TrimPrefix(r.URL.Path, "/api/dlsite/info/")
	if id == "" || strings.Contains(id, "/") {
		s.writeError(w, http.StatusNotFound, "not found")
		return
	}
	view, err := s.svc.DLSiteInfo(r.Context(), id)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, view)
}

// logFilters holds the predicates a log stream request may carry.
type logFilters struct {
	gameID    int64
	component string
	catalogID string
	attemptID string
	level     string
	search    string
}

func (f logFilters) match(evt api.LogEvent) bool {
	if f.gameID != 0 && evt.GameID != f.gameID {
		return false
	}
	if f.component != "" && !strings.EqualFold(f.component, evt.Component) {
		return false
	}
	if f.catalogID != "" && !strings.EqualFold(f.catalogID, evt.CatalogID) {
		return false
	}
	if f.attemptID != "" && f.attemptID != evt.AttemptID {
		return false
	}
	if f.level != "" && !strings.EqualFold(f.level, evt.Level) {
		return false
	}
	if f.search != "" {
		needle := strings.ToLower(f.search)
		if !strings.Contains(strings.ToLower(evt.Message), needle) && !searchFields(evt.Fields, needle) {
			return false
		}
	}
	return true
}

func searchFields(fields map[string]string, needle string) bool {
	for _, value := range fields {
		if strings.Contains(strings.ToLower(value), needle) {
			return true
		}
	}
	return false
}

func (s *apiServer) handleLogs(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	if s.hub == nil && s.archive == nil {
		s.writeJSON(w, http.StatusOK, api.LogStreamResponse{Events: nil, Next: 0})
		return
	}

	query := r.URL.Query()
	since, _ := strconv.ParseUint(query.Get("since"), 10, 64)
	limit, _ := strconv.Atoi(query.Get("limit"))
	if limit <= 0 {
		limit = 200
	}
	follow := query.Get("follow") == "1" || strings.EqualFold(query.Get("follow"), "true")
	tail := query.Get("tail") == "1" || strings.EqualFold(query.Get("tail"), "true")

	filters := logFilters{
		component: strings.TrimSpace(query.Get("component")),
		catalogID: strings.TrimSpace(query.Get("catalog")),
		attemptID: strings.TrimSpace(query.Get("attempt")),
		level:     strings.TrimSpace(query.Get("level")),
		search:    strings.TrimSpace(query.Get("search")),
	}
	if value := strings.TrimSpace(query.Get("game")); value != "" {
		if parsed, err := strconv.ParseInt(value, 10, 64); err == nil {
			filters.gameID = parsed
		}
	}

	var (
		converted []api.LogEvent
		next      uint64
	)

	// Events that scrolled out of the hub are served from the archive.
	if s.archive != nil && since > 0 {
		firstSeq := uint64(0)
		if s.hub != nil {
			firstSeq = s.hub.FirstSequence()
		}
		if s.hub == nil || (firstSeq > 0 && since < firstSeq) {
			archived, cursor, archErr := s.archive.ReadSince(since, limit)
			if archErr != nil {
				s.log().Warn("log archive read failed", logging.Error(archErr))
			} else if len(archived) > 0 {
				converted = convertLogEvents(archived)
				next = cursor
			}
		}
	}
	if tail && since == 0 && !follow && s.hub != nil {
		raw, cursor := s.hub.Tail(limit)
		converted = convertLogEvents(raw)
		next = cursor
	} else if len(converted) == 0 && s.hub != nil {
		raw, cursor, fetchErr := s.hub.Fetch(r.Context(), since, limit, follow)
		if fetchErr != nil && !errors.Is(fetchErr, context.Canceled) && !errors.Is(fetchErr, context.DeadlineExceeded) {
			s.writeError(w, http.StatusInternalServerError, fetchErr.Error())
			return
		}
		converted = convertLogEvents(raw)
		next = cursor
	}

	filtered := make([]api.LogEvent, 0, len(converted))
	for _, evt := range converted {
		if filters.match(evt) {
			filtered = append(filtered, evt)
		}
	}

	s.writeJSON(w, http.StatusOK, api.LogStreamResponse{
		Events: filtered,
		Next:   next,
	})
}

func convertLogEvents(events []logging.LogEvent) []api.LogEvent {
	if len(events) == 0 {
		return nil
	}
	out := make([]api.LogEvent, 0, len(events))
	for _, evt := range events {
		var details []api.DetailField
		if len(evt.Details) > 0 {
			details = make([]api.DetailField, 0, len(evt.Details))
			for _, detail := range evt.Details {
				details = append(details, api.DetailField{
					Label: detail.Label,
					Value: detail.Value,
				})
			}
		}
		out = append(out, api.LogEvent{
			Sequence:  evt.Sequence,
			Timestamp: evt.Timestamp,
			Level:     evt.Level,
			Message:   evt.Message,
			Component: evt.Component,
			GameID:    evt.GameID,
			CatalogID: evt.CatalogID,
			AttemptID: evt.AttemptID,
			Fields:    evt.Fields,
			Details:   details,
		})
	}
	return out
}

// writeServiceError maps the services error markers onto HTTP status codes so
// the shell can branch without parsing messages.
func (s *apiServer) writeServiceError(w http.ResponseWriter, err error) {
	s.writeError(w, statusForError(err), err.Error())
}

func statusForError(err error) int {
	switch {
	case errors.Is(err, services.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, services.ErrValidation), errors.Is(err, services.ErrMalformedIdentifier):
		return http.StatusBadRequest
	case errors.Is(err, services.ErrMetadataUnavailable):
		return http.StatusBadGateway
	case errors.Is(err, services.ErrTimeout):
		return http.StatusGatewayTimeout
	case errors.Is(err, services.ErrConfiguration):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func (s *apiServer) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.log().Error("failed to encode response", logging.Error(err))
	}
}

func (s *apiServer) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, map[string]string{"error": message})
}

func (s *apiServer) log() *slog.Logger {
	if s.logger != nil {
		return s.logger.With(logging.String(logging.FieldComponent, "api-server"))
	}
	return logging.NewNop()
}
