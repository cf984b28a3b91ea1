package ipc

import "dust/internal/api"

// StartRequest brings daemon services back up after a stop.
type StartRequest struct{}

// StartResponse indicates whether the daemon was started.
type StartResponse struct {
	Started bool   `json:"started"`
	Message string `json:"message"`
}

// StopRequest stops daemon services.
type StopRequest struct{}

// StopResponse indicates stop result.
type StopResponse struct {
	Stopped bool `json:"stopped"`
}

// StatusRequest fetches daemon status.
type StatusRequest struct{}

// GameView mirrors the HTTP API game DTO for internal IPC callers.
type GameView = api.GameView

// ScanSummary mirrors the HTTP API scan DTO.
type ScanSummary = api.ScanSummary

// WorkView mirrors the HTTP API DLSite lookup DTO.
type WorkView = api.WorkView

// LaunchInfo mirrors the HTTP API launch handoff DTO.
type LaunchInfo = api.LaunchInfo

// SessionReceipt mirrors the HTTP API session close DTO.
type SessionReceipt = api.SessionReceipt

// DiskUsage mirrors the HTTP API disk capacity DTO.
type DiskUsage = api.DiskUsage

// AddGameRequest mirrors the HTTP API add payload.
type AddGameRequest = api.AddGameRequest

// UpdateGameRequest mirrors the HTTP API update payload.
type UpdateGameRequest = api.UpdateGameRequest

// StatusResponse represents combined daemon and library status information.
type StatusResponse struct {
	Running       bool       `json:"running"`
	Watching      bool       `json:"watching"`
	PID           int        `json:"pid"`
	Version       string     `json:"version"`
	UptimeSeconds int64      `json:"uptime_seconds"`
	GameCount     int        `json:"game_count"`
	LibraryDir    string     `json:"library_dir"`
	DatabasePath  string     `json:"database_path"`
	LockPath      string     `json:"lock_path"`
	SocketPath    string     `json:"socket_path"`
	LibraryDisk   *DiskUsage `json:"library_disk,omitempty"`
}

// GameListRequest fetches the library listing.
type GameListRequest struct{}

// GameListResponse contains library entries in insertion order.
type GameListResponse struct {
	Games []GameView `json:"games"`
	Count int        `json:"count"`
}

// GameDescribeRequest fetches a single game by id.
type GameDescribeRequest struct {
	ID int64 `json:"id"`
}

// GameDescribeResponse contains a single library entry.
type GameDescribeResponse struct {
	Game GameView `json:"game"`
}

// GameAddRequest adds a game through the reconciliation flow.
type GameAddRequest struct {
	Game AddGameRequest `json:"game"`
}

// GameAddResponse returns the committed record.
type GameAddResponse struct {
	Game GameView `json:"game"`
}

// GameUpdateRequest patches stored fields on a game.
type GameUpdateRequest struct {
	ID    int64             `json:"id"`
	Patch UpdateGameRequest `json:"patch"`
}

// GameUpdateResponse returns the patched record.
type GameUpdateResponse struct {
	Game GameView `json:"game"`
}

// GameRemoveRequest deletes a game record.
type GameRemoveRequest struct {
	ID int64 `json:"id"`
}

// GameRemoveResponse reports whether a record was deleted.
type GameRemoveResponse struct {
	Removed bool `json:"removed"`
}

// ScanRequest runs a library scan. An empty root scans the configured
// library directory.
type ScanRequest struct {
	Root string `json:"root"`
}

// ScanResponse reports the scan outcome.
type ScanResponse struct {
	Summary ScanSummary `json:"summary"`
}

// ImportRequest imports every game directory under a folder.
type ImportRequest struct {
	Folder string `json:"folder"`
	Source string `json:"source"`
}

// ImportResponse reports the import outcome.
type ImportResponse struct {
	Summary ScanSummary `json:"summary"`
}

// DLSiteInfoRequest looks up catalog metadata without touching the library.
type DLSiteInfoRequest struct {
	ID string `json:"id"`
}

// DLSiteInfoResponse contains the catalog lookup result.
type DLSiteInfoResponse struct {
	Work WorkView `json:"work"`
}

// LaunchRequest prepares a launch handoff for a game.
type LaunchRequest struct {
	ID int64 `json:"id"`
}

// LaunchResponse carries the prepared handoff.
type LaunchResponse struct {
	Launch LaunchInfo `json:"launch"`
}

// FinishSessionRequest closes a play session by token.
type FinishSessionRequest struct {
	Token string `json:"token"`
}

// FinishSessionResponse reports the credited session.
type FinishSessionResponse struct {
	Receipt SessionReceipt `json:"receipt"`
}

// LogTailRequest fetches log lines based on offset and follow semantics.
type LogTailRequest struct {
	Offset     int64 `json:"offset"`
	Limit      int   `json:"limit"`
	Follow     bool  `json:"follow"`
	WaitMillis int   `json:"wait_millis"`
}

// LogTailResponse returns log lines and the next offset.
type LogTailResponse struct {
	Lines  []string `json:"lines"`
	Offset int64    `json:"offset"`
}
