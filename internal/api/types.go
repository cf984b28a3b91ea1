package api

import "time"

// dateTimeFormat is used for RFC3339 timestamps in API payloads.
const dateTimeFormat = "2006-01-02T15:04:05.000Z07:00"

// GameView describes a library record in a transport-friendly format.
type GameView struct {
	ID             int64    `json:"id"`
	Title          string   `json:"title"`
	Developer      string   `json:"developer"`
	Genre          string   `json:"genre,omitempty"`
	Source         string   `json:"source"`
	SourceLabel    string   `json:"sourceLabel"`
	DLSiteID       string   `json:"dlsiteId,omitempty"`
	Executable     string   `json:"executable,omitempty"`
	ExecutablePath string   `json:"executablePath,omitempty"`
	Description    string   `json:"description,omitempty"`
	Tags           []string `json:"tags,omitempty"`
	CoverImage     string   `json:"coverImage,omitempty"`
	Screenshots    []string `json:"screenshots,omitempty"`
	PlayTime       int64    `json:"playTime"`
	LastPlayed     string   `json:"lastPlayed,omitempty"`
	InstallDate    string   `json:"installDate,omitempty"`
	UpdatedAt      string   `json:"updatedAt,omitempty"`
}

// GameListResponse wraps a collection of games for API responses.
type GameListResponse struct {
	Games []GameView `json:"games"`
	Count int        `json:"count"`
}

// ScanFailure records one directory a pass could not process.
type ScanFailure struct {
	Dir   string `json:"dir"`
	Error string `json:"error"`
}

// ScanSummary reports the outcome of a scan or import pass. The count and
// list keys mirror the document format desktop shells already consume.
type ScanSummary struct {
	FoundGames   int           `json:"foundGames"`
	UpdatedGames int           `json:"updatedGames"`
	Skipped      int           `json:"skipped"`
	ErrorCount   int           `json:"errors"`
	FoundList    []string      `json:"foundGamesList"`
	UpdatedList  []string      `json:"updatedGamesList"`
	Failures     []ScanFailure `json:"errorsList"`
	Message      string        `json:"message"`
}

// WorkView describes a DLSite product lookup result.
type WorkView struct {
	ProductID   string   `json:"productId"`
	Title       string   `json:"title"`
	Developer   string   `json:"developer"`
	Genre       string   `json:"genre"`
	AgeCategory string   `json:"ageCategory,omitempty"`
	WorkType    string   `json:"workType,omitempty"`
	Tags        []string `json:"tags,omitempty"`
	Description string   `json:"description,omitempty"`
	CoverImage  string   `json:"coverImage,omitempty"`
	ReleaseDate string   `json:"releaseDate,omitempty"`
}

// LaunchInfo is the prepared launch handoff. The daemon never spawns the
// game; the desktop shell does, then reports the session token back through
// FinishSession when the process exits.
type LaunchInfo struct {
	GameID       int64  `json:"gameId"`
	Title        string `json:"title"`
	Executable   string `json:"executable"`
	WorkingDir   string `json:"workingDir"`
	SessionToken string `json:"sessionToken"`
	StartedAt    string `json:"startedAt"`
}

// SessionReceipt reports a closed play session and the new play time total.
type SessionReceipt struct {
	GameID        int64  `json:"gameId"`
	Minutes       int64  `json:"minutes"`
	TotalPlayTime int64  `json:"totalPlayTime"`
	EndedAt       string `json:"endedAt"`
}

// DiskUsage reports capacity of the filesystem holding the library.
type DiskUsage struct {
	TotalBytes uint64 `json:"totalBytes"`
	FreeBytes  uint64 `json:"freeBytes"`
	UsedBytes  uint64 `json:"usedBytes"`
}

// StatusInfo aggregates daemon runtime information for API consumers.
type StatusInfo struct {
	Version       string     `json:"version"`
	PID           int        `json:"pid"`
	UptimeSeconds int64      `json:"uptimeSeconds"`
	GameCount     int        `json:"gameCount"`
	LibraryDir    string     `json:"libraryDir"`
	DatabasePath  string     `json:"databasePath"`
	LibraryDisk   *DiskUsage `json:"libraryDisk,omitempty"`
}

// LogEvent is the transport form of one structured daemon log line.
type LogEvent struct {
	Sequence  uint64            `json:"seq"`
	Timestamp time.Time         `json:"ts"`
	Level     string            `json:"level"`
	Message   string            `json:"message"`
	Component string            `json:"component,omitempty"`
	GameID    int64             `json:"gameId,omitempty"`
	CatalogID string            `json:"catalogId,omitempty"`
	AttemptID string            `json:"attemptId,omitempty"`
	Fields    map[string]string `json:"fields,omitempty"`
	Details   []DetailField     `json:"details,omitempty"`
}

// DetailField is one label/value pair rendered under a log line.
type DetailField struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// LogStreamResponse pages structured log events for live tailing. Next is
// the sequence cursor to resume from.
type LogStreamResponse struct {
	Events []LogEvent `json:"events"`
	Next   uint64     `json:"next"`
}
