package logging

import "strings"

// FormatSubject builds the game/catalog subject string used in console output.
func FormatSubject(gameID, catalogID string) string {
	gameID = strings.TrimSpace(gameID)
	catalogID = strings.TrimSpace(catalogID)
	switch {
	case gameID != "" && catalogID != "":
		return "Game #" + gameID + " (" + catalogID + ")"
	case gameID != "":
		return "Game #" + gameID
	case catalogID != "":
		return catalogID
	default:
		return ""
	}
}
