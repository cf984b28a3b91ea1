package library

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

const gameColumns = "id, title, developer, genre, source, catalog_id, exec_path, exec_file, description, cover_url, play_time_minutes, last_played_at, added_at, updated_at"

func scanGame(scanner interface{ Scan(dest ...any) error }) (*GameRecord, error) {
	var (
		id            int64
		title         string
		developer     sql.NullString
		genre         sql.NullString
		sourceStr     string
		catalogID     sql.NullString
		execPath      sql.NullString
		execFile      sql.NullString
		description   sql.NullString
		coverURL      sql.NullString
		playTime      sql.NullInt64
		lastPlayedRaw sql.NullString
		addedRaw      sql.NullString
		updatedRaw    sql.NullString
	)

	if err := scanner.Scan(
		&id,
		&title,
		&developer,
		&genre,
		&sourceStr,
		&catalogID,
		&execPath,
		&execFile,
		&description,
		&coverURL,
		&playTime,
		&lastPlayedRaw,
		&addedRaw,
		&updatedRaw,
	); err != nil {
		return nil, err
	}

	game := &GameRecord{
		ID:          id,
		Title:       title,
		Developer:   developer.String,
		Genre:       genre.String,
		Source:      Source(sourceStr),
		CatalogID:   catalogID.String,
		ExecPath:    execPath.String,
		ExecFile:    execFile.String,
		Description: description.String,
		CoverURL:    coverURL.String,
		PlayTime:    playTime.Int64,
	}
	if lastPlayedRaw.Valid {
		if played, err := parseTimeString(lastPlayedRaw.String); err == nil {
			game.LastPlayedAt = &played
		}
	}
	if added, err := parseTimeString(addedRaw.String); err == nil {
		game.AddedAt = added
	}
	if updated, err := parseTimeString(updatedRaw.String); err == nil {
		game.UpdatedAt = updated
	}
	return game, nil
}

const sessionColumns = "id, game_id, token, started_at, ended_at, minutes"

func scanSession(scanner interface{ Scan(dest ...any) error }) (*PlaySession, error) {
	var (
		id         int64
		gameID     int64
		token      string
		startedRaw sql.NullString
		endedRaw   sql.NullString
		minutes    sql.NullInt64
	)
	if err := scanner.Scan(&id, &gameID, &token, &startedRaw, &endedRaw, &minutes); err != nil {
		return nil, err
	}
	session := &PlaySession{
		ID:      id,
		GameID:  gameID,
		Token:   token,
		Minutes: minutes.Int64,
	}
	if started, err := parseTimeString(startedRaw.String); err == nil {
		session.StartedAt = started
	}
	if endedRaw.Valid {
		if ended, err := parseTimeString(endedRaw.String); err == nil {
			session.EndedAt = &ended
		}
	}
	return session, nil
}

func loadTags(ctx context.Context, q querier, gameID int64) ([]string, error) {
	rows, err := q.QueryContext(ctx, `SELECT tag FROM game_tags WHERE game_id = ? ORDER BY tag`, gameID)
	if err != nil {
		return nil, fmt.Errorf("load tags: %w", err)
	}
	defer rows.Close()

	var tags []string
	for rows.Next() {
		var tag string
		if err := rows.Scan(&tag); err != nil {
			return nil, err
		}
		tags = append(tags, tag)
	}
	return tags, rows.Err()
}

func loadScreenshots(ctx context.Context, q querier, gameID int64) ([]string, error) {
	rows, err := q.QueryContext(ctx, `SELECT url FROM game_screenshots WHERE game_id = ? ORDER BY position`, gameID)
	if err != nil {
		return nil, fmt.Errorf("load screenshots: %w", err)
	}
	defer rows.Close()

	var urls []string
	for rows.Next() {
		var url string
		if err := rows.Scan(&url); err != nil {
			return nil, err
		}
		urls = append(urls, url)
	}
	return urls, rows.Err()
}

func replaceTags(ctx context.Context, q querier, gameID int64, tags []string) error {
	if _, err := q.ExecContext(ctx, `DELETE FROM game_tags WHERE game_id = ?`, gameID); err != nil {
		return fmt.Errorf("clear tags: %w", err)
	}
	for _, tag := range tags {
		if _, err := q.ExecContext(ctx, `INSERT INTO game_tags (game_id, tag) VALUES (?, ?)`, gameID, tag); err != nil {
			return fmt.Errorf("insert tag: %w", err)
		}
	}
	return nil
}

func replaceScreenshots(ctx context.Context, q querier, gameID int64, urls []string) error {
	if _, err := q.ExecContext(ctx, `DELETE FROM game_screenshots WHERE game_id = ?`, gameID); err != nil {
		return fmt.Errorf("clear screenshots: %w", err)
	}
	for position, url := range urls {
		if _, err := q.ExecContext(ctx, `INSERT INTO game_screenshots (game_id, position, url) VALUES (?, ?, ?)`, gameID, position, url); err != nil {
			return fmt.Errorf("insert screenshot: %w", err)
		}
	}
	return nil
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}

func nullableTime(value *time.Time) any {
	if value == nil {
		return nil
	}
	v := value.UTC().Format(time.RFC3339Nano)
	return v
}

func parseTimeString(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, errors.New("empty")
	}
	if t, err := time.Parse(time.RFC3339Nano, value); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02 15:04:05", value)
}
