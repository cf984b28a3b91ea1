package library

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"dust/internal/services"
)

// InsertGame stores a new record, assigning its ID and timestamps, and
// returns the row as persisted.
func (t *Tx) InsertGame(ctx context.Context, rec *GameRecord) (*GameRecord, error) {
	return insertGame(ctx, t.q, rec)
}

// UpdateGame rewrites an existing record by ID. AddedAt and the play
// statistics are owned by the store and survive unchanged; services.ErrNotFound
// is returned when the ID is unknown.
func (t *Tx) UpdateGame(ctx context.Context, rec *GameRecord) (*GameRecord, error) {
	return updateGame(ctx, t.q, rec)
}

// GameByID fetches a record by identifier, returning nil when absent.
func (t *Tx) GameByID(ctx context.Context, id int64) (*GameRecord, error) {
	return getGame(ctx, t.q, id)
}

// FindByCatalogID returns the record holding a catalog ID, or nil.
func (t *Tx) FindByCatalogID(ctx context.Context, catalogID string) (*GameRecord, error) {
	return findByCatalogID(ctx, t.q, catalogID)
}

// ListGames returns every record ordered by ID ascending.
func (t *Tx) ListGames(ctx context.Context) ([]*GameRecord, error) {
	return listGames(ctx, t.q)
}

// DeleteGame removes a record and its tags, screenshots, and sessions.
func (t *Tx) DeleteGame(ctx context.Context, id int64) (bool, error) {
	return deleteGame(ctx, t.q, id)
}

// InsertGame stores a new record in its own transaction.
func (s *Store) InsertGame(ctx context.Context, rec *GameRecord) (*GameRecord, error) {
	var inserted *GameRecord
	err := s.WithTx(ctx, func(tx *Tx) error {
		var txErr error
		inserted, txErr = tx.InsertGame(ctx, rec)
		return txErr
	})
	if err != nil {
		return nil, err
	}
	return inserted, nil
}

// UpdateGame rewrites an existing record in its own transaction.
func (s *Store) UpdateGame(ctx context.Context, rec *GameRecord) (*GameRecord, error) {
	var updated *GameRecord
	err := s.WithTx(ctx, func(tx *Tx) error {
		var txErr error
		updated, txErr = tx.UpdateGame(ctx, rec)
		return txErr
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// GameByID fetches a record by identifier, returning nil when absent.
func (s *Store) GameByID(ctx context.Context, id int64) (*GameRecord, error) {
	return getGame(ctx, s.db, id)
}

// FindByCatalogID returns the record holding a catalog ID, or nil.
func (s *Store) FindByCatalogID(ctx context.Context, catalogID string) (*GameRecord, error) {
	return findByCatalogID(ctx, s.db, catalogID)
}

// ListGames returns every record ordered by ID ascending.
func (s *Store) ListGames(ctx context.Context) ([]*GameRecord, error) {
	return listGames(ctx, s.db)
}

// DeleteGame removes a record by identifier.
func (s *Store) DeleteGame(ctx context.Context, id int64) (bool, error) {
	var removed bool
	err := s.WithTx(ctx, func(tx *Tx) error {
		var txErr error
		removed, txErr = tx.DeleteGame(ctx, id)
		return txErr
	})
	if err != nil {
		return false, err
	}
	return removed, nil
}

// CountGames returns the number of records in the library.
func (s *Store) CountGames(ctx context.Context) (int, error) {
	var count int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(1) FROM games`).Scan(&count); err != nil {
		return 0, fmt.Errorf("count games: %w", err)
	}
	return count, nil
}

// Stats returns a count of records grouped by source.
func (s *Store) Stats(ctx context.Context) (map[Source]int, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT source, COUNT(1) FROM games GROUP BY source`)
	if err != nil {
		return nil, fmt.Errorf("library stats: %w", err)
	}
	defer rows.Close()

	stats := make(map[Source]int)
	for rows.Next() {
		var source Source
		var count int
		if err := rows.Scan(&source, &count); err != nil {
			return nil, err
		}
		stats[source] = count
	}
	return stats, rows.Err()
}

func insertGame(ctx context.Context, q querier, rec *GameRecord) (*GameRecord, error) {
	if rec == nil {
		return nil, services.Wrap(services.ErrValidation, "library", "insert game", "record is nil", nil)
	}
	stored := rec.Clone()
	stored.normalize()
	if err := stored.validate(); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	// A caller-supplied AddedAt survives so sidecar imports keep their
	// original date; everything else gets the insert time.
	if stored.AddedAt.IsZero() {
		stored.AddedAt = now
	}
	stored.UpdatedAt = now

	res, err := q.ExecContext(
		ctx,
		`INSERT INTO games (
            title, developer, genre, source, catalog_id, exec_path, exec_file,
            description, cover_url, play_time_minutes, last_played_at, added_at, updated_at
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		stored.Title,
		stored.Developer,
		nullableString(stored.Genre),
		stored.Source,
		nullableString(stored.CatalogID),
		nullableString(stored.ExecPath),
		nullableString(stored.ExecFile),
		nullableString(stored.Description),
		nullableString(stored.CoverURL),
		stored.PlayTime,
		nullableTime(stored.LastPlayedAt),
		stored.AddedAt.Format(time.RFC3339Nano),
		stored.UpdatedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, services.Wrap(services.ErrValidation, "library", "insert game",
				fmt.Sprintf("catalog ID %s is already in the library", stored.CatalogID), err)
		}
		return nil, services.Wrap(services.ErrPersistence, "library", "insert game", "insert failed", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, services.Wrap(services.ErrPersistence, "library", "insert game", "last insert id", err)
	}
	if err := replaceTags(ctx, q, id, stored.Tags); err != nil {
		return nil, services.Wrap(services.ErrPersistence, "library", "insert game", "store tags", err)
	}
	if err := replaceScreenshots(ctx, q, id, stored.Screenshots); err != nil {
		return nil, services.Wrap(services.ErrPersistence, "library", "insert game", "store screenshots", err)
	}
	return getGame(ctx, q, id)
}

func updateGame(ctx context.Context, q querier, rec *GameRecord) (*GameRecord, error) {
	if rec == nil || rec.ID == 0 {
		return nil, services.Wrap(services.ErrValidation, "library", "update game", "record ID is required", nil)
	}
	existing, err := getGame(ctx, q, rec.ID)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, services.Wrap(services.ErrNotFound, "library", "update game",
			fmt.Sprintf("game %d not found", rec.ID), nil)
	}

	stored := rec.Clone()
	stored.normalize()
	if err := stored.validate(); err != nil {
		return nil, err
	}
	stored.AddedAt = existing.AddedAt
	stored.UpdatedAt = time.Now().UTC()

	if _, err := q.ExecContext(
		ctx,
		`UPDATE games
         SET title = ?, developer = ?, genre = ?, source = ?, catalog_id = ?,
             exec_path = ?, exec_file = ?, description = ?, cover_url = ?, updated_at = ?
         WHERE id = ?`,
		stored.Title,
		stored.Developer,
		nullableString(stored.Genre),
		stored.Source,
		nullableString(stored.CatalogID),
		nullableString(stored.ExecPath),
		nullableString(stored.ExecFile),
		nullableString(stored.Description),
		nullableString(stored.CoverURL),
		stored.UpdatedAt.Format(time.RFC3339Nano),
		stored.ID,
	); err != nil {
		if isUniqueViolation(err) {
			return nil, services.Wrap(services.ErrValidation, "library", "update game",
				fmt.Sprintf("catalog ID %s is already in the library", stored.CatalogID), err)
		}
		return nil, services.Wrap(services.ErrPersistence, "library", "update game", "update failed", err)
	}
	if err := replaceTags(ctx, q, stored.ID, stored.Tags); err != nil {
		return nil, services.Wrap(services.ErrPersistence, "library", "update game", "store tags", err)
	}
	if err := replaceScreenshots(ctx, q, stored.ID, stored.Screenshots); err != nil {
		return nil, services.Wrap(services.ErrPersistence, "library", "update game", "store screenshots", err)
	}
	return getGame(ctx, q, stored.ID)
}

func getGame(ctx context.Context, q querier, id int64) (*GameRecord, error) {
	row := q.QueryRowContext(ctx, `SELECT `+gameColumns+` FROM games WHERE id = ?`, id)
	game, err := scanGame(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get game: %w", err)
	}
	if game.Tags, err = loadTags(ctx, q, game.ID); err != nil {
		return nil, err
	}
	if game.Screenshots, err = loadScreenshots(ctx, q, game.ID); err != nil {
		return nil, err
	}
	return game, nil
}

func findByCatalogID(ctx context.Context, q querier, catalogID string) (*GameRecord, error) {
	catalogID = strings.ToUpper(strings.TrimSpace(catalogID))
	if catalogID == "" {
		return nil, nil
	}
	row := q.QueryRowContext(ctx, `SELECT `+gameColumns+` FROM games WHERE catalog_id = ? LIMIT 1`, catalogID)
	game, err := scanGame(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find by catalog id: %w", err)
	}
	if game.Tags, err = loadTags(ctx, q, game.ID); err != nil {
		return nil, err
	}
	if game.Screenshots, err = loadScreenshots(ctx, q, game.ID); err != nil {
		return nil, err
	}
	return game, nil
}

func listGames(ctx context.Context, q querier) ([]*GameRecord, error) {
	rows, err := q.QueryContext(ctx, `SELECT `+gameColumns+` FROM games ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list games: %w", err)
	}
	defer rows.Close()

	var games []*GameRecord
	byID := make(map[int64]*GameRecord)
	for rows.Next() {
		game, err := scanGame(rows)
		if err != nil {
			return nil, err
		}
		games = append(games, game)
		byID[game.ID] = game
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(games) == 0 {
		return nil, nil
	}

	tagRows, err := q.QueryContext(ctx, `SELECT game_id, tag FROM game_tags ORDER BY game_id, tag`)
	if err != nil {
		return nil, fmt.Errorf("list tags: %w", err)
	}
	defer tagRows.Close()
	for tagRows.Next() {
		var gameID int64
		var tag string
		if err := tagRows.Scan(&gameID, &tag); err != nil {
			return nil, err
		}
		if game, ok := byID[gameID]; ok {
			game.Tags = append(game.Tags, tag)
		}
	}
	if err := tagRows.Err(); err != nil {
		return nil, err
	}

	shotRows, err := q.QueryContext(ctx, `SELECT game_id, url FROM game_screenshots ORDER BY game_id, position`)
	if err != nil {
		return nil, fmt.Errorf("list screenshots: %w", err)
	}
	defer shotRows.Close()
	for shotRows.Next() {
		var gameID int64
		var url string
		if err := shotRows.Scan(&gameID, &url); err != nil {
			return nil, err
		}
		if game, ok := byID[gameID]; ok {
			game.Screenshots = append(game.Screenshots, url)
		}
	}
	return games, shotRows.Err()
}

func deleteGame(ctx context.Context, q querier, id int64) (bool, error) {
	res, err := q.ExecContext(ctx, `DELETE FROM games WHERE id = ?`, id)
	if err != nil {
		return false, services.Wrap(services.ErrPersistence, "library", "delete game", "delete failed", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return affected > 0, nil
}
