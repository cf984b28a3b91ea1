package library

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"dust/internal/services"
)

// RecordLaunch stamps LastPlayedAt and opens a play session for the game.
// The returned session token is handed to the desktop shell, which reports it
// back through CloseSession when the game exits.
func (s *Store) RecordLaunch(ctx context.Context, gameID int64) (*PlaySession, error) {
	var session *PlaySession
	err := s.WithTx(ctx, func(tx *Tx) error {
		game, err := tx.GameByID(ctx, gameID)
		if err != nil {
			return err
		}
		if game == nil {
			return services.Wrap(services.ErrNotFound, "library", "record launch",
				fmt.Sprintf("game %d not found", gameID), nil)
		}

		now := time.Now().UTC()
		stamp := now.Format(time.RFC3339Nano)
		if _, err := tx.q.ExecContext(ctx,
			`UPDATE games SET last_played_at = ?, updated_at = ? WHERE id = ?`,
			stamp, stamp, gameID,
		); err != nil {
			return services.Wrap(services.ErrPersistence, "library", "record launch", "stamp last played", err)
		}

		token := uuid.NewString()
		res, err := tx.q.ExecContext(ctx,
			`INSERT INTO play_sessions (game_id, token, started_at, minutes) VALUES (?, ?, ?, 0)`,
			gameID, token, stamp,
		)
		if err != nil {
			return services.Wrap(services.ErrPersistence, "library", "record launch", "open session", err)
		}
		id, err := res.LastInsertId()
		if err != nil {
			return fmt.Errorf("last insert id: %w", err)
		}
		session = &PlaySession{ID: id, GameID: gameID, Token: token, StartedAt: now}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return session, nil
}

// CloseSession ends an open play session and credits the elapsed minutes to
// the game's play time. A single session never credits more than the
// configured session cap, which keeps a forgotten overnight game from
// inflating the total.
func (s *Store) CloseSession(ctx context.Context, token string) (*PlaySession, error) {
	var closed *PlaySession
	err := s.WithTx(ctx, func(tx *Tx) error {
		session, err := sessionByToken(ctx, tx.q, token)
		if err != nil {
			return err
		}
		if session == nil {
			return services.Wrap(services.ErrNotFound, "library", "close session",
				"play session not found", nil)
		}
		if !session.Open() {
			return services.Wrap(services.ErrValidation, "library", "close session",
				"play session already closed", nil)
		}

		now := time.Now().UTC()
		minutes := int64(now.Sub(session.StartedAt).Minutes())
		if minutes < 0 {
			minutes = 0
		}
		if s.maxSessionMinutes > 0 && minutes > s.maxSessionMinutes {
			minutes = s.maxSessionMinutes
		}

		if _, err := tx.q.ExecContext(ctx,
			`UPDATE play_sessions SET ended_at = ?, minutes = ? WHERE id = ?`,
			now.Format(time.RFC3339Nano), minutes, session.ID,
		); err != nil {
			return services.Wrap(services.ErrPersistence, "library", "close session", "close session row", err)
		}
		if _, err := tx.q.ExecContext(ctx,
			`UPDATE games SET play_time_minutes = play_time_minutes + ?, updated_at = ? WHERE id = ?`,
			minutes, now.Format(time.RFC3339Nano), session.GameID,
		); err != nil {
			return services.Wrap(services.ErrPersistence, "library", "close session", "credit play time", err)
		}

		session.EndedAt = &now
		session.Minutes = minutes
		closed = session
		return nil
	})
	if err != nil {
		return nil, err
	}
	return closed, nil
}

// AddPlayTime accumulates minutes onto a game's total. Negative deltas are
// rejected; the new total is returned.
func (s *Store) AddPlayTime(ctx context.Context, gameID int64, minutes int64) (int64, error) {
	if minutes < 0 {
		return 0, services.Wrap(services.ErrValidation, "library", "add play time",
			"negative play time delta", nil)
	}
	var total int64
	err := s.WithTx(ctx, func(tx *Tx) error {
		game, err := tx.GameByID(ctx, gameID)
		if err != nil {
			return err
		}
		if game == nil {
			return services.Wrap(services.ErrNotFound, "library", "add play time",
				fmt.Sprintf("game %d not found", gameID), nil)
		}
		now := time.Now().UTC().Format(time.RFC3339Nano)
		if _, err := tx.q.ExecContext(ctx,
			`UPDATE games SET play_time_minutes = play_time_minutes + ?, updated_at = ? WHERE id = ?`,
			minutes, now, gameID,
		); err != nil {
			return services.Wrap(services.ErrPersistence, "library", "add play time", "update failed", err)
		}
		total = game.PlayTime + minutes
		return nil
	})
	if err != nil {
		return 0, err
	}
	return total, nil
}

// ResetPlayTime zeroes a game's accumulated play time. This is the one
// sanctioned way play time decreases.
func (s *Store) ResetPlayTime(ctx context.Context, gameID int64) error {
	return s.WithTx(ctx, func(tx *Tx) error {
		game, err := tx.GameByID(ctx, gameID)
		if err != nil {
			return err
		}
		if game == nil {
			return services.Wrap(services.ErrNotFound, "library", "reset play time",
				fmt.Sprintf("game %d not found", gameID), nil)
		}
		now := time.Now().UTC().Format(time.RFC3339Nano)
		if _, err := tx.q.ExecContext(ctx,
			`UPDATE games SET play_time_minutes = 0, updated_at = ? WHERE id = ?`,
			now, gameID,
		); err != nil {
			return services.Wrap(services.ErrPersistence, "library", "reset play time", "update failed", err)
		}
		return nil
	})
}

// SessionByToken fetches a play session by its token, returning nil when
// absent.
func (s *Store) SessionByToken(ctx context.Context, token string) (*PlaySession, error) {
	return sessionByToken(ctx, s.db, token)
}

func sessionByToken(ctx context.Context, q querier, token string) (*PlaySession, error) {
	row := q.QueryRowContext(ctx, `SELECT `+sessionColumns+` FROM play_sessions WHERE token = ?`, token)
	session, err := scanSession(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}
	return session, nil
}
