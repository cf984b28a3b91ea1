package api

import (
	"context"
	"fmt"
	"os"
	"strings"

	"dust/internal/logging"
	"dust/internal/services"
)

// PrepareLaunch verifies the stored executable still exists, stamps the
// game's last-played time, and opens a play session. The desktop shell does
// the actual spawning and reports the session token back through
// FinishSession when the game exits. Nothing is written when the executable
// is missing, so a stale record stays byte-identical until the user fixes
// the path.
func (s *Service) PrepareLaunch(ctx context.Context, id int64) (*LaunchInfo, error) {
	rec, err := s.store.GameByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, services.Wrap(services.ErrNotFound, "api", "prepare launch",
			fmt.Sprintf("game %d not found", id), nil)
	}
	if !rec.Launchable() {
		return nil, services.Wrap(services.ErrValidation, "api", "prepare launch",
			fmt.Sprintf("game %d has no executable recorded", id), nil)
	}
	target := rec.ExecutableTarget()
	info, err := os.Stat(target)
	if err != nil {
		return nil, services.Wrap(services.ErrValidation, "api", "prepare launch",
			"executable missing at "+target, err)
	}
	if info.IsDir() {
		return nil, services.Wrap(services.ErrValidation, "api", "prepare launch",
			target+" is a directory", nil)
	}

	session, err := s.store.RecordLaunch(ctx, id)
	if err != nil {
		return nil, err
	}
	s.logger.Info("launch prepared",
		logging.Int64(logging.FieldGameID, id),
		logging.String("session_token", session.Token),
		logging.String(logging.FieldEventType, "launch_prepared"),
	)
	return &LaunchInfo{
		GameID:       rec.ID,
		Title:        rec.Title,
		Executable:   target,
		WorkingDir:   rec.ExecPath,
		SessionToken: session.Token,
		StartedAt:    formatTime(session.StartedAt),
	}, nil
}

// FinishSession closes the play session identified by token and credits the
// elapsed minutes to the game's total.
func (s *Service) FinishSession(ctx context.Context, token string) (*SessionReceipt, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, services.Wrap(services.ErrValidation, "api", "finish session",
			"session token is required", nil)
	}
	session, err := s.store.CloseSession(ctx, token)
	if err != nil {
		return nil, err
	}
	receipt := &SessionReceipt{GameID: session.GameID, Minutes: session.Minutes}
	if session.EndedAt != nil {
		receipt.EndedAt = formatTime(*session.EndedAt)
	}
	if rec, err := s.store.GameByID(ctx, session.GameID); err == nil && rec != nil {
		receipt.TotalPlayTime = rec.PlayTime
	}
	s.logger.Info("session closed",
		logging.Int64(logging.FieldGameID, session.GameID),
		logging.Int64("minutes", session.Minutes),
		logging.String(logging.FieldEventType, "session_closed"),
	)
	return receipt, nil
}
