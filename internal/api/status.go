package api

import (
	"context"
	"os"
	"strings"
	"time"

	"golang.org/x/sys/unix"

	"dust/internal/version"
)

// Status reports daemon runtime information for the status endpoint and the
// CLI status command.
func (s *Service) Status(ctx context.Context) (*StatusInfo, error) {
	count, err := s.store.CountGames(ctx)
	if err != nil {
		return nil, err
	}
	info := &StatusInfo{
		Version:       version.Version,
		PID:           os.Getpid(),
		UptimeSeconds: int64(time.Since(s.startedAt).Seconds()),
		GameCount:     count,
		LibraryDir:    s.cfg.Paths.LibraryDir,
		DatabasePath:  s.cfg.DatabasePath(),
	}
	if usage, err := diskUsage(s.cfg.Paths.LibraryDir); err == nil {
		info.LibraryDisk = usage
	}
	return info, nil
}

// diskUsage reads capacity for the filesystem holding dir. Failures are not
// fatal; the status response simply omits the disk block.
func diskUsage(dir string) (*DiskUsage, error) {
	if strings.TrimSpace(dir) == "" {
		return nil, os.ErrInvalid
	}
	var stat unix.Statfs_t
	if err := unix.Statfs(dir, &stat); err != nil {
		return nil, err
	}
	total := stat.Blocks * uint64(stat.Bsize)
	free := stat.Bavail * uint64(stat.Bsize)
	return &DiskUsage{
		TotalBytes: total,
		FreeBytes:  free,
		UsedBytes:  total - free,
	}, nil
}
