package ipc

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/rpc"
	"net/rpc/jsonrpc"
	"os"
	"sync"
	"time"

	"log/slog"

	"dust/internal/api"
	"dust/internal/daemon"
	"dust/internal/logging"
	"dust/internal/logs"
)

// Server exposes daemon control via JSON-RPC over a Unix domain socket.
type Server struct {
	path      string
	daemon    *daemon.Daemon
	logger    *slog.Logger
	listener  net.Listener
	rpcServer *rpc.Server

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewServer configures the IPC server at the given socket path.
func NewServer(ctx context.Context, path string, d *daemon.Daemon, logger *slog.Logger) (*Server, error) {
	if d == nil {
		return nil, errors.New("ipc server requires daemon")
	}
	if logger == nil {
		logger = logging.NewNop()
	}

	if err := os.RemoveAll(path); err != nil {
		return nil, fmt.Errorf("remove existing socket: %w", err)
	}

	listener, err := net.Listen("unix", path)
	if err != nil {
		return nil, fmt.Errorf("listen on socket: %w", err)
	}

	rpcServer := rpc.NewServer()
	srv := &service{daemon: d, logger: logger, ctx: ctx}
	if err := rpcServer.RegisterName("Dust", srv); err != nil {
		listener.Close()
		return nil, fmt.Errorf("register rpc service: %w", err)
	}

	serverCtx, cancel := context.WithCancel(ctx)
	return &Server{
		path:      path,
		daemon:    d,
		logger:    logger,
		listener:  listener,
		rpcServer: rpcServer,
		ctx:       serverCtx,
		cancel:    cancel,
	}, nil
}

// Serve starts accepting RPC connections until the context is canceled.
func (s *Server) Serve() {
	s.logger.Debug("IPC server listening", logging.String("socket", s.path))
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		for {
			conn, err := s.listener.Accept()
			if err != nil {
				select {
				case <-s.ctx.Done():
					return
				default:
				}
				s.logger.Warn("accept failed",
					logging.Error(err),
					logging.String(logging.FieldEventType, "ipc_accept_failed"),
					logging.String(logging.FieldImpact, "IPC clients may fail to connect"),
					logging.String(logging.FieldErrorHint, "Check socket permissions and restart the daemon if needed"))
				continue
			}
			s.wg.Add(1)
			go func(c net.Conn) {
				defer s.wg.Done()
				s.rpcServer.ServeCodec(jsonrpc.NewServerCodec(c))
			}(conn)
		}
	}()
}

// Close stops the server and removes the socket file.
func (s *Server) Close() {
	s.cancel()
	if s.listener != nil {
		_ = s.listener.Close()
	}
	s.wg.Wait()
	if err := os.RemoveAll(s.path); err != nil {
		s.logger.Warn("failed to remove socket",
			logging.String("socket", s.path),
			logging.Error(err),
			logging.String(logging.FieldEventType, "ipc_socket_cleanup_failed"),
			logging.String(logging.FieldImpact, "stale IPC socket may block future starts"),
			logging.String(logging.FieldErrorHint, "Remove the socket file manually or rerun dust daemon stop"))
	}
}

type service struct {
	daemon *daemon.Daemon
	logger *slog.Logger
	ctx    context.Context
}

func (s *service) log() *slog.Logger {
	if s.logger == nil {
		return logging.NewNop()
	}
	return s.logger.With(logging.String(logging.FieldComponent, "ipc"))
}

func (s *service) library() *api.Service {
	return s.daemon.API()
}

func (s *service) Start(_ StartRequest, resp *StartResponse) error {
	s.log().Debug("daemon start requested")
	if err := s.daemon.Start(s.ctx); err != nil {
		resp.Started = false
		resp.Message = err.Error()
		return nil
	}
	resp.Started = true
	resp.Message = "daemon started"
	s.log().Info("daemon started via IPC",
		logging.String(logging.FieldEventType, "daemon_start"))
	return nil
}

func (s *service) Stop(_ StopRequest, resp *StopResponse) error {
	s.log().Debug("daemon stop requested")
	s.daemon.Stop()
	resp.Stopped = true
	s.log().Info("daemon stopped via IPC",
		logging.String(logging.FieldEventType, "daemon_stop"))
	return nil
}

func (s *service) Status(_ StatusRequest, resp *StatusResponse) error {
	status := s.daemon.Status(s.ctx)
	resp.Running = status.Running
	resp.Watching = status.Watching
	resp.LockPath = status.LockPath
	resp.SocketPath = status.SocketPath
	if status.Library != nil {
		resp.PID = status.Library.PID
		resp.Version = status.Library.Version
		resp.UptimeSeconds = status.Library.UptimeSeconds
		resp.GameCount = status.Library.GameCount
		resp.LibraryDir = status.Library.LibraryDir
		resp.DatabasePath = status.Library.DatabasePath
		resp.LibraryDisk = status.Library.LibraryDisk
	}
	return nil
}

func (s *service) GameList(_ GameListRequest, resp *GameListResponse) error {
	list, err := s.library().Games(s.ctx)
	if err != nil {
		return err
	}
	resp.Games = list.Games
	resp.Count = list.Count
	return nil
}

func (s *service) GameDescribe(req GameDescribeRequest, resp *GameDescribeResponse) error {
	if req.ID <= 0 {
		return fmt.Errorf("invalid game id %d", req.ID)
	}
	view, err := s.library().Game(s.ctx, req.ID)
	if err != nil {
		return err
	}
	resp.Game = *view
	return nil
}

func (s *service) GameAdd(req GameAddRequest, resp *GameAddResponse) error {
	s.log().Debug("game add requested", logging.String("title", req.Game.Title))
	view, err := s.library().AddGame(s.ctx, req.Game)
	if err != nil {
		return err
	}
	resp.Game = *view
	return nil
}

func (s *service) GameUpdate(req GameUpdateRequest, resp *GameUpdateResponse) error {
	if req.ID <= 0 {
		return fmt.Errorf("invalid game id %d", req.ID)
	}
	view, err := s.library().UpdateGame(s.ctx, req.ID, req.Patch)
	if err != nil {
		return err
	}
	resp.Game = *view
	return nil
}

func (s *service) GameRemove(req GameRemoveRequest, resp *GameRemoveResponse) error {
	if req.ID <= 0 {
		return fmt.Errorf("invalid game id %d", req.ID)
	}
	if err := s.library().RemoveGame(s.ctx, req.ID); err != nil {
		return err
	}
	resp.Removed = true
	return nil
}

func (s *service) Scan(req ScanRequest, resp *ScanResponse) error {
	s.log().Debug("scan requested", logging.String("root", req.Root))
	summary, err := s.library().ScanLibrary(s.ctx, req.Root)
	if err != nil {
		return err
	}
	resp.Summary = *summary
	return nil
}

func (s *service) Import(req ImportRequest, resp *ImportResponse) error {
	s.log().Debug("import requested",
		logging.String("folder", req.Folder),
		logging.String("source", req.Source))
	summary, err := s.library().ImportFolder(s.ctx, req.Folder, req.Source)
	if err != nil {
		return err
	}
	resp.Summary = *summary
	return nil
}

func (s *service) DLSiteInfo(req DLSiteInfoRequest, resp *DLSiteInfoResponse) error {
	work, err := s.library().DLSiteInfo(s.ctx, req.ID)
	if err != nil {
		return err
	}
	resp.Work = *work
	return nil
}

func (s *service) Launch(req LaunchRequest, resp *LaunchResponse) error {
	if req.ID <= 0 {
		return fmt.Errorf("invalid game id %d", req.ID)
	}
	info, err := s.library().PrepareLaunch(s.ctx, req.ID)
	if err != nil {
		return err
	}
	resp.Launch = *info
	return nil
}

func (s *service) FinishSession(req FinishSessionRequest, resp *FinishSessionResponse) error {
	receipt, err := s.library().FinishSession(s.ctx, req.Token)
	if err != nil {
		return err
	}
	resp.Receipt = *receipt
	return nil
}

func (s *service) LogTail(req LogTailRequest, resp *LogTailResponse) error {
	logPath := s.daemon.LogPath()
	if logPath == "" {
		resp.Offset = 0
		return nil
	}
	wait := time.Duration(req.WaitMillis) * time.Millisecond
	if wait <= 0 && req.Follow {
		wait = time.Second
	}
	options := logs.TailOptions{
		Offset: req.Offset,
		Limit:  req.Limit,
		Follow: req.Follow,
		Wait:   wait,
	}
	ctx := s.ctx
	if req.Follow && wait > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(s.ctx, wait+500*time.Millisecond)
		defer cancel()
	}
	result, err := logs.Tail(ctx, logPath, options)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			resp.Offset = result.Offset
			return nil
		}
		return err
	}
	resp.Lines = result.Lines
	resp.Offset = result.Offset
	return nil
}
