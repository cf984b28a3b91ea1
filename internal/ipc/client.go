package ipc

import (
	"net"
	"net/rpc"
	"net/rpc/jsonrpc"
	"time"
)

// Client provides RPC access to the daemon.
type Client struct {
	conn   net.Conn
	client *rpc.Client
}

// Dial connects to the IPC server at the given socket path.
func Dial(path string) (*Client, error) {
	conn, err := net.DialTimeout("unix", path, 2*time.Second)
	if err != nil {
		return nil, err
	}
	rpcClient := rpc.NewClientWithCodec(jsonrpc.NewClientCodec(conn))
	return &Client{conn: conn, client: rpcClient}, nil
}

// Close closes the underlying connection.
func (c *Client) Close() error {
	if c.client != nil {
		_ = c.client.Close()
	}
	if c.conn != nil {
		return c.conn.Close()
	}
	return nil
}

// Start requests the daemon to bring its services up.
func (c *Client) Start() (*StartResponse, error) {
	var resp StartResponse
	if err := c.client.Call("Dust.Start", StartRequest{}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Stop requests the daemon to stop its services.
func (c *Client) Stop() (*StopResponse, error) {
	var resp StopResponse
	if err := c.client.Call("Dust.Stop", StopRequest{}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Status retrieves the daemon status.
func (c *Client) Status() (*StatusResponse, error) {
	var resp StatusResponse
	if err := c.client.Call("Dust.Status", StatusRequest{}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// GameList returns every library record in insertion order.
func (c *Client) GameList() (*GameListResponse, error) {
	var resp GameListResponse
	if err := c.client.Call("Dust.GameList", GameListRequest{}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// GameDescribe returns details for a single game.
func (c *Client) GameDescribe(id int64) (*GameDescribeResponse, error) {
	var resp GameDescribeResponse
	if err := c.client.Call("Dust.GameDescribe", GameDescribeRequest{ID: id}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// GameAdd adds a game through the daemon's reconciliation flow.
func (c *Client) GameAdd(game AddGameRequest) (*GameAddResponse, error) {
	var resp GameAddResponse
	if err := c.client.Call("Dust.GameAdd", GameAddRequest{Game: game}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// GameUpdate patches stored fields on a game.
func (c *Client) GameUpdate(id int64, patch UpdateGameRequest) (*GameUpdateResponse, error) {
	var resp GameUpdateResponse
	if err := c.client.Call("Dust.GameUpdate", GameUpdateRequest{ID: id, Patch: patch}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// GameRemove deletes a game record.
func (c *Client) GameRemove(id int64) (*GameRemoveResponse, error) {
	var resp GameRemoveResponse
	if err := c.client.Call("Dust.GameRemove", GameRemoveRequest{ID: id}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Scan runs a library scan rooted at the given directory.
func (c *Client) Scan(root string) (*ScanResponse, error) {
	var resp ScanResponse
	if err := c.client.Call("Dust.Scan", ScanRequest{Root: root}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Import imports every game directory under a folder.
func (c *Client) Import(folder, source string) (*ImportResponse, error) {
	var resp ImportResponse
	if err := c.client.Call("Dust.Import", ImportRequest{Folder: folder, Source: source}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// DLSiteInfo looks up catalog metadata without touching the library.
func (c *Client) DLSiteInfo(id string) (*DLSiteInfoResponse, error) {
	var resp DLSiteInfoResponse
	if err := c.client.Call("Dust.DLSiteInfo", DLSiteInfoRequest{ID: id}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Launch prepares a launch handoff for a game.
func (c *Client) Launch(id int64) (*LaunchResponse, error) {
	var resp LaunchResponse
	if err := c.client.Call("Dust.Launch", LaunchRequest{ID: id}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// FinishSession closes a play session by token.
func (c *Client) FinishSession(token string) (*FinishSessionResponse, error) {
	var resp FinishSessionResponse
	if err := c.client.Call("Dust.FinishSession", FinishSessionRequest{Token: token}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// LogTail returns log lines from the daemon.
func (c *Client) LogTail(req LogTailRequest) (*LogTailResponse, error) {
	var resp LogTailResponse
	if err := c.client.Call("Dust.LogTail", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}
