package toolchain

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os/exec"

	"github.com/sourcegraph/jsonrpc2"
)

// Method names of the toolchain service.
const (
	MethodCheckEnv = "checkEnv"
	MethodCompile  = "compile"
	MethodLog      = "log"
)

// Client is a JSON-RPC client of the toolchain service.  It is safe for
// concurrent use.
type Client struct {
	conn   *jsonrpc2.Conn
	cmd    *exec.Cmd
	logger *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithLogger sets the logger receiving the service's log notifications.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// Start launches the toolchain service at path and connects to it over the
// process' standard streams.
func Start(ctx context.Context, path string, opts ...Option) (*Client, error) {
	if path == "" {
		return nil, ErrNotInstalled
	}

	resolved, err := exec.LookPath(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrNotInstalled, err)
	}

	cmd := exec.Command(resolved, "serve")
	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, err
	}

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, err
	}

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("failed to start toolchain service: %w", err)
	}

	c := NewClient(ctx, pipeRWC{stdout, stdin}, opts...)
	c.cmd = cmd
	return c, nil
}

// NewClient connects to a toolchain service over rwc.
func NewClient(ctx context.Context, rwc io.ReadWriteCloser, opts ...Option) *Client {
	c := &Client{}
	for _, opt := range opts {
		opt(c)
	}

	c.conn = jsonrpc2.NewConn(ctx,
		jsonrpc2.NewBufferedStream(rwc, jsonrpc2.VSCodeObjectCodec{}),
		jsonrpc2.HandlerWithError(c.handle))
	return c
}

// CheckEnv asks the service whether its native environment is usable.
func (c *Client) CheckEnv(ctx context.Context) (Status, error) {
	var status Status
	if err := c.conn.Call(ctx, MethodCheckEnv, nil, &status); err != nil {
		return Status{}, fmt.Errorf("toolchain %s: %w", MethodCheckEnv, err)
	}

	return status, nil
}

// Compile compiles the generated sources of one plugin.  Once sent, the call
// waits for its reply even if ctx is cancelled.
func (c *Client) Compile(ctx context.Context, req *CompileRequest) (Status, error) {
	var status Status
	if err := c.conn.Call(context.WithoutCancel(ctx), MethodCompile, req, &status); err != nil {
		return Status{}, fmt.Errorf("toolchain %s: %w", MethodCompile, err)
	}

	return status, nil
}

// Close disconnects from the service and waits for it to exit if this client
// started it.
func (c *Client) Close() error {
	err := c.conn.Close()
	if c.cmd != nil {
		if werr := c.cmd.Wait(); err == nil {
			err = werr
		}
	}

	return err
}

// logParams are the parameters of a log notification
type logParams struct {
	Level   string `json:"level"`
	Message string `json:"message"`
}

// handle handles requests initiated by the service.  Only log notifications
// are understood.
func (c *Client) handle(ctx context.Context, _ *jsonrpc2.Conn, req *jsonrpc2.Request) (interface{}, error) {
	if req.Method != MethodLog {
		return nil, &jsonrpc2.Error{Code: jsonrpc2.CodeMethodNotFound, Message: "method not found"}
	}

	if c.logger == nil || req.Params == nil {
		return nil, nil
	}

	var params logParams
	if err := json.Unmarshal(*req.Params, &params); err != nil {
		return nil, &jsonrpc2.Error{Code: jsonrpc2.CodeInvalidParams, Message: "invalid params"}
	}

	level := slog.LevelInfo
	switch params.Level {
	case "error":
		level = slog.LevelError
	case "warn":
		level = slog.LevelWarn
	case "debug":
		level = slog.LevelDebug
	}

	c.logger.Log(ctx, level, params.Message, "source", "toolchain")
	return nil, nil
}

// pipeRWC joins the standard streams of a child process
type pipeRWC struct {
	r io.ReadCloser
	w io.WriteCloser
}

func (p pipeRWC) Read(b []byte) (int, error)  { return p.r.Read(b) }
func (p pipeRWC) Write(b []byte) (int, error) { return p.w.Write(b) }

func (p pipeRWC) Close() error {
	if err := p.w.Close(); err != nil {
		p.r.Close()
		return err
	}

	return p.r.Close()
}
