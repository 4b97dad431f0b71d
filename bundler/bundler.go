package bundler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

// Bundler is the external UTS bundler.  A call may take a long time (a full
// native bundle) and is not cancelled by this layer once dispatched.
type Bundler interface {
	Bundle(ctx context.Context, target Target, req *Request) (*Result, error)
}

// ErrNotInstalled is returned when the bundler executable cannot be found.
var ErrNotInstalled = errors.New("uts bundler is not installed")

// Exec runs the bundler executable once per request.  The request is written
// as JSON to the process' stdin and the result is read as JSON from its
// stdout.  Compile errors in user code arrive inside the result; a non-zero
// exit status means the bundler itself failed.
type Exec struct {
	// Path is the bundler executable.
	Path string
}

// NewExec creates a bundler client for the executable at path.  Bare names are
// looked up in PATH.
func NewExec(path string) (*Exec, error) {
	resolved, err := exec.LookPath(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrNotInstalled, err)
	}

	return &Exec{Path: resolved}, nil
}

// Bundle runs the bundler to completion; ctx does not interrupt it.
func (e *Exec) Bundle(_ context.Context, target Target, req *Request) (*Result, error) {
	payload, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("error encoding bundle request: %w", err)
	}

	cmd := exec.Command(e.Path, "bundle", "--target", string(target))
	cmd.Stdin = bytes.NewReader(payload)

	stdoutBuff := bytes.Buffer{}
	stderrBuff := bytes.Buffer{}
	cmd.Stdout = &stdoutBuff
	cmd.Stderr = &stderrBuff

	if err := cmd.Run(); err != nil {
		if stderr := strings.TrimSpace(stderrBuff.String()); stderr != "" {
			return nil, fmt.Errorf("bundler failed: %s", stderr)
		}

		return nil, fmt.Errorf("failed to run bundler: %w", err)
	}

	res := &Result{}
	if err := json.Unmarshal(stdoutBuff.Bytes(), res); err != nil {
		return nil, fmt.Errorf("error decoding bundle result: %w", err)
	}

	return res, nil
}
