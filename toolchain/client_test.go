package toolchain

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/sourcegraph/jsonrpc2"
)

// fakeService serves the toolchain methods over one end of a pipe.
type fakeService struct {
	envStatus     Status
	compileStatus Status
	compiled      []CompileRequest
}

func (f *fakeService) handle(_ context.Context, _ *jsonrpc2.Conn, req *jsonrpc2.Request) (interface{}, error) {
	switch req.Method {
	case MethodCheckEnv:
		return f.envStatus, nil
	case MethodCompile:
		var params CompileRequest
		if err := json.Unmarshal(*req.Params, &params); err != nil {
			return nil, err
		}

		f.compiled = append(f.compiled, params)
		return f.compileStatus, nil
	}

	return nil, &jsonrpc2.Error{Code: jsonrpc2.CodeMethodNotFound, Message: "method not found"}
}

func setup(t *testing.T, f *fakeService) *Client {
	t.Helper()
	ctx := context.Background()

	clientSide, serverSide := net.Pipe()
	server := jsonrpc2.NewConn(ctx,
		jsonrpc2.NewBufferedStream(serverSide, jsonrpc2.VSCodeObjectCodec{}),
		jsonrpc2.HandlerWithError(f.handle))

	client := NewClient(ctx, clientSide)
	t.Cleanup(func() {
		client.Close()
		server.Close()
	})

	return client
}

func TestClient_CheckEnv(t *testing.T) {
	f := &fakeService{envStatus: Status{Code: 1, Message: "Xcode not found"}}
	client := setup(t, f)

	status, err := client.CheckEnv(context.Background())
	if err != nil {
		t.Fatal(err)
	}

	if status.OK() {
		t.Error("status should not be OK")
	}

	if diff := cmp.Diff(f.envStatus, status); diff != "" {
		t.Errorf("CheckEnv (-want +got):\n%s", diff)
	}
}

func TestClient_Compile(t *testing.T) {
	f := &fakeService{}
	client := setup(t, f)

	req := &CompileRequest{
		ProjectPath: "/proj",
		Type:        1,
		PluginName:  "test-plugin",
		UTSPath:     "/proj/uni_modules",
		SwiftPath:   "/out/uni_modules",
	}

	status, err := client.Compile(context.Background(), req)
	if err != nil {
		t.Fatal(err)
	}

	if !status.OK() {
		t.Errorf("status = %+v, want OK", status)
	}

	if diff := cmp.Diff([]CompileRequest{*req}, f.compiled); diff != "" {
		t.Errorf("compiled requests (-want +got):\n%s", diff)
	}
}

func TestClient_TransportError(t *testing.T) {
	client := setup(t, &fakeService{})
	client.Close()

	if _, err := client.Compile(context.Background(), &CompileRequest{}); err == nil {
		t.Error("Compile on a closed client should fail")
	}
}

func TestStart_NotInstalled(t *testing.T) {
	if _, err := Start(context.Background(), ""); !errors.Is(err, ErrNotInstalled) {
		t.Errorf("Start(\"\") error = %v, want ErrNotInstalled", err)
	}
}
