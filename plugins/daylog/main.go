package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	hookrpc "studytrack/internal/modules/hook/adapter/out/rpc"

	"github.com/hashicorp/go-plugin"
)

// logPathEnv names the JSON-lines file closed days are appended to.
const logPathEnv = "STUDYTRACK_DAYLOG"

type server struct {
	mu sync.Mutex
}

func (s *server) GetMetadata(_ context.Context, _ *hookrpc.Empty) (*hookrpc.Metadata, error) {
	return &hookrpc.Metadata{
		Name:    "daylog",
		Version: "1.0.0",
		Events:  []string{"day_closed"},
	}, nil
}

func (s *server) DayClosed(_ context.Context, in *hookrpc.DayClosedRequest) (*hookrpc.Ack, error) {
	path := os.Getenv(logPathEnv)
	if path == "" {
		path = filepath.Join(os.TempDir(), "studytrack-daylog.jsonl")
	}
	line, err := json.Marshal(in)
	if err != nil {
		return nil, fmt.Errorf("encode day: %w", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open day log: %w", err)
	}
	defer f.Close()
	if _, err := f.Write(append(line, '\n')); err != nil {
		return nil, fmt.Errorf("append day log: %w", err)
	}
	return &hookrpc.Ack{Accepted: true, Message: fmt.Sprintf("logged %s to %s", in.Date, path)}, nil
}

func main() {
	plugin.Serve(&plugin.ServeConfig{
		HandshakeConfig: hookrpc.HandshakeConfig,
		Plugins:         hookrpc.PluginMap(&server{}),
		GRPCServer:      plugin.DefaultGRPCServer,
	})
}
