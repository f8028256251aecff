// Package mcp provides an MCP (Model Context Protocol) server that lets
// agents generate CBC designs and simulate responses.
package mcp

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	sdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/nvandessel/conjoint/internal/config"
	"github.com/nvandessel/conjoint/internal/logging"
	"github.com/nvandessel/conjoint/internal/ratelimit"
	"github.com/nvandessel/conjoint/internal/session"
	"github.com/nvandessel/conjoint/internal/store"
)

// Server wraps the MCP SDK server and the conjoint run pipeline.
type Server struct {
	server       *sdk.Server
	runner       *session.Runner
	store        store.RunStore
	audit        *AuditLogger
	toolLimiters ratelimit.ToolLimiters
	root         string
}

// Config holds server configuration.
type Config struct {
	Name     string // Server name (e.g., "conjoint")
	Version  string // Server version
	Root     string // Project root directory
	Settings *config.ConjointConfig
	Logger   *slog.Logger
	Trace    *logging.TraceLog
}

// NewServer creates a new MCP server with the conjoint tools.
func NewServer(cfg *Config) (*Server, error) {
	runStore, err := store.NewSQLiteRunStore(cfg.Root)
	if err != nil {
		return nil, fmt.Errorf("failed to open run store: %w", err)
	}

	mcpServer := sdk.NewServer(&sdk.Implementation{
		Name:    cfg.Name,
		Version: cfg.Version,
	}, &sdk.ServerOptions{})

	s := &Server{
		server:       mcpServer,
		runner:       session.NewRunner(cfg.Root, runStore, cfg.Settings, cfg.Logger, cfg.Trace),
		store:        runStore,
		audit:        NewAuditLogger(cfg.Root),
		toolLimiters: ratelimit.NewToolLimiters(),
		root:         cfg.Root,
	}

	s.registerTools()
	s.registerResources()

	return s, nil
}

// Run starts the MCP server over stdio transport.
// This blocks until the client disconnects or the context is cancelled.
func (s *Server) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	notifySignals(sigChan)

	go func() {
		select {
		case <-sigChan:
			cancel()
		case <-ctx.Done():
		}
	}()

	err := s.server.Run(ctx, &sdk.StdioTransport{})

	if cerr := s.Close(); cerr != nil && err == nil {
		err = cerr
	}
	return err
}

// Close closes the server and releases resources.
func (s *Server) Close() error {
	s.audit.Close()
	return s.store.Close()
}
