package app

import (
	"context"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"diagnote/internal/config"
	mcpserver "diagnote/internal/mcp"
	"diagnote/internal/secret"
	"diagnote/internal/storage"
)

// noopEmitter is a no-op EventEmitter used in MCP-only mode (no Wails frontend).
type noopEmitter struct{}

func (noopEmitter) Emit(_ context.Context, _ string, _ any) {}

// ServeMCP runs the app as a standalone MCP server on stdin/stdout with no GUI.
// It shares the database with the desktop app; destructive tools wait for
// approval through the mcp_approvals table.
func ServeMCP() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	cfg, err := config.Load(config.File())
	if err != nil {
		log.Printf("[MCP] config: %v (using defaults)", err)
		cfg = config.Default()
	}

	db, err := storage.New(cfg.DBPath(), filepath.Join(cfg.DataDir, "editor"))
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()

	emitter := noopEmitter{}
	svcs := newServices(cfg, db, secret.Default(), emitter)
	defer svcs.export.Stop()

	srv := mcpserver.New(ctx, mcpserver.Deps{
		Emitter:   emitter,
		Notes:     svcs.notes,
		Canvas:    svcs.canvas,
		History:   svcs.history,
		Export:    svcs.export,
		Entries:   svcs.entries,
		Approvals: svcs.approvals,
	})

	log.Println("[MCP] Starting standalone stdio server...")
	if err := srv.ServeStdio(); err != nil {
		log.Fatalf("MCP server error: %v", err)
	}
}
