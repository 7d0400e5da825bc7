package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"scoperoot-hq/scoperoot/pkg/share"
	"scoperoot-hq/scoperoot/pkg/telemetry/metrics"
)

// deniedMessage is returned verbatim for every inaccessible path. Denials
// must be indistinguishable to remote callers regardless of the reason.
const deniedMessage = "path not accessible"

// registerTools adds the file tools to the MCP server.
func registerTools(srv *mcpserver.MCPServer, service *share.Service, collector *metrics.Collector, logger *slog.Logger) {
	h := &toolHandlers{
		service:   service,
		collector: collector,
		logger:    logger.With("component", "server.tools"),
	}

	listFiles := mcp.NewTool("list_files",
		mcp.WithDescription("List accessible files under the shared root, optionally restricted to a relative prefix."),
		mcp.WithString("prefix",
			mcp.Description("Relative directory to list. Defaults to the shared root."),
		),
	)
	srv.AddTool(listFiles, h.listFiles)

	readText := mcp.NewTool("read_text",
		mcp.WithDescription("Read a UTF-8 text file from the shared root."),
		mcp.WithString("path",
			mcp.Required(),
			mcp.Description("Relative path of the file to read."),
		),
		mcp.WithNumber("max_bytes",
			mcp.Description("Response size cap in bytes. May lower but not raise the server limit."),
		),
	)
	srv.AddTool(readText, h.readText)
}

type toolHandlers struct {
	service   *share.Service
	collector *metrics.Collector
	logger    *slog.Logger
}

func (h *toolHandlers) record(tool, status string, start time.Time) {
	if h.collector != nil {
		h.collector.RecordToolRequest(tool, status, time.Since(start))
	}
}

func (h *toolHandlers) listFiles(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	start := time.Now()
	prefix := req.GetString("prefix", "")

	files, err := h.service.List(ctx, prefix)
	if err != nil {
		if errors.Is(err, share.ErrNotAccessible) {
			h.record("list_files", "denied", start)
			return mcp.NewToolResultError(deniedMessage), nil
		}
		h.record("list_files", "error", start)
		h.logger.Error("list_files failed", "prefix", prefix, "error", err)
		return mcp.NewToolResultError("internal error"), nil
	}

	payload, err := json.Marshal(files)
	if err != nil {
		h.record("list_files", "error", start)
		return mcp.NewToolResultError("internal error"), nil
	}

	h.record("list_files", "success", start)
	return mcp.NewToolResultText(string(payload)), nil
}

func (h *toolHandlers) readText(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	start := time.Now()

	path, err := req.RequireString("path")
	if err != nil {
		h.record("read_text", "error", start)
		return mcp.NewToolResultError("path is required"), nil
	}
	maxBytes := int64(req.GetInt("max_bytes", 0))

	data, err := h.service.Read(ctx, path, maxBytes)
	if err != nil {
		var tooLarge *share.TooLargeError
		switch {
		case errors.Is(err, share.ErrNotAccessible):
			h.record("read_text", "denied", start)
			return mcp.NewToolResultError(deniedMessage), nil
		case errors.As(err, &tooLarge):
			h.record("read_text", "too_large", start)
			return mcp.NewToolResultError(fmt.Sprintf(
				"file is %d bytes, exceeds limit of %d bytes", tooLarge.Size, tooLarge.Limit)), nil
		case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
			h.record("read_text", "cancelled", start)
			return nil, err
		default:
			h.record("read_text", "error", start)
			h.logger.Error("read_text failed", "path", path, "error", err)
			return mcp.NewToolResultError("internal error"), nil
		}
	}

	h.record("read_text", "success", start)
	return mcp.NewToolResultText(string(data)), nil
}
