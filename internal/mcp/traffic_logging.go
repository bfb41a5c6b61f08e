package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

// maxLoggedPayload bounds the payload text of one traffic record. Charts over
// many weeks and people get large.
const maxLoggedPayload = 2048

// trafficLoggingMiddleware writes a debug record per MCP request and response.
// Tool calls carry the tool name and whether the tool reported an error.
func trafficLoggingMiddleware(logger *slog.Logger, direction string) sdkmcp.Middleware {
	return func(next sdkmcp.MethodHandler) sdkmcp.MethodHandler {
		return func(ctx context.Context, method string, req sdkmcp.Request) (sdkmcp.Result, error) {
			if logger == nil || !logger.Enabled(ctx, slog.LevelDebug) {
				return next(ctx, method, req)
			}

			params := marshalPayload(safeParams(req))
			attrs := []any{
				"direction", direction,
				"method", method,
				"session_id", safeSessionID(req),
				"actor_id", getActorID(ctx),
			}
			if tool := toolName(method, params); tool != "" {
				attrs = append(attrs, "tool", tool)
			}
			logger.Debug("mcp request", append(attrs, "bytes", len(params), "params", truncatePayload(params))...)

			start := time.Now()
			result, err := next(ctx, method, req)
			if strings.HasPrefix(method, "notifications/") {
				return result, err
			}

			body := marshalPayload(result)
			attrs = append(attrs, "elapsed", time.Since(start), "bytes", len(body))
			if res, ok := result.(*sdkmcp.CallToolResult); ok && res != nil {
				attrs = append(attrs, "tool_error", res.IsError)
			}
			if err != nil {
				attrs = append(attrs, "error", err)
			}
			logger.Debug("mcp response", append(attrs, "result", truncatePayload(body))...)
			return result, err
		}
	}
}

// toolName pulls the tool name out of tools/call params.
func toolName(method string, params []byte) string {
	if method != "tools/call" || len(params) == 0 {
		return ""
	}
	var call struct {
		Name string `json:"name"`
	}
	if err := json.Unmarshal(params, &call); err != nil {
		return ""
	}
	return call.Name
}

func safeSessionID(req sdkmcp.Request) string {
	if req == nil {
		return ""
	}
	defer func() { recover() }()
	session := req.GetSession()
	if session == nil {
		return ""
	}
	return session.ID()
}

func safeParams(req sdkmcp.Request) any {
	if req == nil {
		return nil
	}
	defer func() { recover() }()
	return req.GetParams()
}

func marshalPayload(payload any) []byte {
	if payload == nil {
		return nil
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return []byte(fmt.Sprintf("%q", fmt.Sprintf("%T", payload)))
	}
	return data
}

func truncatePayload(data []byte) string {
	switch {
	case data == nil:
		return "<nil>"
	case len(data) > maxLoggedPayload:
		return fmt.Sprintf("%s...(%d more bytes)", data[:maxLoggedPayload], len(data)-maxLoggedPayload)
	default:
		return string(data)
	}
}
