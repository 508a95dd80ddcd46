package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/mj1618/focusguard/internal/output"
	"github.com/mj1618/focusguard/internal/platform"
	"github.com/mj1618/focusguard/internal/signal"
	"github.com/mj1618/focusguard/internal/version"
)

// mcpServer exposes a running focus loop as MCP tools.
type mcpServer struct {
	loop *focusLoop
	mcp  *mcpserver.MCPServer
}

// MCPConfig holds MCP server configuration.
type MCPConfig struct {
	Transport string
	Port      int
}

func newMCPServer(loop *focusLoop) *mcpServer {
	s := &mcpServer{
		loop: loop,
		mcp:  mcpserver.NewMCPServer("focusguard", version.Version),
	}
	s.registerTools()
	return s
}

// serve starts the MCP server with the configured transport.
func (s *mcpServer) serve(cfg MCPConfig) error {
	switch cfg.Transport {
	case "stdio":
		return mcpserver.ServeStdio(s.mcp)
	case "streamable-http":
		httpServer := mcpserver.NewStreamableHTTPServer(s.mcp)
		return httpServer.Start(fmt.Sprintf(":%d", cfg.Port))
	default:
		return fmt.Errorf("unsupported transport: %s (use stdio or streamable-http)", cfg.Transport)
	}
}

func (s *mcpServer) registerTools() {
	s.mcp.AddTool(
		mcp.NewTool("switch_window",
			mcp.WithDescription("Announce that the browser is about to switch windows. Focus arbitration pauses until a new window takes focus."),
			mcp.WithString("reason", mcp.Description("Free-form reason, for logs")),
			mcp.WithBoolean("close", mcp.Description("The switch happens because a window closes")),
		),
		s.handleSwitchWindow,
	)

	s.mcp.AddTool(
		mcp.NewTool("focus_state",
			mcp.WithDescription("Report the focus arbitration state: phase, active and pending windows, and flags"),
		),
		s.handleFocusState,
	)

	s.mcp.AddTool(
		mcp.NewTool("send_keys",
			mcp.WithDescription("Type text into the watched window"),
			mcp.WithString("text", mcp.Description("Text to type"), mcp.Required()),
			mcp.WithNumber("delay", mcp.Description("Delay between keystrokes in ms")),
		),
		s.handleSendKeys,
	)

	s.mcp.AddTool(
		mcp.NewTool("click",
			mcp.WithDescription("Click in the watched window at window coordinates"),
			mcp.WithNumber("x", mcp.Description("X coordinate relative to the window"), mcp.Required()),
			mcp.WithNumber("y", mcp.Description("Y coordinate relative to the window"), mcp.Required()),
			mcp.WithString("button", mcp.Description("Mouse button: left, right, middle")),
			mcp.WithBoolean("press", mcp.Description("Only press the button")),
			mcp.WithBoolean("release", mcp.Description("Only release the button")),
		),
		s.handleClick,
	)

	s.mcp.AddTool(
		mcp.NewTool("move",
			mcp.WithDescription("Move the pointer across the watched window in a straight line"),
			mcp.WithNumber("from-x", mcp.Description("Start X coordinate"), mcp.Required()),
			mcp.WithNumber("from-y", mcp.Description("Start Y coordinate"), mcp.Required()),
			mcp.WithNumber("to-x", mcp.Description("End X coordinate"), mcp.Required()),
			mcp.WithNumber("to-y", mcp.Description("End Y coordinate"), mcp.Required()),
			mcp.WithNumber("duration", mcp.Description("Duration of the move in ms")),
		),
		s.handleMove,
	)
}

// resultToText serializes a tool result to YAML for the MCP response.
func resultToText(v interface{}) string {
	text, err := output.Marshal(output.FormatYAML, false, v)
	if err != nil {
		return fmt.Sprintf("error: %v", err)
	}
	return text
}

func (s *mcpServer) handleSwitchWindow(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	params := request.GetArguments()
	reason := stringParam(params, "reason", "switch")
	isClose := boolParam(params, "close", false)

	sig := signal.Signal{
		Payload: signal.Format(reason, isClose, cfg.Marker.CloseTag),
		Close:   isClose,
	}
	if err := s.loop.queue.TrySend(sig); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(resultToText(SignalResult{
		OK:      true,
		Action:  "switch_window",
		Marker:  "queue",
		Payload: sig.Payload,
		Close:   isClose,
	})), nil
}

func (s *mcpServer) handleFocusState(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(resultToText(s.loop.interceptor.Snapshot())), nil
}

func (s *mcpServer) handleSendKeys(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	params := request.GetArguments()
	text := stringParam(params, "text", "")
	delayMs := intParam(params, "delay", 0)
	if text == "" {
		return mcp.NewToolResultError("text is required"), nil
	}

	inputter, w, err := s.loop.inputter()
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if err := inputter.SendKeys(ctx, w, text, time.Duration(delayMs)*time.Millisecond); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(resultToText(output.ActionResult{OK: true, Action: "send_keys", Window: w})), nil
}

func (s *mcpServer) handleClick(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	params := request.GetArguments()
	button, err := platform.ParseMouseButton(stringParam(params, "button", "left"))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	inputter, w, err := s.loop.inputter()
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	result, err := executeClick(ctx, inputter, w, clickOptions{
		X:       intParam(params, "x", 0),
		Y:       intParam(params, "y", 0),
		Button:  button,
		Press:   boolParam(params, "press", false),
		Release: boolParam(params, "release", false),
	})
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(resultToText(result)), nil
}

func (s *mcpServer) handleMove(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	params := request.GetArguments()
	inputter, w, err := s.loop.inputter()
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	err = inputter.MouseMove(ctx, w,
		time.Duration(intParam(params, "duration", 0))*time.Millisecond,
		intParam(params, "from-x", 0), intParam(params, "from-y", 0),
		intParam(params, "to-x", 0), intParam(params, "to-y", 0),
	)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(resultToText(output.ActionResult{OK: true, Action: "move", Window: w})), nil
}
