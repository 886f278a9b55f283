package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/samber/lo"

	"github.com/bellmemo/bell-memo/internal/constants"
	"github.com/bellmemo/bell-memo/internal/logger"
	"github.com/bellmemo/bell-memo/internal/models"
	"github.com/bellmemo/bell-memo/internal/services"
)

type MemoServer struct {
	svc       *services.Services
	mcpServer *server.MCPServer
}

func NewMemoServer(svc *services.Services, version string) *MemoServer {
	ms := &MemoServer{svc: svc}

	ms.mcpServer = server.NewMCPServer(
		"bell-memo",
		version,
		server.WithToolCapabilities(true),
		server.WithResourceCapabilities(false, false),
	)

	ms.registerTools()
	ms.registerResources()

	return ms
}

func (s *MemoServer) GetMCPServer() *server.MCPServer {
	return s.mcpServer
}

func (s *MemoServer) registerTools() {
	addMemoTool := mcp.NewTool("add_memo",
		mcp.WithDescription("Store a new memo"),
		mcp.WithString("title",
			mcp.Description("The title of the memo (optional)"),
		),
		mcp.WithString("content",
			mcp.Description("The content of the memo (optional)"),
		),
		mcp.WithString("id",
			mcp.Description("UUID to store the memo under (optional, generated when omitted)"),
		),
	)
	s.mcpServer.AddTool(addMemoTool, s.handleAddMemo)

	getMemoTool := mcp.NewTool("get_memo",
		mcp.WithDescription("Get a memo by its UUID"),
		mcp.WithString("id",
			mcp.Required(),
			mcp.Description("The UUID of the memo"),
		),
	)
	s.mcpServer.AddTool(getMemoTool, s.handleGetMemo)

	listMemosTool := mcp.NewTool("list_memos",
		mcp.WithDescription("List memos, newest first"),
		mcp.WithNumber("limit",
			mcp.Description("Maximum number of memos to return"),
		),
		mcp.WithNumber("offset",
			mcp.Description("Number of memos to skip"),
		),
	)
	s.mcpServer.AddTool(listMemosTool, s.handleListMemos)

	searchTool := mcp.NewTool("search",
		mcp.WithDescription("Deliver a search query to the memo search handler"),
		mcp.WithString("query",
			mcp.Required(),
			mcp.Description("Free-text query"),
		),
	)
	s.mcpServer.AddTool(searchTool, s.handleSearch)
}

func (s *MemoServer) registerResources() {
	recentResource := mcp.NewResource("memos://recent",
		"Recent Memos",
		mcp.WithResourceDescription("The most recently created memos"),
		mcp.WithMIMEType("application/json"),
	)
	s.mcpServer.AddResource(recentResource, s.handleRecentMemos)

	statsResource := mcp.NewResource("memos://stats",
		"Memo Statistics",
		mcp.WithResourceDescription("Statistics about the memo database"),
		mcp.WithMIMEType("text/plain"),
	)
	s.mcpServer.AddResource(statsResource, s.handleStats)
}

// Tool handlers
func (s *MemoServer) handleAddMemo(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	logger.Debug("MCP tool call: add_memo")

	memo := &models.Memo{}
	// Only fields the caller sent are stored; the rest stay NULL
	args := request.GetArguments()
	if title, ok := args["title"].(string); ok {
		memo.Title = &title
	}
	if content, ok := args["content"].(string); ok {
		memo.Content = &content
	}

	if idStr := request.GetString("id", ""); idStr != "" {
		id, err := uuid.Parse(idStr)
		if err != nil {
			return nil, fmt.Errorf("invalid 'id': %w", err)
		}
		memo.ID = id
	}

	if err := s.svc.Memos.Create(ctx, memo); err != nil {
		return nil, fmt.Errorf("failed to add memo: %w", err)
	}

	return mcp.NewToolResultText(fmt.Sprintf("Memo stored with ID: %s\nTitle: %s", memo.ID, memo.TitleOrEmpty())), nil
}

func (s *MemoServer) handleGetMemo(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	logger.Debug("MCP tool call: get_memo")

	idStr, err := request.RequireString("id")
	if err != nil {
		return nil, fmt.Errorf("missing required parameter 'id': %w", err)
	}
	id, err := uuid.Parse(idStr)
	if err != nil {
		return nil, fmt.Errorf("invalid 'id': %w", err)
	}

	memo, err := s.svc.Memos.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get memo: %w", err)
	}

	return mcp.NewToolResultText(formatMemo(memo)), nil
}

func (s *MemoServer) handleListMemos(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	logger.Debug("MCP tool call: list_memos")

	limit := request.GetInt("limit", constants.DefaultAPIListLimit)
	offset := request.GetInt("offset", 0)

	memos, err := s.svc.Memos.List(ctx, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list memos: %w", err)
	}
	if len(memos) == 0 {
		return mcp.NewToolResultText("No memos found."), nil
	}

	lines := lo.Map(memos, func(m *models.Memo, i int) string {
		return fmt.Sprintf("%d. [ID: %s] %s\n   %s", i+1+offset, m.ID, m.TitleOrEmpty(),
			truncateString(m.ContentOrEmpty(), constants.ShortPreviewLength))
	})
	result := fmt.Sprintf("Listing %d memos (offset: %d):\n\n%s", len(memos), offset, strings.Join(lines, "\n\n"))
	return mcp.NewToolResultText(result), nil
}

func (s *MemoServer) handleSearch(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	logger.Debug("MCP tool call: search")

	query, err := request.RequireString("query")
	if err != nil {
		return nil, fmt.Errorf("missing required parameter 'query': %w", err)
	}

	if err := s.svc.Search.Query(ctx, query); err != nil {
		return nil, err
	}
	return mcp.NewToolResultText(fmt.Sprintf("Search received: %s", query)), nil
}

// Resource handlers
func (s *MemoServer) handleRecentMemos(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	logger.Debug("MCP resource read: memos://recent")

	memos, err := s.svc.Memos.List(ctx, constants.RecentMemosLimit, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to get recent memos: %w", err)
	}

	data, err := json.MarshalIndent(memos, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode memos: %w", err)
	}

	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      request.Params.URI,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}

func (s *MemoServer) handleStats(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	logger.Debug("MCP resource read: memos://stats")

	count, err := s.svc.Memos.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get memo count: %w", err)
	}

	content := fmt.Sprintf("Memo Database Statistics:\n- Total Memos: %d\n- Schema Version: %d\n- Database Path: %s",
		count, constants.SchemaVersion, s.svc.Config.GetDatabasePath())

	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      request.Params.URI,
			MIMEType: "text/plain",
			Text:     content,
		},
	}, nil
}

func formatMemo(m *models.Memo) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Memo ID: %s\nTitle: %s", m.ID, m.TitleOrEmpty())
	if m.Created != nil {
		fmt.Fprintf(&b, "\nCreated: %d", *m.Created)
	}
	if m.Updated != nil {
		fmt.Fprintf(&b, "\nUpdated: %d", *m.Updated)
	}
	fmt.Fprintf(&b, "\n\nContent:\n%s", m.ContentOrEmpty())
	return b.String()
}

func truncateString(s string, maxLen int) string {
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	return string(runes[:maxLen]) + "..."
}
