package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bellmemo/bell-memo/internal/config"
	interrors "github.com/bellmemo/bell-memo/internal/errors"
	"github.com/bellmemo/bell-memo/internal/models"
	"github.com/bellmemo/bell-memo/internal/services"
)

func newTestServer(t *testing.T) (*MemoServer, *bytes.Buffer) {
	t.Helper()
	var out bytes.Buffer
	cfg := &config.Config{DatabasePath: filepath.Join(t.TempDir(), "memo.db")}
	svc, closeDB, err := services.Open(cfg, &out)
	require.NoError(t, err)
	t.Cleanup(func() { closeDB() })
	return NewMemoServer(svc, "test"), &out
}

func callTool(name string, args map[string]any) mcp.CallToolRequest {
	return mcp.CallToolRequest{
		Params: mcp.CallToolParams{Name: name, Arguments: args},
	}
}

func resultText(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	require.NotNil(t, result)
	require.NotEmpty(t, result.Content)
	text, ok := result.Content[0].(mcp.TextContent)
	require.True(t, ok, "expected text content, got %T", result.Content[0])
	return text.Text
}

func TestAddMemoWithID(t *testing.T) {
	s, _ := newTestServer(t)
	ctx := context.Background()
	id := uuid.New()

	result, err := s.handleAddMemo(ctx, callTool("add_memo", map[string]any{
		"id":    id.String(),
		"title": "Standup",
	}))
	require.NoError(t, err)
	assert.Contains(t, resultText(t, result), id.String())

	memo, err := s.svc.Memos.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "Standup", memo.TitleOrEmpty())
	assert.Nil(t, memo.Content, "content was not sent and must stay NULL")
	assert.NotNil(t, memo.Created)
}

func TestAddMemoDuplicate(t *testing.T) {
	s, _ := newTestServer(t)
	ctx := context.Background()
	args := map[string]any{"id": uuid.New().String()}

	_, err := s.handleAddMemo(ctx, callTool("add_memo", args))
	require.NoError(t, err)

	_, err = s.handleAddMemo(ctx, callTool("add_memo", args))
	assert.ErrorIs(t, err, interrors.ErrConstraintViolation)
}

func TestAddMemoGeneratesID(t *testing.T) {
	s, _ := newTestServer(t)
	ctx := context.Background()

	_, err := s.handleAddMemo(ctx, callTool("add_memo", map[string]any{"content": "no id given"}))
	require.NoError(t, err)

	memos, err := s.svc.Memos.List(ctx, 10, 0)
	require.NoError(t, err)
	require.Len(t, memos, 1)
	assert.NotEqual(t, uuid.Nil, memos[0].ID)
	assert.Nil(t, memos[0].Title)
	require.NotNil(t, memos[0].Created)
	assert.Equal(t, *memos[0].Created, *memos[0].Updated)
}

func TestAddMemoInvalidID(t *testing.T) {
	s, _ := newTestServer(t)
	_, err := s.handleAddMemo(context.Background(), callTool("add_memo", map[string]any{"id": "nope"}))
	assert.Error(t, err)
}

func TestGetMemo(t *testing.T) {
	s, _ := newTestServer(t)
	ctx := context.Background()
	memo := models.NewMemo("Title", "Body text", 42)
	require.NoError(t, s.svc.Memos.Insert(ctx, memo))

	result, err := s.handleGetMemo(ctx, callTool("get_memo", map[string]any{"id": memo.ID.String()}))
	require.NoError(t, err)
	text := resultText(t, result)
	assert.Contains(t, text, "Title: Title")
	assert.Contains(t, text, "Created: 42")
	assert.Contains(t, text, "Body text")

	_, err = s.handleGetMemo(ctx, callTool("get_memo", map[string]any{"id": uuid.New().String()}))
	assert.ErrorIs(t, err, interrors.ErrMemoNotFound)

	_, err = s.handleGetMemo(ctx, callTool("get_memo", map[string]any{}))
	assert.Error(t, err)
}

func TestListMemos(t *testing.T) {
	s, _ := newTestServer(t)
	ctx := context.Background()

	result, err := s.handleListMemos(ctx, callTool("list_memos", nil))
	require.NoError(t, err)
	assert.Equal(t, "No memos found.", resultText(t, result))

	require.NoError(t, s.svc.Memos.Insert(ctx,
		models.NewMemo("first", strings.Repeat("x", 200), 1),
		models.NewMemo("second", "short", 2),
	))

	result, err = s.handleListMemos(ctx, callTool("list_memos", map[string]any{"limit": 10}))
	require.NoError(t, err)
	text := resultText(t, result)
	assert.Contains(t, text, "Listing 2 memos")
	assert.Less(t, strings.Index(text, "second"), strings.Index(text, "first"))
	assert.Contains(t, text, strings.Repeat("x", 80)+"...")
}

func TestSearchTool(t *testing.T) {
	s, out := newTestServer(t)

	result, err := s.handleSearch(context.Background(), callTool("search", map[string]any{"query": "meeting"}))
	require.NoError(t, err)
	assert.Equal(t, "Search received: meeting", resultText(t, result))
	assert.Equal(t, "meeting\n", out.String())

	_, err = s.handleSearch(context.Background(), callTool("search", map[string]any{}))
	assert.Error(t, err)
}

func TestRecentMemosResource(t *testing.T) {
	s, _ := newTestServer(t)
	ctx := context.Background()
	memo := models.NewMemo("recent", "", 5)
	require.NoError(t, s.svc.Memos.Insert(ctx, memo))

	req := mcp.ReadResourceRequest{}
	req.Params.URI = "memos://recent"
	contents, err := s.handleRecentMemos(ctx, req)
	require.NoError(t, err)
	require.Len(t, contents, 1)

	text, ok := contents[0].(mcp.TextResourceContents)
	require.True(t, ok)
	var memos []models.Memo
	require.NoError(t, json.Unmarshal([]byte(text.Text), &memos))
	require.Len(t, memos, 1)
	assert.Equal(t, memo.ID, memos[0].ID)
}

func TestStatsResource(t *testing.T) {
	s, _ := newTestServer(t)
	req := mcp.ReadResourceRequest{}
	req.Params.URI = "memos://stats"

	contents, err := s.handleStats(context.Background(), req)
	require.NoError(t, err)
	text := contents[0].(mcp.TextResourceContents)
	assert.Contains(t, text.Text, "Total Memos: 0")
	assert.Contains(t, text.Text, "Schema Version: 1")
}

func TestTruncateString(t *testing.T) {
	assert.Equal(t, "abc", truncateString("abc", 5))
	assert.Equal(t, "ab...", truncateString("abcdef", 2))
	assert.Equal(t, "日本...", truncateString("日本語", 2))
}
