// Package search receives search intents from the host (CLI, HTTP, MCP) and
// hands the query to the memo lookup.
//
// The lookup itself is a placeholder: matching and ranking against memo titles
// and contents have not been decided, so Search only reports the query on the
// handler's diagnostic writer.
package search

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/bellmemo/bell-memo/internal/constants"
	"github.com/bellmemo/bell-memo/internal/logger"
)

// Intent is the payload a host delivers to the search entry point.
type Intent struct {
	Action string            `json:"action"`
	Extras map[string]string `json:"extras,omitempty"`
}

// NewSearchIntent builds an intent carrying query under the standard key.
func NewSearchIntent(query string) Intent {
	return Intent{
		Action: constants.ActionSearch,
		Extras: map[string]string{constants.ExtraQuery: query},
	}
}

// Query returns the query extra and whether it was present.
func (i Intent) Query() (string, bool) {
	q, ok := i.Extras[constants.ExtraQuery]
	return q, ok
}

// IsSearch reports whether the intent carries the search action.
func (i Intent) IsSearch() bool {
	return i.Action == constants.ActionSearch
}

// Handler is the search entry point. It is safe for concurrent use.
type Handler struct {
	mu  sync.Mutex
	out io.Writer
}

// NewHandler writes diagnostics to out; a nil out means stdout.
func NewHandler(out io.Writer) *Handler {
	if out == nil {
		out = os.Stdout
	}
	return &Handler{out: out}
}

// Handle dispatches an intent. Intents with another action or without a
// query extra are ignored.
func (h *Handler) Handle(ctx context.Context, intent Intent) (bool, error) {
	if !intent.IsSearch() {
		logger.Debug("Ignoring intent with action %q", intent.Action)
		return false, nil
	}
	query, ok := intent.Query()
	if !ok {
		logger.Debug("Ignoring search intent without a query")
		return false, nil
	}
	return true, h.Search(ctx, query)
}

// Search looks the query up against the memo store.
func (h *Handler) Search(ctx context.Context, query string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	logger.Debug("Search requested: %q", query)

	h.mu.Lock()
	defer h.mu.Unlock()
	if _, err := fmt.Fprintln(h.out, query); err != nil {
		return fmt.Errorf("failed to write search diagnostics: %w", err)
	}
	return nil
}
