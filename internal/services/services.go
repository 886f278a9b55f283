package services

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"

	"github.com/bellmemo/bell-memo/internal/config"
	"github.com/bellmemo/bell-memo/internal/database"
	interrors "github.com/bellmemo/bell-memo/internal/errors"
	"github.com/bellmemo/bell-memo/internal/logger"
	"github.com/bellmemo/bell-memo/internal/models"
	"github.com/bellmemo/bell-memo/internal/search"
)

// Services contains all the service dependencies shared by the CLI, HTTP API
// and MCP server.
type Services struct {
	Config *config.Config
	Memos  *MemosService
	Search *SearchService

	// Store is set when the services own their database (see Open)
	Store *database.DB
}

// NewServices wires the services over an open memo repository. Search
// diagnostics go to searchOut (stdout when nil).
func NewServices(cfg *config.Config, repo *models.MemoRepository, searchOut io.Writer) *Services {
	return &Services{
		Config: cfg,
		Memos:  NewMemosService(repo),
		Search: NewSearchService(search.NewHandler(searchOut)),
	}
}

// Open loads the database described by cfg and builds the services on it.
// The returned closer releases the database.
func Open(cfg *config.Config, searchOut io.Writer) (*Services, func() error, error) {
	db, err := database.New(cfg)
	if err != nil {
		return nil, nil, err
	}
	svc := NewServices(cfg, models.NewMemoRepository(db.Conn()), searchOut)
	svc.Store = db
	return svc, db.Close, nil
}

// WithSearchOutput returns a copy sharing the same store whose search
// diagnostics go to out.
func (s *Services) WithSearchOutput(out io.Writer) *Services {
	cp := *s
	cp.Search = NewSearchService(search.NewHandler(out))
	return &cp
}

// MemosService handles memo operations
type MemosService struct {
	repo *models.MemoRepository
	now  func() time.Time
}

func NewMemosService(repo *models.MemoRepository) *MemosService {
	return &MemosService{repo: repo, now: time.Now}
}

// Create stores one new memo stamped with the current time. A memo without
// an ID gets a fresh one. Title and content stay as given, NULL included.
func (s *MemosService) Create(ctx context.Context, memo *models.Memo) error {
	if memo == nil {
		return interrors.ErrEmptyMemo
	}
	if memo.ID == uuid.Nil {
		memo.ID = uuid.New()
	}
	now := s.now().Unix()
	memo.Created = &now
	memo.Updated = &now

	if err := s.repo.Insert(ctx, memo); err != nil {
		return err
	}
	logger.Debug("Created memo %s", memo.ID)
	return nil
}

// Insert stores caller-built memos atomically.
func (s *MemosService) Insert(ctx context.Context, memos ...*models.Memo) error {
	if err := s.repo.Insert(ctx, memos...); err != nil {
		return err
	}
	logger.Debug("Inserted %d memo(s)", len(memos))
	return nil
}

func (s *MemosService) Get(ctx context.Context, id uuid.UUID) (*models.Memo, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *MemosService) List(ctx context.Context, limit, offset int) ([]*models.Memo, error) {
	return s.repo.List(ctx, limit, offset)
}

func (s *MemosService) Count(ctx context.Context) (int, error) {
	return s.repo.Count(ctx)
}

// SearchService delivers queries to the search handler
type SearchService struct {
	handler *search.Handler
}

func NewSearchService(handler *search.Handler) *SearchService {
	return &SearchService{handler: handler}
}

// Query runs a search for a bare query string.
func (s *SearchService) Query(ctx context.Context, query string) error {
	if err := s.handler.Search(ctx, query); err != nil {
		return fmt.Errorf("search failed: %w", err)
	}
	return nil
}

// Dispatch forwards a full intent; the bool reports whether it was a search.
func (s *SearchService) Dispatch(ctx context.Context, intent search.Intent) (bool, error) {
	handled, err := s.handler.Handle(ctx, intent)
	if err != nil {
		return handled, fmt.Errorf("search failed: %w", err)
	}
	return handled, nil
}
