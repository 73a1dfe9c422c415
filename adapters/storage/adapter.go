// Package storage keeps a history of calculated quotes.
// Supports file, memory, postgres and redis backends.
package storage

import (
	"context"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"freight-cost/core/types"
	"freight-cost/internal/errors"
)

// Backend is a storage backend type
type Backend string

const (
	BackendFile     Backend = "file"
	BackendMemory   Backend = "memory"
	BackendPostgres Backend = "postgres"
	BackendRedis    Backend = "redis"
)

// Store is the storage interface
type Store interface {
	// Save stores a quote, assigning an ID and timestamp when missing
	Save(ctx context.Context, quote *StoredQuote) error

	// Get retrieves a quote by ID
	Get(ctx context.Context, id string) (*StoredQuote, error)

	// List lists quotes newest first
	List(ctx context.Context, filter *ListFilter) ([]*StoredQuote, error)

	// Delete removes a quote
	Delete(ctx context.Context, id string) error

	// GetLatest gets the latest quote for a route
	GetLatest(ctx context.Context, route Route) (*StoredQuote, error)

	// Compare compares the lowest cost of two quotes
	Compare(ctx context.Context, oldID, newID string) (*CompareResult, error)

	// Close closes the store
	Close() error
}

// Route identifies origin, transit and destination
type Route struct {
	Origin      string `json:"origin"`
	Transit     string `json:"transit"`
	Destination string `json:"destination"`
}

// RouteOf returns the route a request prices
func RouteOf(in types.CostInput) Route {
	return Route{Origin: in.Origin, Transit: in.Transit, Destination: in.Destination}
}

// Key is a filesystem-safe route identifier
func (r Route) Key() string {
	clean := strings.NewReplacer("/", "-", "\\", "-", " ", "-", "..", "-")
	return clean.Replace(r.Origin) + "_" + clean.Replace(r.Transit) + "_" + clean.Replace(r.Destination)
}

// StoredQuote is a stored calculation
type StoredQuote struct {
	// ID is unique identifier
	ID string `json:"id"`

	Route Route `json:"route"`

	// LowestCost and LowestCostAgent summarize the result
	LowestCost      decimal.Decimal `json:"lowest_cost"`
	LowestCostAgent string          `json:"lowest_cost_agent"`

	// CalculationDate is the date rates were resolved against
	CalculationDate string `json:"calculation_date"`

	// Complete is false when the route lacked rate data
	Complete bool `json:"complete"`

	// CreatedAt timestamp
	CreatedAt time.Time `json:"created_at"`

	// Metadata
	Metadata map[string]string `json:"metadata,omitempty"`

	// Result is the full calculation
	Result *types.CostCalculationResult `json:"result"`
}

// NewStoredQuote summarizes result for storage
func NewStoredQuote(result *types.CostCalculationResult) *StoredQuote {
	return &StoredQuote{
		Route:           RouteOf(result.Input),
		LowestCost:      result.LowestCost,
		LowestCostAgent: result.LowestCostAgent,
		CalculationDate: result.CalculationDate,
		Complete:        !result.HasMissingFreights(),
		Result:          result,
	}
}

// ListFilter filters quote listing
type ListFilter struct {
	Route  *Route
	Agent  string
	Since  time.Time
	Until  time.Time
	Limit  int
	Offset int
}

func (f *ListFilter) matches(q *StoredQuote) bool {
	if f == nil {
		return true
	}
	if f.Route != nil && q.Route != *f.Route {
		return false
	}
	if f.Agent != "" && q.LowestCostAgent != f.Agent {
		return false
	}
	if !f.Since.IsZero() && q.CreatedAt.Before(f.Since) {
		return false
	}
	if !f.Until.IsZero() && q.CreatedAt.After(f.Until) {
		return false
	}
	return true
}

func (f *ListFilter) page(quotes []*StoredQuote) []*StoredQuote {
	sort.SliceStable(quotes, func(i, j int) bool {
		return quotes[i].CreatedAt.After(quotes[j].CreatedAt)
	})
	if f == nil {
		return quotes
	}
	if f.Offset > 0 {
		if f.Offset >= len(quotes) {
			return []*StoredQuote{}
		}
		quotes = quotes[f.Offset:]
	}
	if f.Limit > 0 && f.Limit < len(quotes) {
		quotes = quotes[:f.Limit]
	}
	return quotes
}

// CompareResult is a comparison between two quotes
type CompareResult struct {
	OldID        string          `json:"old_id"`
	NewID        string          `json:"new_id"`
	OldCost      decimal.Decimal `json:"old_cost"`
	NewCost      decimal.Decimal `json:"new_cost"`
	Delta        decimal.Decimal `json:"delta"`
	DeltaPercent decimal.Decimal `json:"delta_percent"`
	OldAgent     string          `json:"old_agent"`
	NewAgent     string          `json:"new_agent"`
	CreatedAt    time.Time       `json:"created_at"`
}

func compare(oldQuote, newQuote *StoredQuote) *CompareResult {
	delta := newQuote.LowestCost.Sub(oldQuote.LowestCost)
	deltaPercent := decimal.Zero
	if oldQuote.LowestCost.IsPositive() {
		deltaPercent = delta.Div(oldQuote.LowestCost).Mul(decimal.NewFromInt(100)).Round(2)
	}

	return &CompareResult{
		OldID:        oldQuote.ID,
		NewID:        newQuote.ID,
		OldCost:      oldQuote.LowestCost,
		NewCost:      newQuote.LowestCost,
		Delta:        delta,
		DeltaPercent: deltaPercent,
		OldAgent:     oldQuote.LowestCostAgent,
		NewAgent:     newQuote.LowestCostAgent,
		CreatedAt:    time.Now(),
	}
}

func prepare(quote *StoredQuote) {
	if quote.ID == "" {
		quote.ID = uuid.New().String()
	}
	if quote.CreatedAt.IsZero() {
		quote.CreatedAt = time.Now()
	}
}

// FileStore is a file-based storage backend: one JSON file per quote, grouped by route
type FileStore struct {
	basePath string
	mu       sync.RWMutex
}

// NewFileStore creates a file store
func NewFileStore(basePath string) (*FileStore, error) {
	if err := os.MkdirAll(basePath, 0755); err != nil {
		return nil, errors.Storage("failed to create storage directory", err)
	}
	return &FileStore{basePath: basePath}, nil
}

func (s *FileStore) Save(ctx context.Context, quote *StoredQuote) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	prepare(quote)

	routeDir := filepath.Join(s.basePath, quote.Route.Key())
	if err := os.MkdirAll(routeDir, 0755); err != nil {
		return errors.Storage("failed to create route directory", err)
	}

	data, err := json.MarshalIndent(quote, "", "  ")
	if err != nil {
		return errors.Storage("failed to marshal quote", err)
	}

	if err := os.WriteFile(filepath.Join(routeDir, quote.ID+".json"), data, 0644); err != nil {
		return errors.Storage("failed to write quote", err)
	}

	return nil
}

// find returns the path of the quote file for id
func (s *FileStore) find(id string) (string, error) {
	if id == "" || strings.ContainsAny(id, `/\`) || strings.Contains(id, "..") {
		return "", errors.NotFound("quote", id)
	}

	entries, err := os.ReadDir(s.basePath)
	if err != nil {
		return "", errors.Storage("failed to read storage", err)
	}

	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		filePath := filepath.Join(s.basePath, entry.Name(), id+".json")
		if _, err := os.Stat(filePath); err == nil {
			return filePath, nil
		}
	}

	return "", errors.NotFound("quote", id)
}

func (s *FileStore) Get(ctx context.Context, id string) (*StoredQuote, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	filePath, err := s.find(id)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, errors.Storage("failed to read quote", err)
	}

	var quote StoredQuote
	if err := json.Unmarshal(data, &quote); err != nil {
		return nil, errors.Storage("failed to unmarshal quote", err)
	}
	return &quote, nil
}

func (s *FileStore) List(ctx context.Context, filter *ListFilter) ([]*StoredQuote, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	quotes := []*StoredQuote{}

	err := filepath.Walk(s.basePath, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return nil // Skip errors
		}
		if info.IsDir() || filepath.Ext(path) != ".json" {
			return nil
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return nil
		}

		var quote StoredQuote
		if err := json.Unmarshal(data, &quote); err != nil {
			return nil
		}

		if filter.matches(&quote) {
			quotes = append(quotes, &quote)
		}
		return nil
	})
	if err != nil {
		return nil, errors.Storage("failed to walk storage", err)
	}

	return filter.page(quotes), nil
}

func (s *FileStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	filePath, err := s.find(id)
	if err != nil {
		return err
	}
	if err := os.Remove(filePath); err != nil {
		return errors.Storage("failed to delete quote", err)
	}
	return nil
}

func (s *FileStore) GetLatest(ctx context.Context, route Route) (*StoredQuote, error) {
	quotes, err := s.List(ctx, &ListFilter{Route: &route, Limit: 1})
	if err != nil {
		return nil, err
	}
	if len(quotes) == 0 {
		return nil, errors.NotFound("quote for route", route.Key())
	}
	return quotes[0], nil
}

func (s *FileStore) Compare(ctx context.Context, oldID, newID string) (*CompareResult, error) {
	oldQuote, err := s.Get(ctx, oldID)
	if err != nil {
		return nil, err
	}

	newQuote, err := s.Get(ctx, newID)
	if err != nil {
		return nil, err
	}

	return compare(oldQuote, newQuote), nil
}

func (s *FileStore) Close() error {
	return nil
}

// MemoryStore is an in-memory storage backend
type MemoryStore struct {
	quotes map[string]*StoredQuote
	mu     sync.RWMutex
}

// NewMemoryStore creates a memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		quotes: make(map[string]*StoredQuote),
	}
}

func (s *MemoryStore) Save(ctx context.Context, quote *StoredQuote) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	prepare(quote)
	s.quotes[quote.ID] = quote
	return nil
}

func (s *MemoryStore) Get(ctx context.Context, id string) (*StoredQuote, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	quote, ok := s.quotes[id]
	if !ok {
		return nil, errors.NotFound("quote", id)
	}
	return quote, nil
}

func (s *MemoryStore) List(ctx context.Context, filter *ListFilter) ([]*StoredQuote, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	quotes := []*StoredQuote{}
	for _, quote := range s.quotes {
		if filter.matches(quote) {
			quotes = append(quotes, quote)
		}
	}
	return filter.page(quotes), nil
}

func (s *MemoryStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.quotes[id]; !ok {
		return errors.NotFound("quote", id)
	}
	delete(s.quotes, id)
	return nil
}

func (s *MemoryStore) GetLatest(ctx context.Context, route Route) (*StoredQuote, error) {
	quotes, err := s.List(ctx, &ListFilter{Route: &route, Limit: 1})
	if err != nil {
		return nil, err
	}
	if len(quotes) == 0 {
		return nil, errors.NotFound("quote for route", route.Key())
	}
	return quotes[0], nil
}

func (s *MemoryStore) Compare(ctx context.Context, oldID, newID string) (*CompareResult, error) {
	oldQuote, err := s.Get(ctx, oldID)
	if err != nil {
		return nil, err
	}

	newQuote, err := s.Get(ctx, newID)
	if err != nil {
		return nil, err
	}

	return compare(oldQuote, newQuote), nil
}

func (s *MemoryStore) Close() error {
	return nil
}

// StoreFactory creates stores by backend type. Recognized keys: path (file),
// url (postgres), addr, password, db and prefix (redis).
func StoreFactory(backend Backend, config map[string]string) (Store, error) {
	switch backend {
	case BackendFile:
		path := config["path"]
		if path == "" {
			path = ".freight-cost"
		}
		store, err := NewFileStore(path)
		if err != nil {
			return nil, err
		}
		return store, nil
	case BackendMemory:
		return NewMemoryStore(), nil
	case BackendPostgres:
		store, err := NewPostgresStore(context.Background(), config["url"])
		if err != nil {
			return nil, err
		}
		return store, nil
	case BackendRedis:
		db := 0
		if v := config["db"]; v != "" {
			n, err := strconv.Atoi(v)
			if err != nil {
				return nil, errors.Wrapf(errors.TypeConfig, err, "invalid redis db %q", v)
			}
			db = n
		}
		store, err := NewRedisStore(context.Background(), RedisOptions{
			Addr:     config["addr"],
			Password: config["password"],
			DB:       db,
			Prefix:   config["prefix"],
		})
		if err != nil {
			return nil, err
		}
		return store, nil
	default:
		return nil, errors.Newf(errors.TypeConfig, "unsupported storage backend: %s", backend)
	}
}

// Ensure interfaces are implemented
var _ io.Closer = (*FileStore)(nil)
var _ io.Closer = (*MemoryStore)(nil)
var _ Store = (*FileStore)(nil)
var _ Store = (*MemoryStore)(nil)
