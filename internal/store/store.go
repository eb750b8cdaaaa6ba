// Package store holds the console's in-memory product state. State changes
// only through the action methods; every action sets Loading and clears Error
// before calling the API, then settles once with the result or a user-facing
// error message. Actions never return the error itself.
package store

import (
	"context"
	"log/slog"
	"slices"
	"sync"

	"github.com/utafrali/productconsole/internal/domain"
	"github.com/utafrali/productconsole/pkg/errhandler"
)

// API is the subset of the products client the store drives.
type API interface {
	ListProducts(ctx context.Context) ([]domain.Product, error)
	GetProduct(ctx context.Context, id string) (*domain.Product, error)
	CreateProduct(ctx context.Context, req domain.CreateProductRequest) (*domain.Product, error)
	UpdateProduct(ctx context.Context, id string, req domain.UpdateProductRequest) (*domain.Product, error)
	UpdateStock(ctx context.Context, id string, s domain.StockUpdate) (*domain.Product, error)
	DeleteProduct(ctx context.Context, id string) error
}

// State is a point-in-time view of the store. An empty Error means none.
type State struct {
	Products        []domain.Product `json:"products"`
	SelectedProduct *domain.Product  `json:"selectedProduct"`
	Loading         bool             `json:"loading"`
	Error           string           `json:"error,omitempty"`
}

func (s State) clone() State {
	out := s
	out.Products = make([]domain.Product, len(s.Products))
	for i, p := range s.Products {
		out.Products[i] = cloneProduct(p)
	}
	if s.SelectedProduct != nil {
		p := cloneProduct(*s.SelectedProduct)
		out.SelectedProduct = &p
	}
	return out
}

func cloneProduct(p domain.Product) domain.Product {
	p.Images = slices.Clone(p.Images)
	return p
}

// Store is safe for concurrent use. Concurrent actions are not ordered
// against each other; the last one to settle wins.
type Store struct {
	api    API
	logger *slog.Logger

	mu     sync.Mutex
	state  State
	subs   map[int]func(State)
	nextID int
}

// New creates an empty store backed by api.
func New(api API, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{
		api:    api,
		logger: logger,
		state:  State{Products: []domain.Product{}},
		subs:   make(map[int]func(State)),
	}
}

// Snapshot returns a copy of the current state.
func (s *Store) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.clone()
}

// Subscribe registers fn to receive a snapshot after every state change.
// Calling the returned function removes it.
func (s *Store) Subscribe(fn func(State)) (unsubscribe func()) {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.subs[id] = fn
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.subs, id)
			s.mu.Unlock()
		})
	}
}

// set applies mutate under the lock, then notifies subscribers in
// registration order.
func (s *Store) set(mutate func(*State)) {
	s.mu.Lock()
	mutate(&s.state)
	snapshot := s.state.clone()
	ids := make([]int, 0, len(s.subs))
	for id := range s.subs {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	subs := make([]func(State), 0, len(ids))
	for _, id := range ids {
		subs = append(subs, s.subs[id])
	}
	s.mu.Unlock()

	for _, fn := range subs {
		fn(snapshot)
	}
}

func (s *Store) begin() {
	s.set(func(st *State) {
		st.Loading = true
		st.Error = ""
	})
}

func (s *Store) fail(ctx context.Context, scope string, err error) bool {
	msg := errhandler.Message(err)
	errhandler.LogError(ctx, s.logger, err, scope)
	s.set(func(st *State) {
		st.Error = msg
		st.Loading = false
	})
	return false
}

// FetchProducts replaces the collection with the backend's.
func (s *Store) FetchProducts(ctx context.Context) bool {
	s.begin()
	products, err := s.api.ListProducts(ctx)
	if err != nil {
		return s.fail(ctx, "fetchProducts", err)
	}
	if products == nil {
		products = []domain.Product{}
	}
	s.set(func(st *State) {
		st.Products = products
		st.Loading = false
	})
	return true
}

// FetchProduct loads one product into SelectedProduct.
func (s *Store) FetchProduct(ctx context.Context, id string) bool {
	s.begin()
	product, err := s.api.GetProduct(ctx, id)
	if err != nil {
		return s.fail(ctx, "fetchProduct", err)
	}
	s.set(func(st *State) {
		st.SelectedProduct = product
		st.Loading = false
	})
	return true
}

// CreateProduct creates a product and appends it to the collection.
func (s *Store) CreateProduct(ctx context.Context, req domain.CreateProductRequest) bool {
	s.begin()
	product, err := s.api.CreateProduct(ctx, req)
	if err != nil {
		return s.fail(ctx, "createProduct", err)
	}
	s.set(func(st *State) {
		if product != nil {
			st.Products = append(st.Products, *product)
		}
		st.Loading = false
	})
	return true
}

// UpdateProduct applies a partial update and replaces the matching entry.
func (s *Store) UpdateProduct(ctx context.Context, id string, req domain.UpdateProductRequest) bool {
	s.begin()
	product, err := s.api.UpdateProduct(ctx, id, req)
	if err != nil {
		return s.fail(ctx, "updateProduct", err)
	}
	s.settleUpdate(id, product)
	return true
}

// UpdateStock sets a product's stock quantity and replaces the matching
// entry.
func (s *Store) UpdateStock(ctx context.Context, id string, update domain.StockUpdate) bool {
	s.begin()
	product, err := s.api.UpdateStock(ctx, id, update)
	if err != nil {
		return s.fail(ctx, "updateStock", err)
	}
	s.settleUpdate(id, product)
	return true
}

func (s *Store) settleUpdate(id string, product *domain.Product) {
	s.set(func(st *State) {
		if product != nil {
			for i := range st.Products {
				if st.Products[i].ID == id {
					st.Products[i] = *product
				}
			}
			if st.SelectedProduct != nil && st.SelectedProduct.ID == id {
				p := *product
				st.SelectedProduct = &p
			}
		}
		st.Loading = false
	})
}

// DeleteProduct deletes a product and removes it from the collection. An id
// that is not in the collection leaves it unchanged.
func (s *Store) DeleteProduct(ctx context.Context, id string) bool {
	s.begin()
	if err := s.api.DeleteProduct(ctx, id); err != nil {
		return s.fail(ctx, "deleteProduct", err)
	}
	s.set(func(st *State) {
		st.Products = slices.DeleteFunc(st.Products, func(p domain.Product) bool { return p.ID == id })
		if st.SelectedProduct != nil && st.SelectedProduct.ID == id {
			st.SelectedProduct = nil
		}
		st.Loading = false
	})
	return true
}

// SetSelectedProduct selects p, or clears the selection when p is nil.
func (s *Store) SetSelectedProduct(p *domain.Product) {
	s.set(func(st *State) {
		if p == nil {
			st.SelectedProduct = nil
			return
		}
		selected := cloneProduct(*p)
		st.SelectedProduct = &selected
	})
}

// ClearError clears the last error message.
func (s *Store) ClearError() {
	s.set(func(st *State) { st.Error = "" })
}

// Reset returns the store to its initial state.
func (s *Store) Reset() {
	s.set(func(st *State) { *st = State{Products: []domain.Product{}} })
}
