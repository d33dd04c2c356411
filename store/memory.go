package store

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	models "storefront/model"
)

type lineKey struct {
	userID    string
	productID int64
}

type memState struct {
	categories map[int64]models.Category
	products   map[int64]models.Product
	lines      map[lineKey]models.CartLine
	orders     []models.Order

	nextCategoryID int64
	nextProductID  int64
	nextOrderID    int64
}

func (st *memState) clone() memState {
	out := *st
	out.categories = make(map[int64]models.Category, len(st.categories))
	for k, v := range st.categories {
		out.categories[k] = v
	}
	out.products = make(map[int64]models.Product, len(st.products))
	for k, v := range st.products {
		out.products[k] = v
	}
	out.lines = make(map[lineKey]models.CartLine, len(st.lines))
	for k, v := range st.lines {
		out.lines[k] = v
	}
	out.orders = append([]models.Order(nil), st.orders...)
	return out
}

// MemoryStore is an in-process Store. A unit of work runs against a private
// copy of the state which replaces the shared state only on commit, so
// failed units leave nothing behind. Units are serialized.
type MemoryStore struct {
	mu    sync.Mutex
	state memState

	// CommitHook, when set, runs right before a unit of work is applied.
	// A non-nil error aborts the commit.
	CommitHook func() error
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{state: memState{
		categories: map[int64]models.Category{},
		products:   map[int64]models.Product{},
		lines:      map[lineKey]models.CartLine{},
	}}
}

func (s *MemoryStore) Close() error { return nil }

func (s *MemoryStore) view() memView { return memView{mu: &s.mu, st: &s.state} }

func (s *MemoryStore) Products() ProductStore    { return s.view() }
func (s *MemoryStore) Categories() CategoryStore { return s.view() }
func (s *MemoryStore) Cart() CartStore           { return s.view() }
func (s *MemoryStore) Orders() OrderStore        { return s.view() }

// AddCategory seeds a category and returns it with its id.
func (s *MemoryStore) AddCategory(name string) (models.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range s.state.categories {
		if c.Name == name {
			return models.Category{}, fmt.Errorf("category %q: %w", name, ErrConflict)
		}
	}
	s.state.nextCategoryID++
	c := models.Category{ID: s.state.nextCategoryID, Name: name}
	s.state.categories[c.ID] = c
	return c, nil
}

// DeleteProduct removes a product and, like the FK cascade in Postgres, its cart lines.
func (s *MemoryStore) DeleteProduct(id int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.state.products, id)
	for k := range s.state.lines {
		if k.productID == id {
			delete(s.state.lines, k)
		}
	}
}

func (s *MemoryStore) Do(ctx context.Context, _ string, fn func(tx Tx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}
	work := s.state.clone()
	if err := fn(memTx{v: memView{st: &work}}); err != nil {
		return err
	}
	if s.CommitHook != nil {
		if err := s.CommitHook(); err != nil {
			return fmt.Errorf("%w: %v", ErrCommit, err)
		}
	}
	s.state = work
	return nil
}

type memTx struct{ v memView }

func (t memTx) Products() ProductStore { return t.v }
func (t memTx) Cart() CartStore        { return t.v }
func (t memTx) Orders() OrderStore     { return t.v }

// memView reads and writes one memState. mu is nil inside a unit of work,
// where the store lock is already held.
type memView struct {
	mu *sync.Mutex
	st *memState
}

func (v memView) lock() func() {
	if v.mu == nil {
		return func() {}
	}
	v.mu.Lock()
	return v.mu.Unlock
}

func (v memView) withCategory(p models.Product) models.Product {
	if c, ok := v.st.categories[p.CategoryID]; ok {
		p.Category = &c
	}
	return p
}

func (v memView) GetProduct(_ context.Context, id int64) (models.Product, error) {
	defer v.lock()()
	p, ok := v.st.products[id]
	if !ok {
		return models.Product{}, fmt.Errorf("product %d: %w", id, ErrNotFound)
	}
	return v.withCategory(p), nil
}

func (v memView) match(p models.Product, q ProductQuery) (bool, error) {
	for _, f := range q.Filters {
		ok, err := v.matchOne(p, f)
		if err != nil || !ok {
			return false, err
		}
	}
	return true, nil
}

func (v memView) matchOne(p models.Product, f Filter) (bool, error) {
	switch f.Field {
	case FieldName:
		s, ok := f.Value.(string)
		if !ok {
			return false, fmt.Errorf("filter %q needs a string, got %T", f.Field, f.Value)
		}
		switch f.Op {
		case OpEq:
			return p.Name == s, nil
		case OpContains:
			return strings.Contains(strings.ToLower(p.Name), strings.ToLower(s)), nil
		}
	case FieldCategoryID:
		id, ok := f.Value.(int64)
		if !ok {
			return false, fmt.Errorf("filter %q needs an int64, got %T", f.Field, f.Value)
		}
		if f.Op == OpEq {
			return p.CategoryID == id, nil
		}
	case FieldCategoryName:
		s, ok := f.Value.(string)
		if !ok {
			return false, fmt.Errorf("filter %q needs a string, got %T", f.Field, f.Value)
		}
		if f.Op == OpEq {
			c, found := v.st.categories[p.CategoryID]
			return found && c.Name == s, nil
		}
	case FieldPrice:
		d, ok := f.Value.(decimal.Decimal)
		if !ok {
			return false, fmt.Errorf("filter %q needs a decimal, got %T", f.Field, f.Value)
		}
		switch f.Op {
		case OpEq:
			return p.Price.Equal(d), nil
		case OpGte:
			return p.Price.GreaterThanOrEqual(d), nil
		case OpLte:
			return p.Price.LessThanOrEqual(d), nil
		}
	default:
		return false, fmt.Errorf("unsupported filter field %q", f.Field)
	}
	return false, fmt.Errorf("unsupported filter op %q on %q", f.Op, f.Field)
}

func (v memView) filter(q ProductQuery) ([]models.Product, error) {
	out := []models.Product{}
	for _, p := range v.st.products {
		ok, err := v.match(p, q)
		if err != nil {
			return nil, err
		}
		if ok {
			out = append(out, v.withCategory(p))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (v memView) CountProducts(_ context.Context, q ProductQuery) (int, error) {
	defer v.lock()()
	ps, err := v.filter(q)
	return len(ps), err
}

func (v memView) FindProducts(_ context.Context, q ProductQuery) ([]models.Product, error) {
	defer v.lock()()
	ps, err := v.filter(q)
	if err != nil {
		return nil, err
	}
	if q.Offset >= len(ps) {
		return []models.Product{}, nil
	}
	ps = ps[q.Offset:]
	if q.Limit > 0 && len(ps) > q.Limit {
		ps = ps[:q.Limit]
	}
	return ps, nil
}

func (v memView) CreateProduct(_ context.Context, p *models.Product) error {
	defer v.lock()()
	if _, ok := v.st.categories[p.CategoryID]; !ok {
		return fmt.Errorf("create product: category %d: %w", p.CategoryID, ErrNotFound)
	}
	if p.Stock < 0 || p.Price.IsNegative() {
		return fmt.Errorf("create product: negative price or stock")
	}
	v.st.nextProductID++
	p.ID = v.st.nextProductID
	p.CreatedAt = time.Now().UTC()
	stored := *p
	stored.Category = nil
	v.st.products[p.ID] = stored
	return nil
}

func (v memView) DecrementStock(_ context.Context, id int64, qty int) error {
	defer v.lock()()
	if qty <= 0 {
		return fmt.Errorf("decrement quantity must be > 0, got %d", qty)
	}
	p, ok := v.st.products[id]
	if !ok {
		return fmt.Errorf("product %d: %w", id, ErrNotFound)
	}
	if p.Stock < qty {
		return fmt.Errorf("product %d: %w", id, ErrInsufficientStock)
	}
	p.Stock -= qty
	v.st.products[id] = p
	return nil
}

func (v memView) SetStock(_ context.Context, id int64, stock int) error {
	defer v.lock()()
	if stock < 0 {
		return fmt.Errorf("stock cannot be negative")
	}
	p, ok := v.st.products[id]
	if !ok {
		return fmt.Errorf("product %d: %w", id, ErrNotFound)
	}
	p.Stock = stock
	v.st.products[id] = p
	return nil
}

func (v memView) GetCategory(_ context.Context, id int64) (models.Category, error) {
	defer v.lock()()
	c, ok := v.st.categories[id]
	if !ok {
		return models.Category{}, fmt.Errorf("category %d: %w", id, ErrNotFound)
	}
	return c, nil
}

func (v memView) ListCategories(_ context.Context) ([]models.Category, error) {
	defer v.lock()()
	out := make([]models.Category, 0, len(v.st.categories))
	for _, c := range v.st.categories {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (v memView) GetLine(_ context.Context, userID string, productID int64) (models.CartLine, error) {
	defer v.lock()()
	l, ok := v.st.lines[lineKey{userID, productID}]
	if !ok {
		return models.CartLine{}, fmt.Errorf("cart line %d: %w", productID, ErrNotFound)
	}
	return l, nil
}

func (v memView) ListLines(_ context.Context, userID string) ([]models.CartItem, error) {
	defer v.lock()()
	out := []models.CartItem{}
	for k, l := range v.st.lines {
		if k.userID != userID {
			continue
		}
		it := models.CartItem{CartLine: l}
		if p, ok := v.st.products[l.ProductID]; ok {
			it.Product = &p
		}
		out = append(out, it)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ProductID < out[j].ProductID })
	return out, nil
}

func (v memView) InsertLine(_ context.Context, line models.CartLine) error {
	defer v.lock()()
	k := lineKey{line.UserID, line.ProductID}
	if _, ok := v.st.lines[k]; ok {
		return fmt.Errorf("insert cart line: %w", ErrConflict)
	}
	if _, ok := v.st.products[line.ProductID]; !ok {
		return fmt.Errorf("insert cart line: product %d: %w", line.ProductID, ErrNotFound)
	}
	v.st.lines[k] = line
	return nil
}

func (v memView) UpdateLine(_ context.Context, line models.CartLine) error {
	defer v.lock()()
	k := lineKey{line.UserID, line.ProductID}
	if _, ok := v.st.lines[k]; !ok {
		return fmt.Errorf("update cart line %d: %w", line.ProductID, ErrNotFound)
	}
	v.st.lines[k] = line
	return nil
}

func (v memView) DeleteLine(_ context.Context, userID string, productID int64) error {
	defer v.lock()()
	k := lineKey{userID, productID}
	if _, ok := v.st.lines[k]; !ok {
		return fmt.Errorf("delete cart line %d: %w", productID, ErrNotFound)
	}
	delete(v.st.lines, k)
	return nil
}

func (v memView) InsertOrder(_ context.Context, o *models.Order) error {
	defer v.lock()()
	v.st.nextOrderID++
	o.ID = v.st.nextOrderID
	v.st.orders = append(v.st.orders, *o)
	return nil
}

func (v memView) ListOrders(_ context.Context, buyerID string) ([]models.Order, error) {
	defer v.lock()()
	out := []models.Order{}
	for i := len(v.st.orders) - 1; i >= 0; i-- {
		if v.st.orders[i].BuyerID == buyerID {
			out = append(out, v.st.orders[i])
		}
	}
	return out, nil
}

func (v memView) ListAllOrders(_ context.Context) ([]models.Order, error) {
	defer v.lock()()
	out := make([]models.Order, 0, len(v.st.orders))
	for i := len(v.st.orders) - 1; i >= 0; i-- {
		out = append(out, v.st.orders[i])
	}
	return out, nil
}
