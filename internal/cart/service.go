package cart

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/wirebazaar/wirebazaar-backend/pkg/enums"
	pkgerrors "github.com/wirebazaar/wirebazaar-backend/pkg/errors"
	"github.com/wirebazaar/wirebazaar-backend/pkg/events"
	"github.com/wirebazaar/wirebazaar-backend/pkg/kvstore"
)

// Service manages the per-client carts.
type Service interface {
	Get(ctx context.Context, clientKey string) (*Cart, error)
	Lines(ctx context.Context, clientKey string) ([]Line, error)
	AddLine(ctx context.Context, clientKey string, input AddLineInput) (*Cart, error)
	SetQuantity(ctx context.Context, clientKey, lineID string, quantity int) (*Cart, error)
	RemoveLine(ctx context.Context, clientKey, lineID string) (*Cart, error)
	Clear(ctx context.Context, clientKey string) error
}

// AddLineInput is a shopper's add-to-cart request. Price, names and image are
// taken from the catalog.
type AddLineInput struct {
	ProductID string
	Color     string
	UnitType  enums.UnitType
	Quantity  int
}

// ServiceParams groups the cart dependencies.
type ServiceParams struct {
	Store     kvstore.Store
	Keys      cartKeyer
	Products  ProductLookup
	Publisher events.Publisher
	// TTL bounds how long an untouched cart is kept; zero keeps it forever.
	TTL time.Duration
}

type service struct {
	store     kvstore.Store
	keys      cartKeyer
	products  ProductLookup
	publisher events.Publisher
	ttl       time.Duration
	newID     func() string
	mu        sync.Mutex
}

// NewService constructs a cart service instance.
func NewService(params ServiceParams) (Service, error) {
	if params.Store == nil {
		return nil, fmt.Errorf("cart store required")
	}
	if params.Keys == nil {
		return nil, fmt.Errorf("cart keyer required")
	}
	if params.Products == nil {
		return nil, fmt.Errorf("product lookup required")
	}
	publisher := params.Publisher
	if publisher == nil {
		publisher = events.Nop{}
	}
	return &service{
		store:     params.Store,
		keys:      params.Keys,
		products:  params.Products,
		publisher: publisher,
		ttl:       params.TTL,
		newID:     uuid.NewString,
	}, nil
}

func requireClientKey(clientKey string) error {
	if strings.TrimSpace(clientKey) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "client key is required")
	}
	return nil
}

func (s *service) load(ctx context.Context, clientKey string) ([]Line, error) {
	var lines []Line
	_, err := kvstore.ReadJSON(ctx, s.store, s.keys.CartKey(clientKey), &lines)
	if errors.Is(err, kvstore.ErrCorrupt) {
		return nil, nil
	}
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart")
	}
	return lines, nil
}

func (s *service) save(ctx context.Context, clientKey string, lines []Line) error {
	if lines == nil {
		lines = []Line{}
	}
	if err := kvstore.WriteJSON(ctx, s.store, s.keys.CartKey(clientKey), lines, s.ttl); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save cart")
	}
	s.publisher.Publish(ctx, events.Event{Name: events.CartUpdated, Scope: clientKey})
	return nil
}

// Get returns the cart with its subtotal and item count.
func (s *service) Get(ctx context.Context, clientKey string) (*Cart, error) {
	lines, err := s.Lines(ctx, clientKey)
	if err != nil {
		return nil, err
	}
	return snapshot(lines), nil
}

// Lines returns the raw cart lines.
func (s *service) Lines(ctx context.Context, clientKey string) ([]Line, error) {
	if err := requireClientKey(clientKey); err != nil {
		return nil, err
	}
	return s.load(ctx, clientKey)
}

// AddLine merges the item into an existing line with the same product, color
// and unit type, or appends a new line.
func (s *service) AddLine(ctx context.Context, clientKey string, input AddLineInput) (*Cart, error) {
	if err := requireClientKey(clientKey); err != nil {
		return nil, err
	}
	if input.Quantity <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be greater than zero")
	}
	if !input.UnitType.IsValid() {
		return nil, pkgerrors.Newf(pkgerrors.CodeValidation, "unit_type must be %q or %q", enums.UnitTypeMetres, enums.UnitTypeCoils)
	}

	product, err := s.products.Get(ctx, input.ProductID)
	if err != nil {
		return nil, err
	}
	color, ok := product.CanonicalColor(input.Color)
	if !ok {
		return nil, pkgerrors.Newf(pkgerrors.CodeValidation, "color %q is not offered for this product", strings.TrimSpace(input.Color))
	}
	if input.Quantity > product.StockQuantity {
		return nil, pkgerrors.Newf(pkgerrors.CodeValidation, "only %d %s available", product.StockQuantity, product.UnitType)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	lines, err := s.load(ctx, clientKey)
	if err != nil {
		return nil, err
	}

	merged := false
	for i := range lines {
		if lines[i].sameItem(product.ID, color, input.UnitType) {
			lines[i].Quantity += input.Quantity
			merged = true
			break
		}
	}
	if !merged {
		lines = append(lines, Line{
			ID:          s.newID(),
			ProductID:   product.ID,
			ProductName: product.Name,
			Brand:       product.Brand,
			Color:       color,
			Quantity:    input.Quantity,
			UnitType:    input.UnitType,
			UnitPrice:   product.BasePrice,
			ImageURL:    product.ImageURL,
		})
	}

	if err := s.save(ctx, clientKey, lines); err != nil {
		return nil, err
	}
	return snapshot(lines), nil
}

// SetQuantity overwrites a line's quantity; zero or less removes the line.
// An unknown line id leaves the cart untouched.
func (s *service) SetQuantity(ctx context.Context, clientKey, lineID string, quantity int) (*Cart, error) {
	if err := requireClientKey(clientKey); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	lines, err := s.load(ctx, clientKey)
	if err != nil {
		return nil, err
	}

	index := -1
	for i := range lines {
		if lines[i].ID == lineID {
			index = i
			break
		}
	}
	if index < 0 {
		return snapshot(lines), nil
	}

	if quantity <= 0 {
		lines = append(lines[:index], lines[index+1:]...)
	} else {
		lines[index].Quantity = quantity
	}

	if err := s.save(ctx, clientKey, lines); err != nil {
		return nil, err
	}
	return snapshot(lines), nil
}

// RemoveLine drops the line with the given id.
func (s *service) RemoveLine(ctx context.Context, clientKey, lineID string) (*Cart, error) {
	if err := requireClientKey(clientKey); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	lines, err := s.load(ctx, clientKey)
	if err != nil {
		return nil, err
	}
	kept := make([]Line, 0, len(lines))
	for _, l := range lines {
		if l.ID != lineID {
			kept = append(kept, l)
		}
	}
	if err := s.save(ctx, clientKey, kept); err != nil {
		return nil, err
	}
	return snapshot(kept), nil
}

// Clear empties the cart.
func (s *service) Clear(ctx context.Context, clientKey string) error {
	if err := requireClientKey(clientKey); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	return s.save(ctx, clientKey, nil)
}
