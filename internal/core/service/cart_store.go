package service

import (
	"context"
	"sync"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/rl1809/rocketshoes-cart/internal/core/domain"
	"github.com/rl1809/rocketshoes-cart/internal/port"
)

// UpdateProductAmount sets the quantity of a product already in the cart.
type UpdateProductAmount struct {
	ProductID int
	Amount    int
}

// CartStore owns the shopping cart of a single local session. Every mutation
// is validated against the catalog stock, written in full to storage and then
// published to subscribers.
type CartStore struct {
	catalog  port.CatalogRepository
	storage  port.KeyValueStorage
	notifier port.Notifier
	logger   logrus.FieldLogger
	tracer   trace.Tracer

	locks *productLock

	mu   sync.RWMutex
	cart domain.Cart

	subMu       sync.Mutex
	subscribers map[int]chan domain.Cart
	nextSubID   int
}

type Option func(*CartStore)

func WithLogger(logger logrus.FieldLogger) Option {
	return func(s *CartStore) {
		s.logger = logger
	}
}

func WithTracer(tracer trace.Tracer) Option {
	return func(s *CartStore) {
		s.tracer = tracer
	}
}

// NewCartStore restores the persisted cart and returns a ready store.
// A missing or unreadable persisted cart yields an empty cart.
func NewCartStore(ctx context.Context, catalog port.CatalogRepository, storage port.KeyValueStorage, notifier port.Notifier, opts ...Option) *CartStore {
	s := &CartStore{
		catalog:     catalog,
		storage:     storage,
		notifier:    notifier,
		logger:      logrus.StandardLogger(),
		tracer:      otel.Tracer("cartstore"),
		locks:       newProductLock(),
		subscribers: make(map[int]chan domain.Cart),
	}
	for _, opt := range opts {
		opt(s)
	}

	s.cart = s.restore(ctx)
	return s
}

func (s *CartStore) restore(ctx context.Context) domain.Cart {
	log := s.logger.WithField("key", port.CartStorageKey)

	raw, ok, err := s.storage.Get(ctx, port.CartStorageKey)
	if err != nil {
		log.WithError(err).Warn("failed to read persisted cart, starting empty")
		return domain.Cart{}
	}
	if !ok {
		return domain.Cart{}
	}

	cart, err := domain.UnmarshalCart([]byte(raw))
	if err != nil {
		log.WithError(err).Warn("discarding unreadable persisted cart")
		return domain.Cart{}
	}

	log.WithField("items", len(cart)).Debug("restored cart")
	return cart
}

// Cart returns a snapshot of the current cart.
func (s *CartStore) Cart() domain.Cart {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cart.Clone()
}

func (s *CartStore) amountInCart(productID int) (int, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i := s.cart.Find(productID)
	if i < 0 {
		return 0, false
	}
	return s.cart[i].Amount, true
}

// AddProduct puts one more unit of productID in the cart, fetching the product
// details when it is not in the cart yet.
func (s *CartStore) AddProduct(ctx context.Context, productID int) (domain.Cart, error) {
	ctx, span := s.tracer.Start(ctx, "AddProduct")
	defer span.End()
	span.SetAttributes(attribute.Int("app.product_id", productID))

	unlock := s.locks.Lock(productID)
	defer unlock()

	current, inCart := s.amountInCart(productID)

	stock, err := s.catalog.GetStock(ctx, productID)
	if err != nil {
		return s.fail(ctx, span, OpAdd, &OperationError{Op: OpAdd, Err: errors.Wrap(err, "get stock")})
	}
	if !stock.Covers(current + 1) {
		return s.fail(ctx, span, OpAdd, ErrOutOfStock)
	}

	var product domain.Product
	if !inCart {
		product, err = s.catalog.GetProduct(ctx, productID)
		if err != nil {
			return s.fail(ctx, span, OpAdd, &OperationError{Op: OpAdd, Err: errors.Wrap(err, "get product")})
		}
		product.Amount = 1
	}

	cart, err := s.commit(ctx, func(cart domain.Cart) domain.Cart {
		if i := cart.Find(productID); i >= 0 {
			cart[i].Amount++
			return cart
		}
		return append(cart, product)
	})
	if err != nil {
		return s.fail(ctx, span, OpAdd, &OperationError{Op: OpAdd, Err: err})
	}

	span.SetAttributes(attribute.Int("app.amount", cart.AmountOf(productID)))
	return cart, nil
}

// RemoveProduct drops the entry for productID from the cart.
func (s *CartStore) RemoveProduct(ctx context.Context, productID int) (domain.Cart, error) {
	ctx, span := s.tracer.Start(ctx, "RemoveProduct")
	defer span.End()
	span.SetAttributes(attribute.Int("app.product_id", productID))

	unlock := s.locks.Lock(productID)
	defer unlock()

	if _, ok := s.amountInCart(productID); !ok {
		return s.fail(ctx, span, OpRemove, ErrNotFound)
	}

	cart, err := s.commit(ctx, func(cart domain.Cart) domain.Cart {
		out := cart[:0]
		for _, p := range cart {
			if p.ID != productID {
				out = append(out, p)
			}
		}
		return out
	})
	if err != nil {
		return s.fail(ctx, span, OpRemove, &OperationError{Op: OpRemove, Err: err})
	}
	return cart, nil
}

// UpdateProductAmount sets the quantity of a product in the cart to exactly
// req.Amount. Non-positive amounts are ignored.
func (s *CartStore) UpdateProductAmount(ctx context.Context, req UpdateProductAmount) (domain.Cart, error) {
	ctx, span := s.tracer.Start(ctx, "UpdateProductAmount")
	defer span.End()
	span.SetAttributes(
		attribute.Int("app.product_id", req.ProductID),
		attribute.Int("app.amount", req.Amount),
	)

	if req.Amount <= 0 {
		return s.Cart(), nil
	}

	unlock := s.locks.Lock(req.ProductID)
	defer unlock()

	stock, err := s.catalog.GetStock(ctx, req.ProductID)
	if err != nil {
		return s.fail(ctx, span, OpUpdate, &OperationError{Op: OpUpdate, Err: errors.Wrap(err, "get stock")})
	}
	if !stock.Covers(req.Amount) {
		return s.fail(ctx, span, OpUpdate, ErrOutOfStock)
	}
	if _, ok := s.amountInCart(req.ProductID); !ok {
		return s.fail(ctx, span, OpUpdate, ErrNotFound)
	}

	cart, err := s.commit(ctx, func(cart domain.Cart) domain.Cart {
		if i := cart.Find(req.ProductID); i >= 0 {
			cart[i].Amount = req.Amount
		}
		return cart
	})
	if err != nil {
		return s.fail(ctx, span, OpUpdate, &OperationError{Op: OpUpdate, Err: err})
	}
	return cart, nil
}

// commit applies mutate to a copy of the latest cart, persists the result and
// swaps it in. On a storage failure nothing changes.
func (s *CartStore) commit(ctx context.Context, mutate func(domain.Cart) domain.Cart) (domain.Cart, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := mutate(s.cart.Clone())

	data, err := domain.MarshalCart(next)
	if err != nil {
		return nil, errors.Wrap(err, "encode cart")
	}
	if err := s.storage.Set(ctx, port.CartStorageKey, string(data)); err != nil {
		return nil, errors.Wrap(err, "persist cart")
	}

	s.cart = next
	s.publish(next)
	return next.Clone(), nil
}

func (s *CartStore) fail(ctx context.Context, span trace.Span, op Op, err error) (domain.Cart, error) {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())

	severity, message := notification(op, err)
	s.notifier.Notify(ctx, severity, message)

	s.logger.WithError(err).WithField("op", op).Warn("cart operation failed")
	return s.Cart(), err
}

// Subscribe returns a channel that receives the latest cart after every
// successful mutation. Undelivered snapshots are replaced by newer ones.
// The returned func unsubscribes and closes the channel.
func (s *CartStore) Subscribe() (<-chan domain.Cart, func()) {
	ch := make(chan domain.Cart, 1)

	s.subMu.Lock()
	id := s.nextSubID
	s.nextSubID++
	s.subscribers[id] = ch
	s.subMu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			s.subMu.Lock()
			delete(s.subscribers, id)
			close(ch)
			s.subMu.Unlock()
		})
	}
}

func (s *CartStore) publish(cart domain.Cart) {
	s.subMu.Lock()
	defer s.subMu.Unlock()

	for _, ch := range s.subscribers {
		select {
		case <-ch:
		default:
		}
		ch <- cart.Clone()
	}
}
