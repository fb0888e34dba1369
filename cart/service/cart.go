// Package service holds the cart: an ordered list of lines, at most one per
// product, each with a quantity of at least one. Every mutation writes the
// whole cart through to the store.
package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"

	"github.com/Alturino/storefront/cart/pkg/response"
	"github.com/Alturino/storefront/internal/constants"
	inErrors "github.com/Alturino/storefront/internal/errors"
	"github.com/Alturino/storefront/internal/log"
	"github.com/Alturino/storefront/internal/metric"
	inOtel "github.com/Alturino/storefront/internal/otel"
	"github.com/Alturino/storefront/internal/storage"
	productRes "github.com/Alturino/storefront/product/pkg/response"
)

var tracer = otel.Tracer(constants.AppCartService)

const (
	opAdd    = "add"
	opRemove = "remove"
	opUpdate = "update"
	opClear  = "clear"
)

type CartService struct {
	store storage.Store

	mu    sync.RWMutex
	lines []response.CartLine
}

func NewCartService(store storage.Store) *CartService {
	return &CartService{store: store, lines: []response.CartLine{}}
}

// Hydrate replaces the in memory cart with the persisted one. Duplicate
// products are merged and lines without a positive quantity dropped; an
// unreadable cart is discarded.
func (s *CartService) Hydrate(c context.Context) {
	c, span := tracer.Start(c, "CartService Hydrate")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "CartService Hydrate").
		Str(log.KeyStorageKey, storage.KeyCart).
		Logger()

	logger = logger.With().Str(log.KeyProcess, "reading cart").Logger()
	logger.Trace().Msg("reading cart")
	raw, err := s.store.Get(c, storage.KeyCart)
	if err != nil {
		if !errors.Is(err, inErrors.ErrKeyNotFound) {
			inOtel.RecordError(err, span)
			logger.Error().Err(err).Msg("failed reading cart, starting empty")
		}
		return
	}

	logger = logger.With().Str(log.KeyProcess, "decoding cart").Logger()
	persisted := []response.CartLine{}
	if err := json.Unmarshal([]byte(raw), &persisted); err != nil {
		err = fmt.Errorf("failed decoding cart with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Warn().Err(err).Msg("discarding persisted cart")
		return
	}

	lines := normalize(persisted)
	s.mu.Lock()
	s.lines = lines
	s.mu.Unlock()
	logger.Debug().Int(log.KeyCartLines, len(lines)).Msg("restored cart")
}

func normalize(persisted []response.CartLine) []response.CartLine {
	lines := make([]response.CartLine, 0, len(persisted))
	index := map[int64]int{}
	for _, line := range persisted {
		if line.Quantity <= 0 {
			continue
		}
		if i, ok := index[line.Product.ID]; ok {
			lines[i].Quantity += line.Quantity
			continue
		}
		index[line.Product.ID] = len(lines)
		lines = append(lines, line)
	}
	return lines
}

func (s *CartService) indexOf(productID int64) int {
	for i, line := range s.lines {
		if line.Product.ID == productID {
			return i
		}
	}
	return -1
}

// AddItem adds quantity of product, merging into an existing line. Stock is
// not checked here, the api enforces it when the order is placed.
func (s *CartService) AddItem(c context.Context, product productRes.Product, quantity int) error {
	c, span := tracer.Start(c, "CartService AddItem")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "CartService AddItem").
		Int64(log.KeyProductID, product.ID).
		Int(log.KeyQuantity, quantity).
		Logger()

	if quantity < 1 {
		err := fmt.Errorf("failed adding productId=%d with error=%w", product.ID, inErrors.ErrInvalidQuantity)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if i := s.indexOf(product.ID); i >= 0 {
		s.lines[i].Quantity += quantity
		logger.Debug().Int("merged", s.lines[i].Quantity).Msg("merged into existing line")
	} else {
		s.lines = append(s.lines, response.CartLine{Product: product, Quantity: quantity})
		logger.Debug().Msg("appended line")
	}

	metric.CartMutations.WithLabelValues(opAdd).Inc()
	s.persist(logger.WithContext(c))
	return nil
}

// RemoveItem drops the line of productID. Unknown products are ignored.
func (s *CartService) RemoveItem(c context.Context, productID int64) {
	c, span := tracer.Start(c, "CartService RemoveItem")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "CartService RemoveItem").
		Int64(log.KeyProductID, productID).
		Logger()

	s.mu.Lock()
	defer s.mu.Unlock()
	if i := s.indexOf(productID); i >= 0 {
		s.lines = append(s.lines[:i], s.lines[i+1:]...)
		logger.Debug().Msg("removed line")
	} else {
		logger.Debug().Msg("product not in cart")
	}

	metric.CartMutations.WithLabelValues(opRemove).Inc()
	s.persist(logger.WithContext(c))
}

// UpdateQuantity sets the absolute quantity of productID; zero or less
// removes the line. Unknown products are ignored.
func (s *CartService) UpdateQuantity(c context.Context, productID int64, quantity int) {
	if quantity <= 0 {
		s.RemoveItem(c, productID)
		return
	}

	c, span := tracer.Start(c, "CartService UpdateQuantity")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "CartService UpdateQuantity").
		Int64(log.KeyProductID, productID).
		Int(log.KeyQuantity, quantity).
		Logger()

	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexOf(productID)
	if i < 0 {
		logger.Debug().Msg("product not in cart")
		return
	}
	s.lines[i].Quantity = quantity
	logger.Debug().Msg("updated quantity")

	metric.CartMutations.WithLabelValues(opUpdate).Inc()
	s.persist(logger.WithContext(c))
}

func (s *CartService) Clear(c context.Context) {
	c, span := tracer.Start(c, "CartService Clear")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "CartService Clear").
		Logger()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.lines = []response.CartLine{}
	logger.Debug().Msg("cleared cart")

	metric.CartMutations.WithLabelValues(opClear).Inc()
	s.persist(logger.WithContext(c))
}

// RemoveOrdered takes the ordered quantities off the cart. A line drops
// once its quantity reaches zero; lines added after the order was taken
// stay.
func (s *CartService) RemoveOrdered(c context.Context, ordered []response.CartLine) {
	c, span := tracer.Start(c, "CartService RemoveOrdered")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "CartService RemoveOrdered").
		Int(log.KeyCartLines, len(ordered)).
		Logger()

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, line := range ordered {
		i := s.indexOf(line.Product.ID)
		if i < 0 {
			continue
		}
		s.lines[i].Quantity -= line.Quantity
		if s.lines[i].Quantity <= 0 {
			s.lines = append(s.lines[:i], s.lines[i+1:]...)
		}
	}
	logger.Debug().Int(log.KeyCartItemCount, itemCount(s.lines)).Msg("removed ordered lines")

	metric.CartMutations.WithLabelValues(opClear).Inc()
	s.persist(logger.WithContext(c))
}

func (s *CartService) Total() decimal.Decimal {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return total(s.lines)
}

func total(lines []response.CartLine) decimal.Decimal {
	sum := decimal.Zero
	for _, line := range lines {
		sum = sum.Add(line.Subtotal())
	}
	return sum
}

// ItemCount is the sum of quantities, not the number of lines.
func (s *CartService) ItemCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return itemCount(s.lines)
}

func itemCount(lines []response.CartLine) int {
	count := 0
	for _, line := range lines {
		count += line.Quantity
	}
	return count
}

func (s *CartService) Lines() []response.CartLine {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.copyLines()
}

func (s *CartService) IsEmpty() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.lines) == 0
}

// Snapshot returns the lines with totals computed from the same read.
func (s *CartService) Snapshot() response.Cart {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return response.Cart{
		Lines:     s.copyLines(),
		Total:     total(s.lines),
		ItemCount: itemCount(s.lines),
	}
}

func (s *CartService) copyLines() []response.CartLine {
	lines := make([]response.CartLine, len(s.lines))
	copy(lines, s.lines)
	return lines
}

// persist writes the cart through to the store while the caller holds the
// write lock. Failures are logged and otherwise ignored.
func (s *CartService) persist(c context.Context) {
	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyProcess, "persisting cart").
		Str(log.KeyStorageKey, storage.KeyCart).
		Logger()

	b, err := json.Marshal(s.lines)
	if err != nil {
		logger.Error().Err(err).Msg("failed encoding cart")
		return
	}
	if err := s.store.Set(c, storage.KeyCart, string(b)); err != nil {
		logger.Error().Err(err).Msg("failed persisting cart")
		return
	}
	logger.Trace().Int(log.KeyCartLines, len(s.lines)).Msg("persisted cart")
}
