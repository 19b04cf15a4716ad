package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"pos-service/internal/i18n"
	"pos-service/internal/models"
	"pos-service/internal/receipt"
	"pos-service/internal/util"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// StateRepository is the persistence boundary the session writes through
type StateRepository interface {
	LoadCatalog(ctx context.Context) ([]models.Product, bool)
	LoadHistory(ctx context.Context) ([]models.SaleRecord, bool)
	LoadLocale(ctx context.Context) (string, bool)
	SaveCatalog(ctx context.Context, products []models.Product) error
	SaveHistory(ctx context.Context, history []models.SaleRecord) error
	SaveLocale(ctx context.Context, code string) error
	ClearHistory(ctx context.Context) error
}

// EventPublisher announces state changes to other systems
type EventPublisher interface {
	PublishSaleCompleted(ctx context.Context, event *models.SaleCompletedEvent) error
	PublishProductRestocked(ctx context.Context, event *models.ProductRestockedEvent) error
	PublishProductAdded(ctx context.Context, event *models.ProductAddedEvent) error
	PublishHistoryCleared(ctx context.Context, event *models.HistoryClearedEvent) error
}

// Options tunes business rules of a session
type Options struct {
	StockPolicy       models.StockPolicy
	LowStockThreshold int
	BestSellerLimit   int
	DefaultLocale     i18n.Locale
}

// CartView is the cart with its derived totals
type CartView struct {
	Items []models.CartItem `json:"items"`
	Lines int               `json:"lines"`
	Count int               `json:"count"`
	Total int64             `json:"total"`
}

// CheckoutResult is a committed sale and its rendered receipt
type CheckoutResult struct {
	Sale     models.SaleRecord `json:"sale"`
	Receipt  string            `json:"receipt"`
	Replayed bool              `json:"replayed"`
}

// Summary is the report view
type Summary struct {
	Revenue     int64               `json:"revenue"`
	SaleCount   int                 `json:"sale_count"`
	BestSellers []models.BestSeller `json:"best_sellers"`
	LowStock    []models.Product    `json:"low_stock"`
}

// POSService owns one terminal session. Every action runs under a single
// lock and writes the affected entries back before the next action starts.
type POSService struct {
	mu          sync.Mutex
	state       State
	localeSet   bool
	idempotency map[string]string

	repo     StateRepository
	events   EventPublisher
	renderer *receipt.Renderer
	printer  receipt.Printer
	opts     Options

	now    func() time.Time
	newID  func() string
	logger *zap.Logger
}

// NewPOSService creates a session. events may be nil.
func NewPOSService(
	repo StateRepository,
	events EventPublisher,
	renderer *receipt.Renderer,
	printer receipt.Printer,
	opts Options,
) *POSService {
	if events == nil {
		events = noopPublisher{}
	}
	if opts.StockPolicy == "" {
		opts.StockPolicy = models.StockPolicyReject
	}
	if opts.BestSellerLimit <= 0 {
		opts.BestSellerLimit = DefaultBestSellerLimit
	}
	if opts.DefaultLocale == "" {
		opts.DefaultLocale = i18n.LocaleLao
	}

	return &POSService{
		state:       NewState(DefaultCatalog(), opts.DefaultLocale),
		idempotency: make(map[string]string),
		repo:        repo,
		events:      events,
		renderer:    renderer,
		printer:     printer,
		opts:        opts,
		now:         time.Now,
		newID:       func() string { return uuid.New().String() },
		logger:      util.GetLogger(),
	}
}

// Load restores the session from the repository, falling back to the
// default catalog, an empty history and the default locale.
func (s *POSService) Load(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	catalog, ok := s.repo.LoadCatalog(ctx)
	if ok {
		if err := ValidateCatalog(catalog); err != nil {
			s.logger.Warn("Ignoring persisted catalog", zap.Error(err))
			ok = false
		}
	}
	if !ok {
		s.logger.Info("Using default catalog")
		catalog = DefaultCatalog()
	}

	locale := s.opts.DefaultLocale
	localeSet := false
	if code, ok := s.repo.LoadLocale(ctx); ok {
		if loc, err := i18n.ParseLocale(code); err == nil {
			locale = loc
			localeSet = true
		} else {
			s.logger.Warn("Ignoring persisted locale", zap.String("locale", code), zap.Error(err))
		}
	}

	state := NewState(catalog, locale)
	if history, ok := s.repo.LoadHistory(ctx); ok {
		state.History = history
	}

	s.state = state
	s.localeSet = localeSet
	s.logger.Info("Session loaded",
		zap.Int("products", len(state.Catalog)),
		zap.Int("sales", len(state.History)),
		zap.String("locale", string(state.Locale)))
}

// Products returns the catalog
func (s *POSService) Products() []models.Product {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneProducts(s.state.Catalog)
}

// Cart returns the current cart and its totals
func (s *POSService) Cart() CartView {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cartView()
}

func (s *POSService) cartView() CartView {
	return CartView{
		Items: cloneItems(s.state.Cart),
		Lines: len(s.state.Cart),
		Count: ItemCount(s.state.Cart),
		Total: ComputeTotal(s.state.Cart),
	}
}

// AddToCart adds one unit of a product. added is false when the product is
// out of stock.
func (s *POSService) AddToCart(ctx context.Context, productID int64) (CartView, bool, error) {
	_, span := util.StartSpan(ctx, "POSService.AddToCart")
	defer span.End()

	s.mu.Lock()
	defer s.mu.Unlock()

	next, added, err := AddToCart(s.state, productID)
	if err != nil {
		util.CartAddRejectedTotal.WithLabelValues("not_found").Inc()
		return s.cartView(), false, err
	}
	if !added {
		util.CartAddRejectedTotal.WithLabelValues("out_of_stock").Inc()
		s.logger.Debug("Product out of stock", zap.Int64("product_id", productID))
		return s.cartView(), false, nil
	}

	s.state = next
	util.CartItemsAddedTotal.Inc()
	return s.cartView(), true, nil
}

// RemoveFromCart drops a product's cart entry
func (s *POSService) RemoveFromCart(ctx context.Context, productID int64) (CartView, bool) {
	_, span := util.StartSpan(ctx, "POSService.RemoveFromCart")
	defer span.End()

	s.mu.Lock()
	defer s.mu.Unlock()

	next, removed := RemoveFromCart(s.state, productID)
	s.state = next
	return s.cartView(), removed
}

// Restock adds stock to a product. A non-positive amount leaves it unchanged.
func (s *POSService) Restock(ctx context.Context, productID int64, amount int) (models.Product, bool, error) {
	ctx, span := util.StartSpan(ctx, "POSService.Restock")
	defer span.End()

	product, applied, err := s.restock(ctx, productID, amount)
	if err != nil || !applied {
		return product, applied, err
	}

	event := &models.ProductRestockedEvent{
		BaseEvent: s.newEvent(models.EventTypeProductRestocked),
		ProductID: productID,
		Amount:    amount,
		Stock:     product.Stock,
	}
	if err := s.events.PublishProductRestocked(ctx, event); err != nil {
		s.logger.Error("Failed to publish ProductRestocked event", zap.Error(err))
	}

	return product, true, nil
}

func (s *POSService) restock(ctx context.Context, productID int64, amount int) (models.Product, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next, applied, err := Restock(s.state, productID, amount)
	if err != nil {
		return models.Product{}, false, err
	}

	idx := findProduct(next.Catalog, productID)
	if !applied {
		util.RestockIgnoredTotal.Inc()
		return next.Catalog[idx], false, nil
	}

	s.state = next
	s.persistCatalog(ctx)
	util.RestockTotal.Inc()

	s.logger.Info("Product restocked",
		zap.Int64("product_id", productID),
		zap.Int("amount", amount),
		zap.Int("stock", next.Catalog[idx].Stock))
	return next.Catalog[idx], true, nil
}

// AddProduct appends a product to the catalog
func (s *POSService) AddProduct(ctx context.Context, p models.Product) (models.Product, error) {
	ctx, span := util.StartSpan(ctx, "POSService.AddProduct")
	defer span.End()

	s.mu.Lock()
	next, created, err := AddProduct(s.state, p)
	if err != nil {
		s.mu.Unlock()
		return models.Product{}, err
	}
	s.state = next
	s.persistCatalog(ctx)
	s.mu.Unlock()

	s.logger.Info("Product added", zap.Int64("product_id", created.ID), zap.String("name", created.Name))

	event := &models.ProductAddedEvent{
		BaseEvent: s.newEvent(models.EventTypeProductAdded),
		Product:   created,
	}
	if err := s.events.PublishProductAdded(ctx, event); err != nil {
		s.logger.Error("Failed to publish ProductAdded event", zap.Error(err))
	}

	return created, nil
}

// Checkout commits the cart into a sale, prints its receipt and announces
// it. A repeated idempotencyKey returns the sale it created the first time.
func (s *POSService) Checkout(ctx context.Context, idempotencyKey string) (*CheckoutResult, error) {
	ctx, span := util.StartSpan(ctx, "POSService.Checkout")
	defer span.End()

	start := time.Now()
	defer func() {
		util.CheckoutLatency.Observe(time.Since(start).Seconds())
	}()

	record, locale, replayed, err := s.commitCheckout(ctx, idempotencyKey)
	if err != nil {
		return nil, err
	}

	text := s.renderer.Render(record, locale)
	result := &CheckoutResult{Sale: record, Receipt: text, Replayed: replayed}

	if replayed {
		s.logger.Info("Duplicate checkout request detected",
			zap.String("idempotency_key", idempotencyKey),
			zap.String("sale_id", record.ID))
		return result, nil
	}

	util.SalesCompletedTotal.Inc()
	util.SalesRevenueTotal.Add(float64(record.Total))
	s.logger.Info("Sale completed",
		zap.String("sale_id", record.ID),
		zap.Int64("total", record.Total),
		zap.Int("lines", len(record.Items)))

	if err := s.printer.Print(ctx, record.ID, text); err != nil {
		util.ReceiptPrintFailedTotal.Inc()
		s.logger.Error("Failed to print receipt", zap.String("sale_id", record.ID), zap.Error(err))
	} else {
		util.ReceiptsPrintedTotal.Inc()
	}

	lines := make([]models.SaleLine, 0, len(record.Items))
	for _, item := range record.Items {
		lines = append(lines, models.SaleLine{
			ProductID: item.ID,
			Name:      item.Name,
			Quantity:  item.Quantity,
			UnitPrice: item.Price,
		})
	}

	event := &models.SaleCompletedEvent{
		BaseEvent: s.newEvent(models.EventTypeSaleCompleted),
		SaleID:    record.ID,
		Total:     record.Total,
		Items:     lines,
	}
	if err := s.events.PublishSaleCompleted(ctx, event); err != nil {
		s.logger.Error("Failed to publish SaleCompleted event", zap.Error(err))
	}

	return result, nil
}

func (s *POSService) commitCheckout(ctx context.Context, idempotencyKey string) (models.SaleRecord, i18n.Locale, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if idempotencyKey != "" {
		if saleID, ok := s.idempotency[idempotencyKey]; ok {
			if record, found := findSale(s.state.History, saleID); found {
				return record, s.state.Locale, true, nil
			}
		}
	}

	next, record, err := Checkout(s.state, s.opts.StockPolicy, s.now(), s.newID())
	if err != nil {
		reason := "insufficient_stock"
		switch {
		case errors.Is(err, ErrEmptyCart):
			reason = "empty_cart"
		case errors.Is(err, ErrProductNotFound):
			reason = "product_not_found"
		}
		util.CheckoutFailedTotal.WithLabelValues(reason).Inc()
		return models.SaleRecord{}, "", false, err
	}

	s.state = next
	if idempotencyKey != "" {
		s.idempotency[idempotencyKey] = record.ID
	}

	s.persistCatalog(ctx)
	s.persistHistory(ctx)

	return record, s.state.Locale, false, nil
}

// Sales returns the history, most recent first
func (s *POSService) Sales() []models.SaleRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneHistory(s.state.History)
}

// Sale returns one sale record
func (s *POSService) Sale(saleID string) (models.SaleRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	record, ok := findSale(s.state.History, saleID)
	if !ok {
		return models.SaleRecord{}, ErrSaleNotFound
	}
	return record, nil
}

// Receipt renders the receipt of a past sale in the current locale
func (s *POSService) Receipt(saleID string) (string, error) {
	record, err := s.Sale(saleID)
	if err != nil {
		return "", err
	}
	return s.renderer.Render(record, s.Locale()), nil
}

// ClearHistory wipes the sales history and returns how many records it removed
func (s *POSService) ClearHistory(ctx context.Context) int {
	ctx, span := util.StartSpan(ctx, "POSService.ClearHistory")
	defer span.End()

	s.mu.Lock()
	removed := len(s.state.History)
	revenue := TotalRevenue(s.state.History)
	s.state = ClearHistory(s.state)
	s.idempotency = make(map[string]string)
	if err := s.repo.ClearHistory(ctx); err != nil {
		util.PersistenceFailuresTotal.WithLabelValues("sales").Inc()
		s.logger.Error("Failed to clear persisted history", zap.Error(err))
	}
	s.mu.Unlock()

	util.HistoryClearedTotal.Inc()
	s.logger.Warn("Sales history cleared", zap.Int("removed", removed), zap.Int64("revenue", revenue))

	event := &models.HistoryClearedEvent{
		BaseEvent: s.newEvent(models.EventTypeHistoryCleared),
		Removed:   removed,
		Revenue:   revenue,
	}
	if err := s.events.PublishHistoryCleared(ctx, event); err != nil {
		s.logger.Error("Failed to publish HistoryCleared event", zap.Error(err))
	}

	return removed
}

// Summary aggregates the report view
func (s *POSService) Summary() Summary {
	s.mu.Lock()
	defer s.mu.Unlock()

	return Summary{
		Revenue:     TotalRevenue(s.state.History),
		SaleCount:   len(s.state.History),
		BestSellers: BestSellers(s.state.History, s.opts.BestSellerLimit),
		LowStock:    LowStock(s.state.Catalog, s.opts.LowStockThreshold),
	}
}

// View returns the selected view
func (s *POSService) View() models.View {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.View
}

// SetView switches the selected view; cart, catalog and history are kept
func (s *POSService) SetView(v models.View) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.View = v
}

// Locale returns the selected locale
func (s *POSService) Locale() i18n.Locale {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Locale
}

// SelectedLocale returns the locale and whether it was chosen explicitly,
// either restored from storage or set with SetLocale
func (s *POSService) SelectedLocale() (i18n.Locale, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Locale, s.localeSet
}

// SetLocale switches and persists the selected locale
func (s *POSService) SetLocale(ctx context.Context, loc i18n.Locale) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.state.Locale = loc
	s.localeSet = true
	if err := s.repo.SaveLocale(ctx, string(loc)); err != nil {
		util.PersistenceFailuresTotal.WithLabelValues("locale").Inc()
		s.logger.Error("Failed to persist locale", zap.Error(err))
	}
}

// persistCatalog and persistHistory are called with s.mu held. Write-back
// failures are logged and counted; the in-memory state stays authoritative.
func (s *POSService) persistCatalog(ctx context.Context) {
	if err := s.repo.SaveCatalog(ctx, s.state.Catalog); err != nil {
		util.PersistenceFailuresTotal.WithLabelValues("products").Inc()
		s.logger.Error("Failed to persist catalog", zap.Error(err))
	}
}

func (s *POSService) persistHistory(ctx context.Context) {
	if err := s.repo.SaveHistory(ctx, s.state.History); err != nil {
		util.PersistenceFailuresTotal.WithLabelValues("sales").Inc()
		s.logger.Error("Failed to persist sales history", zap.Error(err))
	}
}

func (s *POSService) newEvent(eventType string) models.BaseEvent {
	return models.BaseEvent{
		EventID:   uuid.New().String(),
		EventType: eventType,
		Timestamp: s.now(),
	}
}

func findSale(history []models.SaleRecord, saleID string) (models.SaleRecord, bool) {
	for _, r := range history {
		if r.ID == saleID {
			r.Items = cloneItems(r.Items)
			return r, true
		}
	}
	return models.SaleRecord{}, false
}

type noopPublisher struct{}

func (noopPublisher) PublishSaleCompleted(context.Context, *models.SaleCompletedEvent) error {
	return nil
}

func (noopPublisher) PublishProductRestocked(context.Context, *models.ProductRestockedEvent) error {
	return nil
}

func (noopPublisher) PublishProductAdded(context.Context, *models.ProductAddedEvent) error {
	return nil
}

func (noopPublisher) PublishHistoryCleared(context.Context, *models.HistoryClearedEvent) error {
	return nil
}
