package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"pos-service/internal/i18n"
	"pos-service/internal/models"
	"pos-service/internal/receipt"
	"pos-service/internal/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingPrinter struct {
	mu       sync.Mutex
	receipts map[string]string
	err      error
}

func (p *recordingPrinter) Print(_ context.Context, saleID, text string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	if p.receipts == nil {
		p.receipts = make(map[string]string)
	}
	p.receipts[saleID] = text
	return nil
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []string
}

func (p *recordingPublisher) add(t string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, t)
	return nil
}

func (p *recordingPublisher) PublishSaleCompleted(_ context.Context, e *models.SaleCompletedEvent) error {
	return p.add(e.EventType)
}

func (p *recordingPublisher) PublishProductRestocked(_ context.Context, e *models.ProductRestockedEvent) error {
	return p.add(e.EventType)
}

func (p *recordingPublisher) PublishProductAdded(_ context.Context, e *models.ProductAddedEvent) error {
	return p.add(e.EventType)
}

func (p *recordingPublisher) PublishHistoryCleared(_ context.Context, e *models.HistoryClearedEvent) error {
	return p.add(e.EventType)
}

// failingKV accepts reads but fails every write
type failingKV struct {
	*storage.MemoryKV
}

func (failingKV) Set(context.Context, string, string) error { return errors.New("disk full") }

type fixture struct {
	svc       *POSService
	kv        *storage.MemoryKV
	repo      *storage.Repository
	printer   *recordingPrinter
	publisher *recordingPublisher
}

func newFixture(t *testing.T, opts Options) *fixture {
	t.Helper()

	kv := storage.NewMemoryKV()
	repo := storage.NewRepository(kv, storage.Keys{})
	require.NoError(t, repo.SaveCatalog(context.Background(), testCatalog()))

	printer := &recordingPrinter{}
	publisher := &recordingPublisher{}
	svc := NewPOSService(repo, publisher, receipt.NewRenderer("Test Shop"), printer, opts)

	seq := 0
	svc.newID = func() string {
		seq++
		return fmt.Sprintf("sale-%d", seq)
	}
	svc.now = func() time.Time { return time.Date(2026, 10, 16, 12, 0, 0, 0, time.UTC) }
	svc.Load(context.Background())

	return &fixture{svc: svc, kv: kv, repo: repo, printer: printer, publisher: publisher}
}

func TestPOSService_LoadFallsBackToDefaults(t *testing.T) {
	ctx := context.Background()
	kv := storage.NewMemoryKV()
	require.NoError(t, kv.Set(ctx, storage.DefaultKeys.Products, "{broken"))
	require.NoError(t, kv.Set(ctx, storage.DefaultKeys.Locale, "xx"))

	svc := NewPOSService(storage.NewRepository(kv, storage.Keys{}), nil,
		receipt.NewRenderer("Shop"), &recordingPrinter{}, Options{DefaultLocale: i18n.LocaleEnglish})
	svc.Load(ctx)

	assert.Equal(t, DefaultCatalog(), svc.Products())
	assert.Empty(t, svc.Sales())
	assert.Equal(t, i18n.LocaleEnglish, svc.Locale())
	assert.Equal(t, models.ViewPOS, svc.View())
}

func TestPOSService_LoadRejectsInvalidCatalog(t *testing.T) {
	ctx := context.Background()
	kv := storage.NewMemoryKV()
	repo := storage.NewRepository(kv, storage.Keys{})
	require.NoError(t, repo.SaveCatalog(ctx, []models.Product{
		{ID: 1, Name: "A", Price: 1000, Stock: 5},
		{ID: 1, Name: "B", Price: 2000, Stock: 5},
	}))

	svc := NewPOSService(repo, nil, receipt.NewRenderer("Shop"), &recordingPrinter{}, Options{})
	svc.Load(ctx)

	assert.Equal(t, DefaultCatalog(), svc.Products())
}

func TestPOSService_SelectedLocale(t *testing.T) {
	ctx := context.Background()
	kv := storage.NewMemoryKV()
	repo := storage.NewRepository(kv, storage.Keys{})

	svc := NewPOSService(repo, nil, receipt.NewRenderer("Shop"), &recordingPrinter{}, Options{DefaultLocale: i18n.LocaleEnglish})
	svc.Load(ctx)

	loc, set := svc.SelectedLocale()
	assert.Equal(t, i18n.LocaleEnglish, loc)
	assert.False(t, set)

	svc.SetLocale(ctx, i18n.LocaleThai)
	loc, set = svc.SelectedLocale()
	assert.Equal(t, i18n.LocaleThai, loc)
	assert.True(t, set)

	restored := NewPOSService(repo, nil, receipt.NewRenderer("Shop"), &recordingPrinter{}, Options{DefaultLocale: i18n.LocaleEnglish})
	restored.Load(ctx)

	loc, set = restored.SelectedLocale()
	assert.Equal(t, i18n.LocaleThai, loc)
	assert.True(t, set)
}

func TestPOSService_CartFlow(t *testing.T) {
	f := newFixture(t, Options{})
	ctx := context.Background()

	cart, added, err := f.svc.AddToCart(ctx, 1)
	require.NoError(t, err)
	assert.True(t, added)
	assert.Equal(t, int64(25000), cart.Total)

	cart, _, err = f.svc.AddToCart(ctx, 1)
	require.NoError(t, err)
	cart, _, err = f.svc.AddToCart(ctx, 4)
	require.NoError(t, err)
	assert.Equal(t, 2, cart.Lines)
	assert.Equal(t, 3, cart.Count)
	assert.Equal(t, int64(2*25000+45000), cart.Total)

	cart, added, err = f.svc.AddToCart(ctx, 3)
	require.NoError(t, err)
	assert.False(t, added)
	assert.Equal(t, 2, cart.Lines)

	_, _, err = f.svc.AddToCart(ctx, 42)
	assert.ErrorIs(t, err, ErrProductNotFound)

	cart, removed := f.svc.RemoveFromCart(ctx, 1)
	assert.True(t, removed)
	assert.Equal(t, int64(45000), cart.Total)
	assert.Equal(t, cart, f.svc.Cart())
}

func TestPOSService_Checkout(t *testing.T) {
	f := newFixture(t, Options{})
	ctx := context.Background()

	_, _, _ = f.svc.AddToCart(ctx, 1)
	_, _, _ = f.svc.AddToCart(ctx, 1)
	_, _, _ = f.svc.AddToCart(ctx, 2)

	result, err := f.svc.Checkout(ctx, "")
	require.NoError(t, err)
	assert.False(t, result.Replayed)
	assert.Equal(t, "sale-1", result.Sale.ID)
	assert.Equal(t, int64(80000), result.Sale.Total)
	assert.Contains(t, result.Receipt, "Test Shop")

	assert.Empty(t, f.svc.Cart().Items)
	assert.Equal(t, result.Sale, f.svc.Sales()[0])
	assert.Equal(t, result.Receipt, f.printer.receipts["sale-1"])
	assert.Equal(t, []string{models.EventTypeSaleCompleted}, f.publisher.events)

	products := f.svc.Products()
	assert.Equal(t, 8, products[0].Stock)
	assert.Equal(t, 2, products[1].Stock)

	// state was written back
	persisted, ok := f.repo.LoadHistory(ctx)
	require.True(t, ok)
	assert.Equal(t, "sale-1", persisted[0].ID)
	catalog, ok := f.repo.LoadCatalog(ctx)
	require.True(t, ok)
	assert.Equal(t, 8, catalog[0].Stock)
}

func TestPOSService_CheckoutEmptyCart(t *testing.T) {
	f := newFixture(t, Options{})

	_, err := f.svc.Checkout(context.Background(), "")
	assert.ErrorIs(t, err, ErrEmptyCart)
	assert.Empty(t, f.publisher.events)
}

func TestPOSService_CheckoutIdempotency(t *testing.T) {
	f := newFixture(t, Options{})
	ctx := context.Background()

	_, _, _ = f.svc.AddToCart(ctx, 1)
	first, err := f.svc.Checkout(ctx, "key-1")
	require.NoError(t, err)

	again, err := f.svc.Checkout(ctx, "key-1")
	require.NoError(t, err)
	assert.True(t, again.Replayed)
	assert.Equal(t, first.Sale, again.Sale)
	assert.Len(t, f.svc.Sales(), 1)
	assert.Len(t, f.publisher.events, 1)

	_, err = f.svc.Checkout(ctx, "key-2")
	assert.ErrorIs(t, err, ErrEmptyCart)
}

func TestPOSService_CheckoutPrintFailureKeepsSale(t *testing.T) {
	f := newFixture(t, Options{})
	f.printer.err = errors.New("paper jam")
	ctx := context.Background()

	_, _, _ = f.svc.AddToCart(ctx, 1)
	result, err := f.svc.Checkout(ctx, "")
	require.NoError(t, err)

	assert.Len(t, f.svc.Sales(), 1)
	assert.Equal(t, result.Sale.ID, f.svc.Sales()[0].ID)
	assert.Empty(t, f.svc.Cart().Items)
}

func TestPOSService_PersistenceFailureKeepsMemoryState(t *testing.T) {
	ctx := context.Background()
	repo := storage.NewRepository(failingKV{storage.NewMemoryKV()}, storage.Keys{})
	svc := NewPOSService(repo, nil, receipt.NewRenderer("Shop"), &recordingPrinter{}, Options{})
	svc.Load(ctx)

	_, _, err := svc.AddToCart(ctx, 1)
	require.NoError(t, err)
	_, err = svc.Checkout(ctx, "")
	require.NoError(t, err)

	assert.Len(t, svc.Sales(), 1)
	assert.Equal(t, 49, svc.Products()[0].Stock)
}

func TestPOSService_Restock(t *testing.T) {
	f := newFixture(t, Options{})
	ctx := context.Background()

	p, applied, err := f.svc.Restock(ctx, 1, -5)
	require.NoError(t, err)
	assert.False(t, applied)
	assert.Equal(t, 10, p.Stock)

	p, applied, err = f.svc.Restock(ctx, 1, 5)
	require.NoError(t, err)
	assert.True(t, applied)
	assert.Equal(t, 15, p.Stock)

	_, _, err = f.svc.Restock(ctx, 77, 5)
	assert.ErrorIs(t, err, ErrProductNotFound)

	assert.Equal(t, []string{models.EventTypeProductRestocked}, f.publisher.events)

	catalog, ok := f.repo.LoadCatalog(ctx)
	require.True(t, ok)
	assert.Equal(t, 15, catalog[0].Stock)
}

func TestPOSService_AddProduct(t *testing.T) {
	f := newFixture(t, Options{})
	ctx := context.Background()

	p, err := f.svc.AddProduct(ctx, models.Product{Name: "Cake", Price: 20000, Category: "food", Stock: 2})
	require.NoError(t, err)
	assert.Equal(t, int64(5), p.ID)

	_, added, err := f.svc.AddToCart(ctx, 5)
	require.NoError(t, err)
	assert.True(t, added)
	assert.Equal(t, []string{models.EventTypeProductAdded}, f.publisher.events)
}

func TestPOSService_ClearHistory(t *testing.T) {
	f := newFixture(t, Options{})
	ctx := context.Background()

	_, _, _ = f.svc.AddToCart(ctx, 1)
	_, err := f.svc.Checkout(ctx, "k")
	require.NoError(t, err)
	require.Equal(t, int64(25000), f.svc.Summary().Revenue)

	removed := f.svc.ClearHistory(ctx)
	assert.Equal(t, 1, removed)
	assert.Equal(t, int64(0), f.svc.Summary().Revenue)
	assert.Empty(t, f.svc.Sales())

	_, ok, _ := f.kv.Get(ctx, storage.DefaultKeys.Sales)
	assert.False(t, ok)
	assert.Contains(t, f.publisher.events, models.EventTypeHistoryCleared)
}

func TestPOSService_Summary(t *testing.T) {
	f := newFixture(t, Options{LowStockThreshold: 3, BestSellerLimit: 1})
	ctx := context.Background()

	_, _, _ = f.svc.AddToCart(ctx, 2)
	_, _, _ = f.svc.AddToCart(ctx, 2)
	_, _, _ = f.svc.AddToCart(ctx, 1)
	_, err := f.svc.Checkout(ctx, "")
	require.NoError(t, err)

	sum := f.svc.Summary()
	assert.Equal(t, int64(85000), sum.Revenue)
	assert.Equal(t, 1, sum.SaleCount)
	assert.Equal(t, []models.BestSeller{{Name: "Tea", Quantity: 2}}, sum.BestSellers)

	names := make([]string, 0, len(sum.LowStock))
	for _, p := range sum.LowStock {
		names = append(names, p.Name)
	}
	assert.Equal(t, []string{"Tea", "Water"}, names)
}

func TestPOSService_ViewSwitchKeepsState(t *testing.T) {
	f := newFixture(t, Options{})
	ctx := context.Background()

	_, _, _ = f.svc.AddToCart(ctx, 1)

	for _, v := range []models.View{models.ViewAdmin, models.ViewReport, models.ViewPOS, models.ViewReport} {
		f.svc.SetView(v)
		assert.Equal(t, v, f.svc.View())
		assert.Len(t, f.svc.Cart().Items, 1)
		assert.Len(t, f.svc.Products(), 4)
	}
}

func TestPOSService_LocalePersisted(t *testing.T) {
	f := newFixture(t, Options{})
	ctx := context.Background()

	f.svc.SetLocale(ctx, i18n.LocaleThai)
	assert.Equal(t, i18n.LocaleThai, f.svc.Locale())

	code, ok := f.repo.LoadLocale(ctx)
	require.True(t, ok)
	assert.Equal(t, "th", code)
}

func TestPOSService_Receipt(t *testing.T) {
	f := newFixture(t, Options{DefaultLocale: i18n.LocaleEnglish})
	ctx := context.Background()

	_, _, _ = f.svc.AddToCart(ctx, 4)
	result, err := f.svc.Checkout(ctx, "")
	require.NoError(t, err)

	text, err := f.svc.Receipt(result.Sale.ID)
	require.NoError(t, err)
	assert.Contains(t, text, "Fried Rice x1")
	assert.Contains(t, text, "Total: 45,000 LAK")

	_, err = f.svc.Receipt("missing")
	assert.ErrorIs(t, err, ErrSaleNotFound)
}
