package service

import (
	"fmt"
	"math"
	"time"

	"pos-service/internal/i18n"
	"pos-service/internal/models"
)

// State is everything one terminal session owns. The functions in this file
// never modify their input; they return an updated copy.
type State struct {
	Catalog []models.Product
	Cart    []models.CartItem
	History []models.SaleRecord
	View    models.View
	Locale  i18n.Locale
}

// NewState returns a session over catalog with an empty cart and history
func NewState(catalog []models.Product, locale i18n.Locale) State {
	return State{
		Catalog: cloneProducts(catalog),
		Cart:    []models.CartItem{},
		History: []models.SaleRecord{},
		View:    models.ViewPOS,
		Locale:  locale,
	}
}

// Clone deep-copies the state
func (s State) Clone() State {
	return State{
		Catalog: cloneProducts(s.Catalog),
		Cart:    cloneItems(s.Cart),
		History: cloneHistory(s.History),
		View:    s.View,
		Locale:  s.Locale,
	}
}

func findProduct(catalog []models.Product, id int64) int {
	for i := range catalog {
		if catalog[i].ID == id {
			return i
		}
	}
	return -1
}

func findCartItem(cart []models.CartItem, id int64) int {
	for i := range cart {
		if cart[i].ID == id {
			return i
		}
	}
	return -1
}

// AddToCart puts one unit of a product in the cart. Products with no stock
// are ignored and reported with added=false.
func AddToCart(s State, productID int64) (next State, added bool, err error) {
	idx := findProduct(s.Catalog, productID)
	if idx < 0 {
		return s, false, ErrProductNotFound
	}

	product := s.Catalog[idx]
	if product.Stock <= 0 {
		return s, false, nil
	}

	next = s.Clone()
	if i := findCartItem(next.Cart, productID); i >= 0 {
		next.Cart[i].Quantity++
		return next, true, nil
	}

	next.Cart = append(next.Cart, models.CartItem{Product: product, Quantity: 1})
	return next, true, nil
}

// RemoveFromCart drops the whole cart entry for a product
func RemoveFromCart(s State, productID int64) (State, bool) {
	idx := findCartItem(s.Cart, productID)
	if idx < 0 {
		return s, false
	}

	next := s.Clone()
	next.Cart = append(next.Cart[:idx], next.Cart[idx+1:]...)
	return next, true
}

// MaxStock bounds a product's stock level; restocks that would pass it are ignored
const MaxStock = math.MaxInt32

// Restock adds amount units to a product. Non-positive amounts, and amounts
// that would push stock past MaxStock, are ignored.
func Restock(s State, productID int64, amount int) (State, bool, error) {
	idx := findProduct(s.Catalog, productID)
	if idx < 0 {
		return s, false, ErrProductNotFound
	}
	if amount <= 0 || amount > MaxStock || s.Catalog[idx].Stock > MaxStock-amount {
		return s, false, nil
	}

	next := s.Clone()
	next.Catalog[idx].Stock += amount
	return next, true, nil
}

// AddProduct appends a product with the next free id
func AddProduct(s State, p models.Product) (State, models.Product, error) {
	if p.Name == "" || p.Price < 0 || p.Stock < 0 {
		return s, models.Product{}, ErrInvalidProduct
	}

	var maxID int64
	for _, existing := range s.Catalog {
		if existing.ID > maxID {
			maxID = existing.ID
		}
	}
	p.ID = maxID + 1

	next := s.Clone()
	next.Catalog = append(next.Catalog, p)
	return next, p, nil
}

// ComputeTotal sums price times quantity over the cart
func ComputeTotal(cart []models.CartItem) int64 {
	var total int64
	for _, item := range cart {
		total += item.LineTotal()
	}
	return total
}

// ItemCount sums quantities over the cart
func ItemCount(cart []models.CartItem) int {
	n := 0
	for _, item := range cart {
		n += item.Quantity
	}
	return n
}

// Checkout commits the cart into a sale record. With StockPolicyReject a
// line that exceeds the product's stock fails the whole checkout and nothing
// changes; with StockPolicyBackorder stock is decremented unconditionally.
func Checkout(s State, policy models.StockPolicy, now time.Time, saleID string) (State, models.SaleRecord, error) {
	if len(s.Cart) == 0 {
		return s, models.SaleRecord{}, ErrEmptyCart
	}

	if policy != models.StockPolicyBackorder {
		for _, item := range s.Cart {
			idx := findProduct(s.Catalog, item.ID)
			if idx < 0 {
				return s, models.SaleRecord{}, fmt.Errorf("%w: %d", ErrProductNotFound, item.ID)
			}
			if s.Catalog[idx].Stock < item.Quantity {
				return s, models.SaleRecord{}, fmt.Errorf("%w for product %d: available=%d, requested=%d",
					ErrInsufficientStock, item.ID, s.Catalog[idx].Stock, item.Quantity)
			}
		}
	}

	record := models.SaleRecord{
		ID:        saleID,
		Items:     cloneItems(s.Cart),
		Total:     ComputeTotal(s.Cart),
		Date:      now.Format(models.SaleDateLayout),
		Time:      now.Format(models.SaleTimeLayout),
		CreatedAt: now,
	}

	next := s.Clone()
	next.History = append([]models.SaleRecord{record}, next.History...)

	for _, item := range s.Cart {
		if idx := findProduct(next.Catalog, item.ID); idx >= 0 {
			next.Catalog[idx].Stock -= item.Quantity
		}
	}

	next.Cart = []models.CartItem{}
	return next, record, nil
}

// ClearHistory empties the sales history
func ClearHistory(s State) State {
	next := s.Clone()
	next.History = []models.SaleRecord{}
	return next
}

func cloneProducts(in []models.Product) []models.Product {
	out := make([]models.Product, len(in))
	copy(out, in)
	return out
}

func cloneItems(in []models.CartItem) []models.CartItem {
	out := make([]models.CartItem, len(in))
	copy(out, in)
	return out
}

func cloneHistory(in []models.SaleRecord) []models.SaleRecord {
	out := make([]models.SaleRecord, len(in))
	for i, r := range in {
		r.Items = cloneItems(r.Items)
		out[i] = r
	}
	return out
}
