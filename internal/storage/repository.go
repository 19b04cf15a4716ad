package storage

import (
	"context"
	"encoding/json"
	"fmt"

	"pos-service/internal/models"
	"pos-service/internal/util"

	"go.uber.org/zap"
)

// Keys names the entries the repository writes
type Keys struct {
	Products string
	Sales    string
	Locale   string
}

// DefaultKeys are used when configuration leaves them empty
var DefaultKeys = Keys{
	Products: "pos_products",
	Sales:    "pos_sales",
	Locale:   "pos_lang",
}

// Repository encodes terminal state into a KeyValue store
type Repository struct {
	kv     KeyValue
	keys   Keys
	logger *zap.Logger
}

// NewRepository creates a repository over kv
func NewRepository(kv KeyValue, keys Keys) *Repository {
	if keys.Products == "" {
		keys.Products = DefaultKeys.Products
	}
	if keys.Sales == "" {
		keys.Sales = DefaultKeys.Sales
	}
	if keys.Locale == "" {
		keys.Locale = DefaultKeys.Locale
	}
	return &Repository{
		kv:     kv,
		keys:   keys,
		logger: util.GetLogger(),
	}
}

// LoadCatalog returns the saved catalog, or false when it is missing or unreadable
func (r *Repository) LoadCatalog(ctx context.Context) ([]models.Product, bool) {
	var products []models.Product
	if !r.loadJSON(ctx, r.keys.Products, &products) {
		return nil, false
	}
	return products, true
}

// LoadHistory returns the saved sales history, or false when it is missing or unreadable
func (r *Repository) LoadHistory(ctx context.Context) ([]models.SaleRecord, bool) {
	var history []models.SaleRecord
	if !r.loadJSON(ctx, r.keys.Sales, &history) {
		return nil, false
	}
	return history, true
}

// LoadLocale returns the saved locale code
func (r *Repository) LoadLocale(ctx context.Context) (string, bool) {
	v, ok, err := r.kv.Get(ctx, r.keys.Locale)
	if err != nil {
		r.logger.Warn("Failed to read locale", zap.String("key", r.keys.Locale), zap.Error(err))
		return "", false
	}
	if !ok || v == "" {
		return "", false
	}
	return v, true
}

// SaveCatalog writes the catalog
func (r *Repository) SaveCatalog(ctx context.Context, products []models.Product) error {
	return r.saveJSON(ctx, r.keys.Products, products)
}

// SaveHistory writes the sales history
func (r *Repository) SaveHistory(ctx context.Context, history []models.SaleRecord) error {
	return r.saveJSON(ctx, r.keys.Sales, history)
}

// SaveLocale writes the locale code
func (r *Repository) SaveLocale(ctx context.Context, code string) error {
	if err := r.kv.Set(ctx, r.keys.Locale, code); err != nil {
		return fmt.Errorf("failed to save %s: %w", r.keys.Locale, err)
	}
	return nil
}

// ClearHistory removes the sales history entry
func (r *Repository) ClearHistory(ctx context.Context) error {
	if err := r.kv.Remove(ctx, r.keys.Sales); err != nil {
		return fmt.Errorf("failed to remove %s: %w", r.keys.Sales, err)
	}
	return nil
}

func (r *Repository) loadJSON(ctx context.Context, key string, dst interface{}) bool {
	raw, ok, err := r.kv.Get(ctx, key)
	if err != nil {
		r.logger.Warn("Failed to read persisted state", zap.String("key", key), zap.Error(err))
		return false
	}
	if !ok {
		return false
	}

	if err := json.Unmarshal([]byte(raw), dst); err != nil {
		r.logger.Warn("Discarding corrupt persisted state", zap.String("key", key), zap.Error(err))
		return false
	}
	return true
}

func (r *Repository) saveJSON(ctx context.Context, key string, v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", key, err)
	}

	if err := r.kv.Set(ctx, key, string(data)); err != nil {
		return fmt.Errorf("failed to save %s: %w", key, err)
	}
	return nil
}
