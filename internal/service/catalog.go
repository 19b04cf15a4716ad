package service

import (
	"fmt"

	"pos-service/internal/models"
)

// DefaultCatalog is loaded when nothing usable is persisted
func DefaultCatalog() []models.Product {
	return []models.Product{
		{ID: 1, Name: "ກາເຟເຢັນ (Coffee)", Price: 25000, Category: "drink", Stock: 50, Icon: "☕"},
		{ID: 2, Name: "ຊານົມ (Milk Tea)", Price: 30000, Category: "drink", Stock: 50, Icon: "🧋"},
		{ID: 3, Name: "ນ້ຳດື່ມ (Water)", Price: 5000, Category: "drink", Stock: 100, Icon: "💧"},
		{ID: 4, Name: "ເຂົ້າຜັດ (Fried Rice)", Price: 45000, Category: "food", Stock: 30, Icon: "🍛"},
	}
}

// ValidateCatalog checks that ids are unique and every product is sellable
func ValidateCatalog(products []models.Product) error {
	seen := make(map[int64]struct{}, len(products))
	for _, p := range products {
		if _, dup := seen[p.ID]; dup {
			return fmt.Errorf("%w: duplicate id %d", ErrInvalidProduct, p.ID)
		}
		seen[p.ID] = struct{}{}
		if p.Name == "" || p.Price < 0 {
			return fmt.Errorf("%w: id %d", ErrInvalidProduct, p.ID)
		}
	}
	return nil
}
