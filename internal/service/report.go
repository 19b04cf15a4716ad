package service

import (
	"sort"

	"pos-service/internal/models"
)

// DefaultBestSellerLimit is used when no limit is configured
const DefaultBestSellerLimit = 5

// TotalRevenue sums the totals of all sale records
func TotalRevenue(history []models.SaleRecord) int64 {
	var total int64
	for _, r := range history {
		total += r.Total
	}
	return total
}

// BestSellers aggregates quantity sold per product name and returns the top
// limit entries, highest first. Ties keep the order names were first seen.
func BestSellers(history []models.SaleRecord, limit int) []models.BestSeller {
	if limit <= 0 {
		limit = DefaultBestSellerLimit
	}

	index := make(map[string]int)
	sellers := make([]models.BestSeller, 0)

	for _, r := range history {
		for _, item := range r.Items {
			i, ok := index[item.Name]
			if !ok {
				i = len(sellers)
				index[item.Name] = i
				sellers = append(sellers, models.BestSeller{Name: item.Name})
			}
			sellers[i].Quantity += item.Quantity
		}
	}

	sort.SliceStable(sellers, func(a, b int) bool {
		return sellers[a].Quantity > sellers[b].Quantity
	})

	if len(sellers) > limit {
		sellers = sellers[:limit]
	}
	return sellers
}

// LowStock lists products whose stock is at or below threshold
func LowStock(catalog []models.Product, threshold int) []models.Product {
	out := make([]models.Product, 0)
	for _, p := range catalog {
		if p.Stock <= threshold {
			out = append(out, p)
		}
	}
	return out
}
