// Package reservation decrements product stock for a checkout inside the
// caller's transaction.
package reservation

import (
	"context"
	"fmt"
	"sort"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/angelmondragon/storefront-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
)

// StockRequest asks for Qty units of a product.
type StockRequest struct {
	ProductID uint
	Qty       int
}

// ReserveStock locks the requested product rows, verifies every request can
// be served and decrements stock. It returns the locked products keyed by id
// as read before the decrement. Any failure must abort the enclosing
// transaction.
func ReserveStock(ctx context.Context, tx *gorm.DB, requests []StockRequest) (map[uint]models.Product, error) {
	if tx == nil {
		return nil, fmt.Errorf("transaction required")
	}

	wanted := make(map[uint]int, len(requests))
	ids := make([]uint, 0, len(requests))
	for _, req := range requests {
		if req.Qty <= 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be at least 1")
		}
		if _, seen := wanted[req.ProductID]; !seen {
			ids = append(ids, req.ProductID)
		}
		wanted[req.ProductID] += req.Qty
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	var locked []models.Product
	err := tx.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id IN ?", ids).
		Order("id ASC").
		Find(&locked).Error
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lock products")
	}

	byID := make(map[uint]models.Product, len(locked))
	for _, p := range locked {
		byID[p.ID] = p
	}
	for _, id := range ids {
		p, ok := byID[id]
		if !ok {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "Product not found")
		}
		if p.Stock < wanted[id] {
			return nil, insufficient(p.Name)
		}
	}

	for _, id := range ids {
		res := tx.WithContext(ctx).
			Model(&models.Product{}).
			Where("id = ? AND stock >= ?", id, wanted[id]).
			Update("stock", gorm.Expr("stock - ?", wanted[id]))
		if res.Error != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, res.Error, "decrement stock")
		}
		if res.RowsAffected == 0 {
			return nil, insufficient(byID[id].Name)
		}
	}

	return byID, nil
}

func insufficient(name string) error {
	return pkgerrors.New(pkgerrors.CodeInsufficientStock, "Insufficient stock for product: "+name)
}
