package repository

import (
	"app/internal/domain/model"
	"context"
	"errors"
)

var ErrNotFound = errors.New("not found")

// 一覧検索
type ProductListQuery struct {
	Page       int
	Limit      int
	Q          string
	MerchantID *int64
	MinPrice   *int64
	MaxPrice   *int64
	Sort       string
}

// 商品カタログの読み取りだけを約束。CRUDはカタログ側サービスの持ち物。
type ProductRepository interface {
	ListPublic(ctx context.Context, q ProductListQuery) ([]model.Product, int64, error)
	FindByID(ctx context.Context, id int64) (model.Product, error)
}
