package services

import (
	"context"

	"investgame/src/repositories"
	"investgame/src/schemas"
)

type StockServiceI interface {
	ListStocks(ctx context.Context) ([]schemas.StockResponse, error)
}

type StockService struct {
	stockRepo repositories.StockRepository
}

func NewStockService(stockRepo repositories.StockRepository) *StockService {
	return &StockService{stockRepo: stockRepo}
}

// ListStocks returns every stock with its stored price; no quotes are fetched.
func (s *StockService) ListStocks(ctx context.Context) ([]schemas.StockResponse, error) {
	stocks, err := s.stockRepo.GetAll(ctx, nil)
	if err != nil {
		return nil, err
	}

	resp := make([]schemas.StockResponse, 0, len(stocks))
	for _, st := range stocks {
		item := schemas.StockResponse{
			StockID:        st.ID,
			Name:           st.Name,
			Ticker:         st.Ticker,
			PriceUpdatedAt: st.PriceUpdatedAt,
		}
		if st.CurrentPrice.Valid {
			price := st.CurrentPrice.Decimal
			item.CurrentPrice = &price
		}
		resp = append(resp, item)
	}
	return resp, nil
}
