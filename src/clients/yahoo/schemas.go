package yahoo

import "github.com/shopspring/decimal"

type ChartResponse struct {
	Chart struct {
		Result []ChartResult `json:"result"`
		Error  *APIError     `json:"error"`
	} `json:"chart"`
}

type ChartResult struct {
	Meta ChartMeta `json:"meta"`
}

type ChartMeta struct {
	Symbol             string              `json:"symbol"`
	Currency           string              `json:"currency"`
	RegularMarketPrice decimal.NullDecimal `json:"regularMarketPrice"`
	RegularMarketTime  int64               `json:"regularMarketTime"`
}

type QuoteResponse struct {
	QuoteResponse struct {
		Result []Quote    `json:"result"`
		Error  *APIError `json:"error"`
	} `json:"quoteResponse"`
}

type Quote struct {
	Symbol             string              `json:"symbol"`
	Currency           string              `json:"currency"`
	RegularMarketPrice decimal.NullDecimal `json:"regularMarketPrice"`
}

type APIError struct {
	Code        string `json:"code"`
	Description string `json:"description"`
}
