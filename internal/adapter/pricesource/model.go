package pricesource

import "github.com/shopspring/decimal"

// chartResponse is the subset of the chart endpoint payload the client reads
type chartResponse struct {
	Chart struct {
		Result []struct {
			Meta chartMeta `json:"meta"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

type chartMeta struct {
	Symbol             string           `json:"symbol"`
	Currency           string           `json:"currency"`
	RegularMarketPrice *decimal.Decimal `json:"regularMarketPrice"`
	RegularMarketTime  int64            `json:"regularMarketTime"`
}
