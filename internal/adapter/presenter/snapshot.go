package presenter

import (
	"time"

	"github.com/simaogato/wealthflow-valuation/internal/domain"
)

// SnapshotResponse is the JSON shape of a recorded account snapshot
type SnapshotResponse struct {
	ID          string    `json:"id"`
	AccountID   string    `json:"account_id"`
	AccountName string    `json:"account_name"`
	Currency    string    `json:"currency"`
	MarketValue string    `json:"market_value"`
	CostBasis   string    `json:"cost_basis"`
	GainLoss    string    `json:"gain_loss"`
	TakenAt     time.Time `json:"taken_at"`
}

// NewSnapshotResponses converts snapshots into their JSON shape; never nil
func NewSnapshotResponses(snapshots []domain.AccountSnapshot) []SnapshotResponse {
	out := make([]SnapshotResponse, 0, len(snapshots))
	for _, s := range snapshots {
		out = append(out, SnapshotResponse{
			ID:          s.ID.String(),
			AccountID:   s.AccountID.String(),
			AccountName: s.AccountName,
			Currency:    string(s.Currency),
			MarketValue: Amount(s.MarketValue, s.Currency),
			CostBasis:   Amount(s.CostBasis, s.Currency),
			GainLoss:    Amount(s.GainLoss(), s.Currency),
			TakenAt:     s.TakenAt,
		})
	}
	return out
}
