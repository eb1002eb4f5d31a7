package report

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"github.com/simaogato/wealthflow-valuation/internal/adapter/presenter"
	"github.com/simaogato/wealthflow-valuation/internal/domain"
)

const (
	summarySheet    = "Summary"
	allocationSheet = "Allocation"
	maxSheetName    = 31
)

var holdingHeaders = []string{
	"Symbol", "Quantity", "Avg cost", "Price", "Value", "Cost basis", "Gain/loss", "Gain/loss %", "Quoted price", "Quote currency", "Note",
}

// XLSXGenerator renders a valuation as an Excel workbook
type XLSXGenerator struct {
	log zerolog.Logger
}

func NewXLSXGenerator(log zerolog.Logger) *XLSXGenerator {
	return &XLSXGenerator{log: log.With().Str("component", "xlsx").Logger()}
}

// Generate builds the workbook
// Sheets: Summary, one per account (holdings then cash), Allocation.
func (g *XLSXGenerator) Generate(ctx context.Context, v *domain.Valuation) ([]byte, error) {
	if v == nil || len(v.Accounts) == 0 {
		return nil, errors.New("empty valuation")
	}

	f := excelize.NewFile()
	defer func() {
		if err := f.Close(); err != nil {
			g.log.Error().Err(err).Msg("failed to close workbook")
		}
	}()

	header, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Size: 11},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"#cfe2f3"}},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create header style: %w", err)
	}

	// The default sheet becomes the summary so it stays first
	if err := f.SetSheetName("Sheet1", summarySheet); err != nil {
		return nil, fmt.Errorf("failed to rename default sheet: %w", err)
	}
	if err := g.fillSummary(f, v, header); err != nil {
		return nil, err
	}

	for i, acc := range v.Accounts {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if err := g.fillAccount(f, acc, sheetName(i+1, acc.Name), header); err != nil {
			return nil, err
		}
	}

	if err := g.fillAllocation(f, v, header); err != nil {
		return nil, err
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}

	g.log.Debug().Int("accounts", len(v.Accounts)).Int("bytes", buf.Len()).Msg("workbook generated")
	return buf.Bytes(), nil
}

func (g *XLSXGenerator) fillSummary(f *excelize.File, v *domain.Valuation, header int) error {
	p := v.Portfolio
	currency := p.Currency.String()
	if p.MixedCurrencies {
		currency = "mixed"
	}

	rows := [][]interface{}{
		{"Valued at", v.ValuedAt.Format("2006-01-02 15:04:05 MST")},
		{"Currency", currency},
		{"Total value", number(presenter.RoundTotal(p.TotalValue, p.Currency))},
		{"Total cost basis", number(presenter.RoundTotal(p.TotalCostBasis, p.Currency))},
		{"Total gain/loss", number(presenter.RoundTotal(p.TotalGainLoss, p.Currency))},
		{"Total gain/loss %", number(p.TotalGainLossPercent.Round(2))},
		{"Accounts", p.AccountCount},
		{"Holdings", p.HoldingCount},
		{"Exchange rates", ratesLabel(v)},
	}

	if err := writeRows(f, summarySheet, 1, rows); err != nil {
		return err
	}
	if err := f.SetCellStyle(summarySheet, "A1", fmt.Sprintf("A%d", len(rows)), header); err != nil {
		return fmt.Errorf("failed to style summary: %w", err)
	}

	row := len(rows) + 2
	if len(v.Warnings) > 0 {
		_ = f.SetCellStr(summarySheet, fmt.Sprintf("A%d", row), "Warnings")
		_ = f.SetCellStyle(summarySheet, fmt.Sprintf("A%d", row), fmt.Sprintf("A%d", row), header)
		for i, w := range v.Warnings {
			_ = f.SetCellStr(summarySheet, fmt.Sprintf("A%d", row+1+i), w)
		}
	}

	return f.SetColWidth(summarySheet, "A", "B", 22)
}

func (g *XLSXGenerator) fillAccount(f *excelize.File, acc domain.AccountSummary, sheet string, header int) error {
	if _, err := f.NewSheet(sheet); err != nil {
		return fmt.Errorf("failed to create sheet %s: %w", sheet, err)
	}

	headers := make([]interface{}, len(holdingHeaders))
	for i, h := range holdingHeaders {
		headers[i] = h
	}
	rows := [][]interface{}{
		{acc.Name, acc.Currency.String()},
		headers,
	}

	for _, h := range acc.Holdings {
		row := []interface{}{
			h.Symbol,
			number(h.Quantity),
			number(h.AvgCostBasis),
			number(h.CurrentPrice),
			number(presenter.RoundTotal(h.CurrentValue, acc.Currency)),
			number(presenter.RoundTotal(h.CostBasis, acc.Currency)),
			number(presenter.RoundTotal(h.GainLoss, acc.Currency)),
			number(h.GainLossPercent.Round(2)),
			"", "", holdingNote(h),
		}
		if h.OriginalPrice != nil {
			row[8] = number(*h.OriginalPrice)
		}
		if h.OriginalPriceCurrency != nil {
			row[9] = h.OriginalPriceCurrency.String()
		}
		rows = append(rows, row)
	}

	rows = append(rows, []interface{}{}, []interface{}{"Cash", "Amount", "Converted"})
	cashHeaderRow := len(rows)
	for _, c := range acc.Cash {
		rows = append(rows, []interface{}{
			c.Currency.String(),
			number(presenter.RoundTotal(c.Amount, c.Currency)),
			number(presenter.RoundTotal(c.ConvertedAmount, acc.Currency)),
		})
	}

	rows = append(rows,
		[]interface{}{},
		[]interface{}{"Holdings value", number(presenter.RoundTotal(acc.HoldingsValue, acc.Currency))},
		[]interface{}{"Cash value", number(presenter.RoundTotal(acc.CashValue, acc.Currency))},
		[]interface{}{"Total value", number(presenter.RoundTotal(acc.TotalValue, acc.Currency))},
		[]interface{}{"Total gain/loss", number(presenter.RoundTotal(acc.TotalGainLoss, acc.Currency))},
		[]interface{}{"Total gain/loss %", number(acc.TotalGainLossPercent.Round(2))},
	)

	if err := writeRows(f, sheet, 1, rows); err != nil {
		return err
	}

	lastCol, _ := excelize.ColumnNumberToName(len(holdingHeaders))
	_ = f.SetCellStyle(sheet, "A1", "B1", header)
	_ = f.SetCellStyle(sheet, "A2", lastCol+"2", header)
	_ = f.SetCellStyle(sheet, fmt.Sprintf("A%d", cashHeaderRow), fmt.Sprintf("C%d", cashHeaderRow), header)
	return f.SetColWidth(sheet, "A", lastCol, 14)
}

func (g *XLSXGenerator) fillAllocation(f *excelize.File, v *domain.Valuation, header int) error {
	if _, err := f.NewSheet(allocationSheet); err != nil {
		return fmt.Errorf("failed to create sheet %s: %w", allocationSheet, err)
	}

	rows := [][]interface{}{{"Symbol", "Value", "Percentage", "Color"}}
	for _, item := range v.Allocation {
		rows = append(rows, []interface{}{
			item.Symbol,
			number(presenter.RoundTotal(item.Value, v.Portfolio.Currency)),
			number(item.Percentage.Round(2)),
			item.Color,
		})
	}

	if err := writeRows(f, allocationSheet, 1, rows); err != nil {
		return err
	}
	return f.SetCellStyle(allocationSheet, "A1", "D1", header)
}

func writeRows(f *excelize.File, sheet string, startRow int, rows [][]interface{}) error {
	for i, row := range rows {
		if len(row) == 0 {
			continue
		}
		cell, err := excelize.CoordinatesToCellName(1, startRow+i)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("failed to write row %d of %s: %w", startRow+i, sheet, err)
		}
	}
	return nil
}

func number(d decimal.Decimal) float64 {
	return d.InexactFloat64()
}

func holdingNote(h domain.HoldingValue) string {
	switch {
	case h.PriceUnavailable:
		return "price unavailable: " + h.PriceError
	case h.ConversionSkipped:
		return "not converted"
	case h.FromCache:
		return "cached quote"
	}
	return ""
}

func ratesLabel(v *domain.Valuation) string {
	if !v.RatesAvailable || v.Rates == nil {
		return "unavailable"
	}
	return fmt.Sprintf("USD %s, EUR %s, GBP %s (ILS)", v.Rates.USD, v.Rates.EUR, v.Rates.GBP)
}

// sheetName builds a unique, valid sheet name for an account
func sheetName(ordinal int, name string) string {
	clean := strings.Map(func(r rune) rune {
		if strings.ContainsRune(`[]:*?/\`, r) {
			return '-'
		}
		return r
	}, name)
	full := []rune(fmt.Sprintf("%d. %s", ordinal, clean))
	if len(full) > maxSheetName {
		full = full[:maxSheetName]
	}
	return string(full)
}
