package charts

import (
	"bytes"
	"fmt"

	"github.com/ivanoskov/kripto_bot/internal/model"
	"github.com/wcharczuk/go-chart/v2"
)

// Доли меньше этого процента не подписываются отдельным сектором
const minSlicePercent = 1.0

// Generator генерирует PNG-графики по журналу транзакций
type Generator struct{}

func NewGenerator() *Generator {
	return &Generator{}
}

// TargetCurrencyPie круговая диаграмма расчётов по целевой валюте.
// Возвращает nil, если данных нет.
func (g *Generator) TargetCurrencyPie(title string, counts []model.CurrencyCount) ([]byte, error) {
	total := 0
	for _, c := range counts {
		total += c.Count
	}
	if total == 0 {
		return nil, nil
	}

	values := make([]chart.Value, 0, len(counts))
	other := 0
	for _, c := range counts {
		percentage := float64(c.Count) / float64(total) * 100
		if percentage < minSlicePercent {
			other += c.Count
			continue
		}
		values = append(values, chart.Value{
			Label: fmt.Sprintf("%s: %d (%.1f%%)", c.Currency, c.Count, percentage),
			Value: float64(c.Count),
			Style: chart.Style{
				FontSize:  12,
				FontColor: chart.ColorBlack,
			},
		})
	}
	if other > 0 {
		values = append(values, chart.Value{
			Label: fmt.Sprintf("Diğer: %d", other),
			Value: float64(other),
		})
	}

	pie := chart.PieChart{
		Title:  title,
		Width:  800,
		Height: 800,
		Values: values,
		Background: chart.Style{
			Padding: chart.Box{
				Top:    50,
				Left:   50,
				Right:  50,
				Bottom: 50,
			},
			FillColor: chart.ColorWhite,
		},
	}

	buffer := bytes.NewBuffer([]byte{})
	if err := pie.Render(chart.PNG, buffer); err != nil {
		return nil, fmt.Errorf("failed to render target currency chart: %w", err)
	}

	return buffer.Bytes(), nil
}
