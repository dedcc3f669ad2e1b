package inventory

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// DefaultPredictionWindowDays ventana de ventas usada para la predicción.
const DefaultPredictionWindowDays = 30

// Prediction pronóstico de agotamiento de un producto.
// Las fechas son nil cuando no hubo salidas en la ventana.
type Prediction struct {
	ProductID           string
	CurrentStock        int64
	WindowDays          int
	TotalOutgoing       int64
	AvgDailySales       decimal.Decimal // redondeado a 2 decimales
	DaysLeft            *decimal.Decimal
	PredictedOutOfStock *time.Time
	RecommendedReorder  *time.Time
	Message             string
}

// Available indica si hay datos suficientes para pronosticar.
func (p Prediction) Available() bool {
	return p.PredictedOutOfStock != nil
}

// Predict calcula el agotamiento a partir de las salidas de la ventana.
// El pedido se recomienda un día antes del agotamiento estimado.
func Predict(productID string, stock, outgoing int64, windowDays int, now time.Time) Prediction {
	if windowDays <= 0 {
		windowDays = DefaultPredictionWindowDays
	}
	p := Prediction{
		ProductID:     productID,
		CurrentStock:  stock,
		WindowDays:    windowDays,
		TotalOutgoing: outgoing,
	}
	avg := decimal.NewFromInt(outgoing).Div(decimal.NewFromInt(int64(windowDays)))
	p.AvgDailySales = avg.Round(2)
	if !avg.IsPositive() {
		p.Message = fmt.Sprintf("Sin ventas en los últimos %d días. Predicción no disponible.", windowDays)
		return p
	}

	daysLeft := decimal.NewFromInt(stock).Div(avg)
	rounded := daysLeft.Round(2)
	p.DaysLeft = &rounded

	// fracción de día expresada en segundos
	seconds := daysLeft.Mul(decimal.NewFromInt(int64(24 * time.Hour / time.Second))).IntPart()
	predicted := now.Add(time.Duration(seconds) * time.Second)
	reorder := predicted.AddDate(0, 0, -1)
	p.PredictedOutOfStock = &predicted
	p.RecommendedReorder = &reorder
	p.Message = fmt.Sprintf("Quedan aproximadamente %s días de stock.", rounded.StringFixed(2))
	return p
}
