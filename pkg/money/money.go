// Package money centraliza la aritmética monetaria. Los montos viajan y se
// persisten como centavos enteros (int64); los porcentajes y la conversión a
// formato legible usan shopspring/decimal. Nunca float.
package money

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// CentsToDisplay convierte centavos a representación legible con dos
// decimales: 1908 → "19.08".
func CentsToDisplay(cents int64) string {
	return decimal.New(cents, -2).StringFixed(2)
}

// DisplayToCents convierte una representación legible a centavos: "19.08" →
// 1908. Rechaza montos negativos o con más de dos decimales.
func DisplayToCents(display string) (int64, error) {
	d, err := decimal.NewFromString(display)
	if err != nil {
		return 0, fmt.Errorf("monto inválido %q: %w", display, err)
	}
	if d.IsNegative() {
		return 0, fmt.Errorf("monto negativo %q", display)
	}
	cents := d.Mul(decimal.New(100, 0))
	if !cents.Equal(cents.Truncate(0)) {
		return 0, fmt.Errorf("monto %q tiene más de dos decimales", display)
	}
	return cents.IntPart(), nil
}

// PercentOf devuelve pct% de cents, redondeado al centavo más cercano
// (mitades hacia arriba). Ej.: PercentOf(1800, 6) = 108.
func PercentOf(cents int64, pct decimal.Decimal) int64 {
	return decimal.New(cents, 0).
		Mul(pct).
		Div(decimal.New(100, 0)).
		Round(0).
		IntPart()
}
