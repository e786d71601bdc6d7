package domain_test

import (
	"testing"

	"github.com/vladislavdragonenkov/sales/internal/domain"
)

func TestDiscountFactor(t *testing.T) {
	cases := []struct {
		quantity int
		want     float64
	}{
		{-5, 1.0},
		{0, 1.0},
		{1, 1.0},
		{2, 1.0},
		{3, 1.0},
		{4, 0.9},
		{5, 0.9},
		{9, 0.9},
		{10, 0.8},
		{15, 0.8},
		{20, 0.8},
		{100, 0.8},
	}

	for _, tc := range cases {
		if got := domain.DiscountFactor(tc.quantity); got != tc.want {
			t.Errorf("DiscountFactor(%d) = %v, want %v", tc.quantity, got, tc.want)
		}
	}
}

func TestLineTotal(t *testing.T) {
	cases := []struct {
		name      string
		quantity  int
		unitPrice float64
		want      float64
	}{
		{"no discount", 2, 20.0, 40.0},
		{"ten percent", 5, 10.0, 45.0},
		{"ten percent decimal price", 6, 7.50, 40.5},
		{"twenty percent", 12, 8.0, 76.8},
		{"twenty percent boundary", 10, 10.0, 80.0},
		{"single unit", 1, 10.0, 10.0},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := domain.LineTotal(tc.quantity, tc.unitPrice); got != tc.want {
				t.Fatalf("LineTotal(%d, %v) = %v, want %v", tc.quantity, tc.unitPrice, got, tc.want)
			}
		})
	}
}
