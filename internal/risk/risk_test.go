package risk

import (
	"errors"
	"testing"
)

func TestQuantityRiskCapped(t *testing.T) {
	// 2% of 100k = 2000 risk budget; 5 points of risk per share = 400.
	qty, err := Quantity(100, 95, 100000, 0.02)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if qty != 400 {
		t.Errorf("Expected 400 shares, got %d", qty)
	}
}

func TestQuantityCapitalCapped(t *testing.T) {
	// Risk budget allows 2000/5 = 400 shares but capital affords only 20.
	qty, err := Quantity(5000, 4995, 100000, 0.02)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if qty != 20 {
		t.Errorf("Expected capital cap of 20 shares, got %d", qty)
	}
}

func TestQuantityFloorsAtOne(t *testing.T) {
	// Risk budget rounds to zero shares; floor keeps the trade alive.
	qty, err := Quantity(100, 50, 1000, 0.01)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if qty != 1 {
		t.Errorf("Expected floor of 1 share, got %d", qty)
	}
}

func TestQuantityDegenerate(t *testing.T) {
	if _, err := Quantity(100, 100, 100000, 0.02); !errors.Is(err, ErrDegenerateRisk) {
		t.Errorf("Expected ErrDegenerateRisk for entry==stop, got %v", err)
	}
	if _, err := Quantity(0, 5, 100000, 0.02); !errors.Is(err, ErrDegenerateRisk) {
		t.Errorf("Expected ErrDegenerateRisk for zero entry, got %v", err)
	}
	if _, err := Quantity(100, 95, 0, 0.02); !errors.Is(err, ErrDegenerateRisk) {
		t.Errorf("Expected ErrDegenerateRisk for zero capital, got %v", err)
	}
}

func TestQuantityByCapital(t *testing.T) {
	if got := QuantityByCapital(2500, 100000); got != 40 {
		t.Errorf("Expected 40 shares, got %d", got)
	}
	if got := QuantityByCapital(0, 100000); got != 0 {
		t.Errorf("Expected 0 for zero entry, got %d", got)
	}
}
