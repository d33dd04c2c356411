package models

import (
	"errors"
	"fmt"
	"testing"

	"github.com/shopspring/decimal"
)

func TestMinorUnits(t *testing.T) {
	cases := map[string]int64{
		"1200.00": 120000,
		"19.99":   1999,
		"0.005":   1,
		"0.004":   0,
		"0":       0,
	}
	for in, want := range cases {
		if got := MinorUnits(decimal.RequireFromString(in)); got != want {
			t.Fatalf("MinorUnits(%s) = %d, want %d", in, got, want)
		}
	}
}

func TestKindOfWrapped(t *testing.T) {
	err := fmt.Errorf("outer: %w", Conflict("exceeds stock"))
	if KindOf(err) != KindConflict {
		t.Fatalf("expected conflict, got %v", KindOf(err))
	}
	if MessageOf(err) != "exceeds stock" {
		t.Fatalf("unexpected message %q", MessageOf(err))
	}
	if KindOf(errors.New("boom")) != KindInternal {
		t.Fatalf("plain errors must be internal")
	}
	cause := errors.New("conn reset")
	if !errors.Is(Storage(cause, "commit failed"), cause) {
		t.Fatalf("storage error must unwrap to its cause")
	}
}

func TestPrincipalCan(t *testing.T) {
	p := Principal{ID: "u1", Capabilities: []Capability{CapViewAllOrders}}
	if !p.Can(CapViewAllOrders) || p.Can(CapManageStock) {
		t.Fatalf("unexpected capabilities: %+v", p)
	}
}

func TestOrderTotal(t *testing.T) {
	o := Order{Quantity: 3, UnitPrice: decimal.RequireFromString("1200.00")}
	if !o.Total().Equal(decimal.RequireFromString("3600")) {
		t.Fatalf("unexpected total %s", o.Total())
	}
}
