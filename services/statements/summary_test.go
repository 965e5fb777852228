package statements

import (
	"strings"
	"testing"
)

func TestRenderSummary(t *testing.T) {
	bill, mentor, sessions := fixtureBill()

	out, err := RenderSummary(bill, mentor, sessions)
	if err != nil {
		t.Fatalf("RenderSummary: %v", err)
	}

	for _, want := range []string{
		"Statement 2025-05 for ada-lovelace",
		bill.ID.String(),
		"2025-05-01 .. 2025-05-31",
		"90.00 min",
		"Price: 120.00",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("summary missing %q:\n%s", want, out)
		}
	}
}
