package couriers

import (
	"testing"

	"parcel-tracking-service/internal/domain"
)

func TestNormalizeObservedAt(t *testing.T) {
	cases := []struct {
		name    string
		raw     string
		layouts []string
		want    string
	}{
		{
			name:    "plain day layout",
			raw:     "21/05/2021 14:33",
			layouts: []string{"02/01/2006 15:04"},
			want:    "21/05/2021, 14:33",
		},
		{
			name:    "greek afternoon marker",
			raw:     "21/05/21, 2:33 μ.μ.",
			layouts: []string{"02/01/06, 3:04 PM"},
			want:    "21/05/2021, 14:33",
		},
		{
			name:    "greek morning marker",
			raw:     "21/05/21, 9:05 π.μ.",
			layouts: []string{"02/01/06, 3:04 PM"},
			want:    "21/05/2021, 09:05",
		},
		{
			name:    "surrounding whitespace collapsed",
			raw:     "  21/05/2021   στις  14:33 ",
			layouts: []string{"02/01/2006 στις 15:04"},
			want:    "21/05/2021, 14:33",
		},
		{
			name:    "second layout wins",
			raw:     "21/05/2021, 14:33",
			layouts: []string{"02/01/2006 15:04", "02/01/2006, 15:04"},
			want:    "21/05/2021, 14:33",
		},
		{
			name:    "unparsable input",
			raw:     "αύριο το πρωί",
			layouts: []string{"02/01/2006 15:04"},
			want:    domain.ObservedAtUnknown,
		},
		{
			name:    "empty input",
			raw:     "",
			layouts: []string{"02/01/2006 15:04"},
			want:    domain.ObservedAtUnknown,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := normalizeObservedAt(tc.raw, tc.layouts...)
			if got != tc.want {
				t.Fatalf("normalizeObservedAt(%q) = %q, want %q", tc.raw, got, tc.want)
			}
		})
	}
}
