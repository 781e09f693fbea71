package stylist

import "testing"

func TestEnhanceQuery(t *testing.T) {
	tests := []struct {
		query string
		want  string
	}{
		{"red dress", "red dress"},
		{"inspired by Chanel jacket", "Chanel style jacket"},
		{"bag like gucci", "bag gucci style"},
		{"prada style shoes", "prada style designer look shoes"},
		{"Elegant black gown", "elegant sophisticated classy black gown"},
		{"boho maxi skirt", "bohemian boho hippie festival maxi skirt"},
		{"casual casual tee", "casual everyday comfortable casual tee"},
		{"inspired by dior vintage", "dior style vintage retro classic"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			if got := EnhanceQuery(tt.query); got != tt.want {
				t.Errorf("EnhanceQuery(%q) = %q, want %q", tt.query, got, tt.want)
			}
		})
	}
}
