package types

import "testing"

func TestNormalizeTicker(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"005930", "005930"},
		{"5930", "005930"},
		{"005930.KS", "005930"},
		{"035720.KQ", "035720"},
		{" 5930 ", "005930"},
		{"660", "000660"},
	}
	for _, tc := range cases {
		if got := NormalizeTicker(tc.in); got != tc.want {
			t.Errorf("NormalizeTicker(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
