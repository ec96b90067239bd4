package checkpoint

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestWatermarkAfter(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		w     Watermark
		other Watermark
		want  bool
	}{
		{name: "greater", w: "120", other: "100", want: true},
		{name: "equal", w: "100", other: "100", want: false},
		{name: "smaller", w: "50", other: "100", want: false},
		{name: "numeric not lexicographic", w: "900", other: "1000", want: false},
		{name: "empty never advances", w: "", other: "100", want: false},
		{name: "non-numeric never advances", w: "abc", other: "100", want: false},
		{name: "advances past empty", w: "1", other: "", want: true},
		{name: "advances past garbage", w: "1", other: "garbage", want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			require.Equal(t, tt.want, tt.w.After(tt.other))
		})
	}
}

func TestMax(t *testing.T) {
	t.Parallel()

	require.Equal(t, Watermark("120"), Max("100", "120"))
	require.Equal(t, Watermark("120"), Max("120", "100"))
	require.Equal(t, Watermark("100"), Max("100", "abc"))
	require.Equal(t, Watermark(""), Max("", ""))
}
