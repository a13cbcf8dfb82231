package audio

import "testing"

func TestScaleTo16(t *testing.T) {
	t.Parallel()

	tests := []struct {
		v, depth, want int
	}{
		{v: 128, depth: 8, want: 0},
		{v: 255, depth: 8, want: 127 << 8},
		{v: 0, depth: 8, want: -32768},
		{v: 1234, depth: 16, want: 1234},
		{v: 8388607, depth: 24, want: 32767},
		{v: -8388608, depth: 24, want: -32768},
		{v: 2147483647, depth: 32, want: 32767},
		{v: 1, depth: 12, want: 16},
	}
	for _, tc := range tests {
		if got := scaleTo16(tc.v, tc.depth); got != tc.want {
			t.Errorf("scaleTo16(%d, %d) = %d, want %d", tc.v, tc.depth, got, tc.want)
		}
	}
}

func TestDownmix_ThreeChannels(t *testing.T) {
	t.Parallel()
	out := downmix([]int{300, 600, 900, -3, -6, -9}, 3, 16)
	if len(out) != 4 {
		t.Fatalf("len = %d, want 4", len(out))
	}
	if got := int16(uint16(out[0]) | uint16(out[1])<<8); got != 600 {
		t.Errorf("frame 0 = %d, want 600", got)
	}
	if got := int16(uint16(out[2]) | uint16(out[3])<<8); got != -6 {
		t.Errorf("frame 1 = %d, want -6", got)
	}
}
