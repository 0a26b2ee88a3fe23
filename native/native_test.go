package native

import (
	"errors"
	"math"
	"testing"

	domainerrors "github.com/reglet-dev/native-starter/domain/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSum(t *testing.T) {
	tests := []struct {
		name string
		a, b int32
		want int32
	}{
		{name: "small positives", a: 2, b: 3, want: 5},
		{name: "cancel out", a: -1, b: 1, want: 0},
		{name: "zeros", a: 0, b: 0, want: 0},
		{name: "max plus zero", a: math.MaxInt32, b: 0, want: math.MaxInt32},
		{name: "min plus zero", a: math.MinInt32, b: 0, want: math.MinInt32},
		{name: "max minus one plus one", a: math.MaxInt32 - 1, b: 1, want: math.MaxInt32},
		{name: "min plus one minus one", a: math.MinInt32 + 1, b: -1, want: math.MinInt32},
		{name: "max plus min", a: math.MaxInt32, b: math.MinInt32, want: -1},
		{name: "mixed signs", a: -1000, b: 250, want: -750},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Sum(tt.a, tt.b)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSum_Overflow(t *testing.T) {
	tests := []struct {
		name string
		a, b int32
	}{
		{name: "max plus one", a: math.MaxInt32, b: 1},
		{name: "min minus one", a: math.MinInt32, b: -1},
		{name: "max plus max", a: math.MaxInt32, b: math.MaxInt32},
		{name: "min plus min", a: math.MinInt32, b: math.MinInt32},
		{name: "large positives", a: 1 << 30, b: 1 << 30},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Sum(tt.a, tt.b)
			require.Error(t, err)
			assert.Zero(t, got)
			assert.True(t, errors.Is(err, domainerrors.ErrOverflow))
			assert.Contains(t, err.Error(), "Integer overflow in sum operation")

			var overflow *domainerrors.OverflowError
			require.True(t, errors.As(err, &overflow))
			assert.Equal(t, tt.a, overflow.A)
			assert.Equal(t, tt.b, overflow.B)
		})
	}
}

func TestSum_Sequential(t *testing.T) {
	for i := int32(0); i < 1000; i++ {
		got, err := Sum(i, 1)
		require.NoError(t, err)
		require.Equal(t, i+1, got)
	}
}

func TestHello(t *testing.T) {
	first := Hello()
	assert.Equal(t, "Hello there", first)
	assert.NotEmpty(t, first)
	assert.Len(t, first, 11)

	for i := 0; i < 100; i++ {
		assert.Equal(t, first, Hello())
	}
}

func TestSum_Concurrent(t *testing.T) {
	done := make(chan struct{})
	for g := 0; g < 8; g++ {
		go func(offset int32) {
			defer func() { done <- struct{}{} }()
			for i := int32(0); i < 500; i++ {
				got, err := Sum(offset, i)
				if err != nil || got != offset+i {
					t.Errorf("Sum(%d, %d) = %d, %v", offset, i, got, err)
					return
				}
			}
		}(int32(g) * 1000)
	}
	for g := 0; g < 8; g++ {
		<-done
	}
}

func FuzzSum(f *testing.F) {
	f.Add(int32(0), int32(0))
	f.Add(int32(math.MaxInt32), int32(1))
	f.Add(int32(math.MinInt32), int32(-1))
	f.Add(int32(math.MaxInt32-1), int32(1))

	f.Fuzz(func(t *testing.T, a, b int32) {
		exact := int64(a) + int64(b)
		got, err := Sum(a, b)
		if exact > math.MaxInt32 || exact < math.MinInt32 {
			if !errors.Is(err, domainerrors.ErrOverflow) {
				t.Fatalf("Sum(%d, %d) = %d, want overflow", a, b, got)
			}
			return
		}
		if err != nil {
			t.Fatalf("Sum(%d, %d) unexpected error: %v", a, b, err)
		}
		if int64(got) != exact {
			t.Fatalf("Sum(%d, %d) = %d, want %d", a, b, got, exact)
		}
	})
}

func BenchmarkSum(b *testing.B) {
	for i := 0; i < b.N; i++ {
		_, _ = Sum(int32(i&0xFFFF), 1)
	}
}

func BenchmarkHello(b *testing.B) {
	for i := 0; i < b.N; i++ {
		_ = Hello()
	}
}
