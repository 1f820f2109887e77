package validate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQuality(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    *int
		wantErr error
	}{
		{name: "empty means absent", input: "", want: nil},
		{name: "valid mid value", input: "50", want: intPtr(50)},
		{name: "lower bound", input: "1", want: intPtr(1)},
		{name: "upper bound", input: "100", want: intPtr(100)},
		{name: "below range", input: "0", wantErr: ErrOutOfRange},
		{name: "above range", input: "101", wantErr: ErrOutOfRange},
		{name: "negative", input: "-5", wantErr: ErrOutOfRange},
		{name: "not a number", input: "abc", wantErr: ErrNotANumber},
		{name: "float", input: "12.5", wantErr: ErrNotANumber},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Quality(tt.input)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, got)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDimension(t *testing.T) {
	const max = 10000

	tests := []struct {
		name    string
		input   string
		want    *int
		wantErr error
	}{
		{name: "empty means absent", input: "", want: nil},
		{name: "valid", input: "2000", want: intPtr(2000)},
		{name: "exactly max", input: "10000", want: intPtr(10000)},
		{name: "zero", input: "0", wantErr: ErrOutOfRange},
		{name: "negative", input: "-1", wantErr: ErrOutOfRange},
		{name: "over max", input: "10001", wantErr: ErrOutOfRange},
		{name: "not a number", input: "wide", wantErr: ErrNotANumber},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Dimension(tt.input, max)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, got)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func intPtr(v int) *int {
	return &v
}
