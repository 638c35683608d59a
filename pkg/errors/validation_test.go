package errors

import (
	"math"
	"testing"
)

func TestValidateAssetID(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"valid simple", "this_asset", false},
		{"valid numeric", "1", false},
		{"valid dotted", "gold.cust_360_master", false},
		{"valid dash", "stg-orders", false},

		{"empty", "", true},
		{"too long", string(make([]byte, 300)), true},
		{"path traversal", "a..b", true},
		{"slash", "gold/cust", true},
		{"backslash", "gold\\cust", true},
		{"null byte", "foo\x00bar", true},
		{"newline", "foo\nbar", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateAssetID(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateAssetID(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if err != nil && !Is(err, ErrCodeInvalidInput) {
				t.Errorf("code = %v, want %v", GetCode(err), ErrCodeInvalidInput)
			}
		})
	}
}

func TestValidateViewport(t *testing.T) {
	tests := []struct {
		name    string
		w, h    float64
		wantErr bool
	}{
		{"typical", 800, 600, false},
		{"max", MaxViewport, MaxViewport, false},
		{"zero width", 0, 600, true},
		{"negative height", 800, -1, true},
		{"too large", MaxViewport + 1, 600, true},
		{"nan", math.NaN(), 600, true},
		{"inf", 800, math.Inf(1), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateViewport(tt.w, tt.h)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateViewport(%v, %v) error = %v, wantErr %v", tt.w, tt.h, err, tt.wantErr)
			}
			if err != nil && !Is(err, ErrCodeInvalidViewport) {
				t.Errorf("code = %v", GetCode(err))
			}
		})
	}
}

func TestValidateTicks(t *testing.T) {
	for _, n := range []int{1, 500, MaxTicks} {
		if err := ValidateTicks(n); err != nil {
			t.Errorf("ValidateTicks(%d) = %v", n, err)
		}
	}
	for _, n := range []int{0, -3, MaxTicks + 1} {
		if err := ValidateTicks(n); err == nil {
			t.Errorf("ValidateTicks(%d) = nil, want error", n)
		}
	}
}

func TestValidateFormat(t *testing.T) {
	allowed := []string{"svg", "dot", "json"}
	tests := []struct {
		input   string
		wantErr bool
	}{
		{"svg", false},
		{"json", false},
		{"png", true},
		{"SVG", true},
		{"", true},
		{"svg;rm", true},
	}
	for _, tt := range tests {
		err := ValidateFormat(tt.input, allowed)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidateFormat(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
		}
		if err != nil && !Is(err, ErrCodeInvalidFormat) {
			t.Errorf("code = %v", GetCode(err))
		}
	}
}
