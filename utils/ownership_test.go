package utils

import (
	"errors"
	"testing"
)

func TestCheckOwnership(t *testing.T) {
	tests := []struct {
		name      string
		owner     uint
		principal uint
		wantErr   bool
	}{
		{"owner", 3, 3, false},
		{"other user", 3, 4, true},
		{"unowned resource", 0, 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CheckOwnership(tt.owner, tt.principal)
			if tt.wantErr && !errors.Is(err, ErrForbidden) {
				t.Errorf("got %v, want ErrForbidden", err)
			}
			if !tt.wantErr && err != nil {
				t.Errorf("got %v, want nil", err)
			}
		})
	}
}
