package shared_test

import (
	"errors"
	"testing"

	"github.com/bryanwahyu/esr-tracker/src/domain/shared"
)

func TestTeamName_Validate(t *testing.T) {
	tests := []struct {
		name    string
		in      shared.TeamName
		wantErr bool
	}{
		{name: "valid", in: "Alpha", wantErr: false},
		{name: "empty", in: "", wantErr: true},
		{name: "whitespace only", in: "   ", wantErr: true},
		{name: "inner spaces and punctuation", in: `Red, "Blue" Team`, wantErr: false},
		{name: "line feed", in: "Red\nBlue", wantErr: true},
		{name: "carriage return", in: "Red\r\nBlue", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.in.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, shared.ErrInvalid) {
				t.Errorf("expected ErrInvalid, got %v", err)
			}
		})
	}
}

func TestGameTitle_Validate(t *testing.T) {
	if err := shared.GameTitle("Chess").Validate(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	for _, bad := range []shared.GameTitle{"\t", "Rocket\nLeague", "Rocket\rLeague"} {
		if err := bad.Validate(); !errors.Is(err, shared.ErrInvalid) {
			t.Errorf("Validate(%q) expected ErrInvalid, got %v", bad, err)
		}
	}
}
