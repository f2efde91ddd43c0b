package types

import (
	"errors"
	"testing"
	"time"
)

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		config  Config
		wantErr error
	}{
		{
			name:    "empty base URL returns ErrBaseURLEmpty",
			config:  Config{BaseURL: ""},
			wantErr: ErrBaseURLEmpty,
		},
		{
			name:    "relative base URL returns ErrBaseURLInvalid",
			config:  Config{BaseURL: "/api"},
			wantErr: ErrBaseURLInvalid,
		},
		{
			name:    "non-http scheme returns ErrBaseURLInvalid",
			config:  Config{BaseURL: "ftp://contacts.example.com"},
			wantErr: ErrBaseURLInvalid,
		},
		{
			name:    "negative timeout returns ErrTimeoutInvalid",
			config:  Config{BaseURL: "http://localhost:8080", Timeout: -time.Second},
			wantErr: ErrTimeoutInvalid,
		},
		{
			name:    "valid config",
			config:  Config{BaseURL: "https://contacts.example.com/api", Token: "t"},
			wantErr: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if tt.wantErr == nil {
				if err != nil {
					t.Fatalf("expected nil error, got %v", err)
				}
				return
			}
			if err == nil {
				t.Fatalf("expected error %v, got nil", tt.wantErr)
			}
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("expected error %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestConfigEffectiveTimeout(t *testing.T) {
	if got := (Config{}).EffectiveTimeout(); got != DefaultTimeout {
		t.Fatalf("expected default timeout %v, got %v", DefaultTimeout, got)
	}
	if got := (Config{Timeout: 5 * time.Second}).EffectiveTimeout(); got != 5*time.Second {
		t.Fatalf("expected 5s, got %v", got)
	}
}
