package phone

import "testing"

func TestNormalize(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		region  string
		want    string
		wantErr bool
	}{
		{name: "e164 passthrough", raw: "+14155550123", want: "+14155550123"},
		{name: "national with default region", raw: "(415) 555-0123", want: "+14155550123"},
		{name: "uk number", raw: "020 7946 0958", region: "GB", want: "+442079460958"},
		{name: "whitespace trimmed", raw: "  +14155550123  ", want: "+14155550123"},
		{name: "empty", raw: "", wantErr: true},
		{name: "garbage", raw: "not-a-number", wantErr: true},
		{name: "too short", raw: "123", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Normalize(tt.raw, tt.region)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("Normalize(%q) = %q, want error", tt.raw, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("Normalize(%q) returned error: %v", tt.raw, err)
			}
			if got != tt.want {
				t.Errorf("Normalize(%q) = %q, want %q", tt.raw, got, tt.want)
			}
		})
	}
}

func TestNormalizeOrEmpty(t *testing.T) {
	if got := NormalizeOrEmpty("bogus", ""); got != "" {
		t.Errorf("NormalizeOrEmpty(bogus) = %q, want empty", got)
	}
	if got := NormalizeOrEmpty("+14155550123", ""); got != "+14155550123" {
		t.Errorf("NormalizeOrEmpty = %q, want +14155550123", got)
	}
}
