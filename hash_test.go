package transcache

import "testing"

func TestFingerprint(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		source   string
		target   string
		expected string
	}{
		{
			name:     "simple text",
			text:     "hello",
			source:   "en",
			target:   "zh",
			expected: "7240c978149369083e26986490f0d31ada88819f5719bf84e2c62e317f40815e",
		},
		{
			name:   "empty text",
			text:   "",
			source: "en",
			target: "zh",
		},
		{
			name:   "text containing delimiter",
			text:   "a:b:c",
			source: "en",
			target: "de",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Fingerprint(tt.text, tt.source, tt.target)
			if tt.expected != "" && result != tt.expected {
				t.Errorf("Fingerprint(%q) = %q, want %q", tt.text, result, tt.expected)
			}
			// SHA-256 = 64 hex chars
			if len(result) != 64 {
				t.Errorf("Fingerprint(%q) length = %d, want 64", tt.text, len(result))
			}
		})
	}
}

func TestFingerprint_Equality(t *testing.T) {
	type triple struct{ text, source, target string }

	triples := []triple{
		{"hello", "en", "zh"},
		{"hello", "en", "de"},
		{"hello", "fr", "zh"},
		{"Hello", "en", "zh"},
		{"hello ", "en", "zh"},
		{"hello:en", "zh", "de"},
		{"", "en", "zh"},
		{"a", "b:en", "zh"},
		{"a:b", "en", "zh"},
		{"a", "en", "b:zh"},
		{"a:en:b", "zh", ""},
		{"a", "b%3Aen", "zh"},
	}

	for i, a := range triples {
		for j, b := range triples {
			fa := Fingerprint(a.text, a.source, a.target)
			fb := Fingerprint(b.text, b.source, b.target)
			if (fa == fb) != (i == j) {
				t.Errorf("Fingerprint(%v) == Fingerprint(%v) is %v, want %v", a, b, fa == fb, i == j)
			}
		}
	}
}

func TestFingerprint_Known(t *testing.T) {
	// sha256("hello:en:zh"); must not change across releases or instances
	expected := "7240c978149369083e26986490f0d31ada88819f5719bf84e2c62e317f40815e"
	if got := Fingerprint("hello", "en", "zh"); got != expected {
		t.Errorf("Fingerprint() = %q, want %q", got, expected)
	}
}

func TestCacheKeys(t *testing.T) {
	fp := "abc123"

	if got := CacheKey(fp); got != "trans:abc123" {
		t.Errorf("CacheKey() = %q, want %q", got, "trans:abc123")
	}
	if got := CountKey(fp); got != "count:trans:abc123" {
		t.Errorf("CountKey() = %q, want %q", got, "count:trans:abc123")
	}
}
