package objectkey

import (
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTimestampGenerator(t *testing.T) {
	fixed := time.UnixMilli(1700000000123)
	gen := &TimestampGenerator{Now: func() time.Time { return fixed }}

	key := gen.GenerateKey("front view.png")
	assert.Regexp(t, regexp.MustCompile(`^1700000000123-[0-9a-f]{8}-front_view\.png$`), key)
	assert.NotContains(t, key, "/")

	t.Run("same name same millisecond differs", func(t *testing.T) {
		assert.NotEqual(t, gen.GenerateKey("a.png"), gen.GenerateKey("a.png"))
	})
}

func TestSanitizeFilename(t *testing.T) {
	tests := []struct {
		in       string
		expected string
	}{
		{"photo.jpg", "photo.jpg"},
		{"my photo.jpg", "my_photo.jpg"},
		{"../../etc/passwd", "passwd"},
		{`C:\Users\me\pic.png`, "pic.png"},
		{"what?#%.png", "what___.png"},
		{"", "image"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.expected, SanitizeFilename(tt.in))
		})
	}
}

func TestKeyFromLocator(t *testing.T) {
	tests := []struct {
		name     string
		locator  string
		expected string
	}{
		{"s3 virtual host", "https://bucket.s3.us-east-1.amazonaws.com/1700-abcd-a.png", "1700-abcd-a.png"},
		{"path style", "http://localhost:9000/product-images/1700-abcd-a.png", "1700-abcd-a.png"},
		{"escaped", "http://cdn.example.com/images/1700-abcd-%C3%A9t%C3%A9.png", "1700-abcd-été.png"},
		{"bare key", "1700-abcd-a.png", "1700-abcd-a.png"},
		{"empty", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, KeyFromLocator(tt.locator))
		})
	}
}

func TestCustomFuncGenerator(t *testing.T) {
	gen := NewCustomFuncGenerator(func(fileName string) string {
		return "fixed-" + strings.ToUpper(fileName)
	})
	assert.Equal(t, "fixed-A.PNG", gen.GenerateKey("a.png"))
}
