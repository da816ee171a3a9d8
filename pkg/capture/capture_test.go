package capture

import (
	"context"
	"strings"
	"testing"

	"github.com/go-rod/rod/lib/launcher"
)

func TestCapture(t *testing.T) {
	if _, found := launcher.LookPath(); !found {
		t.Skip("no browser available")
	}

	capturer, err := New(NewOptions())
	if err != nil {
		t.Fatalf("Failed to create capturer: %v", err)
	}
	defer capturer.Close()

	result, err := capturer.Capture(context.Background(), "https://example.com/")
	if err != nil {
		t.Fatalf("Failed to capture screenshot: %v", err)
	}

	if len(result.Image) == 0 {
		t.Fatal("Captured image is empty")
	}

	if !strings.HasPrefix(result.Filename(), "screenshot_example.com_") {
		t.Errorf("Unexpected filename %q", result.Filename())
	}

	// Second capture reuses the same page.
	second, err := capturer.Capture(context.Background(), "https://example.com/")
	if err != nil {
		t.Fatalf("Failed to capture second screenshot: %v", err)
	}
	if len(second.Image) == 0 {
		t.Fatal("Second captured image is empty")
	}
}
