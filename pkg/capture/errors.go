package capture

import "fmt"

// NavigationError reports a failure to acquire a page or navigate it to
// the target URL.
type NavigationError struct {
	URL string
	Err error
}

func (e *NavigationError) Error() string {
	return fmt.Sprintf("navigating to %s: %v", e.URL, e.Err)
}

func (e *NavigationError) Unwrap() error { return e.Err }

// CaptureError reports a failure to produce a screenshot of a page that
// was navigated successfully.
type CaptureError struct {
	URL string
	Err error
}

func (e *CaptureError) Error() string {
	return fmt.Sprintf("capturing screenshot of %s: %v", e.URL, e.Err)
}

func (e *CaptureError) Unwrap() error { return e.Err }
