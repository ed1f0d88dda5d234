package browser

// Options configures the fixed, non-interactive browser profile. Values come
// from config at startup and never change for the life of the process.
type Options struct {
	ViewportWidth  int
	ViewportHeight int
	Locale         string
	UserAgent      string
}

// PageInfo reflects the page at call time: the final URL after any redirects,
// not the URL that was requested.
type PageInfo struct {
	Title string `json:"title"`
	URL   string `json:"url"`
}

// ActionResult is the structured outcome of a click or type action. A missing
// element is a routine automation outcome, reported here rather than as an
// error.
type ActionResult struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// Fixed timings, matching the original automation flow.
const (
	// navigationTimeoutMs bounds page loads.
	navigationTimeoutMs = 30000.0

	// navigateSettleMs lets client-side redirects and challenges render after
	// the DOM-ready milestone.
	navigateSettleMs = 1000.0

	// clickSettleMs lets click side effects land before the next read.
	clickSettleMs = 500.0

	// typeKeyDelayMs spaces simulated keystrokes so sites that reject
	// programmatic value-setting accept the input.
	typeKeyDelayMs = 50.0

	// screenshotQuality is the JPEG quality for page captures.
	screenshotQuality = 70
)
