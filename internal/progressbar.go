package internal

import (
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/schollz/progressbar/v3"
)

// NewBarReporter returns a progress function suitable for
// zipkit.ProgressReporter / zipwalk.ProgressReporter, backed by a
// schollz/progressbar bar sized to total. written is per-src, so the
// reporter tracks each src's last-seen value to advance the bar by the
// delta rather than overwriting it on every new file.
func NewBarReporter(total int64, description string) func(src, dst string, written int64, done bool) {
	bar := DefaultBytes(total, description)

	var mu sync.Mutex
	last := map[string]int64{}

	return func(src, dst string, written int64, done bool) {
		mu.Lock()
		delta := written - last[src]
		last[src] = written
		mu.Unlock()

		_ = bar.Add64(delta)
		if done {
			mu.Lock()
			delete(last, src)
			mu.Unlock()
		}
	}
}

// DefaultBytes is equivalent to progressbar.DefaultBytes but with higher progressbar.OptionThrottle.
func DefaultBytes(maxBytes int64, description string, options ...progressbar.Option) *progressbar.ProgressBar {
	return progressbar.NewOptions64(maxBytes,
		append([]progressbar.Option{
			progressbar.OptionSetDescription(description),
			progressbar.OptionSetWriter(os.Stderr),
			progressbar.OptionShowBytes(true),
			progressbar.OptionSetWidth(10),
			progressbar.OptionThrottle(1 * time.Second),
			progressbar.OptionShowCount(),
			progressbar.OptionOnCompletion(func() {
				_, _ = fmt.Fprint(os.Stderr, "\n")
			}),
			progressbar.OptionSpinnerType(14),
			progressbar.OptionFullWidth(),
			progressbar.OptionSetRenderBlankState(true)},
			options...)...)
}
