package cli

import (
	"fmt"
	"strings"
)

// ─── Progress Bar ───────────────────────────────────────────────────────────
// Renders fractional progress for levels, challenges and routes:
// [=============>................]  45%

const barWidth = 30 // Characters for the progress bar

// renderBar draws frac (0..1) as a fixed-width bar with a percentage.
func renderBar(frac float64) string {
	if frac < 0 {
		frac = 0
	}
	if frac > 1 {
		frac = 1
	}

	filled := int(frac * float64(barWidth))
	if filled > barWidth {
		filled = barWidth
	}
	empty := barWidth - filled

	var bar string
	if filled == barWidth {
		bar = strings.Repeat("=", filled)
	} else if filled > 0 {
		bar = strings.Repeat("=", filled-1) + ">" + strings.Repeat(".", empty)
	} else {
		bar = strings.Repeat(".", barWidth)
	}
	return fmt.Sprintf("[%s] %3.0f%%", bar, frac*100)
}

// formatRemaining renders a countdown such as "3h12m" or "expired".
func formatRemaining(seconds int64) string {
	if seconds <= 0 {
		return "expired"
	}
	if seconds < 60 {
		return fmt.Sprintf("%ds", seconds)
	}
	if seconds < 3600 {
		return fmt.Sprintf("%dm%ds", seconds/60, seconds%60)
	}
	if seconds < 86400 {
		return fmt.Sprintf("%dh%dm", seconds/3600, (seconds%3600)/60)
	}
	return fmt.Sprintf("%dd%dh", seconds/86400, (seconds%86400)/3600)
}
