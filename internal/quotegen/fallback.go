package quotegen

import (
	"fmt"
	"time"

	"github.com/yourdailydose/dailydose/internal/generator"
)

const (
	fallbackText   = "Success is not final, failure is not fatal: it is the courage to continue that counts."
	fallbackAuthor = "Winston Churchill"

	// fallbackCategory is used when the request carried no categories.
	fallbackCategory = "Motivation"
)

// FallbackQuote returns the fixed quote delivered when generation
// cannot produce a novel candidate within the retry budget. The current
// date is mixed into the text so back-to-back fallback days don't
// produce byte-identical history records.
func FallbackQuote(categories []string, now time.Time) generator.Quote {
	category := fallbackCategory
	if len(categories) > 0 && categories[0] != "" {
		category = categories[0]
	}

	return generator.Quote{
		Text:        fmt.Sprintf("%q - %s", fallbackText, now.Format("2006-01-02")),
		Author:      fallbackAuthor,
		Category:    category,
		Explanation: "A timeless reminder about perseverance and resilience.",
	}
}
