package query

import (
	"fmt"
	"strings"
	"time"
)

// FormatChat renders a query result as a chat-style message: the answer, the
// top sources with the overall confidence, and a timing note for slow
// queries.
func FormatChat(result *QueryResult) string {
	var parts []string

	parts = append(parts, fmt.Sprintf("*Answer:*\n%s", result.Answer))

	if len(result.SearchResults) > 0 {
		parts = append(parts, fmt.Sprintf("\n*Sources (%.0f%% confidence):*", result.Confidence*100))
		for i, src := range result.SearchResults {
			if i >= maxContextSources {
				break
			}
			line := fmt.Sprintf("- %s > %s", src.SourceTab, src.SourceSection)
			if src.DocumentURL != "" {
				line += fmt.Sprintf(" (<%s|View Doc>)", src.DocumentURL)
			}
			parts = append(parts, line)
		}
	}

	if result.ProcessingTime > 2*time.Second {
		parts = append(parts, fmt.Sprintf("\n_Processed in %.1fs_", result.ProcessingTime.Seconds()))
	}

	return strings.Join(parts, "\n")
}
