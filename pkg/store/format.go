package store

import (
	"fmt"
	"net/url"
	"strings"
)

// DownloadPath is the route the chat frontend resolves document download
// references against.
const DownloadPath = "/api/file/v1/download"

// formatContext renders the accumulated context as one text blob for
// prompt construction. The layout is a compatibility surface consumed
// verbatim by the orchestration layer: per non-empty collection a header
// with the triggering query, then per document its display name, score to
// three decimals, provenance label, download reference and full content.
// Both backends render through this function so their output is identical.
func formatContext(s *SessionContext) string {
	if s == nil || s.documentCount() == 0 {
		return ""
	}

	var b strings.Builder
	for _, col := range s.Collections {
		if len(col.Documents) == 0 {
			continue
		}
		fmt.Fprintf(&b, "=== Collection: %s (query: %s) ===\n\n", col.Key, col.SearchQuery)
		for _, doc := range col.Documents {
			label := "fragments"
			if doc.Source == SourceFullDocument {
				label = "full text"
			}
			fmt.Fprintf(&b, "--- %s (relevance: %.3f, %s) ---\n", doc.FileName, doc.Score, label)
			fmt.Fprintf(&b, "Download: %s?file_id=%s&file_name=%s\n", DownloadPath, doc.FileID, url.QueryEscape(doc.FileName))
			b.WriteString(doc.Content)
			b.WriteString("\n\n")
		}
	}
	return b.String()
}
