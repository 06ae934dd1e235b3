// Package toolcat maps tool names to reporting categories
//
// The table is static on purpose: a new tool name that has no entry is
// caught by Verify at startup instead of silently bucketing under the
// fallback forever
package toolcat

import (
	"fmt"
	"sort"
)

// Fallback is the category used for tool names without an entry
const Fallback = "general"

var categories = map[string]string{
	"merge":        "organize",
	"split":        "organize",
	"organize-pdf": "organize",
	"rotate-pdf":   "organize",
	"crop-pdf":     "organize",
	"page-numbers": "organize",

	"pdf-to-word":       "convert",
	"pdf-to-powerpoint": "convert",
	"pdf-to-excel":      "convert",
	"word-to-pdf":       "convert",
	"powerpoint-to-pdf": "convert",
	"excel-to-pdf":      "convert",
	"pdf-to-jpg":        "convert",
	"jpg-to-pdf":        "convert",
	"html-to-pdf":       "convert",
	"scan-to-pdf":       "convert",
	"pdf-to-pdfa":       "convert",

	"compress":   "optimize",
	"repair-pdf": "optimize",
	"ocr-pdf":    "optimize",

	"edit-pdf":    "edit",
	"watermark":   "edit",
	"compare-pdf": "edit",
	"redact-pdf":  "edit",

	"sign-pdf":    "security",
	"unlock-pdf":  "security",
	"protect-pdf": "security",
}

// Category returns the reporting category for a tool name
// unknown names get the Fallback category
func Category(tool string) string {
	if c, ok := categories[tool]; ok {
		return c
	}
	return Fallback
}

// Known reports whether the tool name has an explicit entry
func Known(tool string) bool {
	_, ok := categories[tool]
	return ok
}

// Tools returns all mapped tool names sorted for stable iteration
func Tools() []string {
	out := make([]string, 0, len(categories))
	for t := range categories {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}

// Verify checks that every name in tools has an explicit category
// call it at startup with the tool names the deployment serves
func Verify(tools []string) error {
	for _, t := range tools {
		if !Known(t) {
			return fmt.Errorf("toolcat: tool %q has no category entry", t)
		}
	}
	return nil
}
