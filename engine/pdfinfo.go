package engine

import (
	"bytes"
	"runtime"
)

// countPDFPages estimates the page count by scanning page object markers.
// Generated documents from Chrome and WeasyPrint write uncompressed object
// dictionaries, so this is reliable for our own output; zero means unknown.
func countPDFPages(data []byte) int {
	count := bytes.Count(data, []byte("/Type /Page"))
	count -= bytes.Count(data, []byte("/Type /Pages"))
	if count <= 0 {
		// Compact writer variant without the space
		count = bytes.Count(data, []byte("/Type/Page")) - bytes.Count(data, []byte("/Type/Pages"))
	}
	if count < 0 {
		return 0
	}
	return count
}

// currentMemory reports the Go-side heap footprint. Browser child processes
// are not included; the figure is a floor, not a ceiling.
func currentMemory() int64 {
	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)
	return int64(ms.HeapAlloc)
}
