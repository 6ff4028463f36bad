package s3

import "fmt"

// rangeHeader formats an inclusive HTTP byte-range header value.
func rangeHeader(off, end int64) string {
	return fmt.Sprintf("bytes=%d-%d", off, end)
}
