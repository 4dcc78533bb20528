package logging

import "github.com/acarl005/stripansi"

// stripANSIEscapeSequences removes terminal color codes from captured
// worker output before it is written to disk. Runner binaries colorize
// freely; log files should not carry the escapes.
func stripANSIEscapeSequences(s string) string {
	return stripansi.Strip(s)
}
