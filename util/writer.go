package util

import (
	"io"
	"strings"
)

type debugWriter struct {
	prefix string
}

// DebugWriter logs every write at debug level under prefix.
func DebugWriter(prefix string) io.Writer {
	return debugWriter{prefix: prefix}
}

func (w debugWriter) Write(p []byte) (int, error) {
	for _, line := range strings.Split(strings.TrimRight(string(p), "\n"), "\n") {
		Debug("[%s] %s", w.prefix, line)
	}
	return len(p), nil
}
