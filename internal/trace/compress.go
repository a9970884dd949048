package trace

import (
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/andybalholm/brotli"
)

// CompressedExt marks brotli-compressed trace files. The extension before
// it selects the format, as in crash.log.br.
const CompressedExt = ".br"

// IsCompressed reports whether path names a compressed trace.
func IsCompressed(path string) bool {
	return strings.EqualFold(filepath.Ext(path), CompressedExt)
}

// formatName strips the compression suffix from path.
func formatName(path string) string {
	if IsCompressed(path) {
		return path[:len(path)-len(CompressedExt)]
	}
	return path
}

func readTraceFile(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var r io.Reader = f
	if IsCompressed(path) {
		r = brotli.NewReader(f)
	}
	return io.ReadAll(r)
}
