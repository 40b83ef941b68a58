package conf

import (
	"bytes"
	"io"
	"os"
)

// NewEnvExpandedReader expands ${VAR} references in the stream before
// the YAML decoder sees them.
func NewEnvExpandedReader(r io.Reader) io.Reader {
	raw, err := io.ReadAll(r)
	if err != nil {
		return &errReader{err}
	}

	expanded := os.Expand(string(raw), func(key string) string {
		if v, ok := os.LookupEnv(key); ok {
			return v
		}
		return "${" + key + "}"
	})

	return bytes.NewReader([]byte(expanded))
}

type errReader struct {
	err error
}

func (r *errReader) Read(p []byte) (int, error) {
	return 0, r.err
}
