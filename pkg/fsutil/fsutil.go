package fsutil

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// WriteDocument writes text verbatim to the sink at path. An empty path or
// "-" selects standard output. Any write failure is fatal for the
// invocation; there are no retries and no partial-success mode.
func WriteDocument(path, text string) error {
	if path == "" || path == "-" {
		if _, err := io.WriteString(os.Stdout, text); err != nil {
			return fmt.Errorf("writing document to stdout: %w", err)
		}

		return nil
	}

	if err := os.WriteFile(path, []byte(text), 0644); err != nil {
		return fmt.Errorf("writing document: %w", err)
	}

	return nil
}

// CopyFile copies src to dst, creating dst's directory if needed.
func CopyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("opening %s: %w", src, err)
	}
	defer in.Close()

	if err := os.MkdirAll(filepath.Dir(dst), 0755); err != nil {
		return fmt.Errorf("creating %s: %w", filepath.Dir(dst), err)
	}

	out, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("creating %s: %w", dst, err)
	}

	if _, err := io.Copy(out, in); err != nil {
		out.Close()

		return fmt.Errorf("copying to %s: %w", dst, err)
	}

	if err := out.Close(); err != nil {
		return fmt.Errorf("closing %s: %w", dst, err)
	}

	return nil
}
