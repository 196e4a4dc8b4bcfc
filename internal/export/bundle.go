package export

import (
	"archive/zip"
	"fmt"
	"io"
	"time"
)

// BundleFile is one member of a zip bundle.
type BundleFile struct {
	Name string
	Data []byte
}

// WriteBundle writes files, in order, as a zip archive. Members are
// deflated and stamped with the current time.
func WriteBundle(w io.Writer, files []BundleFile) error {
	zw := zip.NewWriter(w)
	now := time.Now()
	for _, f := range files {
		fw, err := zw.CreateHeader(&zip.FileHeader{
			Name:     f.Name,
			Method:   zip.Deflate,
			Modified: now,
		})
		if err != nil {
			return fmt.Errorf("adding %s to bundle: %w", f.Name, err)
		}
		if _, err := fw.Write(f.Data); err != nil {
			return fmt.Errorf("writing %s to bundle: %w", f.Name, err)
		}
	}
	if err := zw.Close(); err != nil {
		return fmt.Errorf("closing bundle: %w", err)
	}
	return nil
}
