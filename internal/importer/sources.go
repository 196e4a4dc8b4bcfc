package importer

import (
	"fmt"
	"image"
	"path/filepath"

	"github.com/disintegration/imaging"

	"github.com/piwi3910/StickerSheet/internal/model"
)

// LoadSources returns a copy of job whose requests carry their decoded art.
// Relative paths are resolved against baseDir and EXIF orientation is
// applied. Entries whose art cannot be decoded keep a nil Source and are
// reported in the returned errors; the composers skip them.
func LoadSources(job model.Job, baseDir string) (model.Job, []error) {
	out := model.Job{ID: job.ID, Entries: make([]model.JobEntry, len(job.Entries))}
	copy(out.Entries, job.Entries)

	var errs []error
	decoded := make(map[string]*decodeResult)
	for i := range out.Entries {
		req := &out.Entries[i].Request
		if req.Source != nil {
			continue
		}
		path := req.Path
		if !filepath.IsAbs(path) {
			path = filepath.Join(baseDir, path)
		}

		res, ok := decoded[path]
		if !ok {
			img, err := imaging.Open(path, imaging.AutoOrientation(true))
			res = &decodeResult{img: img, err: err}
			decoded[path] = res
		}
		if res.err != nil {
			errs = append(errs, fmt.Errorf("sticker %q: loading %s: %w", out.Entries[i].Key, path, res.err))
			continue
		}
		req.Source = res.img
	}
	return out, errs
}

type decodeResult struct {
	img image.Image
	err error
}
