// Package scanner walks photo directories and loads geotagged images into
// the catalog. Coordinates, camera direction and timestamp come from EXIF;
// files without GPS data are skipped.
package scanner

import (
	"context"
	"io/fs"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/rwcarlsen/goexif/exif"

	"github.com/koo5/horizon/internal/catalog"
	"github.com/koo5/horizon/internal/geo"
	"github.com/koo5/horizon/internal/queue"
	"github.com/koo5/horizon/pkg/core"
)

// Stats summarizes one scan pass.
type Stats struct {
	Scanned int
	Added   int
	Skipped int
}

// Scanner extracts photo records from image files on disk.
type Scanner struct {
	catalog catalog.Writable
	log     *slog.Logger
	workers int
}

// New creates a scanner writing into cat. workers bounds the number of
// files decoded concurrently.
func New(cat catalog.Writable, log *slog.Logger, workers int) *Scanner {
	if workers < 1 {
		workers = 1
	}
	return &Scanner{
		catalog: cat,
		log:     log,
		workers: workers,
	}
}

// Scan walks root recursively, extracts a record from every image with GPS
// EXIF data, and adds the results to the catalog in one batch.
func (s *Scanner) Scan(ctx context.Context, root string) (Stats, error) {
	paths := make(chan string)
	results := queue.New[core.PhotoRecord]()

	var stats Stats
	var statsMu sync.Mutex

	var wg sync.WaitGroup
	for i := 0; i < s.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for path := range paths {
				record, err := ExtractRecord(path)
				if err != nil {
					s.log.Debug("Skipping image", "path", path, "reason", err)
					statsMu.Lock()
					stats.Skipped++
					statsMu.Unlock()
					continue
				}
				results.Push(record)
			}
		}()
	}

	walkErr := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if !isImage(d.Name()) {
			return nil
		}
		statsMu.Lock()
		stats.Scanned++
		statsMu.Unlock()
		select {
		case paths <- path:
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	})
	close(paths)
	wg.Wait()

	if walkErr != nil {
		return stats, walkErr
	}

	records := results.Drain()
	if len(records) > 0 {
		if err := s.catalog.Add(ctx, records...); err != nil {
			return stats, err
		}
	}
	stats.Added = len(records)

	s.log.Info("Scan complete",
		"root", root,
		"scanned", stats.Scanned,
		"added", stats.Added,
		"skipped", stats.Skipped)
	return stats, nil
}

// ExtractRecord reads EXIF data from the image at path. The record ID is
// derived from the path so rescans update rather than duplicate.
func ExtractRecord(path string) (core.PhotoRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return core.PhotoRecord{}, err
	}
	defer f.Close()

	x, err := exif.Decode(f)
	if err != nil {
		return core.PhotoRecord{}, err
	}

	lat, lon, err := x.LatLong()
	if err != nil {
		return core.PhotoRecord{}, err
	}

	record := core.PhotoRecord{
		ID:        RecordID(path),
		Location:  core.GeoPoint{Lat: lat, Lon: lon},
		Thumbnail: path,
	}

	if tag, err := x.Get(exif.GPSImgDirection); err == nil {
		if num, den, err := tag.Rat2(0); err == nil && den != 0 {
			dir := geo.NormalizeBearing(float64(num) / float64(den))
			if !math.IsNaN(dir) {
				record.Direction = &dir
			}
		}
	}

	if taken, err := x.DateTime(); err == nil {
		record.TakenAt = taken
	}

	return record, nil
}

// RecordID returns the stable catalog ID for an image path.
func RecordID(path string) string {
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte(path)).String()
}

func isImage(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".jpg", ".jpeg", ".png", ".tif", ".tiff":
		return true
	}
	return false
}
