package recorder

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"MarketBrief/internal/model"
)

var header = []string{"time", "price"}

// legacyTimeLayout is how older files without a zone were written.
const legacyTimeLayout = "2006-01-02 15:04:05"

// CSVRecorder appends samples to a two-column CSV file.
type CSVRecorder struct {
	path string
	mu   sync.Mutex
}

// NewCSVRecorder creates the parent directory of path. The file itself is
// created on the first Append.
func NewCSVRecorder(path string) (*CSVRecorder, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	return &CSVRecorder{path: path}, nil
}

// Path returns the backing file.
func (r *CSVRecorder) Path() string { return r.path }

func (r *CSVRecorder) Append(s model.Sample) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	samples, err := r.load()
	if err != nil {
		return err
	}
	if n := len(samples); n > 0 && s.Time.Before(samples[n-1].Time) {
		return fmt.Errorf("%w: %s is before %s", ErrOutOfOrder,
			s.Time.Format(time.RFC3339), samples[n-1].Time.Format(time.RFC3339))
	}

	f, err := os.OpenFile(r.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("open %s: %w", r.path, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return fmt.Errorf("stat %s: %w", r.path, err)
	}
	w := csv.NewWriter(f)
	if info.Size() == 0 {
		if err := w.Write(header); err != nil {
			return fmt.Errorf("write header: %w", err)
		}
	}
	if err := w.Write([]string{s.Time.UTC().Format(time.RFC3339), s.Price.String()}); err != nil {
		return fmt.Errorf("write sample: %w", err)
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("flush %s: %w", r.path, err)
	}
	return nil
}

func (r *CSVRecorder) Last() (model.Sample, bool, error) {
	samples, err := r.Samples()
	if err != nil || len(samples) == 0 {
		return model.Sample{}, false, err
	}
	return samples[len(samples)-1], true, nil
}

func (r *CSVRecorder) Samples() ([]model.Sample, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.load()
}

func (r *CSVRecorder) Close() error { return nil }

// load reads the file; a missing or empty file is an empty history.
func (r *CSVRecorder) load() ([]model.Sample, error) {
	f, err := os.Open(r.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", r.path, err)
	}
	defer f.Close()

	cr := csv.NewReader(f)
	cr.FieldsPerRecord = len(header)
	var samples []model.Sample
	for line := 1; ; line++ {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", r.path, err)
		}
		if line == 1 && rec[0] == header[0] {
			continue
		}
		s, err := parseRecord(rec)
		if err != nil {
			return nil, fmt.Errorf("%s line %d: %w", r.path, line, err)
		}
		samples = append(samples, s)
	}
	return samples, nil
}

func parseRecord(rec []string) (model.Sample, error) {
	t, err := time.Parse(time.RFC3339, rec[0])
	if err != nil {
		if t, err = time.Parse(legacyTimeLayout, rec[0]); err != nil {
			return model.Sample{}, fmt.Errorf("time %q: %w", rec[0], err)
		}
	}
	p, err := decimal.NewFromString(rec[1])
	if err != nil {
		return model.Sample{}, fmt.Errorf("price %q: %w", rec[1], err)
	}
	return model.Sample{Time: t, Price: p}, nil
}
