package gogp

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gonum.org/v1/gonum/mat"
)

// Exporter defines an export interface for predictions.
type Exporter interface {
	Write(locations mat.Matrix, p Prediction) error
	Close() error
}

// CSVExporter writes predictions as CSV: the location coordinates followed by the
// mean and the mean ± 2σ bounds.
type CSVExporter struct {
	delimiter string
	hdlr      io.WriteCloser
}

// Close closes the file.
func (e CSVExporter) Close() (err error) {
	err = e.WriteRawLn(fmt.Sprintf("# Closing date (UTC): %s", time.Now().UTC()))
	if err != nil {
		return
	}
	return e.hdlr.Close()
}

// Write writes one line per location of the prediction.
func (e CSVExporter) Write(locations mat.Matrix, p Prediction) error {
	r, c := locations.Dims()
	if r != p.Mean().Len() {
		return sizeMismatch("exported locations", p.Mean().Len(), r)
	}
	var b strings.Builder
	vals := make([]string, c+3)
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			vals[j] = fmt.Sprintf("%f", locations.At(i, j))
		}
		mean := p.Mean().AtVec(i)
		bound := 2 * p.StdDev(i)
		vals[c] = fmt.Sprintf("%f", mean)
		vals[c+1] = fmt.Sprintf("%f", mean+bound)
		vals[c+2] = fmt.Sprintf("%f", mean-bound)
		b.WriteString(strings.Join(vals, e.delimiter))
		b.WriteByte('\n')
	}
	_, err := io.WriteString(e.hdlr, b.String())
	return err
}

// WriteRawLn writes a raw line to the CSV file.
func (e CSVExporter) WriteRawLn(s string) error {
	_, err := io.WriteString(e.hdlr, s+"\n")
	return err
}

// NewCSVExporter initializes a new CSV export in dir/filename. The headers name the
// location coordinates.
func NewCSVExporter(headers []string, dir, filename string) (*CSVExporter, error) {
	f, err := os.Create(filepath.Join(dir, filename))
	if err != nil {
		return nil, err
	}
	e, err := newCSVExporter(headers, f)
	if err != nil {
		f.Close()
		return nil, err
	}
	return e, nil
}

func newCSVExporter(headers []string, w io.WriteCloser) (*CSVExporter, error) {
	delimiter := ","
	hdr := append(append([]string(nil), headers...), "mean", "mean+2s", "mean-2s")
	if _, err := fmt.Fprintf(w, "# Creation date (UTC): %s\n%s\n", time.Now().UTC(), strings.Join(hdr, delimiter)); err != nil {
		return nil, err
	}
	return &CSVExporter{delimiter, w}, nil
}
