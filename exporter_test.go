package gogp

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"gonum.org/v1/gonum/mat"
)

func TestImplementsExporter(t *testing.T) {
	implements := func(Exporter) {}
	implements(new(CSVExporter))
}

func TestCSVExportFail(t *testing.T) {
	_, err := NewCSVExporter([]string{"t"}, "/noNoNoNo/", "temp.csv")
	if err == nil {
		t.Fatal("no issue when trying to create a file in a missing directory")
	}
}

func TestCSVExport(t *testing.T) {
	dir := t.TempDir()
	ce, err := NewCSVExporter([]string{"t"}, dir, "temp.csv")
	if err != nil {
		t.Fatalf("could not create file %s", err)
	}
	pred := Prediction{mean: mat.NewVecDense(2, []float64{1, -1}), covar: mat.NewSymDense(2, []float64{4, 0, 0, 1})}
	if err := ce.Write(column(0, 1), pred); err != nil {
		t.Fatalf("could not write prediction to file %s", err)
	}
	if err := ce.Write(column(0, 1, 2), pred); err == nil {
		t.Fatal("mismatched locations written")
	}
	if err := ce.Close(); err != nil {
		t.Fatalf("could not close file %s", err)
	}
	data, err := os.ReadFile(filepath.Join(dir, "temp.csv"))
	if err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 5 {
		t.Fatalf("unexpected file:\n%s", data)
	}
	if lines[1] != "t,mean,mean+2s,mean-2s" {
		t.Fatalf("unexpected header %s", lines[1])
	}
	if lines[2] != "0.000000,1.000000,5.000000,-3.000000" || lines[3] != "1.000000,-1.000000,1.000000,-3.000000" {
		t.Fatalf("unexpected rows:\n%s\n%s", lines[2], lines[3])
	}
}
