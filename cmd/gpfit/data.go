package main

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
)

// readSamples reads a t,y CSV file. A first line which does not parse is a header.
// Lines starting with # are comments.
func readSamples(name string) (times, values []float64, err error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, nil, err
	}
	defer f.Close()
	r := csv.NewReader(bufio.NewReader(f))
	r.Comment = '#'
	r.FieldsPerRecord = -1
	for line := 1; ; line++ {
		record, err := r.Read()
		if err == io.EOF {
			break
		} else if err != nil {
			return nil, nil, err
		}
		if len(record) < 2 {
			return nil, nil, fmt.Errorf("%s:%d: expected t,y", name, line)
		}
		t, terr := strconv.ParseFloat(record[0], 64)
		y, yerr := strconv.ParseFloat(record[1], 64)
		if terr != nil || yerr != nil {
			if line == 1 {
				continue
			}
			return nil, nil, fmt.Errorf("%s:%d: could not parse %v", name, line, record)
		}
		times = append(times, t)
		values = append(values, y)
	}
	if len(times) == 0 {
		return nil, nil, fmt.Errorf("%s: no samples", name)
	}
	return times, values, nil
}
