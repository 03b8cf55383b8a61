package calendar

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/gocarina/gocsv"
)

// CSVSource reads rows from a CSV file with a date,event,currency,impact header.
type CSVSource struct {
	Path string
}

func NewCSVSource(path string) *CSVSource {
	return &CSVSource{Path: path}
}

func (s *CSVSource) Rows(_ context.Context) ([]Row, error) {
	if s.Path == "" {
		return nil, ErrSourceMissing
	}
	f, err := os.Open(s.Path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrSourceMissing, s.Path)
		}
		return nil, fmt.Errorf("open calendar %s: %w", s.Path, err)
	}
	defer f.Close()

	var rows []Row
	if err := gocsv.UnmarshalFile(f, &rows); err != nil {
		return nil, fmt.Errorf("decode calendar %s: %w", s.Path, err)
	}
	return rows, nil
}

// WriteCSV writes rows with the header CSVSource expects.
func WriteCSV(w io.Writer, rows []Row) error {
	if err := gocsv.Marshal(&rows, w); err != nil {
		return fmt.Errorf("encode calendar: %w", err)
	}
	return nil
}
