package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"sjsage522/listingscraper/internal/scraper"
	"sjsage522/listingscraper/logger"
	scrapeerrors "sjsage522/listingscraper/pkg/errors"
)

// dateLayout renders the date part of an output file name as MM-DD-YYYY
const dateLayout = "01-02-2006"

// Exporter writes a finished dataset somewhere and returns its location
type Exporter interface {
	Export(ds *scraper.Dataset) (string, error)
}

// CSVExporter writes one CSV file per region under Dir
type CSVExporter struct {
	Dir string
	Now func() time.Time
	// Create opens the output file; nil uses os.Create
	Create func(path string) (io.WriteCloser, error)
}

// NewCSVExporter creates an exporter writing under dir
func NewCSVExporter(dir string) *CSVExporter {
	return &CSVExporter{Dir: dir, Now: time.Now}
}

// Path returns the file a dataset for region is written to today
func (e *CSVExporter) Path(region string) string {
	now := time.Now
	if e.Now != nil {
		now = e.Now
	}
	name := fmt.Sprintf("%s_results_%s.csv", region, now().Format(dateLayout))
	return filepath.Join(e.Dir, name)
}

// Export writes ds with a leading positional index column followed by
// scraper.Columns. An existing file for the same region and date is replaced.
func (e *CSVExporter) Export(ds *scraper.Dataset) (string, error) {
	path := e.Path(ds.Region)

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return "", scrapeerrors.NewExport(ds.Region, "could not create output dir", err)
	}

	create := e.Create
	if create == nil {
		create = func(path string) (io.WriteCloser, error) { return os.Create(path) }
	}

	file, err := create(path)
	if err != nil {
		return "", scrapeerrors.NewExport(ds.Region, "could not create file", err)
	}

	writeErr := writeRecords(file, ds)
	closeErr := file.Close()
	if writeErr != nil {
		return "", scrapeerrors.NewExport(ds.Region, "csv write error", writeErr)
	}
	if closeErr != nil {
		return "", scrapeerrors.NewExport(ds.Region, "close error", closeErr)
	}

	logger.ForExporter().Info().
		Str("region", ds.Region).
		Int("rows", len(ds.Rows)).
		Str("path", path).
		Msg("Dataset exported")

	return path, nil
}

func writeRecords(w io.Writer, ds *scraper.Dataset) error {
	writer := csv.NewWriter(w)

	header := append([]string{""}, scraper.Columns...)
	if err := writer.Write(header); err != nil {
		return err
	}

	for i, row := range ds.Rows {
		record := append([]string{strconv.Itoa(i)}, row.Values()...)
		if err := writer.Write(record); err != nil {
			return err
		}
	}

	writer.Flush()
	return writer.Error()
}

// ReadDataset reads a file written by CSVExporter back into a dataset
func ReadDataset(path, region string) (*scraper.Dataset, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = len(scraper.Columns) + 1

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("%s has no header row", path)
	}

	ds := &scraper.Dataset{Region: region, Rows: make([]scraper.ListingRow, 0, len(records)-1)}
	for _, record := range records[1:] {
		row, err := scraper.RowFromValues(record[1:])
		if err != nil {
			return nil, err
		}
		ds.Rows = append(ds.Rows, row)
	}
	return ds, nil
}
