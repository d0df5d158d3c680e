package scraper

// Collector accumulates rows for one region in discovery order
type Collector struct {
	region string
	rows   []ListingRow
}

// NewCollector creates an empty collector for region
func NewCollector(region string) *Collector {
	return &Collector{region: region}
}

// Add appends a row
func (c *Collector) Add(row ListingRow) {
	c.rows = append(c.rows, row)
}

// Len returns the number of collected rows
func (c *Collector) Len() int {
	return len(c.rows)
}

// Dataset returns the collected rows as a dataset
func (c *Collector) Dataset() *Dataset {
	rows := make([]ListingRow, len(c.rows))
	copy(rows, c.rows)
	return &Dataset{Region: c.region, Rows: rows}
}
