// Package extract reads the flat delimited review extract row by row.
package extract

import (
	"encoding/csv"
	"fmt"
	"io"

	"place_pulse/internal/domain"
)

// Columns maps the extract's header names to record fields. The zero value
// is not useful; start from DefaultColumns and override per file.
type Columns struct {
	Name       string `yaml:"name"`
	Categories string `yaml:"categories"`
	Address    string `yaml:"address"`
	City       string `yaml:"city"`
	Province   string `yaml:"province"`
	Country    string `yaml:"country"`
	PostalCode string `yaml:"postal_code"`
	Latitude   string `yaml:"latitude"`
	Longitude  string `yaml:"longitude"`

	ReviewDate   string `yaml:"review_date"`
	Rating       string `yaml:"rating"`
	Title        string `yaml:"title"`
	Text         string `yaml:"text"`
	Username     string `yaml:"username"`
	UserCity     string `yaml:"user_city"`
	UserProvince string `yaml:"user_province"`
}

// DefaultColumns matches the published dataset's header row.
func DefaultColumns() Columns {
	return Columns{
		Name:       "name",
		Categories: "categories",
		Address:    "address",
		City:       "city",
		Province:   "province",
		Country:    "country",
		PostalCode: "postalCode",
		Latitude:   "latitude",
		Longitude:  "longitude",

		ReviewDate:   "reviews.date",
		Rating:       "reviews.rating",
		Title:        "reviews.title",
		Text:         "reviews.text",
		Username:     "reviews.username",
		UserCity:     "reviews.userCity",
		UserProvince: "reviews.userProvince",
	}
}

// WithDefaults fills every unset mapping from DefaultColumns, so a partial
// override renames only the columns it names.
func (c Columns) WithDefaults() Columns {
	def := DefaultColumns()
	pick := func(v, d string) string {
		if v != "" {
			return v
		}
		return d
	}
	return Columns{
		Name:       pick(c.Name, def.Name),
		Categories: pick(c.Categories, def.Categories),
		Address:    pick(c.Address, def.Address),
		City:       pick(c.City, def.City),
		Province:   pick(c.Province, def.Province),
		Country:    pick(c.Country, def.Country),
		PostalCode: pick(c.PostalCode, def.PostalCode),
		Latitude:   pick(c.Latitude, def.Latitude),
		Longitude:  pick(c.Longitude, def.Longitude),

		ReviewDate:   pick(c.ReviewDate, def.ReviewDate),
		Rating:       pick(c.Rating, def.Rating),
		Title:        pick(c.Title, def.Title),
		Text:         pick(c.Text, def.Text),
		Username:     pick(c.Username, def.Username),
		UserCity:     pick(c.UserCity, def.UserCity),
		UserProvince: pick(c.UserProvince, def.UserProvince),
	}
}

// Reader implements domain.RowReader over a CSV stream. The header row is
// consumed on construction; columns absent from the header yield empty
// fields and degrade to null in the normalizer.
type Reader struct {
	cr   *csv.Reader
	cols Columns
	idx  map[string]int
}

func NewReader(r io.Reader, cols Columns) (*Reader, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1 // ragged rows tolerated; missing cells read as empty

	header, err := cr.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("extract is empty")
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	idx := make(map[string]int, len(header))
	for i, h := range header {
		idx[h] = i
	}
	if _, ok := idx[cols.Name]; !ok {
		return nil, fmt.Errorf("extract has no %q column", cols.Name)
	}
	return &Reader{cr: cr, cols: cols, idx: idx}, nil
}

// Next returns the next row, or io.EOF after the last one.
func (r *Reader) Next() (domain.SourceRow, error) {
	rec, err := r.cr.Read()
	if err != nil {
		return domain.SourceRow{}, err
	}
	at := func(col string) string {
		i, ok := r.idx[col]
		if !ok || i >= len(rec) {
			return ""
		}
		return rec[i]
	}
	return domain.SourceRow{
		Name:       at(r.cols.Name),
		Categories: at(r.cols.Categories),
		Address:    at(r.cols.Address),
		City:       at(r.cols.City),
		Province:   at(r.cols.Province),
		Country:    at(r.cols.Country),
		PostalCode: at(r.cols.PostalCode),
		Latitude:   at(r.cols.Latitude),
		Longitude:  at(r.cols.Longitude),

		ReviewDate:   at(r.cols.ReviewDate),
		Rating:       at(r.cols.Rating),
		Title:        at(r.cols.Title),
		Text:         at(r.cols.Text),
		Username:     at(r.cols.Username),
		UserCity:     at(r.cols.UserCity),
		UserProvince: at(r.cols.UserProvince),
	}, nil
}
