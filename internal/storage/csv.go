package storage

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"github.com/maltedev/marketplace-search/internal/models"
)

// CSVSeparator keeps titles with commas in one column without quoting.
const CSVSeparator = ';'

var csvHeader = []string{
	"title",
	"price_dollars",
	"rating_avg",
	"positive_feedback_percentage",
	"nb_items_sold",
	"nb_items_int",
	"item_url",
}

type CSVWriter struct {
	path string
}

func NewCSVWriter(path string) *CSVWriter {
	return &CSVWriter{path: path}
}

// Write replaces the file at the writer's path, creating its directory.
func (w *CSVWriter) Write(records []models.ItemRecord) error {
	if err := os.MkdirAll(filepath.Dir(w.path), 0755); err != nil {
		return fmt.Errorf("failed to create output dir: %w", err)
	}

	file, err := os.Create(w.path)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer file.Close()

	if err := WriteCSV(file, records); err != nil {
		return err
	}
	return file.Close()
}

// WriteCSV encodes records with a header row. Missing values are empty cells.
func WriteCSV(out io.Writer, records []models.ItemRecord) error {
	writer := csv.NewWriter(out)
	writer.Comma = CSVSeparator

	if err := writer.Write(csvHeader); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	for _, r := range records {
		quantity, quantityInt := "", ""
		if r.QuantitySold != nil {
			quantity = r.QuantitySold.String()
			quantityInt = strconv.FormatInt(r.QuantitySold.Int(), 10)
		}
		row := []string{
			r.Title,
			formatOptional(r.PriceDollars, 2),
			formatOptional(r.RatingAverage, 3),
			formatOptional(r.PositiveFeedbackPercentage, 1),
			quantity,
			quantityInt,
			r.ItemURL,
		}
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("failed to write row: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return fmt.Errorf("failed to flush csv: %w", err)
	}
	return nil
}

func formatOptional(v *float64, precision int) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', precision, 64)
}
