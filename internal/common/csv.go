// Package common provides the CSV rendering of records shared by export and import.
package common

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"fjacquet/expense-manager/internal/fileutils"
	"fjacquet/expense-manager/internal/ledgererror"
	"fjacquet/expense-manager/internal/logging"
	"fjacquet/expense-manager/internal/models"
	"fjacquet/expense-manager/internal/validation"

	"github.com/gocarina/gocsv"
	"github.com/shopspring/decimal"
)

// DefaultDelimiter separates CSV fields unless configured otherwise.
const DefaultDelimiter = ','

// RecordRow is the CSV column layout of a record.
type RecordRow struct {
	ID                  string `csv:"id"`
	Timestamp           string `csv:"timestamp"`
	Kind                string `csv:"kind"`
	Category            string `csv:"category"`
	Amount              string `csv:"amount"`
	Note                string `csv:"note"`
	OverconsumptionMark string `csv:"overconsumption_mark"`
}

// NewRecordRow converts a record to its CSV row. Amounts keep full precision.
func NewRecordRow(r models.Record) RecordRow {
	return RecordRow{
		ID:                  r.ID,
		Timestamp:           r.Timestamp,
		Kind:                string(r.Kind),
		Category:            r.Category,
		Amount:              decimal.NewFromFloat(r.Amount).String(),
		Note:                r.Note,
		OverconsumptionMark: strconv.FormatBool(r.OverconsumptionMark),
	}
}

// Record converts the row back into a record. Failures are *ledgererror.ParseError
// naming the offending column.
func (row RecordRow) Record(source string) (models.Record, error) {
	amount, err := validation.ParseAmount("amount", row.Amount)
	if err != nil {
		return models.Record{}, &ledgererror.ParseError{Source: source, Field: "amount", Value: row.Amount, Err: err}
	}
	kind, err := models.ParseKind(row.Kind)
	if err != nil {
		return models.Record{}, &ledgererror.ParseError{Source: source, Field: "kind", Value: row.Kind, Err: err}
	}
	timestamp, err := validation.CanonicalTimestamp("timestamp", row.Timestamp)
	if err != nil {
		return models.Record{}, &ledgererror.ParseError{Source: source, Field: "timestamp", Value: row.Timestamp, Err: err}
	}
	mark := false
	if row.OverconsumptionMark != "" {
		mark, err = strconv.ParseBool(row.OverconsumptionMark)
		if err != nil {
			return models.Record{}, &ledgererror.ParseError{
				Source: source, Field: "overconsumption_mark", Value: row.OverconsumptionMark, Err: err,
			}
		}
	}

	return models.Record{
		ID:                  row.ID,
		Amount:              amount,
		Kind:                kind,
		Category:            row.Category,
		Timestamp:           timestamp,
		Note:                row.Note,
		OverconsumptionMark: mark,
	}, nil
}

// CSVCodec reads and writes records as delimited text.
type CSVCodec struct {
	delimiter rune
	logger    logging.Logger
}

// NewCSVCodec creates a codec using delimiter; zero means DefaultDelimiter.
func NewCSVCodec(delimiter rune, logger logging.Logger) *CSVCodec {
	if delimiter == 0 {
		delimiter = DefaultDelimiter
	}
	if logger == nil {
		logger = logging.Nop()
	}
	return &CSVCodec{delimiter: delimiter, logger: logger}
}

// WriteRecords writes a header line and one row per record.
func (c *CSVCodec) WriteRecords(w io.Writer, records []models.Record) error {
	rows := make([]RecordRow, 0, len(records))
	for _, r := range records {
		rows = append(rows, NewRecordRow(r))
	}

	csvWriter := csv.NewWriter(w)
	csvWriter.Comma = c.delimiter
	if err := gocsv.MarshalCSV(rows, gocsv.NewSafeCSVWriter(csvWriter)); err != nil {
		return fmt.Errorf("error writing CSV data: %w", err)
	}
	csvWriter.Flush()
	return csvWriter.Error()
}

// ReadRecords parses rows written by WriteRecords. source names the input in
// errors. A row that does not convert aborts the whole read.
func (c *CSVCodec) ReadRecords(r io.Reader, source string) ([]models.Record, error) {
	csvReader := csv.NewReader(r)
	csvReader.Comma = c.delimiter

	var rows []RecordRow
	if err := gocsv.UnmarshalCSV(csvReader, &rows); err != nil {
		return nil, fmt.Errorf("error parsing CSV file: %w", err)
	}

	records := make([]models.Record, 0, len(rows))
	for i, row := range rows {
		rec, err := row.Record(fmt.Sprintf("%s:%d", source, i+2))
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, nil
}

// WriteRecordsFile writes records to csvFile, creating its directory.
func (c *CSVCodec) WriteRecordsFile(csvFile string, records []models.Record) error {
	c.logger.Info("Writing records to CSV file",
		logging.F(logging.FieldFile, csvFile),
		logging.F(logging.FieldCount, len(records)))

	if err := fileutils.EnsureDirectoryExists(filepath.Dir(csvFile)); err != nil {
		return fmt.Errorf("error creating directory: %w", err)
	}

	file, err := os.OpenFile(csvFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, models.PermissionExportFile)
	if err != nil {
		c.logger.WithError(err).Error("Failed to create CSV file")
		return fmt.Errorf("error creating CSV file: %w", err)
	}
	defer func() {
		if err := file.Close(); err != nil {
			c.logger.WithError(err).Warn("Failed to close file")
		}
	}()

	if err := c.WriteRecords(file, records); err != nil {
		c.logger.WithError(err).Error("Failed to marshal records to CSV")
		return err
	}
	return nil
}

// ReadRecordsFile reads records from csvFile.
func (c *CSVCodec) ReadRecordsFile(csvFile string) ([]models.Record, error) {
	c.logger.Info("Reading CSV file", logging.F(logging.FieldFile, csvFile))

	file, err := os.Open(csvFile)
	if err != nil {
		c.logger.WithError(err).Error("Failed to open CSV file")
		return nil, fmt.Errorf("error opening CSV file: %w", err)
	}
	defer func() {
		if err := file.Close(); err != nil {
			c.logger.WithError(err).Warn("Failed to close file")
		}
	}()

	records, err := c.ReadRecords(file, filepath.Base(csvFile))
	if err != nil {
		c.logger.WithError(err).Error("Failed to parse CSV file")
		return nil, err
	}

	c.logger.Info("Successfully read CSV data", logging.F(logging.FieldCount, len(records)))
	return records, nil
}
