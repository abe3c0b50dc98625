package registry

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"

	"go.uber.org/zap"

	"clusterScope/internal/model"
)

// LoadCSV reads exchange entries from a CSV file. The file must have an
// address column ("Address" or "address"); "Label" and "Exchange Name"
// columns are optional, preferred in that order when both are present.
// Rows with unparseable addresses are skipped with a warning, never fatal.
func LoadCSV(path string, logger *zap.Logger) ([]Entry, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open registry csv: %w", err)
	}
	defer file.Close()

	return parseCSV(file, logger)
}

func parseCSV(r io.Reader, logger *zap.Logger) ([]Entry, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("read registry header: %w", err)
	}

	addressCol := findColumn(header, "Address", "address")
	if addressCol < 0 {
		return nil, fmt.Errorf("registry csv has no address column")
	}
	labelCol := findColumn(header, "Label", "label")
	nameCol := findColumn(header, "Exchange Name", "exchange name")

	var entries []Entry
	for line := 2; ; line++ {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			logger.Warn("skip unreadable registry row", zap.Int("line", line), zap.Error(err))
			continue
		}

		addr, err := model.NormalizeAddress(field(row, addressCol))
		if err != nil {
			logger.Warn("skip registry row with bad address",
				zap.Int("line", line),
				zap.String("address", field(row, addressCol)),
			)
			continue
		}

		label := field(row, labelCol)
		if label == "" {
			label = field(row, nameCol)
		}
		entries = append(entries, Entry{Address: addr, Label: label})
	}

	return entries, nil
}

func findColumn(header []string, names ...string) int {
	for i, col := range header {
		for _, name := range names {
			if strings.EqualFold(strings.TrimSpace(col), name) {
				return i
			}
		}
	}
	return -1
}

func field(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}
