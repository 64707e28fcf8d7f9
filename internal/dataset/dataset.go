// Package dataset loads the immutable base training dataset.
package dataset

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"

	"github.com/DHYEYPATL/CalcBERT-by-Finovators/internal/common"
	"github.com/DHYEYPATL/CalcBERT-by-Finovators/internal/model"
)

// Expected CSV header columns.
const (
	textColumn  = "transaction_text"
	labelColumn = "category"
)

// Load reads training samples from a CSV file with transaction_text and
// category columns.
func Load(path string) ([]model.TrainingSample, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", common.ErrMissingDataset, path)
		}
		return nil, fmt.Errorf("failed to open dataset: %w", err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read dataset header: %w", err)
	}

	textIdx, labelIdx := -1, -1
	for i, col := range header {
		switch col {
		case textColumn:
			textIdx = i
		case labelColumn:
			labelIdx = i
		}
	}
	if textIdx < 0 || labelIdx < 0 {
		return nil, fmt.Errorf("dataset %s must have %q and %q columns", path, textColumn, labelColumn)
	}

	var samples []model.TrainingSample
	for line := 2; ; line++ {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read dataset line %d: %w", line, err)
		}
		if textIdx >= len(record) || labelIdx >= len(record) {
			return nil, fmt.Errorf("dataset line %d has too few columns", line)
		}
		samples = append(samples, model.TrainingSample{
			Text:  record[textIdx],
			Label: record[labelIdx],
		})
	}

	if len(samples) == 0 {
		return nil, fmt.Errorf("%w: dataset %s has no rows", common.ErrNoSamples, path)
	}
	return samples, nil
}
