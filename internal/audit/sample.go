package audit

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"sync"
)

//go:embed sample_records.json
var sampleRecordsJSON []byte

type sampleDocument struct {
	Model     string          `json:"model"`
	Timestamp string          `json:"timestamp"`
	Providers json.RawMessage `json:"providers"`
}

var sampleRecords = sync.OnceValues(func() ([]Record, error) {
	return decodeSample(sampleRecordsJSON)
})

// SampleRecords returns the built-in dataset used whenever live loading
// fails. The returned slice is a fresh copy; the records themselves are
// shared and must not be mutated.
func SampleRecords() []Record {
	records, err := sampleRecords()
	if err != nil {
		panic(fmt.Sprintf("audit: embedded sample dataset is invalid: %v", err))
	}
	out := make([]Record, len(records))
	copy(out, records)
	return out
}

func decodeSample(data []byte) ([]Record, error) {
	var docs []sampleDocument
	if err := json.Unmarshal(Sanitize(data), &docs); err != nil {
		return nil, err
	}
	records := make([]Record, 0, len(docs))
	for i, doc := range docs {
		if doc.Model == "" || doc.Timestamp == "" {
			return nil, fmt.Errorf("sample record %d is missing model or timestamp", i)
		}
		providers, endpoints, err := decodeProviders(doc.Providers)
		if err != nil {
			return nil, fmt.Errorf("sample record %d: %w", i, err)
		}
		records = append(records, Record{
			Model:     doc.Model,
			Timestamp: doc.Timestamp,
			Providers: providers,
			Endpoints: endpoints,
		})
	}
	return records, nil
}
