package audit

import (
	"bytes"
	"encoding/json"
	"maps"
	"math"
	"slices"
	"strings"

	"github.com/rotisserie/eris"
)

var (
	// ErrInvalidFilename is returned for names that do not follow
	// <model>_audit_results_<YYYYMMDD>_<HHMMSS>.json.
	ErrInvalidFilename = eris.New("audit file name does not match pattern")
	// ErrInvalidRecord is returned when an audit file body fails validation
	// or decoding.
	ErrInvalidRecord = eris.New("invalid audit record")
)

type document struct {
	Model     *string         `json:"model"`
	Providers json.RawMessage `json:"providers"`
}

// rawMetric holds every field undecoded so a value of the wrong type only
// loses that field.
type rawMetric struct {
	ExactMatchRate     json.RawMessage `json:"exact_match_rate"`
	AvgProb            json.RawMessage `json:"avg_prob"`
	AvgMargin          json.RawMessage `json:"avg_margin"`
	AvgLogitRank       json.RawMessage `json:"avg_logit_rank"`
	AvgGumbelRank      json.RawMessage `json:"avg_gumbel_rank"`
	InfiniteMarginRate json.RawMessage `json:"infinite_margin_rate"`
	TotalTokens        json.RawMessage `json:"total_tokens"`
	NSequences         json.RawMessage `json:"n_sequences"`
}

func (r rawMetric) normalize() ProviderMetric {
	return ProviderMetric{
		ExactMatchRate:     number(r.ExactMatchRate),
		AvgProb:            number(r.AvgProb),
		AvgMargin:          number(r.AvgMargin),
		AvgLogitRank:       number(r.AvgLogitRank),
		AvgGumbelRank:      number(r.AvgGumbelRank),
		InfiniteMarginRate: number(r.InfiniteMarginRate),
		TotalTokens:        count(number(r.TotalTokens)),
		NSequences:         count(number(r.NSequences)),
	}
}

// number returns the finite JSON number in raw, or nil for anything else
// (null, strings, booleans, objects). Counts are read as floats so "12.0"
// style integers are accepted.
func number(raw json.RawMessage) *float64 {
	var v any
	if len(raw) == 0 || json.Unmarshal(raw, &v) != nil {
		return nil
	}
	f, ok := v.(float64)
	if !ok || !Valid(&f) {
		return nil
	}
	return &f
}

func count(v *float64) *int64 {
	if v == nil {
		return nil
	}
	n := int64(math.Round(*v))
	return &n
}

// ParseRecord turns one fetched audit file into a normalized Record. The
// timestamp always comes from the file name; the model comes from the body
// when it carries a non-empty "model", otherwise from the file name.
func ParseRecord(filename string, body []byte) (Record, error) {
	model, timestamp, ok := ParseFilename(filename)
	if !ok {
		return Record{}, eris.Wrapf(ErrInvalidFilename, "%q", filename)
	}

	body = Sanitize(body)
	if err := validateRecord(body); err != nil {
		return Record{}, eris.Wrapf(ErrInvalidRecord, "%s: %v", filename, err)
	}

	var doc document
	if err := json.Unmarshal(body, &doc); err != nil {
		return Record{}, eris.Wrapf(ErrInvalidRecord, "%s: %v", filename, err)
	}
	providers, endpoints, err := decodeProviders(doc.Providers)
	if err != nil {
		return Record{}, eris.Wrapf(ErrInvalidRecord, "%s: %v", filename, err)
	}

	if doc.Model != nil && strings.TrimSpace(*doc.Model) != "" {
		model = *doc.Model
	}

	return Record{
		Model:     model,
		Timestamp: timestamp,
		Providers: providers,
		Endpoints: endpoints,
		Filename:  filename,
	}, nil
}

// decodeProviders decodes the providers object keeping the key order of the
// document. A repeated key keeps its first position and its last value.
// Entries that are not objects (null included) carry no data and are skipped.
func decodeProviders(raw json.RawMessage) (map[string]ProviderMetric, []string, error) {
	providers := make(map[string]ProviderMetric)
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return providers, nil, nil
	}

	dec := json.NewDecoder(bytes.NewReader(trimmed))
	tok, err := dec.Token()
	if err != nil {
		return nil, nil, err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, nil, eris.New("providers must be an object")
	}

	var endpoints []string
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return nil, nil, err
		}
		name, ok := keyTok.(string)
		if !ok {
			return nil, nil, eris.Errorf("unexpected provider key %v", keyTok)
		}
		var entry json.RawMessage
		if err := dec.Decode(&entry); err != nil {
			return nil, nil, eris.Wrapf(err, "provider %q", name)
		}
		entry = bytes.TrimSpace(entry)
		if len(entry) == 0 || entry[0] != '{' {
			continue
		}
		var metric rawMetric
		if err := json.Unmarshal(entry, &metric); err != nil {
			return nil, nil, eris.Wrapf(err, "provider %q", name)
		}
		if _, seen := providers[name]; !seen {
			endpoints = append(endpoints, name)
		}
		providers[name] = metric.normalize()
	}
	return providers, endpoints, nil
}

func sortedKeys(m map[string]ProviderMetric) []string {
	return slices.Sorted(maps.Keys(m))
}
