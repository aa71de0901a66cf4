package reference

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/ppiankov/crisisverify/internal/model"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// reportsKey is the top-level key holding the record list
const reportsKey = "trusted_reports"

// Required record fields, checked in this order
var requiredFields = []string{"event", "location", "details", "status", "confidence"}

// statusAliases are accepted in place of "status"
var statusAliases = []string{"groundTruthStatus", "ground_truth_status"}

// StdinSource is the source name that reads reference data from standard input
const StdinSource = "-"

// Loader loads reference data from files, URLs or standard input
type Loader struct {
	fetcher *Fetcher
	stdin   io.Reader
	logger  *zap.Logger
}

// NewLoader creates a loader using the given reference configuration
func NewLoader(cfg model.ReferenceConfig, logger *zap.Logger) *Loader {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Loader{
		fetcher: NewFetcher(cfg.Timeout, cfg.UserAgent, cfg.MaxBytes, cfg.RespectRobots, cfg.HTTPProxy, cfg.HTTPSProxy, cfg.NoProxy),
		stdin:   os.Stdin,
		logger:  logger,
	}
}

// Load reads and parses reference data from a file path, an http(s) URL, or "-" for stdin
func (l *Loader) Load(ctx context.Context, source string) (*Store, error) {
	var data []byte

	if source == StdinSource {
		store, err := Parse(l.stdin, source)
		if err != nil {
			return nil, err
		}
		l.logger.Debug("reference data loaded from stdin", zap.Int("reports", store.Len()))
		return store, nil
	}

	if isRemote(source) {
		result, err := l.fetcher.FetchWithRetry(ctx, source)
		if err != nil {
			return nil, documentError(source, fmt.Errorf("%w: %v", ErrUnreachable, err))
		}
		data = result.Body
	} else {
		b, err := os.ReadFile(source)
		if err != nil {
			return nil, documentError(source, fmt.Errorf("%w: %v", ErrUnreachable, err))
		}
		data = b
	}

	store, err := ParseBytes(data, source)
	if err != nil {
		return nil, err
	}

	l.logger.Debug("reference data loaded",
		zap.String("source", source),
		zap.Int("reports", store.Len()),
		zap.String("fingerprint", store.Fingerprint()))

	return store, nil
}

// LoadOrEmpty loads reference data, falling back to an empty store on any error.
// The system stays usable without reference data; every verdict is then indeterminate.
func (l *Loader) LoadOrEmpty(ctx context.Context, source string) (*Store, error) {
	store, err := l.Load(ctx, source)
	if err != nil {
		l.logger.Warn("reference data unavailable, continuing with empty store",
			zap.String("source", source),
			zap.Error(err))
		return Empty(), err
	}
	return store, nil
}

// Parse reads a reference document from r
func Parse(r io.Reader, source string) (*Store, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, documentError(source, fmt.Errorf("%w: %v", ErrUnreachable, err))
	}
	return ParseBytes(data, source)
}

// ParseBytes parses a JSON or YAML reference document
func ParseBytes(data []byte, source string) (*Store, error) {
	doc, err := decodeDocument(data)
	if err != nil {
		return nil, documentError(source, fmt.Errorf("%w: %v", ErrMalformed, err))
	}

	root, ok := asMap(doc)
	if !ok {
		return nil, documentError(source, fmt.Errorf("%w: document must be a mapping", ErrMalformed))
	}

	rawList, ok := root[reportsKey]
	if !ok || rawList == nil {
		return nil, &DataLoadError{Source: source, Record: -1, Field: reportsKey, Err: ErrMissingField}
	}

	records, ok := rawList.([]interface{})
	if !ok {
		return nil, &DataLoadError{Source: source, Record: -1, Field: reportsKey, Err: fmt.Errorf("%w: expected a list", ErrMalformed)}
	}

	reports := make([]model.ReferenceReport, 0, len(records))
	for i, rec := range records {
		report, err := parseRecord(source, i, rec)
		if err != nil {
			return nil, err
		}
		reports = append(reports, report)
	}

	return NewStore(source, reports), nil
}

func parseRecord(source string, idx int, rec interface{}) (model.ReferenceReport, error) {
	fields, ok := asMap(rec)
	if !ok {
		return model.ReferenceReport{}, fieldError(source, idx, "", fmt.Errorf("%w: record must be a mapping", ErrMalformed))
	}

	// Fold status aliases onto the canonical key
	if _, ok := fields["status"]; !ok {
		for _, alias := range statusAliases {
			if v, ok := fields[alias]; ok {
				fields["status"] = v
				break
			}
		}
	}

	for _, name := range requiredFields {
		if v, ok := fields[name]; !ok || v == nil {
			err := ErrMissingField
			if name == "status" {
				err = fmt.Errorf("%w (accepted keys: status, %s)", ErrMissingField, strings.Join(statusAliases, ", "))
			}
			return model.ReferenceReport{}, fieldError(source, idx, name, err)
		}
	}

	report := model.ReferenceReport{}
	var err error

	if report.Event, err = scalarString(fields["event"]); err != nil {
		return report, fieldError(source, idx, "event", err)
	}
	if report.Location, err = scalarString(fields["location"]); err != nil {
		return report, fieldError(source, idx, "location", err)
	}
	if report.Details, err = scalarString(fields["details"]); err != nil {
		return report, fieldError(source, idx, "details", err)
	}

	truth, err := parseStatus(fields["status"])
	if err != nil {
		return report, fieldError(source, idx, "status", err)
	}
	report.GroundTruth = truth

	conf, err := parseConfidence(fields["confidence"])
	if err != nil {
		return report, fieldError(source, idx, "confidence", err)
	}
	report.Confidence = conf

	// id is only used for citation; fall back to the 1-based position
	report.ID = strconv.Itoa(idx + 1)
	if raw, ok := fields["id"]; ok && raw != nil {
		id, err := scalarString(raw)
		if err != nil {
			return report, fieldError(source, idx, "id", err)
		}
		if id != "" {
			report.ID = id
		}
	}

	return report, nil
}

// decodeDocument decodes JSON documents with encoding/json and everything else as YAML
func decodeDocument(data []byte) (interface{}, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, errors.New("empty document")
	}

	var doc interface{}
	if trimmed[0] == '{' || trimmed[0] == '[' {
		if err := json.Unmarshal(trimmed, &doc); err != nil {
			return nil, err
		}
		return doc, nil
	}

	if err := yaml.Unmarshal(trimmed, &doc); err != nil {
		return nil, err
	}
	return doc, nil
}

func asMap(v interface{}) (map[string]interface{}, bool) {
	switch m := v.(type) {
	case map[string]interface{}:
		return m, true
	case map[interface{}]interface{}:
		out := make(map[string]interface{}, len(m))
		for k, val := range m {
			out[fmt.Sprint(k)] = val
		}
		return out, true
	default:
		return nil, false
	}
}

func scalarString(v interface{}) (string, error) {
	switch s := v.(type) {
	case string:
		return s, nil
	case int:
		return strconv.Itoa(s), nil
	case int64:
		return strconv.FormatInt(s, 10), nil
	case uint64:
		return strconv.FormatUint(s, 10), nil
	case float64:
		return strconv.FormatFloat(s, 'f', -1, 64), nil
	default:
		return "", fmt.Errorf("%w: expected a scalar, got %T", ErrMalformed, v)
	}
}

// parseStatus accepts the ground truth labels; an unquoted YAML false counts as "false"
func parseStatus(v interface{}) (model.GroundTruth, error) {
	switch s := v.(type) {
	case bool:
		if !s {
			return model.GroundTruthFalse, nil
		}
		return "", fmt.Errorf("%w: boolean true is not a ground truth status", ErrMalformed)
	case string:
		truth, ok := model.ParseGroundTruth(s)
		if !ok {
			return "", fmt.Errorf("%w: unknown status %q (expected confirmed, false or scam)", ErrMalformed, s)
		}
		return truth, nil
	default:
		return "", fmt.Errorf("%w: status must be a string, got %T", ErrMalformed, v)
	}
}

func parseConfidence(v interface{}) (float64, error) {
	var f float64
	switch n := v.(type) {
	case float64:
		f = n
	case int:
		f = float64(n)
	case int64:
		f = float64(n)
	case uint64:
		f = float64(n)
	default:
		return 0, fmt.Errorf("%w: confidence must be a number, got %T", ErrMalformed, v)
	}

	if math.IsNaN(f) || f < 0 || f > 1 {
		return 0, fmt.Errorf("%w: confidence %v outside [0,1]", ErrMalformed, f)
	}
	return f, nil
}

func isRemote(source string) bool {
	lower := strings.ToLower(source)
	return strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://")
}
