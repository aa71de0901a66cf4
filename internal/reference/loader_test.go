package reference

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ppiankov/crisisverify/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleYAML = `
trusted_reports:
  - id: R-1
    event: Flooding
    location: Sector 4
    details: Water levels dangerous
    status: confirmed
    confidence: 0.98
  - id: 2
    event: Bridge collapse
    location: Harbor district
    details: Structural inspection found no damage
    status: false
    confidence: 0.9
  - event: Free evacuation buses
    location: Downtown
    details: Payment requested by phone
    groundTruthStatus: scam
    confidence: 1
`

func testLoader() *Loader {
	cfg := model.DefaultConfig().Reference
	cfg.RespectRobots = false
	return NewLoader(cfg, nil)
}

func TestParseBytes_YAML(t *testing.T) {
	store, err := ParseBytes([]byte(sampleYAML), "sample.yaml")
	require.NoError(t, err)
	require.Equal(t, 3, store.Len())

	reports := store.Reports()
	assert.Equal(t, "R-1", reports[0].ID)
	assert.Equal(t, model.GroundTruthConfirmed, reports[0].GroundTruth)
	assert.Equal(t, 0.98, reports[0].Confidence)

	assert.Equal(t, "2", reports[1].ID)
	assert.Equal(t, model.GroundTruthFalse, reports[1].GroundTruth, "unquoted YAML false is the false ground truth")

	assert.Equal(t, "3", reports[2].ID, "missing id falls back to 1-based position")
	assert.Equal(t, model.GroundTruthScam, reports[2].GroundTruth)
	assert.Equal(t, 1.0, reports[2].Confidence)
}

func TestParseBytes_JSON(t *testing.T) {
	store, err := ParseBytes([]byte(sampleJSON), "data.json")
	require.NoError(t, err)
	require.Equal(t, 1, store.Len())

	r := store.Reports()[0]
	assert.Equal(t, "101", r.ID)
	assert.Equal(t, "Flooding", r.Event)
	assert.Equal(t, "flooding sector 4 water levels dangerous", r.Content())
}

func TestParseBytes_MissingFields(t *testing.T) {
	base := map[string]string{
		"event":      `"Flooding"`,
		"location":   `"Sector 4"`,
		"details":    `"Water"`,
		"status":     `"confirmed"`,
		"confidence": `0.5`,
	}

	for _, missing := range requiredFields {
		t.Run(missing, func(t *testing.T) {
			var parts []string
			for k, v := range base {
				if k != missing {
					parts = append(parts, fmt.Sprintf("%q:%s", k, v))
				}
			}
			doc := `{"trusted_reports":[{` + strings.Join(parts, ",") + `}]}`

			_, err := ParseBytes([]byte(doc), "data.json")
			require.Error(t, err)

			var loadErr *DataLoadError
			require.True(t, errors.As(err, &loadErr))
			assert.Equal(t, missing, loadErr.Field)
			assert.Equal(t, 0, loadErr.Record)
			assert.ErrorIs(t, err, ErrMissingField)
			assert.Contains(t, err.Error(), missing)
		})
	}
}

func TestParseBytes_MissingStatusNamesAliases(t *testing.T) {
	doc := `{"trusted_reports":[{"event":"e","location":"l","details":"d","confidence":0.5}]}`

	_, err := ParseBytes([]byte(doc), "data.json")
	require.ErrorIs(t, err, ErrMissingField)
	assert.Contains(t, err.Error(), `field "status"`)
	assert.Contains(t, err.Error(), "groundTruthStatus")
	assert.Contains(t, err.Error(), "ground_truth_status")
}

func TestParseBytes_Malformed(t *testing.T) {
	tests := []struct {
		name  string
		doc   string
		field string
	}{
		{"not a document", `{{{`, ""},
		{"empty", ``, ""},
		{"list at top level", `[1,2,3]`, ""},
		{"reports not a list", `{"trusted_reports": {"a": 1}}`, reportsKey},
		{"unknown status", `{"trusted_reports":[{"event":"e","location":"l","details":"d","status":"rumour","confidence":0.5}]}`, "status"},
		{"confidence above one", `{"trusted_reports":[{"event":"e","location":"l","details":"d","status":"scam","confidence":1.5}]}`, "confidence"},
		{"confidence as text", `{"trusted_reports":[{"event":"e","location":"l","details":"d","status":"scam","confidence":"high"}]}`, "confidence"},
		{"event as object", `{"trusted_reports":[{"event":{"x":1},"location":"l","details":"d","status":"scam","confidence":0.1}]}`, "event"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseBytes([]byte(tt.doc), "bad.json")
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrMalformed)

			var loadErr *DataLoadError
			require.True(t, errors.As(err, &loadErr))
			assert.Equal(t, tt.field, loadErr.Field)
		})
	}
}

func TestParseBytes_MissingReportsKey(t *testing.T) {
	_, err := ParseBytes([]byte(`{"reports": []}`), "data.json")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrMissingField)
}

func TestParseBytes_EmptyList(t *testing.T) {
	store, err := ParseBytes([]byte(`{"trusted_reports": []}`), "data.json")
	require.NoError(t, err)
	assert.Equal(t, 0, store.Len())
}

func TestLoader_LoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sampleYAML), 0644))

	store, err := testLoader().Load(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, 3, store.Len())
	assert.Equal(t, path, store.Source())
}

func TestLoader_LoadStdin(t *testing.T) {
	loader := testLoader()
	loader.stdin = strings.NewReader(sampleYAML)

	store, err := loader.Load(context.Background(), StdinSource)
	require.NoError(t, err)
	assert.Equal(t, 3, store.Len())
	assert.Equal(t, StdinSource, store.Source())
}

func TestLoader_LoadStdinMalformed(t *testing.T) {
	loader := testLoader()
	loader.stdin = strings.NewReader(`{"trusted_reports": [`)

	_, err := loader.Load(context.Background(), StdinSource)
	require.ErrorIs(t, err, ErrMalformed)
}

func TestLoader_LoadURL(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = fmt.Fprint(w, sampleJSON)
	}))
	defer server.Close()

	store, err := testLoader().Load(context.Background(), server.URL+"/data.json")
	require.NoError(t, err)
	assert.Equal(t, 1, store.Len())
}

func TestLoader_Unreachable(t *testing.T) {
	_, err := testLoader().Load(context.Background(), filepath.Join(t.TempDir(), "missing.json"))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnreachable)

	var loadErr *DataLoadError
	require.True(t, errors.As(err, &loadErr))
	assert.Equal(t, -1, loadErr.Record)
}

func TestLoader_LoadOrEmpty(t *testing.T) {
	store, err := testLoader().LoadOrEmpty(context.Background(), filepath.Join(t.TempDir(), "missing.json"))
	require.Error(t, err)
	require.NotNil(t, store)
	assert.Equal(t, 0, store.Len())
}

func TestStore_Immutable(t *testing.T) {
	reports := []model.ReferenceReport{{ID: "a", Event: "Fire"}}
	store := NewStore("mem", reports)

	reports[0].Event = "changed"
	got := store.Reports()
	assert.Equal(t, "Fire", got[0].Event, "store must not alias the input slice")

	got[0].Event = "changed again"
	assert.Equal(t, "Fire", store.Reports()[0].Event, "store must not expose its backing slice")
}

func TestStore_Fingerprint(t *testing.T) {
	a := NewStore("a", []model.ReferenceReport{{ID: "1", Event: "Fire"}})
	b := NewStore("b", []model.ReferenceReport{{ID: "1", Event: "Fire"}})
	c := NewStore("c", []model.ReferenceReport{{ID: "1", Event: "Flood"}})

	assert.Equal(t, a.Fingerprint(), b.Fingerprint())
	assert.NotEqual(t, a.Fingerprint(), c.Fingerprint())
	assert.NotEmpty(t, Empty().Fingerprint())
}
