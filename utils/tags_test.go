package utils

import (
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
)

func TestNormalizeTags(t *testing.T) {
	tests := []struct {
		name   string
		raw    any
		want   Tags
		wantOK bool
	}{
		{name: "nil", raw: nil, want: nil, wantOK: true},
		{name: "mapping", raw: map[string]string{"amenity": "cafe"}, want: Tags{"amenity": "cafe"}, wantOK: true},
		{
			name:   "generic mapping",
			raw:    map[string]any{"ele": 1204.5, "wheelchair": true, "name": "Peak", "gone": nil},
			want:   Tags{"ele": "1204.5", "wheelchair": "true", "name": "Peak"},
			wantOK: true,
		},
		{name: "json object string", raw: `{"tourism":"museum"}`, want: Tags{"tourism": "museum"}, wantOK: true},
		{name: "raw message", raw: json.RawMessage(`{"natural":"beach"}`), want: Tags{"natural": "beach"}, wantOK: true},
		{name: "double encoded", raw: `"{\"historic\":\"castle\"}"`, want: Tags{"historic": "castle"}, wantOK: true},
		{name: "json null", raw: json.RawMessage(`null`), want: nil, wantOK: true},
		{name: "empty string", raw: "  ", want: nil, wantOK: true},
		{name: "invalid json", raw: `{"tourism": museum`, want: nil, wantOK: false},
		{name: "json array", raw: `["a","b"]`, want: nil, wantOK: false},
		{name: "json number", raw: `42`, want: nil, wantOK: false},
		{name: "unsupported type", raw: 42, want: nil, wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var (
				got Tags
				ok  bool
			)
			assert.NotPanics(t, func() { got, ok = NormalizeTags(tt.raw) })
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.wantOK, ok)
		})
	}
}

func TestBuildAddress(t *testing.T) {
	t.Run("full address wins", func(t *testing.T) {
		got := BuildAddress(Tags{"addr:full": "1 Rue de Rivoli, Paris", "addr:street": "ignored"})
		if assert.NotNil(t, got) {
			assert.Equal(t, "1 Rue de Rivoli, Paris", *got)
		}
	})

	t.Run("parts in fixed order", func(t *testing.T) {
		got := BuildAddress(Tags{
			"addr:country":     "FR",
			"addr:city":        "Paris",
			"addr:street":      "Rue de Rivoli",
			"addr:housenumber": "1",
		})
		if assert.NotNil(t, got) {
			assert.Equal(t, "1, Rue de Rivoli, Paris, FR", *got)
		}
	})

	t.Run("no address tags", func(t *testing.T) {
		assert.Nil(t, BuildAddress(Tags{"amenity": "cafe"}))
		assert.Nil(t, BuildAddress(nil))
	})

	t.Run("malformed tags yield no address", func(t *testing.T) {
		tags, _ := NormalizeTags(`not json`)
		assert.Nil(t, BuildAddress(tags))
	})
}
