package snapshot

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDecode_HostPayload(t *testing.T) {
	payload := `{"dataViews":[{
		"categorical":{
			"categories":[
				{"source":{"displayName":"Recruit"},"values":["Sourced",null]},
				{"source":{"displayName":"Develop"},"values":[null,"Onboard#1"]},
				{"source":{"displayName":"Launch"},"values":[null,null]},
				{"source":{"displayName":"Grow"},"values":[null,null]}
			],
			"values":[{"source":{"displayName":"Metric"},"values":[12,7]}]
		},
		"metadata":{"columns":[{"displayName":"Recruit"}]}
	}]}`

	snap, err := Decode(strings.NewReader(payload))
	if err != nil {
		t.Fatalf("Decode error: %v", err)
	}
	if len(snap.DataViews) != 1 {
		t.Fatalf("expected 1 data view, got %d", len(snap.DataViews))
	}
	cat := snap.DataViews[0].Categorical
	if len(cat.Categories) != 4 {
		t.Fatalf("expected 4 categories, got %d", len(cat.Categories))
	}
	if got, ok := cat.Categories[0].Label(0); !ok || got != "Sourced" {
		t.Errorf("recruit[0] = %q,%v; want Sourced,true", got, ok)
	}
	if _, ok := cat.Categories[0].Label(1); ok {
		t.Errorf("recruit[1] should be null")
	}
	if got := cat.Values[0].At(1); got != 7 {
		t.Errorf("metric[1] = %v, want 7", got)
	}
}

func TestDecode_FlatRows(t *testing.T) {
	payload := `{"rows":[
		{"recruit":"Sourced","metric":12},
		{"develop":"Onboard#1","metric":7}
	]}`

	snap, err := Decode(strings.NewReader(payload))
	if err != nil {
		t.Fatalf("Decode error: %v", err)
	}
	dv := snap.DataViews[0]
	if dv.Metadata == nil {
		t.Fatal("flat rows should produce metadata")
	}
	if got := dv.Categorical.Values[0].Len(); got != 2 {
		t.Fatalf("metric len = %d, want 2", got)
	}
	if got, ok := dv.Categorical.Categories[1].Label(1); !ok || got != "Onboard#1" {
		t.Errorf("develop[1] = %q,%v", got, ok)
	}
}

func TestDecode_Empty(t *testing.T) {
	snap, err := Decode(strings.NewReader("  \n"))
	if err != nil {
		t.Fatalf("Decode error: %v", err)
	}
	if len(snap.DataViews) != 0 {
		t.Errorf("expected no data views, got %d", len(snap.DataViews))
	}
}

func TestDecode_Malformed(t *testing.T) {
	if _, err := Decode(strings.NewReader("{not json")); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestEncodeRoundTripThroughFile(t *testing.T) {
	snap := FromRows([]Row{
		{Labels: [4]Cell{Str("Sourced"), nil, nil, nil}, Metric: Num(12)},
	})

	var buf bytes.Buffer
	if err := Encode(&buf, snap); err != nil {
		t.Fatalf("Encode error: %v", err)
	}

	path := filepath.Join(t.TempDir(), "snap.json")
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	loaded, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile error: %v", err)
	}
	got, ok := loaded.DataViews[0].Categorical.Categories[0].Label(0)
	if !ok || got != "Sourced" {
		t.Errorf("label = %q,%v", got, ok)
	}
}

func TestLoadFile_Missing(t *testing.T) {
	if _, err := LoadFile(filepath.Join(t.TempDir(), "nope.json")); err == nil {
		t.Fatal("expected error for missing file")
	}
}
