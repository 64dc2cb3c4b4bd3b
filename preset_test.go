package main

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/adrobotics/audacity/envelope"
)

func TestPresetRoundTrip(t *testing.T) {
	e := envelope.New(true, 0.001, 10, 1)
	e.SetTrackLen(10)
	e.SetOffset(2)
	e.InsertOrReplace(0, 0.1)
	e.InsertOrReplace(6, 2)
	e.InsertOrReplace(10, 0.5)

	path := filepath.Join(t.TempDir(), "preset.yaml")
	if err := savePreset(path, e); err != nil {
		t.Fatal(err)
	}
	loaded, err := loadPreset(path)
	if err != nil {
		t.Fatal(err)
	}

	if want, got := e.Logarithmic(), loaded.Logarithmic(); want != got {
		t.Errorf("mode: want %v, got %v", want, got)
	}
	if want, got := e.TrackLen(), loaded.TrackLen(); want != got {
		t.Errorf("span: want %v, got %v", want, got)
	}
	if want, got := e.Offset(), loaded.Offset(); want != got {
		t.Errorf("offset: want %v, got %v", want, got)
	}
	if want, got := e.Len(), loaded.Len(); want != got {
		t.Fatalf("point count: want %v, got %v", want, got)
	}
	for tt := 2.0; tt <= 12; tt += 0.25 {
		if want, got := e.Value(tt), loaded.Value(tt); math.Abs(want-got) > 1e-12 {
			t.Errorf("value at %v: want %v, got %v", tt, want, got)
		}
	}
}

func TestLoadPresetRejectsBadData(t *testing.T) {
	dir := t.TempDir()
	bad := map[string]string{
		"range":  "min: 1\nmax: 1\nlength: 10\n",
		"order":  "min: 0\nmax: 1\nlength: 10\npoints: [{t: 5, v: 1}, {t: 2, v: 1}]\n",
		"length": "min: 0\nmax: 1\nlength: -1\n",
		"syntax": "{not yaml",
	}
	for name, data := range bad {
		path := filepath.Join(dir, name+".yaml")
		if err := os.WriteFile(path, []byte(data), 0644); err != nil {
			t.Fatal(err)
		}
		if _, err := loadPreset(path); err == nil {
			t.Errorf("%s: expected an error", name)
		}
	}
}
