package permutation

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func TestGenerate_Inverse(t *testing.T) {
	p := Generate(128, 7)
	if p.Dims() != 128 {
		t.Fatalf("Expected dims 128, got %d", p.Dims())
	}
	for i := 0; i < p.Dims(); i++ {
		if p.Backward[p.Forward[i]] != i {
			t.Fatalf("Backward is not the inverse of Forward at %d", i)
		}
		if p.Forward[p.Backward[i]] != i {
			t.Fatalf("Forward is not the inverse of Backward at %d", i)
		}
	}
}

func TestGenerate_Deterministic(t *testing.T) {
	if !reflect.DeepEqual(Generate(64, 3), Generate(64, 3)) {
		t.Error("Generate must be deterministic for the same seed")
	}
	if reflect.DeepEqual(Generate(64, 3).Forward, Generate(64, 4).Forward) {
		t.Error("Different seeds should give different permutations")
	}
}

func TestSaveLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "perm.yaml")
	p := Generate(32, 11)

	if err := p.Save(path); err != nil {
		t.Fatalf("Save error = %v", err)
	}
	got, err := Load(path)
	if err != nil {
		t.Fatalf("Load error = %v", err)
	}
	if !reflect.DeepEqual(got, p) {
		t.Errorf("Expected %v, got %v", p, got)
	}
}

func TestLoad_Invalid(t *testing.T) {
	dir := t.TempDir()

	if _, err := Load(filepath.Join(dir, "missing.yaml")); err == nil {
		t.Error("Expected error for missing file")
	}

	tests := []struct {
		name    string
		content string
	}{
		{name: "short backward", content: "dimensionality: 3\nforward: [0, 1, 2]\nbackward: [0, 1]\n"},
		{name: "forward entry too large", content: "dimensionality: 3\nforward: [0, 1, 7]\nbackward: [0, 1, 2]\n"},
		{name: "backward entry negative", content: "dimensionality: 3\nforward: [0, 1, 2]\nbackward: [0, -1, 2]\n"},
		{name: "entry equal to dimensionality", content: "dimensionality: 2\nforward: [2, 0]\nbackward: [1, 0]\n"},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			path := filepath.Join(dir, "bad.yaml")
			if err := os.WriteFile(path, []byte(test.content), 0644); err != nil {
				t.Fatal(err)
			}
			if _, err := Load(path); !errors.Is(err, ErrInvalidPair) {
				t.Errorf("Expected ErrInvalidPair, got %v", err)
			}
		})
	}
}
