package compiler

import (
	"reflect"
	"testing"
)

func TestVLQ(t *testing.T) {
	tests := []struct {
		value   int
		encoded string
	}{
		{0, "A"},
		{1, "C"},
		{-1, "D"},
		{15, "e"},
		{16, "gB"},
		{-16, "hB"},
		{1000, "w+B"},
	}
	for _, tt := range tests {
		if got := encodeVLQ(tt.value); got != tt.encoded {
			t.Errorf("encodeVLQ(%d) = %q, want %q", tt.value, got, tt.encoded)
		}
		decoded, err := decodeVLQ(tt.encoded)
		if err != nil {
			t.Errorf("decodeVLQ(%q): %v", tt.encoded, err)
			continue
		}
		if !reflect.DeepEqual(decoded, []int{tt.value}) {
			t.Errorf("decodeVLQ(%q) = %v, want [%d]", tt.encoded, decoded, tt.value)
		}
	}
}

func TestDecodeVLQErrors(t *testing.T) {
	if _, err := decodeVLQ("g"); err == nil {
		t.Error("truncated segment decoded without error")
	}
	if _, err := decodeVLQ("A!"); err == nil {
		t.Error("invalid digit decoded without error")
	}
}

func TestNewSourceMap(t *testing.T) {
	mappings := []LineMapping{
		{GenLine: 2, Src: Position{Line: 1, Column: 1}},
		{GenLine: 3, Src: Position{Line: 1, Column: 1}},
		{GenLine: 5, Src: Position{Line: 4, Column: 3}},
	}
	sm := NewSourceMap("out.js", "in.mflow", mappings, 6)

	if sm.Mappings != ";AAAA;AAAA;;AAGE;" {
		t.Errorf("mappings = %q", sm.Mappings)
	}
	lines, err := sm.Lines()
	if err != nil {
		t.Fatal(err)
	}
	expected := map[int]Position{
		2: {Line: 1, Column: 1},
		3: {Line: 1, Column: 1},
		5: {Line: 4, Column: 3},
	}
	if !reflect.DeepEqual(lines, expected) {
		t.Errorf("lines = %v, want %v", lines, expected)
	}
}

func TestParseSourceMapRejectsOtherVersions(t *testing.T) {
	if _, err := ParseSourceMap([]byte(`{"version":2,"sources":[],"names":[],"mappings":""}`)); err == nil {
		t.Error("version 2 accepted")
	}
	if _, err := ParseSourceMap([]byte(`not json`)); err == nil {
		t.Error("garbage accepted")
	}
}
