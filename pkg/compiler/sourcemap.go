package compiler

import (
	"strings"

	"github.com/goccy/go-json"
	"github.com/pkg/errors"
)

// SourceMap is a revision 3 source map with line granularity: each mapped
// generated line has one segment at column 0 pointing at the statement or
// animation command that produced it. Runtime prelude lines are unmapped.
type SourceMap struct {
	Version  int      `json:"version"`
	File     string   `json:"file,omitempty"`
	Sources  []string `json:"sources"`
	Names    []string `json:"names"`
	Mappings string   `json:"mappings"`
}

const base64Digits = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789+/"

// NewSourceMap encodes mappings for a generated file of totalLines lines.
func NewSourceMap(file, source string, mappings []LineMapping, totalLines int) *SourceMap {
	byLine := make(map[int]Position, len(mappings))
	for _, m := range mappings {
		byLine[m.GenLine] = m.Src
	}

	var sb strings.Builder
	prevLine, prevCol := 0, 0
	for line := 1; line <= totalLines; line++ {
		if line > 1 {
			sb.WriteByte(';')
		}
		src, ok := byLine[line]
		if !ok {
			continue
		}
		// Source lines and columns are zero-based in the encoding.
		sl, sc := src.Line-1, src.Column-1
		sb.WriteString(encodeVLQ(0))
		sb.WriteString(encodeVLQ(0))
		sb.WriteString(encodeVLQ(sl - prevLine))
		sb.WriteString(encodeVLQ(sc - prevCol))
		prevLine, prevCol = sl, sc
	}

	return &SourceMap{
		Version:  3,
		File:     file,
		Sources:  []string{source},
		Names:    []string{},
		Mappings: sb.String(),
	}
}

func (m *SourceMap) JSON() (string, error) {
	data, err := json.Marshal(m)
	if err != nil {
		return "", errors.Wrap(err, "encoding source map")
	}
	return string(data), nil
}

// ParseSourceMap decodes a JSON source map.
func ParseSourceMap(data []byte) (*SourceMap, error) {
	var m SourceMap
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, errors.Wrap(err, "decoding source map")
	}
	if m.Version != 3 {
		return nil, errors.Errorf("unsupported source map version %d", m.Version)
	}
	return &m, nil
}

// Lines decodes the mappings into generated line -> source position, both
// 1-based. Only the first segment of each line is considered.
func (m *SourceMap) Lines() (map[int]Position, error) {
	out := make(map[int]Position)
	srcLine, srcCol := 0, 0
	for i, group := range strings.Split(m.Mappings, ";") {
		if group == "" {
			continue
		}
		for j, seg := range strings.Split(group, ",") {
			fields, err := decodeVLQ(seg)
			if err != nil {
				return nil, errors.Wrapf(err, "line %d", i+1)
			}
			if len(fields) < 4 {
				continue
			}
			srcLine += fields[2]
			srcCol += fields[3]
			if j == 0 {
				out[i+1] = Position{Line: srcLine + 1, Column: srcCol + 1}
			}
		}
	}
	return out, nil
}

func encodeVLQ(v int) string {
	n := v << 1
	if v < 0 {
		n = (-v << 1) | 1
	}
	var sb strings.Builder
	for {
		digit := n & 0x1f
		n >>= 5
		if n > 0 {
			digit |= 0x20
		}
		sb.WriteByte(base64Digits[digit])
		if n == 0 {
			return sb.String()
		}
	}
}

func decodeVLQ(seg string) ([]int, error) {
	var out []int
	n, shift := 0, 0
	for i := 0; i < len(seg); i++ {
		digit := strings.IndexByte(base64Digits, seg[i])
		if digit < 0 {
			return nil, errors.Errorf("invalid base64 digit %q", seg[i])
		}
		n |= (digit & 0x1f) << shift
		if digit&0x20 != 0 {
			shift += 5
			continue
		}
		v := n >> 1
		if n&1 == 1 {
			v = -v
		}
		out = append(out, v)
		n, shift = 0, 0
	}
	if shift != 0 {
		return nil, errors.New("truncated VLQ segment")
	}
	return out, nil
}
