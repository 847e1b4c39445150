package types

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// BoundingBox is a pixel rectangle: top-left corner plus extent
type BoundingBox struct {
	X int `json:"x"`
	Y int `json:"y"`
	W int `json:"w"`
	H int `json:"h"`
}

// Bottom returns the last row covered by the box
func (b BoundingBox) Bottom() int {
	return b.Y + b.H - 1
}

// Mode selects which tile constants are derived from a bounding box
type Mode string

const (
	ModeAuto  Mode = "auto"
	ModeFloor Mode = "floor"
	ModeWall  Mode = "wall"
)

// Modes lists the accepted analysis modes in display order
func Modes() []Mode {
	return []Mode{ModeAuto, ModeFloor, ModeWall}
}

// ParseMode validates a mode name
func ParseMode(s string) (Mode, error) {
	for _, m := range Modes() {
		if s == string(m) {
			return m, nil
		}
	}
	names := make([]string, 0, len(Modes()))
	for _, m := range Modes() {
		names = append(names, string(m))
	}
	return "", fmt.Errorf("invalid mode %q (choose from %s)", s, strings.Join(names, ", "))
}

// Constant is a single named tile constant
type Constant struct {
	Name  string
	Value int
}

// Constants is an ordered set of derived tile constants.
// Order of insertion is preserved in both text and JSON output.
type Constants struct {
	items []Constant
}

// Set adds or replaces a constant
func (c *Constants) Set(name string, value int) {
	for i := range c.items {
		if c.items[i].Name == name {
			c.items[i].Value = value
			return
		}
	}
	c.items = append(c.items, Constant{Name: name, Value: value})
}

// Get looks up a constant by name
func (c Constants) Get(name string) (int, bool) {
	for _, it := range c.items {
		if it.Name == name {
			return it.Value, true
		}
	}
	return 0, false
}

// Len returns the number of constants
func (c Constants) Len() int {
	return len(c.items)
}

// Items returns a copy of the constants in insertion order
func (c Constants) Items() []Constant {
	out := make([]Constant, len(c.items))
	copy(out, c.items)
	return out
}

// String renders the constants as {NAME: value, ...}
func (c Constants) String() string {
	var sb strings.Builder
	sb.WriteByte('{')
	for i, it := range c.items {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(it.Name)
		sb.WriteString(": ")
		sb.WriteString(strconv.Itoa(it.Value))
	}
	sb.WriteByte('}')
	return sb.String()
}

// MarshalJSON encodes the constants as an object, keeping insertion order
func (c Constants) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, it := range c.items {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(it.Name)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.WriteString(strconv.Itoa(it.Value))
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON decodes an object of integer constants in document order
func (c *Constants) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("constants: expected object, got %v", tok)
	}
	c.items = nil
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		name, _ := tok.(string)
		var v int
		if err := dec.Decode(&v); err != nil {
			return fmt.Errorf("constants: %s: %w", name, err)
		}
		c.Set(name, v)
	}
	_, err = dec.Token()
	return err
}

// AnalysisResult holds everything derived from a single sprite image
type AnalysisResult struct {
	Path         string      `json:"path"`
	CanvasW      int         `json:"canvas_w"`
	CanvasH      int         `json:"canvas_h"`
	BBox         BoundingBox `json:"bbox"`
	ContactYAuto *int        `json:"contact_y_auto"`
	SkirtAuto    *int        `json:"skirt_auto"`
	Constants    Constants   `json:"constants"`
	Notes        string      `json:"notes"`
}
