package models

import "fmt"

// PredictionType discriminates the prediction variants an analyzer may return.
type PredictionType string

const (
	PredictionObjectDetection    PredictionType = "object_detection"
	PredictionClassification     PredictionType = "classification"
	PredictionCaption            PredictionType = "caption"
	PredictionColorAnalysis      PredictionType = "color_analysis"
	PredictionFaceDetection      PredictionType = "face_detection"
	PredictionContentModeration  PredictionType = "content_moderation"
	PredictionTextExtraction     PredictionType = "text_extraction"
	PredictionMetadataExtraction PredictionType = "metadata_extraction"
)

// knownPredictionTypes is the closed set accepted at the analyzer-client boundary.
var knownPredictionTypes = map[PredictionType]bool{
	PredictionObjectDetection:    true,
	PredictionClassification:     true,
	PredictionCaption:            true,
	PredictionColorAnalysis:      true,
	PredictionFaceDetection:      true,
	PredictionContentModeration:  true,
	PredictionTextExtraction:     true,
	PredictionMetadataExtraction: true,
}

// Valid reports whether t is one of the known prediction type tags.
func (t PredictionType) Valid() bool {
	return knownPredictionTypes[t]
}

// Spatial reports whether predictions of this type may carry a bounding box.
func (t PredictionType) Spatial() bool {
	return t == PredictionObjectDetection || t == PredictionFaceDetection
}

// BBox is an axis-aligned bounding box in integer pixels.
type BBox struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Area returns the box area in square pixels.
func (b BBox) Area() int {
	return b.Width * b.Height
}

// Union returns the smallest axis-aligned box covering both b and other.
func (b BBox) Union(other BBox) BBox {
	x1 := min(b.X, other.X)
	y1 := min(b.Y, other.Y)
	x2 := max(b.X+b.Width, other.X+other.Width)
	y2 := max(b.Y+b.Height, other.Y+other.Height)
	return BBox{X: x1, Y: y1, Width: x2 - x1, Height: y2 - y1}
}

// IoU returns the intersection-over-union of two boxes, in [0,1].
func (b BBox) IoU(other BBox) float64 {
	ix1 := max(b.X, other.X)
	iy1 := max(b.Y, other.Y)
	ix2 := min(b.X+b.Width, other.X+other.Width)
	iy2 := min(b.Y+b.Height, other.Y+other.Height)

	iw := ix2 - ix1
	ih := iy2 - iy1
	if iw <= 0 || ih <= 0 {
		return 0
	}
	inter := iw * ih
	union := b.Area() + other.Area() - inter
	if union <= 0 {
		return 0
	}
	return float64(inter) / float64(union)
}

// EmojiMapping is one word→emoji entry from a caption analyzer.
type EmojiMapping struct {
	Word  string `json:"word"`
	Emoji string `json:"emoji"`
	Shiny bool   `json:"shiny,omitempty"`
}

// Prediction is a tagged variant record returned by an analyzer.
// Common fields live at the top level; type-specific payloads go in Properties.
type Prediction struct {
	Type          PredictionType `json:"type"`
	Label         string         `json:"label,omitempty"`
	Emoji         string         `json:"emoji,omitempty"`
	Confidence    float64        `json:"confidence"`
	BBox          *BBox          `json:"bbox,omitempty"`
	Text          string         `json:"text,omitempty"`
	Value         string         `json:"value,omitempty"`
	EmojiMappings []EmojiMapping `json:"emoji_mappings,omitempty"`
	Properties    map[string]any `json:"properties,omitempty"`
}

// Validate rejects predictions with an unknown type tag or an out-of-range
// confidence. Called at the analyzer-client boundary.
func (p *Prediction) Validate() error {
	if !p.Type.Valid() {
		return fmt.Errorf("unknown prediction type %q", p.Type)
	}
	if p.Confidence < 0 || p.Confidence > 1 {
		return fmt.Errorf("confidence %v out of range [0,1]", p.Confidence)
	}
	return nil
}

// PropBool reads a boolean from Properties, tolerating absence.
func (p *Prediction) PropBool(key string) bool {
	v, ok := p.Properties[key]
	if !ok {
		return false
	}
	b, _ := v.(bool)
	return b
}

// PropString reads a string from Properties, tolerating absence.
func (p *Prediction) PropString(key string) string {
	v, ok := p.Properties[key]
	if !ok {
		return ""
	}
	s, _ := v.(string)
	return s
}
