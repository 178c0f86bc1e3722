package subtitle

import (
	"fmt"
	"strconv"

	"github.com/go-playground/validator/v10"
)

// Highlight positions recognized by the ASS renderer. Any other non-empty
// Highlight value is parsed as a decimal word index.
const (
	HighlightFirst = "first"
	HighlightLast  = "last"
)

// Style configures caption rendering. Colors are #RRGGBB hex strings;
// MarginV is the vertical offset from the top of the 1080x1920 canvas.
type Style struct {
	FontName        string `json:"font_name" validate:"required"`
	FontSize        int    `json:"font_size" validate:"gt=0"`
	PrimaryColor    string `json:"primary_color" validate:"hexcolor"`
	HighlightColor  string `json:"highlight_color" validate:"hexcolor"`
	OutlineColor    string `json:"outline_color" validate:"hexcolor"`
	ShadowColor     string `json:"shadow_color" validate:"hexcolor"`
	OutlineWidth    int    `json:"outline_width" validate:"gte=0"`
	ShadowOffset    int    `json:"shadow_offset" validate:"gte=0"`
	MarginV         int    `json:"margin_v" validate:"gte=0"`
	Bold            bool   `json:"bold"`
	Highlight       string `json:"highlight"`
	MaxWordsPerLine int    `json:"max_words_per_line" validate:"gte=1"`
	UseASS          bool   `json:"use_ass"`
}

var validate = validator.New()

// DefaultStyle returns the documented fallback styling.
func DefaultStyle() Style {
	return Style{
		FontName:        "Arial Black",
		FontSize:        32,
		PrimaryColor:    "#FFFFFF",
		HighlightColor:  "#FFFF00",
		OutlineColor:    "#000000",
		ShadowColor:     "#000000",
		OutlineWidth:    3,
		ShadowOffset:    2,
		MarginV:         960,
		Bold:            true,
		Highlight:       HighlightLast,
		MaxWordsPerLine: 3,
		UseASS:          true,
	}
}

// CaptionStyle is the fixed style the caption pipeline burns with: large bold
// text, yellow last-word highlight, thick black outline, no drop shadow,
// positioned near the bottom of the canvas.
func CaptionStyle() Style {
	s := DefaultStyle()
	s.FontSize = 70
	s.OutlineWidth = 12
	s.ShadowOffset = 0
	s.MarginV = 1550
	return s
}

// Validate rejects malformed styles at the configuration boundary. The
// renderers themselves stay permissive, so callers that skip validation get
// the degraded best-effort output instead of a failure mid-pipeline.
func (s Style) Validate() error {
	if err := validate.Struct(s); err != nil {
		return fmt.Errorf("invalid caption style: %w", err)
	}
	switch s.Highlight {
	case "", HighlightFirst, HighlightLast:
	default:
		idx, err := strconv.Atoi(s.Highlight)
		if err != nil {
			return fmt.Errorf("invalid highlight position %q", s.Highlight)
		}
		if idx < 0 || idx >= s.MaxWordsPerLine {
			return fmt.Errorf("highlight index %d out of range for %d words per line", idx, s.MaxWordsPerLine)
		}
	}
	return nil
}

// highlightIndex resolves the highlight position for a chunk of n words.
// It returns -1 when no word should be highlighted, including the
// out-of-range integer case.
func (s Style) highlightIndex(n int) int {
	switch s.Highlight {
	case "":
		return -1
	case HighlightFirst:
		return 0
	case HighlightLast:
		return n - 1
	}
	idx, err := strconv.Atoi(s.Highlight)
	if err != nil || idx < 0 || idx >= n {
		return -1
	}
	return idx
}
