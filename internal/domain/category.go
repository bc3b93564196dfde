package domain

import (
	"fmt"
	"strings"
)

// ArtCategory is the fixed-width enum the on-chain program expects as the last
// byte of the create_event payload. Variant order matches the program's enum
// declaration and must never be reordered.
type ArtCategory uint8

const (
	StandupComedy ArtCategory = iota
	PerformanceArt
	PoetrySlam
	OpenMicImprov
	LivePainting
	CreativeWorkshop
)

// DefaultArtCategory is used when a label cannot be recognized. The fallback
// silently changes user intent, so callers must surface it.
const DefaultArtCategory = PerformanceArt

var categoryLabels = map[ArtCategory]string{
	StandupComedy:    "standup-comedy",
	PerformanceArt:   "performance-art",
	PoetrySlam:       "poetry-slam",
	OpenMicImprov:    "open-mic",
	LivePainting:     "live-painting",
	CreativeWorkshop: "creative-workshop",
}

var categoryByLabel = map[string]ArtCategory{
	"standup-comedy":    StandupComedy,
	"performance-art":   PerformanceArt,
	"poetry-slam":       PoetrySlam,
	"open-mic":          OpenMicImprov,
	"live-painting":     LivePainting,
	"creative-workshop": CreativeWorkshop,
}

// Loose spellings seen in form data collapse onto canonical labels.
var categorySynonyms = map[string]string{
	"comedy":            "standup-comedy",
	"standup":           "standup-comedy",
	"stand-up-comedy":   "standup-comedy",
	"performance":       "performance-art",
	"poetry":            "poetry-slam",
	"slam":              "poetry-slam",
	"improv":            "open-mic",
	"open-mic-improv":   "open-mic",
	"openmic":           "open-mic",
	"painting":          "live-painting",
	"livepainting":      "live-painting",
	"workshop":          "creative-workshop",
	"creating-workshop": "creative-workshop",
}

// ParseArtCategory maps a human-entered label onto a program enum variant.
// Unknown input does not fail: it returns DefaultArtCategory with ok=false so
// the caller can log the substitution.
func ParseArtCategory(label string) (cat ArtCategory, ok bool) {
	norm := normalizeCategoryLabel(label)
	if c, found := categoryByLabel[norm]; found {
		return c, true
	}
	if canonical, found := categorySynonyms[norm]; found {
		return categoryByLabel[canonical], true
	}
	return DefaultArtCategory, false
}

// ArtCategoryFromIndex is total over the six valid tag bytes and fails for
// anything else.
func ArtCategoryFromIndex(index uint8) (ArtCategory, error) {
	cat := ArtCategory(index)
	if _, found := categoryLabels[cat]; !found {
		return 0, fmt.Errorf("%w: index %d", ErrUnknownCategory, index)
	}
	return cat, nil
}

// Index returns the tag byte written into the instruction payload.
func (c ArtCategory) Index() uint8 {
	return uint8(c)
}

// Label returns the canonical UI label.
func (c ArtCategory) Label() string {
	if l, found := categoryLabels[c]; found {
		return l
	}
	return categoryLabels[DefaultArtCategory]
}

func (c ArtCategory) String() string {
	return c.Label()
}

func normalizeCategoryLabel(label string) string {
	norm := strings.ToLower(strings.TrimSpace(label))
	norm = strings.ReplaceAll(norm, "_", "-")
	norm = strings.ReplaceAll(norm, " ", "-")
	return norm
}
