package entity

import (
	"strconv"
	"strings"
)

// TemplateSlot names one of the ten per-finger template columns.
type TemplateSlot string

const (
	TemplateRightThumb  TemplateSlot = "fmr_right_thumb"
	TemplateRightIndex  TemplateSlot = "fmr_right_index"
	TemplateRightMiddle TemplateSlot = "fmr_right_middle"
	TemplateRightRing   TemplateSlot = "fmr_right_ring"
	TemplateRightLittle TemplateSlot = "fmr_right_little"
	TemplateLeftThumb   TemplateSlot = "fmr_left_thumb"
	TemplateLeftIndex   TemplateSlot = "fmr_left_index"
	TemplateLeftMiddle  TemplateSlot = "fmr_left_middle"
	TemplateLeftRing    TemplateSlot = "fmr_left_ring"
	TemplateLeftLittle  TemplateSlot = "fmr_left_little"
)

// TemplateSlots is the canonical order used for aggregation: right thumb to
// right little, then left thumb to left little. Index+1 is the ISO/IEC 19794
// finger position code.
var TemplateSlots = [...]TemplateSlot{
	TemplateRightThumb, TemplateRightIndex, TemplateRightMiddle, TemplateRightRing, TemplateRightLittle,
	TemplateLeftThumb, TemplateLeftIndex, TemplateLeftMiddle, TemplateLeftRing, TemplateLeftLittle,
}

// ImageSlot names one of the thirteen captured image columns.
type ImageSlot string

const (
	ImageSlapRightFour ImageSlot = "img_slap_right_four"
	ImageSlapLeftFour  ImageSlot = "img_slap_left_four"
	ImageSlapTwoThumbs ImageSlot = "img_slap_two_thumbs"
	ImageRightThumb    ImageSlot = "img_right_thumb"
	ImageRightIndex    ImageSlot = "img_right_index"
	ImageRightMiddle   ImageSlot = "img_right_middle"
	ImageRightRing     ImageSlot = "img_right_ring"
	ImageRightLittle   ImageSlot = "img_right_little"
	ImageLeftThumb     ImageSlot = "img_left_thumb"
	ImageLeftIndex     ImageSlot = "img_left_index"
	ImageLeftMiddle    ImageSlot = "img_left_middle"
	ImageLeftRing      ImageSlot = "img_left_ring"
	ImageLeftLittle    ImageSlot = "img_left_little"
)

// ImageSlots lists the three slap composites followed by the ten single fingers.
var ImageSlots = [...]ImageSlot{
	ImageSlapRightFour, ImageSlapLeftFour, ImageSlapTwoThumbs,
	ImageRightThumb, ImageRightIndex, ImageRightMiddle, ImageRightRing, ImageRightLittle,
	ImageLeftThumb, ImageLeftIndex, ImageLeftMiddle, ImageLeftRing, ImageLeftLittle,
}

var (
	templateSlotSet = func() map[TemplateSlot]int {
		m := make(map[TemplateSlot]int, len(TemplateSlots))
		for i, s := range TemplateSlots {
			m[s] = i
		}
		return m
	}()
	imageSlotSet = func() map[ImageSlot]struct{} {
		m := make(map[ImageSlot]struct{}, len(ImageSlots))
		for _, s := range ImageSlots {
			m[s] = struct{}{}
		}
		return m
	}()
)

// Valid reports whether s is one of the ten known template slots.
func (s TemplateSlot) Valid() bool {
	_, ok := templateSlotSet[s]
	return ok
}

// Position returns the ISO finger position (1..10) of the slot, or 0 when unknown.
func (s TemplateSlot) Position() int {
	i, ok := templateSlotSet[s]
	if !ok {
		return 0
	}
	return i + 1
}

// Valid reports whether s is one of the thirteen known image slots.
func (s ImageSlot) Valid() bool {
	_, ok := imageSlotSet[s]
	return ok
}

// ParseTemplateSlot accepts a slot column name ("fmr_left_ring"), the same
// name without its prefix ("left_ring") or an ISO finger position ("9").
func ParseTemplateSlot(raw string) (TemplateSlot, bool) {
	v := strings.ToLower(strings.TrimSpace(raw))
	if v == "" {
		return "", false
	}
	if n, err := strconv.Atoi(v); err == nil {
		if n < 1 || n > len(TemplateSlots) {
			return "", false
		}
		return TemplateSlots[n-1], true
	}
	s := TemplateSlot(v)
	if !strings.HasPrefix(v, "fmr_") {
		s = TemplateSlot("fmr_" + v)
	}
	if !s.Valid() {
		return "", false
	}
	return s, true
}
