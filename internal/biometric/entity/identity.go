package entity

import "time"

// Identity represents a row in the enrolled_identities table. The ten
// template columns of that row form the identity's TemplateSet.
type Identity struct {
	ID         int64     `db:"id"`
	IDNumber   string    `db:"id_number"`
	Name       string    `db:"name"`
	EnrolledAt time.Time `db:"enrolled_at"`
	Templates  TemplateSet
}

// TemplateSet maps each finger to its opaque template bytes. A missing key or
// a nil value means the slot is absent.
type TemplateSet map[TemplateSlot][]byte

// ImageSet maps each image slot to its raw image bytes.
type ImageSet map[ImageSlot][]byte

// Combined concatenates the present template payloads in canonical finger
// order. The result is non-nil and zero-length when every slot is absent.
func (t TemplateSet) Combined() []byte {
	size := 0
	for _, slot := range TemplateSlots {
		size += len(t[slot])
	}
	out := make([]byte, 0, size)
	for _, slot := range TemplateSlots {
		if b := t[slot]; b != nil {
			out = append(out, b...)
		}
	}
	return out
}

// EnrollmentPayload is the capture result fetched from the agent for one
// in-progress enrollment. It is never persisted as such.
type EnrollmentPayload struct {
	Templates TemplateSet
	Images    ImageSet
}

// Missing lists the required slots that are absent or empty, in catalogue
// order. A nil payload misses everything.
func (p *EnrollmentPayload) Missing() (templates []TemplateSlot, images []ImageSlot) {
	var ts TemplateSet
	var is ImageSet
	if p != nil {
		ts, is = p.Templates, p.Images
	}
	for _, slot := range TemplateSlots {
		if len(ts[slot]) == 0 {
			templates = append(templates, slot)
		}
	}
	for _, slot := range ImageSlots {
		if len(is[slot]) == 0 {
			images = append(images, slot)
		}
	}
	return templates, images
}

// Complete reports whether every template and image slot carries data.
func (p *EnrollmentPayload) Complete() bool {
	t, i := p.Missing()
	return len(t) == 0 && len(i) == 0
}

// CombinedTemplate is the read-only matching record derived from one identity.
type CombinedTemplate struct {
	IdentityID int64
	IDNumber   string
	Name       string
	Template   []byte
}

// SaveResult acknowledges a committed enrollment.
type SaveResult struct {
	ID         int64
	Name       string
	EnrolledAt time.Time
}
