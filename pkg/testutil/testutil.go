// Package testutil holds fixtures shared by the store, service and router tests.
package testutil

import (
	"fmt"
	"path/filepath"
	"testing"

	"github.com/jmoiron/sqlx"

	"github.com/ovaphlow/pitchfork/service-enrollment-go/internal/biometric/entity"
	"github.com/ovaphlow/pitchfork/service-enrollment-go/pkg/database"
)

// NewSQLiteDB opens a fresh file-backed SQLite database in a temp dir. The
// handle is closed when the test ends.
func NewSQLiteDB(t testing.TB) *sqlx.DB {
	t.Helper()
	db, err := database.Open(database.Config{
		Driver:   database.DriverSQLite,
		DSN:      database.SQLiteDSN(filepath.Join(t.TempDir(), "enrollment.sqlite")),
		MaxConns: 4,
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

// TemplateBytes is the deterministic template payload FullPayload puts in slot.
func TemplateBytes(seed string, slot entity.TemplateSlot) []byte {
	return []byte(fmt.Sprintf("FMR|%s|%s|", seed, slot))
}

// ImageBytes is the deterministic image payload FullPayload puts in slot. It
// contains NUL and high bytes so round trips are checked byte for byte.
func ImageBytes(seed string, slot entity.ImageSlot) []byte {
	return append([]byte{0x00, 0xff, 0x89, 'P', 'N', 'G'}, []byte(seed+"|"+string(slot))...)
}

// FullPayload returns a complete payload whose slot bytes derive from seed.
func FullPayload(seed string) *entity.EnrollmentPayload {
	p := &entity.EnrollmentPayload{
		Templates: make(entity.TemplateSet, len(entity.TemplateSlots)),
		Images:    make(entity.ImageSet, len(entity.ImageSlots)),
	}
	for _, slot := range entity.TemplateSlots {
		p.Templates[slot] = TemplateBytes(seed, slot)
	}
	for _, slot := range entity.ImageSlots {
		p.Images[slot] = ImageBytes(seed, slot)
	}
	return p
}

// TemplateTotal is the combined length of the ten template payloads of FullPayload(seed).
func TemplateTotal(seed string) int {
	n := 0
	for _, slot := range entity.TemplateSlots {
		n += len(TemplateBytes(seed, slot))
	}
	return n
}
