package enrollment

import (
	"fmt"
	"strings"

	"github.com/ovaphlow/pitchfork/service-enrollment-go/internal/biometric/entity"
	"github.com/ovaphlow/pitchfork/service-enrollment-go/pkg/apperr"
)

// Validate fails with apperr.ErrIncompletePayload unless all ten template
// slots and all thirteen image slots carry data. It performs no I/O and must
// run before anything is written.
func Validate(p *entity.EnrollmentPayload) error {
	templates, images := p.Missing()
	if len(templates) == 0 && len(images) == 0 {
		return nil
	}
	missing := make([]string, 0, len(templates)+len(images))
	for _, s := range templates {
		missing = append(missing, string(s))
	}
	for _, s := range images {
		missing = append(missing, string(s))
	}
	return fmt.Errorf("%w: missing %s", apperr.ErrIncompletePayload, strings.Join(missing, ", "))
}
