package unleashed

import (
	"strings"

	"github.com/google/uuid"
)

// NewGUID returns a random identifier in the upper-case 8-4-4-4-12 form Unleashed
// uses for resource keys.
func NewGUID() string {
	return strings.ToUpper(uuid.NewString())
}
