package processor

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// BatchNumber derives a display batch identifier from the brand name, the
// current year and a random suffix, e.g. "GIL-2025-a1b2".
func BatchNumber(brand string) string {
	prefix := strings.ToUpper(strings.TrimSpace(brand))
	if len(prefix) > 3 {
		prefix = prefix[:3]
	}
	if prefix == "" {
		prefix = "UNK"
	}
	suffix := uuid.New().String()
	suffix = strings.ReplaceAll(suffix, "-", "")[:4]
	return fmt.Sprintf("%s-%d-%s", prefix, time.Now().Year(), suffix)
}
