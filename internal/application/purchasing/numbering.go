package purchasing

import "fmt"

// maxNumberAttempts intentos de generación de consecutivo antes de rendirse
// con ErrConflict.
const maxNumberAttempts = 3

func formatNumber(prefix string, year, seq int) string {
	return fmt.Sprintf("%s-%d-%05d", prefix, year, seq)
}
