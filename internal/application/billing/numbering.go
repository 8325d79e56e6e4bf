package billing

import "fmt"

// maxNumberAttempts intentos de generación de consecutivo antes de rendirse
// con ErrConflict. Las colisiones bajo creación concurrente se reintentan,
// nunca producen duplicados silenciosos.
const maxNumberAttempts = 3

// FormatNumber arma el consecutivo legible por año: PREFIJO-AAAA-NNNNN.
func FormatNumber(prefix string, year, seq int) string {
	return fmt.Sprintf("%s-%d-%05d", prefix, year, seq)
}
