package market

import "fmt"

// Expired is shown once the deadline has passed.
const Expired = "Expired"

// FormatTimeLeft renders the countdown from now to deadline (both unix
// seconds). Units are floored: seconds, minutes, hours with minutes, days.
func FormatTimeLeft(deadline, now int64) string {
	diff := deadline - now
	switch {
	case diff <= 0:
		return Expired
	case diff < 60:
		return fmt.Sprintf("%ds", diff)
	case diff < 3600:
		return fmt.Sprintf("%dm", diff/60)
	case diff < 86400:
		return fmt.Sprintf("%dh %dm", diff/3600, (diff%3600)/60)
	default:
		return fmt.Sprintf("%dd", diff/86400)
	}
}
