package domain

// Badge is the visual category a status is rendered with.
type Badge string

const (
	BadgeSuccess Badge = "success"
	BadgeNeutral Badge = "neutral"
	BadgeInfo    Badge = "info"
	BadgeWarning Badge = "warning"
	BadgeAccent  Badge = "accent"
	BadgeDanger  Badge = "danger"
)

var statusBadges = map[string]Badge{
	"Active":      BadgeSuccess,
	"Inactive":    BadgeNeutral,
	"Available":   BadgeInfo,
	"Rented":      BadgeWarning,
	"Maintenance": BadgeAccent,
	"Completed":   BadgeSuccess,
	"Overdue":     BadgeDanger,
	"Good":        BadgeSuccess,
	"Damaged":     BadgeWarning,
	"Lost":        BadgeDanger,
}

// BadgeFor maps a status or condition value to its badge. Unknown values are neutral.
func BadgeFor(status string) Badge {
	if b, ok := statusBadges[status]; ok {
		return b
	}
	return BadgeNeutral
}
