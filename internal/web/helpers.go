package web

import (
	"strconv"
	"strings"
)

func itoa(value int) string {
	return strconv.Itoa(value)
}

func i64toa(value int64) string {
	return strconv.FormatInt(value, 10)
}

func roundLabel(s SessionSummary) string {
	if s.Round == 0 {
		return "-"
	}
	return itoa(s.Round) + "/" + itoa(s.MaxRounds)
}

func statusClass(status string) string {
	return "status-" + strings.ToLower(status)
}
