package util

import (
	"fmt"
	"strconv"
	"strings"
)

var byteUnits = []string{"KB", "MB", "GB", "TB"}

// Human renders a byte count for the progress bar and the download
// summary: one decimal at most, with a trailing ".0" dropped so round
// values print as "2 MB" rather than "2.0 MB".
func Human(n int64) string {
	if n < 1024 {
		return fmt.Sprintf("%d B", n)
	}

	value := float64(n)
	unit := byteUnits[0]
	for _, u := range byteUnits {
		value /= 1024
		unit = u
		if value < 1024 {
			break
		}
	}

	s := strings.TrimSuffix(strconv.FormatFloat(value, 'f', 1, 64), ".0")
	return s + " " + unit
}
