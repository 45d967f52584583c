package model

import (
	"fmt"
	"strconv"
	"strings"
)

const (
	OfficialNumberPrefix   = "ktgk_"
	OfficialNumberSequence = "official_number"
)

// FormatOfficialNumber 產生 ktgk_ + 6 位數補零的公認番號
func FormatOfficialNumber(n int64) string {
	return fmt.Sprintf("%s%06d", OfficialNumberPrefix, n)
}

// ParseOfficialNumber 解析 ktgk_<digits>，格式不符時回傳 false
func ParseOfficialNumber(s string) (int64, bool) {
	digits, ok := strings.CutPrefix(s, OfficialNumberPrefix)
	if !ok || digits == "" {
		return 0, false
	}
	for _, r := range digits {
		if r < '0' || r > '9' {
			return 0, false
		}
	}
	n, err := strconv.ParseInt(digits, 10, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}
