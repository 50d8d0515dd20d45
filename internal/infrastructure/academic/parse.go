package academic

import (
	"strconv"
	"strings"
	"time"

	"github.com/ummobile/ummobile-services/api/internal/questionnaire/domain"
)

// parseFlag converts the academic system's "S"/"N" strings to a bool.
// Anything other than "S" is false.
func parseFlag(value string) bool {
	return strings.EqualFold(strings.TrimSpace(value), "S")
}

// ParseDDMMYYYY parses `dd/mm/yyyy` or `dd-mm-yyyy` into a date-only value.
// Unrecognized formats, including ISO `yyyy-mm-dd`, return nil: the academic
// system occasionally sends garbage and an absent date is the safe reading.
func ParseDDMMYYYY(value string) *time.Time {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil
	}

	var separator string
	switch {
	case strings.Contains(value, "/"):
		separator = "/"
	case strings.Contains(value, "-"):
		separator = "-"
	default:
		return nil
	}

	parts := strings.Split(value, separator)
	if len(parts) < 3 {
		return nil
	}

	numbers := make([]int, 3)
	for i := 0; i < 3; i++ {
		n, err := strconv.Atoi(strings.TrimSpace(parts[i]))
		if err != nil {
			return nil
		}
		numbers[i] = n
	}

	day, month, year := numbers[0], numbers[1], numbers[2]
	if day < 1 || day > 31 || month < 1 || month > 12 {
		return nil
	}

	parsed := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	return &parsed
}

// parseDate is ParseDDMMYYYY for optional fields: empty input stays nil.
func parseDate(value string) *time.Time {
	if strings.TrimSpace(value) == "" {
		return nil
	}
	return ParseDDMMYYYY(value)
}

// parseResidence maps the academic `residencia` values onto the domain
// residence type.
func parseResidence(value string) domain.Residence {
	switch strings.ToUpper(strings.TrimSpace(value)) {
	case "INTERNO", "INTERNA":
		return domain.ResidenceInternal
	case "EXTERNO", "EXTERNA":
		return domain.ResidenceExternal
	default:
		return domain.ResidenceUnknown
	}
}
