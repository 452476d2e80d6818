package units

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrNoDigits is returned when a quantity token has no numeric prefix.
// Callers drop the offending line rather than propagating this.
var ErrNoDigits = errors.New("quantity token contains no digits")

// MemoryUnit selects the target unit for ParseMemory.
type MemoryUnit string

const (
	Kibibytes MemoryUnit = "Ki"
	Mebibytes MemoryUnit = "Mi"
)

// ParseCPU converts a kubectl top CPU token into millicores.
// "250m" -> 250, "12%" -> 12. A bare number is returned as-is (it is NOT
// scaled by 1000); percentages are comparable relative values only.
func ParseCPU(token string) (int64, error) {
	var s string
	if strings.Contains(token, "m") {
		s = strings.ReplaceAll(strings.ReplaceAll(token, "m", ""), "%", "")
	} else {
		s = strings.ReplaceAll(token, "%", "")
	}

	v, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("failed to parse CPU quantity %q: %w", token, ErrNoDigits)
	}
	return v, nil
}

// ParseMemory converts a memory token ("64Mi", "1Gi", "2048Ki", "80%",
// bare number) into the target unit. Node samples use Kibibytes, pod
// samples and resource requests use Mebibytes. Percentages and bare
// numbers pass through without conversion.
func ParseMemory(token string, target MemoryUnit) (int64, error) {
	parse := func(suffix string) (int64, error) {
		v, err := strconv.ParseInt(strings.TrimSpace(strings.ReplaceAll(token, suffix, "")), 10, 64)
		if err != nil {
			return 0, fmt.Errorf("failed to parse memory quantity %q: %w", token, ErrNoDigits)
		}
		return v, nil
	}

	switch {
	case strings.Contains(token, "Mi"):
		v, err := parse("Mi")
		if err != nil {
			return 0, err
		}
		if target == Kibibytes {
			return v * 1024, nil
		}
		return v, nil
	case strings.Contains(token, "Gi"):
		v, err := parse("Gi")
		if err != nil {
			return 0, err
		}
		if target == Kibibytes {
			return v * 1024 * 1024, nil
		}
		return v * 1024, nil
	case strings.Contains(token, "Ki"):
		v, err := parse("Ki")
		if err != nil {
			return 0, err
		}
		if target == Kibibytes {
			return v, nil
		}
		return v / 1024, nil
	case strings.Contains(token, "%"):
		return parse("%")
	default:
		return parse("")
	}
}
