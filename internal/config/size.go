package config

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"
	"github.com/zclconf/go-cty/cty/gocty"
)

// sizeUnits maps a size suffix to its byte multiplier. Decimal and binary
// prefixes are both accepted.
var sizeUnits = map[string]int64{
	"b":   1,
	"kb":  1000,
	"kib": 1 << 10,
	"mb":  1000 * 1000,
	"mib": 1 << 20,
	"gb":  1000 * 1000 * 1000,
	"gib": 1 << 30,
}

// evalSize evaluates a max_bytes expression. It accepts a plain number of
// bytes or a string with a unit suffix, e.g. 10485760 or "10MiB". The
// second return value is false when the attribute was absent (null).
func evalSize(expr hcl.Expression) (int64, bool, error) {
	val, diags := expr.Value(nil)
	if diags.HasErrors() {
		return 0, false, fmt.Errorf("invalid expression: %w", diags)
	}
	if val.IsNull() {
		return 0, false, nil
	}

	if val.Type() == cty.String {
		n, err := parseSizeString(val.AsString())
		if err != nil {
			return 0, false, err
		}
		return n, true, nil
	}

	num, err := convert.Convert(val, cty.Number)
	if err != nil {
		return 0, false, fmt.Errorf("expected a byte count or a size string: %w", err)
	}
	var n int64
	if err := gocty.FromCtyValue(num, &n); err != nil {
		return 0, false, fmt.Errorf("expected a whole byte count: %w", err)
	}
	return n, true, nil
}

// parseSizeString parses "10485760", "10MiB", "512 kb" and friends.
func parseSizeString(s string) (int64, error) {
	trimmed := strings.TrimSpace(strings.ToLower(s))

	i := 0
	for i < len(trimmed) && trimmed[i] >= '0' && trimmed[i] <= '9' {
		i++
	}
	if i == 0 {
		return 0, fmt.Errorf("cannot parse size %q", s)
	}
	n, err := strconv.ParseInt(trimmed[:i], 10, 64)
	if err != nil {
		return 0, fmt.Errorf("cannot parse size %q: %w", s, err)
	}

	unit := strings.TrimSpace(trimmed[i:])
	if unit == "" {
		return n, nil
	}
	multiplier, ok := sizeUnits[unit]
	if !ok {
		return 0, fmt.Errorf("unknown size unit %q in %q", unit, s)
	}
	return n * multiplier, nil
}
