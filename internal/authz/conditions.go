package authz

import (
	"net/netip"
	"time"
)

const (
	ConditionTimeBetween = "time_between"
	ConditionIPRange     = "ip_range"
)

// Evaluate reports whether every condition in the bag holds for the given
// request context. An empty or nil bag is vacuously true. Unknown condition
// kinds and malformed values fail closed: the condition is treated as
// unsatisfied so the grant carrying it does not apply.
func Evaluate(conds Conditions, rctx Context) bool {
	if len(conds) == 0 {
		return true
	}

	for kind, value := range conds {
		switch kind {
		case ConditionTimeBetween:
			if !evaluateTimeBetween(value, rctx.Now) {
				return false
			}
		case ConditionIPRange:
			if !evaluateIPRange(value, rctx.IPAddress) {
				return false
			}
		default:
			return false
		}
	}

	return true
}

// evaluateTimeBetween checks that the wall-clock time of day falls inside
// the [start, end] window, bounds inclusive.
func evaluateTimeBetween(value any, now time.Time) bool {
	window, ok := toStringSlice(value)
	if !ok || len(window) != 2 {
		return false
	}

	start, err := time.Parse("15:04", window[0])
	if err != nil {
		return false
	}
	end, err := time.Parse("15:04", window[1])
	if err != nil {
		return false
	}

	minuteOfDay := now.Hour()*60 + now.Minute()
	startMinute := start.Hour()*60 + start.Minute()
	endMinute := end.Hour()*60 + end.Minute()

	return minuteOfDay >= startMinute && minuteOfDay <= endMinute
}

// evaluateIPRange checks membership of the origin IP in a list of IP
// literals or CIDR prefixes.
func evaluateIPRange(value any, ipAddress string) bool {
	allowed, ok := toStringSlice(value)
	if !ok || ipAddress == "" {
		return false
	}

	addr, addrErr := netip.ParseAddr(ipAddress)

	for _, entry := range allowed {
		if entry == ipAddress {
			return true
		}
		if addrErr != nil {
			continue
		}
		if prefix, err := netip.ParsePrefix(entry); err == nil && prefix.Contains(addr) {
			return true
		}
	}

	return false
}

// toStringSlice accepts both []string and the []any shape JSON decoding
// produces for condition values.
func toStringSlice(value any) ([]string, bool) {
	switch v := value.(type) {
	case []string:
		return v, true
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			s, ok := item.(string)
			if !ok {
				return nil, false
			}
			out = append(out, s)
		}
		return out, true
	default:
		return nil, false
	}
}
