// Package utils provides helpers shared by the CLI commands: loading JSON
// documents and YAML option files, and rendering server timestamps.
package utils

import (
	"encoding/json"
	"strconv"
	"time"
)

// TimestampLayout is how epoch timestamps are shown in tables.
const TimestampLayout = "2006-01-02 15:04:05"

// FormatTimestamp renders an epoch-seconds value taken from a JSON document
// in loc (local time when nil). Values that are not numeric are returned
// as-is; a missing value renders as "".
func FormatTimestamp(v interface{}, loc *time.Location) string {
	if loc == nil {
		loc = time.Local
	}

	var secs int64
	switch n := v.(type) {
	case nil:
		return ""
	case float64:
		secs = int64(n)
	case int:
		secs = int64(n)
	case int64:
		secs = n
	case json.Number:
		i, err := n.Int64()
		if err != nil {
			return n.String()
		}
		secs = i
	case string:
		i, err := strconv.ParseInt(n, 10, 64)
		if err != nil {
			return n
		}
		secs = i
	default:
		return ""
	}

	return time.Unix(secs, 0).In(loc).Format(TimestampLayout)
}
