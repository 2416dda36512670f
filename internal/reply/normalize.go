package reply

import "strings"

const fence = "```"

// Normalize strips markdown code fences from a raw reply. A ```json block
// wins over a plain fenced block; a leading "json" label left behind by the
// model is dropped.
func Normalize(raw string) string {
	s := strings.TrimSpace(raw)
	if i := strings.LastIndex(s, fence+"json"); i >= 0 {
		s = s[i+len(fence+"json"):]
		if j := strings.Index(s, fence); j >= 0 {
			s = s[:j]
		}
	} else if parts := strings.Split(s, fence); len(parts) >= 2 {
		s = parts[1]
	}
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "json") {
		s = strings.TrimSpace(s[len("json"):])
	}
	return s
}
