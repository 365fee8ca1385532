package importer

import (
	"sort"
	"strings"
)

// headerRule binds a case-insensitive substring to a core column. Rule order
// is the matching contract: "roll" is checked before "email" before "phone"
// and so on, and the first rule that matches a header wins. A header like
// "Roll Number (email reminders)" therefore always lands on rollNo.
type headerRule struct {
	substring string
	target    string
}

var headerRules = []headerRule{
	{"roll", "rollNo"},
	{"email", "email"},
	{"phone", "phoneNo"},
	{"department", "department"},
	{"year", "year"},
	{"name", "name"},
}

// mapRow splits one raw sheet row into core column values and dynamic extras.
// A core target is filled at most once; later headers matching an already
// filled target fall through to extras. Headers are walked in sorted order so
// the split is deterministic regardless of map iteration.
func mapRow(row map[string]string) (core map[string]string, extra map[string]string) {
	core = make(map[string]string)
	extra = make(map[string]string)

	headers := make([]string, 0, len(row))
	for h := range row {
		headers = append(headers, h)
	}
	sort.Strings(headers)

	for _, header := range headers {
		value := strings.TrimSpace(row[header])
		lower := strings.ToLower(header)

		matched := false
		for _, rule := range headerRules {
			if !strings.Contains(lower, rule.substring) {
				continue
			}
			if _, taken := core[rule.target]; !taken {
				core[rule.target] = value
				matched = true
			}
			break
		}
		if !matched {
			extra[header] = value
		}
	}
	return core, extra
}
