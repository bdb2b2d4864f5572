package jsonsql

import "strings"

// operatorKeys maps SQL operator spellings to the single-key names the
// billing engine understands. The table is the complete operator surface;
// anything missing here is rejected, never passed through.
var operatorKeys = map[string]string{
	"=":      "eq",
	"!=":     "ne",
	"<>":     "ne",
	">":      "gt",
	"<":      "lt",
	">=":     "gte",
	"<=":     "lte",
	"IS":     "is",
	"IS NOT": "isnot",
	"AND":    "and",
	"OR":     "or",
	"NOT":    "not",
	"LIKE":   "like",
	"ILIKE":  "ilike",
	"IN":     "in",
	"NOT IN": "notin",
	"+":      "add",
	"-":      "sub",
	"*":      "mul",
	"/":      "div",
	"%":      "mod",
}

func operatorKey(op string) (string, bool) {
	key, ok := operatorKeys[strings.ToUpper(op)]
	return key, ok
}
