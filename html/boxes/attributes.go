package boxes

import (
	"strconv"
	"strings"

	"github.com/benoitkugler/cssbox/logger"
	"github.com/benoitkugler/cssbox/utils"
)

// integerAttribute returns the value of a span attribute (colspan,
// rowspan, span), which is at least 1.
// Invalid values are replaced by 1.
func integerAttribute(element *utils.HTMLNode, name string) int {
	value := strings.TrimSpace(element.Get(name))
	if value == "" {
		return 1
	}
	v, err := strconv.Atoi(value)
	if err != nil {
		logger.WarningLogger.Printf("Invalid %s attribute %q on <%s>, using 1", name, value, element.Data)
		return 1
	}
	if v < 1 {
		logger.WarningLogger.Printf("Invalid %s attribute %q on <%s>: must be positive, using 1", name, value, element.Data)
		return 1
	}
	return v
}

// lengthAttribute returns the value in pixels of a width or height
// attribute, or -1 if it is absent or invalid.
// Percentages are not supported for replaced content and ignored.
func lengthAttribute(element *utils.HTMLNode, name string) Fl {
	value := strings.TrimSpace(element.Get(name))
	if value == "" {
		return -1
	}
	value = strings.TrimSuffix(value, "px")
	if strings.HasSuffix(value, "%") {
		return -1
	}
	v, err := strconv.ParseFloat(value, 32)
	if err != nil || v < 0 {
		logger.WarningLogger.Printf("Invalid %s attribute %q on <%s>", name, element.Get(name), element.Data)
		return -1
	}
	return Fl(v)
}
