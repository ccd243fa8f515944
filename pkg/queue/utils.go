package queue

import (
	"fmt"
	"strings"
)

// qualifiedStructName names a task after its payload type, e.g. "notifications.DeliveryTask".
func qualifiedStructName(v any) string {
	return strings.TrimLeft(fmt.Sprintf("%T", v), "*")
}
