package eval

import (
	"time"

	"github.com/loxmix/loxmix/ast"
	"github.com/loxmix/loxmix/value"
)

// clockFunction returns the sole builtin: the number of seconds since the
// Unix epoch, as a float, matching the language's single scalar number
// kind. It declares no params and never inspects its call-site arguments.
func clockFunction() *value.Function {
	return &value.Function{
		Name: "clock",
		Builtin: func(args []ast.Node) (value.Value, error) {
			return value.NumberFromFloat(float64(time.Now().UnixNano()) / 1e9), nil
		},
	}
}
