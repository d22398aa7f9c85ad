package ruleengine

// CompiledExpression is a parsed expression ready for repeated evaluation
// against different symbol tables. It holds no mutable state, so the same
// CompiledExpression is safe to share across workers once compiled.
type CompiledExpression struct {
	root   node
	source string
}

// Source returns the original expression text this was compiled from.
func (c *CompiledExpression) Source() string { return c.source }

// Evaluate runs the expression against vars and reduces the result to a
// float64. §4.4: the expression yields a real number; boolean results are
// treated as 1.0/0.0.
func (c *CompiledExpression) Evaluate(vars map[string]interface{}) (float64, error) {
	v, err := c.root.eval(vars)
	if err != nil {
		return 0, err
	}
	return toFloat(v)
}

// triggerThreshold is the fixed boundary from §4.4: an expression is
// triggered iff its value is strictly greater than 0.5.
const triggerThreshold = 0.5

// Triggered reports whether a value crosses the fixed trigger threshold.
func Triggered(value float64) bool {
	return value > triggerThreshold
}
