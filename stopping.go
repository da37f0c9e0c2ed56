package grove

/*
StoppingRule is an interface wrapping the Stop method, that can be used to
decide whether a node must be made terminal before looking for a split.

The Stop method takes the responses of the rows at the node and its depth and
returns true to make the node terminal.
*/
type StoppingRule[Y any] interface {
	Stop(responses []Y, depth int) bool
}

/*
StoppingRuleFunc wraps a function with the Stop method signature to implement
the StoppingRule interface
*/
type StoppingRuleFunc[Y any] func(responses []Y, depth int) bool

// Stop invokes the StoppingRuleFunc with the given parameters and returns its result
func (srf StoppingRuleFunc[Y]) Stop(responses []Y, depth int) bool {
	return srf(responses, depth)
}

/*
NodeSizeRule takes a node size and returns a StoppingRule that stops nodes
with that many rows or less.
*/
func NodeSizeRule[Y any](nodeSize int) StoppingRule[Y] {
	return StoppingRuleFunc[Y](func(responses []Y, _ int) bool {
		return len(responses) <= nodeSize
	})
}

/*
MaxDepthRule takes a maximum depth and returns a StoppingRule that stops
nodes at that depth or deeper. A maximum depth of 0 or less never stops a
node.
*/
func MaxDepthRule[Y any](maxDepth int) StoppingRule[Y] {
	return StoppingRuleFunc[Y](func(_ []Y, depth int) bool {
		return maxDepth > 0 && depth >= maxDepth
	})
}

/*
PurityRule returns a StoppingRule that stops nodes whose responses are all
equal.
*/
func PurityRule[Y comparable]() StoppingRule[Y] {
	return StoppingRuleFunc[Y](func(responses []Y, _ int) bool {
		if len(responses) == 0 {
			return true
		}
		for _, y := range responses[1:] {
			if y != responses[0] {
				return false
			}
		}
		return true
	})
}

/*
AnyOf takes a list of stopping rules and returns one that stops a node if
any of them does.
*/
func AnyOf[Y any](rules ...StoppingRule[Y]) StoppingRule[Y] {
	return StoppingRuleFunc[Y](func(responses []Y, depth int) bool {
		for _, r := range rules {
			if r.Stop(responses, depth) {
				return true
			}
		}
		return false
	})
}

/*
StoppingRules takes settings and returns the stopping rules they describe:
node size, maximum depth and, if enabled, node purity.
*/
func StoppingRules[Y comparable](s Settings) []StoppingRule[Y] {
	rules := []StoppingRule[Y]{NodeSizeRule[Y](s.NodeSize), MaxDepthRule[Y](s.MaxNodeDepth)}
	if s.CheckNodePurity {
		rules = append(rules, PurityRule[Y]())
	}
	return rules
}
