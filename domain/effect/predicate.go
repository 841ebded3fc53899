package effect

import (
	"fmt"

	"github.com/PaesslerAG/gval"
	"github.com/PaesslerAG/jsonpath"

	causalityerrors "github.com/timewave-computer/causality/infrastructure/errors"
)

// predicateLanguage is gval's expression grammar extended with jsonpath
// selectors, so a precondition can reach into nested binding structures
// (e.g. "$.resource.state == \"active\"") instead of only flat names.
var predicateLanguage = gval.Full(jsonpath.PlaceholderExtension())

// Bindings is the evaluation context a Perform node's pre/post
// expressions see: resource states, effect args, and handler results,
// addressed by name.
type Bindings map[string]interface{}

// evaluateAll ANDs every expression in exprs against bindings. An empty
// list is vacuously true.
func evaluateAll(exprs []string, bindings Bindings) (bool, error) {
	for _, expr := range exprs {
		v, err := predicateLanguage.Evaluate(expr, map[string]interface{}(bindings))
		if err != nil {
			return false, causalityerrors.Validation("predicate", fmt.Sprintf("%s: %v", expr, err))
		}
		ok, isBool := v.(bool)
		if !isBool {
			return false, causalityerrors.Validation("predicate", fmt.Sprintf("%s: expression did not evaluate to a boolean", expr))
		}
		if !ok {
			return false, nil
		}
	}
	return true, nil
}

// CheckPre evaluates e's precondition expressions. Only meaningful for
// KindPerform; other kinds have no preconditions and are vacuously true.
func (e *Effect) CheckPre(bindings Bindings) (bool, error) {
	if e.Kind != KindPerform {
		return true, nil
	}
	return evaluateAll(e.Pre, bindings)
}

// CheckPost evaluates e's postcondition expressions against bindings as
// given; a handler's result is visible only if the caller has put it in
// bindings (e.g. under "result").
func (e *Effect) CheckPost(bindings Bindings) (bool, error) {
	if e.Kind != KindPerform {
		return true, nil
	}
	return evaluateAll(e.Post, bindings)
}
