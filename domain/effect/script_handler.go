package effect

import (
	"encoding/json"
	"fmt"

	"github.com/dop251/goja"

	causalityerrors "github.com/timewave-computer/causality/infrastructure/errors"
)

// ScriptHandler backs a KindPerform node tagged "custom" (or any tag the
// caller chooses to route here) with a sandboxed JavaScript function,
// matching the teacher's system/tee goja-based script engine used for
// the same kind of pluggable user logic, minus the TEE/enclave concerns
// that don't apply to a local effect handler.
type ScriptHandler struct {
	Script     string
	EntryPoint string
}

// NewScriptHandler validates script at construction time so a malformed
// Custom effect fails fast instead of during dispatch.
func NewScriptHandler(script, entryPoint string) (*ScriptHandler, error) {
	if _, err := goja.Compile("effect.js", script, false); err != nil {
		return nil, causalityerrors.Validation("script", fmt.Sprintf("invalid custom effect script: %v", err))
	}
	return &ScriptHandler{Script: script, EntryPoint: entryPoint}, nil
}

// Invoke runs the script's entry point against args (decoded as JSON)
// and returns the JSON-encoded result. Each call gets a fresh goja
// runtime: handlers must not share mutable JS state across invocations.
func (h *ScriptHandler) Invoke(tag string, args []byte) ([]byte, error) {
	vm := goja.New()

	var input interface{}
	if len(args) > 0 {
		if err := json.Unmarshal(args, &input); err != nil {
			return nil, causalityerrors.EffectHandling(tag, fmt.Errorf("decode args: %w", err))
		}
	}
	if err := vm.Set("input", vm.ToValue(input)); err != nil {
		return nil, causalityerrors.EffectHandling(tag, err)
	}

	if _, err := vm.RunString(h.Script); err != nil {
		return nil, causalityerrors.EffectHandling(tag, fmt.Errorf("load script: %w", err))
	}

	entry, ok := goja.AssertFunction(vm.Get(h.EntryPoint))
	if !ok {
		return nil, causalityerrors.EffectHandling(tag, fmt.Errorf("entry point %q is not a function", h.EntryPoint))
	}

	result, err := entry(goja.Undefined(), vm.Get("input"))
	if err != nil {
		return nil, causalityerrors.EffectHandling(tag, fmt.Errorf("invoke %s: %w", h.EntryPoint, err))
	}

	out, err := json.Marshal(result.Export())
	if err != nil {
		return nil, causalityerrors.EffectHandling(tag, fmt.Errorf("encode result: %w", err))
	}
	return out, nil
}
