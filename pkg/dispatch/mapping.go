package dispatch

// externalToInternalKey is the deterministic snake_case -> camelCase key
// mapping. Only these four keys differ in name between the wire envelope
// and the internal model; every other key (analysisContext, depthLevel,
// timeBudgetSeconds, sessionId, ...) is already camelCase on both sides
// and passes through unchanged.
var externalToInternalKey = map[string]string{
	"attempted_approaches": "attemptedApproaches",
	"partial_findings":     "partialFindings",
	"stuck_description":    "stuckPoints",
	"code_scope":           "focusArea",
}

var internalToExternalKey = invertKeyMap(externalToInternalKey)

func invertKeyMap(m map[string]string) map[string]string {
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[v] = k
	}
	return out
}

// ToInternal translates one external JSON object's top-level keys to
// their internal counterparts and promotes a scalar stuck_description
// into a one-element stuckPoints sequence.
func ToInternal(ext map[string]any) map[string]any {
	out := make(map[string]any, len(ext))
	for k, v := range ext {
		if k == "stuck_description" {
			v = promoteToSlice(v)
		}
		out[renameKey(k, externalToInternalKey)] = v
	}
	return out
}

// ToExternal reverses ToInternal: a one-element stuckPoints sequence
// demotes back to a scalar stuck_description, restoring the caller's
// original shape. Translation is applied only at the top level;
// ToInternal/ToExternal are called once per nested object (e.g.
// analysisContext) by the caller, mirroring how the external schema
// nests these renamed keys one level down from the tool's params.
func ToExternal(internal map[string]any) map[string]any {
	out := make(map[string]any, len(internal))
	for k, v := range internal {
		if k == "stuckPoints" {
			v = demoteFromSlice(v)
		}
		out[renameKey(k, internalToExternalKey)] = v
	}
	return out
}

func renameKey(k string, table map[string]string) string {
	if nk, ok := table[k]; ok {
		return nk
	}
	return k
}

func promoteToSlice(v any) any {
	if s, ok := v.(string); ok {
		return []any{s}
	}
	return v
}

func demoteFromSlice(v any) any {
	if s, ok := v.([]any); ok && len(s) == 1 {
		return s[0]
	}
	return v
}
