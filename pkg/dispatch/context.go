package dispatch

import (
	"errors"

	json "github.com/goccy/go-json"

	"github.com/deepreason/orchestrator/pkg/analysis"
	"github.com/deepreason/orchestrator/pkg/rpcerr"
)

// DecodeContext translates one external analysisContext object (with
// snake_case sub-fields) into the internal analysis.Context shape via
// ToInternal, then validates it against the schema.
func DecodeContext(ext map[string]any) (analysis.Context, error) {
	internal := ToInternal(ext)
	raw, err := json.Marshal(internal)
	if err != nil {
		return analysis.Context{}, rpcerr.Wrap(rpcerr.KindInvalidInput, err)
	}
	var ctxRecord analysis.Context
	if err := json.Unmarshal(raw, &ctxRecord); err != nil {
		return analysis.Context{}, rpcerr.Wrap(rpcerr.KindInvalidInput, err)
	}
	if err := analysis.ValidateContext(ctxRecord); err != nil {
		var rerr *rpcerr.Error
		if errors.As(err, &rerr) {
			return analysis.Context{}, rpcerr.Wrap(rerr.Kind, err)
		}
		return analysis.Context{}, err
	}
	return ctxRecord, nil
}

// EncodeContext is DecodeContext's inverse: it restores the external wire
// shape (including the stuck_description scalar demotion) from an
// internal Context, used for the name-mapping round-trip property.
func EncodeContext(ctxRecord analysis.Context) (map[string]any, error) {
	raw, err := json.Marshal(ctxRecord)
	if err != nil {
		return nil, rpcerr.Wrap(rpcerr.KindInternal, err)
	}
	var internal map[string]any
	if err := json.Unmarshal(raw, &internal); err != nil {
		return nil, rpcerr.Wrap(rpcerr.KindInternal, err)
	}
	return ToExternal(internal), nil
}
