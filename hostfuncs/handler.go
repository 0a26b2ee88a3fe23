package hostfuncs

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/reglet-dev/native-starter/binding"
	"github.com/reglet-dev/native-starter/domain/entities"
	domainerrors "github.com/reglet-dev/native-starter/domain/errors"
)

// HostFunc is a generic function signature for host functions.
// It accepts a context and a typed request, and returns a typed response.
type HostFunc[Req any, Resp any] func(context.Context, Req) Resp

// ByteHandler is a function that accepts raw bytes (JSON) and returns raw bytes (JSON).
// This is the common interface that WASM runtimes can easily use.
type ByteHandler func(context.Context, []byte) ([]byte, error)

// NewJSONHandler wraps a typed HostFunc into a ByteHandler.
// It handles the JSON unmarshalling of the request and marshalling of the response.
// A request that is not valid JSON yields a VALIDATION_ERROR response, not a Go error.
func NewJSONHandler[Req any, Resp any](fn HostFunc[Req, Resp]) ByteHandler {
	return func(ctx context.Context, payload []byte) ([]byte, error) {
		var req Req
		if len(payload) > 0 {
			if err := json.Unmarshal(payload, &req); err != nil {
				return NewValidationError("failed to unmarshal request: " + err.Error()).ToJSON(), nil
			}
		}

		resp := fn(ctx, req)

		respBytes, err := json.Marshal(resp)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal response: %w", err)
		}

		return respBytes, nil
	}
}

// NewExportHandler adapts a binding export to the JSON channel. Arguments are
// decoded with numbers kept exact and handed to the export untouched, so the
// binding layer alone decides what is a valid i32.
func NewExportHandler(exp binding.Export) ByteHandler {
	return NewJSONHandler(func(ctx context.Context, req entities.CallRequest) entities.CallResponse {
		args, err := binding.DecodeArgs(req.Args)
		if err != nil {
			return entities.CallResponse{
				Error: domainerrors.ToErrorDetail(&domainerrors.WireFormatError{
					Operation: "decode",
					Type:      "CallRequest",
					Err:       err,
				}),
			}
		}

		value, err := exp.Invoke(ctx, args)
		if err != nil {
			return entities.CallResponse{Error: domainerrors.ToErrorDetail(err)}
		}
		return entities.CallResponse{Value: value}
	})
}
