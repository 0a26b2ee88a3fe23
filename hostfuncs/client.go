package hostfuncs

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/reglet-dev/native-starter/binding"
	"github.com/reglet-dev/native-starter/domain/entities"
	domainerrors "github.com/reglet-dev/native-starter/domain/errors"
	"github.com/reglet-dev/native-starter/domain/ports"
)

var _ ports.Native = (*Client)(nil)

// ChannelError is returned by Client when the channel itself rejected the
// request (unknown function, malformed payload, recovered panic).
type ChannelError struct {
	Function string
	Response ErrorResponse
}

func (e *ChannelError) Error() string {
	return fmt.Sprintf("host function %s: %s (%s)", e.Function, e.Response.Message, e.Response.Error)
}

// ToErrorDetail implements errors.DetailedError.
func (e *ChannelError) ToErrorDetail() *entities.ErrorDetail {
	code := domainerrors.CodeGenericFailure
	if e.Response.Code == 404 {
		code = domainerrors.CodeNotFound
	}
	return &entities.ErrorDetail{
		Message: e.Response.Message,
		Type:    "channel",
		Code:    code,
	}
}

// Client calls exports through a HandlerRegistry the way a remote host would:
// arguments are marshalled to JSON, and failures come back as domain errors
// rebuilt from their wire code.
type Client struct {
	registry *HandlerRegistry
}

// NewClient creates a Client over the given registry.
func NewClient(registry *HandlerRegistry) *Client {
	return &Client{registry: registry}
}

// Call invokes the named export. The returned value is the JSON decoded
// result with numbers kept as json.Number.
func (c *Client) Call(ctx context.Context, name string, args ...any) (any, error) {
	raw := make([]json.RawMessage, len(args))
	for i, a := range args {
		data, err := json.Marshal(a)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal argument %d: %w", i, err)
		}
		raw[i] = data
	}

	payload, err := json.Marshal(entities.CallRequest{Args: raw})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	respBytes, err := c.registry.Invoke(ctx, name, payload)
	if err != nil {
		return nil, fmt.Errorf("host function %s: %w", name, err)
	}

	if errResp, ok := ParseErrorResponse(respBytes); ok {
		return nil, &ChannelError{Function: name, Response: errResp}
	}

	var resp struct {
		Error *entities.ErrorDetail `json:"error"`
		Value json.RawMessage       `json:"value"`
	}
	if err := json.Unmarshal(respBytes, &resp); err != nil {
		return nil, &domainerrors.WireFormatError{Operation: "decode", Type: "CallResponse", Err: err}
	}
	if resp.Error != nil {
		return nil, domainerrors.FromErrorDetail(resp.Error)
	}

	var value any
	if len(resp.Value) > 0 {
		if err := decodeNumber(resp.Value, &value); err != nil {
			return nil, &domainerrors.WireFormatError{Operation: "decode", Type: "CallResponse.value", Err: err}
		}
	}
	return value, nil
}

// Sum coerces a and b to i32, then calls the sum export and converts the
// result to int32. Values JSON cannot carry (NaN, infinities, funcs) are
// rejected as type mismatches before anything is marshalled.
func (c *Client) Sum(ctx context.Context, a, b any) (int32, error) {
	x, y, err := binding.SumOperands(a, b)
	if err != nil {
		return 0, err
	}
	v, err := c.Call(ctx, binding.ExportSum, x, y)
	if err != nil {
		return 0, err
	}
	n, ok := v.(json.Number)
	if !ok {
		return 0, fmt.Errorf("sum returned %T, want number", v)
	}
	i, err := n.Int64()
	if err != nil {
		return 0, fmt.Errorf("sum returned %q: %w", n, err)
	}
	return int32(i), nil //nolint:gosec // G115: the export only returns i32 values
}

// Hello calls the hello export.
func (c *Client) Hello(ctx context.Context) (string, error) {
	v, err := c.Call(ctx, "hello")
	if err != nil {
		return "", err
	}
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("hello returned %T, want string", v)
	}
	return s, nil
}
