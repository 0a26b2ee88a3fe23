package host

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/reglet-dev/native-starter/application/manifest"
	"github.com/reglet-dev/native-starter/binding"
	"github.com/reglet-dev/native-starter/domain/entities"
	domainerrors "github.com/reglet-dev/native-starter/domain/errors"
	"github.com/reglet-dev/native-starter/domain/ports"
	wazeroadapter "github.com/reglet-dev/native-starter/infrastructure/wazero"
	"github.com/reglet-dev/native-starter/wireformat"
	"github.com/tetratelabs/wazero/api"
)

var _ ports.Native = (*PluginInstance)(nil)

// Guest exports a native plugin must provide.
const (
	exportDescribe   = "describe"
	exportAllocate   = "allocate"
	exportDeallocate = "deallocate"
)

// moduleAPI is the part of api.Module a PluginInstance uses.
type moduleAPI interface {
	ExportedFunction(name string) api.Function
	Memory() api.Memory
	Close(ctx context.Context) error
}

// Sum coerces a and b to i32, then calls the plugin's sum export. Values
// that fail coercion are rejected here and never cross into the guest.
func (p *PluginInstance) Sum(ctx context.Context, a, b any) (int32, error) {
	x, y, err := binding.SumOperands(a, b)
	if err != nil {
		return 0, err
	}

	results, err := p.call(ctx, binding.ExportSum, api.EncodeI64(int64(x)), api.EncodeI64(int64(y)))
	if err != nil {
		return 0, err
	}
	value, status := wireformat.UnpackSumResult(results[0])
	if err := status.Err(x, y); err != nil {
		return 0, err
	}
	return value, nil
}

// Hello calls the plugin's hello export.
func (p *PluginInstance) Hello(ctx context.Context) (string, error) {
	data, err := p.callBytes(ctx, binding.ExportHello)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// Describe calls the plugin's describe export and validates the manifest
// it returns.
func (p *PluginInstance) Describe(ctx context.Context) (*entities.Manifest, error) {
	data, err := p.callBytes(ctx, exportDescribe)
	if err != nil {
		return nil, err
	}

	var m entities.Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, &domainerrors.WireFormatError{Operation: "decode", Type: "Manifest", Err: err}
	}
	if err := manifest.Validate(&m); err != nil {
		return nil, fmt.Errorf("plugin %s: %w", p.label(), err)
	}
	return &m, nil
}

func (p *PluginInstance) checkExports() error {
	for _, name := range []string{binding.ExportSum, binding.ExportHello, exportDescribe, exportAllocate, exportDeallocate} {
		if p.module.ExportedFunction(name) == nil {
			return fmt.Errorf("plugin %s does not export %q", p.label(), name)
		}
	}
	if p.module.Memory() == nil {
		return fmt.Errorf("plugin %s does not export memory", p.label())
	}
	return nil
}

// call invokes a guest export with one result. A trap comes back as an
// error; the runtime and the host process keep going.
func (p *PluginInstance) call(ctx context.Context, name string, params ...uint64) ([]uint64, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.callLocked(ctx, name, params...)
}

func (p *PluginInstance) callLocked(ctx context.Context, name string, params ...uint64) ([]uint64, error) {
	f := p.module.ExportedFunction(name)
	if f == nil {
		return nil, &domainerrors.UnknownExportError{Name: name}
	}
	if p.name != "" {
		ctx = wazeroadapter.WithPluginName(ctx, p.name)
	}
	results, err := f.Call(ctx, params...)
	if err != nil {
		return nil, fmt.Errorf("plugin %s: %s failed: %w", p.label(), name, err)
	}
	if len(results) == 0 {
		return nil, fmt.Errorf("plugin %s: %s returned no result", p.label(), name)
	}
	return results, nil
}

// callBytes invokes an export returning a packed ptr+len, copies the bytes
// out of guest memory and releases the guest buffer.
func (p *PluginInstance) callBytes(ctx context.Context, name string) ([]byte, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	results, err := p.callLocked(ctx, name)
	if err != nil {
		return nil, err
	}

	ptr, length := wireformat.UnpackPtrLen(results[0])
	if ptr == 0 && length == 0 {
		return nil, fmt.Errorf("plugin %s: %s returned a null response", p.label(), name)
	}
	data, ok := p.module.Memory().Read(ptr, length)
	if !ok {
		return nil, fmt.Errorf("plugin %s: %s response out of bounds (ptr=%d len=%d)", p.label(), name, ptr, length)
	}
	out := make([]byte, len(data))
	copy(out, data)

	if dealloc := p.module.ExportedFunction(exportDeallocate); dealloc != nil {
		if _, err := dealloc.Call(ctx, uint64(ptr), uint64(length)); err != nil {
			return nil, fmt.Errorf("plugin %s: deallocate failed: %w", p.label(), err)
		}
	}
	return out, nil
}

func (p *PluginInstance) label() string {
	if p.name == "" {
		return "<anonymous>"
	}
	return p.name
}
