package wasm

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"
	"go.uber.org/zap"

	wasmapi "github.com/woxQAQ/termwire/api/wasm"
)

// InstanceManager creates and manages guest module instances.
type InstanceManager struct {
	runtime   *Runtime
	logger    *zap.Logger
	hostFuncs *HostFunctions

	// The env host module is instantiated once per runtime; every guest
	// instance imports from it.
	hostOnce sync.Once
	hostErr  error
}

// NewInstanceManager creates an instance manager.
func NewInstanceManager(runtime *Runtime, hostFuncs *HostFunctions, logger *zap.Logger) *InstanceManager {
	return &InstanceManager{
		runtime:   runtime,
		hostFuncs: hostFuncs,
		logger:    logger.With(zap.String("component", "wasm-instance")),
	}
}

// InstanceConfig holds configuration for creating instances.
type InstanceConfig struct {
	// Module name to instantiate, as registered in the compile cache.
	ModuleName string

	// Instance ID. Generated when empty.
	InstanceID string
}

// Instance is an instantiated guest module with its boundary exports
// resolved.
type Instance struct {
	module  api.Module
	runtime *Runtime

	ID        string
	Name      string
	CreatedAt int64

	// Exported functions, resolved and validated at instantiation.
	exports map[string]api.Function
}

// Instantiate creates an instance from a compiled module. Terminal guests
// are reactors: _initialize runs once and the module stays resident,
// driven through its exports. A guest missing any boundary export fails
// here rather than at first call.
func (m *InstanceManager) Instantiate(ctx context.Context, config *InstanceConfig) (*Instance, error) {
	compiled, ok := m.runtime.GetCompiledModule(config.ModuleName)
	if !ok {
		return nil, &ModuleNotFoundError{ModuleName: config.ModuleName}
	}

	if max := m.runtime.config.MaxInstances; max > 0 && m.runtime.InstanceCount() >= max {
		return nil, &TooManyInstancesError{Limit: max}
	}

	instanceID := config.InstanceID
	if instanceID == "" {
		instanceID = generateInstanceID()
	}

	m.logger.Info("Instantiating guest module",
		zap.String("module", config.ModuleName),
		zap.String("instance_id", instanceID),
	)

	if err := m.instantiateHostModule(ctx); err != nil {
		return nil, fmt.Errorf("failed to instantiate host module: %w", err)
	}

	moduleConfig := wazero.NewModuleConfig().
		WithName(instanceID).
		WithStartFunctions("_initialize")

	module, err := m.runtime.runtime.InstantiateModule(ctx, compiled.Module, moduleConfig)
	if err != nil {
		return nil, &InstantiationError{
			ModuleName: config.ModuleName,
			InstanceID: instanceID,
			Err:        err,
		}
	}

	exports, err := resolveExports(module, config.ModuleName)
	if err != nil {
		_ = module.Close(ctx)
		return nil, err
	}

	instance := &Instance{
		module:    module,
		runtime:   m.runtime,
		ID:        instanceID,
		Name:      config.ModuleName,
		CreatedAt: time.Now().Unix(),
		exports:   exports,
	}

	m.runtime.StoreInstance(instanceID, instance)

	m.logger.Info("Module instantiated",
		zap.String("instance_id", instanceID),
		zap.Int("exported_functions", len(exports)),
	)

	return instance, nil
}

// instantiateHostModule builds and instantiates the env module exporting
// host_log. Idempotent; guests resolve their imports against it.
func (m *InstanceManager) instantiateHostModule(ctx context.Context) error {
	m.hostOnce.Do(func() {
		_, m.hostErr = m.runtime.runtime.NewHostModuleBuilder(wasmapi.HostModuleName).
			NewFunctionBuilder().
			WithFunc(m.hostFuncs.hostLog).
			WithParameterNames("level", "ptr", "length").
			Export(wasmapi.HostLogName).
			Instantiate(ctx)
	})
	return m.hostErr
}

// resolveExports caches references to every boundary export, failing on
// the first missing one.
func resolveExports(module api.Module, moduleName string) (map[string]api.Function, error) {
	exports := make(map[string]api.Function, len(wasmapi.GuestFunctions))
	for _, name := range wasmapi.GuestFunctions {
		fn := module.ExportedFunction(name)
		if fn == nil {
			return nil, &FunctionNotFoundError{ModuleName: moduleName, FunctionName: name}
		}
		exports[name] = fn
	}
	return exports, nil
}

// Close closes the instance and drops it from runtime tracking.
func (i *Instance) Close(ctx context.Context) error {
	i.runtime.DeleteInstance(i.ID)
	return i.module.Close(ctx)
}

// Memory returns a bounds-checked view of the instance's linear memory.
func (i *Instance) Memory() *Memory {
	return NewMemory(i.module)
}

// call invokes a cached guest export.
func (i *Instance) call(ctx context.Context, name string, params ...uint64) ([]uint64, error) {
	fn, ok := i.exports[name]
	if !ok {
		return nil, &FunctionNotFoundError{ModuleName: i.Name, FunctionName: name}
	}

	results, err := fn.Call(ctx, params...)
	if err != nil {
		return nil, &GuestCallError{ModuleName: i.Name, FunctionName: name, Err: err}
	}
	return results, nil
}

// generateInstanceID produces a unique instance ID. IDs double as wazero
// module names, which must be unique within a runtime.
func generateInstanceID() string {
	return fmt.Sprintf("inst-%d", time.Now().UnixNano())
}
