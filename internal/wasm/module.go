package wasm

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/klauspost/compress/zstd"
	"go.uber.org/zap"
)

// ModuleLoader loads and compiles guest modules.
type ModuleLoader struct {
	runtime *Runtime
	logger  *zap.Logger
}

// NewModuleLoader creates a module loader.
func NewModuleLoader(runtime *Runtime, logger *zap.Logger) *ModuleLoader {
	return &ModuleLoader{
		runtime: runtime,
		logger:  logger.With(zap.String("component", "wasm-loader")),
	}
}

// ModuleSource represents a source of Wasm bytecode.
type ModuleSource interface {
	// Bytes returns the Wasm bytecode.
	Bytes() ([]byte, error)

	// Name returns an identifier for this module.
	Name() string

	// Size returns the source size in bytes.
	Size() int64
}

// FileModuleSource loads Wasm from a file.
type FileModuleSource struct {
	Path string
}

// Bytes reads the Wasm file.
func (f *FileModuleSource) Bytes() ([]byte, error) {
	return os.ReadFile(f.Path)
}

// Name returns the file path as the module name.
func (f *FileModuleSource) Name() string {
	return f.Path
}

// Size returns the file size.
func (f *FileModuleSource) Size() int64 {
	info, err := os.Stat(f.Path)
	if err != nil {
		return 0
	}
	return info.Size()
}

// ZstdFileSource loads Wasm from a zstd-compressed file. Guest artifacts
// ship compressed to keep bundles small; decompression happens once, at
// load time, and the result lands in the compile cache.
type ZstdFileSource struct {
	Path string
}

// Bytes reads and decompresses the file.
func (z *ZstdFileSource) Bytes() ([]byte, error) {
	compressed, err := os.ReadFile(z.Path)
	if err != nil {
		return nil, err
	}

	dec, err := zstd.NewReader(nil)
	if err != nil {
		return nil, fmt.Errorf("zstd reader: %w", err)
	}
	defer dec.Close()

	return dec.DecodeAll(compressed, nil)
}

// Name returns the file path as the module name.
func (z *ZstdFileSource) Name() string {
	return z.Path
}

// Size returns the compressed file size.
func (z *ZstdFileSource) Size() int64 {
	info, err := os.Stat(z.Path)
	if err != nil {
		return 0
	}
	return info.Size()
}

// MemoryModuleSource loads Wasm from memory.
type MemoryModuleSource struct {
	ModuleName string
	Data       []byte
}

// Bytes returns the Wasm bytecode.
func (m *MemoryModuleSource) Bytes() ([]byte, error) {
	return m.Data, nil
}

// Name returns the module name.
func (m *MemoryModuleSource) Name() string {
	return m.ModuleName
}

// Size returns the data size.
func (m *MemoryModuleSource) Size() int64 {
	return int64(len(m.Data))
}

// FileSource picks the source type for path by extension: .zst artifacts
// decompress on load, everything else is read as-is.
func FileSource(path string) ModuleSource {
	if strings.HasSuffix(path, ".zst") {
		return &ZstdFileSource{Path: path}
	}
	return &FileModuleSource{Path: path}
}

// LoadModule loads a guest module from a source, compiling it if not
// already cached.
func (l *ModuleLoader) LoadModule(ctx context.Context, source ModuleSource) (*CompiledModule, error) {
	if cached, ok := l.runtime.GetCompiledModule(source.Name()); ok {
		l.logger.Debug("Module cache hit",
			zap.String("module", source.Name()),
		)
		return cached, nil
	}

	wasmBytes, err := source.Bytes()
	if err != nil {
		return nil, fmt.Errorf("failed to read module %s: %w", source.Name(), err)
	}

	l.logger.Info("Compiling guest module",
		zap.String("module", source.Name()),
		zap.Int64("size_bytes", source.Size()),
	)

	startTime := time.Now()

	// CompileModule decodes and validates the binary. CPU-intensive, done
	// once per module.
	compiled, err := l.runtime.runtime.CompileModule(ctx, wasmBytes)
	if err != nil {
		return nil, &CompilationError{
			ModuleName: source.Name(),
			Err:        err,
		}
	}

	compiledModule := &CompiledModule{
		Module:     compiled,
		Name:       source.Name(),
		Source:     source.Name(),
		SizeBytes:  source.Size(),
		CompiledAt: time.Now().Unix(),
	}

	l.runtime.StoreCompiledModule(compiledModule)

	l.logger.Info("Module compiled",
		zap.String("module", source.Name()),
		zap.Duration("duration", time.Since(startTime)),
	)

	return compiledModule, nil
}

// LoadModuleFromFile loads from a file path, transparently handling
// compressed artifacts.
func (l *ModuleLoader) LoadModuleFromFile(ctx context.Context, path string) (*CompiledModule, error) {
	return l.LoadModule(ctx, FileSource(path))
}

// LoadModuleFromMemory loads from a byte slice.
func (l *ModuleLoader) LoadModuleFromMemory(ctx context.Context, name string, data []byte) (*CompiledModule, error) {
	return l.LoadModule(ctx, &MemoryModuleSource{ModuleName: name, Data: data})
}
