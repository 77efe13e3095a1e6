package script

import (
	"context"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	lua "github.com/yuin/gopher-lua"
)

// FuncName is the global function a script must define.
const FuncName = "normalize"

// DefaultTimeout bounds a single normalize call.
const DefaultTimeout = time.Second

// Script is a loaded Lua normaliser. It is safe for concurrent use; calls
// are serialized because an LState is single-threaded.
type Script struct {
	mu      sync.Mutex
	L       *lua.LState
	fn      *lua.LFunction
	name    string
	timeout time.Duration
	closed  bool
}

// Option configures a Script.
type Option func(*Script)

// WithTimeout sets the per-call timeout. Zero or negative disables it.
func WithTimeout(d time.Duration) Option {
	return func(s *Script) {
		s.timeout = d
	}
}

// Load reads and runs the script at path.
func Load(path string, opts ...Option) (*Script, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading script: %w", err)
	}
	return load(path, string(src), opts)
}

// LoadString runs the script source src.
func LoadString(src string, opts ...Option) (*Script, error) {
	return load("<string>", src, opts)
}

func load(name, src string, opts []Option) (*Script, error) {
	s := &Script{
		name:    name,
		timeout: DefaultTimeout,
	}
	for _, opt := range opts {
		opt(s)
	}

	s.L = newSandbox()

	ctx, cancel := s.callContext()
	defer cancel()
	s.L.SetContext(ctx)
	defer s.L.RemoveContext()

	err := protect(func() error {
		chunk, err := s.L.Load(strings.NewReader(src), name)
		if err != nil {
			return err
		}
		s.L.Push(chunk)
		return s.L.PCall(0, lua.MultRet, nil)
	})
	if err != nil {
		s.L.Close()
		return nil, fmt.Errorf("loading %s: %w", name, err)
	}

	fn, ok := s.L.GetGlobal(FuncName).(*lua.LFunction)
	if !ok {
		s.L.Close()
		return nil, fmt.Errorf("%w in %s", ErrScriptNotFound, name)
	}
	s.fn = fn
	s.L.SetTop(0)
	return s, nil
}

// newSandbox returns a state with only the safe standard libraries.
func newSandbox() *lua.LState {
	L := lua.NewState(lua.Options{SkipOpenLibs: true})

	lua.OpenBase(L)
	lua.OpenTable(L)
	lua.OpenString(L)
	lua.OpenMath(L)

	for _, name := range []string{"dofile", "loadfile", "load", "loadstring", "require", "module"} {
		L.SetGlobal(name, lua.LNil)
	}
	return L
}

// Name returns the script path, or "<string>" for inline scripts.
func (s *Script) Name() string {
	return s.name
}

// Transform calls normalize(text). It implements fuzzy.Transformer.
func (s *Script) Transform(text string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return "", ErrClosed
	}

	ctx, cancel := s.callContext()
	defer cancel()
	s.L.SetContext(ctx)
	defer s.L.RemoveContext()

	top := s.L.GetTop()
	defer s.L.SetTop(top)

	err := protect(func() error {
		s.L.Push(s.fn)
		s.L.Push(lua.LString(text))
		return s.L.PCall(1, 1, nil)
	})
	if err != nil {
		return "", fmt.Errorf("%s: %w", s.name, err)
	}

	ret, ok := s.L.Get(-1).(lua.LString)
	if !ok {
		return "", fmt.Errorf("%w, got %s", ErrBadResult, s.L.Get(-1).Type())
	}
	return string(ret), nil
}

func (s *Script) callContext() (context.Context, context.CancelFunc) {
	if s.timeout <= 0 {
		return context.WithCancel(context.Background())
	}
	return context.WithTimeout(context.Background(), s.timeout)
}

// Close releases the Lua state. Further calls return ErrClosed.
func (s *Script) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.L.Close()
	s.closed = true
	return nil
}

// protect converts a panic inside the Lua VM into an error.
func protect(fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("lua panic: %v", r)
		}
	}()
	return fn()
}
