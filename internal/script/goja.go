package script

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/dop251/goja"

	"r2dash/internal/command"
)

// Goja is the JavaScript runtime. Each module gets its own VM.
type Goja struct{}

func NewGoja() Goja { return Goja{} }

func (Goja) Compile(src Source, caps Capabilities) (Module, error) {
	prog, err := goja.Compile(src.Name+".js", src.Code, false)
	if err != nil {
		return nil, fmt.Errorf("compile %s: %w", src.Name, err)
	}
	m := &gojaModule{vm: goja.New(), prog: prog, caps: caps, ctx: context.Background()}
	if err := m.install(); err != nil {
		return nil, fmt.Errorf("install globals: %w", err)
	}
	return m, nil
}

type gojaModule struct {
	mu   sync.Mutex
	vm   *goja.Runtime
	prog *goja.Program
	caps Capabilities
	ctx  context.Context // of the call in progress, guarded by mu
}

// install exposes the sys object and console.log.
func (m *gojaModule) install() error {
	sys := m.vm.NewObject()
	if err := sys.Set("name", m.caps.Name); err != nil {
		return err
	}
	if err := sys.Set("send", m.send); err != nil {
		return err
	}
	if err := sys.Set("fetch", m.fetch); err != nil {
		return err
	}
	if err := sys.Set("print", m.print); err != nil {
		return err
	}
	if err := sys.Set("sleep", m.sleep); err != nil {
		return err
	}
	console := m.vm.NewObject()
	if err := console.Set("log", m.print); err != nil {
		return err
	}
	if err := m.vm.Set("console", console); err != nil {
		return err
	}
	return m.vm.Set("sys", sys)
}

func (m *gojaModule) send(call goja.FunctionCall) goja.Value {
	for _, arg := range call.Arguments {
		if goja.IsUndefined(arg) || goja.IsNull(arg) {
			continue
		}
		cmds, err := command.FromValue(arg.Export())
		if err != nil && m.caps.Reject != nil {
			m.caps.Reject(err)
		}
		if m.caps.Send == nil {
			continue
		}
		for _, c := range cmds {
			m.caps.Send(c)
		}
	}
	return goja.Undefined()
}

func (m *gojaModule) fetch(call goja.FunctionCall) goja.Value {
	if m.caps.Fetch == nil {
		panic(m.vm.NewGoError(fmt.Errorf("fetch unavailable")))
	}
	method := call.Argument(0).String()
	url := call.Argument(1).String()
	body, err := m.caps.Fetch(m.ctx, method, url)
	if err != nil {
		panic(m.vm.NewGoError(err))
	}
	return m.vm.ToValue(body)
}

func (m *gojaModule) print(call goja.FunctionCall) goja.Value {
	parts := make([]string, len(call.Arguments))
	for i, a := range call.Arguments {
		parts[i] = a.String()
	}
	if m.caps.Print != nil {
		m.caps.Print(strings.Join(parts, " "))
	}
	return goja.Undefined()
}

func (m *gojaModule) sleep(call goja.FunctionCall) goja.Value {
	d := time.Duration(call.Argument(0).ToInteger()) * time.Millisecond
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
	case <-m.ctx.Done():
		panic(m.vm.NewGoError(m.ctx.Err()))
	}
	return goja.Undefined()
}

// guard serializes access to the VM, interrupts it when ctx ends and turns
// panics into errors.
func (m *gojaModule) guard(ctx context.Context, fn func() (goja.Value, error)) (v goja.Value, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.vm.ClearInterrupt()
	m.ctx = ctx
	stop := context.AfterFunc(ctx, func() { m.vm.Interrupt(ctx.Err()) })
	defer func() {
		stop()
		m.ctx = context.Background()
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return fn()
}

func (m *gojaModule) Run(ctx context.Context) error {
	_, err := m.guard(ctx, func() (goja.Value, error) {
		return m.vm.RunProgram(m.prog)
	})
	return err
}

func (m *gojaModule) Has(entry string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := goja.AssertFunction(m.vm.Get(entry))
	return ok
}

func (m *gojaModule) Call(ctx context.Context, entry string, args ...any) (any, error) {
	v, err := m.guard(ctx, func() (goja.Value, error) {
		fn, ok := goja.AssertFunction(m.vm.Get(entry))
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrNoEntrypoint, entry)
		}
		vals := make([]goja.Value, len(args))
		for i, a := range args {
			vals[i] = m.vm.ToValue(a)
		}
		return fn(goja.Undefined(), vals...)
	})
	if err != nil {
		return nil, err
	}
	if v == nil || goja.IsUndefined(v) || goja.IsNull(v) {
		return nil, nil
	}
	return v.Export(), nil
}
