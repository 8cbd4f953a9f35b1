package host

import (
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"
)

var (
	// ErrCapabilityNotImplemented is returned at build time when a
	// capability is enabled on a source that lacks the matching method.
	ErrCapabilityNotImplemented = errors.New("host: capability not implemented")
	// ErrDuplicateSource is returned when a source id is registered twice.
	ErrDuplicateSource = errors.New("host: duplicate source id")
	// ErrUnknownSource is returned when creating an unregistered source id.
	ErrUnknownSource = errors.New("host: unknown source id")
)

// SourceType classifies a source the way the host lists it.
type SourceType int

const (
	SourceInput SourceType = iota
	SourceFilter
	SourceTransition
)

func (t SourceType) String() string {
	switch t {
	case SourceInput:
		return "input"
	case SourceFilter:
		return "filter"
	case SourceTransition:
		return "transition"
	default:
		return fmt.Sprintf("SourceType(%d)", int(t))
	}
}

// Capability is an optional behaviour a source announces to the host.
type Capability uint

const (
	CapGetName Capability = 1 << iota
	CapUpdate
	CapVideoRender
	CapVideoTick
	CapGetWidth
	CapGetHeight
)

var capabilityNames = []struct {
	cap  Capability
	name string
}{
	{CapGetName, "get_name"},
	{CapUpdate, "update"},
	{CapVideoRender, "video_render"},
	{CapVideoTick, "video_tick"},
	{CapGetWidth, "get_width"},
	{CapGetHeight, "get_height"},
}

// Has reports whether every bit of c2 is set in c.
func (c Capability) Has(c2 Capability) bool { return c&c2 == c2 }

func (c Capability) String() string {
	var parts []string
	for _, cn := range capabilityNames {
		if c.Has(cn.cap) {
			parts = append(parts, cn.name)
		}
	}
	if len(parts) == 0 {
		return "none"
	}
	return strings.Join(parts, "|")
}

// Instance is one live source created by the host.
type Instance interface {
	Destroy() error
}

// Capability interfaces. Name is static: it is called on the zero value of
// the instance type, so implementations must not touch the receiver.
type (
	NameGetter   interface{ Name() string }
	Updater      interface{ Update(settings Settings) }
	Renderer     interface{ Render() }
	Ticker       interface{ Tick(seconds float32) }
	WidthGetter  interface{ Width() uint32 }
	HeightGetter interface{ Height() uint32 }
)

// SourceInfo is a validated source description ready for registration.
type SourceInfo struct {
	ID     string
	Type   SourceType
	Caps   Capability
	name   string
	create func(Settings, Graphics) (Instance, error)
}

// Name returns the display name, or the id when get_name is not enabled.
func (i *SourceInfo) Name() string {
	if i.name != "" {
		return i.name
	}
	return i.ID
}

// SourceBuilder collects capabilities for a source type T.
type SourceBuilder[T Instance] struct {
	id     string
	typ    SourceType
	caps   Capability
	create func(Settings, Graphics) (T, error)
}

// NewSourceBuilder starts describing a source. T should be a concrete
// pointer type so its method set can be checked at Build time. create must
// return either a fully initialized instance or an error, never both.
func NewSourceBuilder[T Instance](id string, typ SourceType, create func(Settings, Graphics) (T, error)) *SourceBuilder[T] {
	return &SourceBuilder[T]{id: id, typ: typ, create: create}
}

func (b *SourceBuilder[T]) enable(c Capability) *SourceBuilder[T] {
	b.caps |= c
	return b
}

func (b *SourceBuilder[T]) EnableGetName() *SourceBuilder[T]     { return b.enable(CapGetName) }
func (b *SourceBuilder[T]) EnableUpdate() *SourceBuilder[T]      { return b.enable(CapUpdate) }
func (b *SourceBuilder[T]) EnableVideoRender() *SourceBuilder[T] { return b.enable(CapVideoRender) }
func (b *SourceBuilder[T]) EnableVideoTick() *SourceBuilder[T]   { return b.enable(CapVideoTick) }
func (b *SourceBuilder[T]) EnableGetWidth() *SourceBuilder[T]    { return b.enable(CapGetWidth) }
func (b *SourceBuilder[T]) EnableGetHeight() *SourceBuilder[T]   { return b.enable(CapGetHeight) }

// Build checks that T implements every enabled capability.
func (b *SourceBuilder[T]) Build() (*SourceInfo, error) {
	if b.id == "" {
		return nil, fmt.Errorf("host: source id is empty")
	}
	if b.create == nil {
		return nil, fmt.Errorf("host: source %q has no create function", b.id)
	}

	var zero T
	var probe any = zero
	implemented := map[Capability]bool{}
	_, implemented[CapGetName] = probe.(NameGetter)
	_, implemented[CapUpdate] = probe.(Updater)
	_, implemented[CapVideoRender] = probe.(Renderer)
	_, implemented[CapVideoTick] = probe.(Ticker)
	_, implemented[CapGetWidth] = probe.(WidthGetter)
	_, implemented[CapGetHeight] = probe.(HeightGetter)

	for _, cn := range capabilityNames {
		if b.caps.Has(cn.cap) && !implemented[cn.cap] {
			return nil, fmt.Errorf("%w: source %q enables %s", ErrCapabilityNotImplemented, b.id, cn.name)
		}
	}

	info := &SourceInfo{
		ID:   b.id,
		Type: b.typ,
		Caps: b.caps,
		create: func(s Settings, g Graphics) (Instance, error) {
			inst, err := b.create(s, g)
			if err != nil {
				return nil, err
			}
			return inst, nil
		},
	}
	if b.caps.Has(CapGetName) {
		info.name = probe.(NameGetter).Name()
	}
	return info, nil
}

// Module groups the sources a plugin provides.
type Module struct {
	Name        string
	Description string
	Author      string

	mu      sync.RWMutex
	sources map[string]*SourceInfo
}

// NewModule creates an empty module.
func NewModule(name, description, author string) *Module {
	return &Module{
		Name:        name,
		Description: description,
		Author:      author,
		sources:     make(map[string]*SourceInfo),
	}
}

// RegisterSource makes a built source available to the host.
func (m *Module) RegisterSource(info *SourceInfo) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.sources[info.ID]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicateSource, info.ID)
	}
	m.sources[info.ID] = info
	slog.Debug("registered source", "module", m.Name, "id", info.ID, "type", info.Type, "caps", info.Caps)
	return nil
}

// Sources returns the registered sources sorted by id.
func (m *Module) Sources() []*SourceInfo {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]*SourceInfo, 0, len(m.sources))
	for _, info := range m.sources {
		out = append(out, info)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Create instantiates a registered source.
func (m *Module) Create(id string, settings Settings, gfx Graphics) (*Handle, error) {
	m.mu.RLock()
	info, ok := m.sources[id]
	m.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownSource, id)
	}

	inst, err := info.create(settings, gfx)
	if err != nil {
		return nil, fmt.Errorf("host: create %s: %w", id, err)
	}
	return &Handle{info: info, inst: inst}, nil
}
