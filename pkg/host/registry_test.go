package host

import (
	"errors"
	"testing"
)

type fullSource struct {
	ticks     int
	renders   int
	updates   int
	destroyed int
}

func (s *fullSource) Name() string      { return "Full Source" }
func (s *fullSource) Update(_ Settings) { s.updates++ }
func (s *fullSource) Render()           { s.renders++ }
func (s *fullSource) Tick(_ float32)    { s.ticks++ }
func (s *fullSource) Width() uint32     { return 640 }
func (s *fullSource) Height() uint32    { return 480 }
func (s *fullSource) Destroy() error    { s.destroyed++; return nil }

type bareSource struct{}

func (s *bareSource) Destroy() error { return nil }

func newFull(_ Settings, _ Graphics) (*fullSource, error) { return &fullSource{}, nil }
func newBare(_ Settings, _ Graphics) (*bareSource, error) { return &bareSource{}, nil }

func TestBuildRejectsUnimplementedCapability(t *testing.T) {
	tests := []struct {
		name   string
		enable func(b *SourceBuilder[*bareSource]) *SourceBuilder[*bareSource]
	}{
		{"get_name", (*SourceBuilder[*bareSource]).EnableGetName},
		{"update", (*SourceBuilder[*bareSource]).EnableUpdate},
		{"video_render", (*SourceBuilder[*bareSource]).EnableVideoRender},
		{"video_tick", (*SourceBuilder[*bareSource]).EnableVideoTick},
		{"get_width", (*SourceBuilder[*bareSource]).EnableGetWidth},
		{"get_height", (*SourceBuilder[*bareSource]).EnableGetHeight},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := NewSourceBuilder("bare", SourceInput, newBare)
			_, err := tt.enable(b).Build()
			if !errors.Is(err, ErrCapabilityNotImplemented) {
				t.Fatalf("Build() error = %v, want ErrCapabilityNotImplemented", err)
			}
		})
	}
}

func TestBuildAllCapabilities(t *testing.T) {
	info, err := NewSourceBuilder("full", SourceInput, newFull).
		EnableGetName().
		EnableUpdate().
		EnableVideoRender().
		EnableVideoTick().
		EnableGetWidth().
		EnableGetHeight().
		Build()
	if err != nil {
		t.Fatalf("Build: unexpected error: %v", err)
	}
	if info.Name() != "Full Source" {
		t.Errorf("Name() = %q, want %q", info.Name(), "Full Source")
	}
	want := CapGetName | CapUpdate | CapVideoRender | CapVideoTick | CapGetWidth | CapGetHeight
	if info.Caps != want {
		t.Errorf("Caps = %v, want %v", info.Caps, want)
	}
}

func TestModuleRegisterAndCreate(t *testing.T) {
	m := NewModule("test", "test module", "tester")

	info, err := NewSourceBuilder("full", SourceInput, newFull).
		EnableVideoTick().
		EnableGetWidth().
		Build()
	if err != nil {
		t.Fatalf("Build: unexpected error: %v", err)
	}
	if err := m.RegisterSource(info); err != nil {
		t.Fatalf("RegisterSource: unexpected error: %v", err)
	}
	if err := m.RegisterSource(info); !errors.Is(err, ErrDuplicateSource) {
		t.Fatalf("RegisterSource twice: error = %v, want ErrDuplicateSource", err)
	}
	if _, err := m.Create("missing", nil, nil); !errors.Is(err, ErrUnknownSource) {
		t.Fatalf("Create(missing): error = %v, want ErrUnknownSource", err)
	}

	h, err := m.Create("full", Settings{}, nil)
	if err != nil {
		t.Fatalf("Create: unexpected error: %v", err)
	}
	src := h.Instance().(*fullSource)

	h.Tick(0.016)
	h.Render() // not enabled
	h.Update(Settings{"k": "v"})
	if src.ticks != 1 || src.renders != 0 || src.updates != 0 {
		t.Fatalf("dispatch: ticks=%d renders=%d updates=%d, want 1 0 0", src.ticks, src.renders, src.updates)
	}
	if h.Width() != 640 {
		t.Errorf("Width() = %d, want 640", h.Width())
	}
	if h.Height() != 0 {
		t.Errorf("Height() = %d, want 0 (capability disabled)", h.Height())
	}
	if info.Name() != "full" {
		t.Errorf("Name() without get_name = %q, want id", info.Name())
	}

	if err := h.Destroy(); err != nil {
		t.Fatalf("Destroy: unexpected error: %v", err)
	}
	_ = h.Destroy()
	h.Tick(0.016)
	if src.destroyed != 1 || src.ticks != 1 {
		t.Fatalf("after destroy: destroyed=%d ticks=%d, want 1 1", src.destroyed, src.ticks)
	}
}

func TestCreateErrorReturnsNoHandle(t *testing.T) {
	m := NewModule("test", "", "")
	boom := errors.New("boom")
	info, err := NewSourceBuilder("bad", SourceInput, func(_ Settings, _ Graphics) (*bareSource, error) {
		return nil, boom
	}).Build()
	if err != nil {
		t.Fatalf("Build: unexpected error: %v", err)
	}
	if err := m.RegisterSource(info); err != nil {
		t.Fatalf("RegisterSource: unexpected error: %v", err)
	}
	h, err := m.Create("bad", nil, nil)
	if !errors.Is(err, boom) {
		t.Fatalf("Create: error = %v, want boom", err)
	}
	if h != nil {
		t.Fatalf("Create: handle = %v, want nil", h)
	}
}

func TestSettingsAccessors(t *testing.T) {
	s := Settings{
		"path":   "avatar.png",
		"empty":  "",
		"float":  0.25,
		"int":    512,
		"numstr": "42",
	}
	if got := s.String("path", "x"); got != "avatar.png" {
		t.Errorf("String(path) = %q", got)
	}
	if got := s.String("empty", "def"); got != "def" {
		t.Errorf("String(empty) = %q, want def", got)
	}
	if got := s.Float("float", 0); got != 0.25 {
		t.Errorf("Float(float) = %v", got)
	}
	if got := s.Float("int", 0); got != 512 {
		t.Errorf("Float(int) = %v", got)
	}
	if got := s.Int("numstr", 0); got != 42 {
		t.Errorf("Int(numstr) = %v", got)
	}
	if got := s.Int("missing", 7); got != 7 {
		t.Errorf("Int(missing) = %v, want 7", got)
	}
}
