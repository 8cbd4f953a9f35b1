package host

// Handle is the host's view of a live source. Calls for capabilities the
// source did not enable are no-ops, as in a real host that never invokes
// an unset callback.
type Handle struct {
	info      *SourceInfo
	inst      Instance
	destroyed bool
}

// Info returns the source description.
func (h *Handle) Info() *SourceInfo { return h.info }

// Instance returns the underlying source.
func (h *Handle) Instance() Instance { return h.inst }

func (h *Handle) live(c Capability) bool {
	return !h.destroyed && h.info.Caps.Has(c)
}

// Tick forwards a host update cycle.
func (h *Handle) Tick(seconds float32) {
	if h.live(CapVideoTick) {
		h.inst.(Ticker).Tick(seconds)
	}
}

// Render forwards a draw request.
func (h *Handle) Render() {
	if h.live(CapVideoRender) {
		h.inst.(Renderer).Render()
	}
}

// Update forwards new settings.
func (h *Handle) Update(settings Settings) {
	if h.live(CapUpdate) {
		h.inst.(Updater).Update(settings)
	}
}

// Width returns the source width, or 0 when not reported.
func (h *Handle) Width() uint32 {
	if h.live(CapGetWidth) {
		return h.inst.(WidthGetter).Width()
	}
	return 0
}

// Height returns the source height, or 0 when not reported.
func (h *Handle) Height() uint32 {
	if h.live(CapGetHeight) {
		return h.inst.(HeightGetter).Height()
	}
	return 0
}

// Destroy tears the source down. Later calls are no-ops.
func (h *Handle) Destroy() error {
	if h.destroyed {
		return nil
	}
	h.destroyed = true
	return h.inst.Destroy()
}
