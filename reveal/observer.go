package reveal

// Entry is one region's bounding box as reported by the host, in the same
// coordinate space as the viewport.
type Entry struct {
	Key    string `json:"key"`
	Bounds Rect   `json:"bounds"`
}

// Observer evaluates reported geometry against Options and forwards the
// result to a VisibilitySink.
type Observer struct {
	opts Options
	sink VisibilitySink
}

// NewObserver returns an Observer feeding sink.
func NewObserver(sink VisibilitySink, opts Options) *Observer {
	return &Observer{opts: opts, sink: sink}
}

// Process evaluates every entry against viewport and returns the keys that
// became revealed as a result.
func (o *Observer) Process(viewport Rect, entries []Entry) []string {
	var newly []string
	for _, e := range entries {
		if o.sink.OnRegionVisibilityChanged(e.Key, o.opts.Intersecting(viewport, e.Bounds)) {
			newly = append(newly, e.Key)
		}
	}
	return newly
}
