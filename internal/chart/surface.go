package chart

import (
	"bytes"
	"io"
	"sync"
)

// Surface is the drawing area. Charts are attached to named mount points
// (<figure id="...">); a mount point holds at most one chart at a time.
type Surface struct {
	mu     sync.Mutex
	root   *Element
	mounts map[string]*Element
}

func NewSurface() *Surface {
	return &Surface{
		root:   NewElement("div"),
		mounts: make(map[string]*Element),
	}
}

// Mount returns the figure for id, creating it on first use.
func (s *Surface) Mount(id string) *Element {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.mount(id)
}

func (s *Surface) mount(id string) *Element {
	if fig, ok := s.mounts[id]; ok {
		return fig
	}
	fig := s.root.Append("figure").Attr("id", id)
	s.mounts[id] = fig
	return fig
}

// Replace removes every chart under the mount point and attaches svg in its place.
func (s *Surface) Replace(id string, svg *Element) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fig := s.mount(id)
	for _, old := range fig.ChildrenNamed("svg") {
		old.Remove()
	}
	fig.AppendChild(svg)
}

// Current returns the chart attached to the mount point, or nil.
func (s *Surface) Current(id string) *Element {
	s.mu.Lock()
	defer s.mu.Unlock()
	fig, ok := s.mounts[id]
	if !ok {
		return nil
	}
	svgs := fig.ChildrenNamed("svg")
	if len(svgs) == 0 {
		return nil
	}
	return svgs[len(svgs)-1]
}

// WriteMount serializes one mount point (the figure and its chart).
func (s *Surface) WriteMount(w io.Writer, id string) error {
	s.mu.Lock()
	var buf bytes.Buffer
	if fig, ok := s.mounts[id]; ok {
		_, _ = fig.WriteTo(&buf)
	}
	s.mu.Unlock()
	_, err := w.Write(buf.Bytes())
	return err
}
