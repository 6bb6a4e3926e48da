package gather

import (
	"context"
	"sync"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"
)

// sheetTracker records CSS.styleSheetAdded headers so rule descriptors
// can be joined with their stylesheet identity (URL, inline position,
// sourceURL-comment flag). Subscribe before enabling the CSS domain:
// enabling replays headers for already-loaded sheets.
type sheetTracker struct {
	mu      sync.Mutex
	headers map[proto.CSSStyleSheetID]*proto.CSSCSSStyleSheetHeader
}

func trackStyleSheets(ctx context.Context, page *rod.Page) *sheetTracker {
	t := &sheetTracker{headers: make(map[proto.CSSStyleSheetID]*proto.CSSCSSStyleSheetHeader)}

	wait := page.Context(ctx).EachEvent(func(e *proto.CSSStyleSheetAdded) {
		t.mu.Lock()
		t.headers[e.Header.StyleSheetID] = e.Header
		t.mu.Unlock()
	})
	go wait()

	return t
}

// snapshot returns a copy of the collected headers.
func (t *sheetTracker) snapshot() map[proto.CSSStyleSheetID]*proto.CSSCSSStyleSheetHeader {
	t.mu.Lock()
	defer t.mu.Unlock()

	out := make(map[proto.CSSStyleSheetID]*proto.CSSCSSStyleSheetHeader, len(t.headers))
	for id, h := range t.headers {
		out[id] = h
	}
	return out
}
