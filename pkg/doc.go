// Package pkg provides the libraries behind stackscroll.
//
// # Overview
//
// Stackscroll lays out a vertical list whose items collapse into piles at the
// top and bottom edges of the viewport instead of scrolling out of view. The
// pkg directory is organized into three areas:
//
//  1. Engine: [units] (dp to px), [stack] (windowing and pile layout) and
//     [pool] (view recycling)
//  2. Domain: [cards] (a coloured card deck hosting the engine), [trace]
//     (recorded frames and their JSON, SVG and text sinks) and [config]
//  3. Tooling: [simulate] (script replay with caching), [session] and
//     [server] (HTTP preview), [cache], [errors], [observability] and
//     [buildinfo]
//
// # Architecture
//
// A simulation flows through the packages like this:
//
//	config.Config
//	     ↓
//	cards.Deck ──hosts── stack.Engine   (layout + scroll passes)
//	     ↓
//	trace.Trace                          (one frame per pass)
//	     ↓
//	JSON / SVG / text
//
// # Quick Start
//
//	deck, _ := cards.New(cfg.DeckOptions())
//	e := stack.New[*cards.Card](deck, cfg.EngineOptions()...)
//	if err := e.Layout(); err != nil {
//	    return err
//	}
//	applied, _ := e.Scroll(120)
//	for _, it := range e.Items() {
//	    fmt.Println(it.Index, it.Rect.Top)
//	}
package pkg
