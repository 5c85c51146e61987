// Package activation aggregates mod and modpack activation into tri-state
// values and decides when the activation templates are written.
//
// The aggregator reacts to change sets rather than to per-entity events.
// Outside a batch each change set triggers one recompute and one write.
// Inside BeginUpdateTemplates/EndUpdateTemplates change sets only mark the
// batch dirty, and the outermost End performs a single recompute and write
// however many toggles happened in between.
package activation
