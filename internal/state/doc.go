// Package state provides the change notifier that connects notebook
// mutations to whatever is presenting them.
//
// # Overview
//
// The registry and favorites manager publish an Event after every durable
// write. Presentation layers such as the Bubble Tea UI subscribe and re-read
// the data they render. Events carry no payload beyond the kind of collection
// that changed and a monotonically increasing revision; consumers always pull
// fresh data from the notebook.
//
// # Architecture
//
//	Producers:                       Consumers:
//	┌──────────────────┐            ┌──────────────────┐
//	│ Registry.Add()   │            │ UI waitForChange │
//	│ Favorites.Add()  │            │      ↓           │
//	│ SetLocked()      │───Notify──→│ re-read notebook │
//	│ File.Watch()     │  (mutex)   │      ↓           │
//	└──────────────────┘            │ re-render        │
//	                                └──────────────────┘
//
// # Delivery Semantics
//
// Notify runs synchronously right after the durable write returns, so there
// is no settle delay between persisting and recomputing dependent state.
//
// Each subscriber owns a buffered channel with a single slot:
//
//   - An idle subscriber receives every event.
//   - A busy subscriber has its pending event replaced by the newer one.
//   - Notify never blocks on a subscriber.
//
// Since consumers re-read the whole notebook on every event, collapsing a
// burst into its last event loses nothing.
//
// # Usage Example
//
//	var n state.Notifier
//	events, unsubscribe := n.Subscribe()
//	defer unsubscribe()
//
//	go func() {
//		for ev := range events {
//			render(ev.Revision)
//		}
//	}()
//
//	n.Notify(state.KindTabs)
//
// # Testing Considerations
//
// The zero value is ready to use. Tests can subscribe before acting and
// assert on the received Kind and Revision, or call Revision() to count
// how many notifications an operation produced.
package state
