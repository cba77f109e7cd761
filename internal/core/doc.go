// Package core provides the business logic behind the country table.
//
// This package owns the dataset load and every table view built on it,
// independent of any UI or transport layer. It is used by the web handlers
// and the CLI without modification.
//
// # Architecture
//
//   - Loader: the single fetch of the country dataset (see package source).
//     Until it completes the service answers [ErrDataPending]; after a
//     failure it answers [ErrDataUnavailable] forever.
//   - Query: stateless evaluation of a requested filter/sort/page state,
//     used by URL-driven pages.
//   - Views: stateful table views keyed by UUID, each owning its control
//     state. Idle views are evicted by [Service.StartViewReaper].
//
// # Views
//
// A view is created once the data is ready and then mutated through the
// service, which returns the new page after every change:
//
//	id, page, err := svc.CreateView(ctx, 15)
//	page, err = svc.SetFilter(ctx, id, country.ColName, "a")
//	page, err = svc.ToggleSort(ctx, id, country.ColPopulation)
//	page, err = svc.NextPage(ctx, id)
//
// # Error Handling
//
// Technical errors are mapped to user-friendly messages using [MapError].
// Each error category has a unique code for support reference:
//
//   - DATA001-DATA002: Dataset loading (pending, unavailable)
//   - VIEW001-VIEW002: View registry (not found, too many)
//   - COL001, PAGE001: Invalid table controls
//   - REQ001-REQ003: Request errors (body, cancelled, timeout)
//   - RATE001: Per-client rate limit exceeded
package core
