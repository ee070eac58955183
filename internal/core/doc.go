// Package core provides the business logic of the ERP admin dashboard.
//
// Nothing here knows about HTTP or HTML. The web handlers, the CLI and the
// tests all drive the same [Service].
//
// # Customers
//
// Customers live in a [CustomerStore]: an ordered record list plus the
// column registry. The registry always starts with the five builtin columns
// (name, email, phone, category, orders); custom columns follow in the order
// they were added. A custom column's key is derived from its label:
//
//	DeriveColumnKey("Customer Tier") // "customer_tier"
//
// Mutations replace the store's slices instead of editing them, so a
// [Snapshot] can be read without holding any lock. [Derive] turns a snapshot
// and a [ViewQuery] into the visible list. It applies, in order:
//
//  1. free-text search over name, email and phone
//  2. category equality (unless "all")
//  3. order volume: high is more than [HighVolumeThreshold] orders
//  4. per-column filters
//  5. a stable sort on one column
//
// Missing custom values never match a non-empty filter and sort last in
// both directions.
//
// # Projects
//
// Projects and their column definitions come from a [ProjectStore].
// Every store failure is wrapped with [ErrProjectStore]. The two reads of a
// page load run concurrently and fail independently ([Service.LoadProjectBoard]).
//
// # Error Handling
//
// Technical errors are mapped to coded user messages with [MapError]:
//
//   - VAL: validation failures
//   - CUS, COL: customer and column mutations
//   - PRJ: project store failures
//   - EXP: snapshot exports
//   - REQ, RATE: request lifecycle and throttling
//
// # Events and Exports
//
// Successful mutations publish an event through a [Publisher]. A failed
// publish is logged and never fails the mutation. [Service.ExportSnapshot]
// writes the whole store as CSV to a [SnapshotWriter], bounded by an
// [ExportLimiter]; [Service.StartExportScheduler] runs it on a ticker.
package core
