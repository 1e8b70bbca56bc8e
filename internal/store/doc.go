// Package store provides SQLite-backed durable storage for the
// inventory and runs searches against it.
//
// The schema models a physical inventory:
//   - Items: the things being tracked
//   - Boxes: containers items can be placed into
//   - Placements: containment edges (item in item, item in box)
//   - Invoices, Images, Reminders: records attached to items
//
// # Search Execution
//
// Search parses the raw query, compiles its filter chains into a WHERE
// clause, and assembles one SELECT. Two rules keep results honest:
//
//   - All or nothing: if any chain fails to compile, no chain runs in
//     SQL. The SELECT keeps only identifier and free-text constraints,
//     drops LIMIT/OFFSET, and the chains plus paging run in memory over
//     the candidate rows. Both paths answer identically.
//   - No interpolation: every runtime value travels as a named
//     parameter. Query text never contains user input.
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Enforce referential integrity
package store
