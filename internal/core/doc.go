// Package core provides the business logic for buyer lead management.
//
// This package contains all domain rules independent of any transport or
// storage layer. It can be used by web handlers, CLI tools, or tests without
// modification; persistence is reached only through the [Store] interface.
//
// # Architecture
//
// The package is organized around a few key concepts:
//
//   - Field Schema: [BuyerFields] declares every lead field with its type,
//     bounds and enumerated domain.
//   - Validator: [Validate] turns a raw [BuyerInput] into a normalized [Buyer]
//     or a [ValidationError] carrying one message per failing field.
//   - Service: the entry point for create, update, delete, list, import and
//     export operations.
//   - History: every successful create or update appends one [HistoryEntry].
//
// # Validation Order
//
// Field-level checks run for every field and all failures are collected.
// Cross-field rules only run once the fields they depend on passed:
//
//  1. Field checks: length bounds, phone digits, email format, enum membership,
//     budget coercion from numeric text.
//  2. BHK rule: bhk is required for Apartment and Villa, and silently cleared
//     for every other property type.
//  3. Budget rule: budgetMax must be >= budgetMin when both are present.
//
// # Update Protocol
//
// [Service.UpdateBuyer] implements optimistic concurrency with the lead's
// updated_at timestamp as the only version token:
//
//  1. Re-read the stored timestamp; a mismatch is a [ConflictError]
//  2. Validate the submitted field set
//  3. Write the normalized fields with a fresh timestamp, guarded by the
//     observed timestamp so a racing writer also yields a conflict
//  4. Append a history entry (best effort, failures are logged)
//
// # Bulk Import
//
// [Service.ImportRows] processes at most [MaxImportRows] rows. Each row is
// validated independently; accepted rows are inserted with one batch call and
// rejected rows are reported with their CSV line number (header is line 1).
//
// # Error Handling
//
// Technical errors are mapped to user-friendly messages using [MapError].
// Each error category has a unique code for support reference:
//
//   - VAL001-VAL003: Validation errors
//   - CONF001: Concurrent modification
//   - NF001, PERM001: Missing leads and ownership violations
//   - DB001-DB006: Database errors
//   - IMP001-IMP004: Import errors
//   - EXP001-EXP002: Export archive errors
//   - AUTH001-AUTH004: Identity errors
//   - RATE001: Rate limiting
package core
