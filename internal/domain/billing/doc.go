// Package billing contains the bill aggregate and its invariants: one
// bill per subscriber and billing period, itemized detail lines, and an
// append-only payment transaction log. Payments may be partial and may
// overlap; the paid amount is capped at the bill total.
package billing
