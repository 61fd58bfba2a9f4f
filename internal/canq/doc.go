// Package canq provides a fixed-capacity queue of opaque CAN message handles.
//
// A Queue sits between a producer (frame reception or a transmit request
// path) and a consumer (a scheduler that dequeues and dispatches frames). It
// stores handles only; the frame a handle refers to is looked up through a
// caller supplied Resolver whenever the queue needs the ordering key.
//
// Two disciplines are available, fixed at construction:
//   - Fifo: handles are read back in the order they were added.
//   - Priority: handles are kept sorted by ascending CAN identifier from the
//     read end to the write end, matching bus arbitration where the lowest
//     identifier wins. Adding an identifier that is already queued is a
//     no-op that reports success; the entry queued first is the one that is
//     later read.
//
// The backing slice is supplied by the caller and the queue never allocates
// after New. One slot of it is always unused, so a queue over n slots holds
// at most n-1 handles.
//
// # Outcomes
//
// ErrFull and ErrEmpty are ordinary results, not faults. The queue never
// retries; the caller decides whether to drop, retry, or hold back the
// producer. They are returned unwrapped and can be compared with errors.Is.
//
// # Concurrency (IMPORTANT)
//
// A Queue is NOT safe for concurrent use. It is designed for exactly one
// producer calling Add and one consumer calling Read, serialised by the
// caller. Reset must never run concurrently with Add or Read. See package
// ingress for a multi-producer front-end.
package canq
