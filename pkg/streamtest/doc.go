// Package streamtest provides recording consumers for testing push-based
// streams built on the rx contract.
//
// # Observer
//
// Observer is the lightweight recorder: it binds one subscription, keeps a
// timestamped log of every notification and forwards each one to an optional
// delegate. Delegate panics propagate to the producer's emission call.
//
// # Subscriber
//
// Subscriber records values, errors and completions into a History and adds:
//
//   - an optional demand limit (WithDemandLimit) that silently drops values
//     once the limit of processed values is reached;
//   - assertion helpers (AssertValues, AssertNoErrors, AssertCompleted, ...)
//     that return descriptive *AssertionError values;
//   - AwaitTerminalEvent, which blocks on a one-shot signal until an error or
//     completion is recorded, or the timeout elapses;
//   - Reset, which returns the instance to a fresh, unbound state.
//
// Delegate panics inside Subscriber are recovered, logged and kept in
// DelegateFailures.
//
// # Late notifications
//
// Values that arrive after a terminal notification are ignored and logged.
// Extra errors and completions are still recorded so that AssertCompleted and
// AssertNoErrors can report a misbehaving producer, but they never resolve
// the terminal signal a second time.
//
// # Concurrency
//
// Producers serialise notifications to a consumer, but a test goroutine may
// read recorded state while a producer goroutine writes it, so every consumer
// guards its state with a mutex. Locks are never held while calling a
// delegate, a hook or a producer.
//
// # Tap
//
// Tap wraps a producer and logs every subscription passing through it. All
// counters and ids live on the Tap instance.
package streamtest
