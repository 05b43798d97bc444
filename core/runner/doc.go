// Package runner executes extraction tasks concurrently.
//
// Each submitted task reports back over a channel with exactly one Result or
// Error message followed by exactly one Finished message. Consumers count
// Finished messages to know when every task of a batch is done.
package runner
