// Package sim implements a discrete-event, multi-core process scheduler
// simulator. It replays recorded process traces through two scheduling
// policy variants — a Linux-like baseline that honors only the explicit
// Scheduling_Policy of each task, and an AI variant that classifies tasks
// into four categorical labels and uses them to choose a scheduler class
// and size time slices.
//
// The simulator is single-threaded and cooperative: one logical thread
// advances virtual time one tick at a time, and cores are processed
// sequentially within each tick, which makes event logs deterministic and
// byte-identical across runs with the same inputs.
package sim
