// Package task runs the background jobs of the booking core. Today that is
// a single periodic sweep that expires overdue inbox offers; the inbox read
// path already hides them lazily, the sweep keeps the stored state honest.
package task
