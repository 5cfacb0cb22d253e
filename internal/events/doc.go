// Package events defines booking lifecycle events and the emitter that
// fans them out to registered handlers. Services publish an event after
// every committed state change so notification and audit consumers can
// react without the services knowing about them.
package events
