// Package interpreter executes compiled Kestrel programs on a bytecode VM.
// Each Thread owns its own signal channel and trampoline slot, so
// non-local last/next/redo/goto markers and tail calls never cross threads.
package interpreter
