// Package logger is a standardized event logging framework for the shell.
//
// Events are written as newline delimited JSON, one object per event holding
// a timestamp, the session ID and a single key naming the event type.
package logger
