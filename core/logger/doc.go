// Package logger is a standardized event logging framework for the shell.
//
// Every shell run is a session. Job lifecycle changes are recorded as
// newline delimited JSON objects that can later be aggregated into a Report.
package logger
