/*
Package server manages the HTTP server lifecycle: non-blocking start,
graceful shutdown within a configurable timeout, and SIGINT/SIGTERM
signal handling.

Manager wraps net/http.Server and owns its listener. Start serves in a
background goroutine; asynchronous serve failures surface on Errors().
WaitForShutdown blocks until a signal or a server error arrives, then
drains in-flight requests.
*/
package server
