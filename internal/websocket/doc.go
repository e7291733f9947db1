// Package websocket carries the dashboard's reactive channel. The
// browser shell sends selection states over a single connection and
// receives rendered tab views back, so dropdown changes never need a
// full page round trip. A hub tracks connected clients and supports
// broadcast notifications such as dataset reloads.
package websocket
