// Package device pushes setting changes to a running device.
//
// The device exposes one endpoint, GET /set?<Key>=<Value>, taking a single
// change per request. Keys are setting names with spaces removed, booleans
// travel as True or False and numbers as their decimal text. Success is
// judged by the response status only.
package device
