// Package localstore keeps the application's records in durable slots, the
// way a browser app keeps them in local storage: one JSON document per slot,
// rewritten whole on every change.
package localstore

const (
	CartKey        = "cart"
	CorruptCartKey = "cart.corrupt"
	UsersKey       = "users"
	SessionKey     = "currentUser"
)
