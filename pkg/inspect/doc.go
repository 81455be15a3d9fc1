// Package inspect serves a small HTTP surface for looking at and editing a
// persistence backend while an application runs.
//
// Routes:
//
//	GET    /items          every key and value (backend must implement persist.Lister)
//	GET    /items/{key}    one value, 404 when absent
//	PUT    /items/{key}    store the JSON request body
//	DELETE /items/{key}    remove the key
//	GET    /events         websocket stream of bus events for the backend's channel
//	GET    /metrics        Prometheus exposition
//
// Writes go through store.SetItem and store.RemoveItem, so components bound
// to the same channel see them exactly as if another component had written.
package inspect
