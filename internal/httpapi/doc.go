// Package httpapi serves the ingestion engine over HTTP using gin.
//
// Routes:
//
//	POST /v1/submissions              one submission object or an array; returns the batch result
//	POST /v1/images/:id/duplicates    associate an existing image asset with another entity
//	GET  /v1/images                   list images of ?entity_type=&entity_id=
//	GET  /health                      database reachability
//
// Every request carries a correlation id (X-Request-ID, generated when absent)
// that flows into the structured logs of the work it triggers.
package httpapi
