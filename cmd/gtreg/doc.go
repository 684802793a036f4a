// Command gtreg ingests guitar registry submissions, resolving manufacturers,
// models, and individual instruments against the registry database without
// creating duplicates.
//
// Usage:
//
//	gtreg ingest --file data.json      resolve and persist a submission document
//	gtreg validate --file data.json    check a document without touching the database
//	gtreg images duplicate <image-id>  associate a stored image with another entity
//	gtreg images list                  list an entity's images
//	gtreg config init|validate         manage the configuration file
//	gtreg doctor                       run readiness checks
//	gtreg serve                        serve the HTTP ingestion API
package main
