// Package biz implements the business logic of the SecondBrain service.
//
// Ingestion moves an uploaded file through extraction, chunk persistence,
// and vector registration. Chat retrieves relevant chunks and asks the
// completion API for an answer grounded in them.
package biz
