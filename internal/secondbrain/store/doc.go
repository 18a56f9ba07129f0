// Package store provides the persistence layer for the SecondBrain service.
//
// Documents and chunks live in MongoDB. The interfaces here let the biz
// layer run against fakes in tests.
package store
