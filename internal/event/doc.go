// Package event defines the calendar event model: the durable Event record,
// the caller-supplied Draft and Patch inputs, and the validation rules that
// gate every write.
//
// Validation always happens before persistence. An invalid draft or patch is
// rejected with a *ValidationError and never reaches storage, so the store
// can assume every Event it holds is well-formed.
package event
