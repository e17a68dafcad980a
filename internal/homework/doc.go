// Package homework talks to the homework status API and turns its answers
// into operator notices.
//
// The pipeline for one poll is:
//
//	Client.FetchStatus -> Validate -> ExtractNotice
//
// Every failure is a *Error with a Kind from a closed set, so the poll loop
// can switch on it and render a single error text for the chat.
package homework
