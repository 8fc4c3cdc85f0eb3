// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package notify abstracts the confirmation dialog and banner used by the
consoles.

Console code calls Prompter.Confirm before a destructive action and
Prompter.Notify to raise a banner. Over HTTP the confirmation is a two-step
exchange: the handler builds a RequestPrompter approved only when the
request carries a valid confirmation token. When Confirm was asked and not
approved, the handler replies 428 with the question and a fresh token, and
the browser repeats the request with the token once the operator agrees.

Recorder is the in-memory Prompter for tests.
*/
package notify
