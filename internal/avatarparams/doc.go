// Package avatarparams turns raw /svg query strings into an avatar request.
//
// Validation is permissive: a malformed value is downgraded to "use the
// default" rather than failing the request. Each validator still reports
// whether a parameter was omitted or rejected so callers can count bad input.
package avatarparams
