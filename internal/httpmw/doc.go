// Package httpmw holds the middleware stacked in front of the avatar API and
// the landing page by httpserver.NewHandler.
//
// Request logs carry the request ID, resolved client address, method, path
// and status. Query strings are left out: avatar parameters are
// attacker-controlled and the Referer guard already counts rejections.
package httpmw
