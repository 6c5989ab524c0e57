// Package ratelimit is a per-IP token bucket limiter for the public port.
//
// State lives in process memory and is not shared between instances. It
// blunts a single address hammering /svg or /random-svg and gives one log
// line per offender plus a denial counter. Distributed floods and bandwidth
// abuse belong to the load balancer or CDN in front.
package ratelimit
