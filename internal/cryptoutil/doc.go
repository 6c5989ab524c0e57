// Package cryptoutil provides the integrity checks used for landing bundles:
// constant-time digest comparison, SHA-256 helpers and detached signature
// verification against an AWS KMS asymmetric key (ECDSA P-256/P-384, RSA-PSS
// with optional PKCS1v15 fallback).
package cryptoutil
