// Package jwt reads claims out of access tokens issued by the blog API without
// verifying their signatures.
//
// The client never holds the server's signing key, so nothing here is a trust
// decision: the server remains the authority on whether a token is valid. The
// [Inspector] only answers local questions such as "has this token already
// expired?" so the Client can skip a request that is certain to fail.
package jwt
