// Package rate provides the outbound request budget used by the goBlog API client.
//
// # Budget semantics
//
// A token bucket refilled at PerMinute/60 tokens per second with capacity Burst.
// The blog API enforces 100 requests per 60s per client, so the default budget
// keeps a well-behaved client from ever seeing a 429.
//
// # What this package must NOT do
//
//   - Implement server-side throttling or shared (multi-process) budgets.
//   - Be imported outside the goBlog module.
package rate
