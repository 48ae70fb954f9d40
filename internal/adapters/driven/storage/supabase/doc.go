// Package supabase implements driven.BlobStore over the Supabase Storage
// REST API.
//
// Uploads are sent with x-upsert: false so the server rejects an existing
// key. Requests are throttled by a token bucket and back off after a 429.
package supabase
