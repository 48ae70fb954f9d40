// Package gcs implements driven.BlobStore over a Google Cloud Storage
// bucket. Create-only uploads use a DoesNotExist precondition.
package gcs
