// Package filesystem stores quote revisions as files in a local directory.
//
// The directory is treated as a flat bucket: subdirectories and dotfiles
// are not listed. Uploads are create-only and never replace a file.
package filesystem
