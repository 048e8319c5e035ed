// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

// Package blob stores listing image bytes on the local filesystem, in memory,
// or in an S3-compatible bucket. Image metadata lives in the database; this
// package only knows keys.
package blob
