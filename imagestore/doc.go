// Package imagestore loads target images and persists snapshot images.
//
// [FileStore] reads PNG, JPEG, GIF, WebP, BMP and TIFF files and writes all
// of them except WebP, choosing the encoder from the file extension.
// [Saver] renders and saves checkpoints on a single background goroutine so
// that persistence never blocks evolution.
package imagestore
