// Package archive streams directory trees into and out of single-file
// containers.
//
// Supported containers:
//   - zip: the default, optionally encrypted per entry (WinZip AES or ZipCrypto)
//   - tar.gz and tar.zst: compressed with klauspost/compress, never encrypted
//
// Entries are recorded with slash-separated paths relative to the archived
// root; directories carry a trailing "/". A Codec runs exactly one job and
// moves through Idle -> Compressing|Extracting -> Done, or Failed.
//
// Example Usage:
//
//	codec := archive.NewCodec(archive.Options{Password: "s3cret", HasPassword: true})
//	if err := codec.Compress(ctx, "/data/photos", "/data/photos.zip"); err != nil {
//	    return err
//	}
package archive
