// Package s3p implements a bidirectional codec for the S3P multimedia
// container format.
//
// An S3P container bundles one or more embedded ASF media streams, each
// wrapped in a 32-byte S3V preamble that mixes fields the codec understands
// (payload offset and length) with fields it does not. Extract decomposes a
// container into individual .asf payload files plus a metadata.json sidecar
// holding every value the codec cannot interpret; Pack rebuilds a container
// from such a directory, recomputing all layout from the payload files
// actually present and restoring the opaque values from the sidecar.
//
// # Round Trip
//
// Extract and Pack are exact inverses when nothing in the extraction
// directory is touched:
//
//	report, err := s3p.ExtractFile(ctx, "bgm.s3p", "./bgm")
//	if err != nil {
//	    return err
//	}
//	err = s3p.PackFile(ctx, "./bgm", "bgm.s3p")
//
// Replacing a payload file between the two calls (for example with a
// transcoded ASF of a different length) still produces a structurally valid
// container: offsets, sizes, and the entry count are recomputed from the
// directory contents, while the opaque preamble values are carried over from
// metadata.json.
//
// Payload bytes are treated as opaque blobs; the codec never parses or
// rewrites the embedded ASF data.
package s3p
