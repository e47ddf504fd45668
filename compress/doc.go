// See codec.go for the package overview: NoOp, Zstd, S2, and LZ4 codecs for
// external-sort spill files, selected via Algorithm and NewCodec.
package compress
