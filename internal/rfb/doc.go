// Package rfb implements the server side of a narrow RFB 3.8 subset:
// an unauthenticated handshake, a client-message drain, and a paced
// full-frame pump that streams RAW 32bpp rectangles from a read-only
// frame source.
//
// The engine never writes to the source and never negotiates formats or
// encodings with the viewer; everything the client asks for beyond
// "send me updates" is consumed and ignored. Any transport failure or
// protocol violation tears the session down silently - RFB has no
// error reply in this subset.
package rfb
