// Package reqtoken generates the request token that authenticates content-info
// requests. A token interleaves a random 16-symbol nonce with 16 characters
// hashed from the nonce and the content id; the nonce travels separately as
// an MD5 checksum.
package reqtoken
