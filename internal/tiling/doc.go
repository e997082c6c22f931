// Package tiling turns a classified key pair into tile directives.
//
// Type0 is the identity. Type1 keys ("ndx-ndy-letters") describe a grid whose
// cells are sized from the part of each axis divisible by 8. Type2 keys
// ("=cols-rows+pad-data") describe a padded tile grid and a permutation over
// it, decoded from the base64url alphabet.
package tiling
