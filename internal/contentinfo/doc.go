// Package contentinfo parses the content-info response that ships a content's
// encrypted key tables and decrypts them.
package contentinfo
