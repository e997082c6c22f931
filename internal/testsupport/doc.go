// Package testsupport holds fixtures shared by package tests: temp-dir
// configs, synthetic images and file writers.
package testsupport
